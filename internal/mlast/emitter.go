package mlast

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Runtime primitive names §6 requires the emitter hard-code verbatim:
// the transformer never invents its own spellings for these.
const (
	RuntimeLift       = "lift"
	RuntimeNested     = "nested"
	RuntimeHere       = "here"
	RuntimeFresh      = "fresh"
	RuntimeWithRegion = "withRegion"
	RuntimeUnitVal    = "unitVal"
	RuntimeTrueVal    = "trueVal"
	RuntimeFalseVal   = "falseVal"
)

// OutputFile maps a module path to its target source file, per §6:
// "<outputPath>/<module.path with '/' -> '_'>.sml".
func OutputFile(outputPath, modulePath string) string {
	flat := strings.ReplaceAll(modulePath, "/", "_")
	return path.Join(outputPath, flat+".sml")
}

// NormalizeIdent applies the same BOM-strip-and-NFC normalization the
// teacher's internal/lexer/normalize.go applies to source identifiers
// on the way in, here applied on the way out so two differently
// composed Unicode spellings of a front-end identifier never collide
// or diverge once rendered to text.
func NormalizeIdent(name string) string {
	name = strings.TrimPrefix(name, "﻿")
	b := []byte(name)
	if norm.NFC.IsNormal(b) {
		return name
	}
	return string(norm.NFC.Bytes(b))
}

// Emit renders a Toplevel to Target-ML source text: bindings in
// order, followed by a trailing evaluation of MainCall. Identifier
// normalization already happened when the transformer minted each
// binding's name (NormalizeName); RawBind content is verbatim extern
// text and is never touched.
func Emit(tl *Toplevel) string {
	var b strings.Builder
	for _, bind := range tl.Bindings {
		b.WriteString(bind.String())
		b.WriteString("\n")
	}
	if tl.MainCall != nil {
		fmt.Fprintf(&b, "val _ = %s\n", tl.MainCall)
	}
	return b.String()
}

// NormalizeName is what transformer code calls when it mints a
// Binding's declared Name, e.g. &ValBind{Name: mlast.NormalizeName(sym.Name)}.
func NormalizeName(name string) string { return NormalizeIdent(name) }
