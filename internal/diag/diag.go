// Package diag implements the error taxonomy and diagnostic buffer
// described in spec §7. It is adapted from the teacher's
// internal/types/errors.go (*TypeCheckError / ErrorList) pattern,
// generalized to the full kind table and to severities so the driver
// can decide, after each phase, whether to continue downstream.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fabled/effectc/internal/ast"
)

// Kind is the taxonomy column of §7's table.
type Kind string

const (
	KindResolution             Kind = "resolution_error"
	KindTypeMismatch           Kind = "type_mismatch"
	KindEscapingSkolem         Kind = "escaping_skolem"
	KindEscapingEffect         Kind = "escaping_effect"
	KindArity                  Kind = "arity"
	KindMissingOperation       Kind = "missing_operation"
	KindDuplicateOperation     Kind = "duplicate_operation"
	KindAmbiguous              Kind = "ambiguous"
	KindUnhandledControlEffect Kind = "unhandled_control_effect"
	KindMutualRecursion        Kind = "mutual_recursion_unsupported"
	KindInternalInvariant      Kind = "internal_invariant"
)

// Severity controls whether a diagnostic blocks downstream phases.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// fatality of each Kind, per §7's "Behavior" column.
var bufferedKinds = map[Kind]bool{
	KindTypeMismatch:           true,
	KindEscapingSkolem:         true,
	KindEscapingEffect:         true,
	KindArity:                  true,
	KindMissingOperation:       true,
	KindDuplicateOperation:     true,
	KindUnhandledControlEffect: true,
}

// Buffered reports whether diagnostics of this kind accumulate rather
// than abort immediately.
func Buffered(k Kind) bool { return bufferedKinds[k] }

// Diagnostic is one reported problem.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Pos      ast.Pos
	Message  string
	Notes    []string
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", d.Pos, d.Severity, d.Message)
	for _, n := range d.Notes {
		fmt.Fprintf(&b, "\n  note: %s", n)
	}
	return b.String()
}

// Buffer accumulates diagnostics across a compilation phase. The
// Typer holds one per compilation; overload resolution holds a local
// one per trial candidate and promotes only the winner's entries
// (§4.3.1, §5).
type Buffer struct {
	items []*Diagnostic
}

func NewBuffer() *Buffer { return &Buffer{} }

func (b *Buffer) Report(d *Diagnostic) { b.items = append(b.items, d) }

func (b *Buffer) Reportf(kind Kind, sev Severity, pos ast.Pos, format string, args ...any) {
	b.Report(&Diagnostic{Kind: kind, Severity: sev, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Items returns the accumulated diagnostics, stably sorted by
// position then kind so that rendering and test assertions are
// deterministic (§5: "deterministic iteration order... to make
// diagnostics stable").
func (b *Buffer) Items() []*Diagnostic {
	out := make([]*Diagnostic, len(b.items))
	copy(out, b.items)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Pos, out[j].Pos
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		if pi.Column != pj.Column {
			return pi.Column < pj.Column
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// HasErrors reports whether any SeverityError diagnostic was
// reported; the driver uses this to skip downstream phases (§7).
func (b *Buffer) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (b *Buffer) Len() int { return len(b.items) }

// Merge appends another buffer's items onto b, used to promote a
// winning trial's local buffer into the committed buffer.
func (b *Buffer) Merge(other *Buffer) {
	b.items = append(b.items, other.items...)
}

// CompilationFailure is the single error type that reaches the
// driver (§5: "fatal errors abort the current phase and propagate as
// a single CompilationFailure").
type CompilationFailure struct {
	Phase       string
	Diagnostics []*Diagnostic
}

func (f *CompilationFailure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "compilation failed in phase %q (%d diagnostic(s)):\n", f.Phase, len(f.Diagnostics))
	for _, d := range f.Diagnostics {
		fmt.Fprintf(&b, "  %s\n", d.Error())
	}
	return b.String()
}

// Fail wraps a buffer's error-severity diagnostics into a
// CompilationFailure, or returns nil if there were none.
func Fail(phase string, b *Buffer) error {
	var errs []*Diagnostic
	for _, d := range b.Items() {
		if d.Severity == SeverityError {
			errs = append(errs, d)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &CompilationFailure{Phase: phase, Diagnostics: errs}
}
