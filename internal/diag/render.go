package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Color helpers for diagnostic rendering, matching cmd/ailang/main.go's
// own red/green/yellow/cyan/bold SprintFunc set rather than writing a
// bespoke ANSI wrapper.
var (
	diagRed    = color.New(color.FgRed).SprintFunc()
	diagYellow = color.New(color.FgYellow).SprintFunc()
	diagCyan   = color.New(color.FgCyan).SprintFunc()
	diagBold   = color.New(color.Bold).SprintFunc()
)

// Render writes d to w with its severity colorized: errors red,
// warnings yellow, and the position bolded ahead of both.
func (d *Diagnostic) Render(w io.Writer) {
	sev := diagYellow(d.Severity.String())
	if d.Severity == SeverityError {
		sev = diagRed(d.Severity.String())
	}
	fmt.Fprintf(w, "%s: %s: %s\n", diagBold(d.Pos.String()), sev, d.Message)
	for _, n := range d.Notes {
		fmt.Fprintf(w, "  %s %s\n", diagCyan("note:"), n)
	}
}

// RenderAll writes every diagnostic in b to w in its stable sort order,
// followed by a one-line green "ok" summary if none were reported.
func RenderAll(w io.Writer, b *Buffer) {
	items := b.Items()
	if len(items) == 0 {
		fmt.Fprintln(w, color.New(color.FgGreen).SprintFunc()("ok: no diagnostics"))
		return
	}
	for _, d := range items {
		d.Render(w)
	}
}
