package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/types"
	"github.com/fabled/effectc/internal/unify"
)

// replCommands lists every ":"-prefixed command the line completer
// offers, mirroring internal/repl/repl.go's own completion list.
var replCommands = []string{
	":bind", ":dump", ":snapshot", ":restore", ":unify", ":help", ":quit", ":q", ":exit",
}

// builtinsByName lets :bind/:unify accept a builtin type by its
// printed name (Int, Bool, Unit, Double, String) instead of requiring
// a surface syntax this module never parses.
var builtinsByName = map[string]types.ValueType{
	"Int":    types.TInt,
	"Bool":   types.TBool,
	"Unit":   types.TUnit,
	"Double": types.TDouble,
	"String": types.TString,
}

// REPL drives the typing context and unification engine directly,
// since parsing a surface language is out of scope here: internal/
// repl/repl.go evaluates source text through a real interpreter, but
// this REPL's ":" commands are the only input language, operating
// straight on *types.Context and *unify.Engine.
type REPL struct {
	Ctx *types.Context
	Eng *unify.Engine

	nextSymbolID uint64
	symbols      map[string]*ast.Symbol
	marks        map[string]types.Mark
}

// New returns a REPL over a fresh typing context and unification
// engine, with no value symbols bound yet.
func New() *REPL {
	return &REPL{
		Ctx:     types.NewContext(nil),
		Eng:     unify.NewEngine(),
		symbols: map[string]*ast.Symbol{},
		marks:   map[string]types.Mark{},
	}
}

func (r *REPL) symbolFor(name string) *ast.Symbol {
	if sym, ok := r.symbols[name]; ok {
		return sym
	}
	r.nextSymbolID++
	sym := ast.NewSymbol(r.nextSymbolID, name, ast.ValueSymbolKind)
	r.symbols[name] = sym
	return sym
}

func (r *REPL) prompt() string {
	return "efc> "
}

// Start runs the REPL's read-eval-print loop, reading lines from the
// terminal and writing results to out, using
// liner for line editing and history exactly as internal/repl/repl.go
// does: a temp-dir history file, multi-line mode on, and a completer
// over the fixed command list.
func (r *REPL) Start(out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetMultiLineMode(true)
	line.SetCompleter(func(prefix string) []string {
		var out []string
		for _, c := range replCommands {
			if strings.HasPrefix(c, prefix) {
				out = append(out, c)
			}
		}
		return out
	})

	historyPath := filepath.Join(os.TempDir(), ".efc_history")
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintln(out, color.New(color.Bold).SprintFunc()("efc debug REPL — :help for commands"))

	for {
		input, err := line.Prompt(r.prompt())
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				break
			}
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch input {
		case ":quit", ":q", ":exit":
			if f, err := os.Create(historyPath); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
			return nil
		}

		r.eval(input, out)
	}

	if f, err := os.Create(historyPath); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
	return nil
}

func (r *REPL) eval(input string, out io.Writer) {
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	fields := strings.Fields(input)
	switch fields[0] {
	case ":bind":
		if len(fields) != 3 {
			fmt.Fprintln(out, red("usage: :bind <name> <Int|Bool|Unit|Double|String>"))
			return
		}
		t, ok := builtinsByName[fields[2]]
		if !ok {
			fmt.Fprintf(out, "%s: unknown type %q\n", red("error"), fields[2])
			return
		}
		sym := r.symbolFor(fields[1])
		r.Ctx.BindValue(sym, t)
		fmt.Fprintf(out, "%s %s : %s\n", green("bound"), fields[1], t.String())

	case ":dump":
		if len(fields) == 2 {
			sym, ok := r.symbols[fields[1]]
			if !ok {
				fmt.Fprintf(out, "%s: unbound name %q\n", red("error"), fields[1])
				return
			}
			t, ok := r.Ctx.LookupValue(sym)
			if !ok {
				fmt.Fprintf(out, "%s: %s has no binding in scope\n", red("error"), fields[1])
				return
			}
			fmt.Fprintf(out, "%s : %s\n", fields[1], t.String())
			return
		}
		if len(r.symbols) == 0 {
			fmt.Fprintln(out, "(no bindings)")
			return
		}
		for name, sym := range r.symbols {
			if t, ok := r.Ctx.LookupValue(sym); ok {
				fmt.Fprintf(out, "%s : %s\n", name, t.String())
			}
		}

	case ":snapshot":
		if len(fields) != 2 {
			fmt.Fprintln(out, red("usage: :snapshot <label>"))
			return
		}
		r.marks[fields[1]] = r.Ctx.Backup()
		fmt.Fprintf(out, "%s snapshot %q\n", green("saved"), fields[1])

	case ":restore":
		if len(fields) != 2 {
			fmt.Fprintln(out, red("usage: :restore <label>"))
			return
		}
		mark, ok := r.marks[fields[1]]
		if !ok {
			fmt.Fprintf(out, "%s: no snapshot %q\n", red("error"), fields[1])
			return
		}
		r.Ctx.Restore(mark)
		fmt.Fprintf(out, "%s restored %q\n", green("restored"), fields[1])

	case ":unify":
		if len(fields) != 3 {
			fmt.Fprintln(out, red("usage: :unify <TypeA> <TypeB>"))
			return
		}
		a, ok := builtinsByName[fields[1]]
		if !ok {
			fmt.Fprintf(out, "%s: unknown type %q\n", red("error"), fields[1])
			return
		}
		b, ok := builtinsByName[fields[2]]
		if !ok {
			fmt.Fprintf(out, "%s: unknown type %q\n", red("error"), fields[2])
			return
		}
		if err := r.Eng.RequireEqual(a, b); err != nil {
			fmt.Fprintf(out, "%s %s\n", red("does not unify:"), err.Error())
			return
		}
		fmt.Fprintln(out, green("unifies"))

	case ":help":
		printReplHelp(out)

	default:
		fmt.Fprintf(out, "%s: unknown command %q (:help for a list)\n", red("error"), fields[0])
	}
}

func printReplHelp(out io.Writer) {
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintf(out, "  %s <name> <Type>      bind a value symbol to a builtin type\n", cyan(":bind"))
	fmt.Fprintf(out, "  %s [name]             print one or every bound symbol's type\n", cyan(":dump"))
	fmt.Fprintf(out, "  %s <label>            save the current context mark under label\n", cyan(":snapshot"))
	fmt.Fprintf(out, "  %s <label>            roll the context back to a saved mark\n", cyan(":restore"))
	fmt.Fprintf(out, "  %s <TypeA> <TypeB>    check whether two builtin types unify\n", cyan(":unify"))
	fmt.Fprintf(out, "  %s                    quit the REPL\n", cyan(":quit"))
}
