// Command efc is the driver for the effect-typed compiler's Typer and
// CPS/ML back end. It is adapted from the teacher's cmd/ailang/main.go
// (flag-based command dispatch, color.SprintFunc helpers for output)
// but, since this module never parses a surface language, its only
// interactive surface is the "repl" subcommand, which drives the
// typing context and unification engine directly rather than
// evaluating source text.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/fabled/effectc/internal/config"
)

var (
	Version = "dev"

	red  = color.New(color.FgRed).SprintFunc()
	cyan = color.New(color.FgCyan).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
		configPath  = flag.String("config", "", "Path to a YAML driver config (defaults apply if omitted)")
	)
	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", red("Error"), err)
			os.Exit(1)
		}
		cfg = loaded
	}

	switch flag.Arg(0) {
	case "repl":
		if err := New().Start(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", red("Error"), err)
			os.Exit(1)
		}
	case "dump":
		fs := flag.NewFlagSet("dump", flag.ExitOnError)
		dumpIR := fs.Bool("ir", false, "print the sample module's lifted IR before lowering")
		dumpML := fs.Bool("ml", false, "print the emitted Target-ML source")
		fs.Parse(flag.Args()[1:])
		if err := runDump(cfg, *dumpIR, *dumpML, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", red("Error"), err)
			os.Exit(1)
		}
	case "config":
		fmt.Printf("output_dir: %s\nbackend:    %s\ntrace:      lifted=%v ml=%v\n",
			cfg.OutputDir, cfg.Backend, cfg.Trace.Lifted, cfg.Trace.ML)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), flag.Arg(0))
		printHelp()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("efc %s\n", bold(Version))
	fmt.Println("Bidirectional effect typer + CPS/ML back end")
}

func printHelp() {
	fmt.Println(bold("efc"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  efc <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s             Start the debug REPL (:bind, :dump, :snapshot, :restore, :unify)\n", cyan("repl"))
	fmt.Printf("  %s [--ir] [--ml] Lower the built-in sample module and write its .sml file\n", cyan("dump"))
	fmt.Printf("  %s           Print the effective driver configuration\n", cyan("config"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version        Print version information")
	fmt.Println("  --help           Show this help message")
	fmt.Println("  --config <path>  Load a YAML driver config")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Printf("  %s\n", cyan("efc repl"))
	fmt.Printf("  %s\n", cyan("efc dump --ml --ir"))
}
