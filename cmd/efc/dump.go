package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/config"
	"github.com/fabled/effectc/internal/lifted"
	"github.com/fabled/effectc/internal/mlast"
	"github.com/fabled/effectc/internal/mltransform"
	"github.com/fabled/effectc/internal/types"
)

// sampleModulePath is the module path the dump command emits under;
// it maps to demo_main.sml per the output-file naming rule.
const sampleModulePath = "demo/main"

// sampleModule builds the built-in Lifted IR module the dump command
// lowers. Since parsing is out of scope, this is the driver's one way
// to run the transformer end to end outside of a test: a record
// declaration (accessor generation plus construction and field
// selection), an interface (the arity-shared object encoding), an
// extern (verbatim RawBind emission), and a main definition
// exercising Val/App/If sequencing through the CPS layer.
func sampleModule() ([]lifted.Decl, []lifted.Definition, *ast.Symbol) {
	pairSym := ast.NewSymbol(1, "pair", ast.TypeSymbolKind)
	pairCtor := ast.NewSymbol(2, "Pair", ast.ValueSymbolKind)
	readerSym := ast.NewSymbol(3, "Reader", ast.TypeSymbolKind)
	askOp := ast.NewSymbol(4, "ask", ast.BlockSymbolKind)
	describe := ast.NewSymbol(5, "describe", ast.BlockSymbolKind)
	cond := ast.NewSymbol(6, "cond", ast.ValueSymbolKind)
	mainSym := ast.NewSymbol(7, "main", ast.BlockSymbolKind)
	tmp := ast.NewSymbol(8, "tmp", ast.ValueSymbolKind)
	printInt := ast.NewSymbol(9, "printInt", ast.BlockSymbolKind)
	p := ast.NewSymbol(10, "p", ast.ValueSymbolKind)

	decls := []lifted.Decl{
		&lifted.Data{
			Symbol: pairSym,
			Ctors: []lifted.Ctor{
				{Symbol: pairCtor, Fields: []types.ValueType{types.TInt, types.TString}},
			},
		},
		&lifted.Interface{
			Symbol: readerSym,
			Ops:    []lifted.Op{{Symbol: askOp}},
		},
		&lifted.Extern{
			Symbol: printInt,
			Fn: &types.FunctionType{
				ValueParams: []types.ValueType{types.TInt},
				Result:      types.TUnit,
				Effects:     types.EmptyEffects(),
			},
			Text: "fun printInt x = print (Int.toString x)",
		},
	}

	describeDef := &lifted.Def{
		Symbol: describe,
		Block: &lifted.BlockLit{
			Params: []lifted.BlockParam{{Symbol: cond}},
			Body: &lifted.If{
				Cond: &lifted.VarRef{Symbol: cond},
				Then: &lifted.Return{Value: &lifted.Literal{Kind: ast.LitInt, Value: 1}},
				Else: &lifted.Return{Value: &lifted.Literal{Kind: ast.LitInt, Value: 2}},
			},
		},
	}
	mainDef := &lifted.Def{
		Symbol: mainSym,
		Block: &lifted.BlockLit{
			Body: &lifted.Val{
				Binder: tmp,
				Bound: &lifted.App{
					Block: &lifted.BlockVar{Symbol: describe},
					Args:  []lifted.Atom{&lifted.Literal{Kind: ast.LitBool, Value: true}},
				},
				Body: &lifted.Val{
					Binder: p,
					Bound: &lifted.Return{Value: &lifted.PureApp{
						Fn: pairCtor,
						Args: []lifted.Atom{
							&lifted.VarRef{Symbol: tmp},
							&lifted.Literal{Kind: ast.LitString, Value: "demo"},
						},
					}},
					Body: &lifted.Return{Value: &lifted.Select{
						Record: &lifted.VarRef{Symbol: p},
						Ctor:   pairCtor,
						Index:  0,
					}},
				},
			},
		},
	}

	return decls, []lifted.Definition{describeDef, mainDef}, mainSym
}

// runDump lowers the sample module, printing the Lifted IR and/or the
// emitted Target-ML when asked (by flag or by the config's trace
// section), and writes the emitted file under cfg.OutputDir.
func runDump(cfg *config.Config, dumpIR, dumpML bool, out io.Writer) error {
	decls, defs, mainSym := sampleModule()

	if dumpIR || cfg.Trace.Lifted {
		fmt.Fprintln(out, bold("-- lifted IR --"))
		for _, d := range defs {
			if def, ok := d.(*lifted.Def); ok {
				fmt.Fprintf(out, "def %s = %s\n", def.Symbol.Name, def.Block)
			}
		}
	}

	tl, err := mltransform.TransformModule(mltransform.New(), decls, defs, mainSym)
	if err != nil {
		return err
	}
	text := mlast.Emit(tl)

	if dumpML || cfg.Trace.ML {
		fmt.Fprintln(out, bold("-- target ML --"))
		fmt.Fprint(out, text)
	}

	dest := mlast.OutputFile(cfg.OutputDir, sampleModulePath)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(dest, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	fmt.Fprintf(out, "%s %s\n", cyan("wrote"), dest)
	return nil
}
