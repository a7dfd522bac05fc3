// Command sysyc compiles a single SysY translation unit to either
// Koopa IR text or RV32 assembly.
//
// Usage:
//
//	sysyc -koopa input.sy -o output.koopa
//	sysyc -riscv input.sy -o output.s
//	sysyc -debug input.sy
//
// -debug prints the parsed abstract syntax tree to standard output
// instead of a file; it needs no -o and ignores one if given. -koopa
// and -riscv both require
// -o and run the tree through the front end (and, for -riscv, the
// back end) before writing their result.
package main

import (
	"flag"
	"fmt"
	"os"

	"sysyc/internal/ast"
	"sysyc/internal/backend"
	"sysyc/internal/frontend"
	"sysyc/internal/koopa"
	"sysyc/internal/lexer"
	"sysyc/internal/parser"
	"sysyc/internal/rawprogram"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("sysyc", flag.ContinueOnError)
	debug := fs.Bool("debug", false, "print the parsed AST to stdout")
	koopaMode := fs.Bool("koopa", false, "emit Koopa IR text to -o")
	riscvMode := fs.Bool("riscv", false, "emit RV32 assembly to -o")
	output := fs.String("o", "", "output file path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	// Flags may also follow the input path (`-koopa in.sy -o out`), so
	// keep parsing after each positional argument.
	var inputs []string
	for fs.NArg() > 0 {
		inputs = append(inputs, fs.Arg(0))
		if err := fs.Parse(fs.Args()[1:]); err != nil {
			return err
		}
	}

	modes := 0
	for _, m := range []bool{*debug, *koopaMode, *riscvMode} {
		if m {
			modes++
		}
	}
	if modes != 1 {
		return fmt.Errorf("sysyc: exactly one of -debug, -koopa or -riscv is required")
	}
	if len(inputs) != 1 {
		return fmt.Errorf("sysyc: expected exactly one input file")
	}
	if !*debug && *output == "" {
		return fmt.Errorf("sysyc: -o is required with -koopa or -riscv")
	}

	inputPath := inputs[0]
	src, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	tokens, err := lexer.NewScanner(string(src)).ScanTokens()
	if err != nil {
		return err
	}
	cu, err := parser.NewParser(tokens).ParseCompUnit()
	if err != nil {
		return err
	}

	if *debug {
		fmt.Print(ast.Dump(cu))
		return nil
	}

	prog, err := frontend.Compile(cu)
	if err != nil {
		return err
	}
	text := koopa.Print(prog)

	if *koopaMode {
		return os.WriteFile(*output, []byte(text), 0o644)
	}

	raw, err := rawprogram.Parse(text)
	if err != nil {
		return err
	}
	return os.WriteFile(*output, []byte(backend.Emit(raw)), 0o644)
}
