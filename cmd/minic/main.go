package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"

	minic "github.com/minicgo/minic"
	"github.com/minicgo/minic/internal/codegen/x86_64"
	"github.com/minicgo/minic/internal/ir"
)

func main() {
	outPath := flag.String("o", "", "write assembly to this file instead of stdout")
	dumpAST := flag.Bool("dump-ast", false, "dump the resolved syntax tree to stderr")
	dumpIR := flag.Bool("dump-ir", false, "dump the lowered IR to stderr")
	flag.Parse()

	if flag.NArg() == 0 {
		if isInteractive() {
			runREPL()
			return
		}
		// Piped input: compile stdin as one unit.
		compileAndWrite("<stdin>", os.Stdin, *outPath, *dumpAST, *dumpIR)
		return
	}
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: minic [-o out.s] [-dump-ast] [-dump-ir] [file.c]")
		os.Exit(2)
	}

	srcPath := flag.Arg(0)
	if srcPath == "-" {
		compileAndWrite("<stdin>", os.Stdin, *outPath, *dumpAST, *dumpIR)
		return
	}
	f, err := os.Open(srcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	compileAndWrite(filepath.Base(srcPath), f, *outPath, *dumpAST, *dumpIR)
}

func compileAndWrite(name string, in io.Reader, outPath string, dumpAST, dumpIR bool) {
	data, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read error: %v\n", err)
		os.Exit(1)
	}

	file, err := minic.Parse(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "minic: %v\n", err)
		os.Exit(1)
	}
	if dumpAST {
		spew.Fdump(os.Stderr, file)
	}

	mod, err := ir.Lower(file, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "minic: %v\n", err)
		os.Exit(1)
	}
	if dumpIR {
		for _, fn := range mod.Funcs {
			fmt.Fprint(os.Stderr, ir.DumpFunc(fn))
		}
	}

	asm, err := x86_64.EmitModule(mod)
	if err != nil {
		fmt.Fprintf(os.Stderr, "minic: %v\n", err)
		os.Exit(1)
	}

	if outPath == "" {
		fmt.Print(asm)
		return
	}
	if err := os.WriteFile(outPath, []byte(asm), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write error: %v\n", err)
		os.Exit(1)
	}
}

func isInteractive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
