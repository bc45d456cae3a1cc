// Package minic compiles a restricted subset of C to x86-64 assembly
// text. The pipeline is strictly sequential: lex, parse, resolve, lower
// to IR, emit. The first error at any stage aborts the whole
// translation unit; the same source always produces byte-identical
// assembly.
package minic

import (
	"github.com/minicgo/minic/internal/ast"
	"github.com/minicgo/minic/internal/codegen/x86_64"
	"github.com/minicgo/minic/internal/ir"
	"github.com/minicgo/minic/internal/lexer"
	"github.com/minicgo/minic/internal/parser"
	"github.com/minicgo/minic/internal/sema"
)

// Compile translates one translation unit into assembly suitable for
// the GNU assembler. name labels the module in the IR only; it does not
// appear in the output.
func Compile(name, src string) (string, error) {
	mod, err := Lower(name, src)
	if err != nil {
		return "", err
	}
	return x86_64.EmitModule(mod)
}

// Parse runs the front half of the pipeline (lex, parse, resolve) and
// returns the resolved syntax tree.
func Parse(src string) (*ast.File, error) {
	toks, err := lexer.Scan(src)
	if err != nil {
		return nil, err
	}
	file, err := parser.Parse(toks)
	if err != nil {
		return nil, err
	}
	if err := sema.Resolve(file); err != nil {
		return nil, err
	}
	return file, nil
}

// Lower runs the pipeline up to and including IR lowering.
func Lower(name, src string) (*ir.Module, error) {
	file, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return ir.Lower(file, name)
}
