package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/minicgo/minic/internal/ast"
	"github.com/minicgo/minic/internal/lexer"
)

func parseSrc(t *testing.T, src string) *ast.File {
	t.Helper()
	toks, err := lexer.Scan(src)
	if err != nil {
		t.Fatalf("lex %q: %v", src, err)
	}
	f, err := Parse(toks)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return f
}

func parseErr(t *testing.T, src string) error {
	t.Helper()
	toks, err := lexer.Scan(src)
	if err != nil {
		t.Fatalf("lex %q: %v", src, err)
	}
	_, err = Parse(toks)
	if err == nil {
		t.Fatalf("parse %q: expected error", src)
	}
	return err
}

func mainReturn(t *testing.T, f *ast.File) ast.Expr {
	t.Helper()
	if len(f.Funcs) == 0 {
		t.Fatal("no functions parsed")
	}
	body := f.Funcs[0].Body.Stmts
	if len(body) == 0 {
		t.Fatal("empty function body")
	}
	ret, ok := body[len(body)-1].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("last statement is %T, want *ast.ReturnStmt", body[len(body)-1])
	}
	return ret.Expr
}

func TestPrecedenceMulBindsTighter(t *testing.T) {
	f := parseSrc(t, "int main() { return 2+3*4; }")
	add, ok := mainReturn(t, f).(*ast.BinaryExpr)
	if !ok || add.Op != ast.OpAdd {
		t.Fatalf("top node: got %#v, want add", mainReturn(t, f))
	}
	mul, ok := add.Right.(*ast.BinaryExpr)
	if !ok || mul.Op != ast.OpMul {
		t.Fatalf("right of add: got %#v, want mul", add.Right)
	}
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	f := parseSrc(t, "int main() { return (2+3)*(4+5); }")
	mul, ok := mainReturn(t, f).(*ast.BinaryExpr)
	if !ok || mul.Op != ast.OpMul {
		t.Fatalf("top node: got %#v, want mul", mainReturn(t, f))
	}
	if l, ok := mul.Left.(*ast.BinaryExpr); !ok || l.Op != ast.OpAdd {
		t.Errorf("left of mul: got %#v, want add", mul.Left)
	}
	if r, ok := mul.Right.(*ast.BinaryExpr); !ok || r.Op != ast.OpAdd {
		t.Errorf("right of mul: got %#v, want add", mul.Right)
	}
}

func TestAdditionLeftAssociative(t *testing.T) {
	f := parseSrc(t, "int main() { return 1+2+3; }")
	outer, ok := mainReturn(t, f).(*ast.BinaryExpr)
	if !ok || outer.Op != ast.OpAdd {
		t.Fatalf("top node: got %#v, want add", mainReturn(t, f))
	}
	if _, ok := outer.Left.(*ast.BinaryExpr); !ok {
		t.Errorf("1+2+3 should nest on the left, got left %#v", outer.Left)
	}
	if _, ok := outer.Right.(*ast.IntLit); !ok {
		t.Errorf("right of top add should be the literal 3, got %#v", outer.Right)
	}
}

func TestLogicalPrecedence(t *testing.T) {
	// a || b && c parses as a || (b && c)
	f := parseSrc(t, "int main(int a, int b, int c) { return a || b && c; }")
	or, ok := mainReturn(t, f).(*ast.BinaryExpr)
	if !ok || or.Op != ast.OpLOr {
		t.Fatalf("top node: got %#v, want ||", mainReturn(t, f))
	}
	and, ok := or.Right.(*ast.BinaryExpr)
	if !ok || and.Op != ast.OpLAnd {
		t.Fatalf("right of ||: got %#v, want &&", or.Right)
	}
}

func TestAssignmentRightAssociative(t *testing.T) {
	f := parseSrc(t, "int main() { int a; int b; a = b = 3; return a; }")
	stmt := f.Funcs[0].Body.Stmts[2].(*ast.ExprStmt)
	outer, ok := stmt.X.(*ast.AssignExpr)
	if !ok || outer.Target.Name != "a" {
		t.Fatalf("got %#v, want assignment to a", stmt.X)
	}
	inner, ok := outer.Value.(*ast.AssignExpr)
	if !ok || inner.Target.Name != "b" {
		t.Fatalf("value of a=: got %#v, want assignment to b", outer.Value)
	}
}

func TestAssignmentToNonVariable(t *testing.T) {
	err := parseErr(t, "int main() { 1 = 2; }")
	if !strings.Contains(err.Error(), "not a variable") {
		t.Errorf("got %v, want lvalue complaint", err)
	}
}

func TestDanglingElseBindsToNearestIf(t *testing.T) {
	f := parseSrc(t, "int main() { if (1) if (0) return 1; else return 2; return 3; }")
	outer, ok := f.Funcs[0].Body.Stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("first statement is %T, want *ast.IfStmt", f.Funcs[0].Body.Stmts[0])
	}
	if outer.Else != nil {
		t.Fatal("else bound to the outer if, want nearest")
	}
	inner, ok := outer.Then.(*ast.IfStmt)
	if !ok {
		t.Fatalf("then branch is %T, want nested if", outer.Then)
	}
	if inner.Else == nil {
		t.Fatal("inner if lost its else branch")
	}
}

func TestRelationalDoesNotChain(t *testing.T) {
	err := parseErr(t, "int main() { return 1 < 2 < 3; }")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("got %T, want *ParseError", err)
	}
}

func TestForClausesAllOptional(t *testing.T) {
	f := parseSrc(t, "int main() { for (;;) return 1; }")
	loop := f.Funcs[0].Body.Stmts[0].(*ast.ForStmt)
	if loop.Init != nil || loop.Cond != nil || loop.Post != nil {
		t.Errorf("for(;;): clauses should be nil, got %+v", loop)
	}
}

func TestForFullClauses(t *testing.T) {
	f := parseSrc(t, "int main() { int s = 0; for (int i = 0; i < 5; i = i + 1) s = s + i; return s; }")
	loop := f.Funcs[0].Body.Stmts[1].(*ast.ForStmt)
	if _, ok := loop.Init.(*ast.DeclStmt); !ok {
		t.Errorf("init clause: got %T, want declaration", loop.Init)
	}
	if loop.Cond == nil || loop.Post == nil {
		t.Error("cond/post clause missing")
	}
}

func TestCallArgs(t *testing.T) {
	f := parseSrc(t, "int main() { return add(1, 2+3, x); }")
	call, ok := mainReturn(t, f).(*ast.CallExpr)
	if !ok || call.Name != "add" {
		t.Fatalf("got %#v, want call to add", mainReturn(t, f))
	}
	if len(call.Args) != 3 {
		t.Fatalf("got %d args, want 3", len(call.Args))
	}
}

func TestCallTooManyArgs(t *testing.T) {
	err := parseErr(t, "int main() { return f(1,2,3,4,5,6,7); }")
	if !strings.Contains(err.Error(), "more than 6") {
		t.Errorf("got %v, want argument-count complaint", err)
	}
}

func TestTooManyParams(t *testing.T) {
	err := parseErr(t, "int f(int a, int b, int c, int d, int e, int g, int h) { return 0; }")
	if !strings.Contains(err.Error(), "more than 6") {
		t.Errorf("got %v, want parameter-count complaint", err)
	}
}

func TestUnclosedArgumentList(t *testing.T) {
	err := parseErr(t, "int main() { return f(1, 2; }")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("got %T, want *ParseError", err)
	}
}

func TestParseErrorNamesExpectedAndActual(t *testing.T) {
	err := parseErr(t, "int main() { return 1 }")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("got %T, want *ParseError", err)
	}
	if perr.Expected != lexer.SEMI || perr.Got.Type != lexer.RBRACE {
		t.Errorf("got expected=%v actual=%v, want ';' / '}'", perr.Expected, perr.Got.Type)
	}
	if !strings.Contains(err.Error(), "';'") {
		t.Errorf("message %q does not name the expected token", err.Error())
	}
}

func TestGlobalArrayDecl(t *testing.T) {
	f := parseSrc(t, "int g[3] = {1, 2, 3};\nint z[2];\nint main() { return 0; }")
	if len(f.Globals) != 2 {
		t.Fatalf("got %d globals, want 2", len(f.Globals))
	}
	g := f.Globals[0]
	if g.Name != "g" || g.Size != 3 || len(g.Init) != 3 || g.Init[1] != 2 {
		t.Errorf("g: got %+v", g)
	}
	z := f.Globals[1]
	if z.Name != "z" || z.Size != 2 || len(z.Init) != 0 {
		t.Errorf("z: got %+v", z)
	}
}

func TestGlobalArrayTooManyInitializers(t *testing.T) {
	err := parseErr(t, "int g[2] = {1, 2, 3};")
	if !strings.Contains(err.Error(), "too many initializers") {
		t.Errorf("got %v", err)
	}
}

func TestUnaryMinus(t *testing.T) {
	f := parseSrc(t, "int main() { return -5 + 2; }")
	add, ok := mainReturn(t, f).(*ast.BinaryExpr)
	if !ok || add.Op != ast.OpAdd {
		t.Fatalf("top node: got %#v, want add", mainReturn(t, f))
	}
	if _, ok := add.Left.(*ast.UnaryExpr); !ok {
		t.Errorf("left of add: got %#v, want unary", add.Left)
	}
}
