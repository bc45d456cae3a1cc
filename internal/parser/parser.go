package parser

import (
	"fmt"
	"strconv"

	"github.com/minicgo/minic/internal/ast"
	"github.com/minicgo/minic/internal/lexer"
)

// MaxCallArgs is the number of integer arguments the calling convention
// passes in registers; anything past that is rejected here.
const MaxCallArgs = 6

// ParseError is an expected-token mismatch or malformed construct. The
// first one aborts the whole translation unit.
type ParseError struct {
	Expected lexer.TokenType
	Got      lexer.Token
	Msg      string // set instead of Expected for non-mismatch errors
}

func (e *ParseError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s at %d:%d", e.Msg, e.Got.Line, e.Got.Col)
	}
	return fmt.Sprintf("expected %v, got %v at %d:%d", e.Expected, e.Got.Type, e.Got.Line, e.Got.Col)
}

type Parser struct {
	toks []lexer.Token
	pos  int
}

// Parse consumes a token stream produced by lexer.Scan and returns the
// translation unit. The stream must be EOF-terminated.
func Parse(toks []lexer.Token) (*ast.File, error) {
	p := &Parser{toks: toks}
	f := &ast.File{}
	for p.tok().Type != lexer.EOF {
		if err := p.parseDecl(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (p *Parser) tok() lexer.Token { return p.toks[p.pos] }

func (p *Parser) next() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	if p.tok().Type != tt {
		return lexer.Token{}, &ParseError{Expected: tt, Got: p.tok()}
	}
	t := p.tok()
	p.next()
	return t, nil
}

func (p *Parser) errf(format string, args ...interface{}) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Got: p.tok()}
}

func (p *Parser) parseDecl(f *ast.File) error {
	if _, err := p.expect(lexer.KW_INT); err != nil {
		return err
	}
	nameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return err
	}
	if p.tok().Type == lexer.LBRACK {
		g, err := p.parseGlobalArray(nameTok.Lex)
		if err != nil {
			return err
		}
		f.Globals = append(f.Globals, g)
		return nil
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return err
	}
	params, err := p.parseParams()
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return err
	}
	body, err := p.parseBlock()
	if err != nil {
		return err
	}
	f.Funcs = append(f.Funcs, &ast.FuncDecl{Name: nameTok.Lex, Params: params, Body: body})
	return nil
}

func (p *Parser) parseGlobalArray(name string) (*ast.GlobalArrayDecl, error) {
	p.next() // consume [
	sizeTok, err := p.expect(lexer.INT)
	if err != nil {
		return nil, err
	}
	size, _ := strconv.Atoi(sizeTok.Lex)
	if size <= 0 {
		return nil, p.errf("array %s must have positive size", name)
	}
	if _, err := p.expect(lexer.RBRACK); err != nil {
		return nil, err
	}
	g := &ast.GlobalArrayDecl{Name: name, Size: size}
	if p.tok().Type == lexer.ASSIGN {
		p.next()
		if _, err := p.expect(lexer.LBRACE); err != nil {
			return nil, err
		}
		for p.tok().Type != lexer.RBRACE {
			v, err := p.parseInitValue()
			if err != nil {
				return nil, err
			}
			g.Init = append(g.Init, v)
			if p.tok().Type == lexer.COMMA {
				p.next()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.RBRACE); err != nil {
			return nil, err
		}
		if len(g.Init) > size {
			return nil, p.errf("too many initializers for %s[%d]", name, size)
		}
	}
	if _, err := p.expect(lexer.SEMI); err != nil {
		return nil, err
	}
	return g, nil
}

func (p *Parser) parseInitValue() (int64, error) {
	neg := false
	if p.tok().Type == lexer.MINUS {
		neg = true
		p.next()
	}
	t, err := p.expect(lexer.INT)
	if err != nil {
		return 0, err
	}
	v, _ := strconv.ParseInt(t.Lex, 10, 64)
	if neg {
		v = -v
	}
	return v, nil
}

func (p *Parser) parseParams() ([]string, error) {
	var params []string
	if p.tok().Type == lexer.RPAREN {
		return params, nil
	}
	for {
		if _, err := p.expect(lexer.KW_INT); err != nil {
			return nil, err
		}
		nameTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, nameTok.Lex)
		if len(params) > MaxCallArgs {
			return nil, p.errf("more than %d parameters", MaxCallArgs)
		}
		if p.tok().Type == lexer.COMMA {
			p.next()
			continue
		}
		break
	}
	return params, nil
}

func (p *Parser) parseBlock() (*ast.BlockStmt, error) {
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for p.tok().Type != lexer.RBRACE && p.tok().Type != lexer.EOF {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.BlockStmt{Stmts: stmts}, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.tok().Type {
	case lexer.KW_RETURN:
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.SEMI); err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Expr: e}, nil
	case lexer.KW_INT:
		// declaration: int x; | int x = expr;
		p.next()
		nameTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		var init ast.Expr
		if p.tok().Type == lexer.ASSIGN {
			p.next()
			init, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(lexer.SEMI); err != nil {
			return nil, err
		}
		return &ast.DeclStmt{Name: nameTok.Lex, Init: init}, nil
	case lexer.KW_IF:
		return p.parseIf()
	case lexer.KW_FOR:
		return p.parseFor()
	case lexer.LBRACE:
		return p.parseBlock()
	default:
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.SEMI); err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: e}, nil
	}
}

// parseIf binds a dangling else to the nearest unmatched if.
func (p *Parser) parseIf() (ast.Stmt, error) {
	p.next() // consume if
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	s := &ast.IfStmt{Cond: cond, Then: then}
	if p.tok().Type == lexer.KW_ELSE {
		p.next()
		s.Else, err = p.parseStmt()
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// parseFor allows all three clauses to be absent; an absent condition
// means the loop never tests.
func (p *Parser) parseFor() (ast.Stmt, error) {
	p.next() // consume for
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	s := &ast.ForStmt{}
	var err error
	if p.tok().Type != lexer.SEMI {
		s.Init, err = p.parseForClause()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMI); err != nil {
		return nil, err
	}
	if p.tok().Type != lexer.SEMI {
		s.Cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMI); err != nil {
		return nil, err
	}
	if p.tok().Type != lexer.RPAREN {
		var post ast.Expr
		post, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
		s.Post = &ast.ExprStmt{X: post}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	s.Body, err = p.parseStmt()
	if err != nil {
		return nil, err
	}
	return s, nil
}

// parseForClause parses an init clause: a declaration or an expression,
// without the trailing semicolon.
func (p *Parser) parseForClause() (ast.Stmt, error) {
	if p.tok().Type == lexer.KW_INT {
		p.next()
		nameTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		var init ast.Expr
		if p.tok().Type == lexer.ASSIGN {
			p.next()
			init, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		return &ast.DeclStmt{Name: nameTok.Lex, Init: init}, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: e}, nil
}

// Expression grammar, precedence low to high:
// assign = lor ( '=' assign )     right-associative
// lor    = land { '||' land }
// land   = rel { '&&' rel }
// rel    = add [ ('<'|'>') add ]  non-chaining
// add    = mul { ('+'|'-') mul }
// mul    = unary { ('*'|'/') unary }
// unary  = '-' unary | primary
// primary = INT | IDENT | IDENT '(' args ')' | '(' assign ')'
func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseAssign()
}

func (p *Parser) parseAssign() (ast.Expr, error) {
	left, err := p.parseLOr()
	if err != nil {
		return nil, err
	}
	if p.tok().Type != lexer.ASSIGN {
		return left, nil
	}
	target, ok := left.(*ast.Ident)
	if !ok {
		return nil, p.errf("left side of '=' is not a variable")
	}
	p.next()
	value, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	return &ast.AssignExpr{Target: target, Value: value}, nil
}

func (p *Parser) parseLOr() (ast.Expr, error) {
	left, err := p.parseLAnd()
	if err != nil {
		return nil, err
	}
	for p.tok().Type == lexer.OROR {
		p.next()
		right, err := p.parseLAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: ast.OpLOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseLAnd() (ast.Expr, error) {
	left, err := p.parseRel()
	if err != nil {
		return nil, err
	}
	for p.tok().Type == lexer.ANDAND {
		p.next()
		right, err := p.parseRel()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: ast.OpLAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseRel() (ast.Expr, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	var op ast.BinOp
	switch p.tok().Type {
	case lexer.LT:
		op = ast.OpLt
	case lexer.GT:
		op = ast.OpGt
	default:
		return left, nil
	}
	p.next()
	right, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Op: op, Left: left, Right: right}, nil
}

func (p *Parser) parseAdd() (ast.Expr, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.tok().Type == lexer.PLUS || p.tok().Type == lexer.MINUS {
		op := ast.OpAdd
		if p.tok().Type == lexer.MINUS {
			op = ast.OpSub
		}
		p.next()
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMul() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok().Type == lexer.STAR || p.tok().Type == lexer.SLASH {
		op := ast.OpMul
		if p.tok().Type == lexer.SLASH {
			op = ast.OpDiv
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.tok().Type == lexer.MINUS {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: ast.OpNeg, X: x}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.tok().Type {
	case lexer.INT:
		v, _ := strconv.ParseInt(p.tok().Lex, 10, 64)
		p.next()
		return &ast.IntLit{Value: v}, nil
	case lexer.LPAREN:
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case lexer.IDENT:
		name := p.tok().Lex
		p.next()
		if p.tok().Type != lexer.LPAREN {
			return &ast.Ident{Name: name}, nil
		}
		return p.parseCall(name)
	default:
		return nil, &ParseError{Msg: fmt.Sprintf("unexpected %v in expression", p.tok().Type), Got: p.tok()}
	}
}

func (p *Parser) parseCall(name string) (ast.Expr, error) {
	p.next() // consume (
	call := &ast.CallExpr{Name: name}
	if p.tok().Type == lexer.RPAREN {
		p.next()
		return call, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if len(call.Args) > MaxCallArgs {
			return nil, p.errf("call to %s has more than %d arguments", name, MaxCallArgs)
		}
		if p.tok().Type == lexer.COMMA {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}
