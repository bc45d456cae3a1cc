package lexer

import "fmt"

type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Identifiers + literals
	IDENT
	INT

	// Keywords
	KW_INT
	KW_IF
	KW_ELSE
	KW_FOR
	KW_RETURN

	// Symbols
	LPAREN // (
	RPAREN // )
	LBRACE // {
	RBRACE // }
	LBRACK // [
	RBRACK // ]
	SEMI   // ;
	COMMA  // ,
	ASSIGN // =

	// Arithmetic
	PLUS  // +
	MINUS // -
	STAR  // *
	SLASH // /

	// Logical
	ANDAND // &&
	OROR   // ||

	// Comparison
	LT // <
	GT // >
)

var tokenNames = map[TokenType]string{
	EOF:       "end of input",
	ILLEGAL:   "illegal character",
	IDENT:     "identifier",
	INT:       "integer literal",
	KW_INT:    "'int'",
	KW_IF:     "'if'",
	KW_ELSE:   "'else'",
	KW_FOR:    "'for'",
	KW_RETURN: "'return'",
	LPAREN:    "'('",
	RPAREN:    "')'",
	LBRACE:    "'{'",
	RBRACE:    "'}'",
	LBRACK:    "'['",
	RBRACK:    "']'",
	SEMI:      "';'",
	COMMA:     "','",
	ASSIGN:    "'='",
	PLUS:      "'+'",
	MINUS:     "'-'",
	STAR:      "'*'",
	SLASH:     "'/'",
	ANDAND:    "'&&'",
	OROR:      "'||'",
	LT:        "'<'",
	GT:        "'>'",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

type Token struct {
	Type TokenType
	Lex  string
	Line int
	Col  int
}

func (t Token) Is(op TokenType) bool { return t.Type == op }

// LexError reports a character from which no token can be formed.
type LexError struct {
	Ch   rune
	Line int
	Col  int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("unrecognized character %q at %d:%d", e.Ch, e.Line, e.Col)
}
