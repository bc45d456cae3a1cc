package ast

// File is one parsed translation unit.
type File struct {
	Funcs   []*FuncDecl
	Globals []*GlobalArrayDecl
}

type FuncDecl struct {
	Name   string
	Params []string
	Body   *BlockStmt

	// Filled in by sema.
	NumSlots  int
	FrameSize int
}

// GlobalArrayDecl is an initialized global array: int g[N] = {...};
// Missing initializer entries are zero.
type GlobalArrayDecl struct {
	Name string
	Size int
	Init []int64
}

type Stmt interface{ isStmt() }

type BlockStmt struct{ Stmts []Stmt }

func (*BlockStmt) isStmt() {}

type ReturnStmt struct{ Expr Expr }

func (*ReturnStmt) isStmt() {}

type ExprStmt struct{ X Expr }

func (*ExprStmt) isStmt() {}

// DeclStmt declares a local: int x; or int x = expr;
type DeclStmt struct {
	Name string
	Init Expr // may be nil
	Slot int  // assigned by sema
}

func (*DeclStmt) isStmt() {}

type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // may be nil
}

func (*IfStmt) isStmt() {}

type ForStmt struct {
	Init Stmt // may be nil
	Cond Expr // may be nil (treated as true)
	Post Stmt // may be nil
	Body Stmt
}

func (*ForStmt) isStmt() {}

type Expr interface{ isExpr() }

type IntLit struct{ Value int64 }

func (*IntLit) isExpr() {}

// Ident is a variable reference. Slot is the frame slot the reference
// resolves to; sema fills it in.
type Ident struct {
	Name string
	Slot int
}

func (*Ident) isExpr() {}

// AssignExpr is `target = value`; the target must name a local.
type AssignExpr struct {
	Target *Ident
	Value  Expr
}

func (*AssignExpr) isExpr() {}

type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpLt
	OpGt
	OpLAnd
	OpLOr
)

type BinaryExpr struct {
	Op          BinOp
	Left, Right Expr
}

func (*BinaryExpr) isExpr() {}

type UnOp int

const (
	OpNeg UnOp = iota
)

type UnaryExpr struct {
	Op UnOp
	X  Expr
}

func (*UnaryExpr) isExpr() {}

type CallExpr struct {
	Name string
	Args []Expr
}

func (*CallExpr) isExpr() {}
