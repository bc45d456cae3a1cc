package ir

import (
	"fmt"

	"github.com/minicgo/minic/internal/ast"
)

// Lower translates a resolved file into IR, one flat instruction list
// per function. The label counter is shared across the module so no two
// functions hand out the same label id.
func Lower(file *ast.File, name string) (*Module, error) {
	lw := &lowerer{m: &Module{Name: name}}
	for _, g := range file.Globals {
		lw.m.Globals = append(lw.m.Globals, &Global{Name: g.Name, Size: g.Size, Init: g.Init})
	}
	for _, fn := range file.Funcs {
		f, err := lw.lowerFunc(fn)
		if err != nil {
			return nil, err
		}
		lw.m.Funcs = append(lw.m.Funcs, f)
	}
	return lw.m, nil
}

type lowerer struct {
	m         *Module
	nextLabel int
}

func (lw *lowerer) newLabel() int {
	l := lw.nextLabel
	lw.nextLabel++
	return l
}

func (lw *lowerer) lowerFunc(fd *ast.FuncDecl) (*Function, error) {
	c := &funcCtx{
		lw: lw,
		fn: &Function{Name: fd.Name, NumParams: len(fd.Params), FrameSize: fd.FrameSize},
	}
	if err := c.stmt(fd.Body); err != nil {
		return nil, err
	}
	c.fn.NumRegs = int(c.nextReg)
	return c.fn, nil
}

type funcCtx struct {
	lw      *lowerer
	fn      *Function
	nextReg Reg
}

func (c *funcCtx) newReg() Reg {
	r := c.nextReg
	c.nextReg++
	return r
}

func (c *funcCtx) emit(ins Instr) { c.fn.Code = append(c.fn.Code, ins) }

func (c *funcCtx) label(l int) { c.emit(Instr{Op: OpLabel, Target: l}) }
func (c *funcCtx) jmp(l int)   { c.emit(Instr{Op: OpJmp, Target: l}) }

func (c *funcCtx) jz(r Reg, l int)  { c.emit(Instr{Op: OpJZ, A: r, Target: l}) }
func (c *funcCtx) jnz(r Reg, l int) { c.emit(Instr{Op: OpJNZ, A: r, Target: l}) }

func (c *funcCtx) imm(v int64) Reg {
	r := c.newReg()
	c.emit(Instr{Op: OpImm, Dst: r, Imm: v})
	return r
}

func (c *funcCtx) stmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.BlockStmt:
		// Scoping was resolved already; a block is just its statements.
		for _, inner := range s.Stmts {
			if err := c.stmt(inner); err != nil {
				return err
			}
		}
	case *ast.ReturnStmt:
		r, err := c.expr(s.Expr)
		if err != nil {
			return err
		}
		c.emit(Instr{Op: OpRet, A: r})
	case *ast.ExprStmt:
		// Value discarded.
		if _, err := c.expr(s.X); err != nil {
			return err
		}
	case *ast.DeclStmt:
		if s.Init == nil {
			return nil
		}
		r, err := c.expr(s.Init)
		if err != nil {
			return err
		}
		c.emit(Instr{Op: OpStoreLocal, Slot: s.Slot, A: r})
	case *ast.IfStmt:
		return c.lowerIf(s)
	case *ast.ForStmt:
		return c.lowerFor(s)
	default:
		return fmt.Errorf("ir: unknown statement %T", s)
	}
	return nil
}

func (c *funcCtx) lowerIf(s *ast.IfStmt) error {
	cond, err := c.expr(s.Cond)
	if err != nil {
		return err
	}
	end := c.lw.newLabel()
	if s.Else == nil {
		c.jz(cond, end)
		if err := c.stmt(s.Then); err != nil {
			return err
		}
		c.label(end)
		return nil
	}
	els := c.lw.newLabel()
	c.jz(cond, els)
	if err := c.stmt(s.Then); err != nil {
		return err
	}
	c.jmp(end)
	c.label(els)
	if err := c.stmt(s.Else); err != nil {
		return err
	}
	c.label(end)
	return nil
}

func (c *funcCtx) lowerFor(s *ast.ForStmt) error {
	if s.Init != nil {
		if err := c.stmt(s.Init); err != nil {
			return err
		}
	}
	loop := c.lw.newLabel()
	end := c.lw.newLabel()
	c.label(loop)
	if s.Cond != nil {
		cond, err := c.expr(s.Cond)
		if err != nil {
			return err
		}
		c.jz(cond, end)
	}
	if err := c.stmt(s.Body); err != nil {
		return err
	}
	if s.Post != nil {
		if err := c.stmt(s.Post); err != nil {
			return err
		}
	}
	c.jmp(loop)
	c.label(end)
	return nil
}

func (c *funcCtx) expr(e ast.Expr) (Reg, error) {
	switch e := e.(type) {
	case *ast.IntLit:
		return c.imm(e.Value), nil
	case *ast.Ident:
		r := c.newReg()
		c.emit(Instr{Op: OpLoadLocal, Dst: r, Slot: e.Slot})
		return r, nil
	case *ast.AssignExpr:
		v, err := c.expr(e.Value)
		if err != nil {
			return 0, err
		}
		c.emit(Instr{Op: OpStoreLocal, Slot: e.Target.Slot, A: v})
		return v, nil
	case *ast.UnaryExpr:
		x, err := c.expr(e.X)
		if err != nil {
			return 0, err
		}
		zero := c.imm(0)
		r := c.newReg()
		c.emit(Instr{Op: OpSub, Dst: r, A: zero, B: x})
		return r, nil
	case *ast.BinaryExpr:
		switch e.Op {
		case ast.OpLAnd:
			return c.lowerLAnd(e)
		case ast.OpLOr:
			return c.lowerLOr(e)
		}
		l, err := c.expr(e.Left)
		if err != nil {
			return 0, err
		}
		r, err := c.expr(e.Right)
		if err != nil {
			return 0, err
		}
		var op Op
		switch e.Op {
		case ast.OpAdd:
			op = OpAdd
		case ast.OpSub:
			op = OpSub
		case ast.OpMul:
			op = OpMul
		case ast.OpDiv:
			op = OpDiv
		case ast.OpLt:
			op = OpLt
		case ast.OpGt:
			op = OpGt
		default:
			return 0, fmt.Errorf("ir: unknown binary operator %d", e.Op)
		}
		dst := c.newReg()
		c.emit(Instr{Op: op, Dst: dst, A: l, B: r})
		return dst, nil
	case *ast.CallExpr:
		var args []Reg
		for _, a := range e.Args {
			r, err := c.expr(a)
			if err != nil {
				return 0, err
			}
			args = append(args, r)
		}
		dst := c.newReg()
		c.emit(Instr{Op: OpCall, Dst: dst, Sym: e.Name, Args: args})
		return dst, nil
	default:
		return 0, fmt.Errorf("ir: unknown expression %T", e)
	}
}

// lowerLAnd branches past the right operand when the left one is
// already zero. The result is always exactly 0 or 1.
func (c *funcCtx) lowerLAnd(e *ast.BinaryExpr) (Reg, error) {
	fail := c.lw.newLabel()
	end := c.lw.newLabel()
	l, err := c.expr(e.Left)
	if err != nil {
		return 0, err
	}
	c.jz(l, fail)
	r, err := c.expr(e.Right)
	if err != nil {
		return 0, err
	}
	c.jz(r, fail)
	dst := c.newReg()
	c.emit(Instr{Op: OpImm, Dst: dst, Imm: 1})
	c.jmp(end)
	c.label(fail)
	c.emit(Instr{Op: OpImm, Dst: dst, Imm: 0})
	c.label(end)
	return dst, nil
}

// lowerLOr is the mirror image: the right operand only runs when the
// left one was zero.
func (c *funcCtx) lowerLOr(e *ast.BinaryExpr) (Reg, error) {
	ok := c.lw.newLabel()
	end := c.lw.newLabel()
	l, err := c.expr(e.Left)
	if err != nil {
		return 0, err
	}
	c.jnz(l, ok)
	r, err := c.expr(e.Right)
	if err != nil {
		return 0, err
	}
	c.jnz(r, ok)
	dst := c.newReg()
	c.emit(Instr{Op: OpImm, Dst: dst, Imm: 0})
	c.jmp(end)
	c.label(ok)
	c.emit(Instr{Op: OpImm, Dst: dst, Imm: 1})
	c.label(end)
	return dst, nil
}
