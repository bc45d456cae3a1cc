// Package sema resolves variable references to frame slots and sizes
// each function's stack frame.
//
// Slots are handed out monotonically and never reused, even after the
// scope that owned them closes. That wastes a little frame space in
// exchange for slot numbers that stay stable for the rest of the
// pipeline.
package sema

import (
	"fmt"

	"github.com/minicgo/minic/internal/ast"
)

const (
	slotSize   = 8
	stackAlign = 16
)

type UndeclaredVariableError struct {
	Name string
}

func (e *UndeclaredVariableError) Error() string {
	return fmt.Sprintf("undeclared variable %q", e.Name)
}

type DuplicateDeclarationError struct {
	Name string
}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("%q is already declared in this scope", e.Name)
}

type resolver struct {
	scopes   []map[string]int // name -> slot, innermost last
	nextSlot int
}

// Resolve walks every function in the file, assigning slots to locals
// and parameters and rewriting variable references in place.
func Resolve(f *ast.File) error {
	for _, fn := range f.Funcs {
		if err := resolveFunc(fn); err != nil {
			return err
		}
	}
	return nil
}

func resolveFunc(fn *ast.FuncDecl) error {
	r := &resolver{}
	r.push()
	for _, p := range fn.Params {
		if _, err := r.declare(p); err != nil {
			return err
		}
	}
	if err := r.stmt(fn.Body); err != nil {
		return err
	}
	r.pop()
	fn.NumSlots = r.nextSlot
	fn.FrameSize = roundup(r.nextSlot*slotSize, stackAlign)
	return nil
}

func (r *resolver) push() { r.scopes = append(r.scopes, map[string]int{}) }
func (r *resolver) pop()  { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *resolver) declare(name string) (int, error) {
	top := r.scopes[len(r.scopes)-1]
	if _, ok := top[name]; ok {
		return 0, &DuplicateDeclarationError{Name: name}
	}
	slot := r.nextSlot
	r.nextSlot++
	top[name] = slot
	return slot, nil
}

func (r *resolver) lookup(name string) (int, error) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if slot, ok := r.scopes[i][name]; ok {
			return slot, nil
		}
	}
	return 0, &UndeclaredVariableError{Name: name}
}

func (r *resolver) stmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.BlockStmt:
		r.push()
		for _, inner := range s.Stmts {
			if err := r.stmt(inner); err != nil {
				return err
			}
		}
		r.pop()
	case *ast.DeclStmt:
		if s.Init != nil {
			if err := r.expr(s.Init); err != nil {
				return err
			}
		}
		slot, err := r.declare(s.Name)
		if err != nil {
			return err
		}
		s.Slot = slot
	case *ast.ReturnStmt:
		return r.expr(s.Expr)
	case *ast.ExprStmt:
		return r.expr(s.X)
	case *ast.IfStmt:
		if err := r.expr(s.Cond); err != nil {
			return err
		}
		if err := r.stmt(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return r.stmt(s.Else)
		}
	case *ast.ForStmt:
		// The init clause may declare; its scope is the whole loop.
		r.push()
		if s.Init != nil {
			if err := r.stmt(s.Init); err != nil {
				return err
			}
		}
		if s.Cond != nil {
			if err := r.expr(s.Cond); err != nil {
				return err
			}
		}
		if s.Post != nil {
			if err := r.stmt(s.Post); err != nil {
				return err
			}
		}
		if err := r.stmt(s.Body); err != nil {
			return err
		}
		r.pop()
	default:
		return fmt.Errorf("sema: unknown statement %T", s)
	}
	return nil
}

func (r *resolver) expr(e ast.Expr) error {
	switch e := e.(type) {
	case *ast.IntLit:
	case *ast.Ident:
		slot, err := r.lookup(e.Name)
		if err != nil {
			return err
		}
		e.Slot = slot
	case *ast.AssignExpr:
		if err := r.expr(e.Value); err != nil {
			return err
		}
		return r.expr(e.Target)
	case *ast.BinaryExpr:
		if err := r.expr(e.Left); err != nil {
			return err
		}
		return r.expr(e.Right)
	case *ast.UnaryExpr:
		return r.expr(e.X)
	case *ast.CallExpr:
		for _, a := range e.Args {
			if err := r.expr(a); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("sema: unknown expression %T", e)
	}
	return nil
}

func roundup(n, a int) int { return (n + (a - 1)) &^ (a - 1) }
