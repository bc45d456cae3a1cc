package x86_64

import (
	"fmt"
	"strings"

	"github.com/minicgo/minic/internal/ir"
)

// CodeGenError flags a condition the earlier stages are supposed to
// have excluded. It is an internal-invariant violation, not a user
// diagnostic.
type CodeGenError struct {
	Msg string
}

func (e *CodeGenError) Error() string { return "codegen: " + e.Msg }

var argRegs = []string{"%rdi", "%rsi", "%rdx", "%rcx", "%r8", "%r9"}

// EmitModule emits AT&T syntax x86_64 assembly for System V AMD64.
func EmitModule(m *ir.Module) (string, error) {
	var b strings.Builder
	b.WriteString(".text\n")
	for i, f := range m.Funcs {
		if err := emitFunc(&b, f, i); err != nil {
			return "", err
		}
	}
	if len(m.Globals) > 0 {
		b.WriteString(".data\n")
		for _, g := range m.Globals {
			fmt.Fprintf(&b, ".globl %s\n%s:\n", g.Name, g.Name)
			for i := 0; i < g.Size; i++ {
				var v int64
				if i < len(g.Init) {
					v = g.Init[i]
				}
				fmt.Fprintf(&b, "  .quad %d\n", v)
			}
		}
	}
	return b.String(), nil
}

// Frame layout, rbp-relative: locals first (slot i at -8*(i+1)), then
// one spill slot per virtual register. Both areas are 16-byte rounded,
// so rsp stays aligned at every call site.
type frame struct {
	localsSize int
	total      int
}

func newFrame(f *ir.Function) frame {
	spill := align(f.NumRegs*8, 16)
	return frame{localsSize: f.FrameSize, total: f.FrameSize + spill}
}

func (fr frame) slotOff(slot int) int { return -8 * (slot + 1) }

func (fr frame) regOff(r ir.Reg) int { return -(fr.localsSize + 8*(int(r)+1)) }

func align(n, a int) int { return (n + (a - 1)) &^ (a - 1) }

func emitFunc(b *strings.Builder, f *ir.Function, idx int) error {
	fmt.Fprintf(b, ".globl %s\n%s:\n", f.Name, f.Name)
	b.WriteString("  push %rbp\n")
	b.WriteString("  mov %rsp, %rbp\n")

	fr := newFrame(f)
	if fr.total > 0 {
		fmt.Fprintf(b, "  sub $%d, %%rsp\n", fr.total)
	}

	if f.NumParams > len(argRegs) {
		return &CodeGenError{Msg: fmt.Sprintf("%s: more than %d parameters", f.Name, len(argRegs))}
	}
	for i := 0; i < f.NumParams; i++ {
		fmt.Fprintf(b, "  mov %s, %d(%%rbp)\n", argRegs[i], fr.slotOff(i))
	}

	alloc := allocateRegisters(f)
	end := fmt.Sprintf(".Lend%d", idx)

	// load copies a vreg into a physical scratch register.
	load := func(r ir.Reg, into string) {
		if pr, ok := alloc.regOf[r]; ok {
			if pr != into {
				fmt.Fprintf(b, "  mov %s, %s\n", pr, into)
			}
			return
		}
		fmt.Fprintf(b, "  mov %d(%%rbp), %s\n", fr.regOff(r), into)
	}
	// store moves a physical register into a vreg's home.
	store := func(from string, r ir.Reg) {
		if pr, ok := alloc.regOf[r]; ok {
			if pr != from {
				fmt.Fprintf(b, "  mov %s, %s\n", from, pr)
			}
			return
		}
		fmt.Fprintf(b, "  mov %s, %d(%%rbp)\n", from, fr.regOff(r))
	}

	for _, ins := range f.Code {
		switch ins.Op {
		case ir.OpImm:
			if pr, ok := alloc.regOf[ins.Dst]; ok {
				fmt.Fprintf(b, "  mov $%d, %s\n", ins.Imm, pr)
			} else {
				fmt.Fprintf(b, "  movq $%d, %d(%%rbp)\n", ins.Imm, fr.regOff(ins.Dst))
			}
		case ir.OpMov:
			if sr, oks := alloc.regOf[ins.A]; oks {
				store(sr, ins.Dst)
			} else {
				load(ins.A, "%rax")
				store("%rax", ins.Dst)
			}
		case ir.OpAdd, ir.OpSub, ir.OpMul:
			op := map[ir.Op]string{ir.OpAdd: "add", ir.OpSub: "sub", ir.OpMul: "imul"}[ins.Op]
			load(ins.A, "%rax")
			if pr, ok := alloc.regOf[ins.B]; ok {
				fmt.Fprintf(b, "  %s %s, %%rax\n", op, pr)
			} else {
				fmt.Fprintf(b, "  %s %d(%%rbp), %%rax\n", op, fr.regOff(ins.B))
			}
			store("%rax", ins.Dst)
		case ir.OpDiv:
			// Signed division: rdx:rax / rcx -> rax.
			load(ins.A, "%rax")
			load(ins.B, "%rcx")
			b.WriteString("  cqo\n")
			b.WriteString("  idiv %rcx\n")
			store("%rax", ins.Dst)
		case ir.OpLt, ir.OpGt:
			cc := "l"
			if ins.Op == ir.OpGt {
				cc = "g"
			}
			load(ins.A, "%rax")
			load(ins.B, "%rcx")
			b.WriteString("  cmp %rcx, %rax\n")
			fmt.Fprintf(b, "  set%s %%al\n", cc)
			b.WriteString("  movzbq %al, %rax\n")
			store("%rax", ins.Dst)
		case ir.OpLoadLocal:
			if pr, ok := alloc.regOf[ins.Dst]; ok {
				fmt.Fprintf(b, "  mov %d(%%rbp), %s\n", fr.slotOff(ins.Slot), pr)
			} else {
				fmt.Fprintf(b, "  mov %d(%%rbp), %%rax\n", fr.slotOff(ins.Slot))
				fmt.Fprintf(b, "  mov %%rax, %d(%%rbp)\n", fr.regOff(ins.Dst))
			}
		case ir.OpStoreLocal:
			if pr, ok := alloc.regOf[ins.A]; ok {
				fmt.Fprintf(b, "  mov %s, %d(%%rbp)\n", pr, fr.slotOff(ins.Slot))
			} else {
				load(ins.A, "%rax")
				fmt.Fprintf(b, "  mov %%rax, %d(%%rbp)\n", fr.slotOff(ins.Slot))
			}
		case ir.OpLabel:
			fmt.Fprintf(b, ".L%d:\n", ins.Target)
		case ir.OpJmp:
			fmt.Fprintf(b, "  jmp .L%d\n", ins.Target)
		case ir.OpJZ, ir.OpJNZ:
			if pr, ok := alloc.regOf[ins.A]; ok {
				fmt.Fprintf(b, "  test %s, %s\n", pr, pr)
			} else {
				fmt.Fprintf(b, "  cmpq $0, %d(%%rbp)\n", fr.regOff(ins.A))
			}
			jcc := "je"
			if ins.Op == ir.OpJNZ {
				jcc = "jne"
			}
			fmt.Fprintf(b, "  %s .L%d\n", jcc, ins.Target)
		case ir.OpCall:
			if len(ins.Args) > len(argRegs) {
				return &CodeGenError{Msg: fmt.Sprintf("call to %s with more than %d arguments", ins.Sym, len(argRegs))}
			}
			for i, a := range ins.Args {
				load(a, argRegs[i])
			}
			b.WriteString("  mov $0, %eax\n")
			fmt.Fprintf(b, "  call %s\n", ins.Sym)
			store("%rax", ins.Dst)
		case ir.OpRet:
			if ins.A != ir.None {
				load(ins.A, "%rax")
			}
			fmt.Fprintf(b, "  jmp %s\n", end)
		default:
			return &CodeGenError{Msg: fmt.Sprintf("unknown ir op %d", ins.Op)}
		}
	}

	// Shared epilogue; falling off the end returns whatever rax holds.
	fmt.Fprintf(b, "%s:\n", end)
	b.WriteString("  mov %rbp, %rsp\n")
	b.WriteString("  pop %rbp\n")
	b.WriteString("  ret\n")
	return nil
}
