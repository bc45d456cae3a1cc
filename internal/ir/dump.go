package ir

import (
	"fmt"
	"strings"
)

var opNames = map[Op]string{
	OpAdd: "ADD",
	OpSub: "SUB",
	OpMul: "MUL",
	OpDiv: "DIV",
	OpLt:  "LT",
	OpGt:  "GT",
}

// DumpFunc renders a function's IR in a readable one-instruction-per-line
// form, for the -dump-ir flag and for debugging.
func DumpFunc(f *Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(%d params, frame %d):\n", f.Name, f.NumParams, f.FrameSize)
	for _, ins := range f.Code {
		switch ins.Op {
		case OpImm:
			fmt.Fprintf(&b, "\tIMM r%d, %d\n", ins.Dst, ins.Imm)
		case OpMov:
			fmt.Fprintf(&b, "\tMOV r%d, r%d\n", ins.Dst, ins.A)
		case OpAdd, OpSub, OpMul, OpDiv, OpLt, OpGt:
			fmt.Fprintf(&b, "\t%s r%d, r%d, r%d\n", opNames[ins.Op], ins.Dst, ins.A, ins.B)
		case OpLoadLocal:
			fmt.Fprintf(&b, "\tLOAD r%d, [slot %d]\n", ins.Dst, ins.Slot)
		case OpStoreLocal:
			fmt.Fprintf(&b, "\tSTORE [slot %d], r%d\n", ins.Slot, ins.A)
		case OpLabel:
			fmt.Fprintf(&b, ".L%d:\n", ins.Target)
		case OpJmp:
			fmt.Fprintf(&b, "\tJMP .L%d\n", ins.Target)
		case OpJZ:
			fmt.Fprintf(&b, "\tJZ r%d, .L%d\n", ins.A, ins.Target)
		case OpJNZ:
			fmt.Fprintf(&b, "\tJNZ r%d, .L%d\n", ins.A, ins.Target)
		case OpCall:
			var args []string
			for _, a := range ins.Args {
				args = append(args, fmt.Sprintf("r%d", a))
			}
			fmt.Fprintf(&b, "\tCALL r%d, %s(%s)\n", ins.Dst, ins.Sym, strings.Join(args, ", "))
		case OpRet:
			if ins.A == None {
				b.WriteString("\tRET\n")
			} else {
				fmt.Fprintf(&b, "\tRET r%d\n", ins.A)
			}
		default:
			fmt.Fprintf(&b, "\tOP%d?\n", ins.Op)
		}
	}
	return b.String()
}
