package ir

import (
	"strings"
	"testing"

	"github.com/minicgo/minic/internal/lexer"
	"github.com/minicgo/minic/internal/parser"
	"github.com/minicgo/minic/internal/sema"
)

func lowerSrc(t *testing.T, src string) *Module {
	t.Helper()
	toks, err := lexer.Scan(src)
	if err != nil {
		t.Fatalf("lex %q: %v", src, err)
	}
	file, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	if err := sema.Resolve(file); err != nil {
		t.Fatalf("resolve %q: %v", src, err)
	}
	m, err := Lower(file, "test")
	if err != nil {
		t.Fatalf("lower %q: %v", src, err)
	}
	return m
}

func ops(f *Function) []Op {
	var out []Op
	for _, ins := range f.Code {
		out = append(out, ins.Op)
	}
	return out
}

func TestStraightLineArithmetic(t *testing.T) {
	m := lowerSrc(t, "int main() { return 2+3*4; }")
	want := []Op{OpImm, OpImm, OpImm, OpMul, OpAdd, OpRet}
	got := ops(m.Funcs[0])
	if len(got) != len(want) {
		t.Fatalf("got %d instructions, want %d:\n%s", len(got), len(want), DumpFunc(m.Funcs[0]))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("instruction %d: got op %d, want %d:\n%s", i, got[i], want[i], DumpFunc(m.Funcs[0]))
		}
	}
}

func TestVirtualRegistersAreFresh(t *testing.T) {
	m := lowerSrc(t, "int main() { return 1+2+3+4; }")
	f := m.Funcs[0]
	seen := map[Reg]bool{}
	for _, ins := range f.Code {
		switch ins.Op {
		case OpImm, OpAdd:
			if seen[ins.Dst] {
				t.Fatalf("register r%d defined twice:\n%s", ins.Dst, DumpFunc(f))
			}
			seen[ins.Dst] = true
		}
	}
	if f.NumRegs != len(seen) {
		t.Errorf("NumRegs = %d, want %d", f.NumRegs, len(seen))
	}
}

// The right operand of && must sit behind a conditional branch: when
// the left side is zero it is never evaluated.
func TestShortCircuitAnd(t *testing.T) {
	m := lowerSrc(t, "int main(int a) { return a && f(); }")
	f := m.Funcs[0]
	jzBeforeCall := -1
	callAt := -1
	for i, ins := range f.Code {
		if ins.Op == OpJZ && callAt < 0 {
			jzBeforeCall = i
		}
		if ins.Op == OpCall && callAt < 0 {
			callAt = i
		}
	}
	if callAt < 0 {
		t.Fatalf("no call lowered:\n%s", DumpFunc(f))
	}
	if jzBeforeCall < 0 || jzBeforeCall > callAt {
		t.Fatalf("call not guarded by a JZ:\n%s", DumpFunc(f))
	}
	// No arithmetic AND anywhere: && is pure control flow.
	for _, ins := range f.Code {
		if ins.Op == OpMul || ins.Op == OpAdd {
			t.Fatalf("&& lowered through arithmetic:\n%s", DumpFunc(f))
		}
	}
}

func TestShortCircuitOrUsesJNZ(t *testing.T) {
	m := lowerSrc(t, "int main(int a) { return a || f(); }")
	f := m.Funcs[0]
	jnzBeforeCall := -1
	callAt := -1
	for i, ins := range f.Code {
		if ins.Op == OpJNZ && callAt < 0 {
			jnzBeforeCall = i
		}
		if ins.Op == OpCall && callAt < 0 {
			callAt = i
		}
	}
	if callAt < 0 || jnzBeforeCall < 0 || jnzBeforeCall > callAt {
		t.Fatalf("|| should skip the right operand via JNZ:\n%s", DumpFunc(f))
	}
}

func TestIfElseShape(t *testing.T) {
	m := lowerSrc(t, "int main(int a) { if (a) return 1; else return 2; }")
	f := m.Funcs[0]
	var nJZ, nJmp, nLabel int
	for _, ins := range f.Code {
		switch ins.Op {
		case OpJZ:
			nJZ++
		case OpJmp:
			nJmp++
		case OpLabel:
			nLabel++
		}
	}
	if nJZ != 1 || nJmp != 1 || nLabel != 2 {
		t.Fatalf("if/else: got %d JZ, %d JMP, %d labels, want 1/1/2:\n%s", nJZ, nJmp, nLabel, DumpFunc(f))
	}
}

func TestIfWithoutElse(t *testing.T) {
	m := lowerSrc(t, "int main(int a) { if (a) return 1; return 2; }")
	f := m.Funcs[0]
	var nJmp int
	for _, ins := range f.Code {
		if ins.Op == OpJmp {
			nJmp++
		}
	}
	if nJmp != 0 {
		t.Fatalf("if without else needs no unconditional jump:\n%s", DumpFunc(f))
	}
}

func TestForWithoutConditionHasNoTest(t *testing.T) {
	m := lowerSrc(t, "int main() { for (;;) return 1; return 0; }")
	f := m.Funcs[0]
	for _, ins := range f.Code {
		if ins.Op == OpJZ || ins.Op == OpJNZ {
			t.Fatalf("for(;;) must not emit a condition test:\n%s", DumpFunc(f))
		}
	}
}

func TestForLoopShape(t *testing.T) {
	m := lowerSrc(t, "int main() { int s = 0; for (int i = 10; i < 15; i = i + 1) s = s + i; return s; }")
	f := m.Funcs[0]
	// One backward jump to the loop label, one exit branch.
	var loopLabel = -1
	for _, ins := range f.Code {
		if ins.Op == OpLabel && loopLabel < 0 {
			loopLabel = ins.Target
		}
	}
	var backJmp, exitJZ bool
	for _, ins := range f.Code {
		if ins.Op == OpJmp && ins.Target == loopLabel {
			backJmp = true
		}
		if ins.Op == OpJZ {
			exitJZ = true
		}
	}
	if !backJmp || !exitJZ {
		t.Fatalf("loop shape wrong (back jump %v, exit test %v):\n%s", backJmp, exitJZ, DumpFunc(f))
	}
}

func TestCallArgumentOrder(t *testing.T) {
	m := lowerSrc(t, "int main() { return sum6(1, 2, 3, 4, 5, 6); }")
	f := m.Funcs[0]
	var call *Instr
	for i := range f.Code {
		if f.Code[i].Op == OpCall {
			call = &f.Code[i]
		}
	}
	if call == nil || call.Sym != "sum6" {
		t.Fatalf("call not lowered:\n%s", DumpFunc(f))
	}
	if len(call.Args) != 6 {
		t.Fatalf("got %d call args, want 6", len(call.Args))
	}
	// Arguments were evaluated left to right into fresh registers.
	for i := 1; i < len(call.Args); i++ {
		if call.Args[i] <= call.Args[i-1] {
			t.Fatalf("argument registers out of order: %v", call.Args)
		}
	}
}

func TestLabelsUniqueAcrossFunctions(t *testing.T) {
	m := lowerSrc(t, "int f(int a) { if (a) return 1; return 0; } int g(int a) { if (a) return 2; return 0; }")
	seen := map[int]bool{}
	for _, f := range m.Funcs {
		for _, ins := range f.Code {
			if ins.Op == OpLabel {
				if seen[ins.Target] {
					t.Fatalf("label %d emitted by two functions", ins.Target)
				}
				seen[ins.Target] = true
			}
		}
	}
}

func TestGlobalsCarriedThrough(t *testing.T) {
	m := lowerSrc(t, "int tbl[4] = {1, 2, 3};\nint main() { return 0; }")
	if len(m.Globals) != 1 {
		t.Fatalf("got %d globals, want 1", len(m.Globals))
	}
	g := m.Globals[0]
	if g.Name != "tbl" || g.Size != 4 || len(g.Init) != 3 {
		t.Errorf("global: %+v", g)
	}
}

func TestDumpFunc(t *testing.T) {
	m := lowerSrc(t, "int main(int a) { if (a) return 1; return 2; }")
	out := DumpFunc(m.Funcs[0])
	for _, want := range []string{"main(1 params", "LOAD r0, [slot 0]", "JZ r0", "IMM", "RET"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}
