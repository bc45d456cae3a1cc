package x86_64

import (
	"sort"

	"github.com/minicgo/minic/internal/ir"
)

// Linear-scan assignment of virtual registers to a small scratch pool.
// Every vreg also owns a spill slot in the frame, so leaving a value
// unassigned is always correct, just slower.
//
// The pool deliberately avoids %rax and %rcx (emitter scratch) and the
// six argument registers (clobbered while marshalling call arguments).
// Both pool registers are caller-saved, so any value live across a call
// must stay in its spill slot instead.
var allocableRegs = []string{"%r10", "%r11"}

type allocation struct {
	regOf map[ir.Reg]string
}

type liveInterval struct {
	reg   ir.Reg
	start int
	end   int
	spill bool
}

func allocateRegisters(f *ir.Function) allocation {
	// Instruction numbering is just the flat code index.
	var callSites []int
	defAt := make(map[ir.Reg]int)
	lastUseAt := make(map[ir.Reg]int)

	use := func(r ir.Reg, i int) {
		if r >= 0 {
			lastUseAt[r] = i
		}
	}
	def := func(r ir.Reg, i int) {
		if r < 0 {
			return
		}
		if _, ok := defAt[r]; !ok {
			defAt[r] = i
			lastUseAt[r] = i
		}
	}

	for i, ins := range f.Code {
		switch ins.Op {
		case ir.OpImm, ir.OpLoadLocal:
			def(ins.Dst, i)
		case ir.OpMov:
			use(ins.A, i)
			def(ins.Dst, i)
		case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpLt, ir.OpGt:
			use(ins.A, i)
			use(ins.B, i)
			def(ins.Dst, i)
		case ir.OpStoreLocal, ir.OpJZ, ir.OpJNZ, ir.OpRet:
			use(ins.A, i)
		case ir.OpCall:
			for _, a := range ins.Args {
				use(a, i)
			}
			def(ins.Dst, i)
			callSites = append(callSites, i)
		}
	}

	var intervals []liveInterval
	for r, start := range defAt {
		end := lastUseAt[r]
		if end <= start {
			continue // dead value
		}
		iv := liveInterval{reg: r, start: start, end: end}
		for _, cs := range callSites {
			if cs > start && cs < end {
				iv.spill = true
				break
			}
		}
		intervals = append(intervals, iv)
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].start < intervals[j].start })

	type active struct {
		iv  liveInterval
		reg string
	}
	var act []active
	alloc := allocation{regOf: make(map[ir.Reg]string)}

	for _, cur := range intervals {
		// Expire finished intervals.
		live := act[:0]
		for _, a := range act {
			if a.iv.end >= cur.start {
				live = append(live, a)
			}
		}
		act = live

		if cur.spill {
			continue
		}
		taken := map[string]bool{}
		for _, a := range act {
			taken[a.reg] = true
		}
		for _, reg := range allocableRegs {
			if !taken[reg] {
				alloc.regOf[cur.reg] = reg
				act = append(act, active{iv: cur, reg: reg})
				break
			}
		}
		// No free register: the value stays in its spill slot.
	}
	return alloc
}
