// Package ir defines a flat, register-oriented intermediate
// representation. Virtual registers are plain indices, fresh for every
// intermediate value and never reused within a function. Labels are
// numbered per module so emitted names stay unique across functions.
package ir

// Reg is a virtual register index, unique within one function.
type Reg int

// None marks an absent register operand.
const None Reg = -1

type Op int

const (
	OpImm        Op = iota // Dst <- Imm
	OpMov                  // Dst <- A
	OpAdd                  // Dst <- A + B
	OpSub                  // Dst <- A - B
	OpMul                  // Dst <- A * B
	OpDiv                  // Dst <- A / B
	OpLt                   // Dst <- A < B (0 or 1)
	OpGt                   // Dst <- A > B (0 or 1)
	OpLoadLocal            // Dst <- frame[Slot]
	OpStoreLocal           // frame[Slot] <- A
	OpLabel                // .L<Target>:
	OpJmp                  // goto .L<Target>
	OpJZ                   // if A == 0 goto .L<Target>
	OpJNZ                  // if A != 0 goto .L<Target>
	OpCall                 // Dst <- Sym(Args...)
	OpRet                  // return A (None: fall back to whatever rax holds)
)

type Instr struct {
	Op     Op
	Dst    Reg
	A, B   Reg
	Imm    int64
	Slot   int
	Target int
	Sym    string
	Args   []Reg
}

type Function struct {
	Name      string
	NumParams int
	FrameSize int // locals area, already alignment-rounded
	NumRegs   int // virtual registers allocated during lowering
	Code      []Instr
}

type Global struct {
	Name string
	Size int
	Init []int64
}

type Module struct {
	Name    string
	Funcs   []*Function
	Globals []*Global
}
