package intcode

import "fmt"

// Op represents an Intcode opcode, the last two decimal digits of an
// instruction word.
type Op int64

const (
	ADD Op = 1
	MUL Op = 2
	IN  Op = 3
	OUT Op = 4
	JNZ Op = 5
	JZ  Op = 6
	LT  Op = 7
	EQ  Op = 8
	ARB Op = 9
	HLT Op = 99
)

var opNames = map[Op]string{
	ADD: "ADD",
	MUL: "MUL",
	IN:  "IN",
	OUT: "OUT",
	JNZ: "JNZ",
	JZ:  "JZ",
	LT:  "LT",
	EQ:  "EQ",
	ARB: "ARB",
	HLT: "HLT",
}

func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int64(op))
}

// Valid reports whether op is a known opcode.
func (op Op) Valid() bool {
	_, ok := opNames[op]
	return ok
}

// Params reports the number of parameters that follow the instruction
// word for op.
func (op Op) Params() int {
	switch op {
	case ADD, MUL, LT, EQ:
		return 3
	case JNZ, JZ:
		return 2
	case IN, OUT, ARB:
		return 1
	}
	return 0
}

// Writes reports whether parameter k of op is a write destination.
func (op Op) Writes(k int) bool {
	switch op {
	case ADD, MUL, LT, EQ:
		return k == 2
	case IN:
		return k == 0
	}
	return false
}

// Mode is a parameter mode.
type Mode byte

const (
	Position  Mode = 0
	Immediate Mode = 1
	Relative  Mode = 2
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	}
	return fmt.Sprintf("mode(%d)", byte(m))
}

// Instr is a decoded instruction word.
type Instr struct {
	Op    Op
	Modes [3]Mode
}

// Decode splits an instruction word into its opcode and the modes of the
// parameters that opcode uses. Mode digits beyond the opcode's parameter
// count are ignored.
func Decode(word int64) (Instr, error) {
	in := Instr{Op: Op(word % 100)}
	if !in.Op.Valid() {
		return in, DecodeError{Word: word, Reason: fmt.Sprintf("unknown opcode %d", word%100)}
	}
	div := int64(100)
	for k := 0; k < in.Op.Params(); k++ {
		switch d := (word / div) % 10; d {
		case 0, 1, 2:
			in.Modes[k] = Mode(d)
		default:
			return in, DecodeError{Word: word, Reason: fmt.Sprintf("unknown mode %d for parameter %d", d, k)}
		}
		if in.Op.Writes(k) && in.Modes[k] == Immediate {
			return in, DecodeError{Word: word, Reason: fmt.Sprintf("immediate mode for write parameter %d", k)}
		}
		div *= 10
	}
	return in, nil
}

// Len returns the length of the instruction in memory cells.
func (in Instr) Len() int { return in.Op.Params() + 1 }

// DecodeError is returned when an instruction word cannot be decoded.
type DecodeError struct {
	Addr   int
	Word   int64
	Reason string
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("%s decoding %d at %d", e.Reason, e.Word, e.Addr)
}
