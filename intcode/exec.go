// Package intcode provides an implementation of an Intcode computer,
// called Machine, that can be used to execute Intcode programs.
package intcode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// State is the externally visible execution state of a Machine.
type State byte

const (
	NotStarted State = iota
	Running
	NeedsInput
	Halted
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case NeedsInput:
		return "needs input"
	case Halted:
		return "halted"
	}
	return fmt.Sprintf("state(%d)", byte(s))
}

// Machine is an implementation of an Intcode computer.
type Machine struct {
	Mem     Memory
	PC      int
	RelBase int64
	State   State

	// Limit is the number of addressable memory cells.
	// If zero, DefaultLimit is used.
	Limit int

	steps int64
}

// NewMachine returns a Machine whose memory holds a copy of prog.
func NewMachine(prog []int64) *Machine {
	m := &Machine{Mem: make(Memory, len(prog))}
	copy(m.Mem, prog)
	return m
}

// Clone returns a deep copy of m.
func (m *Machine) Clone() *Machine {
	c := *m
	c.Mem = slices.Clone(m.Mem)
	return &c
}

// Steps returns the number of instructions executed so far.
func (m *Machine) Steps() int64 { return m.steps }

// ErrHalted is returned when a halted machine is asked to run.
var ErrHalted = errors.New("machine is halted")

// Run executes instructions until the machine halts or executes an IN
// instruction for which in has no input available. In the latter case
// m.State is NeedsInput and a later call to Run resumes at the same
// instruction.
func (m *Machine) Run(in Input, out Output) error {
	if m.State == Halted {
		return ErrHalted
	}
	for {
		if err := m.Exec(in, out); err != nil {
			return err
		}
		if m.State != Running {
			return nil
		}
	}
}

// Exec executes the instruction at m.PC. It returns a non-nil error only if
// the instruction cannot be executed, in which case m is left unchanged.
// Suspension for input and halting are reported through m.State.
func (m *Machine) Exec(in Input, out Output) error {
	if m.State == Halted {
		return ErrHalted
	}
	if m.PC < 0 || m.PC >= m.limit() {
		return AddressError{Addr: m.PC, Target: int64(m.PC), Reason: "program counter out of range"}
	}
	ins, err := Decode(m.Mem.Read(m.PC))
	if err != nil {
		if de, ok := err.(DecodeError); ok {
			de.Addr = m.PC
			return de
		}
		return err
	}

	next := Running
	switch ins.Op {
	case ADD, MUL, LT, EQ:
		a, err := m.load(ins, 0)
		if err != nil {
			return err
		}
		b, err := m.load(ins, 1)
		if err != nil {
			return err
		}
		var v int64
		switch ins.Op {
		case ADD:
			v = a + b
		case MUL:
			v = a * b
		case LT:
			v = boolValue(a < b)
		case EQ:
			v = boolValue(a == b)
		}
		if err := m.store(ins, 2, v); err != nil {
			return err
		}
		m.PC += ins.Len()
	case IN:
		tok, err := in.Read()
		if errors.Is(err, ErrNoInput) {
			next = NeedsInput
			break
		}
		if err != nil {
			return fmt.Errorf("input at %d: %w", m.PC, err)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
		if err != nil {
			return fmt.Errorf("input at %d: %w", m.PC, err)
		}
		if err := m.store(ins, 0, v); err != nil {
			return err
		}
		m.PC += ins.Len()
	case OUT:
		v, err := m.load(ins, 0)
		if err != nil {
			return err
		}
		if err := out.Write(strconv.FormatInt(v, 10)); err != nil {
			return fmt.Errorf("output at %d: %w", m.PC, err)
		}
		m.PC += ins.Len()
	case JNZ, JZ:
		v, err := m.load(ins, 0)
		if err != nil {
			return err
		}
		if (v != 0) != (ins.Op == JNZ) {
			m.PC += ins.Len()
			break
		}
		t, err := m.load(ins, 1)
		if err != nil {
			return err
		}
		if t < 0 || t >= int64(m.limit()) {
			return AddressError{Addr: m.PC, Target: t, Reason: "jump target out of range"}
		}
		m.PC = int(t)
	case ARB:
		v, err := m.load(ins, 0)
		if err != nil {
			return err
		}
		rb, ok := addInt64(m.RelBase, v)
		if !ok {
			return AddressError{Addr: m.PC, Target: v, Reason: "relative base overflow"}
		}
		m.RelBase = rb
		m.PC += ins.Len()
	case HLT:
		next = Halted
	default:
		return fmt.Errorf("internal error: %v not implemented", ins.Op)
	}
	if next != NeedsInput {
		m.steps++
	}
	m.State = next
	return nil
}

func (m *Machine) limit() int {
	if m.Limit > 0 {
		return m.Limit
	}
	return DefaultLimit
}

// param returns the raw value of parameter k of the current instruction.
func (m *Machine) param(k int) int64 {
	return m.Mem.Read(m.PC + 1 + k)
}

// addr returns the effective address of parameter k of ins.
func (m *Machine) addr(ins Instr, k int) (int, error) {
	t := m.param(k)
	if ins.Modes[k] == Relative {
		var ok bool
		if t, ok = addInt64(t, m.RelBase); !ok {
			return 0, AddressError{Addr: m.PC, Target: m.param(k), Reason: "relative address overflow"}
		}
	}
	switch {
	case t < 0:
		return 0, AddressError{Addr: m.PC, Target: t, Reason: "negative address"}
	case t >= int64(m.limit()):
		return 0, AddressError{Addr: m.PC, Target: t, Reason: "address beyond memory limit"}
	}
	return int(t), nil
}

// load returns the value of parameter k of ins.
func (m *Machine) load(ins Instr, k int) (int64, error) {
	if ins.Modes[k] == Immediate {
		return m.param(k), nil
	}
	a, err := m.addr(ins, k)
	if err != nil {
		return 0, err
	}
	return m.Mem.Read(a), nil
}

// store writes v to the address given by parameter k of ins.
func (m *Machine) store(ins Instr, k int, v int64) error {
	if ins.Modes[k] == Immediate {
		return DecodeError{Addr: m.PC, Word: m.Mem.Peek(m.PC), Reason: "store to immediate parameter"}
	}
	a, err := m.addr(ins, k)
	if err != nil {
		return err
	}
	m.Mem.Write(a, v)
	return nil
}

// Disasm returns a textual form of the instruction at addr and its length
// in cells. Words that do not decode are shown as data of length 1.
func (m *Machine) Disasm(addr int) (string, int) {
	word := m.Mem.Peek(addr)
	ins, err := Decode(word)
	if err != nil {
		return fmt.Sprintf("DATA %d", word), 1
	}
	var b strings.Builder
	b.WriteString(ins.Op.String())
	for k := 0; k < ins.Op.Params(); k++ {
		p := m.Mem.Peek(addr + 1 + k)
		b.WriteByte(' ')
		switch ins.Modes[k] {
		case Position:
			fmt.Fprintf(&b, "[%d]", p)
		case Immediate:
			fmt.Fprintf(&b, "%d", p)
		case Relative:
			fmt.Fprintf(&b, "[rb%+d]", p)
		}
	}
	return b.String(), ins.Len()
}

func boolValue(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// addInt64 returns a+b and reports whether the sum did not overflow.
func addInt64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}
