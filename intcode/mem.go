package intcode

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultLimit is the memory limit, in cells, of a Machine whose Limit is
// zero.
const DefaultLimit = 1 << 24

// Memory is the growable, zero-initialized store of an Intcode machine.
// Reads and writes beyond its length extend it with zeros first.
type Memory []int64

// grow extends m so that addr is a valid index.
func (m *Memory) grow(addr int) {
	if addr < len(*m) {
		return
	}
	if addr < cap(*m) {
		*m = (*m)[:addr+1]
		return
	}
	n := make(Memory, addr+1, 2*addr+2)
	copy(n, *m)
	*m = n
}

// Read returns the value at addr, extending the memory if necessary.
// addr must be non-negative.
func (m *Memory) Read(addr int) int64 {
	m.grow(addr)
	return (*m)[addr]
}

// Write stores v at addr, extending the memory if necessary.
// addr must be non-negative.
func (m *Memory) Write(addr int, v int64) {
	m.grow(addr)
	(*m)[addr] = v
}

// Peek returns the value at addr without extending the memory.
func (m Memory) Peek(addr int) int64 {
	if addr < 0 || addr >= len(m) {
		return 0
	}
	return m[addr]
}

func (m Memory) String() string {
	var b strings.Builder
	for i, v := range m {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(v, 10))
	}
	return b.String()
}

// AddressError is returned when an instruction computes an address that
// cannot be used.
type AddressError struct {
	Addr   int   // address of the instruction
	Target int64 // computed address
	Reason string
}

func (e AddressError) Error() string {
	return fmt.Sprintf("%s: address %d at %d", e.Reason, e.Target, e.Addr)
}
