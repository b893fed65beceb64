package intcode

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// snapshot is the encoded form of a Machine.
type snapshot struct {
	Mem     []int64 `cbor:"1,keyasint"`
	PC      int     `cbor:"2,keyasint"`
	RelBase int64   `cbor:"3,keyasint"`
	State   State   `cbor:"4,keyasint"`
	Limit   int     `cbor:"5,keyasint,omitempty"`
	Steps   int64   `cbor:"6,keyasint,omitempty"`
}

var snapEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("intcode: creating CBOR enc mode: %v", err))
	}
	snapEncMode = em
}

// MarshalSnapshot encodes the complete state of m, so that a suspended
// machine can be saved and resumed later.
func MarshalSnapshot(m *Machine) ([]byte, error) {
	return snapEncMode.Marshal(snapshot{
		Mem:     m.Mem,
		PC:      m.PC,
		RelBase: m.RelBase,
		State:   m.State,
		Limit:   m.Limit,
		Steps:   m.steps,
	})
}

// UnmarshalSnapshot decodes a machine encoded by MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (*Machine, error) {
	var s snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("intcode: unmarshal snapshot: %w", err)
	}
	if s.PC < 0 || s.State > Halted {
		return nil, fmt.Errorf("intcode: invalid snapshot (pc %d, state %v)", s.PC, s.State)
	}
	return &Machine{
		Mem:     s.Mem,
		PC:      s.PC,
		RelBase: s.RelBase,
		State:   s.State,
		Limit:   s.Limit,
		steps:   s.Steps,
	}, nil
}
