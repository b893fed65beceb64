package amp

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/nf/intcode/intcode"
)

var (
	serial1 = []int64{3, 15, 3, 16, 1002, 16, 10, 16, 1, 16, 15, 15, 4, 15, 99, 0, 0}
	serial2 = []int64{
		3, 23, 3, 24, 1002, 24, 10, 24, 1002, 23, -1, 23, 101, 5, 23, 23, 1, 24, 23, 23, 4, 23,
		99, 0, 0,
	}
	serial3 = []int64{
		3, 31, 3, 32, 1002, 32, 10, 32, 1001, 31, -2, 31, 1007, 31, 0, 33, 1002, 33, 7, 33, 1,
		33, 31, 31, 1, 32, 31, 31, 4, 31, 99, 0, 0, 0,
	}
	feedback1 = []int64{
		3, 26, 1001, 26, -4, 26, 3, 27, 1002, 27, 2, 27, 1, 27, 26, 27, 4, 27, 1001, 28, -1,
		28, 1005, 28, 6, 99, 0, 0, 5,
	}
	feedback2 = []int64{
		3, 52, 1001, 52, -5, 52, 3, 53, 1, 52, 56, 54, 1007, 54, 5, 55, 1005, 55, 26, 1001, 54,
		-5, 54, 1105, 1, 12, 1, 53, 54, 53, 1008, 54, 0, 55, 1001, 55, 1, 55, 2, 53, 55, 53, 4,
		53, 1001, 56, -1, 56, 1005, 56, 6, 99, 0, 0, 0, 0, 10,
	}
)

func TestThrust(t *testing.T) {
	for i, c := range []struct {
		prog   []int64
		phases []int64
		want   int64
	}{
		{serial1, []int64{4, 3, 2, 1, 0}, 43210},
		{serial2, []int64{0, 1, 2, 3, 4}, 54321},
		{serial3, []int64{1, 0, 4, 3, 2}, 65210},
		{feedback1, []int64{9, 8, 7, 6, 5}, 139629729},
		{feedback2, []int64{9, 7, 8, 5, 6}, 18216},
	} {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			r := NewRing(c.prog, c.phases)
			got, err := r.Run()
			if err != nil {
				t.Fatal(err)
			}
			if got != c.want {
				t.Errorf("thrust = %d, want %d", got, c.want)
			}
			for j, a := range r.Amps {
				if a.M.State != intcode.Halted {
					t.Errorf("amp %d is %v, want halted", j, a.M.State)
				}
			}
		})
	}
}

func TestRingPasses(t *testing.T) {
	r := NewRing(serial1, []int64{4, 3, 2, 1, 0})
	if _, err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if r.Passes != 1 {
		t.Errorf("serial ring took %d passes, want 1", r.Passes)
	}

	r = NewRing(feedback1, []int64{9, 8, 7, 6, 5})
	if _, err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if r.Passes < 2 {
		t.Errorf("feedback ring took %d passes, want several", r.Passes)
	}
}

func TestMax(t *testing.T) {
	for i, c := range []struct {
		prog   []int64
		lo, hi int64
		want   Result
	}{
		{serial1, 0, 4, Result{[]int64{4, 3, 2, 1, 0}, 43210}},
		{serial2, 0, 4, Result{[]int64{0, 1, 2, 3, 4}, 54321}},
		{serial3, 0, 4, Result{[]int64{1, 0, 4, 3, 2}, 65210}},
		{feedback1, 5, 9, Result{[]int64{9, 8, 7, 6, 5}, 139629729}},
		{feedback2, 5, 9, Result{[]int64{9, 7, 8, 5, 6}, 18216}},
	} {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			got, err := Max(c.prog, c.lo, c.hi)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("Max = %v, want %v", got, c.want)
			}
		})
	}
}

func TestMaxEmpty(t *testing.T) {
	if _, err := Max(serial1, 5, 4); err == nil {
		t.Error("Max over empty range returned nil error")
	}
}

func TestRingErrors(t *testing.T) {
	for _, c := range []struct {
		name   string
		prog   []int64
		phases []int64
		want   error
	}{
		{
			// Reads three values but only two arrive.
			name:   "stalled",
			prog:   []int64{3, 9, 3, 9, 3, 9, 99},
			phases: []int64{0, 1},
			want:   ErrStalled,
		},
		{
			name:   "no_signal",
			prog:   []int64{3, 9, 3, 9, 99},
			phases: []int64{0},
			want:   ErrNoSignal,
		},
		{
			// Phase 0 waits for a second input forever; any other
			// phase outputs 1 and halts.
			name:   "inconsistent",
			prog:   []int64{3, 20, 1005, 20, 9, 3, 21, 3, 21, 104, 1, 99},
			phases: []int64{0, 1},
			want:   ErrInconsistent,
		},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, err := Thrust(c.prog, c.phases)
			if !errors.Is(err, c.want) {
				t.Errorf("Thrust returned %v, want %v", err, c.want)
			}
		})
	}
}

func TestRingMachineError(t *testing.T) {
	_, err := Thrust([]int64{3, 9, 42}, []int64{0, 1})
	var de intcode.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("Thrust returned %v, want DecodeError", err)
	}
	if de.Addr != 2 || de.Word != 42 {
		t.Errorf("DecodeError at %d word %d, want at 2 word 42", de.Addr, de.Word)
	}
}

func TestRingEmpty(t *testing.T) {
	if _, err := NewRing(serial1, nil).Run(); err == nil {
		t.Error("Run of empty ring returned nil error")
	}
}

func TestLimit(t *testing.T) {
	_, err := Thrust(serial1, []int64{4, 3, 2, 1, 0}, Limit(10))
	var ae intcode.AddressError
	if !errors.As(err, &ae) {
		t.Errorf("Thrust with small limit returned %v, want AddressError", err)
	}
}

func TestPermutations(t *testing.T) {
	if g, w := Permutations(0, 1), [][]int64{{0, 1}, {1, 0}}; !reflect.DeepEqual(g, w) {
		t.Errorf("Permutations(0, 1) = %v, want %v", g, w)
	}
	want := [][]int64{{5, 6, 7}, {5, 7, 6}, {6, 5, 7}, {6, 7, 5}, {7, 5, 6}, {7, 6, 5}}
	if g := Permutations(5, 7); !reflect.DeepEqual(g, want) {
		t.Errorf("Permutations(5, 7) = %v, want %v", g, want)
	}
	if g := Permutations(3, 2); g != nil {
		t.Errorf("Permutations(3, 2) = %v, want nil", g)
	}
	ps := Permutations(0, 4)
	if len(ps) != 120 {
		t.Fatalf("len(Permutations(0, 4)) = %d, want 120", len(ps))
	}
	seen := map[[5]int64]bool{}
	for _, p := range ps {
		var k [5]int64
		copy(k[:], p)
		if seen[k] {
			t.Errorf("duplicate permutation %v", p)
		}
		seen[k] = true
	}
}
