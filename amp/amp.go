// Package amp connects Intcode machines into amplifier rings, where each
// machine's output is the next machine's input and the last machine's
// output is fed back to the first.
package amp

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/nf/intcode/intcode"
)

var (
	// ErrInconsistent is returned when the last amplifier halts while
	// others in the ring are still running.
	ErrInconsistent = errors.New("last amplifier halted before the others")

	// ErrNoSignal is returned when the ring halts without the last
	// amplifier having emitted any value.
	ErrNoSignal = errors.New("last amplifier halted without output")

	// ErrStalled is returned when every running amplifier waits for
	// input that no other amplifier will produce.
	ErrStalled = errors.New("amplifiers wait for input that will never arrive")
)

// Amp is one amplifier of a ring.
type Amp struct {
	M     *intcode.Machine
	Phase int64

	in *intcode.Queue
}

// Ring is a sequence of amplifiers whose outputs feed the next amplifier,
// with the last feeding the first.
type Ring struct {
	Amps []*Amp

	// Passes is the number of times each amplifier has been given a
	// chance to run.
	Passes int
}

// Option configures a Ring.
type Option func(*Ring)

// Limit sets the memory limit of every machine in the ring.
func Limit(cells int) Option {
	return func(r *Ring) {
		for _, a := range r.Amps {
			a.M.Limit = cells
		}
	}
}

// NewRing returns a ring of len(phases) amplifiers, each running its own
// copy of prog. Each amplifier's first input is its phase setting; the
// first amplifier's second input is the initial signal 0.
func NewRing(prog []int64, phases []int64, opts ...Option) *Ring {
	r := &Ring{}
	for _, p := range phases {
		r.Amps = append(r.Amps, &Amp{
			M:     intcode.NewMachine(prog),
			Phase: p,
			in:    intcode.NewQueue(p),
		})
	}
	if len(r.Amps) > 0 {
		r.Amps[0].in.Push(0)
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run drives the amplifiers in ring order until the last one halts and
// returns the last value it emitted.
//
// Amplifiers are resumed strictly in order; each receives the output its
// predecessor produced during its most recent resumption. Output sent to
// an amplifier that has already halted is dropped.
func (r *Ring) Run() (int64, error) {
	if len(r.Amps) == 0 {
		return 0, errors.New("empty ring")
	}
	var (
		last   = r.Amps[len(r.Amps)-1]
		batch  []string
		signal int64
		have   bool
	)
	for {
		var produced, halted bool
		for i, a := range r.Amps {
			if a.M.State == intcode.Halted {
				batch = nil
				continue
			}
			for _, t := range batch {
				a.in.Write(t)
			}
			var out intcode.Queue
			if err := a.M.Run(a.in, &out); err != nil {
				return 0, fmt.Errorf("amp %d: %w", i, err)
			}
			batch = out.Drain()
			produced = produced || len(batch) > 0
			halted = halted || a.M.State == intcode.Halted
			if a == last && len(batch) > 0 {
				vs, err := intcode.Values(batch)
				if err != nil {
					return 0, fmt.Errorf("amp %d: %w", i, err)
				}
				signal, have = vs[len(vs)-1], true
			}
		}
		r.Passes++

		if last.M.State == intcode.Halted {
			for i, a := range r.Amps {
				if a.M.State != intcode.Halted {
					return 0, fmt.Errorf("amp %d %v: %w", i, a.M.State, ErrInconsistent)
				}
			}
			if !have {
				return 0, ErrNoSignal
			}
			return signal, nil
		}
		if !produced && !halted {
			return 0, fmt.Errorf("after %d passes: %w", r.Passes, ErrStalled)
		}
	}
}

// Thrust runs prog in a ring with the given phase settings and returns
// the resulting thrust signal.
func Thrust(prog []int64, phases []int64, opts ...Option) (int64, error) {
	return NewRing(prog, phases, opts...).Run()
}

// Result is the outcome of one phase setting sequence.
type Result struct {
	Phases []int64
	Signal int64
}

// Max tries every ordering of the phase settings lo through hi and
// returns the one producing the highest thrust signal. Among equal
// signals the first ordering found wins.
func Max(prog []int64, lo, hi int64, opts ...Option) (Result, error) {
	var (
		best  Result
		found bool
	)
	for _, phases := range Permutations(lo, hi) {
		s, err := Thrust(prog, phases, opts...)
		if err != nil {
			return Result{}, fmt.Errorf("phases %v: %w", phases, err)
		}
		if !found || s > best.Signal {
			best, found = Result{Phases: phases, Signal: s}, true
		}
	}
	if !found {
		return Result{}, fmt.Errorf("no phase settings in range %d..%d", lo, hi)
	}
	return best, nil
}

// Permutations returns every ordering of the values lo through hi
// inclusive, in lexicographic order.
func Permutations(lo, hi int64) [][]int64 {
	if lo > hi {
		return nil
	}
	var (
		perms [][]int64
		used  = make([]bool, hi-lo+1)
		cur   = make([]int64, 0, hi-lo+1)
		walk  func()
	)
	walk = func() {
		if len(cur) == len(used) {
			perms = append(perms, slices.Clone(cur))
			return
		}
		for i := range used {
			if used[i] {
				continue
			}
			used[i] = true
			cur = append(cur, lo+int64(i))
			walk()
			cur = cur[:len(cur)-1]
			used[i] = false
		}
	}
	walk()
	return perms
}
