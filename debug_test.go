package main

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nf/intcode/intcode"
)

// echoTwice reads two values and outputs each one.
var echoTwice = []int64{3, 20, 4, 20, 3, 20, 4, 20, 99}

func testDebugger(t *testing.T, prog []int64, input ...int64) (*debugger, *intcode.Record) {
	t.Helper()
	quietLog(t)
	var out intcode.Record
	d := newDebugger(0, input, []int{20})
	d.vm.out = &out
	d.vm.load(prog)
	return d, &out
}

func TestDebuggerStep(t *testing.T) {
	d, out := testDebugger(t, echoTwice, 7)
	d.command("s")
	if d.vm.m.PC != 2 {
		t.Fatalf("PC after one step = %d, want 2", d.vm.m.PC)
	}
	d.command("step 10")
	if d.vm.m.PC != 4 || d.vm.m.State != intcode.NeedsInput {
		t.Fatalf("after step 10 at %d %v, want 4 needs input", d.vm.m.PC, d.vm.m.State)
	}
	if g := d.vm.kind(d.breakAddr()); g != inputState {
		t.Errorf("kind = %v, want %v", g, inputState)
	}
	d.command("i 8")
	d.command("s 3")
	if g, w := *out, (intcode.Record{"7", "8"}); !reflect.DeepEqual(g, w) {
		t.Errorf("output = %q, want %q", g, w)
	}
	d.command("s")
	if d.vm.m.State != intcode.Halted {
		t.Errorf("state = %v, want halted", d.vm.m.State)
	}
	if g := d.vm.kind(d.breakAddr()); g != haltState {
		t.Errorf("kind = %v, want %v", g, haltState)
	}
	if w := d.watchContent(d.vm.m); w != "[20] 8" {
		t.Errorf("watch content = %q, want %q", w, "[20] 8")
	}
}

func TestDebuggerBreak(t *testing.T) {
	d, out := testDebugger(t, echoTwice, 1, 2)
	d.brk = &symbol{addr: 4}
	d.command("c")
	if !d.vm.running {
		t.Fatal("not running after continue")
	}
	d.burst()
	if d.vm.running || d.vm.m.PC != 4 {
		t.Fatalf("after burst running=%v at %d, want stopped at 4", d.vm.running, d.vm.m.PC)
	}
	if g := d.vm.kind(d.breakAddr()); g != breakState {
		t.Errorf("kind = %v, want %v", g, breakState)
	}
	d.command("continue")
	d.burst()
	if d.vm.m.State != intcode.Halted {
		t.Errorf("state = %v, want halted", d.vm.m.State)
	}
	if g, w := *out, (intcode.Record{"1", "2"}); !reflect.DeepEqual(g, w) {
		t.Errorf("output = %q, want %q", g, w)
	}
	d.command("c")
	if d.vm.running {
		t.Error("running after continue on halted machine")
	}
}

func TestDebuggerReset(t *testing.T) {
	d, _ := testDebugger(t, echoTwice, 5)
	d.command("s 2")
	d.command("r")
	if d.vm.m.PC != 0 || d.vm.m.Steps() != 0 || d.vm.in.Len() != 1 {
		t.Errorf("after reset at %d steps %d queued %d, want 0 0 1",
			d.vm.m.PC, d.vm.m.Steps(), d.vm.in.Len())
	}
}

func TestDebuggerSaveLoad(t *testing.T) {
	d, _ := testDebugger(t, echoTwice, 5)
	d.command("s 2")
	file := filepath.Join(t.TempDir(), "snap.cbor")
	d.command("save " + file)
	d.command("r")
	d.command("load " + file)
	if d.vm.m.PC != 4 || d.vm.m.Steps() != 2 || d.vm.m.Mem.Peek(20) != 5 {
		t.Errorf("loaded machine at %d steps %d [20]=%d, want 4 2 5",
			d.vm.m.PC, d.vm.m.Steps(), d.vm.m.Mem.Peek(20))
	}
}

func TestStateMsg(t *testing.T) {
	m := intcode.NewMachine(echoTwice)
	syms := symbols{{0, "start"}}
	got := stateMsg(syms, m, pauseState, 3)
	for _, want := range []string{"[pause]", "start: IN [20]", "queued: 3"} {
		if !strings.Contains(got, want) {
			t.Errorf("stateMsg = %q, missing %q", got, want)
		}
	}
}
