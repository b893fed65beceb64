package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/intcode/intcode"
)

type debugger struct {
	log   *tview.TextView
	watch *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	cmds  chan string
	progs chan []int64
	done  chan bool

	mu      sync.Mutex
	syms    symbols
	brk     *symbol
	watches []symbol

	// Owned by the loop goroutine.
	vm vm
}

func (d *debugger) symbols() symbols {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.syms
}

func (d *debugger) setSymbols(s symbols) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.syms = s
}

func (d *debugger) breakAddr() (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.brk == nil {
		return 0, false
	}
	return d.brk.addr, true
}

func newDebugger(limit int, input []int64, watches []int) *debugger {
	d := &debugger{
		log: tview.NewTextView().
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),

		cmds:  make(chan string, 16),
		progs: make(chan []int64, 1),
		done:  make(chan bool),

		vm: vm{limit: limit, input: input, out: logOutput{}},
	}
	for _, a := range watches {
		d.watches = append(d.watches, symbol{addr: a})
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watch, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if cmd, arg, ok := strings.Cut(t, " "); ok {
			switch cmd {
			case "b", "break", "w", "watch":
				for _, s := range d.symbols().withLabelPrefix(arg) {
					entries = append(entries, cmd+" "+s.label)
				}
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		line := strings.TrimSpace(d.input.GetText())
		if line == "" {
			return
		}
		d.input.SetText("")
		if line == "exit" {
			d.app.Stop()
			return
		}
		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "b", "break":
			if arg == "" {
				d.mu.Lock()
				d.brk = nil
				d.mu.Unlock()
				log.Print("cleared break")
				break
			}
			s, ok := d.symbols().resolve(arg)
			if !ok {
				log.Printf("invalid address %q", arg)
				return
			}
			d.mu.Lock()
			d.brk = &s
			d.mu.Unlock()
			log.Printf("set break %v", s)
		case "w", "watch":
			s, ok := d.symbols().resolve(arg)
			if !ok {
				log.Printf("invalid address %q", arg)
				return
			}
			d.mu.Lock()
			d.watches = append(d.watches, s)
			d.mu.Unlock()
			log.Printf("watching %v", s)
		default:
			d.cmds <- line
			return
		}
		d.cmds <- "refresh"
	})
	return d
}

// Run runs the debugger UI until the exit command is given.
func (d *debugger) Run() error {
	defer close(d.done)
	return d.app.Run()
}

// Load replaces the program being debugged.
func (d *debugger) Load(prog []int64) {
	select {
	case <-d.progs:
	default:
	}
	d.progs <- prog
}

// loop executes debugger commands against the machine until the UI exits.
// It does nothing until the first program is loaded.
func (d *debugger) loop() {
	select {
	case prog := <-d.progs:
		d.vm.load(prog)
	case <-d.done:
		return
	}
	d.report()
	for {
		if d.vm.running {
			select {
			case cmd := <-d.cmds:
				d.command(cmd)
			case prog := <-d.progs:
				d.vm.load(prog)
				log.Print("dev: reset")
			case <-d.done:
				return
			default:
				d.burst()
			}
		} else {
			select {
			case cmd := <-d.cmds:
				d.command(cmd)
			case prog := <-d.progs:
				d.vm.load(prog)
				log.Print("dev: reset")
			case <-d.done:
				return
			}
		}
		d.report()
	}
}

func (d *debugger) command(line string) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	v := &d.vm
	switch cmd {
	case "refresh":
	case "s", "step":
		n := 1
		if arg != "" {
			var err error
			if n, err = strconv.Atoi(arg); err != nil || n < 1 {
				log.Printf("invalid step count %q", arg)
				return
			}
		}
		v.running = false
		for i := 0; i < n; i++ {
			if v.exec() {
				break
			}
		}
	case "c", "continue":
		if v.m.State == intcode.Halted {
			log.Print("halted")
			return
		}
		v.running = true
	case "p", "pause":
		v.running = false
	case "i", "input":
		vs, err := intcode.Values(strings.Fields(arg))
		if err != nil {
			log.Printf("invalid input: %v", err)
			return
		}
		v.in.Push(vs...)
		log.Printf("queued %v", vs)
	case "r", "reset":
		v.load(v.prog)
		log.Print("reset")
	case "save":
		data, err := intcode.MarshalSnapshot(v.m)
		if err == nil {
			err = os.WriteFile(arg, data, 0644)
		}
		if err != nil {
			log.Printf("save: %v", err)
			return
		}
		log.Printf("saved %s", arg)
	case "load":
		data, err := os.ReadFile(arg)
		if err != nil {
			log.Printf("load: %v", err)
			return
		}
		m, err := intcode.UnmarshalSnapshot(data)
		if err != nil {
			log.Printf("load: %v", err)
			return
		}
		v.m, v.running = m, false
		log.Printf("loaded %s", arg)
	default:
		log.Printf("unknown command %q", line)
	}
}

// burst executes instructions until the machine stops, reaches the
// breakpoint, or a fixed number of instructions have run.
func (d *debugger) burst() {
	v := &d.vm
	brk, hasBrk := d.breakAddr()
	for i := 0; i < 10000; i++ {
		if v.exec() {
			v.running = false
			return
		}
		if hasBrk && v.m.PC == brk {
			v.running = false
			log.Printf("break at %d", brk)
			return
		}
	}
}

func (d *debugger) report() {
	var (
		v     = &d.vm
		watch = d.watchContent(v.m)
		kind  = v.kind(d.breakAddr())
		state = stateMsg(d.symbols(), v.m, kind, v.in.Len())
	)
	d.app.QueueUpdateDraw(func() {
		switch kind {
		case pauseState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case runState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkGreen)
		case breakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case inputState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case haltState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.watch.SetText(watch)
		d.state.SetText(state)
	})
}

func (d *debugger) watchContent(m *intcode.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	if s := d.brk; s != nil {
		fmt.Fprintf(&b, "%v brk!\n", *s)
	}
	for _, w := range d.watches {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%v %d", w, m.Mem.Peek(w.addr))
	}
	return b.String()
}

type stateKind int

const (
	pauseState stateKind = iota
	runState
	breakState
	inputState
	haltState
)

func (k stateKind) String() string {
	switch k {
	case runState:
		return "[run]  "
	case breakState:
		return "[break]"
	case inputState:
		return "[input]"
	case haltState:
		return "[HALT!]"
	}
	return "[pause]"
}

func stateMsg(syms symbols, m *intcode.Machine, k stateKind, queued int) string {
	var pcSym string
	if s := syms.forAddr(m.PC); len(s) > 0 {
		pcSym = s[0].label + ": "
	}
	dis, _ := m.Disasm(m.PC)
	return fmt.Sprintf("%6d %s %s%s\nrb: %d  steps: %d  queued: %d\n",
		m.PC, k, pcSym, dis, m.RelBase, m.Steps(), queued)
}

// vm is the machine under the debugger's control.
type vm struct {
	limit int
	input []int64
	out   intcode.Output

	prog    []int64
	m       *intcode.Machine
	in      *intcode.Queue
	running bool
}

func (v *vm) load(prog []int64) {
	v.prog = prog
	v.m = intcode.NewMachine(prog)
	v.m.Limit = v.limit
	v.in = intcode.NewQueue(v.input...)
	v.running = false
}

// exec executes one instruction and reports whether execution should
// stop.
func (v *vm) exec() bool {
	if v.m.State == intcode.Halted {
		log.Print("halted")
		return true
	}
	if err := v.m.Exec(v.in, v.out); err != nil {
		log.Printf("error: %v", err)
		return true
	}
	switch v.m.State {
	case intcode.NeedsInput:
		log.Print("waiting for input")
		return true
	case intcode.Halted:
		log.Printf("halted after %d steps", v.m.Steps())
		return true
	}
	return false
}

func (v *vm) kind(brk int, hasBrk bool) stateKind {
	switch {
	case v.m.State == intcode.Halted:
		return haltState
	case v.m.State == intcode.NeedsInput:
		return inputState
	case v.running:
		return runState
	case hasBrk && v.m.PC == brk:
		return breakState
	}
	return pauseState
}

// logOutput is an Output that logs each token.
type logOutput struct{}

func (logOutput) Write(token string) error {
	log.Printf("out: %s", token)
	return nil
}

// debugMode runs progFile under the debugger. If dev is set the program
// is reloaded whenever the file changes.
func debugMode(progFile string, dev bool, limit int, input []int64, watches []int) error {
	d := newDebugger(limit, input, watches)
	loadSyms := func() {
		syms, err := readSymbols(progFile)
		if err != nil {
			log.Printf("reading symbols: %v", err)
		}
		d.setSymbols(syms)
	}
	if dev {
		err := watchProgram(progFile, func(prog []int64, first bool) {
			loadSyms()
			d.Load(prog)
		})
		if err != nil {
			return err
		}
	} else {
		prog, err := intcode.ReadFile(progFile)
		if err != nil {
			return err
		}
		loadSyms()
		d.Load(prog)
	}

	log.SetPrefix("")
	log.SetOutput(d.log)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetPrefix("intcode: ")
	}()
	go d.loop()
	return d.Run()
}
