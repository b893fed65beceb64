package main

import (
	"errors"
	"log"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/intcode/intcode"
)

// watchProgram parses progFile now and again whenever it changes, passing
// each program that parses to load. The first successful parse is passed
// with first set.
func watchProgram(progFile string, load func(prog []int64, first bool)) error {
	progFile = filepath.Clean(progFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Watch(filepath.Dir(progFile)); err != nil {
		watcher.Close()
		return err
	}
	go func() {
		defer watcher.Close()
		started := false
		run := time.After(1 * time.Millisecond)
		for {
			select {
			case <-run:
				prog, err := intcode.ReadFile(progFile)
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				load(prog, !started)
				started = true
			case ev := <-watcher.Event:
				if ev.Name == progFile && !ev.IsAttrib() {
					run = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				log.Printf("dev: watcher: %v", err)
			}
		}
	}()
	return nil
}

// devMode runs progFile with the given input, running it again from the
// start each time the file changes. It does not return unless the file
// cannot be watched.
func devMode(progFile string, limit int, input []int64, out intcode.Output) error {
	r := newRunner(limit, input, out)
	progs := make(chan []int64)
	err := watchProgram(progFile, func(prog []int64, first bool) {
		if first {
			log.Printf("dev: run %s", filepath.Base(progFile))
			progs <- prog
			return
		}
		log.Printf("dev: rerun %s", filepath.Base(progFile))
		r.Reset(prog)
	})
	if err != nil {
		return err
	}
	r.Run(<-progs)
	return nil
}

// runner runs a program to completion, abandoning it when a new program
// arrives through Reset.
type runner struct {
	limit int
	input []int64
	out   intcode.Output

	reset     chan []int64
	resetDone chan bool
}

func newRunner(limit int, input []int64, out intcode.Output) *runner {
	return &runner{
		limit:     limit,
		input:     input,
		out:       out,
		reset:     make(chan []int64),
		resetDone: make(chan bool),
	}
}

// Reset stops the running program and starts prog in its place.
func (r *runner) Reset(prog []int64) {
	r.reset <- prog
	<-r.resetDone
}

var errStopped = errors.New("stopped")

// Run runs prog and then serves Reset requests. It never returns.
func (r *runner) Run(prog []int64) {
	var (
		execErr = make(chan error)
		halt    chan bool
		running bool
	)
	start := func(prog []int64) {
		m := intcode.NewMachine(prog)
		m.Limit = r.limit
		halt = make(chan bool)
		running = true
		go func(halt <-chan bool) { execErr <- r.exec(m, halt) }(halt)
	}
	start(prog)
	for {
		select {
		case prog := <-r.reset:
			if running {
				close(halt)
				<-execErr
			}
			start(prog)
			r.resetDone <- true
		case err := <-execErr:
			running = false
			if err != nil {
				log.Printf("dev: %v", err)
			}
		}
	}
}

// exec runs m until it halts, waits for input, fails, or halt is closed.
func (r *runner) exec(m *intcode.Machine, halt <-chan bool) error {
	in := intcode.NewQueue(r.input...)
	for i := 0; ; i++ {
		if i%1024 == 0 {
			select {
			case <-halt:
				return errStopped
			default:
			}
		}
		if err := m.Exec(in, r.out); err != nil {
			return err
		}
		if m.State != intcode.Running {
			log.Printf("dev: %v after %d steps", m.State, m.Steps())
			return nil
		}
	}
}
