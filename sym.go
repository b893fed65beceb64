package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

type symbols []symbol

func (s symbols) forAddr(addr int) (ss []symbol) {
	i := sort.Search(len(s), func(i int) bool { return s[i].addr >= addr })
	for ; i < len(s); i++ {
		if s[i].addr != addr {
			break
		}
		ss = append(ss, s[i])
	}
	return ss
}

// resolve returns the symbol named by arg, which is either a label or a
// decimal address.
func (s symbols) resolve(arg string) (symbol, bool) {
	arg = strings.TrimSpace(arg)
	if addr, err := strconv.Atoi(arg); err == nil {
		if addr < 0 {
			return symbol{}, false
		}
		if ss := s.forAddr(addr); len(ss) > 0 {
			return ss[0], true
		}
		return symbol{addr: addr}, true
	}
	for _, sym := range s {
		if sym.label == arg {
			return sym, true
		}
	}
	return symbol{}, false
}

func (s symbols) withLabelPrefix(p string) (ss []symbol) {
	for _, sym := range s {
		if strings.HasPrefix(sym.label, p) {
			ss = append(ss, sym)
		}
	}
	return ss
}

type symbol struct {
	addr  int
	label string
}

func (s symbol) String() string {
	if s.label == "" {
		return fmt.Sprintf("[%d]", s.addr)
	}
	return fmt.Sprintf("%s [%d]", s.label, s.addr)
}

// parseSymbols reads lines of the form "addr label". Blank lines and
// lines starting with '#' are ignored.
func parseSymbols(r io.Reader) (symbols, error) {
	var (
		ss   symbols
		sc   = bufio.NewScanner(r)
		line = 0
	)
	for sc.Scan() {
		line++
		t := strings.TrimSpace(sc.Text())
		if t == "" || t[0] == '#' {
			continue
		}
		f := strings.Fields(t)
		if len(f) != 2 {
			return nil, fmt.Errorf("line %d: want \"addr label\", got %q", line, t)
		}
		addr, err := strconv.Atoi(f[0])
		if err != nil || addr < 0 {
			return nil, fmt.Errorf("line %d: invalid address %q", line, f[0])
		}
		if _, err := strconv.Atoi(f[1]); err == nil {
			return nil, fmt.Errorf("line %d: numeric label %q", line, f[1])
		}
		ss = append(ss, symbol{addr: addr, label: f[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(ss, func(i, j int) bool {
		return ss[i].addr < ss[j].addr
	})
	return ss, nil
}

// symFile returns the name of the symbol file for a program file.
func symFile(progFile string) string {
	return strings.TrimSuffix(progFile, filepath.Ext(progFile)) + ".sym"
}

// readSymbols reads the symbol file for progFile. A missing symbol file
// is not an error.
func readSymbols(progFile string) (symbols, error) {
	f, err := os.Open(symFile(progFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ss, err := parseSymbols(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name(), err)
	}
	return ss, nil
}
