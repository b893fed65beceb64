package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const testSyms = `
# loop counter and friends
28 count
6 loop
26 acc
6 top
`

func TestParseSymbols(t *testing.T) {
	ss, err := parseSymbols(strings.NewReader(testSyms))
	if err != nil {
		t.Fatal(err)
	}
	want := symbols{{6, "loop"}, {6, "top"}, {26, "acc"}, {28, "count"}}
	if !reflect.DeepEqual(ss, want) {
		t.Fatalf("parseSymbols = %v, want %v", ss, want)
	}

	if g, w := ss.forAddr(6), []symbol{{6, "loop"}, {6, "top"}}; !reflect.DeepEqual(g, w) {
		t.Errorf("forAddr(6) = %v, want %v", g, w)
	}
	if g := ss.forAddr(7); g != nil {
		t.Errorf("forAddr(7) = %v, want nil", g)
	}
	if g, w := ss.withLabelPrefix("c"), []symbol{{28, "count"}}; !reflect.DeepEqual(g, w) {
		t.Errorf("withLabelPrefix(c) = %v, want %v", g, w)
	}

	for _, c := range []struct {
		arg  string
		want symbol
		ok   bool
	}{
		{"acc", symbol{26, "acc"}, true},
		{"26", symbol{26, "acc"}, true},
		{" 100 ", symbol{100, ""}, true},
		{"nope", symbol{}, false},
		{"-1", symbol{}, false},
	} {
		got, ok := ss.resolve(c.arg)
		if got != c.want || ok != c.ok {
			t.Errorf("resolve(%q) = %v, %v; want %v, %v", c.arg, got, ok, c.want, c.ok)
		}
	}
}

func TestParseSymbolsErrors(t *testing.T) {
	for _, in := range []string{
		"6\n",
		"x loop\n",
		"-2 loop\n",
		"6 loop extra\n",
		"6 7\n",
	} {
		if _, err := parseSymbols(strings.NewReader(in)); err == nil {
			t.Errorf("parseSymbols(%q) returned nil error", in)
		}
	}
}

func TestReadSymbols(t *testing.T) {
	dir := t.TempDir()
	prog := filepath.Join(dir, "amp.ic")
	ss, err := readSymbols(prog)
	if err != nil || ss != nil {
		t.Fatalf("readSymbols without file = %v, %v; want nil, nil", ss, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "amp.sym"), []byte(testSyms), 0644); err != nil {
		t.Fatal(err)
	}
	ss, err = readSymbols(prog)
	if err != nil {
		t.Fatal(err)
	}
	if len(ss) != 4 {
		t.Errorf("readSymbols returned %d symbols, want 4", len(ss))
	}
}

func TestSymbolString(t *testing.T) {
	if g, w := (symbol{26, "acc"}).String(), "acc [26]"; g != w {
		t.Errorf("String() = %q, want %q", g, w)
	}
	if g, w := (symbol{addr: 3}).String(), "[3]"; g != w {
		t.Errorf("String() = %q, want %q", g, w)
	}
}
