package intcode

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Parse parses a program image: comma-separated signed decimal integers,
// optionally surrounded by space.
func Parse(text string) ([]int64, error) {
	words := strings.Split(strings.TrimRight(text, "\r\n"), ",")
	prog := make([]int64, len(words))
	for i, w := range words {
		v, err := strconv.ParseInt(strings.TrimSpace(w), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("program word %d: %w", i, err)
		}
		prog[i] = v
	}
	return prog, nil
}

// ReadProgram reads a single line from r and parses it as a program image.
// When r is a *bufio.Reader, input following the program line remains
// buffered in r.
func ReadProgram(r io.Reader) ([]int64, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	line, err := br.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	return Parse(line)
}

// ReadFile reads the program image stored in the named file.
func ReadFile(name string) ([]int64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	prog, err := ReadProgram(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return prog, nil
}
