package intcode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Input is a source of input tokens for the IN instruction.
//
// Read returns ErrNoInput when no token is available yet. The machine
// treats this as a request to suspend, not as a failure; any other error
// aborts execution.
type Input interface {
	Read() (string, error)
}

// Output is a sink for the tokens written by the OUT instruction.
type Output interface {
	Write(token string) error
}

// ErrNoInput is returned by an Input that has no token available.
var ErrNoInput = errors.New("no input available")

// Queue is an in-memory, first-in first-out sequence of tokens.
// It can serve as both Input and Output.
type Queue struct {
	tokens []string
}

// NewQueue returns a queue holding the textual forms of vs.
func NewQueue(vs ...int64) *Queue {
	q := &Queue{}
	q.Push(vs...)
	return q
}

// Read pops the token at the front of the queue.
func (q *Queue) Read() (string, error) {
	if len(q.tokens) == 0 {
		return "", ErrNoInput
	}
	t := q.tokens[0]
	q.tokens = q.tokens[1:]
	return t, nil
}

// Write appends token to the back of the queue.
func (q *Queue) Write(token string) error {
	q.tokens = append(q.tokens, token)
	return nil
}

// Push appends the textual forms of vs to the back of the queue.
func (q *Queue) Push(vs ...int64) {
	for _, v := range vs {
		q.tokens = append(q.tokens, strconv.FormatInt(v, 10))
	}
}

// Len returns the number of queued tokens.
func (q *Queue) Len() int { return len(q.tokens) }

// Drain removes and returns every queued token.
func (q *Queue) Drain() []string {
	t := q.tokens
	q.tokens = nil
	return t
}

// Script is an Input that replays a fixed list of tokens. Unlike Queue,
// running out of tokens is an error rather than a suspension.
type Script []string

// Read pops the next token of the script.
func (s *Script) Read() (string, error) {
	if len(*s) == 0 {
		return "", fmt.Errorf("script exhausted: %w", io.ErrUnexpectedEOF)
	}
	t := (*s)[0]
	*s = (*s)[1:]
	return t, nil
}

// Record is an Output that keeps every token written to it.
type Record []string

// Write appends token to the record.
func (r *Record) Write(token string) error {
	*r = append(*r, token)
	return nil
}

// Console reads input tokens one line at a time and writes each output
// token on its own line.
type Console struct {
	r *bufio.Reader
	w io.Writer
}

// NewConsole returns a Console reading from r and writing to w.
// If r is a *bufio.Reader it is used directly, so that input already
// buffered by the caller is not lost.
func NewConsole(r io.Reader, w io.Writer) *Console {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Console{r: br, w: w}
}

// Read returns the next line of input with surrounding space removed.
func (c *Console) Read() (string, error) {
	line, err := c.r.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Write writes token followed by a newline.
func (c *Console) Write(token string) error {
	if _, err := fmt.Fprintln(c.w, token); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// Values parses each token as a signed decimal integer.
func Values(tokens []string) ([]int64, error) {
	vs := make([]int64, len(tokens))
	for i, t := range tokens {
		v, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		vs[i] = v
	}
	return vs, nil
}

// Discard is an Output that drops every token.
var Discard Output = discard{}

type discard struct{}

func (discard) Write(string) error { return nil }
