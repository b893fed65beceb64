// Package arcade implements an arcade cabinet whose game runs as an
// Intcode program, drawing tiles with triples of output values and reading
// the joystick position as input.
package arcade

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/nf/intcode/intcode"
)

var (
	// ErrProtocol is returned when the game's output is not a sequence
	// of well-formed draw instructions.
	ErrProtocol = errors.New("arcade protocol violation")

	// ErrNoJoystick is returned when the game asks for input but the
	// cabinet has no joystick.
	ErrNoJoystick = errors.New("game needs joystick input")
)

// Tile is the kind of object drawn at a screen position.
type Tile int64

const (
	Empty Tile = iota
	Wall
	Block
	Paddle
	Ball
)

var tileNames = [...]string{"empty", "wall", "block", "paddle", "ball"}

func (t Tile) String() string {
	if t >= 0 && int(t) < len(tileNames) {
		return tileNames[t]
	}
	return fmt.Sprintf("tile(%d)", int64(t))
}

var tileChars = [...]byte{' ', '#', '=', '_', 'o'}

// Screen is the cabinet's display: a sparse grid of tiles and a score.
type Screen struct {
	Score int64

	tiles map[image.Point]Tile
}

// NewScreen returns an empty screen.
func NewScreen() *Screen {
	return &Screen{tiles: map[image.Point]Tile{}}
}

// Tile returns the tile at p.
func (s *Screen) Tile(p image.Point) Tile { return s.tiles[p] }

// Count returns the number of positions showing tile t.
// Positions never drawn are not counted as Empty.
func (s *Screen) Count(t Tile) int {
	n := 0
	for _, u := range s.tiles {
		if u == t {
			n++
		}
	}
	return n
}

// Find returns a position showing tile t. If several do, the one with
// the smallest y, then smallest x, is returned.
func (s *Screen) Find(t Tile) (image.Point, bool) {
	var ps []image.Point
	for p, u := range s.tiles {
		if u == t {
			ps = append(ps, p)
		}
	}
	if len(ps) == 0 {
		return image.Point{}, false
	}
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Y != ps[j].Y {
			return ps[i].Y < ps[j].Y
		}
		return ps[i].X < ps[j].X
	})
	return ps[0], true
}

// Bounds returns the smallest rectangle containing every drawn position.
func (s *Screen) Bounds() image.Rectangle {
	var r image.Rectangle
	first := true
	for p := range s.tiles {
		q := image.Rectangle{p, p.Add(image.Pt(1, 1))}
		if first {
			r, first = q, false
			continue
		}
		r = r.Union(q)
	}
	return r
}

// Draw applies a batch of output tokens, taken three at a time as x, y
// and tile id. The triple (-1, 0, n) sets the score to n instead.
func (s *Screen) Draw(tokens []string) error {
	if len(tokens)%3 != 0 {
		return fmt.Errorf("%d output values is not a whole number of triples: %w", len(tokens), ErrProtocol)
	}
	vs, err := intcode.Values(tokens)
	if err != nil {
		return err
	}
	for i := 0; i < len(vs); i += 3 {
		x, y, id := vs[i], vs[i+1], vs[i+2]
		if x == -1 && y == 0 {
			s.Score = id
			continue
		}
		if id < int64(Empty) || id > int64(Ball) {
			return fmt.Errorf("unknown tile id %d at (%d,%d): %w", id, x, y, ErrProtocol)
		}
		s.tiles[image.Pt(int(x), int(y))] = Tile(id)
	}
	return nil
}

func (s *Screen) String() string {
	r := s.Bounds()
	var b strings.Builder
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			b.WriteByte(tileChars[s.Tile(image.Pt(x, y))])
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "score %d\n", s.Score)
	return b.String()
}

// Joystick decides the joystick position, -1 (left), 0 (neutral) or
// 1 (right), each time the game asks for input.
type Joystick interface {
	Move(s *Screen) (int64, error)
}

// JoystickFunc adapts a function to the Joystick interface.
type JoystickFunc func(s *Screen) (int64, error)

func (f JoystickFunc) Move(s *Screen) (int64, error) { return f(s) }

// Follow is a Joystick that keeps the paddle under the ball.
var Follow Joystick = JoystickFunc(follow)

func follow(s *Screen) (int64, error) {
	paddle, ok := s.Find(Paddle)
	if !ok {
		return 0, fmt.Errorf("no paddle on screen: %w", ErrProtocol)
	}
	ball, ok := s.Find(Ball)
	if !ok {
		return 0, fmt.Errorf("no ball on screen: %w", ErrProtocol)
	}
	switch {
	case ball.X < paddle.X:
		return -1, nil
	case ball.X > paddle.X:
		return 1, nil
	}
	return 0, nil
}

// Cabinet runs a game program and displays its output on a Screen.
type Cabinet struct {
	M      *intcode.Machine
	Screen *Screen

	// Update, if non-nil, is called after each batch of output has been
	// drawn.
	Update func(*Screen)
}

// New returns a cabinet loaded with prog. If freePlay is set, address 0
// is set to 2 so that the game can be played without quarters.
func New(prog []int64, freePlay bool) *Cabinet {
	m := intcode.NewMachine(prog)
	if freePlay {
		m.Mem.Write(0, 2)
	}
	return &Cabinet{M: m, Screen: NewScreen()}
}

// Run runs the game until it halts and returns the final score.
// Whenever the game waits for input, j is asked for the joystick
// position. j may be nil for games that never read input.
func (c *Cabinet) Run(j Joystick) (int64, error) {
	in := intcode.NewQueue()
	for {
		var out intcode.Queue
		if err := c.M.Run(in, &out); err != nil {
			return c.Screen.Score, err
		}
		if err := c.Screen.Draw(out.Drain()); err != nil {
			return c.Screen.Score, err
		}
		if c.Update != nil {
			c.Update(c.Screen)
		}
		if c.M.State == intcode.Halted {
			return c.Screen.Score, nil
		}
		if j == nil {
			return c.Screen.Score, ErrNoJoystick
		}
		v, err := j.Move(c.Screen)
		if err != nil {
			return c.Screen.Score, err
		}
		in.Push(v)
	}
}
