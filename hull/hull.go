// Package hull implements the hull painting robot: a robot that moves over
// a grid of panels, reporting the colour beneath it to an Intcode program
// and painting and turning as the program instructs.
package hull

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"

	"github.com/nf/intcode/intcode"
)

// ErrProtocol is returned when the brain's output does not follow the
// paint-then-turn protocol.
var ErrProtocol = errors.New("robot protocol violation")

// Color is the colour of a hull panel.
type Color int64

const (
	Black Color = 0
	White Color = 1
)

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	}
	return fmt.Sprintf("color(%d)", int64(c))
}

// Dir is the direction the robot faces.
type Dir int

const (
	Up Dir = iota
	Right
	Down
	Left
)

func (d Dir) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	}
	return fmt.Sprintf("dir(%d)", int(d))
}

// turn returns d rotated 90 degrees left (0) or right (1).
func (d Dir) turn(t int64) Dir {
	if t == 0 {
		return (d + 3) % 4
	}
	return (d + 1) % 4
}

func (d Dir) delta() image.Point {
	switch d {
	case Up:
		return image.Pt(0, 1)
	case Right:
		return image.Pt(1, 0)
	case Down:
		return image.Pt(0, -1)
	}
	return image.Pt(-1, 0)
}

// Hull is the grid of panels and the robot moving over it.
// Y increases upwards.
type Hull struct {
	Robot  image.Point
	Facing Dir

	start  Color
	panels map[image.Point]Color
}

// New returns a hull whose panels are all black except the robot's
// starting panel at the origin, which has colour start.
func New(start Color) *Hull {
	return &Hull{start: start, panels: map[image.Point]Color{}}
}

// Color returns the colour of the panel at p.
func (h *Hull) Color(p image.Point) Color {
	if c, ok := h.panels[p]; ok {
		return c
	}
	if p == (image.Point{}) {
		return h.start
	}
	return Black
}

// Painted returns the number of panels painted at least once.
func (h *Hull) Painted() int { return len(h.panels) }

// Bounds returns the smallest rectangle containing every painted panel,
// in hull coordinates.
func (h *Hull) Bounds() image.Rectangle {
	var r image.Rectangle
	first := true
	for p := range h.panels {
		q := image.Rectangle{p, p.Add(image.Pt(1, 1))}
		if first {
			r, first = q, false
			continue
		}
		r = r.Union(q)
	}
	return r
}

// Step paints the panel under the robot with colour c, turns left (0) or
// right (1) and moves forward one panel.
func (h *Hull) Step(c, turn int64) error {
	if c != int64(Black) && c != int64(White) {
		return fmt.Errorf("paint colour %d: %w", c, ErrProtocol)
	}
	if turn != 0 && turn != 1 {
		return fmt.Errorf("turn %d: %w", turn, ErrProtocol)
	}
	h.panels[h.Robot] = Color(c)
	h.Facing = h.Facing.turn(turn)
	h.Robot = h.Robot.Add(h.Facing.delta())
	return nil
}

// Paint runs brain against a new hull whose starting panel has colour
// start, until the brain halts.
//
// Each time the brain is resumed it is given the colour under the robot
// and must output exactly two values, the colour to paint and the
// direction to turn, before it next waits for input or halts. A brain
// that halts without output ends the run normally.
func Paint(brain *intcode.Machine, start Color) (*Hull, error) {
	h := New(start)
	in := intcode.NewQueue()
	for {
		in.Push(int64(h.Color(h.Robot)))
		var out intcode.Queue
		if err := brain.Run(in, &out); err != nil {
			return h, err
		}
		vs, err := intcode.Values(out.Drain())
		if err != nil {
			return h, err
		}
		halted := brain.State == intcode.Halted
		if len(vs) == 0 && halted {
			return h, nil
		}
		if len(vs) != 2 {
			return h, fmt.Errorf("got %d outputs at %v, want 2: %w", len(vs), h.Robot, ErrProtocol)
		}
		if err := h.Step(vs[0], vs[1]); err != nil {
			return h, err
		}
		if halted {
			return h, nil
		}
	}
}

// String renders the painted area with '#' for white panels and ' ' for
// black ones. The first line is the highest row.
func (h *Hull) String() string {
	r := h.Bounds()
	var b strings.Builder
	for y := r.Max.Y - 1; y >= r.Min.Y; y-- {
		for x := r.Min.X; x < r.Max.X; x++ {
			if h.Color(image.Pt(x, y)) == White {
				b.WriteByte('#')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Palette holds the colours used by Image, indexed by panel Color.
var Palette = color.Palette{
	color.RGBA{0x10, 0x10, 0x18, 0xff},
	color.RGBA{0xf0, 0xf0, 0xe8, 0xff},
}

// Image renders the painted area with each panel as a scale×scale square.
func (h *Hull) Image(scale int) image.Image {
	if scale < 1 {
		scale = 1
	}
	r := h.Bounds()
	small := image.NewPaletted(image.Rect(0, 0, r.Dx(), r.Dy()), Palette)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if h.Color(image.Pt(x, y)) == White {
				small.SetColorIndex(x-r.Min.X, r.Max.Y-1-y, 1)
			}
		}
	}
	if scale == 1 {
		return small
	}
	big := image.NewRGBA(image.Rect(0, 0, r.Dx()*scale, r.Dy()*scale))
	draw.NearestNeighbor.Scale(big, big.Bounds(), small, small.Bounds(), draw.Src, nil)
	return big
}
