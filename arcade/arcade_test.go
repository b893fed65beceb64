package arcade

import (
	"errors"
	"image"
	"testing"

	"github.com/nf/intcode/intcode"
)

// drawProg returns program text that outputs the given triples.
func drawProg(triples ...[3]int64) []int64 {
	var prog []int64
	for _, t := range triples {
		prog = append(prog, 104, t[0], 104, t[1], 104, t[2])
	}
	return prog
}

func TestCabinetDraw(t *testing.T) {
	prog := drawProg(
		[3]int64{0, 0, 1},
		[3]int64{1, 0, 1},
		[3]int64{2, 0, 1},
		[3]int64{0, 1, 2},
		[3]int64{1, 1, 2},
		[3]int64{2, 1, 4},
		[3]int64{1, 2, 3},
		[3]int64{-1, 0, 12345},
		[3]int64{1, 1, 0},
	)
	prog = append(prog, 99)
	c := New(prog, false)
	score, err := c.Run(nil)
	if err != nil {
		t.Fatal(err)
	}
	if score != 12345 {
		t.Errorf("score = %d, want 12345", score)
	}
	for tile, want := range map[Tile]int{Wall: 3, Block: 1, Ball: 1, Paddle: 1, Empty: 1} {
		if g := c.Screen.Count(tile); g != want {
			t.Errorf("Count(%v) = %d, want %d", tile, g, want)
		}
	}
	if p, ok := c.Screen.Find(Paddle); !ok || p != image.Pt(1, 2) {
		t.Errorf("Find(Paddle) = %v, %v; want (1,2), true", p, ok)
	}
	if g, w := c.Screen.String(), "###\n= o\n _ \nscore 12345\n"; g != w {
		t.Errorf("String() = %q, want %q", g, w)
	}
}

func TestCabinetFollow(t *testing.T) {
	// Draw a paddle at x=1 and a ball at x=3, read the joystick into
	// address 100 and report it as the score.
	prog := drawProg([3]int64{1, 0, 3}, [3]int64{3, 1, 4})
	prog = append(prog, 3, 100, 104, -1, 104, 0, 4, 100, 99)

	for _, c := range []struct {
		name string
		ball int64
		want int64
	}{
		{"right", 3, 1},
		{"left", 0, -1},
		{"under", 1, 0},
	} {
		t.Run(c.name, func(t *testing.T) {
			p := append([]int64(nil), prog...)
			p[7] = c.ball
			cab := New(p, false)
			var updates int
			cab.Update = func(*Screen) { updates++ }
			score, err := cab.Run(Follow)
			if err != nil {
				t.Fatal(err)
			}
			if score != c.want {
				t.Errorf("joystick = %d, want %d", score, c.want)
			}
			if updates != 2 {
				t.Errorf("Update called %d times, want 2", updates)
			}
		})
	}
}

func TestCabinetNoJoystick(t *testing.T) {
	c := New([]int64{3, 100, 99}, false)
	if _, err := c.Run(nil); !errors.Is(err, ErrNoJoystick) {
		t.Errorf("Run returned %v, want %v", err, ErrNoJoystick)
	}
}

func TestFollowMissingTiles(t *testing.T) {
	c := New(append(drawProg([3]int64{0, 0, 3}), 3, 100, 99), false)
	if _, err := c.Run(Follow); !errors.Is(err, ErrProtocol) {
		t.Errorf("Run without ball returned %v, want %v", err, ErrProtocol)
	}
}

func TestJoystickError(t *testing.T) {
	boom := errors.New("boom")
	c := New([]int64{3, 100, 99}, false)
	_, err := c.Run(JoystickFunc(func(*Screen) (int64, error) { return 0, boom }))
	if err != boom {
		t.Errorf("Run returned %v, want %v", err, boom)
	}
}

func TestCabinetProtocol(t *testing.T) {
	for _, c := range []struct {
		name string
		prog []int64
	}{
		{"partial triple", []int64{104, 1, 104, 2, 99}},
		{"unknown tile", append(drawProg([3]int64{0, 0, 7}), 99)},
		{"negative tile", append(drawProg([3]int64{0, 0, -1}), 99)},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(c.prog, false).Run(nil)
			if !errors.Is(err, ErrProtocol) {
				t.Errorf("Run returned %v, want %v", err, ErrProtocol)
			}
		})
	}
}

func TestFreePlay(t *testing.T) {
	prog := []int64{1, 0, 0, 0, 99}
	c := New(prog, true)
	if g := c.M.Mem.Peek(0); g != 2 {
		t.Errorf("address 0 = %d with free play, want 2", g)
	}
	if prog[0] != 1 {
		t.Error("New modified the caller's program")
	}
	if g := New(prog, false).M.Mem.Peek(0); g != 1 {
		t.Errorf("address 0 = %d without free play, want 1", g)
	}
}

func TestCabinetMachineError(t *testing.T) {
	_, err := New([]int64{104, 0, 12}, false).Run(nil)
	var de intcode.DecodeError
	if !errors.As(err, &de) {
		t.Errorf("Run returned %v, want DecodeError", err)
	}
}

func TestFrame(t *testing.T) {
	s := NewScreen()
	if err := s.Draw([]string{"0", "0", "1", "3", "1", "3", "-1", "0", "7"}); err != nil {
		t.Fatal(err)
	}
	img := s.Frame(4)
	b := img.Bounds()
	if b.Dx() < 16 || b.Dy() <= 8 {
		t.Fatalf("Frame(4) bounds = %v, want at least 16 wide and more than 8 high", b)
	}
	for _, c := range []struct {
		x, y int
		tile Tile
	}{
		{0, 0, Wall},
		{3, 3, Wall},
		{12, 4, Paddle},
		{15, 7, Paddle},
		{5, 5, Empty},
	} {
		if g := img.RGBAAt(c.x, c.y); g != Palette[c.tile] {
			t.Errorf("pixel (%d,%d) = %v, want %v colour %v", c.x, c.y, g, c.tile, Palette[c.tile])
		}
	}
}
