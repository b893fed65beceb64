package arcade

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Palette holds the colours used by Frame, indexed by Tile.
var Palette = [...]color.RGBA{
	Empty:  {0x10, 0x10, 0x18, 0xff},
	Wall:   {0x70, 0x70, 0x80, 0xff},
	Block:  {0xd0, 0x60, 0x30, 0xff},
	Paddle: {0x40, 0xb0, 0xe0, 0xff},
	Ball:   {0xf0, 0xf0, 0xe8, 0xff},
}

const textPad = 2

// Frame renders the screen with each tile as a scale×scale square and the
// score written beneath the board.
func (s *Screen) Frame(scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	face := basicfont.Face7x13
	text := fmt.Sprintf("SCORE %d", s.Score)

	r := s.Bounds()
	board := image.Rect(0, 0, r.Dx()*scale, r.Dy()*scale)
	w := board.Dx()
	if tw := font.MeasureString(face, text).Ceil() + 2*textPad; tw > w {
		w = tw
	}
	h := board.Dy() + face.Height + 2*textPad
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(Palette[Empty]), image.Point{}, draw.Src)

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			t := s.Tile(image.Pt(x, y))
			if t == Empty {
				continue
			}
			p := image.Pt(x-r.Min.X, y-r.Min.Y).Mul(scale)
			cell := image.Rectangle{p, p.Add(image.Pt(scale, scale))}
			draw.Draw(img, cell, image.NewUniform(Palette[t]), image.Point{}, draw.Src)
		}
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(Palette[Ball]),
		Face: face,
		Dot:  fixed.P(textPad, board.Dy()+textPad+face.Ascent),
	}
	d.DrawString(text)
	return img
}
