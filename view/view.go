// Package view shows a stream of images in a window and reports the
// arrow keys as joystick positions.
package view

import (
	"image"
	"image/draw"
	"log"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// Joystick returns the joystick position for a key event: -1 while the
// left arrow is held, 1 while the right arrow is held and 0 when either
// is released. The second result is false for other keys.
func Joystick(e key.Event) (int64, bool) {
	var v int64
	switch e.Code {
	case key.CodeLeftArrow:
		v = -1
	case key.CodeRightArrow:
		v = 1
	default:
		return 0, false
	}
	switch e.Direction {
	case key.DirPress, key.DirNone:
		return v, true
	case key.DirRelease:
		return 0, true
	}
	return 0, false
}

// Main opens a window and displays each image received from frames,
// scaled to fit the window, until frames is closed or the window is
// closed. Joystick positions are sent to keys without blocking; if keys
// is not ready the position is dropped.
//
// Main must be called from the program's main goroutine.
func Main(title string, frames <-chan image.Image, keys chan<- int64) {
	first, ok := <-frames
	if !ok {
		return
	}
	driver.Main(func(s screen.Screen) {
		sz := first.Bounds().Size()
		w, err := s.NewWindow(&screen.NewWindowOptions{
			Title:  title,
			Width:  sz.X,
			Height: sz.Y,
		})
		if err != nil {
			log.Fatal(err)
		}
		defer w.Release()

		type frame struct{ image.Image }
		type closed struct{}
		done := make(chan struct{})
		defer close(done)
		go func() {
			w.Send(frame{first})
			for {
				select {
				case f, ok := <-frames:
					if !ok {
						w.Send(closed{})
						return
					}
					w.Send(frame{f})
				case <-done:
					return
				}
			}
		}()

		v := &win{s: s}
		defer v.release()

		var ws size.Event
		for {
			switch e := w.NextEvent().(type) {
			case size.Event:
				ws = e
				if ws.WidthPx+ws.HeightPx == 0 {
					return
				}

			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case key.Event:
				if e.Code == key.CodeEscape {
					return
				}
				if j, ok := Joystick(e); ok && keys != nil {
					select {
					case keys <- j:
					default:
					}
				}

			case frame:
				if err := v.upload(e.Image); err != nil {
					log.Printf("view: %v", err)
					return
				}
				v.publish(w, ws)

			case paint.Event:
				v.publish(w, ws)

			case closed:
				// Keep showing the last frame until the window is closed.

			case error:
				log.Print(e)
			}
		}
	})
}

type win struct {
	s   screen.Screen
	buf screen.Buffer
	tex screen.Texture
}

func (v *win) upload(m image.Image) (err error) {
	sz := m.Bounds().Size()
	if v.tex == nil || v.tex.Size() != sz {
		v.release()
		v.buf, err = v.s.NewBuffer(sz)
		if err != nil {
			return
		}
		v.tex, err = v.s.NewTexture(sz)
		if err != nil {
			return
		}
	}
	draw.Draw(v.buf.RGBA(), v.buf.Bounds(), m, m.Bounds().Min, draw.Src)
	v.tex.Upload(image.Point{}, v.buf, v.buf.Bounds())
	return nil
}

func (v *win) publish(w screen.Window, ws size.Event) {
	if v.tex == nil {
		return
	}
	dst := ws.Bounds()
	if dst.Empty() {
		dst = v.tex.Bounds()
	}
	w.Scale(dst, v.tex, v.tex.Bounds(), draw.Src, nil)
	w.Publish()
}

func (v *win) release() {
	if v.tex != nil {
		v.tex.Release()
		v.tex = nil
	}
	if v.buf != nil {
		v.buf.Release()
		v.buf = nil
	}
}
