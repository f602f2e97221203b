// Package term draws frames onto a character terminal through tcell.
//
// One logical unit is one terminal cell. Fills set cell backgrounds, text
// sets runes and foregrounds, and strokes use box-drawing characters. Text
// is measured in cells with go-runewidth, so font sizes do not apply.
package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/mattn/go-runewidth"
)

// Options configures a Surface.
type Options struct {
	// Background fills every cell at the start of a frame. The zero color
	// keeps the terminal's default background.
	Background graphics.Color
	// Foreground is used for text drawn without a color.
	Foreground graphics.Color
}

// Surface presents frames on a tcell screen. The caller owns the screen's
// Init and Fini.
type Surface struct {
	screen tcell.Screen
	base   tcell.Style
	opts   Options
	canvas *canvas
	frames int
	cursor string
}

// New returns a surface drawing to screen.
func New(screen tcell.Screen, opts Options) *Surface {
	s := &Surface{screen: screen, opts: opts, base: tcell.StyleDefault}
	if opts.Background != graphics.ColorTransparent {
		s.base = s.base.Background(toTcell(opts.Background))
	}
	if opts.Foreground != graphics.ColorTransparent {
		s.base = s.base.Foreground(toTcell(opts.Foreground))
	}
	s.canvas = &canvas{s: s}
	return s
}

// Screen returns the underlying tcell screen.
func (s *Surface) Screen() tcell.Screen {
	return s.screen
}

// Frames returns how many frames were presented.
func (s *Surface) Frames() int {
	return s.frames
}

// Cursor returns the last cursor requested by the runtime.
func (s *Surface) Cursor() string {
	return s.cursor
}

// SetCursor implements graphics.CursorSetter. Terminals have no pointer
// shapes; the value is kept for status lines.
func (s *Surface) SetCursor(cursor string) {
	s.cursor = cursor
}

// Size implements graphics.Surface.
func (s *Surface) Size() graphics.Size {
	w, h := s.screen.Size()
	return graphics.Size{Width: float64(w), Height: float64(h)}
}

// BeginFrame implements graphics.Surface.
func (s *Surface) BeginFrame() graphics.Canvas {
	s.screen.Fill(' ', s.base)
	s.canvas.state.Reset()
	return s.canvas
}

// EndFrame implements graphics.Surface.
func (s *Surface) EndFrame() error {
	s.frames++
	s.screen.Show()
	if depth := s.canvas.state.Depth(); depth != 0 {
		return fmt.Errorf("frame ended with %d unbalanced saves", depth)
	}
	return nil
}

// Sync redraws the whole terminal, for use after a resize.
func (s *Surface) Sync() {
	s.screen.Sync()
}

// MeasureText implements graphics.TextMeasurer. Every line is one cell high.
func (s *Surface) MeasureText(text string, _ graphics.TextStyle) graphics.TextMetrics {
	return graphics.TextMetrics{
		Width:  float64(runewidth.StringWidth(text)),
		Height: 1,
		Ascent: 1,
	}
}

func toTcell(c graphics.Color) tcell.Color {
	r, g, b, _ := c.Components()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
