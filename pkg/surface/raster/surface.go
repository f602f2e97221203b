// Package raster implements a drawing surface backed by an in-memory
// *image.RGBA. Shapes are filled with the x/image vector rasterizer, text
// is drawn with a bitmap face and images are resampled with x/image/draw.
//
// It is used for offscreen rendering (the render command) and as a
// pixel-exact surface in tests.
package raster

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/go-drift/weave/pkg/graphics"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Options configures a Surface.
type Options struct {
	// Scale is device pixels per logical unit. Zero means 1.
	Scale float64
	// Clear fills the image at the start of every frame. The zero color
	// clears to transparent.
	Clear graphics.Color
	// Face draws and measures text. Nil uses basicfont.Face7x13.
	Face font.Face
}

// Surface renders frames into an RGBA image.
type Surface struct {
	img    *image.RGBA
	size   graphics.Size
	scale  float64
	clear  graphics.Color
	face   font.Face
	canvas *canvas
	frames int
}

// New returns a surface of the given logical size.
func New(width, height float64, opts Options) *Surface {
	s := &Surface{scale: opts.Scale, clear: opts.Clear, face: opts.Face}
	if s.scale <= 0 {
		s.scale = 1
	}
	if s.face == nil {
		s.face = basicfont.Face7x13
	}
	s.Resize(width, height)
	return s
}

// Resize reallocates the image. The next frame repaints everything.
func (s *Surface) Resize(width, height float64) {
	s.size = graphics.Size{Width: max(0, width), Height: max(0, height)}
	w := int(s.size.Width*s.scale + 0.5)
	h := int(s.size.Height*s.scale + 0.5)
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
	s.canvas = newCanvas(s)
}

// Size implements graphics.Surface.
func (s *Surface) Size() graphics.Size {
	return s.size
}

// Image returns the backing image. It holds the last presented frame.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Frames returns how many frames were presented.
func (s *Surface) Frames() int {
	return s.frames
}

// BeginFrame implements graphics.Surface.
func (s *Surface) BeginFrame() graphics.Canvas {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.clear.NRGBA()), image.Point{}, draw.Src)
	s.canvas.reset()
	return s.canvas
}

// EndFrame implements graphics.Surface.
func (s *Surface) EndFrame() error {
	s.frames++
	if depth := s.canvas.state.Depth(); depth != 0 {
		return fmt.Errorf("frame ended with %d unbalanced saves", depth)
	}
	return nil
}

// WritePNG encodes the last frame.
func (s *Surface) WritePNG(w io.Writer) error {
	if err := png.Encode(w, s.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// MeasureText implements graphics.TextMeasurer. The face is scaled from
// its native pixel height to style.FontSize.
func (s *Surface) MeasureText(text string, style graphics.TextStyle) graphics.TextMetrics {
	factor := s.fontScale(style)
	m := s.face.Metrics()
	return graphics.TextMetrics{
		Width:  fixedToFloat(font.MeasureString(s.face, text)) * factor,
		Height: fixedToFloat(m.Height) * factor,
		Ascent: fixedToFloat(m.Ascent) * factor,
	}
}

func (s *Surface) fontScale(style graphics.TextStyle) float64 {
	size := style.FontSize
	if size <= 0 {
		size = graphics.DefaultFontSize
	}
	native := fixedToFloat(s.face.Metrics().Height)
	if native <= 0 {
		return 1
	}
	return size / native
}
