package raster

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/engine"
	"github.com/go-drift/weave/pkg/events"
	"github.com/go-drift/weave/pkg/graphics"
	_ "github.com/go-drift/weave/pkg/widgets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	empty = color.RGBA{}
)

func frame(t *testing.T, s *Surface, paint func(graphics.Canvas)) {
	t.Helper()
	paint(s.BeginFrame())
	require.NoError(t, s.EndFrame())
}

func TestFillRect(t *testing.T) {
	s := New(20, 20, Options{})
	frame(t, s, func(c graphics.Canvas) {
		c.DrawRect(graphics.RectFromLTWH(0, 0, 10, 10), graphics.FillPaint(graphics.ColorRed))
	})
	assert.Equal(t, red, s.Image().RGBAAt(5, 5))
	assert.Equal(t, empty, s.Image().RGBAAt(15, 15))
	assert.Equal(t, 1, s.Frames())
}

func TestTransformAndClip(t *testing.T) {
	s := New(40, 40, Options{})
	frame(t, s, func(c graphics.Canvas) {
		c.Save()
		c.Translate(20, 20)
		c.ClipRect(graphics.RectFromLTWH(0, 0, 5, 5))
		c.DrawRect(graphics.RectFromLTWH(0, 0, 10, 10), graphics.FillPaint(graphics.ColorRed))
		c.Restore()
	})
	img := s.Image()
	assert.Equal(t, red, img.RGBAAt(22, 22))
	assert.Equal(t, empty, img.RGBAAt(27, 27), "outside the clip")
	assert.Equal(t, empty, img.RGBAAt(2, 2), "before the translation")
}

func TestDeviceScale(t *testing.T) {
	s := New(10, 10, Options{Scale: 2})
	assert.Equal(t, 20, s.Image().Bounds().Dx())
	assert.Equal(t, graphics.Size{Width: 10, Height: 10}, s.Size())

	frame(t, s, func(c graphics.Canvas) {
		c.DrawRect(graphics.RectFromLTWH(0, 0, 5, 5), graphics.FillPaint(graphics.ColorRed))
	})
	assert.Equal(t, red, s.Image().RGBAAt(9, 9))
	assert.Equal(t, empty, s.Image().RGBAAt(11, 11))
}

func TestStrokeLine(t *testing.T) {
	s := New(30, 10, Options{})
	frame(t, s, func(c graphics.Canvas) {
		c.DrawLine(graphics.Offset{X: 0, Y: 5}, graphics.Offset{X: 20, Y: 5}, graphics.StrokePaint(graphics.ColorRed, 2))
	})
	assert.Equal(t, red, s.Image().RGBAAt(10, 5))
	assert.Equal(t, empty, s.Image().RGBAAt(10, 8))
	assert.Equal(t, empty, s.Image().RGBAAt(25, 5))
}

func TestLayerAlpha(t *testing.T) {
	s := New(10, 10, Options{})
	frame(t, s, func(c graphics.Canvas) {
		c.SaveLayerAlpha(graphics.RectFromLTWH(0, 0, 10, 10), 0.5)
		c.DrawRect(graphics.RectFromLTWH(0, 0, 10, 10), graphics.FillPaint(graphics.ColorRed))
		c.Restore()
	})
	px := s.Image().RGBAAt(5, 5)
	assert.InDelta(t, 128, int(px.A), 1)
}

func TestClearColorEachFrame(t *testing.T) {
	s := New(4, 4, Options{Clear: graphics.ColorWhite})
	frame(t, s, func(c graphics.Canvas) {
		c.DrawRect(graphics.RectFromLTWH(0, 0, 4, 4), graphics.FillPaint(graphics.ColorRed))
	})
	frame(t, s, func(graphics.Canvas) {})
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, s.Image().RGBAAt(1, 1))
}

func TestUnbalancedSaveFailsFrame(t *testing.T) {
	s := New(4, 4, Options{})
	c := s.BeginFrame()
	c.Save()
	assert.Error(t, s.EndFrame())
	s.BeginFrame()
	assert.NoError(t, s.EndFrame(), "the next frame starts clean")
}

func TestMeasureAndDrawText(t *testing.T) {
	s := New(100, 40, Options{})
	m := s.MeasureText("hi", graphics.TextStyle{FontSize: 13})
	assert.Equal(t, 14.0, m.Width)
	assert.Equal(t, 13.0, m.Height)

	double := s.MeasureText("hi", graphics.TextStyle{FontSize: 26})
	assert.Equal(t, 28.0, double.Width)

	frame(t, s, func(c graphics.Canvas) {
		c.DrawText("HI", graphics.Offset{X: 10, Y: 10}, graphics.TextStyle{Color: graphics.ColorRed, FontSize: 13})
	})
	inked := 0
	img := s.Image()
	for y := 0; y < 40; y++ {
		for x := 0; x < 100; x++ {
			if img.RGBAAt(x, y).A > 0 {
				inked++
				assert.True(t, x >= 10 && x < 24 && y >= 10 && y < 23, "ink at %d,%d outside the text box", x, y)
			}
		}
	}
	assert.Positive(t, inked)
}

func TestWritePNG(t *testing.T) {
	s := New(8, 6, Options{})
	frame(t, s, func(c graphics.Canvas) { c.Clear(graphics.ColorRed) })

	var buf bytes.Buffer
	require.NoError(t, s.WritePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	r, _, _, a := img.At(3, 3).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
}

func TestRuntimeRendersIntoImage(t *testing.T) {
	s := New(100, 50, Options{})
	rt := engine.Create(s, engine.Options{Registry: events.NewRegistry()})
	defer rt.Destroy()

	require.NoError(t, rt.Render(core.Node("Row", nil,
		core.Node("Container", core.Props{"width": 50, "height": 50, "color": "red"}),
		core.Node("Container", core.Props{"width": 50, "height": 50, "color": "#0000ff"}),
	)))
	rt.Pump()

	assert.Equal(t, 1, s.Frames())
	assert.Equal(t, red, s.Image().RGBAAt(25, 25))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, s.Image().RGBAAt(75, 25))
}
