package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/go-drift/weave/pkg/graphics"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// curveSteps is how many segments a curve is split into when stroking.
const curveSteps = 16

// canvas draws straight into the surface image in device space.
type canvas struct {
	s     *Surface
	state graphics.StateTracker
	z     vector.Rasterizer
}

func newCanvas(s *Surface) *canvas {
	c := &canvas{s: s}
	c.reset()
	return c
}

func (c *canvas) reset() {
	c.state.Reset()
	c.state.Scale(c.s.scale, c.s.scale)
}

func (c *canvas) Save() { c.state.Save() }

func (c *canvas) SaveLayerAlpha(_ graphics.Rect, alpha float64) { c.state.SaveLayerAlpha(alpha) }

func (c *canvas) Restore() { c.state.Restore() }

func (c *canvas) Translate(dx, dy float64) { c.state.Translate(dx, dy) }

func (c *canvas) Scale(sx, sy float64) { c.state.Scale(sx, sy) }

func (c *canvas) Rotate(radians float64) { c.state.Rotate(radians) }

func (c *canvas) ClipRect(rect graphics.Rect) { c.state.ClipRect(rect) }

func (c *canvas) Size() graphics.Size { return c.s.size }

// Clear fills the current clip, ignoring the transform and opacity.
func (c *canvas) Clear(col graphics.Color) {
	clip := c.clip()
	if clip.Empty() {
		return
	}
	draw.Draw(c.s.img, clip, image.NewUniform(col.NRGBA()), image.Point{}, draw.Src)
}

func (c *canvas) DrawRect(rect graphics.Rect, paint graphics.Paint) {
	c.DrawPath(graphics.RectPath(rect), paint)
}

func (c *canvas) DrawRRect(rrect graphics.RRect, paint graphics.Paint) {
	c.DrawPath(graphics.RRectPath(rrect), paint)
}

func (c *canvas) DrawCircle(center graphics.Offset, radius float64, paint graphics.Paint) {
	c.DrawPath(graphics.CirclePath(center, radius), paint)
}

func (c *canvas) DrawLine(start, end graphics.Offset, paint graphics.Paint) {
	p := graphics.NewPath()
	p.MoveTo(start.X, start.Y)
	p.LineTo(end.X, end.Y)
	paint.Style = graphics.PaintStyleStroke
	c.DrawPath(p, paint)
}

func (c *canvas) DrawPath(path *graphics.Path, paint graphics.Paint) {
	if path == nil || path.IsEmpty() {
		return
	}
	col := paint.Color.ScaleAlpha(c.state.Alpha)
	if col.Alpha() <= 0 {
		return
	}
	clip := c.clip()
	if clip.Empty() {
		return
	}
	c.z.Reset(clip.Dx(), clip.Dy())
	origin := graphics.Offset{X: float64(clip.Min.X), Y: float64(clip.Min.Y)}
	if paint.Style == graphics.PaintStyleStroke {
		width := paint.StrokeWidth
		if width <= 0 {
			width = 1
		}
		width *= math.Sqrt(math.Abs(c.state.Transform.Determinant()))
		for _, line := range c.flatten(path) {
			c.strokePolyline(line, width/2, origin)
		}
	} else {
		c.fill(path, origin)
	}
	c.z.Draw(c.s.img, clip, image.NewUniform(col.NRGBA()), image.Point{})
}

// fill adds the transformed path to the rasterizer. Affine transforms map
// Bezier control points to the control points of the transformed curve.
func (c *canvas) fill(path *graphics.Path, origin graphics.Offset) {
	pt := func(p graphics.Offset) (float32, float32) {
		d := c.state.Transform.Apply(p).Sub(origin)
		return float32(d.X), float32(d.Y)
	}
	open := false
	for _, cmd := range path.Commands {
		switch cmd.Op {
		case graphics.PathMoveTo:
			if open {
				c.z.ClosePath()
			}
			c.z.MoveTo(pt(cmd.Points[0]))
			open = true
		case graphics.PathLineTo:
			c.z.LineTo(pt(cmd.Points[0]))
		case graphics.PathQuadTo:
			x1, y1 := pt(cmd.Points[0])
			x2, y2 := pt(cmd.Points[1])
			c.z.QuadTo(x1, y1, x2, y2)
		case graphics.PathCubicTo:
			x1, y1 := pt(cmd.Points[0])
			x2, y2 := pt(cmd.Points[1])
			x3, y3 := pt(cmd.Points[2])
			c.z.CubeTo(x1, y1, x2, y2, x3, y3)
		case graphics.PathClose:
			c.z.ClosePath()
			open = false
		}
	}
	if open {
		c.z.ClosePath()
	}
}

// flatten converts path into device-space polylines, one per subpath.
// Closed subpaths repeat their first point at the end.
func (c *canvas) flatten(path *graphics.Path) [][]graphics.Offset {
	var lines [][]graphics.Offset
	var cur []graphics.Offset
	m := c.state.Transform
	last := func() graphics.Offset { return cur[len(cur)-1] }
	for _, cmd := range path.Commands {
		if cmd.Op != graphics.PathMoveTo && len(cur) == 0 {
			continue
		}
		switch cmd.Op {
		case graphics.PathMoveTo:
			if len(cur) > 1 {
				lines = append(lines, cur)
			}
			cur = []graphics.Offset{m.Apply(cmd.Points[0])}
		case graphics.PathLineTo:
			cur = append(cur, m.Apply(cmd.Points[0]))
		case graphics.PathQuadTo:
			p0, p1, p2 := last(), m.Apply(cmd.Points[0]), m.Apply(cmd.Points[1])
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				u := 1 - t
				cur = append(cur, graphics.Offset{
					X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
					Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
				})
			}
		case graphics.PathCubicTo:
			p0, p1, p2, p3 := last(), m.Apply(cmd.Points[0]), m.Apply(cmd.Points[1]), m.Apply(cmd.Points[2])
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				u := 1 - t
				cur = append(cur, graphics.Offset{
					X: u*u*u*p0.X + 3*u*u*t*p1.X + 3*u*t*t*p2.X + t*t*t*p3.X,
					Y: u*u*u*p0.Y + 3*u*u*t*p1.Y + 3*u*t*t*p2.Y + t*t*t*p3.Y,
				})
			}
		case graphics.PathClose:
			cur = append(cur, cur[0])
			lines = append(lines, cur)
			cur = nil
		}
	}
	if len(cur) > 1 {
		lines = append(lines, cur)
	}
	return lines
}

// strokePolyline adds one quad per segment. All quads wind the same way,
// so overlaps at joints do not cancel.
func (c *canvas) strokePolyline(line []graphics.Offset, half float64, origin graphics.Offset) {
	for i := 1; i < len(line); i++ {
		a, b := line[i-1].Sub(origin), line[i].Sub(origin)
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		// extend by half the width so joints overlap
		ex, ey := dx/length*half, dy/length*half
		nx, ny := -ey, ex
		a = graphics.Offset{X: a.X - ex, Y: a.Y - ey}
		b = graphics.Offset{X: b.X + ex, Y: b.Y + ey}
		c.z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
		c.z.LineTo(float32(b.X+nx), float32(b.Y+ny))
		c.z.LineTo(float32(b.X-nx), float32(b.Y-ny))
		c.z.LineTo(float32(a.X-nx), float32(a.Y-ny))
		c.z.ClosePath()
	}
}

// DrawText renders the text at the face's native size into a scratch image
// and resamples it through the current transform.
func (c *canvas) DrawText(text string, position graphics.Offset, style graphics.TextStyle) {
	if text == "" {
		return
	}
	face := c.s.face
	m := face.Metrics()
	w := font.MeasureString(face, text).Ceil()
	h := m.Height.Ceil()
	if w <= 0 || h <= 0 {
		return
	}
	col := style.Color
	if col == graphics.ColorTransparent {
		col = graphics.ColorBlack
	}
	scratch := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  scratch,
		Src:  image.NewUniform(col.NRGBA()),
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: m.Ascent},
	}
	d.DrawString(text)

	factor := c.s.fontScale(style)
	c.DrawImage(scratch, graphics.RectFromLTWH(position.X, position.Y, float64(w)*factor, float64(h)*factor))
}

func (c *canvas) DrawImage(img image.Image, dst graphics.Rect) {
	if img == nil || dst.IsEmpty() {
		return
	}
	sb := img.Bounds()
	if sb.Empty() {
		return
	}
	clip := c.clip()
	if clip.Empty() || c.state.Alpha <= 0 {
		return
	}
	m := c.state.Transform.
		Translate(dst.Left, dst.Top).
		Scale(dst.Width()/float64(sb.Dx()), dst.Height()/float64(sb.Dy())).
		Translate(-float64(sb.Min.X), -float64(sb.Min.Y))
	aff := f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}

	var opts *draw.Options
	if c.state.Alpha < 1 {
		opts = &draw.Options{SrcMask: image.NewUniform(color.Alpha{A: uint8(c.state.Alpha*255 + 0.5)})}
	}
	target := c.s.img.SubImage(clip).(*image.RGBA)
	draw.BiLinear.Transform(target, aff, img, sb, draw.Over, opts)
}

// clip returns the device-space clip rounded out to whole pixels and
// intersected with the image.
func (c *canvas) clip() image.Rectangle {
	bounds := c.s.img.Bounds()
	if c.state.Clip == nil {
		return bounds
	}
	r := c.state.Clip
	return image.Rect(
		int(math.Floor(r.Left)), int(math.Floor(r.Top)),
		int(math.Ceil(r.Right)), int(math.Ceil(r.Bottom)),
	).Intersect(bounds)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
