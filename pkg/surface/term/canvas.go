package term

import (
	"image"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/mattn/go-runewidth"
)

// canvas rasterizes onto cells. A cell is covered by a shape when its
// center is.
type canvas struct {
	s     *Surface
	state graphics.StateTracker
}

func (c *canvas) Save() { c.state.Save() }

func (c *canvas) SaveLayerAlpha(_ graphics.Rect, alpha float64) { c.state.SaveLayerAlpha(alpha) }

func (c *canvas) Restore() { c.state.Restore() }

func (c *canvas) Translate(dx, dy float64) { c.state.Translate(dx, dy) }

func (c *canvas) Scale(sx, sy float64) { c.state.Scale(sx, sy) }

func (c *canvas) Rotate(radians float64) { c.state.Rotate(radians) }

func (c *canvas) ClipRect(rect graphics.Rect) { c.state.ClipRect(rect) }

func (c *canvas) Size() graphics.Size { return c.s.Size() }

func (c *canvas) Clear(col graphics.Color) {
	c.cells(c.bounds(), func(x, y int) {
		c.setBackground(x, y, toTcell(col))
	})
}

func (c *canvas) DrawRect(rect graphics.Rect, paint graphics.Paint) {
	if paint.Style == graphics.PaintStyleStroke {
		c.DrawPath(graphics.RectPath(rect), paint)
		return
	}
	c.fill(rect, paint.Color, rect.Contains)
}

func (c *canvas) DrawRRect(rrect graphics.RRect, paint graphics.Paint) {
	if paint.Style == graphics.PaintStyleStroke {
		c.DrawPath(graphics.RRectPath(rrect), paint)
		return
	}
	c.fill(rrect.Rect, paint.Color, rrect.Rect.Contains)
}

func (c *canvas) DrawCircle(center graphics.Offset, radius float64, paint graphics.Paint) {
	if paint.Style == graphics.PaintStyleStroke {
		c.DrawPath(graphics.CirclePath(center, radius), paint)
		return
	}
	bounds := graphics.Rect{Left: center.X - radius, Top: center.Y - radius, Right: center.X + radius, Bottom: center.Y + radius}
	c.fill(bounds, paint.Color, func(p graphics.Offset) bool {
		return math.Hypot(p.X-center.X, p.Y-center.Y) <= radius
	})
}

func (c *canvas) DrawLine(start, end graphics.Offset, paint graphics.Paint) {
	m := c.state.Transform
	c.segment(m.Apply(start), m.Apply(end), paint.Color)
}

// DrawPath fills the path's bounds or strokes its outline. Curves are
// reduced to the chord between their end points.
func (c *canvas) DrawPath(path *graphics.Path, paint graphics.Paint) {
	if path == nil || path.IsEmpty() {
		return
	}
	if paint.Style != graphics.PaintStyleStroke {
		b := path.Bounds()
		c.fill(b, paint.Color, b.Contains)
		return
	}
	m := c.state.Transform
	var start, cur graphics.Offset
	for _, cmd := range path.Commands {
		switch cmd.Op {
		case graphics.PathMoveTo:
			start = m.Apply(cmd.Points[0])
			cur = start
		case graphics.PathClose:
			c.segment(cur, start, paint.Color)
			cur = start
		default:
			next := m.Apply(cmd.Points[len(cmd.Points)-1])
			c.segment(cur, next, paint.Color)
			cur = next
		}
	}
}

// DrawText writes runes from the cell under position, keeping the
// backgrounds already painted.
func (c *canvas) DrawText(text string, position graphics.Offset, style graphics.TextStyle) {
	if c.state.Alpha <= 0 {
		return
	}
	fg := c.s.base
	if style.Color != graphics.ColorTransparent {
		fg = fg.Foreground(toTcell(style.Color))
	}
	p := c.state.Transform.Apply(position)
	x, y := int(math.Round(p.X)), int(math.Round(p.Y))
	clip := c.bounds()
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if image.Pt(x, y).In(clip) {
			c.s.screen.SetContent(x, y, r, nil, fg.Background(c.background(x, y)))
		}
		x += w
	}
}

// DrawImage sets each covered cell's background to the image pixel under
// its center.
func (c *canvas) DrawImage(img image.Image, dst graphics.Rect) {
	if img == nil || dst.IsEmpty() {
		return
	}
	sb := img.Bounds()
	if sb.Empty() {
		return
	}
	c.visit(dst, func(x, y int, local graphics.Offset) {
		if !dst.Contains(local) {
			return
		}
		sx := sb.Min.X + int((local.X-dst.Left)/dst.Width()*float64(sb.Dx()))
		sy := sb.Min.Y + int((local.Y-dst.Top)/dst.Height()*float64(sb.Dy()))
		r, g, b, a := img.At(sx, sy).RGBA()
		if a == 0 {
			return
		}
		col := graphics.RGBA(uint8(r*0xff/a), uint8(g*0xff/a), uint8(b*0xff/a), float64(a)/0xffff)
		c.paint(x, y, col)
	})
}

func (c *canvas) fill(local graphics.Rect, col graphics.Color, inside func(graphics.Offset) bool) {
	c.visit(local, func(x, y int, p graphics.Offset) {
		if inside(p) {
			c.paint(x, y, col)
		}
	})
}

// visit calls fn for every clipped cell whose center falls in the device
// bounds of local, passing the center mapped back to local space.
func (c *canvas) visit(local graphics.Rect, fn func(x, y int, p graphics.Offset)) {
	inv, ok := c.state.Transform.Invert()
	if !ok || c.state.Alpha <= 0 {
		return
	}
	device := c.state.Transform.TransformRect(local)
	area := image.Rect(
		int(math.Floor(device.Left)), int(math.Floor(device.Top)),
		int(math.Ceil(device.Right)), int(math.Ceil(device.Bottom)),
	).Intersect(c.bounds())
	c.cells(area, func(x, y int) {
		fn(x, y, inv.Apply(graphics.Offset{X: float64(x) + 0.5, Y: float64(y) + 0.5}))
	})
}

// segment draws a device-space line with box-drawing runes.
func (c *canvas) segment(a, b graphics.Offset, col graphics.Color) {
	if c.state.Alpha <= 0 || col.Alpha() <= 0 {
		return
	}
	ch := '·'
	switch {
	case math.Abs(a.Y-b.Y) < 0.5:
		ch = '─'
	case math.Abs(a.X-b.X) < 0.5:
		ch = '│'
	}
	x0, y0 := int(math.Floor(a.X)), int(math.Floor(a.Y))
	x1, y1 := int(math.Floor(b.X)), int(math.Floor(b.Y))
	if ch == '─' && x1 > x0 {
		x1--
	}
	if ch == '│' && y1 > y0 {
		y1--
	}
	clip := c.bounds()
	style := c.s.base.Foreground(toTcell(col.ScaleAlpha(c.state.Alpha)))
	// Bresenham
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		if image.Pt(x0, y0).In(clip) {
			c.s.screen.SetContent(x0, y0, ch, nil, style.Background(c.background(x0, y0)))
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// paint blends col over the cell's background.
func (c *canvas) paint(x, y int, col graphics.Color) {
	col = col.ScaleAlpha(c.state.Alpha)
	a := col.Alpha()
	if a <= 0 {
		return
	}
	if a < 1 {
		br, bg, bb := c.background(x, y).RGB()
		if br < 0 {
			br, bg, bb = 0, 0, 0
		}
		r, g, b, _ := col.Components()
		mix := func(top uint8, under int32) uint8 {
			return uint8(math.Round(float64(top)*a + float64(under)*(1-a)))
		}
		col = graphics.RGB(mix(r, br), mix(g, bg), mix(b, bb))
	}
	c.setBackground(x, y, toTcell(col))
}

func (c *canvas) setBackground(x, y int, bg tcell.Color) {
	r, comb, style, _ := c.s.screen.GetContent(x, y)
	if r == 0 {
		r = ' '
	}
	c.s.screen.SetContent(x, y, r, comb, style.Background(bg))
}

func (c *canvas) background(x, y int) tcell.Color {
	_, _, style, _ := c.s.screen.GetContent(x, y)
	_, bg, _ := style.Decompose()
	return bg
}

func (c *canvas) bounds() image.Rectangle {
	w, h := c.s.screen.Size()
	screen := image.Rect(0, 0, w, h)
	if c.state.Clip == nil {
		return screen
	}
	r := c.state.Clip
	return image.Rect(
		int(math.Floor(r.Left)), int(math.Floor(r.Top)),
		int(math.Ceil(r.Right)), int(math.Ceil(r.Bottom)),
	).Intersect(screen)
}

func (c *canvas) cells(area image.Rectangle, fn func(x, y int)) {
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			fn(x, y)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
