package graphics

import "math"

// PathOp identifies a path command.
type PathOp int

const (
	PathMoveTo PathOp = iota
	PathLineTo
	PathQuadTo
	PathCubicTo
	PathClose
)

// PathCommand is a single path command with its points.
type PathCommand struct {
	Op     PathOp
	Points []Offset
}

// Path is a sequence of drawing commands.
type Path struct {
	Commands []PathCommand
}

// NewPath creates an empty path.
func NewPath() *Path {
	return &Path{}
}

// MoveTo starts a new subpath.
func (p *Path) MoveTo(x, y float64) {
	p.Commands = append(p.Commands, PathCommand{Op: PathMoveTo, Points: []Offset{{x, y}}})
}

// LineTo adds a straight segment.
func (p *Path) LineTo(x, y float64) {
	p.Commands = append(p.Commands, PathCommand{Op: PathLineTo, Points: []Offset{{x, y}}})
}

// QuadTo adds a quadratic Bezier segment.
func (p *Path) QuadTo(x1, y1, x2, y2 float64) {
	p.Commands = append(p.Commands, PathCommand{Op: PathQuadTo, Points: []Offset{{x1, y1}, {x2, y2}}})
}

// CubicTo adds a cubic Bezier segment.
func (p *Path) CubicTo(x1, y1, x2, y2, x3, y3 float64) {
	p.Commands = append(p.Commands, PathCommand{Op: PathCubicTo, Points: []Offset{{x1, y1}, {x2, y2}, {x3, y3}}})
}

// Close closes the current subpath.
func (p *Path) Close() {
	p.Commands = append(p.Commands, PathCommand{Op: PathClose})
}

// IsEmpty reports whether the path has no commands.
func (p *Path) IsEmpty() bool {
	return p == nil || len(p.Commands) == 0
}

// Bounds returns the bounding box of all control points.
func (p *Path) Bounds() Rect {
	if p.IsEmpty() {
		return Rect{}
	}
	r := Rect{Left: math.Inf(1), Top: math.Inf(1), Right: math.Inf(-1), Bottom: math.Inf(-1)}
	for _, cmd := range p.Commands {
		for _, pt := range cmd.Points {
			r.Left = math.Min(r.Left, pt.X)
			r.Top = math.Min(r.Top, pt.Y)
			r.Right = math.Max(r.Right, pt.X)
			r.Bottom = math.Max(r.Bottom, pt.Y)
		}
	}
	if math.IsInf(r.Left, 1) {
		return Rect{}
	}
	return r
}

// RectPath returns a closed path tracing the rectangle.
func RectPath(r Rect) *Path {
	p := NewPath()
	p.MoveTo(r.Left, r.Top)
	p.LineTo(r.Right, r.Top)
	p.LineTo(r.Right, r.Bottom)
	p.LineTo(r.Left, r.Bottom)
	p.Close()
	return p
}

// RRectPath returns a closed path tracing the rounded rectangle.
func RRectPath(rr RRect) *Path {
	if rr.IsRect() {
		return RectPath(rr.Rect)
	}
	r := rr.Rect
	rx := math.Min(rr.Radius.X, r.Width()/2)
	ry := math.Min(rr.Radius.Y, r.Height()/2)
	// kappa approximates a quarter circle with a cubic
	const kappa = 0.5522847498
	kx, ky := rx*kappa, ry*kappa
	p := NewPath()
	p.MoveTo(r.Left+rx, r.Top)
	p.LineTo(r.Right-rx, r.Top)
	p.CubicTo(r.Right-rx+kx, r.Top, r.Right, r.Top+ry-ky, r.Right, r.Top+ry)
	p.LineTo(r.Right, r.Bottom-ry)
	p.CubicTo(r.Right, r.Bottom-ry+ky, r.Right-rx+kx, r.Bottom, r.Right-rx, r.Bottom)
	p.LineTo(r.Left+rx, r.Bottom)
	p.CubicTo(r.Left+rx-kx, r.Bottom, r.Left, r.Bottom-ry+ky, r.Left, r.Bottom-ry)
	p.LineTo(r.Left, r.Top+ry)
	p.CubicTo(r.Left, r.Top+ry-ky, r.Left+rx-kx, r.Top, r.Left+rx, r.Top)
	p.Close()
	return p
}

// CirclePath returns a closed path approximating a circle.
func CirclePath(center Offset, radius float64) *Path {
	return RRectPath(RRect{
		Rect:   Rect{Left: center.X - radius, Top: center.Y - radius, Right: center.X + radius, Bottom: center.Y + radius},
		Radius: CircularRadius(radius),
	})
}
