package graphics

import "math"

// Matrix is a 2D affine transform:
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Translation returns a transform that moves points by dx, dy.
func Translation(dx, dy float64) Matrix {
	return Matrix{A: 1, D: 1, E: dx, F: dy}
}

// Scaling returns a transform that scales by sx, sy around the origin.
func Scaling(sx, sy float64) Matrix {
	return Matrix{A: sx, D: sy}
}

// Rotation returns a transform that rotates by radians around the origin.
func Rotation(radians float64) Matrix {
	sin, cos := math.Sincos(radians)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// Multiply returns m * other, applying other first and then m.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.C*other.B,
		B: m.B*other.A + m.D*other.B,
		C: m.A*other.C + m.C*other.D,
		D: m.B*other.C + m.D*other.D,
		E: m.A*other.E + m.C*other.F + m.E,
		F: m.B*other.E + m.D*other.F + m.F,
	}
}

// Translate returns m followed by a local translation.
func (m Matrix) Translate(dx, dy float64) Matrix {
	return m.Multiply(Translation(dx, dy))
}

// Scale returns m followed by a local scale.
func (m Matrix) Scale(sx, sy float64) Matrix {
	return m.Multiply(Scaling(sx, sy))
}

// Rotate returns m followed by a local rotation.
func (m Matrix) Rotate(radians float64) Matrix {
	return m.Multiply(Rotation(radians))
}

// IsIdentity reports whether m is the identity transform.
func (m Matrix) IsIdentity() bool {
	return floatEqual(m.A, 1) && floatEqual(m.B, 0) && floatEqual(m.C, 0) &&
		floatEqual(m.D, 1) && floatEqual(m.E, 0) && floatEqual(m.F, 0)
}

// IsTranslationOnly reports whether m has no scale, rotation or skew.
func (m Matrix) IsTranslationOnly() bool {
	return floatEqual(m.A, 1) && floatEqual(m.B, 0) && floatEqual(m.C, 0) && floatEqual(m.D, 1)
}

// Determinant returns the determinant of the linear part.
func (m Matrix) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}

// Invert returns the inverse transform. The second result is false when
// the matrix is singular.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.Determinant()
	if math.Abs(det) < 1e-12 {
		return Matrix{}, false
	}
	inv := 1 / det
	return Matrix{
		A: m.D * inv,
		B: -m.B * inv,
		C: -m.C * inv,
		D: m.A * inv,
		E: (m.C*m.F - m.D*m.E) * inv,
		F: (m.B*m.E - m.A*m.F) * inv,
	}, true
}

// Apply transforms a point.
func (m Matrix) Apply(p Offset) Offset {
	return Offset{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// TransformRect returns the axis-aligned bounding box of the transformed rect.
func (m Matrix) TransformRect(r Rect) Rect {
	if m.IsTranslationOnly() {
		return r.Translate(m.E, m.F)
	}
	p0 := m.Apply(Offset{r.Left, r.Top})
	p1 := m.Apply(Offset{r.Right, r.Top})
	p2 := m.Apply(Offset{r.Right, r.Bottom})
	p3 := m.Apply(Offset{r.Left, r.Bottom})
	return Rect{
		Left:   math.Min(math.Min(p0.X, p1.X), math.Min(p2.X, p3.X)),
		Top:    math.Min(math.Min(p0.Y, p1.Y), math.Min(p2.Y, p3.Y)),
		Right:  math.Max(math.Max(p0.X, p1.X), math.Max(p2.X, p3.X)),
		Bottom: math.Max(math.Max(p0.Y, p1.Y), math.Max(p2.Y, p3.Y)),
	}
}
