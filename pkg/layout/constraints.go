package layout

import (
	"fmt"
	"math"

	"github.com/go-drift/weave/pkg/graphics"
)

// Infinity is the unbounded maximum for a constraint axis.
var Infinity = math.Inf(1)

// Constraints bound the size a render object may choose.
// MaxWidth and MaxHeight may be Infinity.
type Constraints struct {
	MinWidth  float64
	MaxWidth  float64
	MinHeight float64
	MaxHeight float64
}

// Tight returns constraints that admit exactly size.
func Tight(size graphics.Size) Constraints {
	return Constraints{MinWidth: size.Width, MaxWidth: size.Width, MinHeight: size.Height, MaxHeight: size.Height}
}

// Loose returns constraints from zero up to size.
func Loose(size graphics.Size) Constraints {
	return Constraints{MaxWidth: size.Width, MaxHeight: size.Height}
}

// Unbounded returns constraints with no maximum on either axis.
func Unbounded() Constraints {
	return Constraints{MaxWidth: Infinity, MaxHeight: Infinity}
}

// TightFor tightens only the axes given as non-negative values. Pass a
// negative value to leave an axis unconstrained.
func TightFor(width, height float64) Constraints {
	c := Unbounded()
	if width >= 0 {
		c.MinWidth, c.MaxWidth = width, width
	}
	if height >= 0 {
		c.MinHeight, c.MaxHeight = height, height
	}
	return c
}

func (c Constraints) String() string {
	return fmt.Sprintf("Constraints(w: %g..%g, h: %g..%g)", c.MinWidth, c.MaxWidth, c.MinHeight, c.MaxHeight)
}

// IsTight reports whether both axes admit exactly one size.
func (c Constraints) IsTight() bool {
	return c.IsTightWidth() && c.IsTightHeight()
}

// IsTightWidth reports whether the width axis admits exactly one value.
func (c Constraints) IsTightWidth() bool {
	return c.MinWidth >= c.MaxWidth
}

// IsTightHeight reports whether the height axis admits exactly one value.
func (c Constraints) IsTightHeight() bool {
	return c.MinHeight >= c.MaxHeight
}

// HasBoundedWidth reports whether MaxWidth is finite.
func (c Constraints) HasBoundedWidth() bool {
	return !math.IsInf(c.MaxWidth, 1)
}

// HasBoundedHeight reports whether MaxHeight is finite.
func (c Constraints) HasBoundedHeight() bool {
	return !math.IsInf(c.MaxHeight, 1)
}

// ConstrainWidth clamps width into [MinWidth, MaxWidth].
func (c Constraints) ConstrainWidth(width float64) float64 {
	return clampFinite(width, c.MinWidth, c.MaxWidth)
}

// ConstrainHeight clamps height into [MinHeight, MaxHeight].
func (c Constraints) ConstrainHeight(height float64) float64 {
	return clampFinite(height, c.MinHeight, c.MaxHeight)
}

// Constrain clamps size so it satisfies the constraints.
func (c Constraints) Constrain(size graphics.Size) graphics.Size {
	return graphics.Size{Width: c.ConstrainWidth(size.Width), Height: c.ConstrainHeight(size.Height)}
}

// Biggest returns the largest size allowed, using the minimum on unbounded axes.
func (c Constraints) Biggest() graphics.Size {
	w, h := c.MaxWidth, c.MaxHeight
	if math.IsInf(w, 1) {
		w = c.MinWidth
	}
	if math.IsInf(h, 1) {
		h = c.MinHeight
	}
	return graphics.Size{Width: w, Height: h}
}

// Smallest returns the minimum size.
func (c Constraints) Smallest() graphics.Size {
	return graphics.Size{Width: c.MinWidth, Height: c.MinHeight}
}

// Loosen drops the minimums to zero.
func (c Constraints) Loosen() Constraints {
	return Constraints{MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight}
}

// Deflate shrinks the constraints by the given insets.
func (c Constraints) Deflate(insets graphics.EdgeInsets) Constraints {
	h, v := insets.Horizontal(), insets.Vertical()
	minW := math.Max(0, c.MinWidth-h)
	minH := math.Max(0, c.MinHeight-v)
	return Constraints{
		MinWidth:  minW,
		MaxWidth:  math.Max(minW, c.MaxWidth-h),
		MinHeight: minH,
		MaxHeight: math.Max(minH, c.MaxHeight-v),
	}
}

// Enforce clamps c so it fits inside other.
func (c Constraints) Enforce(other Constraints) Constraints {
	return Constraints{
		MinWidth:  clampRange(c.MinWidth, other.MinWidth, other.MaxWidth),
		MaxWidth:  clampRange(c.MaxWidth, other.MinWidth, other.MaxWidth),
		MinHeight: clampRange(c.MinHeight, other.MinHeight, other.MaxHeight),
		MaxHeight: clampRange(c.MaxHeight, other.MinHeight, other.MaxHeight),
	}
}

// IsNormalized reports whether the constraints are well-formed: no NaN,
// non-negative, finite minimums and min <= max.
func (c Constraints) IsNormalized() bool {
	for _, v := range []float64{c.MinWidth, c.MaxWidth, c.MinHeight, c.MaxHeight} {
		if math.IsNaN(v) || v < 0 {
			return false
		}
	}
	return !math.IsInf(c.MinWidth, 0) && !math.IsInf(c.MinHeight, 0) &&
		c.MinWidth <= c.MaxWidth && c.MinHeight <= c.MaxHeight
}

// Normalize clamps degenerate values to the nearest valid ones: a NaN or
// negative minimum becomes zero, a NaN maximum becomes Infinity, a negative
// maximum becomes zero, an infinite minimum becomes zero, and a maximum below
// its minimum is raised to the minimum.
func (c Constraints) Normalize() Constraints {
	c.MinWidth, c.MaxWidth = normalizeAxis(c.MinWidth, c.MaxWidth)
	c.MinHeight, c.MaxHeight = normalizeAxis(c.MinHeight, c.MaxHeight)
	return c
}

func normalizeAxis(lo, hi float64) (float64, float64) {
	if math.IsNaN(lo) || lo < 0 || math.IsInf(lo, 0) {
		lo = 0
	}
	if math.IsNaN(hi) {
		hi = Infinity
	}
	if hi < 0 {
		hi = 0
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func clampRange(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// clampFinite clamps v into [lo, hi], mapping NaN and infinities to the
// nearest finite bound.
func clampFinite(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		v = lo
	}
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	if math.IsInf(v, 1) {
		v = lo
	}
	return v
}
