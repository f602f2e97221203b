package widgets

import (
	"math"

	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/go-drift/weave/pkg/layout"
)

// renderBox is the shared render object for Container, SizedBox, Padding,
// Align and Center: optional explicit size, padding, and an optional
// alignment for the children inside the padded area.
type renderBox struct {
	renderProxy
	width, height float64 // NaN when unset
	padding       graphics.EdgeInsets
	alignment     *graphics.Alignment
	// expand makes an aligning box take the biggest size on bounded axes.
	expand bool
	// fillEmpty makes a childless box take the biggest size.
	fillEmpty bool

	color       graphics.Color
	borderColor graphics.Color
	borderWidth float64
	radius      float64
}

func newRenderBox() *renderBox {
	r := &renderBox{width: math.NaN(), height: math.NaN()}
	r.SetSelf(r)
	return r
}

func (r *renderBox) PerformLayout() {
	c := r.Constraints()
	if !math.IsNaN(r.width) || !math.IsNaN(r.height) {
		w, h := r.width, r.height
		if math.IsNaN(w) {
			w = -1
		}
		if math.IsNaN(h) {
			h = -1
		}
		c = layout.TightFor(w, h).Enforce(c)
	}

	inner := c.Deflate(r.padding)
	if r.alignment != nil {
		inner = inner.Loosen()
	}

	var childSize graphics.Size
	children := r.Children()
	for _, child := range children {
		child.Layout(inner, true)
		s := child.Size()
		childSize.Width = max(childSize.Width, s.Width)
		childSize.Height = max(childSize.Height, s.Height)
	}

	size := graphics.Size{
		Width:  childSize.Width + r.padding.Horizontal(),
		Height: childSize.Height + r.padding.Vertical(),
	}
	if len(children) == 0 && r.fillEmpty {
		size = c.Biggest()
	}
	if r.alignment != nil && r.expand {
		if c.HasBoundedWidth() {
			size.Width = c.MaxWidth
		}
		if c.HasBoundedHeight() {
			size.Height = c.MaxHeight
		}
	}
	size = c.Constrain(size)
	r.SetSize(size)
	size = r.Size()

	area := graphics.Size{
		Width:  max(0, size.Width-r.padding.Horizontal()),
		Height: max(0, size.Height-r.padding.Vertical()),
	}
	for _, child := range children {
		off := graphics.Offset{X: r.padding.Left, Y: r.padding.Top}
		if r.alignment != nil {
			off = off.Add(r.alignment.Inscribe(child.Size(), area))
		}
		child.Base().SetOffset(off)
	}
}

func (r *renderBox) Paint(ctx *layout.PaintContext) {
	rect := graphics.RectFromSize(r.Size())
	if r.color.Alpha() > 0 {
		drawBox(ctx.Canvas, rect, r.radius, graphics.FillPaint(r.color))
	}
	if r.borderWidth > 0 && r.borderColor.Alpha() > 0 {
		drawBox(ctx.Canvas, rect, r.radius, graphics.StrokePaint(r.borderColor, r.borderWidth))
	}
	ctx.PaintChildren(r)
}

func drawBox(canvas graphics.Canvas, rect graphics.Rect, radius float64, paint graphics.Paint) {
	if radius > 0 {
		canvas.DrawRRect(graphics.RRectFromRectAndRadius(rect, graphics.CircularRadius(radius)), paint)
		return
	}
	canvas.DrawRect(rect, paint)
}

type boxState struct {
	width, height float64
	padding       graphics.EdgeInsets
	alignment     *graphics.Alignment
	expand        bool
	fillEmpty     bool
	color         graphics.Color
	borderColor   graphics.Color
	borderWidth   float64
	radius        float64
}

// apply installs s and marks layout or paint dirty for what changed.
func (r *renderBox) apply(s boxState) {
	layoutChanged := !sameFloat(s.width, r.width) || !sameFloat(s.height, r.height) ||
		s.padding != r.padding || s.expand != r.expand || s.fillEmpty != r.fillEmpty || !sameAlignment(s.alignment, r.alignment)
	paintChanged := s.color != r.color || s.borderColor != r.borderColor ||
		s.borderWidth != r.borderWidth || s.radius != r.radius

	r.width, r.height, r.padding, r.alignment, r.expand = s.width, s.height, s.padding, s.alignment, s.expand
	r.fillEmpty = s.fillEmpty
	r.color, r.borderColor, r.borderWidth, r.radius = s.color, s.borderColor, s.borderWidth, s.radius
	markLayoutIf(layoutChanged, r)
	markPaintIf(paintChanged, r)
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func sameAlignment(a, b *graphics.Alignment) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sizeProp(p core.Props, name string) float64 {
	if !p.Has(name) {
		return math.NaN()
	}
	return max(0, p.Float(name, 0))
}

func alignmentProp(p core.Props, name string) *graphics.Alignment {
	if !p.Has(name) {
		return nil
	}
	a := p.Alignment(name, graphics.AlignCenter)
	return &a
}

type boxWidget struct {
	core.WidgetBase
	render *renderBox
}

func (w *boxWidget) RenderObject() layout.RenderObject { return w.render }

// Container paints a background and border around optional children.
// Without children it fills the biggest size it is allowed.
//
// Props: width, height, padding, alignment, color, borderColor, borderWidth,
// radius.
type Container struct {
	boxWidget
}

func newContainer() core.Widget {
	return &Container{boxWidget{render: newRenderBox()}}
}

func (w *Container) Configure(p core.Props) {
	w.render.apply(boxState{
		width:       sizeProp(p, "width"),
		height:      sizeProp(p, "height"),
		padding:     p.EdgeInsets("padding"),
		alignment:   alignmentProp(p, "alignment"),
		expand:      true,
		fillEmpty:   true,
		color:       p.Color("color", graphics.ColorTransparent),
		borderColor: p.Color("borderColor", graphics.ColorTransparent),
		borderWidth: p.Float("borderWidth", 0),
		radius:      p.Float("radius", 0),
	})
}

// SizedBox forces its width and/or height. Props: width, height.
type SizedBox struct {
	boxWidget
}

func newSizedBox() core.Widget {
	w := &SizedBox{boxWidget{render: newRenderBox()}}
	w.SetPointerDefault(core.PointerNone)
	return w
}

func (w *SizedBox) Configure(p core.Props) {
	w.render.apply(boxState{width: sizeProp(p, "width"), height: sizeProp(p, "height")})
}

// Padding insets its children. Props: padding (number, [v, h],
// [top, right, bottom, left] or {left, top, right, bottom}).
type Padding struct {
	boxWidget
}

func newPadding() core.Widget {
	w := &Padding{boxWidget{render: newRenderBox()}}
	w.SetPointerDefault(core.PointerNone)
	return w
}

func (w *Padding) Configure(p core.Props) {
	w.render.apply(boxState{width: math.NaN(), height: math.NaN(), padding: p.EdgeInsets("padding")})
}

// Align positions its children inside the biggest size it is allowed.
// Props: alignment (default center). Center is Align fixed at center.
type Align struct {
	boxWidget
	fixed *graphics.Alignment
}

func newAlign() core.Widget {
	w := &Align{boxWidget: boxWidget{render: newRenderBox()}}
	w.SetPointerDefault(core.PointerNone)
	return w
}

func newCenter() core.Widget {
	center := graphics.AlignCenter
	w := &Align{boxWidget: boxWidget{render: newRenderBox()}, fixed: &center}
	w.SetPointerDefault(core.PointerNone)
	return w
}

func (w *Align) Configure(p core.Props) {
	alignment := w.fixed
	if alignment == nil {
		a := p.Alignment("alignment", graphics.AlignCenter)
		alignment = &a
	}
	w.render.apply(boxState{width: math.NaN(), height: math.NaN(), alignment: alignment, expand: true})
}
