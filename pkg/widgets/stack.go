package widgets

import (
	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/go-drift/weave/pkg/layout"
)

// StackFit controls how non-positioned children are sized.
type StackFit int

const (
	// StackFitLoose lets children be smaller than the stack.
	StackFitLoose StackFit = iota
	// StackFitExpand forces children to the biggest size allowed.
	StackFitExpand
)

// PositionedData is the parent data a Stack reads from a Positioned child.
// Nil fields leave that edge or extent unconstrained.
type PositionedData struct {
	Left, Top, Right, Bottom *float64
	Width, Height            *float64
}

func (d *PositionedData) isPositioned() bool {
	return d != nil && (d.Left != nil || d.Top != nil || d.Right != nil ||
		d.Bottom != nil || d.Width != nil || d.Height != nil)
}

func (d *PositionedData) equal(o *PositionedData) bool {
	if d == nil || o == nil {
		return d == o
	}
	return ptrEq(d.Left, o.Left) && ptrEq(d.Top, o.Top) && ptrEq(d.Right, o.Right) &&
		ptrEq(d.Bottom, o.Bottom) && ptrEq(d.Width, o.Width) && ptrEq(d.Height, o.Height)
}

func ptrEq(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type renderStack struct {
	layout.RenderBoxBase
	layout.ChildList
	alignment graphics.Alignment
	fit       StackFit
}

func (r *renderStack) SetChildren(children []layout.RenderObject) {
	r.ReplaceChildren(r, children)
}

func (r *renderStack) Paint(ctx *layout.PaintContext) {
	ctx.PaintChildren(r)
}

func positionedData(child layout.RenderObject) *PositionedData {
	if data, ok := child.Base().ParentData().(*PositionedData); ok && data.isPositioned() {
		return data
	}
	return nil
}

func (r *renderStack) PerformLayout() {
	c := r.Constraints()
	children := r.Children()

	inner := c.Loosen()
	if r.fit == StackFitExpand {
		inner = layout.Tight(c.Biggest())
	}

	// Non-positioned children decide the stack size.
	var extent graphics.Size
	hasSizing := false
	for _, child := range children {
		if positionedData(child) != nil {
			continue
		}
		hasSizing = true
		child.Layout(inner, true)
		s := child.Size()
		extent.Width = max(extent.Width, s.Width)
		extent.Height = max(extent.Height, s.Height)
	}
	size := c.Constrain(extent)
	if !hasSizing {
		size = c.Biggest()
	}
	r.SetSize(size)
	size = r.Size()

	for _, child := range children {
		data := positionedData(child)
		if data == nil {
			child.Base().SetOffset(r.alignment.Inscribe(child.Size(), size))
			continue
		}
		child.Layout(positionedConstraints(data, size), true)
		child.Base().SetOffset(r.positionedOffset(data, child.Size(), size))
	}
}

// positionedConstraints derives tight axes from an explicit extent or from
// both opposing edges; other axes are loose up to the stack size.
func positionedConstraints(d *PositionedData, size graphics.Size) layout.Constraints {
	c := layout.Constraints{MaxWidth: size.Width, MaxHeight: size.Height}
	switch {
	case d.Width != nil:
		c.MinWidth, c.MaxWidth = *d.Width, *d.Width
	case d.Left != nil && d.Right != nil:
		w := max(0, size.Width-*d.Left-*d.Right)
		c.MinWidth, c.MaxWidth = w, w
	}
	switch {
	case d.Height != nil:
		c.MinHeight, c.MaxHeight = *d.Height, *d.Height
	case d.Top != nil && d.Bottom != nil:
		h := max(0, size.Height-*d.Top-*d.Bottom)
		c.MinHeight, c.MaxHeight = h, h
	}
	return c
}

func (r *renderStack) positionedOffset(d *PositionedData, child, size graphics.Size) graphics.Offset {
	aligned := r.alignment.Inscribe(child, size)
	off := aligned
	switch {
	case d.Left != nil:
		off.X = *d.Left
	case d.Right != nil:
		off.X = size.Width - *d.Right - child.Width
	}
	switch {
	case d.Top != nil:
		off.Y = *d.Top
	case d.Bottom != nil:
		off.Y = size.Height - *d.Bottom - child.Height
	}
	return off
}

// Stack overlays its children. Props: alignment (default topLeft), fit
// ("loose" or "expand").
type Stack struct {
	passThrough
	render *renderStack
}

func newStack() core.Widget {
	r := &renderStack{alignment: graphics.AlignTopLeft}
	r.SetSelf(r)
	return &Stack{passThrough: newPassThrough(), render: r}
}

func (w *Stack) RenderObject() layout.RenderObject { return w.render }

func (w *Stack) Configure(p core.Props) {
	r := w.render
	alignment := p.Alignment("alignment", graphics.AlignTopLeft)
	fit := StackFitLoose
	if p.String("fit", "loose") == "expand" {
		fit = StackFitExpand
	}
	changed := alignment != r.alignment || fit != r.fit
	r.alignment, r.fit = alignment, fit
	markLayoutIf(changed, r)
}

// Positioned places its child at fixed edges inside a Stack. Props: left,
// top, right, bottom, width, height. Outside a Stack it behaves as a plain
// wrapper.
type Positioned struct {
	proxyWidget
}

func newPositioned() core.Widget {
	return &Positioned{proxyWidget{passThrough: newPassThrough(), render: newRenderProxy()}}
}

func (w *Positioned) Configure(p core.Props) {
	opt := func(name string) *float64 {
		if !p.Has(name) {
			return nil
		}
		v := p.Float(name, 0)
		return &v
	}
	data := &PositionedData{
		Left: opt("left"), Top: opt("top"), Right: opt("right"), Bottom: opt("bottom"),
		Width: opt("width"), Height: opt("height"),
	}
	rb := w.render.Base()
	old, _ := rb.ParentData().(*PositionedData)
	if old.equal(data) {
		return
	}
	rb.SetParentData(data)
	if parent := rb.Parent(); parent != nil {
		parent.MarkNeedsLayout()
	}
}
