// Package widgets provides the built-in widget kinds and registers them
// with the core type registry.
//
// Kinds are addressed by name from tree descriptions:
//
//	{"type": "Row", "props": {"mainAxisAlignment": "spaceBetween"}, "children": [...]}
//
// Layout-only kinds (Row, Padding, Stack, ...) default to pointerEvent
// "none" so they never swallow hits meant for their content.
package widgets

import (
	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/go-drift/weave/pkg/layout"
)

func init() {
	core.RegisterType("Container", newContainer)
	core.RegisterType("SizedBox", newSizedBox)
	core.RegisterType("Padding", newPadding)
	core.RegisterType("Align", newAlign)
	core.RegisterType("Center", newCenter)
	core.RegisterType("Row", newRow)
	core.RegisterType("Column", newColumn)
	core.RegisterType("Flex", newFlex)
	core.RegisterType("Flexible", newFlexible)
	core.RegisterType("Expanded", newExpanded)
	core.RegisterType("Stack", newStack)
	core.RegisterType("Positioned", newPositioned)
	core.RegisterType("Text", newText)
	core.RegisterType("RepaintBoundary", newRepaintBoundary)
	core.RegisterType("Transform", newTransform)
	core.RegisterType("ClipRect", newClipRect)
	core.RegisterType("Opacity", newOpacity)
}

// renderProxy is the base for kinds that wrap their children. Every child
// gets the same constraints and is placed at the origin; the proxy takes
// the largest child size.
type renderProxy struct {
	layout.RenderBoxBase
	layout.ChildList
}

func (r *renderProxy) SetChildren(children []layout.RenderObject) {
	r.ReplaceChildren(r.Self(), children)
}

func (r *renderProxy) PerformLayout() {
	r.SetSize(r.layoutChildren(r.Constraints()))
}

// layoutChildren lays out every child under c at the origin and returns the
// constrained size of the largest, or c's smallest size without children.
func (r *renderProxy) layoutChildren(c layout.Constraints) graphics.Size {
	var size graphics.Size
	for _, child := range r.Children() {
		child.Layout(c, true)
		child.Base().SetOffset(graphics.Offset{})
		s := child.Size()
		size.Width = max(size.Width, s.Width)
		size.Height = max(size.Height, s.Height)
	}
	return c.Constrain(size)
}

func (r *renderProxy) Paint(ctx *layout.PaintContext) {
	ctx.PaintChildren(r.Self())
}

// passThrough is embedded by layout-only kinds.
type passThrough struct {
	core.WidgetBase
}

func newPassThrough() passThrough {
	var p passThrough
	p.SetPointerDefault(core.PointerNone)
	return p
}

// proxyWidget is a layout-only kind backed by a plain renderProxy.
type proxyWidget struct {
	passThrough
	render *renderProxy
}

func (w *proxyWidget) RenderObject() layout.RenderObject { return w.render }

func (w *proxyWidget) Configure(core.Props) {}

func newRenderProxy() *renderProxy {
	r := &renderProxy{}
	r.SetSelf(r)
	return r
}

func markLayoutIf(changed bool, r layout.RenderObject) {
	if changed {
		r.MarkNeedsLayout()
	}
}

func markPaintIf(changed bool, r layout.RenderObject) {
	if changed {
		r.MarkNeedsPaint()
	}
}
