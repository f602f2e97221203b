package engine

import (
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/go-drift/weave/pkg/layout"
)

// renderView is the render root. Its children are the main tree's root
// followed by the overlay roots in insertion order, so overlays paint last.
type renderView struct {
	layout.RenderBoxBase
	layout.ChildList

	background graphics.Color
	root       layout.RenderObject
	overlays   []*OverlayEntry
}

func newRenderView(background graphics.Color) *renderView {
	v := &renderView{background: background}
	v.SetSelf(v)
	return v
}

// IsRepaintBoundary is always true so the frame has one layer to composite.
func (v *renderView) IsRepaintBoundary() bool {
	return true
}

func (v *renderView) setRoot(root layout.RenderObject) {
	v.root = root
	v.sync()
}

func (v *renderView) setOverlays(entries []*OverlayEntry) {
	v.overlays = entries
	v.sync()
}

func (v *renderView) sync() {
	children := make([]layout.RenderObject, 0, len(v.overlays)+1)
	if v.root != nil {
		children = append(children, v.root)
	}
	for _, e := range v.overlays {
		if ro := e.widget.RenderObject(); ro != nil {
			children = append(children, ro)
		}
	}
	v.ReplaceChildren(v, children)
}

// SetChildren is not used by the widget tree; the view manages its own list.
func (v *renderView) SetChildren(children []layout.RenderObject) {
	v.ReplaceChildren(v, children)
}

// PerformLayout fills the surface. The main root is forced to the surface
// size; overlays are loose and sit at their entry offsets.
func (v *renderView) PerformLayout() {
	size := v.Constraints().Biggest()
	if v.root != nil {
		v.root.Layout(layout.Tight(size), false)
		v.root.Base().SetOffset(graphics.Offset{})
	}
	for _, e := range v.overlays {
		ro := e.widget.RenderObject()
		if ro == nil {
			continue
		}
		ro.Layout(layout.Loose(size), false)
		ro.Base().SetOffset(e.offset)
	}
	v.SetSize(size)
}

func (v *renderView) Paint(ctx *layout.PaintContext) {
	if v.background != graphics.ColorTransparent {
		ctx.Canvas.DrawRect(graphics.RectFromSize(v.Size()), graphics.FillPaint(v.background))
	}
	ctx.PaintChildren(v)
}
