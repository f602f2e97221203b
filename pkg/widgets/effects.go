package widgets

import (
	"math"

	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/go-drift/weave/pkg/layout"
)

// renderRepaintBoundary always records its subtree into its own layer.
type renderRepaintBoundary struct {
	renderProxy
}

func (r *renderRepaintBoundary) IsRepaintBoundary() bool { return true }

// RepaintBoundary isolates the paint of its children from the rest of the
// tree. Any widget can do the same with the repaintBoundary prop.
type RepaintBoundary struct {
	passThrough
	render *renderRepaintBoundary
}

func newRepaintBoundary() core.Widget {
	r := &renderRepaintBoundary{}
	r.SetSelf(r)
	return &RepaintBoundary{passThrough: newPassThrough(), render: r}
}

func (w *RepaintBoundary) RenderObject() layout.RenderObject { return w.render }

func (w *RepaintBoundary) Configure(core.Props) {}

// Transform scales and rotates its children around a pivot without
// affecting layout. Props: scale, scaleX, scaleY, rotation (radians),
// rotationDegrees, pivot (alignment, default center).
type Transform struct {
	passThrough
	render *renderTransform
}

type renderTransform struct {
	renderProxy
	scaleX, scaleY float64
	rotation       float64
	pivot          graphics.Alignment
}

func (r *renderTransform) PerformLayout() {
	r.renderProxy.PerformLayout()
	r.updateTransform()
}

func (r *renderTransform) updateTransform() {
	size := r.Size()
	pivot := r.pivot.Inscribe(graphics.Size{}, size)
	r.SetTransform(&layout.LocalTransform{
		ScaleX:   r.scaleX,
		ScaleY:   r.scaleY,
		Rotation: r.rotation,
		Pivot:    pivot,
	})
}

func newTransform() core.Widget {
	r := &renderTransform{scaleX: 1, scaleY: 1}
	r.SetSelf(r)
	return &Transform{passThrough: newPassThrough(), render: r}
}

func (w *Transform) RenderObject() layout.RenderObject { return w.render }

func (w *Transform) Configure(p core.Props) {
	r := w.render
	scale := p.Float("scale", 1)
	rotation := p.Float("rotation", 0)
	if p.Has("rotationDegrees") {
		rotation = p.Float("rotationDegrees", 0) * math.Pi / 180
	}
	r.scaleX = p.Float("scaleX", scale)
	r.scaleY = p.Float("scaleY", scale)
	r.rotation = rotation
	r.pivot = p.Alignment("pivot", graphics.AlignCenter)
	// SetTransform is a no-op when nothing changed.
	r.updateTransform()
}

// ClipRect clips painting and hit testing of its children to its bounds.
type ClipRect struct {
	passThrough
	render *renderClipRect
}

type renderClipRect struct {
	renderProxy
}

func (r *renderClipRect) ClipsChildren() bool { return true }

func (r *renderClipRect) Paint(ctx *layout.PaintContext) {
	ctx.Canvas.Save()
	ctx.Canvas.ClipRect(graphics.RectFromSize(r.Size()))
	ctx.PaintChildren(r)
	ctx.Canvas.Restore()
}

func newClipRect() core.Widget {
	r := &renderClipRect{}
	r.SetSelf(r)
	return &ClipRect{passThrough: newPassThrough(), render: r}
}

func (w *ClipRect) RenderObject() layout.RenderObject { return w.render }

func (w *ClipRect) Configure(core.Props) {}

// Opacity paints its children with reduced alpha. Props: opacity (0..1).
type Opacity struct {
	passThrough
	render *renderOpacity
}

type renderOpacity struct {
	renderProxy
	opacity float64
}

func (r *renderOpacity) Paint(ctx *layout.PaintContext) {
	switch {
	case r.opacity <= 0:
		return
	case r.opacity >= 1:
		ctx.PaintChildren(r)
	default:
		ctx.Canvas.SaveLayerAlpha(graphics.RectFromSize(r.Size()), r.opacity)
		ctx.PaintChildren(r)
		ctx.Canvas.Restore()
	}
}

func newOpacity() core.Widget {
	r := &renderOpacity{opacity: 1}
	r.SetSelf(r)
	return &Opacity{passThrough: newPassThrough(), render: r}
}

func (w *Opacity) RenderObject() layout.RenderObject { return w.render }

func (w *Opacity) Configure(p core.Props) {
	opacity := min(1, max(0, p.Float("opacity", 1)))
	changed := opacity != w.render.opacity
	w.render.opacity = opacity
	markPaintIf(changed, w.render)
}
