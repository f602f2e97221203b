package layout

import "github.com/go-drift/weave/pkg/graphics"

// PaintContext provides the canvas for painting render objects.
type PaintContext struct {
	Canvas graphics.Canvas
	// Cull, when set, is a surface-space rectangle. Children whose paint
	// bounds miss it are skipped along with their subtrees.
	Cull *graphics.Rect
}

// PaintChild paints a child at its offset and local transform. A clean
// repaint-boundary child is drawn as a reference to its layer when the
// canvas is recording, so its content is not painted again.
func (p *PaintContext) PaintChild(child RenderObject) {
	if child == nil {
		return
	}
	base := child.Base()
	if p.Cull != nil && !base.PaintBounds().Overlaps(*p.Cull) {
		return
	}

	p.Canvas.Save()
	p.Canvas.Translate(base.offset.X, base.offset.Y)
	if t := base.transform; t != nil {
		p.Canvas.Translate(t.Pivot.X, t.Pivot.Y)
		p.Canvas.Rotate(t.Rotation)
		p.Canvas.Scale(t.ScaleX, t.ScaleY)
		p.Canvas.Translate(-t.Pivot.X, -t.Pivot.Y)
	}

	if drawer, ok := p.Canvas.(graphics.ChildLayerDrawer); ok && child.IsRepaintBoundary() &&
		base.layer != nil && base.layer.Content() != nil && !base.needsPaint {
		drawer.DrawChildLayer(base.layer)
	} else {
		child.Paint(p)
		if !child.IsRepaintBoundary() {
			base.needsPaint = false
		}
	}
	p.Canvas.Restore()
}

// PaintChildren paints every child of node in order.
func (p *PaintContext) PaintChildren(node RenderObject) {
	if visitor, ok := node.(ChildVisitor); ok {
		visitor.VisitChildren(p.PaintChild)
	}
}

// RecordLayer re-records a repaint boundary's content into its layer and
// clears its paint flag. Child boundaries must be recorded first.
func RecordLayer(boundary RenderObject) {
	base := boundary.Base()
	var recorder graphics.PictureRecorder
	canvas := recorder.BeginRecording(base.size)
	boundary.Paint(&PaintContext{Canvas: canvas})
	base.SetLayerContent(recorder.EndRecording())
	base.needsPaint = false
}

// ChildList is an ordered, owned list of child render objects. Render
// objects with children embed it.
type ChildList struct {
	children []RenderObject
}

// Children returns the children in paint order.
func (c *ChildList) Children() []RenderObject {
	return c.children
}

// VisitChildren calls visitor for each child in order.
func (c *ChildList) VisitChildren(visitor func(RenderObject)) {
	for _, child := range c.children {
		visitor(child)
	}
}

// ReplaceChildren installs children under parent. Removed children are
// detached; the parent is marked for layout when the list changes.
func (c *ChildList) ReplaceChildren(parent RenderObject, children []RenderObject) {
	if sameChildren(c.children, children) {
		return
	}
	keep := make(map[RenderObject]bool, len(children))
	for _, child := range children {
		keep[child] = true
	}
	for _, old := range c.children {
		if !keep[old] && old.Base().parent == parent {
			old.Base().SetParent(nil)
		}
	}
	c.children = append(c.children[:0:0], children...)
	for _, child := range c.children {
		SetParentOnChild(child, parent)
	}
	parent.MarkNeedsLayout()
	parent.MarkNeedsPaint()
}

func sameChildren(a, b []RenderObject) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
