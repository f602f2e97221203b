package core

import (
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/go-drift/weave/pkg/layout"
)

// VisitHitTest returns the topmost widget under the surface point (x, y),
// or nil. Children are tested last-painted first. A widget whose
// pointerEvent is none is never returned itself, but its children are.
// Widgets that clip their children prune the walk outside their bounds.
func (w *WidgetBase) VisitHitTest(x, y float64) Widget {
	ro := w.renderObject()
	if ro == nil || w.disposed {
		return nil
	}
	rb := ro.Base()
	local, ok := rb.GlobalToLocal(graphics.Offset{X: x, Y: y})
	if !ok {
		return nil
	}
	inside := graphics.RectFromSize(rb.Size()).Contains(local)
	if clipper, ok := ro.(layout.PaintClipper); ok && clipper.ClipsChildren() && !inside {
		return nil
	}

	for i := len(w.children) - 1; i >= 0; i-- {
		if hit := w.children[i].Base().VisitHitTest(x, y); hit != nil {
			return hit
		}
	}

	if inside && w.pointerEvent != PointerNone {
		return w.self
	}
	return nil
}

// HitTestAll returns every widget under the point that accepts pointer
// events, topmost first.
func (w *WidgetBase) HitTestAll(x, y float64) []Widget {
	var hits []Widget
	w.collectHits(x, y, &hits)
	return hits
}

func (w *WidgetBase) collectHits(x, y float64, hits *[]Widget) {
	ro := w.renderObject()
	if ro == nil || w.disposed {
		return
	}
	rb := ro.Base()
	local, ok := rb.GlobalToLocal(graphics.Offset{X: x, Y: y})
	if !ok {
		return
	}
	inside := graphics.RectFromSize(rb.Size()).Contains(local)
	if clipper, ok := ro.(layout.PaintClipper); ok && clipper.ClipsChildren() && !inside {
		return
	}
	for i := len(w.children) - 1; i >= 0; i-- {
		w.children[i].Base().collectHits(x, y, hits)
	}
	if inside && w.pointerEvent != PointerNone {
		*hits = append(*hits, w.self)
	}
}
