package engine

import (
	"slices"

	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/go-drift/weave/pkg/layout"
	"github.com/go-drift/weave/pkg/rtree"
)

// HitTest returns the topmost widget under the surface point, checking
// overlays newest first and then the main tree. It returns nil on a miss.
func (r *Runtime) HitTest(x, y float64) core.Widget {
	if r.destroyed {
		return nil
	}
	for i := len(r.overlays.entries) - 1; i >= 0; i-- {
		if hit := r.overlays.entries[i].widget.Base().VisitHitTest(x, y); hit != nil {
			return hit
		}
	}
	if r.root == nil {
		return nil
	}
	return r.root.Base().VisitHitTest(x, y)
}

// HitTestAll returns every widget under the point that accepts pointer
// events, topmost first. Overlay hits, newest overlay first, come before
// hits in the main tree.
func (r *Runtime) HitTestAll(x, y float64) []core.Widget {
	if r.destroyed {
		return nil
	}
	var hits []core.Widget
	for i := len(r.overlays.entries) - 1; i >= 0; i-- {
		hits = append(hits, r.overlays.entries[i].widget.Base().HitTestAll(x, y)...)
	}
	if r.root != nil {
		hits = append(hits, r.root.Base().HitTestAll(x, y)...)
	}
	return hits
}

// CursorAt returns the cursor for the point: the first cursor prop found
// walking up from the hit target, or DefaultCursor.
func (r *Runtime) CursorAt(x, y float64) string {
	return cursorFor(r.HitTest(x, y))
}

func cursorFor(w core.Widget) string {
	for cur := w; cur != nil; cur = cur.Base().Parent() {
		if c := cur.Base().Cursor(); c != "" {
			return c
		}
	}
	return DefaultCursor
}

// QueryRegion returns every widget whose bounds overlap rect, in paint
// order. The spatial index is rebuilt lazily after layout changes.
func (r *Runtime) QueryRegion(rect graphics.Rect) []core.Widget {
	if r.destroyed {
		return nil
	}
	r.index.ensure(r)
	hits := r.index.tree.Search(rect)
	slices.SortFunc(hits, func(a, b core.Widget) int {
		return r.index.order[a] - r.index.order[b]
	})
	return hits
}

// PaintRect paints the part of the tree inside rect onto canvas. Subtrees
// whose paint bounds miss rect are skipped entirely.
func (r *Runtime) PaintRect(canvas graphics.Canvas, rect graphics.Rect) {
	if r.destroyed || canvas == nil {
		return
	}
	canvas.Save()
	canvas.ClipRect(rect)
	r.view.Paint(&layout.PaintContext{Canvas: canvas, Cull: &rect})
	canvas.Restore()
}

// walk visits the main tree and then each overlay, parents first.
func (r *Runtime) walk(visit func(core.Widget) bool) {
	if r.root != nil {
		r.root.Base().Walk(visit)
	}
	for _, e := range r.overlays.entries {
		e.widget.Base().Walk(visit)
	}
}

// regionIndex is an R-tree of widget bounds, stamped with the pipeline
// counters it was built against.
type regionIndex struct {
	tree  rtree.Tree[core.Widget]
	order map[core.Widget]int
	valid bool

	builtLayouts int
	builtVersion uint64
	layouts      int
	version      uint64
}

func (x *regionIndex) invalidate() {
	x.valid = false
}

// noteFrame records the pipeline counters after a frame; a change since
// the last build makes the index stale.
func (x *regionIndex) noteFrame(layouts int, version uint64) {
	x.layouts, x.version = layouts, version
	if layouts != x.builtLayouts || version != x.builtVersion {
		x.valid = false
	}
}

func (x *regionIndex) ensure(r *Runtime) {
	if x.valid {
		return
	}
	x.tree.Clear()
	x.order = make(map[core.Widget]int)
	r.walk(func(w core.Widget) bool {
		x.order[w] = len(x.order)
		x.tree.Insert(w.Base().Bounds(), w)
		return true
	})
	x.builtLayouts, x.builtVersion = x.layouts, x.version
	x.valid = true
}
