package layout

import (
	"slices"

	"github.com/go-drift/weave/pkg/graphics"
)

// defaultMeasurer sizes text when no surface measurer is installed.
var defaultMeasurer = graphics.FixedMeasurer{Advance: 8, LineHeight: 16}

// PipelineOwner tracks render objects that need layout or paint.
//
// Layout scheduling works with relayout boundaries: when a node needs layout,
// MarkNeedsLayout walks up to the nearest boundary, marking each node along
// the way. The boundary gets scheduled here. Scheduling is idempotent, so any
// number of requests before a flush collapse into one entry per boundary.
type PipelineOwner struct {
	dirtyLayout    []RenderObject        // boundaries needing layout
	dirtyLayoutSet map[RenderObject]bool // O(1) dedup check
	dirtyPaint     map[RenderObject]struct{}
	needsLayout    bool
	needsPaint     bool

	onSchedule       func()
	transformVersion uint64
	layoutCount      int
	measurer         graphics.TextMeasurer
}

// SetTextMeasurer installs the measurer text render objects lay out with.
func (p *PipelineOwner) SetTextMeasurer(m graphics.TextMeasurer) {
	p.measurer = m
}

// TextMeasurer returns the installed measurer, or a fixed-advance fallback.
// It is safe to call on a nil owner.
func (p *PipelineOwner) TextMeasurer() graphics.TextMeasurer {
	if p == nil || p.measurer == nil {
		return defaultMeasurer
	}
	return p.measurer
}

// SetOnSchedule installs a callback invoked whenever a new boundary is
// scheduled for layout or paint. Runtimes use it to request a frame.
func (p *PipelineOwner) SetOnSchedule(fn func()) {
	p.onSchedule = fn
}

// ScheduleLayout marks a relayout boundary as needing layout.
// Only relayout boundaries should be scheduled here; intermediate nodes
// are marked via MarkNeedsLayout but not scheduled directly.
func (p *PipelineOwner) ScheduleLayout(object RenderObject) {
	if p.dirtyLayoutSet == nil {
		p.dirtyLayoutSet = make(map[RenderObject]bool)
	}
	if p.dirtyLayoutSet[object] {
		return
	}
	p.dirtyLayoutSet[object] = true
	p.dirtyLayout = append(p.dirtyLayout, object)
	p.needsLayout = true
	p.needsPaint = true
	if p.onSchedule != nil {
		p.onSchedule()
	}
}

// SchedulePaint marks a repaint boundary as needing paint.
func (p *PipelineOwner) SchedulePaint(object RenderObject) {
	if p.dirtyPaint == nil {
		p.dirtyPaint = make(map[RenderObject]struct{})
	}
	if _, exists := p.dirtyPaint[object]; exists {
		return
	}
	p.dirtyPaint[object] = struct{}{}
	p.needsPaint = true
	if p.onSchedule != nil {
		p.onSchedule()
	}
}

// NeedsLayout reports if any render objects need layout.
func (p *PipelineOwner) NeedsLayout() bool {
	return p.needsLayout
}

// NeedsPaint reports if any render objects need paint.
func (p *PipelineOwner) NeedsPaint() bool {
	return p.needsPaint
}

// DirtyLayoutCount returns the number of scheduled relayout boundaries.
func (p *PipelineOwner) DirtyLayoutCount() int {
	return len(p.dirtyLayout)
}

// DirtyPaintCount returns the number of scheduled repaint boundaries.
func (p *PipelineOwner) DirtyPaintCount() int {
	return len(p.dirtyPaint)
}

// LayoutCount returns how many PerformLayout calls have run under this owner.
func (p *PipelineOwner) LayoutCount() int {
	return p.layoutCount
}

// TransformVersion returns the current transform version. It changes
// whenever any node's offset, size or local transform changes.
func (p *PipelineOwner) TransformVersion() uint64 {
	return p.transformVersion
}

func (p *PipelineOwner) bumpTransformVersion() {
	p.transformVersion++
}

// forget drops a disposed object from the dirty sets.
func (p *PipelineOwner) forget(object RenderObject) {
	if object == nil {
		return
	}
	if p.dirtyLayoutSet[object] {
		delete(p.dirtyLayoutSet, object)
		p.dirtyLayout = slices.DeleteFunc(p.dirtyLayout, func(o RenderObject) bool { return o == object })
	}
	delete(p.dirtyPaint, object)
}

// FlushLayoutForRoot runs layout starting from the root.
//
// Layout starts at the root (always a boundary). Nodes with needsLayout set
// run PerformLayout; clean nodes with unchanged constraints skip. Boundaries
// scheduled elsewhere in the tree are processed afterwards, parents first.
func (p *PipelineOwner) FlushLayoutForRoot(root RenderObject, constraints Constraints) {
	if root == nil {
		return
	}
	root.Layout(constraints, false)
	p.flushDirtyBoundaries()
	p.dirtyLayout = nil
	p.dirtyLayoutSet = nil
	p.needsLayout = false
}

// FlushLayoutFromBoundaries processes dirty relayout boundaries without a root.
func (p *PipelineOwner) FlushLayoutFromBoundaries() {
	if !p.needsLayout {
		return
	}
	p.flushDirtyBoundaries()
	p.dirtyLayout = nil
	p.dirtyLayoutSet = nil
	p.needsLayout = false
}

// flushDirtyBoundaries processes scheduled boundaries in depth order.
//
// Parents go first so a parent that lays out a scheduled child as part of
// its own PerformLayout clears that child's flag, and the child is skipped.
func (p *PipelineOwner) flushDirtyBoundaries() {
	for len(p.dirtyLayout) > 0 {
		slices.SortStableFunc(p.dirtyLayout, func(a, b RenderObject) int {
			return a.Base().depth - b.Base().depth
		})

		dirty := p.dirtyLayout
		p.dirtyLayout = nil
		p.dirtyLayoutSet = nil

		for _, node := range dirty {
			base := node.Base()
			if base.owner != p || !base.needsLayout {
				continue
			}
			node.Layout(base.constraints, false)
		}
	}
}

// FlushPaint returns dirty repaint boundaries that still need paint,
// sorted parents first.
func (p *PipelineOwner) FlushPaint() []RenderObject {
	if !p.needsPaint || len(p.dirtyPaint) == 0 {
		p.dirtyPaint = nil
		p.needsPaint = false
		return nil
	}

	dirty := make([]RenderObject, 0, len(p.dirtyPaint))
	for obj := range p.dirtyPaint {
		dirty = append(dirty, obj)
	}
	slices.SortStableFunc(dirty, func(a, b RenderObject) int {
		return a.Base().depth - b.Base().depth
	})

	result := make([]RenderObject, 0, len(dirty))
	for _, node := range dirty {
		if base := node.Base(); base.owner == p && base.needsPaint && node.IsRepaintBoundary() {
			result = append(result, node)
		}
	}

	p.dirtyPaint = nil
	p.needsPaint = false
	return result
}
