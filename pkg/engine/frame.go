package engine

import (
	"time"

	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/errors"
	"github.com/go-drift/weave/pkg/layout"
	"go.uber.org/zap"
)

// frame is the scheduler callback: layout from the root, re-record dirty
// repaint boundaries deepest first, then composite the view layer onto the
// surface in one BeginFrame/EndFrame pair.
func (r *Runtime) frame() {
	if r.destroyed {
		return
	}
	start := time.Now()
	p := r.owner.Pipeline
	r.inFrame = true
	defer r.endFrame()

	work := FrameWork{DirtyLayout: p.DirtyLayoutCount(), DirtyPaint: p.DirtyPaintCount()}
	layoutsBefore := p.LayoutCount()

	p.FlushLayoutForRoot(r.view, layout.Tight(r.surface.Size()))
	layoutEnd := time.Now()
	work.Layouts = p.LayoutCount() - layoutsBefore

	// Parents come back first; recording children first lets each parent
	// reference its children's fresh layers.
	dirty := p.FlushPaint()
	for i := len(dirty) - 1; i >= 0; i-- {
		layout.RecordLayer(dirty[i])
	}
	if l := r.view.Layer(); l == nil || l.Content() == nil {
		layout.RecordLayer(r.view)
		work.Recorded++
	}
	work.Recorded += len(dirty)
	recordEnd := time.Now()

	if canvas := r.surface.BeginFrame(); canvas != nil {
		r.view.Layer().Composite(canvas)
	}
	if err := r.surface.EndFrame(); err != nil {
		errors.Report(&errors.EngineError{Op: "engine.frame", Kind: errors.KindPaint, Err: err})
	}
	end := time.Now()

	r.frames++
	r.index.noteFrame(p.LayoutCount(), p.TransformVersion())

	work.Widgets = r.widgetCount()
	elapsed := end.Sub(start)
	r.trace.add(FrameSample{
		Start:     start.UnixMilli(),
		TotalMs:   millis(elapsed),
		LayoutMs:  millis(layoutEnd.Sub(start)),
		RecordMs:  millis(recordEnd.Sub(layoutEnd)),
		PresentMs: millis(end.Sub(recordEnd)),
		Work:      work,
	}, elapsed)
	if r.debug != nil {
		r.debug.publish(r)
	}

	if elapsed > frameBudget {
		r.log.Debug("slow frame",
			zap.Duration("elapsed", elapsed),
			zap.Int("layouts", work.Layouts),
			zap.Int("recorded", work.Recorded))
	}
}

// endFrame re-arms scheduling and requests a follow-up frame only when
// something was left dirty after the flush.
func (r *Runtime) endFrame() {
	r.inFrame = false
	p := r.owner.Pipeline
	if !r.destroyed && (p.NeedsLayout() || p.NeedsPaint()) {
		r.sched.RequestFrame()
	}
}

func (r *Runtime) widgetCount() int {
	n := 0
	r.walk(func(core.Widget) bool {
		n++
		return true
	})
	return n
}
