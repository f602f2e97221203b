// Package engine runs widget trees against a drawing surface.
//
// A Runtime owns one widget tree plus its overlays, the render pipeline
// they share and a frame scheduler. Render reconciles a description into
// the tree; anything that becomes dirty requests a frame, and the frame
// lays out, re-records dirty layers and presents to the surface once.
//
// A Runtime is confined to one goroutine. Hosts feed it input and frame
// callbacks from a single loop, as pkg/host does.
package engine

import (
	"fmt"

	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/errors"
	"github.com/go-drift/weave/pkg/events"
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/go-drift/weave/pkg/layout"
	"github.com/go-drift/weave/pkg/logging"
	"github.com/go-drift/weave/pkg/scheduler"
	"go.uber.org/zap"
)

// Options configures a Runtime.
type Options struct {
	// Registry stores the runtime's event handlers. Nil uses events.Default.
	Registry *events.Registry
	// Source delivers frame callbacks. Nil installs a ManualSource, which
	// the host drains through Runtime.Pump.
	Source scheduler.Source
	// Actions resolves handler props given as strings.
	Actions map[string]events.Handler
	// Background fills the surface before the tree paints. The zero color
	// leaves the surface untouched.
	Background graphics.Color
	// TraceSamples sizes the frame trace ring buffer.
	TraceSamples int
	Logger       *zap.Logger
}

// Runtime binds one widget tree to one surface.
type Runtime struct {
	surface    graphics.Surface
	handle     events.Handle
	owner      *core.Owner
	dispatcher *events.Dispatcher
	sched      *scheduler.Scheduler
	manual     *scheduler.ManualSource
	view       *renderView
	overlays   *OverlayHost
	log        *zap.Logger

	root    core.Widget
	last    core.Description
	hasLast bool

	hovered core.Widget
	focused core.Widget
	cursor  string

	index  regionIndex
	trace  *frameTrace
	frames uint64
	debug  *DebugServer

	// inFrame is set while frame runs; layout inside a frame dirties
	// boundaries that the same frame then records.
	inFrame   bool
	destroyed bool
}

// Create returns a runtime drawing to surface, which must not be nil.
func Create(surface graphics.Surface, opts Options) *Runtime {
	handle := events.NewHandle()
	owner := core.NewOwner(opts.Registry, handle)
	for name, h := range opts.Actions {
		owner.Actions[name] = h
	}
	owner.Pipeline.SetTextMeasurer(surface)

	log := opts.Logger
	if log == nil {
		log = logging.Named("engine")
	}

	r := &Runtime{
		surface:    surface,
		handle:     handle,
		owner:      owner,
		dispatcher: events.NewDispatcher(owner.Registry, handle),
		log:        log.With(zap.Stringer("runtime", handle)),
		trace:      newFrameTrace(opts.TraceSamples),
	}
	r.dispatcher.BindLifetime(func() bool { return !r.destroyed })
	r.overlays = &OverlayHost{rt: r}

	source := opts.Source
	if source == nil {
		r.manual = &scheduler.ManualSource{}
		source = r.manual
	}
	r.sched = scheduler.New(source, r.frame)

	r.view = newRenderView(opts.Background)
	layout.AttachTree(r.view, owner.Pipeline)
	owner.Pipeline.SetOnSchedule(func() {
		if !r.destroyed && !r.inFrame {
			r.sched.RequestFrame()
		}
	})
	owner.Pipeline.ScheduleLayout(r.view)

	r.log.Debug("runtime created", zap.Float64("width", surface.Size().Width), zap.Float64("height", surface.Size().Height))
	return r
}

// Handle returns the runtime's registry handle.
func (r *Runtime) Handle() events.Handle {
	return r.handle
}

// Owner returns the owner widgets of this runtime attach to.
func (r *Runtime) Owner() *core.Owner {
	return r.owner
}

// Surface returns the surface frames are presented to.
func (r *Runtime) Surface() graphics.Surface {
	return r.surface
}

// Scheduler returns the frame scheduler.
func (r *Runtime) Scheduler() *scheduler.Scheduler {
	return r.sched
}

// IsDestroyed reports whether Destroy was called.
func (r *Runtime) IsDestroyed() bool {
	return r.destroyed
}

// RootWidget returns the main tree's root, or nil before the first
// successful Render.
func (r *Runtime) RootWidget() core.Widget {
	return r.root
}

// Overlays returns the overlay host.
func (r *Runtime) Overlays() *OverlayHost {
	return r.overlays
}

// Render reconciles desc into the main tree. When the root's type and key
// still match, the tree is updated in place; otherwise a new tree replaces
// it. An unknown root type leaves the current tree untouched.
func (r *Runtime) Render(desc core.Description) error {
	if r.destroyed {
		return errors.ErrDestroyed
	}
	if !core.HasRegisteredType(desc.Type) {
		err := fmt.Errorf("%w: %q", errors.ErrUnknownType, desc.Type)
		errors.Report(&errors.EngineError{Op: "engine.Render", Kind: errors.KindRegistry, Key: desc.Key, Err: err})
		return err
	}

	if r.root != nil && reusable(r.root, desc) {
		r.root.CreateElement(desc)
	} else {
		root := r.owner.Build(desc)
		if root == nil {
			return fmt.Errorf("build root %q failed", desc.Type)
		}
		old := r.root
		r.root = root
		r.view.setRoot(root.RenderObject())
		if old != nil {
			old.Base().Unmount()
		}
	}
	r.last = desc
	r.hasLast = true
	r.dropStaleRefs()
	r.index.invalidate()
	return nil
}

func reusable(w core.Widget, desc core.Description) bool {
	b := w.Base()
	if b.Type() != desc.Type {
		return false
	}
	if desc.Key == "" {
		return b.IsAutoKey()
	}
	return b.Key() == desc.Key
}

// RenderFromJSON decodes a JSON description or document and renders it.
func (r *Runtime) RenderFromJSON(data []byte) error {
	return r.RenderDocument(data, core.FormatJSON)
}

// RenderDocument decodes data in the given format and renders it.
func (r *Runtime) RenderDocument(data []byte, format core.Format) error {
	if r.destroyed {
		return errors.ErrDestroyed
	}
	desc, err := core.DecodeDocument(data, format)
	if err != nil {
		errors.Report(&errors.EngineError{Op: "engine.RenderDocument", Kind: errors.KindDecode, Err: err})
		return err
	}
	return r.Render(desc)
}

// Rebuild re-applies the last rendered description, marks every render
// object for layout and paint, and flushes synchronously. Hosts call it
// after something the tree depends on changed outside the description,
// such as the text measurer.
func (r *Runtime) Rebuild() {
	if r.destroyed {
		return
	}
	if r.hasLast {
		if err := r.Render(r.last); err != nil {
			r.log.Warn("rebuild failed", zap.Error(err))
		}
	}
	r.markAll()
	r.sched.RunNow()
}

func (r *Runtime) markAll() {
	var mark func(ro layout.RenderObject)
	mark = func(ro layout.RenderObject) {
		ro.MarkNeedsLayout()
		ro.MarkNeedsPaint()
		if v, ok := ro.(layout.ChildVisitor); ok {
			v.VisitChildren(mark)
		}
	}
	mark(r.view)
}

// Tick marks roots for layout and paint and runs a frame synchronously.
// With no roots it flushes whatever is already dirty. A Tick issued from
// inside a frame is ignored.
func (r *Runtime) Tick(roots ...core.Widget) {
	if r.destroyed {
		return
	}
	for _, w := range roots {
		if w == nil || w.Base().IsDisposed() {
			continue
		}
		w.Base().MarkNeedsLayout()
		w.Base().MarkNeedsPaint()
	}
	r.sched.RunNow()
}

// Pump runs frames queued on the default manual source and reports how
// many ran. It does nothing when Options.Source was set.
func (r *Runtime) Pump() int {
	if r.manual == nil || r.destroyed {
		return 0
	}
	return r.manual.Pump()
}

// Resize relayouts against the surface's current size on the next frame.
func (r *Runtime) Resize() {
	if r.destroyed {
		return
	}
	r.view.MarkNeedsLayout()
	r.index.invalidate()
}

// Destroy cancels the pending frame, clears the runtime's handlers and
// unmounts every tree. Later calls on the runtime do nothing.
func (r *Runtime) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	r.sched.Stop()
	if r.debug != nil {
		r.debug.Close()
	}

	for _, e := range r.overlays.entries {
		e.widget.Base().Unmount()
		e.removed = true
	}
	r.overlays.entries = nil
	if r.root != nil {
		r.root.Base().Unmount()
		r.root = nil
	}
	r.view.Dispose()
	r.owner.Registry.ClearRuntime(r.handle)

	r.hovered, r.focused = nil, nil
	r.index.invalidate()
	r.log.Debug("runtime destroyed", zap.Uint64("frames", r.frames))
}

// dropStaleRefs forgets hover and focus targets that were unmounted.
func (r *Runtime) dropStaleRefs() {
	if r.hovered != nil && r.hovered.Base().IsDisposed() {
		r.hovered = nil
	}
	if r.focused != nil && r.focused.Base().IsDisposed() {
		r.focused = nil
	}
}
