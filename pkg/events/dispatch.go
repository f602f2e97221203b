package events

import (
	"github.com/go-drift/weave/pkg/errors"
	"github.com/go-drift/weave/pkg/logging"
	"go.uber.org/zap"
)

// Dispatcher routes events along a root-to-target path using handlers from
// one runtime's registry bucket.
type Dispatcher struct {
	registry *Registry
	handle   Handle
	alive    func() bool
}

// NewDispatcher creates a dispatcher for the given runtime handle.
// A nil registry uses Default.
func NewDispatcher(registry *Registry, handle Handle) *Dispatcher {
	if registry == nil {
		registry = Default
	}
	return &Dispatcher{registry: registry, handle: handle}
}

// Registry returns the registry handlers are read from.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Handle returns the runtime handle.
func (d *Dispatcher) Handle() Handle {
	return d.handle
}

// BindLifetime makes every later invocation a no-op once alive reports
// false. Runtimes bind it so handlers never run after destroy, even when the
// destroy happens inside a handler.
func (d *Dispatcher) BindLifetime(alive func() bool) {
	d.alive = alive
}

// Dispatch sends e along path, which runs from the root to the target.
//
// Capture handlers run root first down to the target's parent, then the
// target's capture and bubble handlers, then bubble handlers from the parent
// back to the root. StopPropagation lets the current node finish and stops
// traversal. A handler returning false ends dispatch at once; Dispatch then
// returns false.
func (d *Dispatcher) Dispatch(path []Node, e *Event) bool {
	n := len(path)
	if n == 0 || e == nil {
		return true
	}
	target := path[n-1]
	e.Target = target

	for i := 0; i < n-1; i++ {
		if !d.invoke(path[i], e, PhaseCapture, true) {
			return false
		}
		if e.stopped {
			return true
		}
	}

	if !d.invoke(target, e, PhaseTarget, true) || !d.invoke(target, e, PhaseTarget, false) {
		return false
	}
	if e.stopped {
		return true
	}

	for i := n - 2; i >= 0; i-- {
		if !d.invoke(path[i], e, PhaseBubble, false) {
			return false
		}
		if e.stopped {
			return true
		}
	}
	return true
}

// DispatchTo delivers e to a single node in the target phase only. Hover
// enter and leave use it.
func (d *Dispatcher) DispatchTo(node Node, e *Event) bool {
	if node == nil || e == nil {
		return true
	}
	e.Target = node
	return d.invoke(node, e, PhaseTarget, true) && d.invoke(node, e, PhaseTarget, false)
}

func (d *Dispatcher) invoke(node Node, e *Event, phase Phase, capture bool) bool {
	if d.alive != nil && !d.alive() {
		return false
	}
	handlers := d.resolve(node, e.Type, capture)
	if len(handlers) == 0 {
		return true
	}
	e.CurrentTarget = node
	e.Phase = phase
	for _, h := range handlers {
		if d.alive != nil && !d.alive() {
			return false
		}
		if !d.call(node, h, e) {
			logging.Named("events").Debug("dispatch aborted",
				zap.String("type", e.Type),
				zap.String("key", node.Key()),
				zap.Stringer("phase", phase))
			return false
		}
	}
	return true
}

// resolve returns the node's handlers for typ, falling back to the pointer
// synonym of a native mouse or touch type when the node has none.
func (d *Dispatcher) resolve(node Node, typ string, capture bool) []Handler {
	if hs := d.lookup(node, typ, capture); len(hs) > 0 {
		return hs
	}
	if syn, ok := PointerSynonym(typ); ok {
		return d.lookup(node, syn, capture)
	}
	return nil
}

func (d *Dispatcher) lookup(node Node, typ string, capture bool) []Handler {
	var hs []Handler
	if mp, ok := node.(MethodProvider); ok {
		if m := mp.EventMethod(typ, capture); m != nil {
			hs = append(hs, m)
		}
	}
	return append(hs, d.registry.Handlers(d.handle, node.Key(), typ, capture)...)
}

// call runs one handler. A panic is reported and treated as a normal return
// so the remaining handlers still run.
func (d *Dispatcher) call(node Node, h Handler, e *Event) (cont bool) {
	defer func() {
		if r := recover(); r != nil {
			errors.ReportPanic(&errors.PanicError{
				Op:         "events.Dispatch",
				Key:        node.Key(),
				Event:      e.Type,
				Value:      r,
				StackTrace: errors.CaptureStack(),
			})
			cont = true
		}
	}()
	return h(e)
}
