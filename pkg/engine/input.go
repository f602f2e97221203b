package engine

import (
	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/events"
	"github.com/go-drift/weave/pkg/graphics"
	"go.uber.org/zap"
)

// DefaultCursor is reported when no widget under the pointer sets one.
const DefaultCursor = "default"

// HandleInput routes a native event in surface coordinates into the tree
// and reports whether a widget received it.
//
// Pointer events go to the hit-test target along its root path. Moves
// first diff the target against the hovered widget and deliver
// pointerleave to the old one and pointerenter to the new one. Presses
// move focus to the target. Key events follow the focused widget's path,
// or the main root's when nothing has focus. A pointerleave or mouseleave
// from the host means the pointer left the surface and only clears hover;
// a blur from the host clears focus.
func (r *Runtime) HandleInput(in events.Input) bool {
	if r.destroyed {
		return false
	}

	switch in.Type {
	case events.PointerLeave, events.MouseLeave:
		r.updateHover(nil, in)
		return false
	case events.Blur:
		r.setFocus(nil, in)
		return false
	}

	if events.IsKey(in.Type) {
		return r.dispatchKey(in)
	}

	target := r.HitTest(in.X, in.Y)
	if events.IsMove(in.Type) {
		r.updateHover(target, in)
	}
	if events.IsPress(in.Type) {
		r.setFocus(target, in)
	}
	if target == nil || r.destroyed || target.Base().IsDisposed() {
		return false
	}
	r.dispatcher.Dispatch(target.Base().EventPath(), events.NewEvent(in))
	return true
}

func (r *Runtime) dispatchKey(in events.Input) bool {
	target := r.focused
	if target == nil || target.Base().IsDisposed() {
		target = r.root
	}
	if target == nil {
		return false
	}
	r.dispatcher.Dispatch(target.Base().EventPath(), events.NewEvent(in))
	return true
}

// Hovered returns the widget the pointer is over, or nil.
func (r *Runtime) Hovered() core.Widget {
	return r.hovered
}

// Focused returns the focused widget, or nil.
func (r *Runtime) Focused() core.Widget {
	return r.focused
}

// Focus moves focus to w, delivering blur and focus in that order.
func (r *Runtime) Focus(w core.Widget) {
	if r.destroyed {
		return
	}
	r.setFocus(w, events.Input{})
}

func (r *Runtime) updateHover(target core.Widget, in events.Input) {
	if widgetKey(target) != widgetKey(r.hovered) {
		old := r.hovered
		r.hovered = target
		if old != nil && !old.Base().IsDisposed() {
			r.dispatcher.DispatchTo(old, synthesize(in, events.PointerLeave))
		}
		if target != nil && !r.destroyed {
			r.dispatcher.DispatchTo(target, synthesize(in, events.PointerEnter))
		}
	} else {
		r.hovered = target
	}
	r.updateCursor(target)
}

func (r *Runtime) setFocus(target core.Widget, in events.Input) {
	if target == r.focused {
		return
	}
	old := r.focused
	r.focused = target
	if old != nil && !old.Base().IsDisposed() {
		r.dispatcher.DispatchTo(old, synthesize(in, events.Blur))
	}
	if target != nil && !r.destroyed {
		r.dispatcher.DispatchTo(target, synthesize(in, events.Focus))
	}
	r.log.Debug("focus changed", zap.String("from", widgetKey(old)), zap.String("to", widgetKey(target)))
}

func (r *Runtime) updateCursor(target core.Widget) {
	setter, ok := r.surface.(graphics.CursorSetter)
	if !ok || r.destroyed {
		return
	}
	cursor := cursorFor(target)
	if cursor == r.cursor {
		return
	}
	r.cursor = cursor
	setter.SetCursor(cursor)
}

func synthesize(in events.Input, typ string) *events.Event {
	in.Type = typ
	return events.NewEvent(in)
}

func widgetKey(w core.Widget) string {
	if w == nil {
		return ""
	}
	return w.Key()
}
