package core

import (
	"github.com/go-drift/weave/pkg/events"
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/go-drift/weave/pkg/layout"
)

// Widget is a live node in the widget tree. Kinds embed WidgetBase, which
// supplies everything except the render object and Configure.
type Widget interface {
	events.Node
	Base() *WidgetBase
	// RenderObject returns the widget's render object. It never changes for
	// the widget's lifetime.
	RenderObject() layout.RenderObject
	// Configure applies kind-specific props. It runs on creation and on
	// every update, after the common props.
	Configure(props Props)
	CreateElement(desc Description)
}

// Disposer is implemented by widgets that release resources on teardown.
type Disposer interface {
	Dispose()
}

// PointerEvent controls whether a widget can be a hit-test target.
type PointerEvent uint8

const (
	PointerAuto PointerEvent = iota
	// PointerNone makes the widget transparent to hits; its children are
	// still tested.
	PointerNone
)

// ParsePointerEvent parses "auto" or "none".
func ParsePointerEvent(s string) (PointerEvent, bool) {
	switch s {
	case "auto":
		return PointerAuto, true
	case "none":
		return PointerNone, true
	}
	return PointerAuto, false
}

func (p PointerEvent) String() string {
	if p == PointerNone {
		return "none"
	}
	return "auto"
}

type handlerSpec struct {
	typ     string
	capture bool
	fn      events.Handler
}

// WidgetBase holds the state every widget kind shares.
type WidgetBase struct {
	typeName string
	key      string
	autoKey  bool
	props    Props
	children []Widget
	parent   Widget // non-owning
	self     Widget
	owner    *Owner

	pointerDefault PointerEvent
	pointerEvent   PointerEvent
	cursor         string

	handlers []handlerSpec
	removers []func()
	disposed bool
}

// Base returns w. Kinds get it through embedding.
func (w *WidgetBase) Base() *WidgetBase {
	return w
}

// Type returns the registered type name.
func (w *WidgetBase) Type() string {
	return w.typeName
}

// Key returns the widget key, explicit or generated.
func (w *WidgetBase) Key() string {
	return w.key
}

// IsAutoKey reports whether the key was generated.
func (w *WidgetBase) IsAutoKey() bool {
	return w.autoKey
}

// Props returns the props of the last applied description.
func (w *WidgetBase) Props() Props {
	return w.props
}

// Children returns the child widgets in order.
func (w *WidgetBase) Children() []Widget {
	return w.children
}

// Parent returns the parent widget, or nil for a root.
func (w *WidgetBase) Parent() Widget {
	return w.parent
}

// Self returns the concrete widget.
func (w *WidgetBase) Self() Widget {
	return w.self
}

// Owner returns the owner the widget is attached to, or nil.
func (w *WidgetBase) Owner() *Owner {
	return w.owner
}

// Cursor returns the cursor name set through the cursor prop.
func (w *WidgetBase) Cursor() string {
	return w.cursor
}

// PointerEvent returns the effective pointer-event mode.
func (w *WidgetBase) PointerEvent() PointerEvent {
	return w.pointerEvent
}

// SetPointerDefault sets the mode used when the pointerEvent prop is
// absent. Layout-only kinds call it with PointerNone from their constructor.
func (w *WidgetBase) SetPointerDefault(p PointerEvent) {
	w.pointerDefault = p
	w.pointerEvent = p
}

// IsDisposed reports whether the widget was torn down.
func (w *WidgetBase) IsDisposed() bool {
	return w.disposed
}

// Layout lays the widget out under constraints and returns its size.
func (w *WidgetBase) Layout(constraints layout.Constraints) graphics.Size {
	ro := w.renderObject()
	if ro == nil {
		return graphics.Size{}
	}
	ro.Layout(constraints, true)
	return ro.Size()
}

// Paint paints the widget's subtree into ctx.
func (w *WidgetBase) Paint(ctx *layout.PaintContext) {
	if ro := w.renderObject(); ro != nil {
		ro.Paint(ctx)
	}
}

// MarkNeedsLayout marks the render object dirty up to its relayout boundary.
func (w *WidgetBase) MarkNeedsLayout() {
	if ro := w.renderObject(); ro != nil {
		ro.MarkNeedsLayout()
	}
}

// MarkNeedsPaint marks the render object dirty up to its repaint boundary.
func (w *WidgetBase) MarkNeedsPaint() {
	if ro := w.renderObject(); ro != nil {
		ro.MarkNeedsPaint()
	}
}

// AbsolutePosition returns the widget's origin in surface coordinates.
func (w *WidgetBase) AbsolutePosition() graphics.Offset {
	if ro := w.renderObject(); ro != nil {
		return ro.Base().AbsolutePosition()
	}
	return graphics.Offset{}
}

// Bounds returns the widget's rectangle in surface coordinates.
func (w *WidgetBase) Bounds() graphics.Rect {
	if ro := w.renderObject(); ro != nil {
		return ro.Base().Bounds()
	}
	return graphics.Rect{}
}

// Path returns the widgets from the root down to w.
func (w *WidgetBase) Path() []Widget {
	var path []Widget
	for cur := w.self; cur != nil; cur = cur.Base().parent {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// EventPath is Path typed for the event dispatcher.
func (w *WidgetBase) EventPath() []events.Node {
	path := w.Path()
	nodes := make([]events.Node, len(path))
	for i, p := range path {
		nodes[i] = p
	}
	return nodes
}

// Walk visits w and its descendants depth first, parents before children.
// Returning false from visit skips that widget's children.
func (w *WidgetBase) Walk(visit func(Widget) bool) {
	if w.self == nil || !visit(w.self) {
		return
	}
	for _, child := range w.children {
		child.Base().Walk(visit)
	}
}

func (w *WidgetBase) renderObject() layout.RenderObject {
	if w.self == nil {
		return nil
	}
	return w.self.RenderObject()
}
