package core

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/go-drift/weave/pkg/errors"
	"github.com/go-drift/weave/pkg/events"
	"github.com/go-drift/weave/pkg/layout"
	"github.com/go-drift/weave/pkg/logging"
	"go.uber.org/zap"
)

// FlexDefaulter is implemented by kinds whose flex metadata defaults to
// something other than zero, such as Expanded.
type FlexDefaulter interface {
	FlexDefaults() layout.FlexData
}

// CreateElement updates the widget in place from desc: common props, then
// the kind's Configure, then the children. The type and key are fixed at
// creation; callers only pass descriptions that matched this widget.
func (w *WidgetBase) CreateElement(desc Description) {
	if w.self == nil || w.disposed {
		return
	}
	props := desc.Props
	if props == nil {
		props = Props{}
	}
	w.props = props
	w.applyCommonProps(props)
	w.self.Configure(props)
	w.reconcileChildren(desc.Children)
}

func (w *WidgetBase) applyCommonProps(props Props) {
	w.pointerEvent = w.pointerDefault
	if s := props.String("pointerEvent", ""); s != "" {
		if pe, ok := ParsePointerEvent(s); ok {
			w.pointerEvent = pe
		} else {
			logging.Named("reconcile").Warn("invalid pointerEvent",
				zap.String("key", w.key), zap.String("value", s))
		}
	}
	w.cursor = props.String("cursor", "")

	if ro := w.renderObject(); ro != nil {
		rb := ro.Base()
		var flex layout.FlexData
		if d, ok := w.self.(FlexDefaulter); ok {
			flex = d.FlexDefaults()
		}
		flex.Flex = props.Float("flex", flex.Flex)
		switch props.String("fit", "") {
		case "tight":
			flex.Fit = layout.FlexFitTight
		case "loose":
			flex.Fit = layout.FlexFitLoose
		}
		rb.SetFlex(flex)
		rb.SetRepaintBoundary(props.Bool("repaintBoundary", false))
	}

	// Sorted so handlers sharing an event type register in a stable order.
	w.handlers = w.handlers[:0]
	for _, name := range slices.Sorted(maps.Keys(props)) {
		typ, capture, ok := handlerName(name)
		if !ok {
			continue
		}
		fn := w.toHandler(props[name])
		if fn == nil {
			logging.Named("reconcile").Warn("unusable handler prop",
				zap.String("key", w.key), zap.String("prop", name))
			continue
		}
		w.handlers = append(w.handlers, handlerSpec{typ: typ, capture: capture, fn: fn})
	}
	w.registerHandlers()
}

// handlerName maps "onPointerDown" to ("pointerdown", false) and
// "onClickCapture" to ("click", true).
func handlerName(name string) (typ string, capture bool, ok bool) {
	rest, found := strings.CutPrefix(name, "on")
	if !found || rest == "" || !unicode.IsUpper(rune(rest[0])) {
		return "", false, false
	}
	if trimmed, isCapture := strings.CutSuffix(rest, "Capture"); isCapture && trimmed != "" {
		return strings.ToLower(trimmed), true, true
	}
	return strings.ToLower(rest), false, true
}

func (w *WidgetBase) toHandler(value any) events.Handler {
	switch fn := value.(type) {
	case events.Handler:
		return fn
	case func(*events.Event) bool:
		return fn
	case func(*events.Event):
		return events.Listen(fn)
	case func():
		return events.Listen(func(*events.Event) { fn() })
	case string:
		// Resolved lazily so actions added after the build still apply.
		name := fn
		return func(e *events.Event) bool {
			if h := w.owner.action(name); h != nil {
				return h(e)
			}
			return true
		}
	}
	return nil
}

func (w *WidgetBase) registerHandlers() {
	w.unregisterHandlers()
	if w.owner == nil || w.owner.Registry == nil {
		return
	}
	for _, h := range w.handlers {
		w.removers = append(w.removers, w.owner.Registry.Register(w.owner.Handle, w.key, h.typ, h.fn, h.capture))
	}
}

func (w *WidgetBase) unregisterHandlers() {
	for _, remove := range w.removers {
		remove()
	}
	w.removers = w.removers[:0]
}

// reconcileChildren matches descs against the current children.
//
// An explicitly keyed description reuses the old sibling with the same key
// and type, wherever it was. A keyless description reuses the old child at
// the same index when that child is auto-keyed and of the same type. When
// keys repeat, the last description with the key claims the old instance
// and earlier ones are built fresh.
func (w *WidgetBase) reconcileChildren(descs []Description) {
	setter, acceptsChildren := w.renderObject().(layout.ChildrenSetter)
	if !acceptsChildren && len(descs) > 0 {
		errors.Report(&errors.EngineError{
			Op:   "core.reconcile",
			Kind: errors.KindReconcile,
			Key:  w.key,
			Err:  fmt.Errorf("%s does not accept children, dropping %d", w.typeName, len(descs)),
		})
		descs = nil
	}

	old := w.children
	byKey := make(map[string]Widget)
	for _, child := range old {
		if b := child.Base(); !b.autoKey {
			byKey[b.key] = child
		}
	}

	last := make(map[string]int)
	for i, d := range descs {
		if d.Key == "" {
			continue
		}
		if _, dup := last[d.Key]; dup {
			errors.Report(&errors.EngineError{
				Op:   "core.reconcile",
				Kind: errors.KindReconcile,
				Key:  d.Key,
				Err:  fmt.Errorf("%w under %s", errors.ErrDuplicateKey, w.key),
			})
		}
		last[d.Key] = i
	}

	claimed := make(map[Widget]bool, len(old))
	next := make([]Widget, 0, len(descs))
	for i, d := range descs {
		var match Widget
		if d.Key != "" {
			if c := byKey[d.Key]; c != nil && last[d.Key] == i && c.Base().typeName == d.Type {
				match = c
			}
		} else if i < len(old) {
			if c := old[i]; c.Base().autoKey && c.Base().typeName == d.Type {
				match = c
			}
		}
		if match != nil && !claimed[match] {
			claimed[match] = true
			match.CreateElement(d)
			next = append(next, match)
			continue
		}

		child := build(d, w.owner)
		if child == nil {
			continue
		}
		child.Base().parent = w.self
		next = append(next, child)
	}

	w.children = next
	if acceptsChildren {
		renders := make([]layout.RenderObject, 0, len(next))
		for _, child := range next {
			if ro := child.RenderObject(); ro != nil {
				renders = append(renders, ro)
			}
		}
		setter.SetChildren(renders)
	}

	for _, child := range old {
		if !claimed[child] {
			child.Base().unmount()
		}
	}
}

// Attach binds the subtree to owner, registering handlers in its bucket and
// attaching render objects to its pipeline.
func (w *WidgetBase) Attach(owner *Owner) {
	w.Walk(func(n Widget) bool {
		b := n.Base()
		if b.owner != owner {
			b.unregisterHandlers()
			b.owner.release(b.key)
			b.owner = owner
			owner.retain(b.key)
			b.registerHandlers()
		}
		return true
	})
	if ro := w.renderObject(); ro != nil && owner != nil {
		layout.AttachTree(ro, owner.Pipeline)
	}
}

// Unmount tears the subtree down, children first. Handlers are removed
// from the registry and render objects release their layers.
func (w *WidgetBase) Unmount() {
	if p := w.parent; p != nil {
		b := p.Base()
		for i, c := range b.children {
			if c == w.self {
				b.children = append(b.children[:i:i], b.children[i+1:]...)
				break
			}
		}
		if setter, ok := p.RenderObject().(layout.ChildrenSetter); ok {
			renders := make([]layout.RenderObject, 0, len(b.children))
			for _, c := range b.children {
				renders = append(renders, c.RenderObject())
			}
			setter.SetChildren(renders)
		}
	}
	w.unmount()
}

func (w *WidgetBase) unmount() {
	if w.disposed {
		return
	}
	for _, child := range w.children {
		child.Base().unmount()
	}
	w.children = nil
	w.unregisterHandlers()
	w.owner.release(w.key)
	if d, ok := w.self.(Disposer); ok {
		d.Dispose()
	}
	if ro := w.renderObject(); ro != nil {
		ro.Base().Dispose()
	}
	w.parent = nil
	w.owner = nil
	w.disposed = true
}
