// Package events provides synthetic events, the per-runtime handler
// registry, and capture/target/bubble dispatch.
package events

import (
	"strings"
	"time"
)

// Event type names. Declarative handlers use the same names after the "on"
// prefix, lowercased: onPointerDown handles "pointerdown".
const (
	PointerDown   = "pointerdown"
	PointerUp     = "pointerup"
	PointerMove   = "pointermove"
	PointerEnter  = "pointerenter"
	PointerLeave  = "pointerleave"
	PointerCancel = "pointercancel"
	Click         = "click"
	Wheel         = "wheel"

	MouseDown  = "mousedown"
	MouseUp    = "mouseup"
	MouseMove  = "mousemove"
	MouseEnter = "mouseenter"
	MouseLeave = "mouseleave"

	TouchStart  = "touchstart"
	TouchEnd    = "touchend"
	TouchMove   = "touchmove"
	TouchCancel = "touchcancel"

	KeyDown = "keydown"
	KeyUp   = "keyup"
	Focus   = "focus"
	Blur    = "blur"
)

var pointerSynonyms = map[string]string{
	MouseDown:   PointerDown,
	MouseUp:     PointerUp,
	MouseMove:   PointerMove,
	MouseEnter:  PointerEnter,
	MouseLeave:  PointerLeave,
	TouchStart:  PointerDown,
	TouchEnd:    PointerUp,
	TouchMove:   PointerMove,
	TouchCancel: PointerCancel,
}

// PointerSynonym returns the pointer event type that stands in for a native
// mouse or touch type.
func PointerSynonym(typ string) (string, bool) {
	syn, ok := pointerSynonyms[typ]
	return syn, ok
}

// IsMove reports whether typ is a pointer, mouse or touch move.
func IsMove(typ string) bool {
	return typ == PointerMove || typ == MouseMove || typ == TouchMove
}

// IsKey reports whether typ is a keyboard event.
func IsKey(typ string) bool {
	return typ == KeyDown || typ == KeyUp
}

// IsPress reports whether typ starts a press.
func IsPress(typ string) bool {
	return typ == PointerDown || typ == MouseDown || typ == TouchStart
}

// Phase is the propagation phase an event is currently in.
type Phase uint8

const (
	PhaseNone Phase = iota
	// PhaseCapture travels from the root down to the target's parent.
	PhaseCapture
	// PhaseTarget runs the target's own handlers, capture ones first.
	PhaseTarget
	// PhaseBubble travels from the target's parent back up to the root.
	PhaseBubble
)

func (p Phase) String() string {
	switch p {
	case PhaseCapture:
		return "capture"
	case PhaseTarget:
		return "target"
	case PhaseBubble:
		return "bubble"
	default:
		return "none"
	}
}

// Button identifies a pointer button.
type Button uint8

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonSecondary
	ButtonMiddle
)

// Modifiers is a bitmask of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

func (m Modifiers) Shift() bool { return m&ModShift != 0 }
func (m Modifiers) Ctrl() bool  { return m&ModCtrl != 0 }
func (m Modifiers) Alt() bool   { return m&ModAlt != 0 }
func (m Modifiers) Meta() bool  { return m&ModMeta != 0 }

func (m Modifiers) String() string {
	var parts []string
	if m.Ctrl() {
		parts = append(parts, "ctrl")
	}
	if m.Alt() {
		parts = append(parts, "alt")
	}
	if m.Shift() {
		parts = append(parts, "shift")
	}
	if m.Meta() {
		parts = append(parts, "meta")
	}
	return strings.Join(parts, "+")
}

// Node is a dispatch target. Widgets implement it.
type Node interface {
	Key() string
}

// Event is the synthetic event handed to handlers.
type Event struct {
	Type          string
	Target        Node
	CurrentTarget Node
	Phase         Phase
	X, Y          float64
	Button        Button
	Key           string
	Modifiers     Modifiers
	Timestamp     time.Time

	stopped bool
}

// StopPropagation stops the event after the current node's handlers finish.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool {
	return e.stopped
}

// Input is a native event as delivered by the embedding environment, in
// surface coordinates.
type Input struct {
	Type      string
	X, Y      float64
	Button    Button
	Key       string
	Modifiers Modifiers
	Timestamp time.Time
}

// NewEvent builds an unsent event from a native input.
func NewEvent(in Input) *Event {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return &Event{
		Type:      in.Type,
		X:         in.X,
		Y:         in.Y,
		Button:    in.Button,
		Key:       in.Key,
		Modifiers: in.Modifiers,
		Timestamp: ts,
	}
}

// Handler handles an event. Returning false ends the whole dispatch.
type Handler func(e *Event) bool

// Listen adapts a function that never aborts dispatch.
func Listen(fn func(e *Event)) Handler {
	return func(e *Event) bool {
		fn(e)
		return true
	}
}

// MethodProvider is implemented by widgets with built-in handlers. Method
// handlers run before registered handlers for the same node and phase.
type MethodProvider interface {
	EventMethod(typ string, capture bool) Handler
}
