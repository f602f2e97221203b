package testing

import (
	"fmt"

	"github.com/go-drift/weave/pkg/events"
	"github.com/go-drift/weave/pkg/graphics"
)

// Tap taps the center of the first widget matched by finder.
func (t *Tester) Tap(finder Finder) error {
	center, err := t.center("Tap", finder)
	if err != nil {
		return err
	}
	t.TapAt(center)
	return nil
}

// TapAt sends pointerdown, pointerup and click at pos, the sequence a
// browser reports for one press.
func (t *Tester) TapAt(pos graphics.Offset) {
	for _, typ := range []string{events.PointerDown, events.PointerUp, events.Click} {
		t.SendInput(events.Input{Type: typ, X: pos.X, Y: pos.Y, Button: events.ButtonPrimary})
	}
}

// Hover moves the pointer to the center of the first match.
func (t *Tester) Hover(finder Finder) error {
	center, err := t.center("Hover", finder)
	if err != nil {
		return err
	}
	t.SendInput(events.Input{Type: events.PointerMove, X: center.X, Y: center.Y})
	return nil
}

// DragFrom presses at start, moves by delta and releases.
func (t *Tester) DragFrom(start, delta graphics.Offset) {
	end := start.Add(delta)
	t.SendInput(events.Input{Type: events.PointerDown, X: start.X, Y: start.Y, Button: events.ButtonPrimary})
	t.SendInput(events.Input{Type: events.PointerMove, X: end.X, Y: end.Y, Button: events.ButtonPrimary})
	t.SendInput(events.Input{Type: events.PointerUp, X: end.X, Y: end.Y, Button: events.ButtonPrimary})
}

// Leave reports that the pointer left the surface.
func (t *Tester) Leave() {
	t.SendInput(events.Input{Type: events.PointerLeave})
}

// PressKey sends a key down to the focused widget.
func (t *Tester) PressKey(key string, mods events.Modifiers) bool {
	return t.SendInput(events.Input{Type: events.KeyDown, Key: key, Modifiers: mods})
}

// SendInput delivers one native input and pumps the resulting frame.
func (t *Tester) SendInput(in events.Input) bool {
	delivered := t.rt.HandleInput(in)
	t.Pump()
	return delivered
}

func (t *Tester) center(op string, finder Finder) (graphics.Offset, error) {
	result := t.Find(finder)
	if !result.Exists() {
		return graphics.Offset{}, fmt.Errorf("%s: finder matched no widgets: %s", op, finder.Description())
	}
	b := result.Bounds()
	if b.IsEmpty() {
		return graphics.Offset{}, fmt.Errorf("%s: widget has no size: %s", op, finder.Description())
	}
	return b.Center(), nil
}
