package term

import (
	"context"
	"io"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/go-drift/weave/pkg/events"
)

const buttonMask = tcell.Button1 | tcell.Button2 | tcell.Button3

const wheelMask = tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight

// Input turns tcell events into native inputs. It implements
// host.InputSource.
type Input struct {
	screen  tcell.Screen
	events  chan tcell.Event
	quit    chan struct{}
	once    sync.Once
	buttons tcell.ButtonMask

	// OnResize is called from Next's goroutine when the terminal resizes.
	OnResize func(width, height int)
}

// NewInput starts polling screen. Close stops it.
func NewInput(screen tcell.Screen) *Input {
	in := &Input{
		screen: screen,
		events: make(chan tcell.Event),
		quit:   make(chan struct{}),
	}
	go in.poll()
	return in
}

func (in *Input) poll() {
	defer close(in.events)
	for {
		ev := in.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case in.events <- ev:
		case <-in.quit:
			return
		}
	}
}

// Close stops polling. It wakes PollEvent with an interrupt, so the
// screen must still be initialized.
func (in *Input) Close() {
	in.once.Do(func() {
		close(in.quit)
		_ = in.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
}

// Next implements host.InputSource.
func (in *Input) Next(ctx context.Context) (events.Input, error) {
	for {
		select {
		case <-ctx.Done():
			return events.Input{}, ctx.Err()
		case <-in.quit:
			return events.Input{}, io.EOF
		case ev, ok := <-in.events:
			if !ok {
				return events.Input{}, io.EOF
			}
			if out, ok := in.translate(ev); ok {
				return out, nil
			}
		}
	}
}

func (in *Input) translate(ev tcell.Event) (events.Input, bool) {
	switch ev := ev.(type) {
	case *tcell.EventMouse:
		return in.mouse(ev), true
	case *tcell.EventKey:
		return events.Input{
			Type:      events.KeyDown,
			Key:       keyName(ev),
			Modifiers: modifiers(ev.Modifiers()),
			Timestamp: ev.When(),
		}, true
	case *tcell.EventResize:
		if in.OnResize != nil {
			w, h := ev.Size()
			in.OnResize(w, h)
		}
	}
	return events.Input{}, false
}

// mouse derives press and release from the change in held buttons; tcell
// reports only the current button state.
func (in *Input) mouse(ev *tcell.EventMouse) events.Input {
	x, y := ev.Position()
	out := events.Input{
		Type:      events.PointerMove,
		X:         float64(x),
		Y:         float64(y),
		Modifiers: modifiers(ev.Modifiers()),
		Timestamp: ev.When(),
	}
	held := ev.Buttons()
	if held&wheelMask != 0 {
		out.Type = events.Wheel
		return out
	}
	held &= buttonMask
	pressed, released := held&^in.buttons, in.buttons&^held
	in.buttons = held
	switch {
	case pressed != 0:
		out.Type = events.PointerDown
		out.Button = button(pressed)
	case released != 0:
		out.Type = events.PointerUp
		out.Button = button(released)
	}
	return out
}

func button(m tcell.ButtonMask) events.Button {
	switch {
	case m&tcell.Button1 != 0:
		return events.ButtonPrimary
	case m&tcell.Button2 != 0:
		return events.ButtonSecondary
	case m&tcell.Button3 != 0:
		return events.ButtonMiddle
	}
	return events.ButtonNone
}

func keyName(ev *tcell.EventKey) string {
	if ev.Key() == tcell.KeyRune {
		return string(ev.Rune())
	}
	if name, ok := tcell.KeyNames[ev.Key()]; ok {
		return name
	}
	return ev.Name()
}

func modifiers(m tcell.ModMask) events.Modifiers {
	var out events.Modifiers
	if m&tcell.ModShift != 0 {
		out |= events.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= events.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= events.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= events.ModMeta
	}
	return out
}
