package testing

import (
	"testing"

	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/engine"
	"github.com/go-drift/weave/pkg/events"
	"github.com/go-drift/weave/pkg/graphics"
	_ "github.com/go-drift/weave/pkg/widgets"
)

const (
	// DefaultTestWidth is the default logical width of the test surface.
	DefaultTestWidth = 800
	// DefaultTestHeight is the default logical height of the test surface.
	DefaultTestHeight = 600
)

// Option configures a Tester.
type Option func(*settings)

type settings struct {
	size    graphics.Size
	measure graphics.FixedMeasurer
	actions map[string]events.Handler
}

// WithSize sets the logical surface size.
func WithSize(width, height float64) Option {
	return func(s *settings) { s.size = graphics.Size{Width: width, Height: height} }
}

// WithMeasurer sets the fixed per-character text metrics.
func WithMeasurer(advance, lineHeight float64) Option {
	return func(s *settings) { s.measure = graphics.FixedMeasurer{Advance: advance, LineHeight: lineHeight} }
}

// WithActions registers named actions for string handler props.
func WithActions(actions map[string]events.Handler) Option {
	return func(s *settings) { s.actions = actions }
}

// Tester owns one runtime with its own handler registry. Frames run only
// when the tester pumps, so every call is synchronous.
type Tester struct {
	rt      *engine.Runtime
	surface *recordingSurface
}

// NewTester creates a tester that is destroyed when t finishes.
func NewTester(t testing.TB, opts ...Option) *Tester {
	s := settings{
		size:    graphics.Size{Width: DefaultTestWidth, Height: DefaultTestHeight},
		measure: graphics.FixedMeasurer{Advance: 8, LineHeight: 16},
	}
	for _, opt := range opts {
		opt(&s)
	}
	surface := &recordingSurface{FixedMeasurer: s.measure, size: s.size}
	rt := engine.Create(surface, engine.Options{
		Registry: events.NewRegistry(),
		Actions:  s.actions,
	})
	t.Cleanup(rt.Destroy)
	return &Tester{rt: rt, surface: surface}
}

// Runtime returns the runtime under test.
func (t *Tester) Runtime() *engine.Runtime {
	return t.rt
}

// Render reconciles desc into the tree and runs the resulting frame.
func (t *Tester) Render(desc core.Description) error {
	if err := t.rt.Render(desc); err != nil {
		return err
	}
	t.Pump()
	return nil
}

// RenderDocument decodes data and renders it.
func (t *Tester) RenderDocument(data []byte, format core.Format) error {
	if err := t.rt.RenderDocument(data, format); err != nil {
		return err
	}
	t.Pump()
	return nil
}

// Pump runs any pending frame and returns how many callbacks ran.
func (t *Tester) Pump() int {
	return t.rt.Pump()
}

// Resize changes the surface size and relayouts.
func (t *Tester) Resize(width, height float64) {
	t.surface.size = graphics.Size{Width: width, Height: height}
	t.rt.Resize()
	t.Pump()
}

// Frames returns how many frames the surface presented.
func (t *Tester) Frames() int {
	return t.surface.frames
}

// LastFrame returns the display list of the last presented frame.
func (t *Tester) LastFrame() *graphics.DisplayList {
	return t.surface.last
}

// Cursor returns the cursor the runtime last requested.
func (t *Tester) Cursor() string {
	return t.surface.cursor
}

// Find evaluates finder against the main tree, then the overlays.
func (t *Tester) Find(finder Finder) FinderResult {
	var found []core.Widget
	for _, root := range t.roots() {
		found = append(found, finder.Evaluate(root)...)
	}
	return FinderResult{widgets: found, finder: finder}
}

func (t *Tester) roots() []core.Widget {
	var roots []core.Widget
	if root := t.rt.RootWidget(); root != nil {
		roots = append(roots, root)
	}
	for _, e := range t.rt.Overlays().Entries() {
		roots = append(roots, e.Widget())
	}
	return roots
}
