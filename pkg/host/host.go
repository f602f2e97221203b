// Package host routes native input from an embedding environment into one
// or more runtimes mounted side by side.
//
// A Host owns its runtimes and the frame source they share. Pointer events
// go only to the topmost surface under the point, translated into that
// surface's coordinates. Moves are coalesced to the latest one per surface
// and delivered once per frame; any other event for a surface delivers its
// pending move first. Key events go to the surface that last received a
// press and are dropped while the environment reports an editable native
// control as focused.
package host

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/go-drift/weave/pkg/engine"
	"github.com/go-drift/weave/pkg/events"
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/go-drift/weave/pkg/logging"
	"github.com/go-drift/weave/pkg/scheduler"
	"go.uber.org/zap"
)

// ErrDuplicateSurface is returned when mounting an ID that is already in use.
var ErrDuplicateSurface = stderrors.New("surface already mounted")

// Environment answers questions only the embedding environment can.
type Environment interface {
	// SurfaceAt returns the ID of the topmost mounted surface at the screen
	// point, or "" when the point is over none.
	SurfaceAt(x, y float64) string
	// FocusEditable reports whether the environment's focus is on an
	// editable native control, such as a text field.
	FocusEditable() bool
}

// Options configures a Host.
type Options struct {
	// Environment resolves surfaces and editable focus. Nil picks the
	// newest mount whose rectangle contains the point and never reports
	// editable focus.
	Environment Environment
	// FPS caps the shared frame ticker.
	FPS    float64
	Logger *zap.Logger
}

// Mount places a runtime on the host's screen.
type Mount struct {
	ID      string
	Runtime *engine.Runtime
	// Origin is the surface's top-left corner in screen coordinates.
	Origin graphics.Offset
	// Scale is screen units per surface unit. Zero means 1.
	Scale float64

	pending    events.Input
	hasPending bool
}

// ToLocal converts a screen point into the mount's surface coordinates.
func (m *Mount) ToLocal(x, y float64) (float64, float64) {
	scale := m.Scale
	if scale <= 0 {
		scale = 1
	}
	return (x - m.Origin.X) / scale, (y - m.Origin.Y) / scale
}

// Rect returns the mount's rectangle in screen coordinates.
func (m *Mount) Rect() graphics.Rect {
	scale := m.Scale
	if scale <= 0 {
		scale = 1
	}
	size := m.Runtime.Surface().Size()
	return graphics.RectFromLTWH(m.Origin.X, m.Origin.Y, size.Width*scale, size.Height*scale)
}

// Host routes input into its mounted runtimes. Route, Flush and the
// runtimes themselves must be used from one goroutine; Run provides that
// goroutine. Dispatch is safe from any goroutine.
type Host struct {
	env    Environment
	ticker *scheduler.TickerSource
	log    *zap.Logger

	mounts []*Mount
	byID   map[string]*Mount

	// pointer is the surface last under the pointer, active the surface
	// that last received a press.
	pointer string
	active  string

	flushQueued bool

	mu     sync.Mutex
	calls  []func()
	notify chan struct{}

	closeOnce sync.Once
}

// New starts a host and its frame ticker. Close stops the ticker.
func New(opts Options) *Host {
	log := opts.Logger
	if log == nil {
		log = logging.Named("host")
	}
	h := &Host{
		env:    opts.Environment,
		ticker: scheduler.NewTickerSource(context.Background(), opts.FPS),
		log:    log,
		byID:   make(map[string]*Mount),
		notify: make(chan struct{}, 1),
	}
	if h.env == nil {
		h.env = geometry{h}
	}
	return h
}

// Create builds a runtime drawing to surface and mounts it at origin. The
// runtime's frames are paced by the host's ticker.
func (h *Host) Create(id string, surface graphics.Surface, origin graphics.Offset, opts engine.Options) (*engine.Runtime, error) {
	if _, ok := h.byID[id]; ok {
		return nil, fmt.Errorf("create %q: %w", id, ErrDuplicateSurface)
	}
	opts.Source = h.ticker
	rt := engine.Create(surface, opts)
	if err := h.Mount(&Mount{ID: id, Runtime: rt, Origin: origin}); err != nil {
		rt.Destroy()
		return nil, err
	}
	return rt, nil
}

// Mount adds m on top of the existing mounts.
func (h *Host) Mount(m *Mount) error {
	if m == nil || m.Runtime == nil {
		return fmt.Errorf("mount: nil runtime")
	}
	if _, ok := h.byID[m.ID]; ok {
		return fmt.Errorf("mount %q: %w", m.ID, ErrDuplicateSurface)
	}
	h.mounts = append(h.mounts, m)
	h.byID[m.ID] = m
	h.log.Debug("surface mounted", zap.String("id", m.ID), zap.Float64("x", m.Origin.X), zap.Float64("y", m.Origin.Y))
	return nil
}

// Unmount removes the surface and destroys its runtime. Pending moves for
// it are discarded.
func (h *Host) Unmount(id string) {
	m, ok := h.byID[id]
	if !ok {
		return
	}
	delete(h.byID, id)
	for i, cur := range h.mounts {
		if cur == m {
			h.mounts = append(h.mounts[:i], h.mounts[i+1:]...)
			break
		}
	}
	if h.pointer == id {
		h.pointer = ""
	}
	if h.active == id {
		h.active = ""
	}
	m.Runtime.Destroy()
	h.log.Debug("surface unmounted", zap.String("id", id))
}

// Lookup returns the mount with the given ID.
func (h *Host) Lookup(id string) (*Mount, bool) {
	m, ok := h.byID[id]
	return m, ok
}

// Mounts returns the mounts, bottom first.
func (h *Host) Mounts() []*Mount {
	return h.mounts
}

// Route delivers one native event in screen coordinates and reports
// whether a widget received it. Coalesced moves report true when queued.
func (h *Host) Route(in events.Input) bool {
	switch {
	case events.IsKey(in.Type):
		return h.routeKey(in)
	case in.Type == events.Focus:
		return false
	case in.Type == events.Blur:
		m := h.target()
		if m == nil {
			return false
		}
		h.flushMount(m)
		return m.Runtime.HandleInput(in)
	case in.Type == events.PointerLeave || in.Type == events.MouseLeave:
		// The pointer left the host entirely.
		h.leave(in)
		return false
	}

	id := h.env.SurfaceAt(in.X, in.Y)
	if id != h.pointer {
		h.leave(in)
		h.pointer = id
	}
	m, ok := h.byID[id]
	if !ok {
		return false
	}

	local := in
	local.X, local.Y = m.ToLocal(in.X, in.Y)
	if events.IsMove(in.Type) {
		m.pending = local
		m.hasPending = true
		h.queueFlush()
		return true
	}

	h.flushMount(m)
	if events.IsPress(in.Type) {
		h.active = id
	}
	return m.Runtime.HandleInput(local)
}

func (h *Host) routeKey(in events.Input) bool {
	if h.env.FocusEditable() {
		h.log.Debug("key dropped for editable focus", zap.String("type", in.Type), zap.String("key", in.Key))
		return false
	}
	m := h.target()
	if m == nil {
		return false
	}
	h.flushMount(m)
	return m.Runtime.HandleInput(in)
}

// target is the surface keyboard and focus events go to: the last pressed
// one, or the only one.
func (h *Host) target() *Mount {
	if m, ok := h.byID[h.active]; ok {
		return m
	}
	if len(h.mounts) == 1 {
		return h.mounts[0]
	}
	return nil
}

// leave flushes the surface the pointer is leaving and tells it the
// pointer is gone.
func (h *Host) leave(in events.Input) {
	m, ok := h.byID[h.pointer]
	h.pointer = ""
	if !ok {
		return
	}
	h.flushMount(m)
	in.Type = events.PointerLeave
	m.Runtime.HandleInput(in)
}

func (h *Host) queueFlush() {
	if h.flushQueued {
		return
	}
	h.flushQueued = true
	h.ticker.Schedule(func() {
		h.flushQueued = false
		h.Flush()
	})
}

// Flush delivers every pending move, bottom surface first, and returns how
// many were delivered. The ticker calls it once per frame while moves are
// pending.
func (h *Host) Flush() int {
	n := 0
	for _, m := range h.mounts {
		if h.flushMount(m) {
			n++
		}
	}
	return n
}

func (h *Host) flushMount(m *Mount) bool {
	if !m.hasPending {
		return false
	}
	in := m.pending
	m.pending, m.hasPending = events.Input{}, false
	m.Runtime.HandleInput(in)
	return true
}

// Dispatch queues fn to run on the goroutine driving Run. It is the way
// other goroutines reach the runtimes.
func (h *Host) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.calls = append(h.calls, fn)
	h.mu.Unlock()
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

func (h *Host) drainCalls() int {
	h.mu.Lock()
	calls := h.calls
	h.calls = nil
	h.mu.Unlock()
	for _, fn := range calls {
		fn()
	}
	return len(calls)
}

// Close destroys every runtime and stops the frame ticker. Call it after
// Run has returned.
func (h *Host) Close() {
	h.closeOnce.Do(func() {
		for _, m := range h.mounts {
			m.Runtime.Destroy()
		}
		h.mounts = nil
		clear(h.byID)
		h.ticker.Close()
	})
}

// geometry is the Environment used when the host has none: the newest
// mount containing the point wins.
type geometry struct{ h *Host }

func (g geometry) SurfaceAt(x, y float64) string {
	for i := len(g.h.mounts) - 1; i >= 0; i-- {
		m := g.h.mounts[i]
		if m.Rect().Contains(graphics.Offset{X: x, Y: y}) {
			return m.ID
		}
	}
	return ""
}

func (geometry) FocusEditable() bool { return false }
