package events

import (
	"sync"

	"github.com/google/uuid"
)

// Handle identifies a runtime's handler bucket. The zero Handle is the
// shared default bucket.
type Handle struct {
	id uuid.UUID
}

// NewHandle returns a fresh runtime handle.
func NewHandle() Handle {
	return Handle{id: uuid.New()}
}

// IsDefault reports whether h is the shared default bucket.
func (h Handle) IsDefault() bool {
	return h.id == uuid.Nil
}

func (h Handle) String() string {
	if h.IsDefault() {
		return "default"
	}
	return h.id.String()
}

type entry struct {
	id      uint64
	handler Handler
	capture bool
}

// bucket maps key -> event type -> handlers in registration order.
type bucket map[string]map[string][]entry

// Registry stores handlers keyed by (key, type, runtime handle). Runtimes
// never see each other's entries.
type Registry struct {
	mu      sync.RWMutex
	buckets map[Handle]bucket
	nextID  uint64
}

// Default is the process-wide registry shared by runtimes.
var Default = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{buckets: make(map[Handle]bucket)}
}

// Register adds a handler and returns a function that removes exactly that
// registration.
func (r *Registry) Register(h Handle, key, typ string, handler Handler, capture bool) (remove func()) {
	if handler == nil {
		return func() {}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	b := r.buckets[h]
	if b == nil {
		b = make(bucket)
		r.buckets[h] = b
	}
	byType := b[key]
	if byType == nil {
		byType = make(map[string][]entry)
		b[key] = byType
	}
	byType[typ] = append(byType[typ], entry{id: id, handler: handler, capture: capture})

	return func() { r.remove(h, key, typ, id) }
}

func (r *Registry) remove(h Handle, key, typ string, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byType := r.buckets[h][key]
	if byType == nil {
		return
	}
	entries := byType[typ]
	for i, e := range entries {
		if e.id == id {
			byType[typ] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(byType[typ]) == 0 {
		delete(byType, typ)
	}
	if len(byType) == 0 {
		delete(r.buckets[h], key)
	}
}

// Handlers returns the handlers for (key, type) in the given phase group.
// When the runtime bucket has no entry for the pair, the default bucket is
// consulted. The returned slice is a snapshot.
func (r *Registry) Handlers(h Handle, key, typ string, capture bool) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.buckets[h][key][typ]
	if len(entries) == 0 && !h.IsDefault() {
		entries = r.buckets[Handle{}][key][typ]
	}
	var out []Handler
	for _, e := range entries {
		if e.capture == capture {
			out = append(out, e.handler)
		}
	}
	return out
}

// Has reports whether any handler, capture or not, exists for (key, type).
func (r *Registry) Has(h Handle, key, typ string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.buckets[h][key][typ]) > 0 {
		return true
	}
	return !h.IsDefault() && len(r.buckets[Handle{}][key][typ]) > 0
}

// ClearKey drops every handler for key in the runtime's bucket.
func (r *Registry) ClearKey(h Handle, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buckets[h], key)
}

// ClearRuntime drops the runtime's whole bucket.
func (r *Registry) ClearRuntime(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buckets, h)
}

// ClearAll empties every bucket, the default one included.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buckets = make(map[Handle]bucket)
}

// Len returns the number of registrations in the runtime's bucket.
func (r *Registry) Len(h Handle) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, byType := range r.buckets[h] {
		for _, entries := range byType {
			n += len(entries)
		}
	}
	return n
}
