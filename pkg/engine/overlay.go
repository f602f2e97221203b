package engine

import (
	"fmt"

	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/errors"
	"github.com/go-drift/weave/pkg/graphics"
)

// OverlayHost manages floating roots such as dropdowns and popovers.
// Overlays are laid out loosely against the surface, painted above the
// main tree in the same frame and hit-tested before it, newest first.
type OverlayHost struct {
	rt      *Runtime
	entries []*OverlayEntry
}

// OverlayEntry is one inserted overlay.
type OverlayEntry struct {
	host    *OverlayHost
	widget  core.Widget
	offset  graphics.Offset
	removed bool
}

// Insert builds desc as a new overlay placed at offset. It returns nil for
// an unknown type or a destroyed runtime.
func (h *OverlayHost) Insert(desc core.Description, offset graphics.Offset) *OverlayEntry {
	if h.rt.destroyed {
		return nil
	}
	w := h.rt.owner.Build(desc)
	if w == nil {
		return nil
	}
	e := &OverlayEntry{host: h, widget: w, offset: offset}
	h.entries = append(h.entries, e)
	h.changed()
	return e
}

// Entries returns the live entries, bottom first.
func (h *OverlayHost) Entries() []*OverlayEntry {
	return h.entries
}

// Len returns the number of live entries.
func (h *OverlayHost) Len() int {
	return len(h.entries)
}

func (h *OverlayHost) changed() {
	h.rt.view.setOverlays(h.entries)
	h.rt.dropStaleRefs()
	h.rt.index.invalidate()
}

// Widget returns the overlay's root widget.
func (e *OverlayEntry) Widget() core.Widget {
	return e.widget
}

// Offset returns the overlay's position on the surface.
func (e *OverlayEntry) Offset() graphics.Offset {
	return e.offset
}

// IsRemoved reports whether the entry was removed.
func (e *OverlayEntry) IsRemoved() bool {
	return e.removed
}

// Update reconciles desc into the overlay. A different root type or key
// replaces the overlay's tree.
func (e *OverlayEntry) Update(desc core.Description) error {
	if e.removed || e.host.rt.destroyed {
		return errors.ErrDestroyed
	}
	if reusable(e.widget, desc) {
		e.widget.CreateElement(desc)
		e.host.rt.index.invalidate()
		return nil
	}
	w := e.host.rt.owner.Build(desc)
	if w == nil {
		return fmt.Errorf("%w: %q", errors.ErrUnknownType, desc.Type)
	}
	old := e.widget
	e.widget = w
	e.host.changed()
	old.Base().Unmount()
	e.host.rt.dropStaleRefs()
	return nil
}

// SetOffset moves the overlay.
func (e *OverlayEntry) SetOffset(offset graphics.Offset) {
	if e.removed || e.offset == offset {
		return
	}
	e.offset = offset
	e.host.rt.view.MarkNeedsLayout()
}

// Remove unmounts the overlay. Removing twice does nothing.
func (e *OverlayEntry) Remove() {
	if e.removed {
		return
	}
	e.removed = true
	h := e.host
	for i, other := range h.entries {
		if other == e {
			h.entries = append(h.entries[:i:i], h.entries[i+1:]...)
			break
		}
	}
	if h.rt.destroyed {
		return
	}
	h.changed()
	e.widget.Base().Unmount()
	h.rt.dropStaleRefs()
}
