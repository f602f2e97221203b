package core

import (
	"github.com/go-drift/weave/pkg/events"
	"github.com/go-drift/weave/pkg/layout"
)

// Owner binds a widget tree to one runtime: its render pipeline, its
// handler bucket and its named actions.
type Owner struct {
	Pipeline *layout.PipelineOwner
	Registry *events.Registry
	Handle   events.Handle
	// Actions resolves handler props given as strings, which is how decoded
	// documents refer to Go handlers.
	Actions map[string]events.Handler

	// live counts mounted widgets per key. Keys may repeat across parents,
	// and a replacement is built before the widget it replaces unmounts.
	live map[string]int
}

// NewOwner creates an owner with a fresh pipeline. A nil registry uses
// events.Default.
func NewOwner(registry *events.Registry, handle events.Handle) *Owner {
	if registry == nil {
		registry = events.Default
	}
	return &Owner{
		Pipeline: &layout.PipelineOwner{},
		Registry: registry,
		Handle:   handle,
		Actions:  make(map[string]events.Handler),
	}
}

// Build creates a widget tree attached to o. It returns nil for an unknown
// root type.
func (o *Owner) Build(desc Description) Widget {
	w := build(desc, o)
	if w != nil {
		if ro := w.RenderObject(); ro != nil {
			layout.AttachTree(ro, o.Pipeline)
		}
	}
	return w
}

func (o *Owner) action(name string) events.Handler {
	if o == nil {
		return nil
	}
	return o.Actions[name]
}

func (o *Owner) retain(key string) {
	if o == nil {
		return
	}
	if o.live == nil {
		o.live = make(map[string]int)
	}
	o.live[key]++
}

// release drops one holder of key and clears the key's registry entries
// once no mounted widget holds it.
func (o *Owner) release(key string) {
	if o == nil {
		return
	}
	if o.live[key] > 1 {
		o.live[key]--
		return
	}
	delete(o.live, key)
	if o.Registry != nil {
		o.Registry.ClearKey(o.Handle, key)
	}
}

// LiveKeys returns how many mounted widgets hold key.
func (o *Owner) LiveKeys(key string) int {
	if o == nil {
		return 0
	}
	return o.live[key]
}
