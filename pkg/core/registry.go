package core

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/go-drift/weave/pkg/errors"
	"github.com/go-drift/weave/pkg/logging"
	"go.uber.org/zap"
)

// Constructor returns a new, unconfigured widget of one kind.
type Constructor func() Widget

var (
	typesMu sync.RWMutex
	types   = make(map[string]Constructor)

	keysMu   sync.Mutex
	counters = make(map[string]int)
)

// RegisterType adds a widget kind under name. Registration is append-only:
// the first constructor for a name wins and later ones are logged and
// ignored, so runtimes sharing the process never see a kind change.
func RegisterType(name string, ctor Constructor) {
	if name == "" || ctor == nil {
		return
	}
	typesMu.Lock()
	defer typesMu.Unlock()
	if _, exists := types[name]; exists {
		logging.Named("reconcile").Warn("widget type already registered", zap.String("type", name))
		return
	}
	types[name] = ctor
}

// HasRegisteredType reports whether name resolves to a constructor.
func HasRegisteredType(name string) bool {
	typesMu.RLock()
	defer typesMu.RUnlock()
	_, ok := types[name]
	return ok
}

// RegisteredTypes returns the registered names, sorted.
func RegisteredTypes() []string {
	typesMu.RLock()
	defer typesMu.RUnlock()
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupType(name string) Constructor {
	typesMu.RLock()
	defer typesMu.RUnlock()
	return types[name]
}

// NextKey returns the next auto key for typ, "<typ>-<n>" with n counting
// from 1 per type.
func NextKey(typ string) string {
	keysMu.Lock()
	defer keysMu.Unlock()
	counters[typ]++
	return typ + "-" + strconv.Itoa(counters[typ])
}

// ResetKeysForTest restarts every auto key counter.
func ResetKeysForTest() {
	keysMu.Lock()
	defer keysMu.Unlock()
	clear(counters)
}

// CreateWidget builds a detached widget tree from desc. It returns nil when
// desc.Type is not registered; the failure is reported, not raised.
func CreateWidget(desc Description) Widget {
	return build(desc, nil)
}

func build(desc Description, owner *Owner) Widget {
	ctor := lookupType(desc.Type)
	if ctor == nil {
		errors.Report(&errors.EngineError{
			Op:   "core.CreateWidget",
			Kind: errors.KindRegistry,
			Key:  desc.Key,
			Err:  fmt.Errorf("%w: %q", errors.ErrUnknownType, desc.Type),
		})
		return nil
	}
	w := ctor()
	if w == nil {
		return nil
	}
	base := w.Base()
	base.self = w
	base.typeName = desc.Type
	if desc.Key != "" {
		base.key = desc.Key
	} else {
		base.key = NextKey(desc.Type)
		base.autoKey = true
	}
	base.owner = owner
	owner.retain(base.key)
	if ro := w.RenderObject(); ro != nil {
		ro.Base().SetTarget(w)
	}
	w.CreateElement(desc)
	return w
}
