package events

import (
	"testing"

	"github.com/go-drift/weave/pkg/errors"
	"github.com/google/go-cmp/cmp"
)

type node string

func (n node) Key() string { return string(n) }

type methodNode struct {
	key   string
	calls *[]string
}

func (m methodNode) Key() string { return m.key }

func (m methodNode) EventMethod(typ string, capture bool) Handler {
	if typ != Click || capture {
		return nil
	}
	return Listen(func(*Event) { *m.calls = append(*m.calls, "method") })
}

// recordAll registers capture and bubble click handlers on every node that
// append "<phase>:<key>" to calls.
func recordAll(reg *Registry, h Handle, calls *[]string, keys ...string) {
	for _, k := range keys {
		reg.Register(h, k, Click, Listen(func(e *Event) {
			*calls = append(*calls, "capture:"+e.CurrentTarget.Key())
		}), true)
		reg.Register(h, k, Click, Listen(func(e *Event) {
			*calls = append(*calls, "bubble:"+e.CurrentTarget.Key())
		}), false)
	}
}

func TestDispatchPhaseOrder(t *testing.T) {
	reg := NewRegistry()
	h := NewHandle()
	var calls []string
	recordAll(reg, h, &calls, "root", "mid", "leaf")

	path := []Node{node("root"), node("mid"), node("leaf")}
	if !NewDispatcher(reg, h).Dispatch(path, &Event{Type: Click}) {
		t.Fatal("dispatch should complete")
	}

	want := []string{
		"capture:root", "capture:mid",
		"capture:leaf", "bubble:leaf",
		"bubble:mid", "bubble:root",
	}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestStopPropagationInBubble(t *testing.T) {
	reg := NewRegistry()
	h := NewHandle()
	var calls []string
	recordAll(reg, h, &calls, "root", "mid", "leaf")
	reg.Register(h, "mid", Click, Listen(func(e *Event) {
		calls = append(calls, "stop:mid")
		e.StopPropagation()
	}), false)

	NewDispatcher(reg, h).Dispatch([]Node{node("root"), node("mid"), node("leaf")}, &Event{Type: Click})

	want := []string{
		"capture:root", "capture:mid",
		"capture:leaf", "bubble:leaf",
		"bubble:mid", "stop:mid",
	}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestReturnFalseAbortsDispatch(t *testing.T) {
	reg := NewRegistry()
	h := NewHandle()
	var calls []string
	reg.Register(h, "root", Click, func(e *Event) bool {
		calls = append(calls, "capture:root")
		return false
	}, true)
	reg.Register(h, "root", Click, Listen(func(*Event) { calls = append(calls, "capture:root:2") }), true)
	recordAll(reg, h, &calls, "leaf")

	if NewDispatcher(reg, h).Dispatch([]Node{node("root"), node("leaf")}, &Event{Type: Click}) {
		t.Error("Dispatch should report the abort")
	}
	if diff := cmp.Diff([]string{"capture:root"}, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestMethodHandlerRunsFirst(t *testing.T) {
	reg := NewRegistry()
	h := NewHandle()
	var calls []string
	target := methodNode{key: "btn", calls: &calls}
	reg.Register(h, "btn", Click, Listen(func(*Event) { calls = append(calls, "prop") }), false)

	NewDispatcher(reg, h).Dispatch([]Node{target}, &Event{Type: Click})

	if diff := cmp.Diff([]string{"method", "prop"}, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestPointerSynonymFallback(t *testing.T) {
	reg := NewRegistry()
	h := NewHandle()
	var got []string
	reg.Register(h, "a", PointerDown, Listen(func(e *Event) { got = append(got, "pointer:"+e.Type) }), false)
	reg.Register(h, "b", PointerDown, Listen(func(e *Event) { got = append(got, "pointer:b") }), false)
	reg.Register(h, "b", TouchStart, Listen(func(e *Event) { got = append(got, "touch:b") }), false)

	d := NewDispatcher(reg, h)
	d.Dispatch([]Node{node("a")}, &Event{Type: MouseDown})
	d.Dispatch([]Node{node("b")}, &Event{Type: TouchStart})

	want := []string{"pointer:mousedown", "touch:b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestPanickingHandlerDoesNotStopDispatch(t *testing.T) {
	collector := &errors.CollectingHandler{}
	errors.SetHandler(collector)
	defer errors.SetHandler(nil)

	reg := NewRegistry()
	h := NewHandle()
	var calls []string
	reg.Register(h, "leaf", Click, func(*Event) bool { panic("boom") }, false)
	reg.Register(h, "leaf", Click, Listen(func(*Event) { calls = append(calls, "leaf") }), false)
	reg.Register(h, "root", Click, Listen(func(*Event) { calls = append(calls, "root") }), false)

	ok := NewDispatcher(reg, h).Dispatch([]Node{node("root"), node("leaf")}, &Event{Type: Click})
	if !ok {
		t.Error("a panic should not abort dispatch")
	}
	if diff := cmp.Diff([]string{"leaf", "root"}, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	panics := collector.Panics()
	if len(panics) != 1 || panics[0].Key != "leaf" || panics[0].Event != Click {
		t.Errorf("panics = %+v", panics)
	}
}

func TestRegistryIsolation(t *testing.T) {
	reg := NewRegistry()
	a, b := NewHandle(), NewHandle()
	reg.Register(a, "btn", Click, Listen(func(*Event) {}), false)

	if len(reg.Handlers(b, "btn", Click, false)) != 0 {
		t.Error("runtime b must not see runtime a's handlers")
	}

	reg.Register(Handle{}, "shared", Click, Listen(func(*Event) {}), false)
	if len(reg.Handlers(a, "shared", Click, false)) != 1 {
		t.Error("lookup should fall back to the default bucket")
	}

	reg.ClearRuntime(a)
	if reg.Len(a) != 0 || reg.Has(a, "btn", Click) {
		t.Error("ClearRuntime should drop the bucket")
	}
	if reg.Len(Handle{}) != 1 {
		t.Error("ClearRuntime must leave the default bucket alone")
	}

	reg.ClearAll()
	if reg.Has(a, "shared", Click) {
		t.Error("ClearAll should empty the default bucket")
	}
}

func TestRegistryRemoveAndClearKey(t *testing.T) {
	reg := NewRegistry()
	h := NewHandle()
	remove := reg.Register(h, "k", Click, Listen(func(*Event) {}), false)
	reg.Register(h, "k", PointerMove, Listen(func(*Event) {}), true)
	reg.Register(h, "other", Click, Listen(func(*Event) {}), false)

	remove()
	remove()
	if reg.Has(h, "k", Click) {
		t.Error("remove should drop the registration")
	}
	reg.ClearKey(h, "k")
	if reg.Len(h) != 1 {
		t.Errorf("Len = %d, want 1", reg.Len(h))
	}
}

func TestTargetPhaseRunsBothGroupsAfterStop(t *testing.T) {
	reg := NewRegistry()
	h := NewHandle()
	var calls []string
	reg.Register(h, "leaf", Click, Listen(func(e *Event) {
		calls = append(calls, "capture")
		e.StopPropagation()
	}), true)
	reg.Register(h, "leaf", Click, Listen(func(*Event) { calls = append(calls, "bubble") }), false)
	reg.Register(h, "root", Click, Listen(func(*Event) { calls = append(calls, "root") }), false)

	e := &Event{Type: Click}
	NewDispatcher(reg, h).Dispatch([]Node{node("root"), node("leaf")}, e)

	if diff := cmp.Diff([]string{"capture", "bubble"}, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if !e.PropagationStopped() || e.Phase != PhaseTarget {
		t.Errorf("stopped=%v phase=%v", e.PropagationStopped(), e.Phase)
	}
}

func TestModifiersString(t *testing.T) {
	if got := (ModCtrl | ModShift).String(); got != "ctrl+shift" {
		t.Errorf("String() = %q", got)
	}
}
