package errors

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestEngineErrorString(t *testing.T) {
	err := &EngineError{
		Op:   "core.CreateWidget",
		Kind: KindRegistry,
		Err:  fmt.Errorf("%w: %q", ErrUnknownType, "Bogus"),
	}
	want := `core.CreateWidget [registry]: unknown widget type: "Bogus"`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrUnknownType) {
		t.Error("expected EngineError to unwrap to ErrUnknownType")
	}
}

func TestEngineErrorWithKey(t *testing.T) {
	err := &EngineError{
		Op:   "core.reconcile",
		Kind: KindReconcile,
		Key:  "item",
		Err:  ErrDuplicateKey,
	}
	if got := err.Error(); !strings.Contains(got, "key=item") {
		t.Errorf("error string %q should contain key", got)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindRegistry, "registry"},
		{KindReconcile, "reconcile"},
		{KindLayout, "layout"},
		{KindPaint, "paint"},
		{KindDispatch, "dispatch"},
		{KindDecode, "decode"},
		{KindRuntime, "runtime"},
		{KindPanic, "panic"},
		{ErrorKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "boom", Timestamp: time.Now()}
	if got, want := err.Error(), "panic: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	err.Op = "events.Dispatch"
	if got, want := err.Error(), "panic in events.Dispatch: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestReportSetsTimestamp(t *testing.T) {
	h := &CollectingHandler{}
	SetHandler(h)
	defer SetHandler(nil)

	Report(&EngineError{Op: "test.op", Kind: KindLayout, Err: fmt.Errorf("bad")})
	Report(nil)

	errs := h.Errors()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if errs[0].Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
	if got := h.ErrorsOfKind(KindLayout); len(got) != 1 {
		t.Errorf("ErrorsOfKind(layout) = %d", len(got))
	}
}

func TestRecover(t *testing.T) {
	h := &CollectingHandler{}
	SetHandler(h)
	defer SetHandler(nil)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	panics := h.Panics()
	if len(panics) != 1 {
		t.Fatalf("got %d panics, want 1", len(panics))
	}
	if panics[0].Value != "intentional test panic" || panics[0].Op != "test.recover" {
		t.Errorf("panic = %+v", panics[0])
	}
	if panics[0].StackTrace == "" {
		t.Error("expected stack trace")
	}
}

func TestRecoverWithCallback(t *testing.T) {
	SetHandler(&CollectingHandler{})
	defer SetHandler(nil)

	var got any
	func() {
		defer RecoverWithCallback("test.callback", func(r any) { got = r })
		panic(42)
	}()
	if got != 42 {
		t.Errorf("callback got %v, want 42", got)
	}
}

func TestSetHandlerNil(t *testing.T) {
	SetHandler(nil)
	if _, ok := getHandler().(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should install LogHandler, got %T", getHandler())
	}
}
