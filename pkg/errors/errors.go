// Package errors provides structured error reporting for the engine.
//
// Most engine failures are non-fatal. An unknown widget type yields no
// widget and a panicking event handler does not stop dispatch. Such
// conditions are reported here instead of being returned, and the global
// ErrorHandler decides what to do with them.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindRegistry indicates a widget type registry problem.
	KindRegistry
	// KindReconcile indicates a problem while reconciling children.
	KindReconcile
	// KindLayout indicates invalid constraints or a layout failure.
	KindLayout
	// KindPaint indicates a paint or surface failure.
	KindPaint
	// KindDispatch indicates an event dispatch failure.
	KindDispatch
	// KindDecode indicates a tree description that could not be decoded.
	KindDecode
	// KindRuntime indicates misuse of a runtime, such as use after destroy.
	KindRuntime
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindRegistry:
		return "registry"
	case KindReconcile:
		return "reconcile"
	case KindLayout:
		return "layout"
	case KindPaint:
		return "paint"
	case KindDispatch:
		return "dispatch"
	case KindDecode:
		return "decode"
	case KindRuntime:
		return "runtime"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Sentinel errors wrapped by EngineError values.
var (
	ErrUnknownType        = stderrors.New("unknown widget type")
	ErrDuplicateKey       = stderrors.New("duplicate sibling key")
	ErrDestroyed          = stderrors.New("runtime destroyed")
	ErrUnsupportedVersion = stderrors.New("unsupported document version")
)

// EngineError represents a structured error.
type EngineError struct {
	// Op is the operation that failed (e.g., "core.CreateWidget").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Key is the widget key involved, if any.
	Key string
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *EngineError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s [%s] key=%s: %v", e.Op, e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "events.Dispatch").
	Op string
	// Key is the widget key whose code panicked, if known.
	Key string
	// Event is the event type being dispatched, if any.
	Event string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *EngineError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
