package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// maxStackFrames bounds CaptureStack output.
const maxStackFrames = 32

type handlerBox struct{ h ErrorHandler }

var current atomic.Pointer[handlerBox]

func init() {
	current.Store(&handlerBox{h: &LogHandler{}})
}

// SetHandler installs the process-wide error handler. Nil restores the
// LogHandler.
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	current.Store(&handlerBox{h: h})
}

func getHandler() ErrorHandler {
	return current.Load().h
}

// Report stamps err and hands it to the installed handler.
func Report(err *EngineError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	getHandler().HandleError(err)
}

// ReportPanic stamps err and hands it to the installed handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	getHandler().HandlePanic(err)
}

// Recover reports a panic in the deferring function under op:
//
//	defer errors.Recover("engine.frame")
func Recover(op string) {
	if r := recover(); r != nil {
		reportRecovered(op, r)
	}
}

// RecoverWithCallback is Recover followed by fn(value).
func RecoverWithCallback(op string, fn func(r any)) {
	if r := recover(); r != nil {
		reportRecovered(op, r)
		if fn != nil {
			fn(r)
		}
	}
}

func reportRecovered(op string, value any) {
	ReportPanic(&PanicError{Op: op, Value: value, StackTrace: stackFrom(4)})
}

// CaptureStack formats the stack of its caller's caller, one
// "function\n\tfile:line" pair per frame.
func CaptureStack() string {
	return stackFrom(3)
}

func stackFrom(skip int) string {
	pcs := make([]uintptr, maxStackFrames)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return ""
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for more := true; more; {
		var f runtime.Frame
		f, more = frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
	}
	return sb.String()
}
