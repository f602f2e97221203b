package errors

import (
	"github.com/go-drift/weave/pkg/logging"
	"go.uber.org/zap"
)

// LogHandler is an ErrorHandler that writes to the global zap logger.
type LogHandler struct {
	// Verbose adds stack traces to panic entries.
	Verbose bool
}

// HandleError logs an EngineError at warn level.
func (h *LogHandler) HandleError(err *EngineError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Stringer("kind", err.Kind),
		zap.Error(err.Err),
	}
	if err.Key != "" {
		fields = append(fields, zap.String("key", err.Key))
	}
	logging.Named("errors").Warn("engine error", fields...)
}

// HandlePanic logs a PanicError at error level.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Any("value", err.Value),
	}
	if err.Key != "" {
		fields = append(fields, zap.String("key", err.Key))
	}
	if err.Event != "" {
		fields = append(fields, zap.String("event", err.Event))
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	logging.Named("errors").Error("recovered panic", fields...)
}
