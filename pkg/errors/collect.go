package errors

import "sync"

// CollectingHandler records every reported error and panic. Hosts use it to
// surface diagnostics in their own UI; tests use it to assert on reports.
type CollectingHandler struct {
	mu     sync.Mutex
	errs   []*EngineError
	panics []*PanicError
}

// HandleError records err.
func (c *CollectingHandler) HandleError(err *EngineError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

// HandlePanic records err.
func (c *CollectingHandler) HandlePanic(err *PanicError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panics = append(c.panics, err)
}

// Errors returns a copy of the recorded errors.
func (c *CollectingHandler) Errors() []*EngineError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*EngineError(nil), c.errs...)
}

// Panics returns a copy of the recorded panics.
func (c *CollectingHandler) Panics() []*PanicError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*PanicError(nil), c.panics...)
}

// ErrorsOfKind returns recorded errors with the given kind.
func (c *CollectingHandler) ErrorsOfKind(kind ErrorKind) []*EngineError {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*EngineError
	for _, err := range c.errs {
		if err.Kind == kind {
			out = append(out, err)
		}
	}
	return out
}
