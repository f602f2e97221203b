package scheduler

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// ManualSource queues callbacks until the host pumps them. Tests and
// single-threaded hosts use it to decide exactly when frames happen.
type ManualSource struct {
	mu    sync.Mutex
	queue []func()
}

// Schedule implements Source.
func (m *ManualSource) Schedule(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
}

// Pending returns the number of queued callbacks.
func (m *ManualSource) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Pump runs the callbacks queued so far and returns how many ran. Callbacks
// scheduled while pumping wait for the next Pump.
func (m *ManualSource) Pump() int {
	m.mu.Lock()
	queue := m.queue
	m.queue = nil
	m.mu.Unlock()
	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// TickerSource paces callbacks to a maximum frame rate. Paced callbacks are
// delivered on Frames for the host loop to run, which keeps frame work on
// the host's goroutine.
type TickerSource struct {
	limiter  *rate.Limiter
	requests chan func()
	frames   chan func()
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewTickerSource starts a pacing goroutine limited to fps frames per
// second. It stops when ctx is cancelled or Close is called.
func NewTickerSource(ctx context.Context, fps float64) *TickerSource {
	if fps <= 0 {
		fps = 60
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &TickerSource{
		limiter:  rate.NewLimiter(rate.Limit(fps), 1),
		requests: make(chan func(), 16),
		frames:   make(chan func()),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go t.loop(ctx)
	return t
}

// Schedule implements Source. Requests after Close are dropped.
func (t *TickerSource) Schedule(fn func()) {
	select {
	case <-t.done:
	case t.requests <- fn:
	}
}

// Frames delivers callbacks once their frame slot arrives.
func (t *TickerSource) Frames() <-chan func() {
	return t.frames
}

// Done is closed when the pacing goroutine has exited.
func (t *TickerSource) Done() <-chan struct{} {
	return t.done
}

// Close stops the pacing goroutine and waits for it to exit.
func (t *TickerSource) Close() {
	t.cancel()
	<-t.done
}

func (t *TickerSource) loop(ctx context.Context) {
	defer close(t.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-t.requests:
			if err := t.limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case t.frames <- fn:
			case <-ctx.Done():
				return
			}
		}
	}
}
