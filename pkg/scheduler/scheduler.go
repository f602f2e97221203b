// Package scheduler coalesces frame requests into single frame callbacks.
//
// A Scheduler sits between the render pipeline and a Source. Any number of
// RequestFrame calls before the frame runs produce one callback. The frame
// itself always runs on whatever goroutine consumes the Source, so a
// runtime fed by one consumer never sees concurrent frames.
package scheduler

import (
	"sync"

	"github.com/go-drift/weave/pkg/errors"
	"github.com/go-drift/weave/pkg/logging"
	"go.uber.org/zap"
)

// Source delivers scheduled callbacks at frame time.
type Source interface {
	// Schedule arranges for fn to run once at the next frame opportunity.
	Schedule(fn func())
}

// Scheduler debounces frame requests for one frame callback.
type Scheduler struct {
	mu      sync.Mutex
	source  Source
	frame   func()
	pending bool
	running bool
	stopped bool
	gen     uint64
	frames  uint64
}

// New returns a scheduler that runs frame through source.
func New(source Source, frame func()) *Scheduler {
	return &Scheduler{source: source, frame: frame}
}

// RequestFrame schedules a frame unless one is already pending. It reports
// whether a new callback was handed to the source.
func (s *Scheduler) RequestFrame() bool {
	s.mu.Lock()
	if s.stopped || s.pending {
		s.mu.Unlock()
		return false
	}
	s.pending = true
	gen := s.gen
	s.mu.Unlock()

	s.source.Schedule(func() { s.run(gen) })
	return true
}

// Pending reports whether a frame is scheduled but has not run.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// FrameCount returns how many frames have run.
func (s *Scheduler) FrameCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// RunNow runs a frame synchronously, cancelling any pending callback. It
// returns false without running when called from inside a frame or after
// Stop.
func (s *Scheduler) RunNow() bool {
	s.mu.Lock()
	if s.stopped || s.running {
		s.mu.Unlock()
		if s.running {
			logging.Named("scheduler").Debug("ignoring re-entrant frame")
		}
		return false
	}
	s.pending = false
	s.gen++
	s.mu.Unlock()
	s.execute()
	return true
}

// Stop cancels the pending frame. Later requests are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.pending = false
	s.gen++
}

// Stopped reports whether Stop was called.
func (s *Scheduler) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *Scheduler) run(gen uint64) {
	s.mu.Lock()
	if s.stopped || !s.pending || gen != s.gen || s.running {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.gen++
	s.mu.Unlock()
	s.execute()
}

func (s *Scheduler) execute() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.frames++
		s.mu.Unlock()
		if r := recover(); r != nil {
			errors.ReportPanic(&errors.PanicError{
				Op:         "scheduler.frame",
				Value:      r,
				StackTrace: errors.CaptureStack(),
			})
			logging.Named("scheduler").Error("frame panicked", zap.Any("value", r))
		}
	}()
	s.frame()
}
