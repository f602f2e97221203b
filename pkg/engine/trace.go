package engine

import (
	"sync"
	"time"
)

const (
	defaultTraceSamples = 240
	frameBudget         = time.Second / 60
)

// FrameWork counts what one frame had to do.
type FrameWork struct {
	DirtyLayout int `json:"dirtyLayout"`
	DirtyPaint  int `json:"dirtyPaint"`
	Layouts     int `json:"layouts"`
	Recorded    int `json:"recorded"`
	Widgets     int `json:"widgets"`
}

// FrameSample times one frame. Durations are in milliseconds.
type FrameSample struct {
	Start     int64     `json:"start"`
	TotalMs   float64   `json:"totalMs"`
	LayoutMs  float64   `json:"layoutMs"`
	RecordMs  float64   `json:"recordMs"`
	PresentMs float64   `json:"presentMs"`
	Work      FrameWork `json:"work"`
}

// FrameTimeline lists recent samples oldest first. Slow counts every frame
// over budget since the runtime started, not only the listed ones.
type FrameTimeline struct {
	Samples  []FrameSample `json:"samples"`
	Slow     int           `json:"slow"`
	BudgetMs float64       `json:"budgetMs"`
}

// frameTrace keeps the newest samples in a fixed ring. The debug server
// reads it from its own goroutines.
type frameTrace struct {
	mu   sync.Mutex
	ring []FrameSample
	next int
	full bool
	slow int
}

func newFrameTrace(size int) *frameTrace {
	if size <= 0 {
		size = defaultTraceSamples
	}
	return &frameTrace{ring: make([]FrameSample, size)}
}

func (t *frameTrace) add(s FrameSample, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ring[t.next] = s
	t.next++
	if t.next == len(t.ring) {
		t.next, t.full = 0, true
	}
	if elapsed > frameBudget {
		t.slow++
	}
}

func (t *frameTrace) last() (FrameSample, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.next == 0 && !t.full {
		return FrameSample{}, false
	}
	i := t.next - 1
	if i < 0 {
		i = len(t.ring) - 1
	}
	return t.ring[i], true
}

func (t *frameTrace) timeline() FrameTimeline {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := FrameTimeline{Slow: t.slow, BudgetMs: millis(frameBudget)}
	if t.full {
		out.Samples = append(out.Samples, t.ring[t.next:]...)
	}
	out.Samples = append(out.Samples, t.ring[:t.next]...)
	return out
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
