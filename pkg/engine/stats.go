package engine

// Stats summarizes a runtime's state and work.
type Stats struct {
	Frames           uint64      `json:"frames"`
	Layouts          int         `json:"layouts"`
	TransformVersion uint64      `json:"transformVersion"`
	Widgets          int         `json:"widgets"`
	Overlays         int         `json:"overlays"`
	Handlers         int         `json:"handlers"`
	PendingFrame     bool        `json:"pendingFrame"`
	SlowFrames       int         `json:"slowFrames"`
	LastFrame        FrameSample `json:"lastFrame"`
	Destroyed        bool        `json:"destroyed"`
}

// Stats returns current counters.
func (r *Runtime) Stats() Stats {
	p := r.owner.Pipeline
	s := Stats{
		Frames:           r.frames,
		Layouts:          p.LayoutCount(),
		TransformVersion: p.TransformVersion(),
		Handlers:         r.owner.Registry.Len(r.handle),
		PendingFrame:     r.sched.Pending(),
		SlowFrames:       r.trace.timeline().Slow,
		Destroyed:        r.destroyed,
	}
	if !r.destroyed {
		s.Widgets = r.widgetCount()
		s.Overlays = len(r.overlays.entries)
	}
	s.LastFrame, _ = r.trace.last()
	return s
}

// FrameTimeline returns the recent frame samples.
func (r *Runtime) FrameTimeline() FrameTimeline {
	return r.trace.timeline()
}
