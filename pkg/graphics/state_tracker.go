package graphics

// StateTracker maintains the transform, clip and opacity stack for canvas
// implementations that draw directly into device space.
type StateTracker struct {
	Transform Matrix
	// Clip is the active device-space clip, nil when unclipped.
	Clip  *Rect
	Alpha float64
	stack []trackerState
}

type trackerState struct {
	transform Matrix
	clip      *Rect
	alpha     float64
}

// NewStateTracker returns a tracker at identity with full opacity.
func NewStateTracker() StateTracker {
	return StateTracker{Transform: Identity(), Alpha: 1}
}

// Reset clears the stack and returns to the initial state.
func (t *StateTracker) Reset() {
	*t = NewStateTracker()
}

// Save pushes the current state.
func (t *StateTracker) Save() {
	t.stack = append(t.stack, trackerState{transform: t.Transform, clip: t.Clip, alpha: t.Alpha})
}

// SaveLayerAlpha pushes the current state and multiplies opacity.
func (t *StateTracker) SaveLayerAlpha(alpha float64) {
	t.Save()
	t.Alpha *= clamp01(alpha)
}

// Restore pops the most recent state. Unbalanced calls are ignored.
func (t *StateTracker) Restore() {
	if len(t.stack) == 0 {
		return
	}
	s := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	t.Transform, t.Clip, t.Alpha = s.transform, s.clip, s.alpha
}

// Translate applies a local translation.
func (t *StateTracker) Translate(dx, dy float64) {
	t.Transform = t.Transform.Translate(dx, dy)
}

// Scale applies a local scale.
func (t *StateTracker) Scale(sx, sy float64) {
	t.Transform = t.Transform.Scale(sx, sy)
}

// Rotate applies a local rotation.
func (t *StateTracker) Rotate(radians float64) {
	t.Transform = t.Transform.Rotate(radians)
}

// ClipRect intersects the clip with the device-space bounds of rect.
func (t *StateTracker) ClipRect(rect Rect) {
	device := t.Transform.TransformRect(rect)
	if t.Clip != nil {
		device = t.Clip.Intersect(device)
	}
	t.Clip = &device
}

// Depth returns the number of saved states.
func (t *StateTracker) Depth() int {
	return len(t.stack)
}
