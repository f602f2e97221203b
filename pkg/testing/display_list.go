package testing

import "github.com/go-drift/weave/pkg/graphics"

// recordingSurface keeps each frame as a display list instead of pixels.
type recordingSurface struct {
	graphics.FixedMeasurer
	size   graphics.Size
	rec    graphics.PictureRecorder
	last   *graphics.DisplayList
	frames int
	cursor string
}

func (s *recordingSurface) Size() graphics.Size { return s.size }

func (s *recordingSurface) BeginFrame() graphics.Canvas {
	return s.rec.BeginRecording(s.size)
}

func (s *recordingSurface) EndFrame() error {
	s.last = s.rec.EndRecording()
	s.frames++
	return nil
}

func (s *recordingSurface) SetCursor(cursor string) {
	s.cursor = cursor
}
