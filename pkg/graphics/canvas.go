package graphics

import "image"

// Canvas records or renders drawing commands.
type Canvas interface {
	// Save pushes the current transform, clip and opacity state.
	Save()

	// SaveLayerAlpha saves state and multiplies opacity for everything drawn
	// until the matching Restore.
	SaveLayerAlpha(bounds Rect, alpha float64)

	// Restore pops the most recent saved state.
	Restore()

	// Translate moves the origin by the given offset.
	Translate(dx, dy float64)

	// Scale scales the coordinate system by the given factors.
	Scale(sx, sy float64)

	// Rotate rotates the coordinate system by radians.
	Rotate(radians float64)

	// ClipRect restricts future drawing to the given rectangle.
	ClipRect(rect Rect)

	// Clear fills the entire canvas with the given color.
	Clear(color Color)

	// DrawRect draws a rectangle with the provided paint.
	DrawRect(rect Rect, paint Paint)

	// DrawRRect draws a rounded rectangle with the provided paint.
	DrawRRect(rrect RRect, paint Paint)

	// DrawCircle draws a circle with the provided paint.
	DrawCircle(center Offset, radius float64, paint Paint)

	// DrawLine draws a line segment with the provided paint.
	DrawLine(start, end Offset, paint Paint)

	// DrawPath draws a path with the provided paint.
	DrawPath(path *Path, paint Paint)

	// DrawText draws a single line of text with its top-left at position.
	DrawText(text string, position Offset, style TextStyle)

	// DrawImage draws an image scaled into dst.
	DrawImage(img image.Image, dst Rect)

	// Size returns the size of the canvas.
	Size() Size
}

// Surface is a concrete drawing target. A runtime renders each frame by
// calling BeginFrame, painting into the returned canvas, then EndFrame.
type Surface interface {
	TextMeasurer

	// Size returns the current surface size in logical units.
	Size() Size

	// BeginFrame starts a frame and returns the canvas to draw into.
	BeginFrame() Canvas

	// EndFrame presents the frame.
	EndFrame() error
}

// CursorSetter is implemented by surfaces that can display a pointer cursor.
type CursorSetter interface {
	SetCursor(cursor string)
}
