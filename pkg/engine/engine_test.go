package engine

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/errors"
	"github.com/go-drift/weave/pkg/events"
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/go-drift/weave/pkg/layout"
	"github.com/go-drift/weave/pkg/scheduler"
	_ "github.com/go-drift/weave/pkg/widgets"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSurface records every frame into a display list.
type fakeSurface struct {
	graphics.FixedMeasurer
	size   graphics.Size
	begins int
	ends   int
	rec    graphics.PictureRecorder
	last   *graphics.DisplayList
	cursor string
}

func newFakeSurface(w, h float64) *fakeSurface {
	return &fakeSurface{
		FixedMeasurer: graphics.FixedMeasurer{Advance: 8, LineHeight: 16},
		size:          graphics.Size{Width: w, Height: h},
	}
}

func (s *fakeSurface) Size() graphics.Size { return s.size }

func (s *fakeSurface) BeginFrame() graphics.Canvas {
	s.begins++
	return s.rec.BeginRecording(s.size)
}

func (s *fakeSurface) EndFrame() error {
	s.ends++
	s.last = s.rec.EndRecording()
	return nil
}

func (s *fakeSurface) SetCursor(c string) { s.cursor = c }

// tile is a leaf that counts its paints and takes its size from props.
type tile struct {
	core.WidgetBase
	render *tileRender
}

type tileRender struct {
	layout.RenderBoxBase
	width, height float64
	paints        int
}

func (r *tileRender) PerformLayout() {
	r.SetSize(r.Constraints().Constrain(graphics.Size{Width: r.width, Height: r.height}))
}

func (r *tileRender) Paint(ctx *layout.PaintContext) {
	r.paints++
	ctx.Canvas.DrawRect(graphics.RectFromSize(r.Size()), graphics.FillPaint(graphics.ColorBlack))
}

func (p *tile) RenderObject() layout.RenderObject { return p.render }

func (p *tile) Configure(props core.Props) {
	w, h := props.Float("width", 10), props.Float("height", 10)
	if w != p.render.width || h != p.render.height {
		p.render.width, p.render.height = w, h
		p.render.MarkNeedsLayout()
	}
}

func init() {
	core.RegisterType("Tile", func() core.Widget {
		p := &tile{render: &tileRender{}}
		p.render.SetSelf(p.render)
		return p
	})
}

type props = core.Props

func n(typ string, p props, children ...core.Description) core.Description {
	return core.Node(typ, p, children...)
}

func keyed(key, typ string, p props, children ...core.Description) core.Description {
	return core.Node(typ, p, children...).Keyed(key)
}

func newRuntime(t *testing.T, w, h float64) (*Runtime, *fakeSurface) {
	t.Helper()
	surface := newFakeSurface(w, h)
	rt := Create(surface, Options{Registry: events.NewRegistry()})
	t.Cleanup(rt.Destroy)
	return rt, surface
}

func find(t *testing.T, rt *Runtime, key string) core.Widget {
	t.Helper()
	var found core.Widget
	rt.walk(func(w core.Widget) bool {
		if w.Key() == key {
			found = w
		}
		return found == nil
	})
	require.NotNil(t, found, "no widget with key %q", key)
	return found
}

func paints(t *testing.T, rt *Runtime, key string) int {
	t.Helper()
	return find(t, rt, key).RenderObject().(*tileRender).paints
}

// recorder collects handler calls as "label" strings.
type recorder struct{ calls []string }

func (r *recorder) on(label string) func(*events.Event) {
	return func(*events.Event) { r.calls = append(r.calls, label) }
}

func TestRenderPresentsOneFramePerFlush(t *testing.T) {
	rt, surface := newRuntime(t, 200, 100)
	desc := n("Row", nil, n("Tile", props{"width": 50}), n("Tile", props{"width": 50}))

	require.NoError(t, rt.Render(desc))
	assert.True(t, rt.Scheduler().Pending())
	assert.Equal(t, 1, rt.Pump())
	assert.Equal(t, 1, surface.begins)
	assert.Equal(t, 1, surface.ends)

	require.NoError(t, rt.Render(desc))
	assert.False(t, rt.Scheduler().Pending(), "an unchanged description must not schedule a frame")
	assert.Equal(t, uint64(1), rt.Stats().Frames)
}

func TestBoundaryResizePresentsOnce(t *testing.T) {
	rt, surface := newRuntime(t, 200, 100)
	desc := func(width float64) core.Description {
		return keyed("col", "Column", nil,
			keyed("rb", "RepaintBoundary", nil, keyed("p", "Tile", props{"width": width})))
	}
	require.NoError(t, rt.Render(desc(20)))
	rt.Pump()
	ends := surface.ends

	require.NoError(t, rt.Render(desc(40)))
	assert.Equal(t, 1, rt.Pump())
	assert.Equal(t, ends+1, surface.ends)
	assert.False(t, rt.Scheduler().Pending(), "layout inside the frame must not schedule another one")
	assert.Equal(t, 0, rt.Pump())
	assert.Equal(t, ends+1, surface.ends)
	assert.Equal(t, 40.0, find(t, rt, "rb").RenderObject().Size().Width)
}

func TestRenderReconcilesRootInPlace(t *testing.T) {
	rt, _ := newRuntime(t, 200, 200)
	require.NoError(t, rt.Render(keyed("root", "Stack", nil, keyed("p", "Tile", props{"width": 10}))))
	rt.Pump()
	root, p := rt.RootWidget(), find(t, rt, "p")

	require.NoError(t, rt.Render(keyed("root", "Stack", nil, keyed("p", "Tile", props{"width": 30}))))
	rt.Pump()
	assert.Same(t, root, rt.RootWidget())
	assert.Same(t, p, find(t, rt, "p"))
	assert.Equal(t, 30.0, p.RenderObject().Size().Width)

	require.NoError(t, rt.Render(keyed("other", "Stack", nil)))
	rt.Pump()
	assert.NotSame(t, root, rt.RootWidget())
	assert.True(t, root.Base().IsDisposed())
	assert.True(t, p.Base().IsDisposed())
}

func TestRenderUnknownRootKeepsTree(t *testing.T) {
	var collected errors.CollectingHandler
	errors.SetHandler(&collected)
	defer errors.SetHandler(nil)

	rt, _ := newRuntime(t, 100, 100)
	require.NoError(t, rt.Render(n("Tile", nil)))
	root := rt.RootWidget()

	err := rt.Render(n("NoSuchWidget", nil))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnknownType))
	assert.Same(t, root, rt.RootWidget())
	assert.NotEmpty(t, collected.ErrorsOfKind(errors.KindRegistry))
}

func TestRenderFromJSON(t *testing.T) {
	rt, _ := newRuntime(t, 300, 100)
	doc := `{"version": "1.2.0", "root": {"type": "Row", "children": [
		{"type": "Tile", "key": "a", "props": {"width": 40}},
		{"type": "Text", "key": "label", "props": {"text": "hello"}}
	]}}`
	require.NoError(t, rt.RenderFromJSON([]byte(doc)))
	rt.Pump()

	assert.Equal(t, graphics.RectFromLTWH(40, 0, 40, 16), find(t, rt, "label").Base().Bounds())

	root := rt.RootWidget()
	assert.Error(t, rt.RenderFromJSON([]byte(`{"type": `)))
	assert.ErrorIs(t, rt.RenderFromJSON([]byte(`{"version": "2.0.0", "root": {"type": "Row"}}`)), errors.ErrUnsupportedVersion)
	assert.Same(t, root, rt.RootWidget())
}

func TestRenderDocumentYAML(t *testing.T) {
	rt, _ := newRuntime(t, 100, 100)
	doc := "type: Column\nchildren:\n  - type: Tile\n    key: top\n    props: {height: 25}\n  - type: Tile\n    key: bottom\n"
	require.NoError(t, rt.RenderDocument([]byte(doc), core.FormatYAML))
	rt.Pump()
	assert.Equal(t, 25.0, find(t, rt, "bottom").Base().Bounds().Top)
}

func TestDispatchPhaseOrderThroughRuntime(t *testing.T) {
	rt, _ := newRuntime(t, 200, 200)
	var rec recorder
	build := func(midBubble func(*events.Event)) core.Description {
		return keyed("root", "Stack", props{
			"onPointerDownCapture": rec.on("capture:root"),
			"onPointerDown":        rec.on("bubble:root"),
		}, keyed("mid", "Container", props{
			"width": 100, "height": 100,
			"onPointerDownCapture": rec.on("capture:mid"),
			"onPointerDown":        midBubble,
		}, keyed("leaf", "Tile", props{
			"onPointerDownCapture": rec.on("target-capture:leaf"),
			"onPointerDown":        rec.on("target:leaf"),
		})))
	}

	require.NoError(t, rt.Render(build(rec.on("bubble:mid"))))
	rt.Pump()
	assert.True(t, rt.HandleInput(events.Input{Type: events.PointerDown, X: 10, Y: 10}))
	want := []string{"capture:root", "capture:mid", "target-capture:leaf", "target:leaf", "bubble:mid", "bubble:root"}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Errorf("phase order mismatch (-want +got):\n%s", diff)
	}

	rec.calls = nil
	require.NoError(t, rt.Render(build(func(e *events.Event) {
		rec.calls = append(rec.calls, "bubble:mid")
		e.StopPropagation()
	})))
	rt.HandleInput(events.Input{Type: events.PointerDown, X: 10, Y: 10})
	want = []string{"capture:root", "capture:mid", "target-capture:leaf", "target:leaf", "bubble:mid"}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Errorf("stopped dispatch mismatch (-want +got):\n%s", diff)
	}
}

func TestMouseEventFallsBackToPointerHandler(t *testing.T) {
	rt, _ := newRuntime(t, 50, 50)
	var rec recorder
	require.NoError(t, rt.Render(keyed("p", "Tile", props{"onPointerDown": rec.on("pointerdown")})))
	rt.Pump()

	rt.HandleInput(events.Input{Type: events.MouseDown, X: 5, Y: 5})
	rt.HandleInput(events.Input{Type: events.TouchStart, X: 5, Y: 5})
	assert.Equal(t, []string{"pointerdown", "pointerdown"}, rec.calls)
}

func TestHoverSynthesisOrder(t *testing.T) {
	rt, _ := newRuntime(t, 100, 50)
	var rec recorder
	tileFor := func(key string) core.Description {
		return keyed(key, "Tile", props{
			"width": 50, "height": 50,
			"onPointerEnter": rec.on("enter:" + key),
			"onPointerLeave": rec.on("leave:" + key),
			"onPointerMove":  rec.on("move:" + key),
		})
	}
	require.NoError(t, rt.Render(n("Row", nil, tileFor("a"), tileFor("b"))))
	rt.Pump()

	rt.HandleInput(events.Input{Type: events.PointerMove, X: 10, Y: 10})
	assert.Equal(t, []string{"enter:a", "move:a"}, rec.calls)

	rec.calls = nil
	rt.HandleInput(events.Input{Type: events.PointerMove, X: 20, Y: 10})
	assert.Equal(t, []string{"move:a"}, rec.calls, "moving within a widget synthesizes nothing")

	rec.calls = nil
	rt.HandleInput(events.Input{Type: events.PointerMove, X: 60, Y: 10})
	assert.Equal(t, []string{"leave:a", "enter:b", "move:b"}, rec.calls)

	rec.calls = nil
	rt.HandleInput(events.Input{Type: events.PointerLeave})
	assert.Equal(t, []string{"leave:b"}, rec.calls)
	assert.Nil(t, rt.Hovered())
}

func TestPointerNoneParentPassesThrough(t *testing.T) {
	rt, _ := newRuntime(t, 200, 200)
	require.NoError(t, rt.Render(keyed("parent", "Container", props{
		"pointerEvent": "none",
		"alignment":    "topLeft",
	}, keyed("child", "Tile", props{"width": 100, "height": 100}))))
	rt.Pump()

	hit := rt.HitTest(50, 50)
	require.NotNil(t, hit)
	assert.Equal(t, "child", hit.Key())
	assert.Nil(t, rt.HitTest(150, 150))
	assert.Nil(t, rt.HitTest(-10, 500))
	assert.False(t, rt.HandleInput(events.Input{Type: events.PointerDown, X: 150, Y: 150}))
}

func TestHitTestAllListsStackTopmostFirst(t *testing.T) {
	rt, _ := newRuntime(t, 200, 200)
	require.NoError(t, rt.Render(keyed("main", "Container", props{"alignment": "topLeft"},
		keyed("inner", "Tile", props{"width": 100, "height": 100}))))
	rt.Overlays().Insert(keyed("pop", "Tile", props{"width": 40, "height": 40}), graphics.Offset{X: 10, Y: 10})
	rt.Pump()

	keysAt := func(x, y float64) []string {
		var keys []string
		for _, w := range rt.HitTestAll(x, y) {
			keys = append(keys, w.Key())
		}
		return keys
	}
	assert.Equal(t, []string{"pop", "inner", "main"}, keysAt(20, 20))
	assert.Equal(t, []string{"inner", "main"}, keysAt(80, 80))
	assert.Equal(t, []string{"main"}, keysAt(150, 150))
	assert.Equal(t, rt.HitTest(20, 20), rt.HitTestAll(20, 20)[0])
	assert.Nil(t, rt.HitTestAll(-5, 500))
}

func TestRepaintBoundarySiblingsAreNotRepainted(t *testing.T) {
	rt, surface := newRuntime(t, 200, 100)
	require.NoError(t, rt.Render(n("Row", nil,
		n("RepaintBoundary", nil, keyed("a", "Tile", props{"width": 50})),
		n("RepaintBoundary", nil, keyed("b", "Tile", props{"width": 50})),
	)))
	rt.Pump()
	require.Equal(t, 1, paints(t, rt, "a"))
	require.Equal(t, 1, paints(t, rt, "b"))

	rt.Tick(find(t, rt, "a"))
	assert.Equal(t, 2, paints(t, rt, "a"))
	assert.Equal(t, 1, paints(t, rt, "b"), "a clean sibling boundary must not repaint")
	assert.Equal(t, 2, surface.ends)
	assert.Equal(t, 1, rt.Stats().LastFrame.Work.Recorded, "only the dirty boundary is re-recorded")
}

func TestMarkNeedsLayoutCoalesces(t *testing.T) {
	rt, surface := newRuntime(t, 100, 100)
	require.NoError(t, rt.Render(n("Column", nil, keyed("p", "Tile", nil))))
	rt.Pump()

	p := find(t, rt, "p")
	p.Base().MarkNeedsLayout()
	p.Base().MarkNeedsLayout()
	p.Base().MarkNeedsLayout()
	assert.Equal(t, 1, rt.Owner().Pipeline.DirtyLayoutCount())
	assert.Equal(t, 1, rt.Pump())
	assert.Equal(t, 2, surface.ends)
}

func TestTickWithoutRootsFlushesDirtyState(t *testing.T) {
	rt, surface := newRuntime(t, 100, 100)
	require.NoError(t, rt.Render(n("Tile", nil)))
	rt.Tick()
	assert.Equal(t, 1, surface.ends)
	assert.False(t, rt.Scheduler().Pending())
	rt.Pump()
	assert.Equal(t, 1, surface.ends, "Tick supersedes the scheduled frame")
}

func TestRebuildRelayoutsEverything(t *testing.T) {
	rt, surface := newRuntime(t, 100, 100)
	require.NoError(t, rt.Render(n("Column", nil, n("Tile", nil), n("Tile", nil))))
	rt.Pump()
	before := rt.Stats().Layouts

	rt.Rebuild()
	assert.Equal(t, 2, surface.ends)
	// view, column and both tiles
	assert.Equal(t, before+4, rt.Stats().Layouts)
}

func TestResizeRelayoutsAgainstSurface(t *testing.T) {
	rt, surface := newRuntime(t, 100, 100)
	require.NoError(t, rt.Render(n("Tile", nil)))
	rt.Pump()
	assert.Equal(t, graphics.Size{Width: 100, Height: 100}, rt.RootWidget().RenderObject().Size())

	surface.size = graphics.Size{Width: 300, Height: 40}
	rt.Resize()
	rt.Pump()
	assert.Equal(t, graphics.Size{Width: 300, Height: 40}, rt.RootWidget().RenderObject().Size())
}

func TestOverlaysPaintAboveAndHitFirst(t *testing.T) {
	rt, _ := newRuntime(t, 200, 200)
	require.NoError(t, rt.Render(keyed("main", "Tile", nil)))
	entry := rt.Overlays().Insert(keyed("pop", "Tile", props{"width": 40, "height": 40}), graphics.Offset{X: 10, Y: 10})
	require.NotNil(t, entry)
	rt.Pump()

	assert.Equal(t, "pop", rt.HitTest(20, 20).Key())
	assert.Equal(t, "main", rt.HitTest(100, 100).Key())
	assert.Equal(t, graphics.RectFromLTWH(10, 10, 40, 40), entry.Widget().Base().Bounds())
	assert.Equal(t, 1, paints(t, rt, "pop"))

	require.NoError(t, entry.Update(keyed("pop", "Tile", props{"width": 80, "height": 40})))
	entry.SetOffset(graphics.Offset{X: 0, Y: 100})
	rt.Pump()
	assert.Equal(t, graphics.RectFromLTWH(0, 100, 80, 40), entry.Widget().Base().Bounds())

	w := entry.Widget()
	entry.Remove()
	entry.Remove()
	rt.Pump()
	assert.True(t, w.Base().IsDisposed())
	assert.Zero(t, rt.Overlays().Len())
	assert.Equal(t, "main", rt.HitTest(20, 120).Key())
	assert.Nil(t, rt.Overlays().Insert(n("NoSuchWidget", nil), graphics.Offset{}))
}

func TestQueryRegion(t *testing.T) {
	rt, _ := newRuntime(t, 200, 50)
	require.NoError(t, rt.Render(keyed("row", "Row", nil,
		keyed("a", "Tile", props{"width": 50, "height": 50}),
		keyed("b", "Tile", props{"width": 50, "height": 50}),
	)))
	rt.Pump()

	keys := func(ws []core.Widget) []string {
		out := make([]string, len(ws))
		for i, w := range ws {
			out[i] = w.Key()
		}
		return out
	}
	assert.Equal(t, []string{"row", "b"}, keys(rt.QueryRegion(graphics.RectFromLTWH(60, 10, 10, 10))))
	assert.Equal(t, []string{"row", "a", "b"}, keys(rt.QueryRegion(graphics.RectFromLTWH(0, 0, 200, 50))))

	require.NoError(t, rt.Render(keyed("row", "Row", nil,
		keyed("a", "Tile", props{"width": 100, "height": 50}),
		keyed("b", "Tile", props{"width": 50, "height": 50}),
	)))
	rt.Pump()
	assert.Equal(t, []string{"row", "a"}, keys(rt.QueryRegion(graphics.RectFromLTWH(60, 10, 10, 10))))
}

func TestPaintRectSkipsOutsideSubtrees(t *testing.T) {
	rt, _ := newRuntime(t, 200, 50)
	require.NoError(t, rt.Render(n("Row", nil,
		keyed("a", "Tile", props{"width": 50, "height": 50}),
		keyed("b", "Tile", props{"width": 50, "height": 50}),
	)))
	rt.Pump()

	var rec graphics.PictureRecorder
	rt.PaintRect(rec.BeginRecording(graphics.Size{Width: 200, Height: 50}), graphics.RectFromLTWH(0, 0, 40, 40))
	rec.EndRecording()
	assert.Equal(t, 2, paints(t, rt, "a"))
	assert.Equal(t, 1, paints(t, rt, "b"))
}

func TestCursorResolution(t *testing.T) {
	rt, surface := newRuntime(t, 200, 200)
	require.NoError(t, rt.Render(n("Stack", nil,
		keyed("button", "Container", props{"width": 100, "height": 100, "cursor": "pointer"},
			keyed("icon", "Tile", nil)),
	)))
	rt.Pump()

	assert.Equal(t, "pointer", rt.CursorAt(5, 5))
	assert.Equal(t, "pointer", rt.CursorAt(50, 50))
	assert.Equal(t, DefaultCursor, rt.CursorAt(150, 150))

	rt.HandleInput(events.Input{Type: events.PointerMove, X: 5, Y: 5})
	assert.Equal(t, "pointer", surface.cursor)
	rt.HandleInput(events.Input{Type: events.PointerMove, X: 150, Y: 150})
	assert.Equal(t, DefaultCursor, surface.cursor)
}

func TestFocusAndKeyRouting(t *testing.T) {
	rt, _ := newRuntime(t, 100, 50)
	var rec recorder
	require.NoError(t, rt.Render(keyed("row", "Row", props{"onKeyDown": rec.on("key:row")},
		keyed("a", "Tile", props{"width": 50, "height": 50, "onFocus": rec.on("focus:a"), "onBlur": rec.on("blur:a")}),
		keyed("b", "Tile", props{"width": 50, "height": 50, "onKeyDown": rec.on("key:b"), "onFocus": rec.on("focus:b")}),
	)))
	rt.Pump()

	rt.HandleInput(events.Input{Type: events.KeyDown, Key: "x"})
	assert.Equal(t, []string{"key:row"}, rec.calls, "keys go to the root without focus")

	rec.calls = nil
	rt.HandleInput(events.Input{Type: events.PointerDown, X: 10, Y: 10})
	rt.HandleInput(events.Input{Type: events.PointerDown, X: 60, Y: 10})
	rt.HandleInput(events.Input{Type: events.KeyDown, Key: "x"})
	assert.Equal(t, []string{"focus:a", "blur:a", "focus:b", "key:b", "key:row"}, rec.calls)

	rt.HandleInput(events.Input{Type: events.Blur})
	assert.Nil(t, rt.Focused())
}

func TestStringHandlerResolvesAction(t *testing.T) {
	surface := newFakeSurface(50, 50)
	clicks := 0
	rt := Create(surface, Options{
		Registry: events.NewRegistry(),
		Actions: map[string]events.Handler{
			"submit": events.Listen(func(*events.Event) { clicks++ }),
		},
	})
	defer rt.Destroy()
	require.NoError(t, rt.Render(n("Tile", props{"onClick": "submit"})))
	rt.Pump()

	rt.HandleInput(events.Input{Type: events.Click, X: 5, Y: 5})
	assert.Equal(t, 1, clicks)
}

func TestHandlerPanicIsReported(t *testing.T) {
	var collected errors.CollectingHandler
	errors.SetHandler(&collected)
	defer errors.SetHandler(nil)

	rt, _ := newRuntime(t, 50, 50)
	var rec recorder
	require.NoError(t, rt.Render(keyed("col", "Column", props{"onPointerDown": rec.on("bubble:col")},
		keyed("p", "Tile", props{"onPointerDown": func(*events.Event) { panic("boom") }}))))
	rt.Pump()

	rt.HandleInput(events.Input{Type: events.PointerDown, X: 1, Y: 1})
	assert.Equal(t, []string{"bubble:col"}, rec.calls)
	require.Len(t, collected.Panics(), 1)
	assert.Equal(t, "p", collected.Panics()[0].Key)
}

func TestDestroyMakesEverythingANoOp(t *testing.T) {
	var source scheduler.ManualSource
	surface := newFakeSurface(100, 100)
	registry := events.NewRegistry()
	rt := Create(surface, Options{Registry: registry, Source: &source})

	require.NoError(t, rt.Render(n("Tile", props{"onPointerDown": func() {}})))
	require.NotZero(t, registry.Len(rt.Handle()))
	p := rt.RootWidget()

	rt.Destroy()
	source.Pump()
	assert.Zero(t, surface.ends, "the pending frame is cancelled")
	assert.Zero(t, registry.Len(rt.Handle()))
	assert.True(t, p.Base().IsDisposed())
	assert.Nil(t, rt.RootWidget())

	assert.ErrorIs(t, rt.Render(n("Tile", nil)), errors.ErrDestroyed)
	assert.ErrorIs(t, rt.RenderFromJSON([]byte(`{"type": "Tile"}`)), errors.ErrDestroyed)
	assert.False(t, rt.HandleInput(events.Input{Type: events.PointerDown, X: 1, Y: 1}))
	assert.Nil(t, rt.HitTest(1, 1))
	assert.Nil(t, rt.QueryRegion(graphics.RectFromLTWH(0, 0, 100, 100)))
	assert.NotPanics(t, func() {
		rt.Tick()
		rt.Rebuild()
		rt.Resize()
		rt.Destroy()
	})
	assert.Zero(t, surface.ends)
	assert.True(t, rt.Stats().Destroyed)
}

func TestDestroyInsideHandlerStopsDispatch(t *testing.T) {
	rt, _ := newRuntime(t, 50, 50)
	var rec recorder
	require.NoError(t, rt.Render(keyed("col", "Column", props{"onPointerDown": rec.on("bubble:col")},
		keyed("p", "Tile", props{"onPointerDown": func() { rt.Destroy() }}))))
	rt.Pump()

	assert.NotPanics(t, func() {
		rt.HandleInput(events.Input{Type: events.PointerDown, X: 1, Y: 1})
	})
	assert.Empty(t, rec.calls)
	assert.True(t, rt.IsDestroyed())
}

func TestRuntimesAreIsolated(t *testing.T) {
	registry := events.NewRegistry()
	var recA, recB recorder
	a := Create(newFakeSurface(50, 50), Options{Registry: registry})
	b := Create(newFakeSurface(50, 50), Options{Registry: registry})
	defer b.Destroy()

	require.NoError(t, a.Render(keyed("same", "Tile", props{"onClick": recA.on("a")})))
	require.NoError(t, b.Render(keyed("same", "Tile", props{"onClick": recB.on("b")})))
	a.Pump()
	b.Pump()

	b.HandleInput(events.Input{Type: events.Click, X: 1, Y: 1})
	assert.Empty(t, recA.calls)
	assert.Equal(t, []string{"b"}, recB.calls)

	a.Destroy()
	b.HandleInput(events.Input{Type: events.Click, X: 1, Y: 1})
	assert.Equal(t, []string{"b", "b"}, recB.calls)
}

func TestDumpTree(t *testing.T) {
	rt, _ := newRuntime(t, 100, 50)
	require.NoError(t, rt.Render(keyed("row", "Row", nil,
		keyed("a", "Tile", props{"width": 50, "height": 50}),
		n("RepaintBoundary", nil, keyed("b", "Tile", props{"width": 50, "height": 50})),
	)))
	rt.Pump()

	var buf bytes.Buffer
	require.NoError(t, rt.DumpTree(&buf))
	var snap struct {
		Root struct {
			Key      string `json:"key"`
			Children []struct {
				Key             string `json:"key"`
				RepaintBoundary bool   `json:"repaintBoundary"`
			} `json:"children"`
		} `json:"root"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &snap))
	assert.Equal(t, "row", snap.Root.Key)
	require.Len(t, snap.Root.Children, 2)
	assert.True(t, snap.Root.Children[1].RepaintBoundary)

	buf.Reset()
	require.NoError(t, rt.DumpText(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Row #row (0,0 100x50) [pointer:none]", lines[0])
	assert.Equal(t, "  Tile #a (0,0 50x50)", lines[1])
	assert.Contains(t, lines[2], "[repaint]")
}

func TestSafeFloatMarshalsNonFinite(t *testing.T) {
	data, err := json.Marshal([]SafeFloat{1.5, SafeFloat(posInf()), SafeFloat(negInf())})
	require.NoError(t, err)
	assert.Equal(t, `[1.5,"Infinity","-Infinity"]`, string(data))
}

func posInf() float64 { return layout.Unbounded().MaxWidth }
func negInf() float64 { return -posInf() }

func TestFrameTraceWraps(t *testing.T) {
	tr := newFrameTrace(3)
	_, ok := tr.last()
	assert.False(t, ok)

	for i := 1; i <= 5; i++ {
		tr.add(FrameSample{Start: int64(i)}, time.Duration(i)*10*time.Millisecond)
	}
	got := tr.timeline()
	starts := make([]int64, len(got.Samples))
	for i, s := range got.Samples {
		starts[i] = s.Start
	}
	assert.Equal(t, []int64{3, 4, 5}, starts)
	assert.Equal(t, 4, got.Slow, "frames of 20ms and up miss a 60Hz budget")
	last, ok := tr.last()
	assert.True(t, ok)
	assert.Equal(t, int64(5), last.Start)
}

func TestDebugServerServesSnapshots(t *testing.T) {
	rt, _ := newRuntime(t, 100, 50)
	require.NoError(t, rt.Render(keyed("root", "Tile", nil)))
	rt.Pump()

	srv, err := rt.StartDebugServer("127.0.0.1:0")
	require.NoError(t, err)
	base := fmt.Sprintf("http://%s", srv.Addr())

	get := func(path string) (int, string) {
		resp, err := http.Get(base + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/health")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	code, body = get("/tree")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"key": "root"`)

	code, _ = get("/frames?limit=x")
	assert.Equal(t, http.StatusBadRequest, code)

	rt.Destroy()
	_, err = http.Get(base + "/health")
	assert.Error(t, err)
}
