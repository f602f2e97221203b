package layout

import (
	"math"
	"testing"

	"github.com/go-drift/weave/pkg/errors"
	"github.com/go-drift/weave/pkg/graphics"
)

type leafBox struct {
	RenderBoxBase
	want   graphics.Size
	paints int
}

func newLeaf(w, h float64) *leafBox {
	b := &leafBox{want: graphics.Size{Width: w, Height: h}}
	b.SetSelf(b)
	return b
}

func (b *leafBox) PerformLayout() {
	b.SetSize(b.want)
}

func (b *leafBox) Paint(ctx *PaintContext) {
	b.paints++
	ctx.Canvas.DrawRect(graphics.RectFromSize(b.Size()), graphics.FillPaint(graphics.ColorRed))
}

// stackBox lays children out vertically. With tight set, every child gets
// tight 50x50 constraints.
type stackBox struct {
	RenderBoxBase
	ChildList
	tight   bool
	layouts int
	paints  int
}

func newStackBox(children ...RenderObject) *stackBox {
	b := &stackBox{}
	b.SetSelf(b)
	b.SetChildren(children)
	return b
}

func (b *stackBox) SetChildren(children []RenderObject) {
	b.ReplaceChildren(b, children)
}

func (b *stackBox) PerformLayout() {
	b.layouts++
	c := b.Constraints()
	var y float64
	for _, child := range b.Children() {
		cc := c.Loosen()
		if b.tight {
			cc = Tight(graphics.Size{Width: 50, Height: 50})
		}
		child.Layout(cc, true)
		child.Base().SetOffset(graphics.Offset{Y: y})
		y += child.Size().Height
	}
	b.SetSize(c.Biggest())
}

func (b *stackBox) Paint(ctx *PaintContext) {
	b.paints++
	ctx.PaintChildren(b)
}

func mount(root RenderObject, w, h float64) *PipelineOwner {
	owner := &PipelineOwner{}
	AttachTree(root, owner)
	owner.FlushLayoutForRoot(root, Tight(graphics.Size{Width: w, Height: h}))
	return owner
}

func TestMarkNeedsLayoutStopsAtBoundary(t *testing.T) {
	leaf := newLeaf(10, 10)
	mid := newStackBox(leaf)
	root := newStackBox(mid)
	owner := mount(root, 200, 200)

	if mid.Base().IsRelayoutBoundary() {
		t.Fatal("mid receives loose constraints and should not be a boundary")
	}

	leaf.MarkNeedsLayout()
	if !mid.NeedsLayout() || !root.NeedsLayout() {
		t.Errorf("needsLayout should reach the root boundary: mid=%v root=%v", mid.NeedsLayout(), root.NeedsLayout())
	}
	if got := owner.DirtyLayoutCount(); got != 1 {
		t.Errorf("DirtyLayoutCount = %d, want 1", got)
	}
}

func TestBoundaryChildDoesNotDirtyParent(t *testing.T) {
	child := newLeaf(10, 10)
	parent := newStackBox(child)
	parent.tight = true
	root := newStackBox(parent)
	owner := mount(root, 200, 200)

	if !child.Base().IsRelayoutBoundary() {
		t.Fatal("tightly constrained child should be a relayout boundary")
	}

	child.MarkNeedsLayout()
	if parent.NeedsLayout() {
		t.Error("parent should stay clean when a boundary child is dirtied")
	}
	if got := owner.DirtyLayoutCount(); got != 1 {
		t.Errorf("DirtyLayoutCount = %d, want 1", got)
	}

	before := parent.layouts
	owner.FlushLayoutForRoot(root, Tight(graphics.Size{Width: 200, Height: 200}))
	if parent.layouts != before {
		t.Errorf("parent relaid out %d times", parent.layouts-before)
	}
	if child.NeedsLayout() {
		t.Error("child should be clean after flush")
	}
}

func TestScheduleLayoutIsIdempotent(t *testing.T) {
	leaf := newLeaf(10, 10)
	root := newStackBox(leaf)
	owner := mount(root, 100, 100)

	scheduled := 0
	owner.SetOnSchedule(func() { scheduled++ })

	leaf.MarkNeedsLayout()
	leaf.MarkNeedsLayout()
	leaf.MarkNeedsLayout()

	if scheduled != 1 {
		t.Errorf("onSchedule called %d times, want 1", scheduled)
	}
	if got := owner.DirtyLayoutCount(); got != 1 {
		t.Errorf("DirtyLayoutCount = %d, want 1", got)
	}

	before := root.layouts
	owner.FlushLayoutForRoot(root, Tight(graphics.Size{Width: 100, Height: 100}))
	if got := root.layouts - before; got != 1 {
		t.Errorf("root laid out %d times, want 1", got)
	}
	if owner.NeedsLayout() {
		t.Error("owner should be clean after flush")
	}
}

func TestSizeSatisfiesConstraints(t *testing.T) {
	leaf := newLeaf(500, 5)
	leaf.Layout(Constraints{MinWidth: 0, MaxWidth: 100, MinHeight: 20, MaxHeight: 40}, true)
	if got, want := leaf.Size(), (graphics.Size{Width: 100, Height: 20}); got != want {
		t.Errorf("Size = %v, want %v", got, want)
	}
}

func TestLayoutNormalizesInvalidConstraints(t *testing.T) {
	h := &errors.CollectingHandler{}
	errors.SetHandler(h)
	defer errors.SetHandler(nil)

	leaf := newLeaf(30, 30)
	leaf.Layout(Constraints{MinWidth: math.NaN(), MaxWidth: -5, MinHeight: 50, MaxHeight: 10}, true)

	if got, want := leaf.Size(), (graphics.Size{Width: 0, Height: 50}); got != want {
		t.Errorf("Size = %v, want %v", got, want)
	}
	if len(h.ErrorsOfKind(errors.KindLayout)) != 1 {
		t.Errorf("expected one layout error, got %v", h.Errors())
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Constraints
		want Constraints
	}{
		{"valid", Constraints{0, 10, 0, 10}, Constraints{0, 10, 0, 10}},
		{"nan max", Constraints{0, math.NaN(), 0, 10}, Constraints{0, Infinity, 0, 10}},
		{"negative min", Constraints{-3, 10, -1, 10}, Constraints{0, 10, 0, 10}},
		{"min above max", Constraints{20, 10, 0, 10}, Constraints{20, 20, 0, 10}},
		{"infinite min", Constraints{Infinity, Infinity, 0, 10}, Constraints{0, Infinity, 0, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got != tt.want {
				t.Errorf("Normalize() = %v, want %v", got, tt.want)
			}
			if !got.IsNormalized() {
				t.Errorf("%v should be normalized", got)
			}
		})
	}
}

func TestEnforceKeepsInfinity(t *testing.T) {
	c := Unbounded().Enforce(Constraints{MinWidth: 10, MaxWidth: Infinity, MaxHeight: 50})
	if c.MaxWidth != Infinity || c.MinWidth != 10 || c.MaxHeight != 50 {
		t.Errorf("Enforce = %v", c)
	}
}

func recordDirty(owner *PipelineOwner) {
	dirty := owner.FlushPaint()
	for i := len(dirty) - 1; i >= 0; i-- {
		RecordLayer(dirty[i])
	}
}

func TestRepaintBoundaryIsolatesSiblings(t *testing.T) {
	a := newLeaf(10, 10)
	b := newLeaf(10, 10)
	a.SetRepaintBoundary(true)
	b.SetRepaintBoundary(true)
	root := newStackBox(a, b)
	root.SetRepaintBoundary(true)
	owner := mount(root, 100, 100)
	recordDirty(owner)

	if a.paints != 1 || b.paints != 1 || root.paints != 1 {
		t.Fatalf("initial paints a=%d b=%d root=%d", a.paints, b.paints, root.paints)
	}

	a.MarkNeedsPaint()
	if got := owner.DirtyPaintCount(); got != 1 {
		t.Errorf("DirtyPaintCount = %d, want 1", got)
	}
	recordDirty(owner)

	if a.paints != 2 {
		t.Errorf("a.paints = %d, want 2", a.paints)
	}
	if b.paints != 1 {
		t.Errorf("sibling boundary repainted: b.paints = %d", b.paints)
	}
	if root.paints != 1 {
		t.Errorf("parent boundary re-recorded: root.paints = %d", root.paints)
	}
}

func TestPaintCullSkipsDisjointSubtrees(t *testing.T) {
	top := newLeaf(50, 50)
	bottom := newLeaf(50, 50)
	root := newStackBox(top, bottom)
	mount(root, 100, 100)

	var rec graphics.PictureRecorder
	cull := graphics.RectFromLTWH(0, 60, 10, 10)
	ctx := &PaintContext{Canvas: rec.BeginRecording(root.Size()), Cull: &cull}
	root.Paint(ctx)

	if top.paints != 0 {
		t.Errorf("top painted %d times outside the cull rect", top.paints)
	}
	if bottom.paints != 1 {
		t.Errorf("bottom.paints = %d, want 1", bottom.paints)
	}
}

func TestWorldTransformCache(t *testing.T) {
	child := newLeaf(10, 10)
	spacer := newLeaf(50, 50)
	root := newStackBox(spacer, child)
	owner := mount(root, 100, 100)

	if got := child.Base().AbsolutePosition(); got != (graphics.Offset{Y: 50}) {
		t.Errorf("AbsolutePosition = %v", got)
	}
	version := owner.TransformVersion()
	child.Base().WorldTransform()
	if owner.TransformVersion() != version || child.worldVersion != version || !child.worldValid {
		t.Error("repeated query should reuse the cached transform")
	}

	root.SetTransform(&LocalTransform{ScaleX: 2, ScaleY: 2})
	if owner.TransformVersion() == version {
		t.Fatal("transform change should bump the version")
	}
	if got := child.Base().AbsolutePosition(); got != (graphics.Offset{Y: 100}) {
		t.Errorf("AbsolutePosition after scale = %v, want (0,100)", got)
	}
	local, ok := child.Base().GlobalToLocal(graphics.Offset{X: 10, Y: 110})
	if !ok || local != (graphics.Offset{X: 5, Y: 5}) {
		t.Errorf("GlobalToLocal = %v, %v", local, ok)
	}
}

func TestPaintBoundsIncludeChildren(t *testing.T) {
	child := newLeaf(10, 10)
	root := newStackBox(child)
	mount(root, 100, 100)
	child.Base().SetOffset(graphics.Offset{X: 120, Y: 0})

	bounds := root.Base().PaintBounds()
	if bounds.Right != 130 {
		t.Errorf("PaintBounds = %v, want right edge 130", bounds)
	}
}

func TestReplaceChildrenDetachesRemoved(t *testing.T) {
	a := newLeaf(10, 10)
	b := newLeaf(10, 10)
	root := newStackBox(a, b)
	mount(root, 100, 100)

	root.SetChildren([]RenderObject{b})
	if a.Parent() != nil {
		t.Error("removed child should be detached")
	}
	if b.Parent() != root || b.Depth() != 1 {
		t.Errorf("kept child parent=%v depth=%d", b.Parent(), b.Depth())
	}
	if !root.NeedsLayout() {
		t.Error("parent should need layout after children change")
	}
}
