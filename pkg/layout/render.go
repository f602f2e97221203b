package layout

import (
	"fmt"

	"github.com/go-drift/weave/pkg/errors"
	"github.com/go-drift/weave/pkg/graphics"
)

// RenderObject handles layout and painting for one widget.
type RenderObject interface {
	Layout(constraints Constraints, parentUsesSize bool)
	Size() graphics.Size
	Paint(ctx *PaintContext)
	MarkNeedsLayout()
	MarkNeedsPaint()
	SetOwner(owner *PipelineOwner)
	IsRepaintBoundary() bool
	// Base exposes the shared render state.
	Base() *RenderBoxBase
}

// ChildVisitor is implemented by render objects that have children.
type ChildVisitor interface {
	VisitChildren(visitor func(RenderObject))
}

// ChildrenSetter is implemented by render objects that accept an ordered
// list of children from the widget tree.
type ChildrenSetter interface {
	SetChildren(children []RenderObject)
}

// PaintClipper is implemented by render objects that clip their children to
// their own bounds, both for painting and for hit testing.
type PaintClipper interface {
	ClipsChildren() bool
}

// FlexFit controls how a flexible child fills its share.
type FlexFit int

const (
	// FlexFitTight forces the child to fill its share exactly.
	FlexFitTight FlexFit = iota
	// FlexFitLoose lets the child be smaller than its share.
	FlexFitLoose
)

func (f FlexFit) String() string {
	if f == FlexFitLoose {
		return "loose"
	}
	return "tight"
}

// FlexData is the flex metadata a Row or Column reads from a child.
type FlexData struct {
	Flex float64
	Fit  FlexFit
}

// LocalTransform is an additional scale and rotation applied around Pivot,
// after the offset.
type LocalTransform struct {
	ScaleX   float64
	ScaleY   float64
	Rotation float64
	Pivot    graphics.Offset
}

// Matrix returns the transform as an affine matrix.
func (t LocalTransform) Matrix() graphics.Matrix {
	return graphics.Translation(t.Pivot.X, t.Pivot.Y).
		Rotate(t.Rotation).
		Scale(t.ScaleX, t.ScaleY).
		Translate(-t.Pivot.X, -t.Pivot.Y)
}

// IsIdentity reports whether the transform has no effect.
func (t LocalTransform) IsIdentity() bool {
	return t.ScaleX == 1 && t.ScaleY == 1 && t.Rotation == 0
}

// RenderBoxBase provides base behavior for render boxes.
type RenderBoxBase struct {
	size             graphics.Size
	offset           graphics.Offset
	transform        *LocalTransform
	flex             FlexData
	parentData       any
	owner            *PipelineOwner
	self             RenderObject
	parent           RenderObject // non-owning
	depth            int
	relayoutBoundary RenderObject
	needsLayout      bool
	constraints      Constraints
	repaintFlag      bool
	repaintBoundary  RenderObject
	needsPaint       bool
	layer            *graphics.Layer
	target           any

	world        graphics.Matrix
	worldBounds  graphics.Rect
	worldVersion uint64
	worldValid   bool
	boundsValid  bool
}

// Base returns r. Concrete render objects get it through embedding.
func (r *RenderBoxBase) Base() *RenderBoxBase {
	return r
}

// Size returns the current size of the render box.
func (r *RenderBoxBase) Size() graphics.Size {
	return r.size
}

// SetSize updates the size, clamped to the last constraints so the size
// always satisfies them.
func (r *RenderBoxBase) SetSize(size graphics.Size) {
	size = r.constraints.Constrain(size)
	if r.size == size {
		return
	}
	r.size = size
	r.invalidateTransform()
	r.MarkNeedsPaint()
}

// Offset returns the position relative to the parent.
func (r *RenderBoxBase) Offset() graphics.Offset {
	return r.offset
}

// SetOffset positions this box inside its parent. The parent records the
// translation, so it is marked for repaint when the offset moves.
func (r *RenderBoxBase) SetOffset(offset graphics.Offset) {
	if r.offset == offset {
		return
	}
	r.offset = offset
	r.invalidateTransform()
	if r.parent != nil {
		r.parent.MarkNeedsPaint()
	} else {
		r.MarkNeedsPaint()
	}
}

// Transform returns the extra local transform, or nil.
func (r *RenderBoxBase) Transform() *LocalTransform {
	return r.transform
}

// SetTransform installs an extra scale/rotation. Pass nil to clear it.
func (r *RenderBoxBase) SetTransform(t *LocalTransform) {
	if t != nil && t.IsIdentity() {
		t = nil
	}
	if r.transform == nil && t == nil {
		return
	}
	if r.transform != nil && t != nil && *r.transform == *t {
		return
	}
	r.transform = t
	r.invalidateTransform()
	if r.parent != nil {
		r.parent.MarkNeedsPaint()
	} else {
		r.MarkNeedsPaint()
	}
}

// Flex returns the flex metadata.
func (r *RenderBoxBase) Flex() FlexData {
	return r.flex
}

// SetFlex updates flex metadata and relayouts the parent when it changes.
func (r *RenderBoxBase) SetFlex(data FlexData) {
	if r.flex == data {
		return
	}
	r.flex = data
	if r.parent != nil {
		r.parent.MarkNeedsLayout()
	}
}

// ParentData returns the parent-assigned data for this render box.
func (r *RenderBoxBase) ParentData() any {
	return r.parentData
}

// SetParentData assigns parent-controlled data to this render box.
func (r *RenderBoxBase) SetParentData(data any) {
	r.parentData = data
}

// Target returns the widget that owns this render object.
func (r *RenderBoxBase) Target() any {
	return r.target
}

// SetTarget records the owning widget.
func (r *RenderBoxBase) SetTarget(target any) {
	r.target = target
}

// MarkNeedsLayout marks this render box as needing layout.
//
// The walk goes up marking each node until it reaches a relayout boundary,
// which is scheduled on the owner. Every marked node runs PerformLayout when
// the boundary lays out again.
func (r *RenderBoxBase) MarkNeedsLayout() {
	if r.needsLayout {
		return
	}
	r.needsLayout = true

	if r.owner == nil || r.self == nil {
		return
	}

	if r.relayoutBoundary == r.self {
		r.owner.ScheduleLayout(r.self)
		return
	}

	if r.parent != nil {
		r.parent.MarkNeedsLayout()
		return
	}

	// Parentless and not yet a boundary: not laid out yet.
	r.owner.ScheduleLayout(r.self)
}

// MarkNeedsPaint marks this render box as needing paint.
//
// The walk stops at the nearest repaint boundary. Parent boundaries refer to
// child boundaries through child-layer ops, so a child's new content does not
// require re-recording the parent.
func (r *RenderBoxBase) MarkNeedsPaint() {
	r.needsPaint = true

	var isCurrentlyBoundary bool
	if r.self != nil {
		isCurrentlyBoundary = r.self.IsRepaintBoundary()
	}
	wasBoundary := r.layer != nil

	// Boundary status changed: the parent's recording is stale.
	if isCurrentlyBoundary != wasBoundary && r.parent != nil {
		r.parent.MarkNeedsPaint()
	}

	if !isCurrentlyBoundary && r.layer != nil {
		r.layer.Dispose()
		r.layer = nil
	}

	if r.owner == nil || r.self == nil {
		if isCurrentlyBoundary {
			r.EnsureLayer().MarkDirty()
		}
		return
	}

	if isCurrentlyBoundary {
		r.EnsureLayer().MarkDirty()
		r.owner.SchedulePaint(r.self)
		return
	}

	if r.parent != nil {
		r.parent.MarkNeedsPaint()
		return
	}

	r.owner.SchedulePaint(r.self)
}

// Owner returns the pipeline owner, or nil when detached.
func (r *RenderBoxBase) Owner() *PipelineOwner {
	return r.owner
}

// SetOwner assigns the pipeline owner for scheduling layout and paint.
func (r *RenderBoxBase) SetOwner(owner *PipelineOwner) {
	if r.owner == owner {
		return
	}
	r.owner = owner
	r.worldValid = false
	r.boundsValid = false
}

// SetSelf registers the concrete render object for scheduling.
func (r *RenderBoxBase) SetSelf(self RenderObject) {
	r.self = self
	r.needsLayout = true
	r.needsPaint = true
}

// Self returns the concrete render object registered via SetSelf.
func (r *RenderBoxBase) Self() RenderObject {
	return r.self
}

// Parent returns the parent render object.
func (r *RenderBoxBase) Parent() RenderObject {
	return r.parent
}

// SetParent sets the parent render object and computes depth.
// Cached boundaries and constraints are cleared so a reparented node never
// keeps references into its old subtree.
func (r *RenderBoxBase) SetParent(parent RenderObject) {
	if r.parent == parent {
		return
	}
	oldParent := r.parent
	r.parent = parent
	r.updateDepth()
	r.relayoutBoundary = nil
	r.constraints = Constraints{}
	r.needsLayout = true
	r.repaintBoundary = nil
	r.needsPaint = true
	if r.layer != nil {
		r.layer.MarkDirty()
	}
	r.invalidateTransform()

	if oldParent != nil {
		oldParent.MarkNeedsPaint()
	}
	if parent != nil {
		parent.MarkNeedsPaint()
	}
}

func (r *RenderBoxBase) updateDepth() {
	if r.parent == nil {
		r.depth = 0
	} else {
		r.depth = r.parent.Base().depth + 1
	}
	if r.self == nil {
		return
	}
	if visitor, ok := r.self.(ChildVisitor); ok {
		visitor.VisitChildren(func(child RenderObject) {
			child.Base().updateDepth()
		})
	}
}

// Depth returns the tree depth (root = 0).
func (r *RenderBoxBase) Depth() int {
	return r.depth
}

// RelayoutBoundary returns the cached nearest relayout boundary.
func (r *RenderBoxBase) RelayoutBoundary() RenderObject {
	return r.relayoutBoundary
}

// IsRelayoutBoundary reports whether this node was its own boundary at its
// last layout.
func (r *RenderBoxBase) IsRelayoutBoundary() bool {
	return r.self != nil && r.relayoutBoundary == r.self
}

// NeedsLayout returns true if this render box needs layout.
func (r *RenderBoxBase) NeedsLayout() bool {
	return r.needsLayout
}

// Constraints returns the last received constraints.
func (r *RenderBoxBase) Constraints() Constraints {
	return r.constraints
}

// IsRepaintBoundary returns the flag set with SetRepaintBoundary. Render
// objects that always isolate their paint override it.
func (r *RenderBoxBase) IsRepaintBoundary() bool {
	return r.repaintFlag
}

// SetRepaintBoundary toggles whether this node owns a layer.
func (r *RenderBoxBase) SetRepaintBoundary(boundary bool) {
	if r.repaintFlag == boundary {
		return
	}
	r.repaintFlag = boundary
	r.MarkNeedsPaint()
}

// RepaintBoundary returns the cached nearest repaint boundary.
func (r *RenderBoxBase) RepaintBoundary() RenderObject {
	return r.repaintBoundary
}

// NeedsPaint returns true if this render box needs painting.
func (r *RenderBoxBase) NeedsPaint() bool {
	return r.needsPaint
}

// ClearNeedsPaint marks this render object as painted.
func (r *RenderBoxBase) ClearNeedsPaint() {
	r.needsPaint = false
}

// Layer returns the cached layer for repaint boundaries.
func (r *RenderBoxBase) Layer() *graphics.Layer {
	return r.layer
}

// EnsureLayer returns the existing layer or creates one.
// The layer has stable identity; it is only ever marked dirty.
func (r *RenderBoxBase) EnsureLayer() *graphics.Layer {
	if r.layer == nil {
		r.layer = &graphics.Layer{Dirty: true, Size: r.size}
	}
	return r.layer
}

// SetLayerContent stores freshly recorded content.
func (r *RenderBoxBase) SetLayerContent(content *graphics.DisplayList) {
	layer := r.EnsureLayer()
	layer.SetContent(content)
	layer.Size = r.size
}

// Dispose releases resources held by this render box.
func (r *RenderBoxBase) Dispose() {
	if r.layer != nil {
		r.layer.Dispose()
		r.layer = nil
	}
	if r.owner != nil {
		r.owner.forget(r.self)
	}
	r.owner = nil
}

// Layout handles boundary determination and delegates to PerformLayout.
//
// A node becomes a relayout boundary when it receives tight constraints, is
// the root, or its parent does not use its size. Clean nodes whose
// constraints did not change skip layout entirely.
func (r *RenderBoxBase) Layout(constraints Constraints, parentUsesSize bool) {
	if !constraints.IsNormalized() {
		normalized := constraints.Normalize()
		errors.Report(&errors.EngineError{
			Op:   "layout.Layout",
			Kind: errors.KindLayout,
			Err:  fmt.Errorf("invalid %v clamped to %v", constraints, normalized),
		})
		constraints = normalized
	}

	if constraints.IsTight() || r.parent == nil || !parentUsesSize {
		r.relayoutBoundary = r.self
	} else {
		r.relayoutBoundary = r.parent.Base().relayoutBoundary
	}

	if r.self != nil && r.self.IsRepaintBoundary() {
		r.repaintBoundary = r.self
		// SetSelf pre-marks needsPaint without an owner; schedule on first layout.
		if r.needsPaint && r.owner != nil {
			r.EnsureLayer().MarkDirty()
			r.owner.SchedulePaint(r.self)
		}
	} else if r.parent != nil {
		r.repaintBoundary = r.parent.Base().repaintBoundary
	}

	if !r.needsLayout && r.constraints == constraints {
		return
	}

	r.constraints = constraints
	r.needsLayout = false
	if r.owner != nil {
		r.owner.layoutCount++
	}

	if performer, ok := r.self.(interface{ PerformLayout() }); ok {
		performer.PerformLayout()
	}
	// PerformLayout may have left the size unset or stale.
	r.SetSize(r.size)
}

// invalidateTransform bumps the owner's transform version so every cached
// world transform below this node is recomputed on next query.
func (r *RenderBoxBase) invalidateTransform() {
	r.worldValid = false
	r.boundsValid = false
	if r.owner != nil {
		r.owner.bumpTransformVersion()
	}
}

// LocalMatrix returns the transform from this node's space to its parent's.
func (r *RenderBoxBase) LocalMatrix() graphics.Matrix {
	m := graphics.Translation(r.offset.X, r.offset.Y)
	if r.transform != nil {
		m = m.Multiply(r.transform.Matrix())
	}
	return m
}

// WorldTransform returns the transform from this node's space to surface
// space. The result is cached against the owner's transform version, so
// repeated queries between changes cost a version comparison.
func (r *RenderBoxBase) WorldTransform() graphics.Matrix {
	var version uint64
	if r.owner != nil {
		version = r.owner.transformVersion
		if r.worldValid && r.worldVersion == version {
			return r.world
		}
	}
	parent := graphics.Identity()
	if r.parent != nil {
		parent = r.parent.Base().WorldTransform()
	}
	world := parent.Multiply(r.LocalMatrix())
	if r.owner != nil {
		r.world = world
		r.worldVersion = version
		r.worldValid = true
		r.boundsValid = false
	}
	return world
}

// AbsolutePosition returns the surface position of this node's origin.
func (r *RenderBoxBase) AbsolutePosition() graphics.Offset {
	return r.WorldTransform().Apply(graphics.Offset{})
}

// GlobalToLocal maps a surface point into this node's coordinate space.
// The second result is false when the transform is singular.
func (r *RenderBoxBase) GlobalToLocal(p graphics.Offset) (graphics.Offset, bool) {
	inv, ok := r.WorldTransform().Invert()
	if !ok {
		return graphics.Offset{}, false
	}
	return inv.Apply(p), true
}

// Bounds returns this node's own rectangle in surface space.
func (r *RenderBoxBase) Bounds() graphics.Rect {
	return r.WorldTransform().TransformRect(graphics.RectFromSize(r.size))
}

// PaintBounds returns the surface-space area this subtree may paint: its
// own bounds united with its children's, limited to its own bounds when it
// clips children.
func (r *RenderBoxBase) PaintBounds() graphics.Rect {
	world := r.WorldTransform()
	if r.boundsValid && r.owner != nil && r.worldVersion == r.owner.transformVersion {
		return r.worldBounds
	}
	bounds := world.TransformRect(graphics.RectFromSize(r.size))
	clips := false
	if clipper, ok := r.self.(PaintClipper); ok {
		clips = clipper.ClipsChildren()
	}
	if !clips {
		if visitor, ok := r.self.(ChildVisitor); ok {
			visitor.VisitChildren(func(child RenderObject) {
				bounds = bounds.Union(child.Base().PaintBounds())
			})
		}
	}
	if r.owner != nil {
		r.worldBounds = bounds
		r.boundsValid = true
	}
	return bounds
}

// SetParentOnChild sets the parent reference on a child render object.
// It marks both the old and new parent as needing layout when the parent changes.
func SetParentOnChild(child, parent RenderObject) {
	if child == nil {
		return
	}
	base := child.Base()
	currentParent := base.parent
	if currentParent == parent {
		return
	}
	base.SetParent(parent)
	if parent != nil {
		AttachTree(child, parent.Base().owner)
	}
	if currentParent != nil {
		currentParent.MarkNeedsLayout()
	}
	if parent != nil {
		parent.MarkNeedsLayout()
	}
}

// AttachTree sets owner on node and every descendant.
func AttachTree(node RenderObject, owner *PipelineOwner) {
	if node == nil {
		return
	}
	node.SetOwner(owner)
	if visitor, ok := node.(ChildVisitor); ok {
		visitor.VisitChildren(func(child RenderObject) {
			AttachTree(child, owner)
		})
	}
}
