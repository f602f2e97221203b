package engine

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/layout"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TreeNode is the serialized form of one widget and its render state.
// Float fields use SafeFloat since broken layouts can carry Inf or NaN.
type TreeNode struct {
	Type             string           `json:"type"`
	Key              string           `json:"key"`
	AutoKey          bool             `json:"autoKey,omitempty"`
	PointerEvent     string           `json:"pointerEvent"`
	Cursor           string           `json:"cursor,omitempty"`
	Bounds           SafeRect         `json:"bounds"`
	Offset           SafeOffset       `json:"offset"`
	Constraints      *SafeConstraints `json:"constraints,omitempty"`
	NeedsLayout      bool             `json:"needsLayout,omitempty"`
	NeedsPaint       bool             `json:"needsPaint,omitempty"`
	RelayoutBoundary bool             `json:"relayoutBoundary,omitempty"`
	RepaintBoundary  bool             `json:"repaintBoundary,omitempty"`
	Children         []TreeNode       `json:"children,omitempty"`
}

// TreeSnapshot is the serialized main tree plus overlays.
type TreeSnapshot struct {
	Width    SafeFloat  `json:"width"`
	Height   SafeFloat  `json:"height"`
	Root     *TreeNode  `json:"root,omitempty"`
	Overlays []TreeNode `json:"overlays,omitempty"`
}

// SafeFloat wraps a float64 to handle Inf/NaN in JSON encoding.
type SafeFloat float64

func (f SafeFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// SafeOffset is a JSON-safe graphics.Offset.
type SafeOffset struct {
	X SafeFloat `json:"x"`
	Y SafeFloat `json:"y"`
}

// SafeRect is a JSON-safe rectangle in left/top/width/height form.
type SafeRect struct {
	X      SafeFloat `json:"x"`
	Y      SafeFloat `json:"y"`
	Width  SafeFloat `json:"width"`
	Height SafeFloat `json:"height"`
}

// SafeConstraints is a JSON-safe layout.Constraints.
type SafeConstraints struct {
	MinWidth  SafeFloat `json:"minWidth"`
	MaxWidth  SafeFloat `json:"maxWidth"`
	MinHeight SafeFloat `json:"minHeight"`
	MaxHeight SafeFloat `json:"maxHeight"`
}

// Snapshot serializes the current trees.
func (r *Runtime) Snapshot() TreeSnapshot {
	size := r.surface.Size()
	snap := TreeSnapshot{Width: SafeFloat(size.Width), Height: SafeFloat(size.Height)}
	if r.destroyed {
		return snap
	}
	if r.root != nil {
		node := snapshotWidget(r.root)
		snap.Root = &node
	}
	for _, e := range r.overlays.entries {
		snap.Overlays = append(snap.Overlays, snapshotWidget(e.widget))
	}
	return snap
}

func snapshotWidget(w core.Widget) TreeNode {
	b := w.Base()
	node := TreeNode{
		Type:         b.Type(),
		Key:          b.Key(),
		AutoKey:      b.IsAutoKey(),
		PointerEvent: b.PointerEvent().String(),
		Cursor:       b.Cursor(),
	}
	if ro := w.RenderObject(); ro != nil {
		rb := ro.Base()
		bounds := rb.Bounds()
		node.Bounds = SafeRect{
			X: SafeFloat(bounds.Left), Y: SafeFloat(bounds.Top),
			Width: SafeFloat(bounds.Width()), Height: SafeFloat(bounds.Height()),
		}
		node.Offset = SafeOffset{X: SafeFloat(rb.Offset().X), Y: SafeFloat(rb.Offset().Y)}
		if c := rb.Constraints(); c != (layout.Constraints{}) {
			node.Constraints = &SafeConstraints{
				MinWidth: SafeFloat(c.MinWidth), MaxWidth: SafeFloat(c.MaxWidth),
				MinHeight: SafeFloat(c.MinHeight), MaxHeight: SafeFloat(c.MaxHeight),
			}
		}
		node.NeedsLayout = rb.NeedsLayout()
		node.NeedsPaint = rb.NeedsPaint()
		node.RelayoutBoundary = rb.IsRelayoutBoundary()
		node.RepaintBoundary = ro.IsRepaintBoundary()
	}
	for _, child := range b.Children() {
		node.Children = append(node.Children, snapshotWidget(child))
	}
	return node
}

// DumpTree writes the snapshot as indented JSON.
func (r *Runtime) DumpTree(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Snapshot())
}

// DumpText writes the snapshot as an indented outline, one widget per line.
func (r *Runtime) DumpText(w io.Writer) error {
	snap := r.Snapshot()
	var sb strings.Builder
	if snap.Root != nil {
		writeOutline(&sb, *snap.Root, 0)
	}
	for _, o := range snap.Overlays {
		sb.WriteString("overlay:\n")
		writeOutline(&sb, o, 1)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeOutline(sb *strings.Builder, n TreeNode, depth int) {
	fmt.Fprintf(sb, "%s%s #%s (%g,%g %gx%g)", strings.Repeat("  ", depth), n.Type, n.Key,
		float64(n.Bounds.X), float64(n.Bounds.Y), float64(n.Bounds.Width), float64(n.Bounds.Height))
	if n.RepaintBoundary {
		sb.WriteString(" [repaint]")
	}
	if n.PointerEvent == core.PointerNone.String() {
		sb.WriteString(" [pointer:none]")
	}
	sb.WriteByte('\n')
	for _, c := range n.Children {
		writeOutline(sb, c, depth+1)
	}
}
