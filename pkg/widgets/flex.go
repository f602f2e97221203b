package widgets

import (
	"fmt"
	"math"

	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/go-drift/weave/pkg/layout"
	"github.com/go-drift/weave/pkg/logging"
	"go.uber.org/zap"
)

// Axis represents the layout direction.
type Axis int

const (
	// AxisHorizontal arranges children left to right.
	AxisHorizontal Axis = iota
	// AxisVertical arranges children top to bottom.
	AxisVertical
)

func (a Axis) String() string {
	switch a {
	case AxisVertical:
		return "vertical"
	case AxisHorizontal:
		return "horizontal"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis accepts "horizontal"/"row" and "vertical"/"column".
func ParseAxis(s string) (Axis, bool) {
	switch s {
	case "horizontal", "row":
		return AxisHorizontal, true
	case "vertical", "column":
		return AxisVertical, true
	}
	return AxisHorizontal, false
}

// MainAxisAlignment controls how children are positioned along the main axis
// (horizontal for Row, vertical for Column).
type MainAxisAlignment int

const (
	// MainAxisAlignmentStart places children at the start (left for Row, top for Column).
	MainAxisAlignmentStart MainAxisAlignment = iota
	// MainAxisAlignmentEnd places children at the end.
	MainAxisAlignmentEnd
	// MainAxisAlignmentCenter centers children along the main axis.
	MainAxisAlignmentCenter
	// MainAxisAlignmentSpaceBetween distributes free space evenly between children.
	MainAxisAlignmentSpaceBetween
	// MainAxisAlignmentSpaceAround distributes free space evenly, with half-sized
	// gaps at the ends.
	MainAxisAlignmentSpaceAround
	// MainAxisAlignmentSpaceEvenly distributes free space evenly, including
	// before the first and after the last child.
	MainAxisAlignmentSpaceEvenly
)

var mainAxisNames = map[string]MainAxisAlignment{
	"start":        MainAxisAlignmentStart,
	"end":          MainAxisAlignmentEnd,
	"center":       MainAxisAlignmentCenter,
	"spaceBetween": MainAxisAlignmentSpaceBetween,
	"spaceAround":  MainAxisAlignmentSpaceAround,
	"spaceEvenly":  MainAxisAlignmentSpaceEvenly,
}

func (a MainAxisAlignment) String() string {
	for name, v := range mainAxisNames {
		if v == a {
			return name
		}
	}
	return fmt.Sprintf("MainAxisAlignment(%d)", int(a))
}

// ParseMainAxisAlignment resolves a prop value such as "spaceBetween".
func ParseMainAxisAlignment(s string) (MainAxisAlignment, bool) {
	a, ok := mainAxisNames[s]
	return a, ok
}

// CrossAxisAlignment controls how children are positioned along the cross axis.
type CrossAxisAlignment int

const (
	// CrossAxisAlignmentStart places children at the start of the cross axis.
	CrossAxisAlignmentStart CrossAxisAlignment = iota
	// CrossAxisAlignmentEnd places children at the end of the cross axis.
	CrossAxisAlignmentEnd
	// CrossAxisAlignmentCenter centers children along the cross axis.
	CrossAxisAlignmentCenter
	// CrossAxisAlignmentStretch stretches children to fill the cross axis.
	CrossAxisAlignmentStretch
)

var crossAxisNames = map[string]CrossAxisAlignment{
	"start":   CrossAxisAlignmentStart,
	"end":     CrossAxisAlignmentEnd,
	"center":  CrossAxisAlignmentCenter,
	"stretch": CrossAxisAlignmentStretch,
}

func (a CrossAxisAlignment) String() string {
	for name, v := range crossAxisNames {
		if v == a {
			return name
		}
	}
	return fmt.Sprintf("CrossAxisAlignment(%d)", int(a))
}

// ParseCrossAxisAlignment resolves a prop value such as "stretch".
func ParseCrossAxisAlignment(s string) (CrossAxisAlignment, bool) {
	a, ok := crossAxisNames[s]
	return a, ok
}

// MainAxisSize controls how much space the flex container takes along its main axis.
type MainAxisSize int

const (
	// MainAxisSizeMin sizes the container to fit its children (shrink-wrap).
	MainAxisSizeMin MainAxisSize = iota
	// MainAxisSizeMax expands to fill all available space along the main axis.
	MainAxisSizeMax
)

func (s MainAxisSize) String() string {
	switch s {
	case MainAxisSizeMin:
		return "min"
	case MainAxisSizeMax:
		return "max"
	default:
		return fmt.Sprintf("MainAxisSize(%d)", int(s))
	}
}

// renderFlex lays out children along one axis.
type renderFlex struct {
	layout.RenderBoxBase
	layout.ChildList
	direction      Axis
	alignment      MainAxisAlignment
	crossAlignment CrossAxisAlignment
	axisSize       MainAxisSize
	gap            float64
	warned         bool
}

func newRenderFlex(direction Axis) *renderFlex {
	r := &renderFlex{direction: direction}
	r.SetSelf(r)
	return r
}

func (r *renderFlex) SetChildren(children []layout.RenderObject) {
	r.ReplaceChildren(r, children)
}

func (r *renderFlex) Paint(ctx *layout.PaintContext) {
	ctx.PaintChildren(r)
}

func (r *renderFlex) mainSize(s graphics.Size) float64 {
	if r.direction == AxisHorizontal {
		return s.Width
	}
	return s.Height
}

func (r *renderFlex) crossSize(s graphics.Size) float64 {
	if r.direction == AxisHorizontal {
		return s.Height
	}
	return s.Width
}

// childConstraints builds constraints from main and cross ranges.
func (r *renderFlex) childConstraints(minMain, maxMain, minCross, maxCross float64) layout.Constraints {
	if r.direction == AxisHorizontal {
		return layout.Constraints{MinWidth: minMain, MaxWidth: maxMain, MinHeight: minCross, MaxHeight: maxCross}
	}
	return layout.Constraints{MinWidth: minCross, MaxWidth: maxCross, MinHeight: minMain, MaxHeight: maxMain}
}

func (r *renderFlex) PerformLayout() {
	c := r.Constraints()
	children := r.Children()

	var maxMain, minCross, maxCross float64
	if r.direction == AxisHorizontal {
		maxMain, minCross, maxCross = c.MaxWidth, c.MinHeight, c.MaxHeight
	} else {
		maxMain, minCross, maxCross = c.MaxHeight, c.MinWidth, c.MaxWidth
	}
	mainBounded := !math.IsInf(maxMain, 1)
	crossBounded := !math.IsInf(maxCross, 1)

	// Stretch needs a bounded cross axis to be tight.
	childMinCross := 0.0
	if r.crossAlignment == CrossAxisAlignmentStretch && crossBounded {
		childMinCross = maxCross
	}

	totalGap := 0.0
	if len(children) > 1 {
		totalGap = r.gap * float64(len(children)-1)
	}

	// Pass 1: inflexible children. A min-size flex measures them without a
	// main-axis limit so that fill-to-max children collapse to their content.
	inflexibleMax := maxMain
	if r.axisSize == MainAxisSizeMin {
		inflexibleMax = layout.Infinity
	}
	totalFlex := 0.0
	allocated := totalGap
	maxChildCross := 0.0
	for _, child := range children {
		flex := child.Base().Flex()
		if flex.Flex > 0 && mainBounded {
			totalFlex += flex.Flex
			continue
		}
		if flex.Flex > 0 && !r.warned {
			r.warned = true
			logging.Named("layout").Warn("flexible child in an unbounded main axis treated as inflexible",
				zap.Stringer("axis", r.direction), zap.Float64("flex", flex.Flex))
		}
		child.Layout(r.childConstraints(0, inflexibleMax, childMinCross, maxCross), true)
		size := child.Size()
		allocated += r.mainSize(size)
		maxChildCross = max(maxChildCross, r.crossSize(size))
	}

	// Pass 2: flexible children share what is left.
	if totalFlex > 0 {
		remaining := max(0, maxMain-allocated)
		for _, child := range children {
			flex := child.Base().Flex()
			if flex.Flex <= 0 {
				continue
			}
			share := remaining * flex.Flex / totalFlex
			minMain := 0.0
			if flex.Fit == layout.FlexFitTight {
				minMain = share
			}
			child.Layout(r.childConstraints(minMain, share, childMinCross, maxCross), true)
			size := child.Size()
			allocated += r.mainSize(size)
			maxChildCross = max(maxChildCross, r.crossSize(size))
		}
	}

	mainExtent := allocated
	if r.axisSize == MainAxisSizeMax && mainBounded {
		mainExtent = maxMain
	}
	crossExtent := max(maxChildCross, minCross)
	if r.crossAlignment == CrossAxisAlignmentStretch && crossBounded {
		crossExtent = maxCross
	}

	var size graphics.Size
	if r.direction == AxisHorizontal {
		size = c.Constrain(graphics.Size{Width: mainExtent, Height: crossExtent})
	} else {
		size = c.Constrain(graphics.Size{Width: crossExtent, Height: mainExtent})
	}
	r.SetSize(size)

	free := max(0, r.mainSize(size)-allocated)
	leading, between := computeSpacing(r.alignment, free, len(children))
	pos := leading
	for _, child := range children {
		childSize := child.Size()
		cross := crossAxisOffset(r.crossAlignment, r.crossSize(size), r.crossSize(childSize))
		if r.direction == AxisHorizontal {
			child.Base().SetOffset(graphics.Offset{X: pos, Y: cross})
		} else {
			child.Base().SetOffset(graphics.Offset{X: cross, Y: pos})
		}
		pos += r.mainSize(childSize) + between + r.gap
	}
}

// computeSpacing returns the space before the first child and the extra
// space between consecutive children.
func computeSpacing(alignment MainAxisAlignment, free float64, count int) (leading, between float64) {
	switch alignment {
	case MainAxisAlignmentEnd:
		return free, 0
	case MainAxisAlignmentCenter:
		return free / 2, 0
	case MainAxisAlignmentSpaceBetween:
		if count > 1 {
			return 0, free / float64(count-1)
		}
		return 0, 0
	case MainAxisAlignmentSpaceAround:
		if count > 0 {
			space := free / float64(count)
			return space / 2, space
		}
	case MainAxisAlignmentSpaceEvenly:
		if count > 0 {
			space := free / float64(count+1)
			return space, space
		}
	}
	return 0, 0
}

func crossAxisOffset(alignment CrossAxisAlignment, parentCross, childCross float64) float64 {
	switch alignment {
	case CrossAxisAlignmentCenter:
		return (parentCross - childCross) / 2
	case CrossAxisAlignmentEnd:
		return parentCross - childCross
	default:
		return 0
	}
}

// Flex lays out children along an axis. Row and Column fix the axis;
// Flex reads it from the "direction" prop.
//
// Props: direction, mainAxisAlignment, crossAxisAlignment, mainAxisSize
// ("min" or "max"), gap.
type Flex struct {
	passThrough
	render    *renderFlex
	fixedAxis bool
}

func newFlexWidget(direction Axis, fixed bool) *Flex {
	return &Flex{passThrough: newPassThrough(), render: newRenderFlex(direction), fixedAxis: fixed}
}

func newRow() core.Widget    { return newFlexWidget(AxisHorizontal, true) }
func newColumn() core.Widget { return newFlexWidget(AxisVertical, true) }
func newFlex() core.Widget   { return newFlexWidget(AxisHorizontal, false) }

func (w *Flex) RenderObject() layout.RenderObject { return w.render }

func (w *Flex) Configure(p core.Props) {
	r := w.render
	direction := r.direction
	if !w.fixedAxis {
		direction = AxisHorizontal
		if s := p.String("direction", ""); s != "" {
			if d, ok := ParseAxis(s); ok {
				direction = d
			} else {
				w.warnProp("direction", s)
			}
		}
	}

	alignment := MainAxisAlignmentStart
	if s := p.String("mainAxisAlignment", ""); s != "" {
		if a, ok := ParseMainAxisAlignment(s); ok {
			alignment = a
		} else {
			w.warnProp("mainAxisAlignment", s)
		}
	}
	cross := CrossAxisAlignmentStart
	if s := p.String("crossAxisAlignment", ""); s != "" {
		if a, ok := ParseCrossAxisAlignment(s); ok {
			cross = a
		} else {
			w.warnProp("crossAxisAlignment", s)
		}
	}
	axisSize := MainAxisSizeMin
	if p.String("mainAxisSize", "min") == "max" {
		axisSize = MainAxisSizeMax
	}
	gap := max(0, p.Float("gap", 0))

	changed := direction != r.direction || alignment != r.alignment ||
		cross != r.crossAlignment || axisSize != r.axisSize || gap != r.gap
	r.direction, r.alignment, r.crossAlignment, r.axisSize, r.gap = direction, alignment, cross, axisSize, gap
	markLayoutIf(changed, r)
}

func (w *Flex) warnProp(name, value string) {
	logging.Named("widgets").Warn("invalid prop value",
		zap.String("type", w.Type()), zap.String("key", w.Key()),
		zap.String("prop", name), zap.String("value", value))
}

// Flexible gives its child a share of the remaining space in a Row or
// Column. The share may be left partly unused (fit "loose").
type Flexible struct {
	proxyWidget
	fit layout.FlexFit
}

func newFlexible() core.Widget {
	return &Flexible{proxyWidget: proxyWidget{passThrough: newPassThrough(), render: newRenderProxy()}, fit: layout.FlexFitLoose}
}

// Expanded is a Flexible that fills its share (fit "tight").
func newExpanded() core.Widget {
	return &Flexible{proxyWidget: proxyWidget{passThrough: newPassThrough(), render: newRenderProxy()}, fit: layout.FlexFitTight}
}

// FlexDefaults implements core.FlexDefaulter.
func (w *Flexible) FlexDefaults() layout.FlexData {
	return layout.FlexData{Flex: 1, Fit: w.fit}
}
