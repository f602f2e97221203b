package widgets

import (
	"math"

	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/graphics"
	"github.com/go-drift/weave/pkg/layout"
)

// renderText lays out and paints a block of text. Measurement goes through
// the pipeline owner's text measurer so sizes match the surface.
type renderText struct {
	layout.RenderBoxBase
	text     string
	style    graphics.TextStyle
	wrap     bool
	maxLines int
	laid     *graphics.TextLayout
}

func (r *renderText) PerformLayout() {
	c := r.Constraints()
	maxWidth := 0.0
	if r.wrap && c.HasBoundedWidth() {
		maxWidth = c.MaxWidth
	}
	laid := graphics.LayoutText(r.text, r.style, r.Owner().TextMeasurer(), maxWidth)
	if r.maxLines > 0 && len(laid.Lines) > r.maxLines {
		laid.Lines = laid.Lines[:r.maxLines]
		width := 0.0
		for _, line := range laid.Lines {
			width = math.Max(width, line.Width)
		}
		laid.Size = graphics.Size{Width: width, Height: laid.LineHeight * float64(r.maxLines)}
	}
	r.laid = laid
	r.SetSize(c.Constrain(laid.Size))
}

func (r *renderText) Paint(ctx *layout.PaintContext) {
	if r.laid == nil {
		return
	}
	for i, line := range r.laid.Lines {
		if line.Text == "" {
			continue
		}
		ctx.Canvas.DrawText(line.Text, graphics.Offset{Y: float64(i) * r.laid.LineHeight}, r.laid.Style)
	}
}

// Text displays a string. Props: text, color, fontSize, fontFamily,
// fontWeight ("bold" or a number), wrap (default true), maxLines.
type Text struct {
	core.WidgetBase
	render *renderText
}

func newText() core.Widget {
	r := &renderText{wrap: true}
	r.SetSelf(r)
	return &Text{render: r}
}

func (w *Text) RenderObject() layout.RenderObject { return w.render }

func (w *Text) Configure(p core.Props) {
	r := w.render
	style := graphics.TextStyle{
		Color:      p.Color("color", graphics.ColorBlack),
		FontFamily: p.String("fontFamily", ""),
		FontSize:   p.Float("fontSize", graphics.DefaultFontSize),
		FontWeight: graphics.FontWeightNormal,
	}
	switch weight := p.String("fontWeight", ""); weight {
	case "bold":
		style.FontWeight = graphics.FontWeightBold
	case "", "normal":
	default:
		style.FontWeight = graphics.FontWeight(p.Int("fontWeight", int(graphics.FontWeightNormal)))
	}
	text := p.String("text", "")
	wrap := p.Bool("wrap", true)
	maxLines := max(0, p.Int("maxLines", 0))

	layoutChanged := text != r.text || wrap != r.wrap || maxLines != r.maxLines ||
		style.FontSize != r.style.FontSize || style.FontFamily != r.style.FontFamily ||
		style.FontWeight != r.style.FontWeight
	paintChanged := style.Color != r.style.Color

	r.text, r.style, r.wrap, r.maxLines = text, style, wrap, maxLines
	if r.laid != nil {
		r.laid.Style = style
	}
	markLayoutIf(layoutChanged, r)
	markPaintIf(paintChanged, r)
}
