package graphics

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultFontSize is used when no font size is specified.
const DefaultFontSize = 13

// FontWeight represents a numeric font weight.
type FontWeight int

const (
	FontWeightNormal FontWeight = 400
	FontWeightBold   FontWeight = 700
)

// TextStyle describes how text should be rendered.
type TextStyle struct {
	Color      Color
	FontFamily string
	FontSize   float64
	FontWeight FontWeight
}

// TextMetrics is the measured extent of a single line of text.
type TextMetrics struct {
	Width  float64
	Height float64
	// Ascent is the distance from the top of the line box to the baseline.
	Ascent float64
}

// TextMeasurer measures single-line text for a given style.
// Surfaces implement it so layout can size text without drawing.
type TextMeasurer interface {
	MeasureText(text string, style TextStyle) TextMetrics
}

// TextLine is a single laid-out line of text.
type TextLine struct {
	Text  string
	Width float64
}

// TextLayout contains measured lines for a block of text.
type TextLayout struct {
	Text       string
	Style      TextStyle
	Size       Size
	LineHeight float64
	Ascent     float64
	Lines      []TextLine
}

// LayoutText breaks text into lines no wider than maxWidth and measures them.
// A non-positive or infinite maxWidth disables wrapping.
func LayoutText(text string, style TextStyle, measurer TextMeasurer, maxWidth float64) *TextLayout {
	if style.FontSize <= 0 {
		style.FontSize = DefaultFontSize
	}
	probe := measurer.MeasureText("M", style)
	lineHeight := probe.Height
	measure := func(s string) float64 {
		return measurer.MeasureText(s, style).Width
	}
	lines := layoutLines(text, maxWidth, measure)
	width := 0.0
	for _, line := range lines {
		width = math.Max(width, line.Width)
	}
	return &TextLayout{
		Text:       text,
		Style:      style,
		Size:       Size{Width: width, Height: lineHeight * float64(len(lines))},
		LineHeight: lineHeight,
		Ascent:     probe.Ascent,
		Lines:      lines,
	}
}

func layoutLines(text string, maxWidth float64, measure func(string) float64) []TextLine {
	if maxWidth < 0 || math.IsInf(maxWidth, 0) || math.IsNaN(maxWidth) {
		maxWidth = 0
	}
	paragraphs := strings.Split(text, "\n")
	lines := make([]TextLine, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		if paragraph == "" {
			lines = append(lines, TextLine{})
			continue
		}
		if maxWidth == 0 {
			lines = append(lines, TextLine{Text: paragraph, Width: measure(paragraph)})
			continue
		}
		for _, line := range wrapParagraph(paragraph, maxWidth, measure) {
			lines = append(lines, TextLine{Text: line, Width: measure(line)})
		}
	}
	return lines
}

// wrapParagraph breaks at the last whitespace that fits, or mid-word when a
// single word is wider than maxWidth.
func wrapParagraph(text string, maxWidth float64, measure func(string) float64) []string {
	var lines []string
	start := 0
	for start < len(text) {
		lastBreak, lastFit := -1, -1
		for i := start; i < len(text); {
			r, size := utf8.DecodeRuneInString(text[i:])
			next := i + size
			if measure(text[start:next]) > maxWidth {
				break
			}
			lastFit = next
			if unicode.IsSpace(r) {
				lastBreak = next
			}
			i = next
		}
		if lastFit == -1 {
			_, size := utf8.DecodeRuneInString(text[start:])
			lastFit = start + size
		}
		cut := lastFit
		if lastFit < len(text) && lastBreak > start && lastBreak < lastFit {
			cut = lastBreak
		}
		lines = append(lines, strings.TrimRightFunc(text[start:cut], unicode.IsSpace))
		start = cut
		for start < len(text) {
			r, size := utf8.DecodeRuneInString(text[start:])
			if !unicode.IsSpace(r) {
				break
			}
			start += size
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// FixedMeasurer measures text as a fixed advance per rune. Useful for tests
// and for cell-based surfaces.
type FixedMeasurer struct {
	Advance    float64
	LineHeight float64
}

// MeasureText implements TextMeasurer.
func (m FixedMeasurer) MeasureText(text string, style TextStyle) TextMetrics {
	advance, height := m.Advance, m.LineHeight
	if advance == 0 {
		advance = 1
	}
	if height == 0 {
		height = 1
	}
	return TextMetrics{
		Width:  float64(utf8.RuneCountInString(text)) * advance,
		Height: height,
		Ascent: height * 0.8,
	}
}
