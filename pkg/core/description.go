package core

import (
	"math"
	"strconv"

	"github.com/go-drift/weave/pkg/graphics"
)

// Description is the declarative input for one widget.
type Description struct {
	Type     string        `json:"type" yaml:"type" toml:"type"`
	Key      string        `json:"key,omitempty" yaml:"key,omitempty" toml:"key,omitempty"`
	Props    Props         `json:"props,omitempty" yaml:"props,omitempty" toml:"props,omitempty"`
	Children []Description `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

// Node is a shorthand for building descriptions in Go.
func Node(typ string, props Props, children ...Description) Description {
	return Description{Type: typ, Props: props, Children: children}
}

// Keyed returns d with its key set.
func (d Description) Keyed(key string) Description {
	d.Key = key
	return d
}

// Props holds a widget's configuration. Values come from decoded documents
// (numbers, strings, booleans, maps and lists) or from Go code.
type Props map[string]any

// Has reports whether name is set.
func (p Props) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// String returns a string prop or def.
func (p Props) String(name, def string) string {
	switch v := p[name].(type) {
	case string:
		return v
	case nil:
		return def
	default:
		if f, ok := toFloat(v); ok {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return def
	}
}

// Float returns a numeric prop or def. Numeric strings are accepted.
func (p Props) Float(name string, def float64) float64 {
	if f, ok := toFloat(p[name]); ok {
		return f
	}
	return def
}

// Int returns a numeric prop truncated to an int, or def.
func (p Props) Int(name string, def int) int {
	if f, ok := toFloat(p[name]); ok && !math.IsInf(f, 0) {
		return int(f)
	}
	return def
}

// Bool returns a boolean prop or def.
func (p Props) Bool(name string, def bool) bool {
	switch v := p[name].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Color returns a color prop given as graphics.Color or a color string.
func (p Props) Color(name string, def graphics.Color) graphics.Color {
	switch v := p[name].(type) {
	case graphics.Color:
		return v
	case string:
		if c, ok := graphics.ParseColor(v); ok {
			return c
		}
	}
	return def
}

// Alignment returns a named alignment, an {x, y} map, or def.
func (p Props) Alignment(name string, def graphics.Alignment) graphics.Alignment {
	switch v := p[name].(type) {
	case graphics.Alignment:
		return v
	case string:
		if a, ok := graphics.ParseAlignment(v); ok {
			return a
		}
	case map[string]any:
		m := Props(v)
		return graphics.Alignment{X: m.Float("x", def.X), Y: m.Float("y", def.Y)}
	}
	return def
}

// EdgeInsets accepts a single number, a [vertical, horizontal] or
// [top, right, bottom, left] list, or a map with left/top/right/bottom and
// horizontal/vertical entries.
func (p Props) EdgeInsets(name string) graphics.EdgeInsets {
	switch v := p[name].(type) {
	case graphics.EdgeInsets:
		return v
	case []any:
		vals := make([]float64, len(v))
		for i, item := range v {
			vals[i], _ = toFloat(item)
		}
		switch len(vals) {
		case 1:
			return graphics.EdgeInsetsAll(vals[0])
		case 2:
			return graphics.EdgeInsetsSymmetric(vals[1], vals[0])
		case 4:
			return graphics.EdgeInsets{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
		}
	case map[string]any:
		m := Props(v)
		h, vert := m.Float("horizontal", 0), m.Float("vertical", 0)
		return graphics.EdgeInsets{
			Left:   m.Float("left", h),
			Top:    m.Float("top", vert),
			Right:  m.Float("right", h),
			Bottom: m.Float("bottom", vert),
		}
	default:
		if f, ok := toFloat(v); ok {
			return graphics.EdgeInsetsAll(f)
		}
	}
	return graphics.EdgeInsets{}
}

// Map returns a nested props map, or nil.
func (p Props) Map(name string) Props {
	if m, ok := p[name].(map[string]any); ok {
		return Props(m)
	}
	if m, ok := p[name].(Props); ok {
		return m
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
