package graphics

import (
	"math"
	"testing"
)

func TestRectIntersectAndUnion(t *testing.T) {
	a := RectFromLTWH(0, 0, 100, 100)
	b := RectFromLTWH(50, 50, 100, 100)

	if got, want := a.Intersect(b), (Rect{50, 50, 100, 100}); got != want {
		t.Errorf("Intersect = %v, want %v", got, want)
	}
	if got, want := a.Union(b), (Rect{0, 0, 150, 150}); got != want {
		t.Errorf("Union = %v, want %v", got, want)
	}
	if !a.Overlaps(b) {
		t.Error("expected overlap")
	}
	c := RectFromLTWH(100, 0, 10, 10)
	if a.Overlaps(c) {
		t.Error("touching edges should not overlap")
	}
	if got := a.Intersect(c); !got.IsEmpty() {
		t.Errorf("Intersect of disjoint rects = %v, want empty", got)
	}
	if got := (Rect{}).Union(c); got != c {
		t.Errorf("empty Union = %v, want %v", got, c)
	}
}

func TestRectContainsEdges(t *testing.T) {
	r := RectFromLTWH(10, 10, 20, 20)
	tests := []struct {
		p    Offset
		want bool
	}{
		{Offset{10, 10}, true},
		{Offset{29.9, 29.9}, true},
		{Offset{30, 15}, false},
		{Offset{9.9, 15}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestMatrixInvertRoundTrip(t *testing.T) {
	m := Translation(30, 40).Rotate(math.Pi / 6).Scale(2, 3)
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("expected invertible matrix")
	}
	p := Offset{7, -3}
	back := inv.Apply(m.Apply(p))
	if !floatEqual(back.X, p.X) || !floatEqual(back.Y, p.Y) {
		t.Errorf("round trip = %v, want %v", back, p)
	}
	if _, ok := Scaling(0, 1).Invert(); ok {
		t.Error("expected singular matrix")
	}
}

func TestMatrixTransformRect(t *testing.T) {
	m := Translation(10, 0).Rotate(math.Pi / 2)
	got := m.TransformRect(RectFromLTWH(0, 0, 20, 10))
	want := Rect{Left: 0, Top: 0, Right: 10, Bottom: 20}
	if !floatEqual(got.Left, want.Left) || !floatEqual(got.Top, want.Top) ||
		!floatEqual(got.Right, want.Right) || !floatEqual(got.Bottom, want.Bottom) {
		t.Errorf("TransformRect = %v, want %v", got, want)
	}
}

func TestAlignmentInscribe(t *testing.T) {
	parent := Size{100, 50}
	child := Size{20, 10}
	if got := AlignCenter.Inscribe(child, parent); got != (Offset{40, 20}) {
		t.Errorf("center = %v", got)
	}
	if got := AlignBottomRight.Inscribe(child, parent); got != (Offset{80, 40}) {
		t.Errorf("bottomRight = %v", got)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#fff", ColorWhite, true},
		{"#ff0000", ColorRed, true},
		{"#80ff0000", Color(0x80FF0000), true},
		{"Blue", ColorBlue, true},
		{"#12", 0, false},
		{"nope", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseColor(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLayoutTextWraps(t *testing.T) {
	m := FixedMeasurer{Advance: 10, LineHeight: 12}
	layout := LayoutText("hello wide world", TextStyle{}, m, 60)
	want := []string{"hello", "wide", "world"}
	if len(layout.Lines) != len(want) {
		t.Fatalf("lines = %v, want %v", layout.Lines, want)
	}
	for i, line := range layout.Lines {
		if line.Text != want[i] {
			t.Errorf("line %d = %q, want %q", i, line.Text, want[i])
		}
	}
	if layout.Size != (Size{Width: 50, Height: 36}) {
		t.Errorf("size = %v", layout.Size)
	}

	unwrapped := LayoutText("hello wide world", TextStyle{}, m, math.Inf(1))
	if len(unwrapped.Lines) != 1 || unwrapped.Size.Width != 160 {
		t.Errorf("unwrapped = %+v", unwrapped)
	}
}
