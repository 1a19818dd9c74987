package refine

import "testing"

func TestSpanOverlap(t *testing.T) {
	tests := []struct {
		name           string
		a1, a2, b1, b2 float64
		want           float64
	}{
		{"partial overlap", 0, 10, 5, 20, 5},
		{"containment", 0, 100, 30, 40, 10},
		{"disjoint", 0, 10, 20, 30, 0},
		{"touching edges", 0, 10, 10, 20, 0},
		{"inverted first interval", 10, 0, 0, 20, 0},
		{"inverted second interval", 0, 20, 30, 10, 0},
		{"identical", 5, 15, 5, 15, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := spanOverlap(tt.a1, tt.a2, tt.b1, tt.b2); got != tt.want {
				t.Errorf("spanOverlap(%g,%g,%g,%g) = %g, want %g", tt.a1, tt.a2, tt.b1, tt.b2, got, tt.want)
			}
		})
	}
}

func TestRectDimensions(t *testing.T) {
	r := Rect{X1: 10, Y1: 20, X2: 110, Y2: 70}
	if r.Width() != 100 {
		t.Errorf("Width() = %g, want 100", r.Width())
	}
	if r.Height() != 50 {
		t.Errorf("Height() = %g, want 50", r.Height())
	}
	if !r.IsValid() {
		t.Error("IsValid() = false for a proper box")
	}

	degenerate := Rect{X1: 100, Y1: 100, X2: 50, Y2: 100}
	if degenerate.Width() != 0 || degenerate.Height() != 0 {
		t.Errorf("degenerate box dimensions = %g x %g, want 0 x 0", degenerate.Width(), degenerate.Height())
	}
	if degenerate.IsValid() {
		t.Error("IsValid() = true for a degenerate box")
	}
}

func TestRectOverlaps(t *testing.T) {
	a := Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}
	b := Rect{X1: 80, Y1: 90, X2: 200, Y2: 150}

	if got := a.HorizontalOverlap(b); got != 20 {
		t.Errorf("HorizontalOverlap() = %g, want 20", got)
	}
	if got := a.VerticalOverlap(b); got != 10 {
		t.Errorf("VerticalOverlap() = %g, want 10", got)
	}

	c := Rect{X1: 150, Y1: 150, X2: 300, Y2: 300}
	if got := a.HorizontalOverlap(c); got != 0 {
		t.Errorf("HorizontalOverlap() disjoint = %g, want 0", got)
	}
}

func TestTextFragmentGeometry(t *testing.T) {
	f := TextFragment{Str: "word", X: 100, Y: 200, Width: 50, Height: 12}
	if f.Right() != 150 {
		t.Errorf("Right() = %g, want 150", f.Right())
	}
	if f.Baseline() != 212 {
		t.Errorf("Baseline() = %g, want 212", f.Baseline())
	}
}

func TestTextFragmentIsCJK(t *testing.T) {
	tests := []struct {
		name string
		str  string
		want bool
	}{
		{"latin", "hello", false},
		{"empty", "", false},
		{"han", "漢字", true},
		{"hiragana", "ひらがな", true},
		{"hangul", "한국어", true},
		{"half and half", "漢a", false}, // needs a strict majority
		{"cjk majority", "漢字a", true},
		{"spaces ignored", "漢 字", true},
		{"latin majority", "abc漢", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := TextFragment{Str: tt.str}
			if got := f.isCJK(); got != tt.want {
				t.Errorf("isCJK(%q) = %v, want %v", tt.str, got, tt.want)
			}
		})
	}
}

func TestHitWidth(t *testing.T) {
	h := Hit{X: 10, Right: 60}
	if h.Width() != 50 {
		t.Errorf("Width() = %g, want 50", h.Width())
	}
}

func TestTextLineExtent(t *testing.T) {
	l := &TextLine{Hits: []Hit{
		{X: 200, Right: 300},
		{X: 100, Right: 180},
	}}
	if l.minX() != 100 {
		t.Errorf("minX() = %g, want 100", l.minX())
	}
	if l.maxRight() != 300 {
		t.Errorf("maxRight() = %g, want 300", l.maxRight())
	}
	if l.width() != 200 {
		t.Errorf("width() = %g, want 200", l.width())
	}

	empty := &TextLine{}
	if empty.width() != 0 {
		t.Errorf("empty line width() = %g, want 0", empty.width())
	}
}
