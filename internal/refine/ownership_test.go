package refine

import "testing"

func TestOwnsNoSharedVerticalSpan(t *testing.T) {
	p := NewPipeline()
	mine := Rect{X1: 0, Y1: 0, X2: 100, Y2: 50}
	other := Rect{X1: 0, Y1: 60, X2: 100, Y2: 100}
	f := frag("word", 10, 20, 50, 10)

	if !p.owns(f, mine, other, []TextFragment{f}) {
		t.Error("owns() = false with no contested span")
	}
}

func TestOwnsCoverageSplit(t *testing.T) {
	p := NewPipeline()
	mine := Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}
	other := Rect{X1: 0, Y1: 80, X2: 100, Y2: 200}
	// Shared span is [80,100], midpoint 90. The fragment's visual span
	// (93.5-104.5) sits entirely below the midpoint.
	f := frag("word", 10, 92, 50, 10)
	fragments := []TextFragment{f}

	if p.owns(f, mine, other, fragments) {
		t.Error("owns() = true for the upper region despite losing the coverage split")
	}
	if !p.owns(f, other, mine, fragments) {
		t.Error("owns() = false for the lower region despite winning the coverage split")
	}
}

// A box clipping slightly into the first line of the paragraph below wins the
// raw coverage comparison, but the line-spacing override reassigns the line to
// the paragraph it visually belongs to.
func TestOwnsNeighborOverride(t *testing.T) {
	p := NewPipeline()
	fragments := []TextFragment{
		frag("alpha one", 100, 80, 200, 10),
		frag("alpha two", 100, 92, 200, 10),
		frag("alpha three", 100, 104, 200, 10),
		frag("bravo one", 100, 130, 200, 10),
		frag("bravo two", 100, 142, 200, 10),
		frag("bravo three", 100, 154, 200, 10),
	}
	a := Rect{X1: 95, Y1: 75, X2: 305, Y2: 135}
	b := Rect{X1: 95, Y1: 133, X2: 305, Y2: 170}
	contested := fragments[3] // "bravo one"

	if p.owns(contested, a, b, fragments) {
		t.Error("owns() = true for the region above; line spacing puts the line below")
	}
	if !p.owns(contested, b, a, fragments) {
		t.Error("owns() = false for the region the line visually belongs to")
	}
}

func TestRegionIsUpper(t *testing.T) {
	tests := []struct {
		name string
		r, o Rect
		want bool
	}{
		{"higher top", Rect{Y1: 10, Y2: 50}, Rect{Y1: 20, Y2: 60}, true},
		{"lower top", Rect{Y1: 30, Y2: 50}, Rect{Y1: 20, Y2: 60}, false},
		{"tie broken by bottom", Rect{Y1: 10, Y2: 40}, Rect{Y1: 10, Y2: 60}, true},
		{"identical", Rect{Y1: 10, Y2: 40}, Rect{Y1: 10, Y2: 40}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := regionIsUpper(tt.r, tt.o); got != tt.want {
				t.Errorf("regionIsUpper() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNearestNeighborRegion(t *testing.T) {
	p := NewPipeline()
	mine := Rect{X1: 0, Y1: 0, X2: 400, Y2: 120}
	other := Rect{X1: 0, Y1: 110, X2: 400, Y2: 230}

	neighborBelow := frag("below", 50, 130, 300, 10) // baseline 140, inside other
	contested := frag("line", 50, 110, 300, 10)      // baseline 120

	t.Run("nearer neighbor below", func(t *testing.T) {
		fragments := []TextFragment{
			frag("above", 50, 60, 300, 10), // baseline 70, distance 50
			contested,
			neighborBelow, // distance 20
		}
		if got := p.nearestNeighborRegion(contested, mine, other, fragments); got != neighborOther {
			t.Errorf("nearestNeighborRegion() = %v, want neighborOther", got)
		}
	})

	t.Run("no neighbors", func(t *testing.T) {
		if got := p.nearestNeighborRegion(contested, mine, other, []TextFragment{contested}); got != neighborAmbiguous {
			t.Errorf("nearestNeighborRegion() = %v, want neighborAmbiguous", got)
		}
	})

	t.Run("equidistant neighbors", func(t *testing.T) {
		fragments := []TextFragment{
			frag("above", 50, 90, 300, 10), // baseline 100, distance 20
			contested,
			neighborBelow, // baseline 140, distance 20
		}
		if got := p.nearestNeighborRegion(contested, mine, other, fragments); got != neighborAmbiguous {
			t.Errorf("nearestNeighborRegion() = %v, want neighborAmbiguous", got)
		}
	})

	t.Run("no horizontal overlap is no neighbor", func(t *testing.T) {
		fragments := []TextFragment{
			contested,
			frag("sidebar", 500, 130, 100, 10), // disjoint in x
		}
		if got := p.nearestNeighborRegion(contested, mine, other, fragments); got != neighborAmbiguous {
			t.Errorf("nearestNeighborRegion() = %v, want neighborAmbiguous", got)
		}
	})
}

func TestFragmentInside(t *testing.T) {
	p := NewPipeline()
	r := Rect{X1: 0, Y1: 100, X2: 400, Y2: 200}

	tests := []struct {
		name string
		f    TextFragment
		want bool
	}{
		{"inside", frag("in", 50, 110, 100, 10), true},
		{"visual bottom pokes out", frag("deep", 50, 190, 100, 10), false},
		{"visual top above", frag("high", 50, 95, 100, 10), false},
		{"thin horizontal overlap", frag("edge", 380, 110, 100, 10), false},
		{"zero width", TextFragment{Str: "x", X: 50, Y: 110, Width: 0, Height: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.fragmentInside(tt.f, r); got != tt.want {
				t.Errorf("fragmentInside() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFragmentTouches(t *testing.T) {
	p := NewPipeline()
	r := Rect{X1: 0, Y1: 100, X2: 400, Y2: 200}

	if !p.fragmentTouches(frag("graze", 390, 190, 100, 10), r) {
		t.Error("fragmentTouches() = false for a grazing fragment")
	}
	if p.fragmentTouches(frag("apart", 500, 300, 100, 10), r) {
		t.Error("fragmentTouches() = true for a disjoint fragment")
	}
}
