package refine

import "testing"

func TestSnapRegionExpandsToClippedLine(t *testing.T) {
	p := NewPipeline()
	fragments := []TextFragment{
		frag("body line", 110, 105, 180, 10), // visual span 106.5-117.5
		frag("tail line", 120, 135, 100, 10), // clipped by the proposed bottom
	}
	regions := []Region{{ID: "r1", BBox: Rect{X1: 100, Y1: 100, X2: 300, Y2: 140}}}

	p.snapRegion(0, regions, fragments)

	box := regions[0].BBox
	// Expanded to the tail line's visual bottom, then trimmed to the union.
	assertRect(t, box, Rect{X1: 110, Y1: 106.5, X2: 290, Y2: 147.5})
}

func TestSnapRegionSliverCannotPullHorizontally(t *testing.T) {
	p := NewPipeline()
	fragments := []TextFragment{
		frag("owned", 110, 120, 100, 10),
		// Only 5 of 100 units inside the box: an adjacent block's edge.
		frag("neighbor", 295, 140, 100, 10),
	}
	regions := []Region{{ID: "r1", BBox: Rect{X1: 100, Y1: 100, X2: 300, Y2: 200}}}

	p.snapRegion(0, regions, fragments)

	box := regions[0].BBox
	if box.X2 > 210 {
		t.Errorf("box pulled toward sliver fragment: X2 = %g", box.X2)
	}
	assertRect(t, box, Rect{X1: 110, Y1: 121.5, X2: 210, Y2: 132.5})
}

func TestSnapRegionNoOwnedFragments(t *testing.T) {
	p := NewPipeline()
	regions := []Region{{ID: "r1", BBox: Rect{X1: 100, Y1: 100, X2: 300, Y2: 200}}}

	p.snapRegion(0, regions, nil)
	assertRect(t, regions[0].BBox, Rect{X1: 100, Y1: 100, X2: 300, Y2: 200})

	// Fragments exist but none overlap the box.
	p.snapRegion(0, regions, []TextFragment{frag("far", 500, 500, 50, 10)})
	assertRect(t, regions[0].BBox, Rect{X1: 100, Y1: 100, X2: 300, Y2: 200})
}

// Expansion pulls the box down across a sibling's top edge. The contest for
// the edge line is judged against the proposed box, which never overlapped
// the sibling, so the region keeps the line even though its working box now
// reaches into contested territory.
func TestSnapRegionOwnershipUsesProposedBox(t *testing.T) {
	p := NewPipeline()
	fragments := []TextFragment{
		frag("alpha line", 100, 30, 200, 10),
		frag("tall head", 100, 45, 200, 46), // visual bottom 102.5 pulls the box down
		frag("edge line", 100, 97, 200, 10), // overlaps the sibling, not the proposal
		frag("beta line", 100, 130, 200, 10),
	}
	regions := []Region{
		{ID: "a", BBox: Rect{X1: 100, Y1: 20, X2: 300, Y2: 55}},
		{ID: "b", BBox: Rect{X1: 100, Y1: 100, X2: 300, Y2: 200}},
	}

	p.snapRegion(0, regions, fragments)

	assertRect(t, regions[0].BBox, Rect{X1: 100, Y1: 31.5, X2: 300, Y2: 109.5})
	assertRect(t, regions[1].BBox, Rect{X1: 100, Y1: 100, X2: 300, Y2: 200})
}

func TestSnapRegionTrimsOversizedBox(t *testing.T) {
	p := NewPipeline()
	fragments := []TextFragment{
		frag("only line", 200, 300, 150, 10),
	}
	regions := []Region{{ID: "r1", BBox: Rect{X1: 0, Y1: 0, X2: 1000, Y2: 1000}}}

	p.snapRegion(0, regions, fragments)
	assertRect(t, regions[0].BBox, Rect{X1: 200, Y1: 301.5, X2: 350, Y2: 312.5})
}

func TestOwnedUnionSkipsEmptyStrings(t *testing.T) {
	p := NewPipeline()
	regions := []Region{{ID: "r1", BBox: Rect{X1: 0, Y1: 0, X2: 1000, Y2: 1000}}}
	fragments := []TextFragment{
		{Str: "", X: 100, Y: 100, Width: 50, Height: 10},
		{Str: "real", X: 200, Y: 200, Width: 0, Height: 10}, // zero width
	}

	if _, ok := p.ownedUnion(regions[0].BBox, 0, regions, fragments); ok {
		t.Error("ownedUnion() should find nothing among empty and zero-width fragments")
	}
}

func assertRect(t *testing.T, got, want Rect) {
	t.Helper()
	const eps = 1e-9
	if diff := got.X1 - want.X1; diff > eps || diff < -eps {
		t.Errorf("X1 = %g, want %g", got.X1, want.X1)
	}
	if diff := got.Y1 - want.Y1; diff > eps || diff < -eps {
		t.Errorf("Y1 = %g, want %g", got.Y1, want.Y1)
	}
	if diff := got.X2 - want.X2; diff > eps || diff < -eps {
		t.Errorf("X2 = %g, want %g", got.X2, want.X2)
	}
	if diff := got.Y2 - want.Y2; diff > eps || diff < -eps {
		t.Errorf("Y2 = %g, want %g", got.Y2, want.Y2)
	}
}
