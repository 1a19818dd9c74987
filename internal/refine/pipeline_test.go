package refine

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frag builds a test fragment. Baseline is y+h.
func frag(str string, x, y, w, h float64) TextFragment {
	return TextFragment{Str: str, X: x, Y: y, Width: w, Height: h}
}

func TestRunEmptyRegions(t *testing.T) {
	p := NewPipeline()
	out := p.Run(nil, []TextFragment{frag("x", 0, 0, 10, 10)}, nil)
	assert.Empty(t, out)
}

func TestRunNoFragments(t *testing.T) {
	p := NewPipeline()
	regions := []Region{{ID: "r1", BBox: Rect{X1: 100, Y1: 100, X2: 300, Y2: 200}}}
	p.Run(regions, nil, nil)

	assert.Equal(t, Rect{X1: 100, Y1: 100, X2: 300, Y2: 200}, regions[0].BBox)
	assert.Empty(t, regions[0].Text)
}

func TestRunDegenerateBox(t *testing.T) {
	p := NewPipeline()
	regions := []Region{{ID: "r1", BBox: Rect{X1: 300, Y1: 200, X2: 100, Y2: 100}}}
	fragments := []TextFragment{frag("text", 100, 100, 50, 10)}

	// Must not panic; a degenerate box overlaps nothing.
	p.Run(regions, fragments, nil)
	assert.Empty(t, regions[0].Text)
}

// A fragment lying entirely inside the proposed box: the box tightens around
// it and the text is extracted verbatim.
func TestRunTightensAroundContainedFragment(t *testing.T) {
	p := NewPipeline()
	regions := []Region{{ID: "r1", BBox: Rect{X1: 100, Y1: 100, X2: 300, Y2: 140}}}
	fragments := []TextFragment{frag("Revenue grew 12%", 100, 102, 190, 30)}

	p.Run(regions, fragments, nil)

	box := regions[0].BBox
	assert.Equal(t, "Revenue grew 12%", regions[0].Text)

	// The corrected box stays within the proposal and covers the glyphs.
	assert.GreaterOrEqual(t, box.X1, 100.0)
	assert.LessOrEqual(t, box.X2, 300.0)
	assert.GreaterOrEqual(t, box.Y1, 100.0)
	assert.LessOrEqual(t, box.Y2, 140.0)
	assert.InDelta(t, 100.0, box.X1, 1e-9)
	assert.InDelta(t, 290.0, box.X2, 1e-9)
	// Visual top/bottom: 102 + 30*0.15 and 132 + 30*0.25.
	assert.InDelta(t, 106.5, box.Y1, 1e-9)
	assert.InDelta(t, 139.5, box.Y2, 1e-9)
}

// A proposed box that clips into the next paragraph's first line must give
// that line up: line spacing puts it with the paragraph below.
func TestRunStackedParagraphsOwnership(t *testing.T) {
	p := NewPipeline()
	fragments := []TextFragment{
		frag("alpha one", 100, 80, 200, 10),   // baseline 90
		frag("alpha two", 100, 92, 200, 10),   // baseline 102
		frag("alpha three", 100, 104, 200, 10), // baseline 114
		frag("bravo one", 100, 130, 200, 10),  // baseline 140
		frag("bravo two", 100, 142, 200, 10),  // baseline 152
		frag("bravo three", 100, 154, 200, 10), // baseline 164
	}
	regions := []Region{
		{ID: "a", BBox: Rect{X1: 95, Y1: 75, X2: 305, Y2: 135}}, // clips into "bravo one"
		{ID: "b", BBox: Rect{X1: 95, Y1: 133, X2: 305, Y2: 170}},
	}

	p.Run(regions, fragments, nil)

	require.Contains(t, regions[1].Text, "bravo one")
	assert.NotContains(t, regions[0].Text, "bravo one")
	assert.Equal(t, "alpha one\nalpha two\nalpha three", regions[0].Text)

	// Vertically disjoint with at least the minimum gap.
	gap := regions[1].BBox.Y1 - regions[0].BBox.Y2
	assert.GreaterOrEqual(t, gap, p.cfg.MinRegionGap-1e-9)
}

// Sibling boxes with a 10-unit overlap band and one
// contested line visually nearer the lower box's body.
func TestRunOverlapBandResolvedByLineSpacing(t *testing.T) {
	p := NewPipeline()
	fragments := []TextFragment{
		frag("upper one", 50, 52, 900, 10),   // baseline 62
		frag("upper two", 50, 64, 900, 10),   // baseline 74
		frag("upper three", 50, 76, 900, 10), // baseline 86
		frag("bridge line", 50, 110, 900, 10), // baseline 120, nearer the lower body
		frag("lower one", 50, 130, 900, 10),  // baseline 140
		frag("lower two", 50, 142, 900, 10),  // baseline 152
	}
	regions := []Region{
		{ID: "up", BBox: Rect{X1: 0, Y1: 0, X2: 1000, Y2: 120}},
		{ID: "low", BBox: Rect{X1: 0, Y1: 110, X2: 1000, Y2: 230}},
	}

	p.Run(regions, fragments, nil)

	up, low := regions[0], regions[1]

	// The upper bottom retreated past the contested line; the lower top
	// advanced to include it. No residual overlap.
	assert.Less(t, up.BBox.Y2, 110.0)
	assert.LessOrEqual(t, low.BBox.Y1, 111.5+1e-9)
	assert.Greater(t, low.BBox.Y1-up.BBox.Y2, 0.0)

	assert.NotContains(t, up.Text, "bridge line")
	assert.Contains(t, low.Text, "bridge line")
	assert.Equal(t, 1, strings.Count(up.Text+"\n"+low.Text, "bridge line"))
}

// Full-pipeline run splitting a region into two columns: five lines per side,
// no shared baselines, a clean whitespace channel at x=500. The left column
// serializes completely before the right one.
func TestRunTwoColumnRegion(t *testing.T) {
	p := NewPipeline()

	var fragments []TextFragment
	for i := 0; i < 5; i++ {
		fragments = append(fragments,
			frag("left"+string(rune('1'+i)), 100, 92+float64(i)*20, 350, 8),  // baselines 100..180
			frag("right"+string(rune('1'+i)), 550, 102+float64(i)*20, 350, 8), // baselines 110..190
		)
	}
	regions := []Region{{ID: "r1", BBox: Rect{X1: 80, Y1: 80, X2: 920, Y2: 210}}}

	trace := NewTrace()
	p.Run(regions, fragments, trace)

	text := regions[0].Text
	require.NotEmpty(t, text)

	wantLeft := "left1\nleft2\nleft3\nleft4\nleft5"
	wantRight := "right1\nright2\nright3\nright4\nright5"
	assert.Equal(t, wantLeft+"\n\n"+wantRight, text)

	rt := trace.Regions["r1"]
	require.NotNil(t, rt)
	assert.Equal(t, 2, rt.Columns)
	assert.InDelta(t, 500.0, rt.ColumnSeparator, 16.0)
	assert.Equal(t, 10, rt.HitCount)
}

// A proposer sometimes drops a narrow box inside a wide one. The wide box
// wins the overlap strip and must keep the text beyond the contained
// sibling's far edge; only the loser collapses.
func TestRunWideRegionKeepsTextBeyondContainedSibling(t *testing.T) {
	p := NewPipeline()
	fragments := []TextFragment{
		frag("alpha", 20, 40, 150, 10),
		frag("strip", 430, 40, 140, 10),
		frag("keep one", 620, 40, 170, 10),
		frag("keep two", 820, 40, 160, 10),
	}
	regions := []Region{
		{ID: "wide", BBox: Rect{X1: 0, Y1: 0, X2: 1000, Y2: 100}},
		{ID: "inner", BBox: Rect{X1: 400, Y1: 0, X2: 600, Y2: 100}},
	}

	p.Run(regions, fragments, nil)

	wide, inner := regions[0], regions[1]
	assert.Equal(t, "alpha\tstrip\tkeep one\tkeep two", wide.Text)
	assert.InDelta(t, 980.0, wide.BBox.X2, 1e-9)
	assert.Empty(t, inner.Text)
	assert.LessOrEqual(t, wide.BBox.HorizontalOverlap(inner.BBox), 0.0)

	joined := wide.Text + "\n" + inner.Text
	assert.Equal(t, 1, strings.Count(joined, "keep one"))
	assert.Equal(t, 1, strings.Count(joined, "keep two"))
}

// Re-running the pipeline on its own output changes nothing.
func TestRunIdempotent(t *testing.T) {
	p := NewPipeline()
	fragments := []TextFragment{
		frag("alpha one", 100, 80, 200, 10),
		frag("alpha two", 100, 92, 200, 10),
		frag("alpha three", 100, 104, 200, 10),
		frag("bravo one", 100, 130, 200, 10),
		frag("bravo two", 100, 142, 200, 10),
		frag("bravo three", 100, 154, 200, 10),
	}
	regions := []Region{
		{ID: "a", BBox: Rect{X1: 95, Y1: 75, X2: 305, Y2: 135}},
		{ID: "b", BBox: Rect{X1: 95, Y1: 133, X2: 305, Y2: 170}},
	}

	p.Run(regions, fragments, nil)
	first := []Rect{regions[0].BBox, regions[1].BBox}
	firstText := []string{regions[0].Text, regions[1].Text}

	p.Run(regions, fragments, nil)
	assert.Equal(t, first[0], regions[0].BBox)
	assert.Equal(t, first[1], regions[1].BBox)
	assert.Equal(t, firstText[0], regions[0].Text)
	assert.Equal(t, firstText[1], regions[1].Text)
}

// Properties checked after a full run: any two regions that still share
// horizontal extent are vertically separated by at least the configured
// minimum, and every fragment sitting wholly inside one final box while
// clear of the other surfaces exactly once, in that region's text.
func TestRunMinGapProperty(t *testing.T) {
	p := NewPipeline()
	rng := rand.New(rand.NewSource(7))

	// Synthetic fragment grid: lines of three words every 12 units. Every
	// word is unique so text occurrences can be counted.
	var fragments []TextFragment
	word := 0
	for y := 50.0; y < 950; y += 12 {
		for _, x := range []float64{50, 320, 640} {
			fragments = append(fragments, frag(fmt.Sprintf("w%03d", word), x, y, 250, 10))
			word++
		}
	}

	for iter := 0; iter < 50; iter++ {
		x1 := rng.Float64() * 600
		y1 := rng.Float64() * 600
		a := Rect{X1: x1, Y1: y1, X2: x1 + 100 + rng.Float64()*300, Y2: y1 + 50 + rng.Float64()*300}
		// Force overlap with the first box.
		b := Rect{
			X1: a.X1 + (rng.Float64()-0.5)*150,
			Y1: a.Y1 + (rng.Float64()-0.5)*150,
		}
		b.X2 = b.X1 + 100 + rng.Float64()*300
		b.Y2 = b.Y1 + 50 + rng.Float64()*300

		regions := []Region{
			{ID: "a", BBox: a},
			{ID: "b", BBox: b},
		}
		p.Run(regions, fragments, nil)

		ra, rb := regions[0].BBox, regions[1].BBox

		joined := regions[0].Text + "\n" + regions[1].Text
		for _, f := range fragments {
			var owner string
			switch {
			case fullyInside(p, f, ra) && clearOf(p, f, rb):
				owner = regions[0].Text
			case fullyInside(p, f, rb) && clearOf(p, f, ra):
				owner = regions[1].Text
			default:
				continue
			}
			if !strings.Contains(owner, f.Str) {
				t.Fatalf("iteration %d: %q missing from its owning region (a=%+v b=%+v)", iter, f.Str, ra, rb)
			}
			if n := strings.Count(joined, f.Str); n != 1 {
				t.Fatalf("iteration %d: %q surfaced %d times, want 1 (a=%+v b=%+v)", iter, f.Str, n, ra, rb)
			}
		}

		if ra.HorizontalOverlap(rb) <= 1e-9 {
			continue
		}
		upper, lower := ra, rb
		if regionIsUpper(rb, ra) {
			upper, lower = rb, ra
		}
		gap := lower.Y1 - upper.Y2
		if gap < p.cfg.MinRegionGap-1e-9 {
			t.Fatalf("iteration %d: gap %.3f < %.3f (a=%+v b=%+v)", iter, gap, p.cfg.MinRegionGap, ra, rb)
		}
	}
}

// fullyInside reports whether the fragment's glyph extent and visual span
// both lie inside the box.
func fullyInside(p *Pipeline, f TextFragment, r Rect) bool {
	return f.X >= r.X1 && f.Right() <= r.X2 &&
		p.visualTop(f) >= r.Y1 && p.visualBottom(f) <= r.Y2
}

// clearOf reports no contact between the fragment's visual bounds and the box.
func clearOf(p *Pipeline, f TextFragment, r Rect) bool {
	return spanOverlap(r.X1, r.X2, f.X, f.Right()) <= 0 ||
		spanOverlap(r.Y1, r.Y2, p.visualTop(f), p.visualBottom(f)) <= 0
}

func TestCollectHitsHalfInsideRule(t *testing.T) {
	p := NewPipeline()
	box := Rect{X1: 100, Y1: 100, X2: 300, Y2: 200}

	tests := []struct {
		name string
		f    TextFragment
		want bool
	}{
		{"fully inside", frag("in", 120, 120, 50, 10), true},
		{"horizontal sliver", frag("edge", 290, 120, 100, 10), false}, // 10 of 100 inside
		{"horizontal majority", frag("most", 240, 120, 100, 10), true}, // 60 of 100 inside
		{"above the box", frag("up", 120, 20, 50, 10), false},
		{"empty string", frag("", 120, 120, 50, 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := p.collectHits(box, []TextFragment{tt.f})
			if got := len(hits) == 1; got != tt.want {
				t.Errorf("collectHits() included=%v, want %v", got, tt.want)
			}
		})
	}
}

func TestDescenderFractionByScript(t *testing.T) {
	p := NewPipeline()

	latin := frag("hello", 0, 0, 50, 10)
	cjk := frag("日本語テスト", 0, 0, 60, 10)
	mixed := frag("ab日", 0, 0, 30, 10) // majority Latin

	assert.Equal(t, p.cfg.LatinDescenderFraction, p.descenderFraction(latin))
	assert.Equal(t, p.cfg.CJKDescenderFraction, p.descenderFraction(cjk))
	assert.Equal(t, p.cfg.LatinDescenderFraction, p.descenderFraction(mixed))
}
