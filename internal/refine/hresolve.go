package refine

import (
	"math"
	"sort"
)

// resolveHorizontalOverlaps implements Phase 2.25. After snapping, two
// side-by-side boxes may still share horizontal extent. For each vertically
// overlapping pair the phase decides whether the pair describes one coherent
// block (the same lines flow across the seam) or two genuinely distinct
// blocks, then pushes the losing edge so the pair no longer shares any
// horizontal extent.
//
// Pairs are processed in index order with no fixed-point repeat; for 3+-way
// mutual overlaps the outcome is order-dependent (see DESIGN.md).
func (p *Pipeline) resolveHorizontalOverlaps(regions []Region, fragments []TextFragment) {
	for i := 0; i < len(regions); i++ {
		for j := i + 1; j < len(regions); j++ {
			p.resolvePair(&regions[i], &regions[j], fragments)
		}
	}
}

func (p *Pipeline) resolvePair(a, b *Region, fragments []TextFragment) {
	if a.BBox.HorizontalOverlap(b.BBox) <= 0 || a.BBox.VerticalOverlap(b.BBox) <= 0 {
		return
	}

	ox1 := math.Max(a.BBox.X1, b.BBox.X1)
	ox2 := math.Min(a.BBox.X2, b.BBox.X2)

	left, right := a, b
	if b.BBox.X1 < a.BBox.X1 {
		left, right = b, a
	}

	// Baselines of fragments sitting strictly in each side's exclusive
	// (non-overlapping) zone. The overlap strip itself is the disputed
	// evidence, so it contributes to neither set.
	leftBase := p.exclusiveBaselines(left.BBox, left.BBox.X1, ox1, fragments)
	rightBase := p.exclusiveBaselines(right.BBox, ox2, right.BBox.X2, fragments)

	if p.sharedBaselineFraction(leftBase, rightBase) >= p.cfg.SameBlockBaselineShare {
		p.splitStripAtMidpoint(left, right, ox1, ox2, fragments)
		return
	}

	// Distinct blocks: the whole strip goes to whichever region has more
	// covering text, and only the loser's edge is pushed out of the strip.
	// The winner keeps any extent beyond the strip; a loser contained in
	// the strip collapses to a degenerate box, which later phases tolerate.
	covLeft := p.stripCoverage(left.BBox, ox1, ox2, fragments)
	covRight := p.stripCoverage(right.BBox, ox1, ox2, fragments)
	if covLeft >= covRight {
		right.BBox.X1 = ox2
	} else {
		left.BBox.X2 = ox1
	}
}

// splitStripAtMidpoint handles the same-block case: the strip is divided at
// its horizontal midpoint and each half is awarded to the side with more
// text coverage there, which fixes the shared boundary. Only reachable for
// staggered pairs: a nonempty exclusive zone on each side forces
// left.X2 == ox2 and right.X1 == ox1, so neither boundary assignment can
// discard extent outside the strip.
func (p *Pipeline) splitStripAtMidpoint(left, right *Region, ox1, ox2 float64, fragments []TextFragment) {
	mid := (ox1 + ox2) / 2
	leftHalfToLeft := p.stripCoverage(left.BBox, ox1, mid, fragments) >= p.stripCoverage(right.BBox, ox1, mid, fragments)
	rightHalfToLeft := p.stripCoverage(left.BBox, mid, ox2, fragments) >= p.stripCoverage(right.BBox, mid, ox2, fragments)

	var boundary float64
	switch {
	case leftHalfToLeft && rightHalfToLeft:
		boundary = ox2
	case !leftHalfToLeft && !rightHalfToLeft:
		boundary = ox1
	default:
		boundary = mid
	}
	left.BBox.X2 = boundary
	right.BBox.X1 = boundary
}

// exclusiveBaselines collects the baselines of fragments whose horizontal
// centers fall strictly inside [x1,x2) and whose visual span lies within the
// region's vertical extent.
func (p *Pipeline) exclusiveBaselines(r Rect, x1, x2 float64, fragments []TextFragment) []float64 {
	if x2 <= x1 {
		return nil
	}
	var baselines []float64
	for _, f := range fragments {
		if f.Str == "" {
			continue
		}
		cx := f.X + f.Width/2
		if cx <= x1 || cx >= x2 {
			continue
		}
		mid := (p.visualTop(f) + p.visualBottom(f)) / 2
		if mid < r.Y1 || mid > r.Y2 {
			continue
		}
		baselines = append(baselines, f.Baseline())
	}
	return clusterValues(baselines, p.cfg.SameLineThreshold)
}

// sharedBaselineFraction returns how much of the smaller side's baseline set
// reappears (within the same-line threshold) in the larger side's set. Empty
// sides give 0: no evidence of shared flow.
func (p *Pipeline) sharedBaselineFraction(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	smaller, larger := a, b
	if len(b) < len(a) {
		smaller, larger = b, a
	}
	matched := 0
	for _, s := range smaller {
		for _, l := range larger {
			if math.Abs(s-l) <= p.cfg.SameLineThreshold {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(smaller))
}

// stripCoverage sums the horizontal overlap, within [x1,x2], of fragments
// whose visual centers lie inside the region's vertical extent.
func (p *Pipeline) stripCoverage(r Rect, x1, x2 float64, fragments []TextFragment) float64 {
	total := 0.0
	for _, f := range fragments {
		if f.Str == "" {
			continue
		}
		mid := (p.visualTop(f) + p.visualBottom(f)) / 2
		if mid < r.Y1 || mid > r.Y2 {
			continue
		}
		total += spanOverlap(x1, x2, f.X, f.Right())
	}
	return total
}

// clusterValues merges values closer than tol into single representatives,
// preserving ascending order.
func clusterValues(values []float64, tol float64) []float64 {
	if len(values) == 0 {
		return values
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var out []float64
	out = append(out, sorted[0])
	for _, v := range sorted[1:] {
		if v-out[len(out)-1] > tol {
			out = append(out, v)
		}
	}
	return out
}
