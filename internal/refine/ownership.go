package refine

import "math"

// owns decides whether a fragment contested between two overlapping regions
// belongs to mine rather than other.
//
// The rule has two levels. First a coverage split: the vertical midpoint of
// the regions' overlapping span tentatively divides ownership, and the
// fragment's visual span is measured against each region's post-split
// territory. When the naive verdict goes against mine, a line-spacing
// override is consulted: the fragment's nearest text neighbors above and
// below (matched by horizontal overlap, regardless of region) are compared
// by baseline distance, and if the nearer neighbor sits unambiguously inside
// one region, ownership follows that neighbor. The override exists because
// plain coverage misassigns a line that visually belongs to the paragraph
// below it whenever the box above clips slightly into that line.
func (p *Pipeline) owns(f TextFragment, mine, other Rect, fragments []TextFragment) bool {
	top := math.Max(mine.Y1, other.Y1)
	bottom := math.Min(mine.Y2, other.Y2)
	if bottom <= top {
		// No shared vertical span: nothing to contest.
		return true
	}
	mid := (top + bottom) / 2

	myCov := p.postSplitCoverage(f, mine, other, mid)
	otherCov := p.postSplitCoverage(f, other, mine, mid)

	if otherCov <= myCov {
		return true
	}

	// Coverage says the other region. Check whether line spacing disagrees.
	switch p.nearestNeighborRegion(f, mine, other, fragments) {
	case neighborMine:
		return true
	case neighborOther:
		return false
	default:
		return false // coverage verdict stands
	}
}

// postSplitCoverage measures the fragment's visual span against the part of
// r's vertical extent on r's side of the midpoint split with o.
func (p *Pipeline) postSplitCoverage(f TextFragment, r, o Rect, mid float64) float64 {
	lo, hi := r.Y1, r.Y2
	if regionIsUpper(r, o) {
		hi = math.Min(hi, mid)
	} else {
		lo = math.Max(lo, mid)
	}
	return spanOverlap(lo, hi, p.visualTop(f), p.visualBottom(f))
}

// regionIsUpper reports whether r sits above o. Top edges break the tie
// first, then bottom edges.
func regionIsUpper(r, o Rect) bool {
	if r.Y1 != o.Y1 {
		return r.Y1 < o.Y1
	}
	return r.Y2 < o.Y2
}

type neighborVerdict int

const (
	neighborAmbiguous neighborVerdict = iota
	neighborMine
	neighborOther
)

// nearestNeighborRegion finds the fragment's closest text neighbor above and
// below by baseline distance and reports which region the nearer one
// unambiguously belongs to. Equidistant or ambiguous neighbors yield
// neighborAmbiguous, letting the coverage verdict stand.
func (p *Pipeline) nearestNeighborRegion(f TextFragment, mine, other Rect, fragments []TextFragment) neighborVerdict {
	base := f.Baseline()
	aboveDist := math.Inf(1)
	belowDist := math.Inf(1)
	var above, below *TextFragment

	for i := range fragments {
		g := &fragments[i]
		if g.Str == "" || *g == f {
			continue
		}
		// Neighbors are matched by horizontal overlap, not by region.
		if spanOverlap(f.X, f.Right(), g.X, g.Right()) <= 0 {
			continue
		}
		d := g.Baseline() - base
		if d < -p.cfg.MicroClusterTolerance && -d < aboveDist {
			aboveDist = -d
			above = g
		}
		if d > p.cfg.MicroClusterTolerance && d < belowDist {
			belowDist = d
			below = g
		}
	}

	var nearer *TextFragment
	switch {
	case above == nil && below == nil:
		return neighborAmbiguous
	case above == nil:
		nearer = below
	case below == nil:
		nearer = above
	case math.Abs(aboveDist-belowDist) < p.cfg.MicroClusterTolerance:
		// Equidistant: the coverage-based verdict stands.
		return neighborAmbiguous
	case aboveDist < belowDist:
		nearer = above
	default:
		nearer = below
	}

	inMine := p.fragmentInside(*nearer, mine) && !p.fragmentTouches(*nearer, other)
	inOther := p.fragmentInside(*nearer, other) && !p.fragmentTouches(*nearer, mine)
	switch {
	case inMine && !inOther:
		return neighborMine
	case inOther && !inMine:
		return neighborOther
	default:
		return neighborAmbiguous
	}
}

// fragmentInside reports whether the fragment's visual span lies entirely
// within the region's vertical extent while owning horizontal overlap.
func (p *Pipeline) fragmentInside(f TextFragment, r Rect) bool {
	if f.Width <= 0 {
		return false
	}
	h := spanOverlap(r.X1, r.X2, f.X, f.Right())
	if h < f.Width*p.cfg.HorizontalOwnFraction {
		return false
	}
	return p.visualTop(f) >= r.Y1 && p.visualBottom(f) <= r.Y2
}

// fragmentTouches reports any geometric contact between the fragment's
// visual bounds and the region.
func (p *Pipeline) fragmentTouches(f TextFragment, r Rect) bool {
	h := spanOverlap(r.X1, r.X2, f.X, f.Right())
	v := spanOverlap(r.Y1, r.Y2, p.visualTop(f), p.visualBottom(f))
	return h > 0 && v > 0
}
