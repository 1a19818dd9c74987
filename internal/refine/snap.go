package refine

import "math"

// snapRegion implements Phase 1 for one region: a bounded expansion loop
// that grows the box to the visual boundary of the text it owns, then a trim
// pass that shrinks it back to the tightest union of owned fragments. The
// sibling boxes are consulted for ownership but never mutated here.
//
// Ownership is judged against the region's proposed box throughout, not the
// working box: a box that grows during the passes still contests fragments
// with the extent the proposer gave it, keeping the verdicts stable from
// pass to pass.
func (p *Pipeline) snapRegion(idx int, regions []Region, fragments []TextFragment) {
	box := regions[idx].BBox

	for pass := 0; pass < p.cfg.SnapMaxPasses; pass++ {
		changed := false
		for _, f := range fragments {
			if f.Str == "" || f.Width <= 0 {
				continue
			}

			h := spanOverlap(box.X1, box.X2, f.X, f.Right())
			v := spanOverlap(box.Y1, box.Y2, f.Y, p.visualBottom(f))
			if v <= 0 {
				continue
			}

			// Horizontal expansion needs at least half the fragment's own
			// width inside the box, so a thin sliver overlap cannot pull in
			// an adjacent unrelated block.
			if h >= f.Width*p.cfg.HorizontalOwnFraction {
				if f.X < box.X1 {
					box.X1 = f.X
					changed = true
				}
				if f.Right() > box.X2 {
					box.X2 = f.Right()
					changed = true
				}
			}

			// Vertical expansion fires on any nonzero vertical overlap, but
			// only for fragments this region actually owns. The box snaps to
			// the visual-text estimate rather than the full em-box.
			if h <= 0 || !p.fragmentOwnedBy(f, idx, regions, fragments) {
				continue
			}
			top := p.visualTop(f)
			bottom := p.visualBottom(f)
			if top < box.Y1 {
				box.Y1 = top
				changed = true
			}
			if bottom > box.Y2 {
				box.Y2 = bottom
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	// Trim pass: the proposer may have drawn the box larger than the text.
	// Recompute the tightest union of fragments that still pass the same
	// overlap and ownership tests against the expanded box.
	if tight, ok := p.ownedUnion(box, idx, regions, fragments); ok {
		box = tight
	}

	regions[idx].BBox = box
}

// ownedUnion returns the union of visual bounds of all fragments owned by
// the region under the given box. ok is false when no fragment qualifies,
// in which case the box is left as-is by the caller.
func (p *Pipeline) ownedUnion(box Rect, idx int, regions []Region, fragments []TextFragment) (Rect, bool) {
	tight := Rect{X1: math.Inf(1), Y1: math.Inf(1), X2: math.Inf(-1), Y2: math.Inf(-1)}
	found := false

	for _, f := range fragments {
		if f.Str == "" || f.Width <= 0 {
			continue
		}
		h := spanOverlap(box.X1, box.X2, f.X, f.Right())
		if h < f.Width*p.cfg.HorizontalOwnFraction {
			continue
		}
		v := spanOverlap(box.Y1, box.Y2, f.Y, p.visualBottom(f))
		if v <= 0 {
			continue
		}
		if !p.fragmentOwnedBy(f, idx, regions, fragments) {
			continue
		}

		tight.X1 = math.Min(tight.X1, f.X)
		tight.X2 = math.Max(tight.X2, f.Right())
		tight.Y1 = math.Min(tight.Y1, p.visualTop(f))
		tight.Y2 = math.Max(tight.Y2, p.visualBottom(f))
		found = true
	}

	return tight, found
}

// fragmentOwnedBy checks the fragment against every sibling that also
// overlaps it; the region keeps the fragment only when it wins ownership
// against all such competitors.
func (p *Pipeline) fragmentOwnedBy(f TextFragment, idx int, regions []Region, fragments []TextFragment) bool {
	mine := regions[idx].BBox
	for j := range regions {
		if j == idx {
			continue
		}
		other := regions[j].BBox
		h := spanOverlap(other.X1, other.X2, f.X, f.Right())
		v := spanOverlap(other.Y1, other.Y2, f.Y, p.visualBottom(f))
		if h <= 0 || v <= 0 {
			continue
		}
		if !p.owns(f, mine, other, fragments) {
			return false
		}
	}
	return true
}
