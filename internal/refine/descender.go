package refine

import "math"

// compensateDescenders implements Phase 2.75. Snapped bottoms sit at the
// visual-text estimate, which can still clip deep descenders of the last
// line. For each region the tallest fragment whose baseline rests on the
// current bottom edge dictates the extension; the bottom never advances past
// a horizontally overlapping neighbor's top minus the minimum gap. This runs
// after every box-mutating phase so nothing can later undo it.
func (p *Pipeline) compensateDescenders(regions []Region, fragments []TextFragment) {
	for i := range regions {
		r := &regions[i]

		var tallest *TextFragment
		for k := range fragments {
			f := &fragments[k]
			if f.Str == "" || f.Width <= 0 {
				continue
			}
			if math.Abs(f.Baseline()-r.BBox.Y2) > p.cfg.BaselineSnapTolerance+f.Height*p.cfg.LatinDescenderFraction {
				continue
			}
			if spanOverlap(r.BBox.X1, r.BBox.X2, f.X, f.Right()) < f.Width*p.cfg.HorizontalOwnFraction {
				continue
			}
			if tallest == nil || f.Height > tallest.Height {
				tallest = f
			}
		}
		if tallest == nil {
			continue
		}

		bottom := tallest.Baseline() + tallest.Height*p.descenderFraction(*tallest)
		if bottom <= r.BBox.Y2 {
			continue
		}

		// Never invade a horizontally overlapping neighbor below.
		limit := math.Inf(1)
		for j := range regions {
			if j == i {
				continue
			}
			o := regions[j].BBox
			if r.BBox.HorizontalOverlap(o) <= 0 {
				continue
			}
			if o.Y1 >= r.BBox.Y2 && o.Y1-p.cfg.MinRegionGap < limit {
				limit = o.Y1 - p.cfg.MinRegionGap
			}
		}

		if next := math.Min(bottom, limit); next > r.BBox.Y2 {
			r.BBox.Y2 = next
		}
	}
}
