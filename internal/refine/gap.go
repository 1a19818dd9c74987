package refine

// enforceGaps implements Phase 2.5: any two regions that still overlap
// horizontally must end up with a vertical gap of at least MinRegionGap.
// Each region retreats by half the deficit, so the correction is symmetric
// and idempotent. Pairs are visited in index order, once.
func (p *Pipeline) enforceGaps(regions []Region) {
	for i := 0; i < len(regions); i++ {
		for j := i + 1; j < len(regions); j++ {
			a, b := &regions[i], &regions[j]
			if a.BBox.HorizontalOverlap(b.BBox) <= 0 {
				continue
			}

			upper, lower := a, b
			if regionIsUpper(b.BBox, a.BBox) {
				upper, lower = b, a
			}

			gap := lower.BBox.Y1 - upper.BBox.Y2
			if gap >= p.cfg.MinRegionGap {
				continue
			}
			deficit := p.cfg.MinRegionGap - gap
			upper.BBox.Y2 -= deficit / 2
			lower.BBox.Y1 += deficit / 2
		}
	}
}
