package refine

import (
	"math"
	"sort"
)

// splitColumns implements Phase 3a. It returns either the hits unchanged
// (single column) or a left/right partition when statistical evidence shows
// two independently flowing text blocks share one box.
//
// Candidate separators come from two independent sources: per-line largest
// gaps clustered across lines by the gap's right edge, and low-occupancy
// bands of a coarse horizontal histogram. Every candidate is tested with the
// baseline-alignment hypothesis: text in real columns wraps independently,
// so lines rarely share baselines across the seam and most merged lines end
// up "exclusive" to one side. The candidate with the highest exclusive
// fraction above the threshold wins; otherwise the lowest-occupancy band
// gets one stricter re-check before the region is declared single-column.
func (p *Pipeline) splitColumns(regionID string, hits []Hit, trace *Trace) [][]Hit {
	single := [][]Hit{hits}
	if len(hits) < 2*p.cfg.MinColumnLines {
		trace.recordColumns(regionID, 1, 0, 0)
		return single
	}

	threshold, _ := p.lineThreshold(hits)
	lines := p.groupLines(hits, threshold)
	if len(lines) < p.cfg.MinColumnLines {
		trace.recordColumns(regionID, 1, 0, 0)
		return single
	}

	minX, maxX := hitExtent(hits)
	if maxX-minX <= 0 {
		trace.recordColumns(regionID, 1, 0, 0)
		return single
	}

	candidates := p.gapClusterCandidates(lines)
	occCandidates, lowest := p.occupancyCandidates(lines, minX, maxX)
	candidates = append(candidates, occCandidates...)

	bestX, bestFrac := 0.0, -1.0
	for _, x := range candidates {
		frac, ok := p.evaluateSeparator(hits, lines, x, minX, maxX, threshold)
		if ok && frac > bestFrac {
			bestX, bestFrac = x, frac
		}
	}

	if bestFrac >= p.cfg.ExclusiveLineThreshold {
		left, right := partitionHits(hits, bestX)
		trace.recordColumns(regionID, 2, bestX, bestFrac)
		return [][]Hit{left, right}
	}

	// Stricter fallback on the single most promising whitespace band.
	if !math.IsNaN(lowest) {
		if frac, ok := p.evaluateSeparator(hits, lines, lowest, minX, maxX, threshold); ok && frac >= p.cfg.FallbackExclusiveShare {
			left, right := partitionHits(hits, lowest)
			trace.recordColumns(regionID, 2, lowest, frac)
			return [][]Hit{left, right}
		}
	}

	trace.recordColumns(regionID, 1, 0, 0)
	return single
}

// gapClusterCandidates finds, per line, the largest horizontal gap between
// adjacent hits and clusters those gaps across lines by the position of the
// gap's right edge. A stable cluster marks a recurring column boundary; the
// candidate separator sits just left of the cluster's median right edge.
func (p *Pipeline) gapClusterCandidates(lines []*TextLine) []float64 {
	type gap struct{ left, right float64 }
	var gaps []gap

	for _, l := range lines {
		if len(l.Hits) < 2 {
			continue
		}
		sorted := append([]Hit(nil), l.Hits...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

		best := gap{}
		width := 0.0
		for i := 1; i < len(sorted); i++ {
			w := sorted[i].X - sorted[i-1].Right
			if w > width {
				width = w
				best = gap{left: sorted[i-1].Right, right: sorted[i].X}
			}
		}
		if width >= p.cfg.MinSeparatorGap {
			gaps = append(gaps, best)
		}
	}
	if len(gaps) < p.cfg.MinColumnLines {
		return nil
	}

	sort.Slice(gaps, func(i, j int) bool { return gaps[i].right < gaps[j].right })

	var candidates []float64
	start := 0
	for i := 1; i <= len(gaps); i++ {
		if i == len(gaps) || gaps[i].right-gaps[i-1].right > p.cfg.SeparatorClusterTolerance {
			if i-start >= p.cfg.MinColumnLines {
				cluster := gaps[start:i]
				rights := make([]float64, len(cluster))
				for k, g := range cluster {
					rights[k] = g.right
				}
				// Sit just inside the gap so right-column hits stay right.
				candidates = append(candidates, median(rights)-1.0)
			}
			start = i
		}
	}
	return candidates
}

// occupancyCandidates builds a coarse horizontal occupancy histogram over
// the region: each bin counts the lines whose hits cover it. Contiguous
// bands touched by far fewer lines than the total mark candidate gaps.
// Returns the candidate centers and the center of the single lowest-
// occupancy band (NaN when none qualifies), used by the fallback re-check.
func (p *Pipeline) occupancyCandidates(lines []*TextLine, minX, maxX float64) ([]float64, float64) {
	bins := p.cfg.OccupancyBins
	binW := (maxX - minX) / float64(bins)
	if binW <= 0 {
		return nil, math.NaN()
	}

	occupancy := make([]int, bins)
	for _, l := range lines {
		covered := make([]bool, bins)
		for _, h := range l.Hits {
			lo := int((h.X - minX) / binW)
			hi := int((h.Right - minX) / binW)
			for b := max(lo, 0); b <= hi && b < bins; b++ {
				covered[b] = true
			}
		}
		for b, c := range covered {
			if c {
				occupancy[b]++
			}
		}
	}

	ceiling := int(float64(len(lines)) * p.cfg.LowOccupancyFraction)
	var candidates []float64
	lowestCenter := math.NaN()
	lowestScore := math.MaxInt

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		width := float64(end-start) * binW
		if width >= p.cfg.MinSeparatorGap {
			center := minX + (float64(start)+float64(end-start)/2)*binW
			// Interior bands only; the page margins are not separators.
			if start > 0 && end < p.cfg.OccupancyBins {
				candidates = append(candidates, center)
				score := 0
				for b := start; b < end; b++ {
					score += occupancy[b]
				}
				if score < lowestScore {
					lowestScore = score
					lowestCenter = center
				}
			}
		}
		start = -1
	}

	for b := 0; b < bins; b++ {
		if occupancy[b] <= ceiling {
			if start < 0 {
				start = b
			}
		} else {
			flush(b)
		}
	}
	flush(bins)

	return candidates, lowestCenter
}

// evaluateSeparator tests the baseline-alignment hypothesis for one
// candidate x-position and returns the exclusive-line fraction. ok is false
// when a guard rejects the candidate: a hit straddles the position (the
// split would slice through a line with no real gap there), either side's
// span is too narrow relative to the whole (indentation and bullet gaps
// masquerade as separators), either side covers too few lines, or the
// smaller side's text volume is negligible (stray bullet glyphs).
func (p *Pipeline) evaluateSeparator(hits []Hit, lines []*TextLine, x, minX, maxX, threshold float64) (float64, bool) {
	const edgeSlack = 0.5

	leftChars, rightChars := 0, 0
	leftMin, leftMax := math.Inf(1), math.Inf(-1)
	rightMin, rightMax := math.Inf(1), math.Inf(-1)

	for _, h := range hits {
		switch {
		case h.Right <= x+edgeSlack:
			leftChars += len([]rune(h.Str))
			leftMin = math.Min(leftMin, h.X)
			leftMax = math.Max(leftMax, h.Right)
		case h.X >= x-edgeSlack:
			rightChars += len([]rune(h.Str))
			rightMin = math.Min(rightMin, h.X)
			rightMax = math.Max(rightMax, h.Right)
		default:
			return 0, false // slices through a hit
		}
	}
	if leftChars == 0 || rightChars == 0 {
		return 0, false
	}

	total := maxX - minX
	if leftMax-leftMin < total*p.cfg.MinSideSpanFraction ||
		rightMax-rightMin < total*p.cfg.MinSideSpanFraction {
		return 0, false
	}
	smaller := min(leftChars, rightChars)
	if float64(smaller) < float64(leftChars+rightChars)*p.cfg.MinSideCharFraction {
		return 0, false
	}

	exclusive, leftLines, rightLines := 0, 0, 0
	for _, l := range lines {
		hasLeft, hasRight := false, false
		for _, h := range l.Hits {
			if h.Right <= x+edgeSlack {
				hasLeft = true
			} else {
				hasRight = true
			}
		}
		if hasLeft {
			leftLines++
		}
		if hasRight {
			rightLines++
		}
		if hasLeft != hasRight {
			exclusive++
		}
	}
	if leftLines < p.cfg.MinColumnLines || rightLines < p.cfg.MinColumnLines {
		return 0, false
	}

	return float64(exclusive) / float64(len(lines)), true
}

// partitionHits splits hits at x into left and right columns, each sorted
// by baseline then x.
func partitionHits(hits []Hit, x float64) ([]Hit, []Hit) {
	var left, right []Hit
	for _, h := range hits {
		if h.Right <= x+0.5 {
			left = append(left, h)
		} else {
			right = append(right, h)
		}
	}
	return left, right
}

// hitExtent returns the horizontal extent covered by the hits.
func hitExtent(hits []Hit) (float64, float64) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, h := range hits {
		minX = math.Min(minX, h.X)
		maxX = math.Max(maxX, h.Right)
	}
	return minX, maxX
}
