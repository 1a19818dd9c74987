package refine

import (
	"sort"
	"strings"
)

// formatColumn implements Phase 3b for one column's hits: adaptive line
// grouping, narrow-line repair, paragraph-break detection, and intra-line
// gap serialization, ending with symbol glyph mapping.
func (p *Pipeline) formatColumn(regionID string, hits []Hit, trace *Trace) string {
	if len(hits) == 0 {
		return ""
	}

	threshold, source := p.lineThreshold(hits)
	trace.recordThreshold(regionID, threshold, source)

	lines := p.groupLines(hits, threshold)
	lines = p.repairNarrowLines(lines, threshold)

	gaps := baselineGaps(lines)

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			if p.isParagraphBreak(gaps, i-1, threshold) {
				b.WriteString("\n\n")
			} else {
				b.WriteString("\n")
			}
		}
		p.writeLine(&b, line)
	}
	return b.String()
}

// baselineGaps returns the baseline distance between consecutive lines.
func baselineGaps(lines []*TextLine) []float64 {
	if len(lines) < 2 {
		return nil
	}
	gaps := make([]float64, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		gaps[i-1] = lines[i].Baseline - lines[i-1].Baseline
	}
	return gaps
}

// isParagraphBreak decides locally whether the gap at index i separates
// paragraphs. The gap is compared against the lower tail of a small window
// of nearby gaps scaled by a fixed ratio; a global median would smear
// together documents that mix dense and sparse sections, so the window
// stays local.
func (p *Pipeline) isParagraphBreak(gaps []float64, i int, threshold float64) bool {
	if i < 0 || i >= len(gaps) {
		return false
	}
	gap := gaps[i]
	if gap <= threshold*1.2 {
		return false
	}

	lo := max(0, i-p.cfg.ParagraphGapWindow)
	hi := min(len(gaps), i+p.cfg.ParagraphGapWindow+1)
	window := append([]float64(nil), gaps[lo:hi]...)
	if len(window) < 2 {
		return false
	}
	sort.Float64s(window)
	idx := int(p.cfg.ParagraphGapPercentile * float64(len(window)-1))
	reference := window[idx]
	if reference <= 0 {
		return false
	}
	return gap > reference*p.cfg.ParagraphGapRatio
}

// writeLine serializes one line's hits in left-to-right order. Small gaps
// between adjacent hits are glyph spacing and ignored, moderate gaps become
// a space, large table-like gaps become a tab. A large negative gap means
// two visual lines were wrongly merged; as a safety net it forces a break.
func (p *Pipeline) writeLine(b *strings.Builder, line *TextLine) {
	hits := append([]Hit(nil), line.Hits...)
	sort.Slice(hits, func(i, j int) bool { return hits[i].X < hits[j].X })

	for i, h := range hits {
		if i > 0 {
			gap := h.X - hits[i-1].Right
			switch {
			case gap < -p.cfg.NegativeGapBreak:
				b.WriteString("\n")
			case gap < p.cfg.SpaceGapMin:
				// touching or kerned; no separator
			case gap < p.cfg.TabGapMin:
				b.WriteString(" ")
			default:
				b.WriteString("\t")
			}
		}
		b.WriteString(p.mapSymbols(h))
	}
}
