package refine

import (
	"math"
	"sort"
)

// lineThreshold computes the adaptive same-line threshold for one column's
// hits. Baselines are micro-clustered at a very tight tolerance; clusters
// holding at least two hits are "stable" lines (single-hit clusters, typical
// of inline hyperlinks set in a different font, are noise and excluded). The
// minimum spacing between stable lines is the document's real line pitch;
// scaled down it replaces the default threshold whenever that yields a
// tighter, safer value. Returns the threshold and its derivation path.
func (p *Pipeline) lineThreshold(hits []Hit) (float64, string) {
	baselines := make([]float64, 0, len(hits))
	for _, h := range hits {
		baselines = append(baselines, h.Baseline)
	}
	sort.Float64s(baselines)

	var stable []float64
	start := 0
	for i := 1; i <= len(baselines); i++ {
		if i == len(baselines) || baselines[i]-baselines[i-1] > p.cfg.MicroClusterTolerance {
			if n := i - start; n >= 2 {
				sum := 0.0
				for _, b := range baselines[start:i] {
					sum += b
				}
				stable = append(stable, sum/float64(n))
			}
			start = i
		}
	}

	if len(stable) < 2 {
		return p.cfg.SameLineThreshold, "default"
	}

	minPitch := math.Inf(1)
	for i := 1; i < len(stable); i++ {
		if d := stable[i] - stable[i-1]; d < minPitch {
			minPitch = d
		}
	}

	adaptive := minPitch * p.cfg.LinePitchScale
	if adaptive >= p.cfg.MicroClusterTolerance && adaptive < p.cfg.SameLineThreshold {
		return adaptive, "adaptive"
	}
	return p.cfg.SameLineThreshold, "default"
}

// groupLines clusters hits into text lines by ordered sequential grouping.
// Hits are sorted by baseline and swept once; each hit joins the current
// line when its baseline falls within threshold of the line's representative
// baseline. A pairwise comparator sort would not be transitive under a
// tolerance and would interleave adjacent lines, so grouping is strictly
// sequential.
//
// A hit whose baseline falls just outside the threshold is still merged when
// its vertical span overlaps the current line's top-to-baseline range; this
// absorbs bold or mixed-weight runs with shifted baselines. Such merges do
// not re-expand the line's range, which would otherwise chain into
// over-merging of genuinely separate lines.
func (p *Pipeline) groupLines(hits []Hit, threshold float64) []*TextLine {
	if len(hits) == 0 {
		return nil
	}
	sorted := append([]Hit(nil), hits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Baseline != sorted[j].Baseline {
			return sorted[i].Baseline < sorted[j].Baseline
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []*TextLine
	current := &TextLine{Hits: []Hit{sorted[0]}, Baseline: sorted[0].Baseline, TopY: sorted[0].Y}

	for _, h := range sorted[1:] {
		switch {
		case h.Baseline-current.Baseline <= threshold:
			current.Hits = append(current.Hits, h)
			if h.Y < current.TopY {
				current.TopY = h.Y
			}
		case h.Y < current.Baseline && h.Baseline > current.TopY:
			// Baseline-shifted run overlapping the line's vertical range.
			// Merge without touching Baseline or TopY.
			current.Hits = append(current.Hits, h)
		default:
			lines = append(lines, current)
			current = &TextLine{Hits: []Hit{h}, Baseline: h.Baseline, TopY: h.Y}
		}
	}
	lines = append(lines, current)
	return lines
}

// repairNarrowLines merges lines that are abnormally narrow relative to the
// column's typical line width into a nearby complementary-width line. Inline
// hyperlinks in a different font often land on a slightly shifted baseline
// and split a visual line in two; merging is only performed when the
// combined hits roughly double the horizontal coverage, i.e. the two pieces
// occupy different parts of the same visual line.
func (p *Pipeline) repairNarrowLines(lines []*TextLine, threshold float64) []*TextLine {
	if len(lines) < 2 {
		return lines
	}

	widths := make([]float64, 0, len(lines))
	for _, l := range lines {
		widths = append(widths, l.width())
	}
	med := median(widths)
	if med <= 0 {
		return lines
	}

	out := make([]*TextLine, 0, len(lines))
	for _, l := range lines {
		if l.width() >= med*p.cfg.NarrowLineFraction || len(out) == 0 {
			out = append(out, l)
			continue
		}
		prev := out[len(out)-1]
		if l.Baseline-prev.Baseline <= threshold*2 && complementaryWidths(prev, l) {
			prev.Hits = append(prev.Hits, l.Hits...)
			continue
		}
		out = append(out, l)
	}
	return out
}

// complementaryWidths reports whether merging the two lines roughly doubles
// coverage: their spans barely overlap and the union clearly exceeds either
// piece alone.
func complementaryWidths(a, b *TextLine) bool {
	overlap := spanOverlap(a.minX(), a.maxRight(), b.minX(), b.maxRight())
	smaller := math.Min(a.width(), b.width())
	if smaller > 0 && overlap > smaller*0.2 {
		return false
	}
	union := math.Max(a.maxRight(), b.maxRight()) - math.Min(a.minX(), b.minX())
	return union >= math.Max(a.width(), b.width())*1.6
}

// median returns the middle value of an unsorted sample.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
