package refine

import "strings"

// Config tunes the pipeline. All lengths are in normalized units (0-1000
// page space). The defaults were tuned against mixed business documents;
// the thresholds are statistical heuristics, not exact bounds.
type Config struct {
	// MinRegionGap is the minimum vertical separation enforced between two
	// regions whose horizontal extents overlap.
	MinRegionGap float64

	// SnapMaxPasses bounds the Phase 1 expansion loop. The loop stops early
	// when a pass changes nothing; hitting the cap is not an error.
	SnapMaxPasses int

	// LatinDescenderFraction and CJKDescenderFraction give the portion of a
	// fragment's height assumed to hang below the baseline. Fragment height
	// approximates an em-box, so real descenders extend past it; CJK glyphs
	// rarely carry true descenders and get the smaller margin.
	LatinDescenderFraction float64
	CJKDescenderFraction   float64

	// VisualTopInset is the portion of a fragment's height treated as empty
	// leading above the visible glyphs when snapping a box top.
	VisualTopInset float64

	// HorizontalOwnFraction is the share of a fragment's own width that must
	// lie inside a box before the fragment can trigger horizontal expansion.
	HorizontalOwnFraction float64

	// SameLineThreshold is the default baseline distance within which two
	// hits are considered the same text line.
	SameLineThreshold float64

	// MicroClusterTolerance is the tight baseline tolerance used to find
	// stable lines when deriving the adaptive line threshold.
	MicroClusterTolerance float64

	// LinePitchScale scales the measured minimum line pitch down to the
	// adaptive same-line threshold.
	LinePitchScale float64

	// SameBlockBaselineShare is the Phase 2.25 fraction of the smaller
	// side's baselines that must reappear on the larger side for two
	// horizontally overlapping regions to count as one coherent block.
	SameBlockBaselineShare float64

	// Column detection.
	MinColumnLines            int     // lines required on each side of a split
	MinSeparatorGap           float64 // minimum internal gap width for a candidate
	SeparatorClusterTolerance float64 // x-tolerance when clustering per-line gaps
	OccupancyBins             int     // horizontal histogram resolution
	LowOccupancyFraction      float64 // band occupancy ceiling, as share of lines
	MinSideSpanFraction       float64 // each side's width floor, as share of region width
	MinSideCharFraction       float64 // smaller side's text volume floor
	ExclusiveLineThreshold    float64 // exclusive-line fraction for a confident split
	FallbackExclusiveShare    float64 // stricter fraction for the occupancy fallback

	// Paragraph detection.
	ParagraphGapWindow     int     // neighboring gaps inspected on each side
	ParagraphGapPercentile float64 // lower-tail percentile of the window
	ParagraphGapRatio      float64 // gap must exceed percentile by this ratio

	// Intra-line spacing.
	SpaceGapMin      float64 // gaps below this are glyph kerning, not a space
	TabGapMin        float64 // gaps at or above this become a tab
	NegativeGapBreak float64 // a gap below -NegativeGapBreak forces a line break

	// BaselineSnapTolerance is how close a fragment baseline must sit to a
	// region's bottom edge for descender compensation to consider it.
	BaselineSnapTolerance float64

	// NarrowLineFraction marks a line as a suspected baseline-shifted
	// fragment when its width falls below this share of the median width.
	NarrowLineFraction float64
}

// DefaultConfig returns the tuned default configuration.
func DefaultConfig() Config {
	return Config{
		MinRegionGap:           5.0,
		SnapMaxPasses:          3,
		LatinDescenderFraction: 0.25,
		CJKDescenderFraction:   0.10,
		VisualTopInset:         0.15,
		HorizontalOwnFraction:  0.5,
		SameLineThreshold:      5.0,
		MicroClusterTolerance:  1.2,
		LinePitchScale:         0.45,
		SameBlockBaselineShare: 0.5,

		MinColumnLines:            3,
		MinSeparatorGap:           10.0,
		SeparatorClusterTolerance: 15.0,
		OccupancyBins:             50,
		LowOccupancyFraction:      0.25,
		MinSideSpanFraction:       0.15,
		MinSideCharFraction:       0.05,
		ExclusiveLineThreshold:    0.70,
		FallbackExclusiveShare:    0.85,

		ParagraphGapWindow:     3,
		ParagraphGapPercentile: 0.30,
		ParagraphGapRatio:      1.3,

		SpaceGapMin:      1.5,
		TabGapMin:        18.0,
		NegativeGapBreak: 40.0,

		BaselineSnapTolerance: 2.0,
		NarrowLineFraction:    0.35,
	}
}

// Pipeline runs the full correction-and-extraction sequence for one page's
// region set. A Pipeline is stateless between runs and safe for concurrent
// use across pages.
type Pipeline struct {
	cfg Config
}

// NewPipeline creates a pipeline with the default configuration.
func NewPipeline() *Pipeline {
	return NewPipelineWithConfig(DefaultConfig())
}

// NewPipelineWithConfig creates a pipeline with a custom configuration.
func NewPipelineWithConfig(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Run corrects the regions' bounding boxes in place and fills each region's
// Text. fragments is the complete, immutable text layer of the page. trace
// may be nil; passing a Trace records per-phase diagnostics without
// affecting the result.
//
// The six phases must run strictly in this order: each phase assumes the
// invariants established by the previous ones (the gap enforcer, for one,
// assumes horizontal overlap between vertically disjoint regions is already
// resolved). Pairwise phases process region pairs in index order with no
// fixed-point repeat; see DESIGN.md for the 3+-way overlap caveat.
func (p *Pipeline) Run(regions []Region, fragments []TextFragment, trace *Trace) []Region {
	if len(regions) == 0 {
		return regions
	}

	// Phase 1: snap every box to its owned text.
	for i := range regions {
		p.snapRegion(i, regions, fragments)
		trace.recordBox(regions[i].ID, "snap", regions[i].BBox)
	}

	// Phase 2.25: remove residual horizontal overlap between sibling boxes.
	p.resolveHorizontalOverlaps(regions, fragments)
	for i := range regions {
		trace.recordBox(regions[i].ID, "horizontal", regions[i].BBox)
	}

	// Phase 2.5: enforce the minimum vertical gap.
	p.enforceGaps(regions)
	for i := range regions {
		trace.recordBox(regions[i].ID, "gap", regions[i].BBox)
	}

	// Phase 2.75: cover descenders. Runs last so nothing undoes it.
	p.compensateDescenders(regions, fragments)
	for i := range regions {
		trace.recordBox(regions[i].ID, "descender", regions[i].BBox)
	}

	// Phase 3: boxes are frozen; extract reading-order text.
	for i := range regions {
		hits := p.collectHits(regions[i].BBox, fragments)
		trace.recordHits(regions[i].ID, len(hits))
		if len(hits) == 0 {
			regions[i].Text = ""
			trace.recordColumns(regions[i].ID, 1, 0, 0)
			continue
		}

		columns := p.splitColumns(regions[i].ID, hits, trace)
		parts := make([]string, 0, len(columns))
		for _, col := range columns {
			parts = append(parts, p.formatColumn(regions[i].ID, col, trace))
		}
		// Left column serializes fully before the right one.
		regions[i].Text = strings.Join(parts, "\n\n")
	}

	return regions
}

// collectHits returns the fragments owned by a finalized box. A fragment
// qualifies when at least half its width and half its visual height fall
// inside the box. Boxes are disjoint by now wherever their extents used to
// compete, so a fragment lands in at most one sibling.
func (p *Pipeline) collectHits(box Rect, fragments []TextFragment) []Hit {
	var hits []Hit
	for _, f := range fragments {
		if f.Str == "" {
			continue
		}
		h := spanOverlap(box.X1, box.X2, f.X, f.Right())
		if f.Width > 0 && h < f.Width*p.cfg.HorizontalOwnFraction {
			continue
		}
		top := p.visualTop(f)
		bottom := p.visualBottom(f)
		v := spanOverlap(box.Y1, box.Y2, top, bottom)
		if bottom <= top || v < (bottom-top)*0.5 {
			continue
		}
		hits = append(hits, Hit{
			Str:        f.Str,
			X:          f.X,
			Y:          f.Y,
			Right:      f.Right(),
			Baseline:   f.Baseline(),
			SymbolFont: f.SymbolFont,
		})
	}
	return hits
}

// visualTop estimates where visible glyphs start, below the em-box top.
func (p *Pipeline) visualTop(f TextFragment) float64 {
	return f.Y + f.Height*p.cfg.VisualTopInset
}

// visualBottom estimates where visible glyphs end, below the baseline.
func (p *Pipeline) visualBottom(f TextFragment) float64 {
	return f.Baseline() + f.Height*p.descenderFraction(f)
}

// descenderFraction picks the script-appropriate descender margin.
func (p *Pipeline) descenderFraction(f TextFragment) float64 {
	if f.isCJK() {
		return p.cfg.CJKDescenderFraction
	}
	return p.cfg.LatinDescenderFraction
}
