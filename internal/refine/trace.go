package refine

// Trace is an optional diagnostic sidecar. When a non-nil Trace is passed to
// Pipeline.Run it records, per region, the bbox after each phase, the number
// of contributing fragments, the detected column separator, and the line
// threshold derivation. A nil Trace is valid everywhere and recording into it
// is a no-op, so its absence never alters the primary result.
type Trace struct {
	Regions map[string]*RegionTrace `json:"regions"`
}

// RegionTrace holds the per-region diagnostic record.
type RegionTrace struct {
	PhaseBoxes      []PhaseBox `json:"phase_boxes"`
	HitCount        int        `json:"hit_count"`
	Columns         int        `json:"columns"`
	ColumnSeparator float64    `json:"column_separator,omitempty"`
	ColumnExclusive float64    `json:"column_exclusive,omitempty"`
	LineThreshold   float64    `json:"line_threshold,omitempty"`
	ThresholdSource string     `json:"threshold_source,omitempty"`
}

// PhaseBox records a region's bbox as left by one phase.
type PhaseBox struct {
	Phase string `json:"phase"`
	BBox  Rect   `json:"bbox"`
}

// NewTrace returns an empty trace ready to be passed to Pipeline.Run.
func NewTrace() *Trace {
	return &Trace{Regions: make(map[string]*RegionTrace)}
}

// region returns the record for a region id, creating it on first use.
func (t *Trace) region(id string) *RegionTrace {
	if t == nil {
		return nil
	}
	rt, ok := t.Regions[id]
	if !ok {
		rt = &RegionTrace{}
		t.Regions[id] = rt
	}
	return rt
}

// recordBox appends a phase snapshot of the region's bbox.
func (t *Trace) recordBox(id, phase string, b Rect) {
	if rt := t.region(id); rt != nil {
		rt.PhaseBoxes = append(rt.PhaseBoxes, PhaseBox{Phase: phase, BBox: b})
	}
}

// recordHits stores the number of fragments assigned to the region.
func (t *Trace) recordHits(id string, n int) {
	if rt := t.region(id); rt != nil {
		rt.HitCount = n
	}
}

// recordColumns stores the column-split verdict for the region.
func (t *Trace) recordColumns(id string, columns int, separator, exclusive float64) {
	if rt := t.region(id); rt != nil {
		rt.Columns = columns
		rt.ColumnSeparator = separator
		rt.ColumnExclusive = exclusive
	}
}

// recordThreshold stores the computed same-line threshold and how it was
// derived ("default" or "adaptive").
func (t *Trace) recordThreshold(id string, threshold float64, source string) {
	if rt := t.region(id); rt != nil {
		rt.LineThreshold = threshold
		rt.ThresholdSource = source
	}
}
