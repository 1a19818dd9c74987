package refine

import (
	"math"
	"unicode"
)

// Rect is an axis-aligned box in the normalized page space (origin top-left,
// Y grows downward). X1,Y1 is the top-left corner, X2,Y2 the bottom-right.
type Rect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Width returns the horizontal extent, zero for a degenerate box.
func (r Rect) Width() float64 {
	if r.X2 <= r.X1 {
		return 0
	}
	return r.X2 - r.X1
}

// Height returns the vertical extent, zero for a degenerate box.
func (r Rect) Height() float64 {
	if r.Y2 <= r.Y1 {
		return 0
	}
	return r.Y2 - r.Y1
}

// IsValid reports whether the box has positive extent on both axes.
// Degenerate boxes are tolerated throughout the pipeline; they simply
// overlap nothing until expansion repairs them.
func (r Rect) IsValid() bool {
	return r.X1 < r.X2 && r.Y1 < r.Y2
}

// HorizontalOverlap returns the width of the horizontal overlap between the
// two boxes, or 0 when they are horizontally disjoint or degenerate.
func (r Rect) HorizontalOverlap(o Rect) float64 {
	return spanOverlap(r.X1, r.X2, o.X1, o.X2)
}

// VerticalOverlap returns the height of the vertical overlap between the
// two boxes, or 0 when they are vertically disjoint or degenerate.
func (r Rect) VerticalOverlap(o Rect) float64 {
	return spanOverlap(r.Y1, r.Y2, o.Y1, o.Y2)
}

// spanOverlap returns the overlap length of the intervals [a1,a2] and
// [b1,b2]. Inverted intervals are treated as empty, never negative.
func spanOverlap(a1, a2, b1, b2 float64) float64 {
	lo := math.Max(a1, b1)
	hi := math.Min(a2, b2)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// TextFragment is one positioned run of text from the page's text layer,
// already converted to the normalized coordinate space. Height approximates
// an em-box, not true glyph ascent/descent; the pipeline compensates for
// that with the descender fractions in Config.
type TextFragment struct {
	Str        string  `json:"str"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	SymbolFont bool    `json:"symbol_font,omitempty"`
}

// Right returns the fragment's right edge.
func (f TextFragment) Right() float64 { return f.X + f.Width }

// Baseline returns the bottom of the standard glyph body. Baselines are more
// stable across mixed font sizes than top coordinates, so all line grouping
// keys off this value.
func (f TextFragment) Baseline() float64 { return f.Y + f.Height }

// isCJK reports whether the fragment is predominantly CJK. CJK glyphs rarely
// carry true descenders, so they get a smaller descender margin.
func (f TextFragment) isCJK() bool {
	if f.Str == "" {
		return false
	}
	cjk := 0
	total := 0
	for _, r := range f.Str {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
			unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) {
			cjk++
		}
	}
	return total > 0 && cjk*2 > total
}

// Region is one analysis target on a page. BBox is mutated in place by
// Phases 1-2.75 and frozen before Phase 3; Text is filled by the formatter.
type Region struct {
	ID    string `json:"id"`
	BBox  Rect   `json:"bbox"`
	Label string `json:"label,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Hit is a text fragment determined by bbox intersection to belong to one
// finalized region. Used only during Phase 3.
type Hit struct {
	Str        string
	X          float64
	Y          float64
	Right      float64
	Baseline   float64
	SymbolFont bool
}

// Width returns the hit's horizontal extent.
func (h Hit) Width() float64 { return h.Right - h.X }

// TextLine is a cluster of hits whose baselines fall within the same-line
// threshold of one another. Ephemeral; recomputed per region or per column.
type TextLine struct {
	Hits     []Hit
	Baseline float64 // representative baseline, fixed at line creation
	TopY     float64 // top of the line's vertical range, fixed at creation
}

// minX returns the leftmost hit edge of the line.
func (l *TextLine) minX() float64 {
	x := math.Inf(1)
	for _, h := range l.Hits {
		if h.X < x {
			x = h.X
		}
	}
	return x
}

// maxRight returns the rightmost hit edge of the line.
func (l *TextLine) maxRight() float64 {
	r := math.Inf(-1)
	for _, h := range l.Hits {
		if h.Right > r {
			r = h.Right
		}
	}
	return r
}

// width returns the horizontal extent covered by the line's hits.
func (l *TextLine) width() float64 {
	if len(l.Hits) == 0 {
		return 0
	}
	return l.maxRight() - l.minX()
}
