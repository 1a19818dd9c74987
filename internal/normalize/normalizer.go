// Package normalize converts a PDF page's raw text layer into the
// page-size-independent coordinate space the refine pipeline consumes:
// 0-1000 on both axes, origin top-left. It is the caller-facing adapter in
// front of the pipeline and therefore also owns input hygiene: PDF
// validation, page bounds checks, and filtering of malformed (non-finite)
// coordinates that must never reach the geometry phases.
package normalize

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/doclens/regionfit/internal/refine"
)

// CoordSpaceMax is the upper bound of the normalized coordinate space.
const CoordSpaceMax = 1000.0

// wordGapFraction of the font size separates two character runs into
// distinct fragments. Gaps below it are intra-word kerning.
const wordGapFraction = 0.25

// sameBaselineTolerance in native points when assembling character runs.
const sameBaselineTolerance = 0.5

// PageText is the normalized text layer of one page.
type PageText struct {
	Page      int                   `json:"page"`
	PageCount int                   `json:"page_count"`
	Width     float64               `json:"width"`  // native page width, points
	Height    float64               `json:"height"` // native page height, points
	Fragments []refine.TextFragment `json:"fragments"`
}

// Normalizer reads PDF files and produces normalized text fragments.
type Normalizer struct {
	maxFileSize int64
}

// NewNormalizer creates a normalizer. maxFileSize bounds the PDF size in
// bytes; zero disables the check.
func NewNormalizer(maxFileSize int64) *Normalizer {
	return &Normalizer{maxFileSize: maxFileSize}
}

// Validate checks that the path points at a readable, structurally valid
// PDF within the size limit. Validation is relaxed, matching real-world
// files that bend the spec without breaking extraction.
func (n *Normalizer) Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if n.maxFileSize > 0 && info.Size() > n.maxFileSize {
		return fmt.Errorf("file size %d exceeds maximum %d bytes", info.Size(), n.maxFileSize)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return fmt.Errorf("not a valid PDF: %w", err)
	}
	return nil
}

// PageFragments extracts page (1-based) and returns its normalized text
// layer. Fragments with non-finite coordinates are dropped here so the
// pipeline never sees them.
func (n *Normalizer) PageFragments(path string, page int) (*PageText, error) {
	if err := n.Validate(path); err != nil {
		return nil, err
	}

	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}
	if page < 1 || page > len(dims) {
		return nil, fmt.Errorf("page %d out of range: document has %d pages", page, len(dims))
	}
	pageW, pageH := dims[page-1].Width, dims[page-1].Height
	if pageW <= 0 || pageH <= 0 {
		return nil, fmt.Errorf("page %d has degenerate dimensions %gx%g", page, pageW, pageH)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	pg := reader.Page(page)
	if pg.V.IsNull() {
		return nil, fmt.Errorf("page %d is missing or empty", page)
	}

	content := pg.Content()
	runs := assembleRuns(content.Text)

	result := &PageText{
		Page:      page,
		PageCount: reader.NumPage(),
		Width:     pageW,
		Height:    pageH,
	}
	for _, r := range runs {
		frag, ok := r.normalized(pageW, pageH)
		if ok {
			result.Fragments = append(result.Fragments, frag)
		}
	}
	return result, nil
}

// run is a contiguous sequence of characters sharing a baseline and font,
// still in native PDF coordinates (origin bottom-left, Y up, baseline Y).
type run struct {
	text     string
	font     string
	fontSize float64
	x        float64
	y        float64 // baseline
	right    float64
}

// assembleRuns merges the per-character text entries the PDF library emits
// into word-level runs. A new run starts at a baseline change, a font
// change, or a horizontal gap wider than a fraction of the font size.
func assembleRuns(chars []pdf.Text) []run {
	filtered := make([]pdf.Text, 0, len(chars))
	for _, c := range chars {
		if c.S == "" || !isFinite(c.X) || !isFinite(c.Y) || !isFinite(c.W) {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 {
		return nil
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if math.Abs(filtered[i].Y-filtered[j].Y) > sameBaselineTolerance {
			return filtered[i].Y > filtered[j].Y // top of page first
		}
		return filtered[i].X < filtered[j].X
	})

	var runs []run
	current := newRun(filtered[0])
	for _, c := range filtered[1:] {
		sameBaseline := math.Abs(c.Y-current.y) <= sameBaselineTolerance
		gap := c.X - current.right
		maxGap := current.fontSize * wordGapFraction
		if maxGap <= 0 {
			maxGap = 1.0
		}
		if sameBaseline && c.Font == current.font && gap <= maxGap && gap > -current.fontSize {
			current.text += c.S
			if r := c.X + c.W; r > current.right {
				current.right = r
			}
			continue
		}
		runs = append(runs, current)
		current = newRun(c)
	}
	runs = append(runs, current)
	return runs
}

func newRun(c pdf.Text) run {
	return run{
		text:     c.S,
		font:     c.Font,
		fontSize: c.FontSize,
		x:        c.X,
		y:        c.Y,
		right:    c.X + c.W,
	}
}

// normalized converts the run into the pipeline's coordinate space. The
// run's em-box top sits one font size above the baseline; PDF's bottom-left
// origin flips to top-left here.
func (r run) normalized(pageW, pageH float64) (refine.TextFragment, bool) {
	if r.text == "" || r.right <= r.x {
		return refine.TextFragment{}, false
	}
	height := r.fontSize
	if height <= 0 {
		height = 10 // fallback for fonts reporting no size
	}

	frag := refine.TextFragment{
		Str:        r.text,
		X:          r.x / pageW * CoordSpaceMax,
		Y:          (pageH - r.y - height) / pageH * CoordSpaceMax,
		Width:      (r.right - r.x) / pageW * CoordSpaceMax,
		Height:     height / pageH * CoordSpaceMax,
		SymbolFont: isSymbolFont(r.font, r.text),
	}
	if !isFinite(frag.X) || !isFinite(frag.Y) || !isFinite(frag.Width) || !isFinite(frag.Height) {
		return refine.TextFragment{}, false
	}
	return frag, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
