package service

import (
	"github.com/doclens/regionfit/internal/refine"
)

// RegionCorrectFileRequest asks for one page's proposed regions to be
// corrected against that page's text layer. Regions arrive in the proposer's
// order and normalized (0-1000, top-left origin) coordinates; the service
// tolerates degenerate boxes, which simply own no text until expansion
// repairs them.
type RegionCorrectFileRequest struct {
	Path    string          `json:"path"`
	Page    int             `json:"page"`
	Regions []refine.Region `json:"regions"`
	// Trace enables the diagnostic sidecar in the result. The primary
	// result is identical with or without it.
	Trace bool `json:"trace,omitempty"`
}

// RegionCorrectFileResult carries the corrected regions with extracted text.
type RegionCorrectFileResult struct {
	Path      string          `json:"path"`
	Page      int             `json:"page"`
	PageCount int             `json:"page_count"`
	Regions   []refine.Region `json:"regions"`
	Trace     *refine.Trace   `json:"trace,omitempty"`
}

// PageFragmentsFileRequest asks for one page's normalized text layer,
// useful for inspecting what the correction pipeline will see.
type PageFragmentsFileRequest struct {
	Path string `json:"path"`
	Page int    `json:"page"`
}

// PageFragmentsFileResult carries the normalized fragments of one page.
type PageFragmentsFileResult struct {
	Path      string                `json:"path"`
	Page      int                   `json:"page"`
	PageCount int                   `json:"page_count"`
	Width     float64               `json:"width"`
	Height    float64               `json:"height"`
	Fragments []refine.TextFragment `json:"fragments"`
}
