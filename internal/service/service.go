// Package service is the request/response facade over the normalizer and
// the correction pipeline. Input validation lives here: the pipeline itself
// never returns errors, so everything that can be rejected must be rejected
// before it runs.
package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/doclens/regionfit/internal/normalize"
	"github.com/doclens/regionfit/internal/refine"
)

// Service orchestrates region correction for PDF files under a configured
// directory.
type Service struct {
	baseDir    string
	normalizer *normalize.Normalizer
	pipeline   *refine.Pipeline
}

// NewService creates a service rooted at baseDir. Requests referencing files
// outside baseDir are rejected. maxFileSize bounds accepted PDFs in bytes.
func NewService(baseDir string, maxFileSize int64) (*Service, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	return &Service{
		baseDir:    abs,
		normalizer: normalize.NewNormalizer(maxFileSize),
		pipeline:   refine.NewPipeline(),
	}, nil
}

// NewServiceWithPipeline creates a service with a custom-configured
// pipeline, used by tests and by callers tuning thresholds.
func NewServiceWithPipeline(baseDir string, maxFileSize int64, pipeline *refine.Pipeline) (*Service, error) {
	s, err := NewService(baseDir, maxFileSize)
	if err != nil {
		return nil, err
	}
	s.pipeline = pipeline
	return s, nil
}

// RegionCorrectFile runs the full correction pipeline for one page's region
// set and returns the corrected regions with extracted text.
func (s *Service) RegionCorrectFile(req RegionCorrectFileRequest) (*RegionCorrectFileResult, error) {
	path, err := s.resolvePath(req.Path)
	if err != nil {
		return nil, err
	}
	if err := validateRegions(req.Regions); err != nil {
		return nil, err
	}

	pageText, err := s.normalizer.PageFragments(path, req.Page)
	if err != nil {
		return nil, err
	}

	var trace *refine.Trace
	if req.Trace {
		trace = refine.NewTrace()
	}

	regions := append([]refine.Region(nil), req.Regions...)
	s.pipeline.Run(regions, pageText.Fragments, trace)

	return &RegionCorrectFileResult{
		Path:      path,
		Page:      req.Page,
		PageCount: pageText.PageCount,
		Regions:   regions,
		Trace:     trace,
	}, nil
}

// PageFragmentsFile returns one page's normalized text layer.
func (s *Service) PageFragmentsFile(req PageFragmentsFileRequest) (*PageFragmentsFileResult, error) {
	path, err := s.resolvePath(req.Path)
	if err != nil {
		return nil, err
	}
	pageText, err := s.normalizer.PageFragments(path, req.Page)
	if err != nil {
		return nil, err
	}
	return &PageFragmentsFileResult{
		Path:      path,
		Page:      req.Page,
		PageCount: pageText.PageCount,
		Width:     pageText.Width,
		Height:    pageText.Height,
		Fragments: pageText.Fragments,
	}, nil
}

// BaseDir returns the directory the service is confined to.
func (s *Service) BaseDir() string {
	return s.baseDir
}

// resolvePath makes the request path absolute and confines it to the
// configured base directory.
func (s *Service) resolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	rel, err := filepath.Rel(s.baseDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside the configured directory %s", path, s.baseDir)
	}
	return abs, nil
}

// validateRegions rejects structurally broken input. Degenerate bboxes are
// allowed (the pipeline tolerates them); missing ids and duplicate ids are
// not, because results are keyed by id.
func validateRegions(regions []refine.Region) error {
	seen := make(map[string]struct{}, len(regions))
	for i, r := range regions {
		if r.ID == "" {
			return fmt.Errorf("region %d has an empty id", i)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("duplicate region id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}
