package exposure

import (
	"context"

	"github.com/greenpath/greenpath/internal/recommend"
)

// RouteFinder is the part of recommend.Service the exposure report needs.
type RouteFinder interface {
	FindRoutes(ctx context.Context, source, destination string) (*recommend.Result, error)
}

// Report is the exposure comparison for a source and destination.
type Report struct {
	Source      string
	Destination string
	Routes      []Result
	// Safest is nil when there were no routes.
	Safest *Result
}

// Service runs the recommendation pipeline and compares the top routes.
type Service struct {
	finder   RouteFinder
	comparer *Comparer
}

// NewService creates a new exposure service.
func NewService(finder RouteFinder, comparer *Comparer) *Service {
	return &Service{finder: finder, comparer: comparer}
}

// Analyze returns the exposure report. Pipeline errors are returned unchanged
// so callers can classify them with recommend.KindOf.
func (s *Service) Analyze(ctx context.Context, source, destination string) (*Report, error) {
	result, err := s.finder.FindRoutes(ctx, source, destination)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Source:      result.Source,
		Destination: result.Destination,
		Routes:      s.comparer.Compare(ctx, result.Routes),
	}
	if i := SafestIndex(report.Routes); i >= 0 {
		report.Safest = &report.Routes[i]
	}
	return report, nil
}
