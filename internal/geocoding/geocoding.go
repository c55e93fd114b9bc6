// Package geocoding resolves place names to coordinates and back.
package geocoding

import (
	"context"
	"errors"

	"github.com/greenpath/greenpath/internal/geo"
)

// Sentinel errors for geocoding operations.
var (
	// ErrProviderUnavailable indicates the geocoder could not be reached or answered badly.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
	// ErrRateLimitExceeded indicates the geocoder usage policy was exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Provider resolves free text to coordinates and coordinates to place names.
type Provider interface {
	// Search returns matches for text, best first. No match is an empty
	// slice with a nil error.
	Search(ctx context.Context, text string) ([]geo.Coordinate, error)
	// Reverse returns the place at a coordinate.
	Reverse(ctx context.Context, at geo.Coordinate) (*Place, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Place is a reverse geocoding result.
type Place struct {
	// Name is the most specific locality label available, empty when the
	// provider returned nothing usable.
	Name        string
	DisplayName string
}

// Error provides detailed error information from the geocoding provider.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
