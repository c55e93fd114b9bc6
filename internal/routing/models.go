// Package routing provides candidate driving routes between two points.
package routing

import (
	"context"
	"errors"

	"github.com/greenpath/greenpath/internal/geo"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the routing provider is down, refused
	// the query or answered with something unusable.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Provider defines the interface for routing providers.
type Provider interface {
	// Alternatives returns every route the provider suggests between the two
	// points. No route is an empty slice with a nil error. Order carries no
	// meaning.
	Alternatives(ctx context.Context, from, to geo.Coordinate) ([]RawRoute, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// RawRoute is a route as returned by the provider.
type RawRoute struct {
	DistanceMeters  float64
	DurationSeconds float64
	// Geometry is in GeoJSON axis order: [lon, lat].
	Geometry [][2]float64
}

// Error provides detailed error information from the routing provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
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

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrRateLimitExceeded) || e.Code == "REQUEST_FAILED"
}
