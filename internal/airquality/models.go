// Package airquality provides the air-quality reading used to score routes.
package airquality

import (
	"context"
	"errors"
	"time"

	"github.com/greenpath/greenpath/internal/geo"
)

// Provider errors.
var (
	// ErrMissingToken indicates the provider credential is not configured.
	ErrMissingToken = errors.New("air-quality token missing")
	// ErrProviderUnavailable indicates the provider is down, rejected the request or sent garbage.
	ErrProviderUnavailable = errors.New("air quality provider unavailable")
	// ErrRateLimitExceeded indicates the provider quota has been used up.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// DefaultAQI is used when the provider answers but has no numeric index for
// the location.
const DefaultAQI = 100

// Provider fetches a single air-quality sample for a coordinate.
type Provider interface {
	Sample(ctx context.Context, at geo.Coordinate) (*Sample, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Sample is one AQI reading. Samples are request scoped and never cached.
type Sample struct {
	AQI       int       `json:"aqi"`
	Station   string    `json:"station,omitempty"`
	FetchedAt time.Time `json:"fetchedAt"`
	// Fallback is set when AQI is DefaultAQI because the provider had no value.
	Fallback bool `json:"fallback"`
}

// Error provides detailed error information from the air-quality provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code, e.g. PROVIDER_ERROR or HTTP_503
	Message  string // Human-readable message, for logs
	Err      error  // Underlying sentinel
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
