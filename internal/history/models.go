// Package history stores the routes users were recommended.
package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Errors.
var (
	ErrInvalidRecord = errors.New("invalid history record")
)

// DefaultListLimit and MaxListLimit bound List.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Record is one recommended route.
type Record struct {
	ID              string    `json:"id"`
	Source          string    `json:"source"`
	Destination     string    `json:"destination"`
	DistanceKm      float64   `json:"distance_km"`
	DurationMinutes int       `json:"duration_minutes"`
	Pollution       string    `json:"pollution"`
	AQI             int       `json:"aqi"`
	HealthScore     int       `json:"health_score"`
	CreatedAt       time.Time `json:"created_at"`
}

// Prepare assigns an ID and timestamp when missing and validates the record.
func (r *Record) Prepare(now time.Time) error {
	if r.Source == "" || r.Destination == "" {
		return fmt.Errorf("%w: source and destination are required", ErrInvalidRecord)
	}
	if r.HealthScore < 0 || r.HealthScore > 100 {
		return fmt.Errorf("%w: health score %d out of range", ErrInvalidRecord, r.HealthScore)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now.UTC()
	}
	return nil
}

// ClampLimit maps a requested page size into [1, MaxListLimit].
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
