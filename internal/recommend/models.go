// Package recommend turns a source and destination place name into a ranked
// list of health-scored driving routes.
package recommend

import (
	"fmt"
	"time"

	"github.com/greenpath/greenpath/internal/geo"
	"github.com/greenpath/greenpath/internal/scoring"
)

// EnrichedRoute is a router alternative annotated with air quality, traffic
// and health information.
type EnrichedRoute struct {
	Name              string
	DistanceKm        float64
	PollutionCategory scoring.PollutionCategory
	// AQI is the single request-wide sample; every route carries the same value.
	AQI            int
	TrafficPercent int
	TrafficLevel   scoring.TrafficCategory
	HealthScore    int
	ETAMinutes     int
	// Coordinates are in display order: [lat, lon].
	Coordinates [][2]float64
	IsPeakHour  bool
}

// DistanceLabel formats the distance with one decimal, e.g. "5.0 km".
func (r EnrichedRoute) DistanceLabel() string {
	return fmt.Sprintf("%.1f km", r.DistanceKm)
}

// TimeLabel formats the ETA, e.g. "17 mins".
func (r EnrichedRoute) TimeLabel() string {
	return fmt.Sprintf("%d mins", r.ETAMinutes)
}

// Result is the outcome of FindRoutes. Routes is never nil. Recommended is
// nil exactly when Routes is empty.
type Result struct {
	Source      string
	Destination string
	Routes      []EnrichedRoute
	Recommended *EnrichedRoute
	AirQuality  *AirQuality
}

// AirQuality is the reading used for a request or an AQI lookup.
type AirQuality struct {
	Location  string
	At        geo.Coordinate
	AQI       int
	Category  scoring.PollutionCategory
	Station   string
	Fallback  bool
	FetchedAt time.Time
}
