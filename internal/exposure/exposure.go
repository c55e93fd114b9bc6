// Package exposure compares the cumulative pollution exposure of the top
// recommended routes and explains the difference in everyday terms.
package exposure

import (
	"github.com/greenpath/greenpath/internal/scoring"
)

// MaxCompared is the number of routes the comparison looks at.
const MaxCompared = 2

// Risk buckets an exposure index.
type Risk string

const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// Tone tells a client how to present an Impact.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneWarning  Tone = "warning"
)

// Impact messages.
const (
	SafestMessage = "This is the lowest exposure route available. Healthier option selected."
	WorseMessage  = "Higher pollution exposure detected compared to the recommended route."
)

// Result is the exposure view of one route.
type Result struct {
	Name          string
	DistanceKm    float64
	ETAMinutes    int
	Duration      string
	BaseAQI       int
	AdjustedAQI   int
	ExposureIndex float64
	Risk          Risk
	// Via holds up to two locality names along the route, in travel order.
	Via         []string
	Impact      Impact
	Recommended bool
}

// Impact expresses exposure as cigarette and indoor-air equivalents.
type Impact struct {
	Cigarettes  int
	IndoorHours int
	Tone        Tone
	Message     string
}

// Index is the cumulative exposure of a route: distance times AQI, halved.
func Index(distanceKm float64, aqi int) float64 {
	return distanceKm * float64(aqi) * 0.5
}

// DisplayAQIAdjustment scales the AQI shown for a route between 0.85x and
// 1.15x of the measured value according to its share of the worst exposure.
// It is a presentation heuristic; BaseAQI remains the measured value.
func DisplayAQIAdjustment(base int, exposure, maxExposure float64) int {
	if maxExposure <= 0 {
		return base
	}
	return scoring.RoundHalfUp(float64(base) * (0.85 + exposure/maxExposure*0.3))
}

// RiskFor returns the risk bucket of an exposure index.
func RiskFor(exposure float64) Risk {
	switch {
	case exposure < 200:
		return RiskLow
	case exposure < 400:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// ImpactFor builds the narrative for a route. Any positive exposure counts as
// at least one cigarette and one indoor hour.
func ImpactFor(exposure float64, safest bool) Impact {
	impact := Impact{Tone: ToneWarning, Message: WorseMessage}
	if safest {
		impact.Tone = TonePositive
		impact.Message = SafestMessage
	}
	if exposure > 0 {
		impact.Cigarettes = max(1, scoring.RoundHalfUp(exposure/400))
		impact.IndoorHours = max(1, scoring.RoundHalfUp(exposure/250))
	}
	return impact
}

// SafestIndex returns the index of the lowest exposure, the first on ties,
// or -1 for an empty slice.
func SafestIndex(results []Result) int {
	best := -1
	for i := range results {
		if best < 0 || results[i].ExposureIndex < results[best].ExposureIndex {
			best = i
		}
	}
	return best
}
