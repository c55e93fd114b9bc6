// Package scoring contains the pure functions that turn an air-quality
// reading and a traffic level into the figures shown for a route: the
// composite health score, the time-of-day traffic estimate, travel speed and
// the display categories.
//
// Nothing in this package performs I/O or reads the clock.
package scoring

import "math"

// Health score weights. The AQI and traffic penalties are capped so that a
// route is never scored below zero by pollution or congestion alone.
const (
	MaxScore = 100

	// MaxAQI is the top of the AQI scale used for normalisation.
	MaxAQI = 500

	aqiPenaltyCap         = 60.0
	trafficPenaltyCap     = 20.0
	constructionPenalty   = 10.0
	industrialZonePenalty = 10.0
)

// Hazards flags route features that lower the health score. Both are always
// false today; they are kept as inputs for future hazard detection.
type Hazards struct {
	Construction bool
	Industrial   bool
}

// HealthScore maps an AQI reading (0-500) and a traffic level (0-100) to a
// 0-100 score where higher is healthier.
func HealthScore(aqi, traffic int, hazards Hazards) int {
	aqiPenalty := math.Min(aqiPenaltyCap, float64(aqi)/MaxAQI*aqiPenaltyCap)
	trafficPenalty := math.Min(trafficPenaltyCap, float64(traffic)/100*trafficPenaltyCap)

	score := MaxScore - aqiPenalty - trafficPenalty
	if hazards.Construction {
		score -= constructionPenalty
	}
	if hazards.Industrial {
		score -= industrialZonePenalty
	}

	return Clamp(RoundHalfUp(score), 0, MaxScore)
}

// RoundHalfUp rounds to the nearest integer with .5 going towards +Inf.
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
