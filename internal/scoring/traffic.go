package scoring

// TrafficEstimate is the baseline congestion for the current hour.
type TrafficEstimate struct {
	Base int  `json:"base"`
	Peak bool `json:"peak"`
}

// Time-of-day buckets. Hours are local to the service's configured zone.
var (
	morningPeak = TrafficEstimate{Base: 75, Peak: true}
	eveningPeak = TrafficEstimate{Base: 85, Peak: true}
	night       = TrafficEstimate{Base: 20, Peak: false}
	offPeak     = TrafficEstimate{Base: 45, Peak: false}
)

// EstimateTraffic returns the baseline congestion for an hour of the day (0-23).
// The buckets are fixed: 8-11 and 17-21 are peak, 22-6 is night.
func EstimateTraffic(hour int) TrafficEstimate {
	switch {
	case hour >= 8 && hour <= 11:
		return morningPeak
	case hour >= 17 && hour <= 21:
		return eveningPeak
	case hour >= 22 || hour <= 6:
		return night
	default:
		return offPeak
	}
}

// RouteTraffic derives the congestion level of a single route from the
// hourly baseline, its length and the shared AQI reading, clamped to [10, 100].
func RouteTraffic(base int, distanceKm float64, aqi int) int {
	raw := float64(base) + distanceKm*2 + float64(aqi)/6
	return Clamp(RoundHalfUp(raw), MinTraffic, 100)
}

// MinTraffic is the floor for any displayed traffic level.
const MinTraffic = 10

// SpeedForTraffic returns the assumed average speed in km/h for a traffic level.
func SpeedForTraffic(traffic int) int {
	switch {
	case traffic < 35:
		return 40
	case traffic < 65:
		return 28
	default:
		return 18
	}
}

// ETAMinutes converts a distance to whole minutes at the speed implied by traffic.
func ETAMinutes(distanceKm float64, traffic int) int {
	hours := distanceKm / float64(SpeedForTraffic(traffic))
	return RoundHalfUp(hours * 60)
}
