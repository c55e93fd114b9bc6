package scoring

// PollutionCategory buckets an AQI reading.
type PollutionCategory string

const (
	PollutionLow      PollutionCategory = "Low"
	PollutionModerate PollutionCategory = "Moderate"
	PollutionHigh     PollutionCategory = "High"
	PollutionCritical PollutionCategory = "Critical"
)

// PollutionCategoryFor returns the category for an AQI value.
func PollutionCategoryFor(aqi int) PollutionCategory {
	switch {
	case aqi < 50:
		return PollutionLow
	case aqi < 100:
		return PollutionModerate
	case aqi < 200:
		return PollutionHigh
	default:
		return PollutionCritical
	}
}

// TrafficCategory buckets a traffic percentage.
type TrafficCategory string

const (
	TrafficLow      TrafficCategory = "Low"
	TrafficModerate TrafficCategory = "Moderate"
	TrafficHigh     TrafficCategory = "High"
)

// TrafficCategoryFor returns the category for a traffic level. The
// boundaries match the speed table.
func TrafficCategoryFor(traffic int) TrafficCategory {
	switch {
	case traffic < 35:
		return TrafficLow
	case traffic < 65:
		return TrafficModerate
	default:
		return TrafficHigh
	}
}
