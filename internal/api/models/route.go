package models

// RouteRequest is the POST /api/routes body. From and To are accepted as
// aliases of Source and Destination.
type RouteRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	From        string `json:"from"`
	To          string `json:"to"`
}

// Endpoints returns the source and destination, preferring the canonical
// names over the aliases.
func (r RouteRequest) Endpoints() (string, string) {
	source, destination := r.Source, r.Destination
	if source == "" {
		source = r.From
	}
	if destination == "" {
		destination = r.To
	}
	return source, destination
}

// Route is one enriched route.
type Route struct {
	Name         string       `json:"route_name"`
	Distance     string       `json:"distance"`
	RawDistance  float64      `json:"rawDistance"`
	Time         string       `json:"time"`
	ETAMinutes   int          `json:"eta_minutes"`
	Pollution    string       `json:"pollution"`
	AQI          int          `json:"aqi"`
	HealthScore  int          `json:"health_score"`
	Traffic      int          `json:"traffic"`
	TrafficLevel string       `json:"traffic_level"`
	Coordinates  [][2]float64 `json:"coordinates"`
	Polyline     string       `json:"polyline,omitempty"`
	IsPeakHour   bool         `json:"is_peak_hour"`
}

// RoutesResponse is returned by /api/routes. Recommended is always present
// and is null exactly when Routes is empty.
type RoutesResponse struct {
	Success     bool    `json:"success"`
	Source      string  `json:"source,omitempty"`
	Destination string  `json:"destination,omitempty"`
	Routes      []Route `json:"routes"`
	Recommended *Route  `json:"recommended"`
	Message     string  `json:"message,omitempty"`
}

// ExposureRoute is the exposure comparison of one route.
type ExposureRoute struct {
	Name          string         `json:"route_name"`
	Distance      string         `json:"distance"`
	Duration      string         `json:"duration"`
	BaseAQI       int            `json:"base_aqi"`
	AQI           int            `json:"aqi"`
	ExposureIndex float64        `json:"exposure_index"`
	Risk          string         `json:"risk"`
	Via           []string       `json:"via"`
	Impact        ExposureImpact `json:"impact"`
	Recommended   bool           `json:"ai_recommended"`
}

// ExposureImpact expresses exposure in everyday equivalents.
type ExposureImpact struct {
	Cigarettes  int    `json:"cigarettes"`
	IndoorHours int    `json:"indoor_hours"`
	Tone        string `json:"tone"`
	Message     string `json:"message"`
}

// ExposureResponse is returned by /api/exposure.
type ExposureResponse struct {
	Success     bool            `json:"success"`
	Source      string          `json:"source,omitempty"`
	Destination string          `json:"destination,omitempty"`
	Routes      []ExposureRoute `json:"routes"`
	Safest      *ExposureRoute  `json:"safest,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// AirQuality is the data of /api/aqi.
type AirQuality struct {
	Location  string    `json:"location"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	AQI       int       `json:"aqi"`
	Category  string    `json:"category"`
	Station   string    `json:"station,omitempty"`
	Fallback  bool      `json:"fallback"`
	FetchedAt Timestamp `json:"fetched_at"`
}

// HistoryEntry is one row of /api/routes/history.
type HistoryEntry struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Distance    string    `json:"distance"`
	Time        string    `json:"time"`
	Pollution   string    `json:"pollution"`
	AQI         int       `json:"aqi"`
	HealthScore int       `json:"health_score"`
	CreatedAt   Timestamp `json:"created_at"`
}
