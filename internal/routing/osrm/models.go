package osrm

// routeResponse is the body of /route/v1/{profile}/{coordinates}.
type routeResponse struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Routes  []routeEntry `json:"routes"`
}

type routeEntry struct {
	Distance float64  `json:"distance"`
	Duration float64  `json:"duration"`
	Geometry geometry `json:"geometry"`
}

// geometry is a GeoJSON LineString, requested with geometries=geojson.
type geometry struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// OSRM response codes.
const (
	codeOK        = "Ok"
	codeNoRoute   = "NoRoute"
	codeNoSegment = "NoSegment"
)
