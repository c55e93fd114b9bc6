package waqi

import "encoding/json"

// feedResponse is the envelope of /feed/geo:{lat};{lon}/.
// Data is an object when status is "ok" and a message string otherwise.
type feedResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type feedData struct {
	// AQI is a number for reporting stations and "-" for stations without data.
	AQI  json.RawMessage `json:"aqi"`
	Idx  int             `json:"idx"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
}

const statusOK = "ok"
