// Package geo holds the coordinate type shared by the providers and the
// recommendation pipeline.
package geo

import (
	"errors"
	"fmt"
)

// ErrInvalidCoordinate indicates a latitude or longitude outside its range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a WGS84 point. Values are immutable once geocoded.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the coordinate is within valid ranges.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range [-90, 90]", ErrInvalidCoordinate, c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %f out of range [-180, 180]", ErrInvalidCoordinate, c.Lon)
	}
	return nil
}

// LonLat returns the coordinate in GeoJSON axis order.
func (c Coordinate) LonLat() [2]float64 {
	return [2]float64{c.Lon, c.Lat}
}

// SwapAxes converts a GeoJSON line (lon, lat) into display order (lat, lon).
// The input is not modified.
func SwapAxes(line [][2]float64) [][2]float64 {
	out := make([][2]float64, len(line))
	for i, p := range line {
		out[i] = [2]float64{p[1], p[0]}
	}
	return out
}
