// Package polyline implements the encoded polyline format at precision 5.
// Points are [lat, lon] pairs, the same axis order routes are served in.
package polyline

import (
	"errors"
	"math"
	"strings"
)

// ErrMalformed is returned by Decode for truncated or invalid input.
var ErrMalformed = errors.New("malformed polyline")

const factor = 1e5

// Encode encodes [lat, lon] points.
func Encode(points [][2]float64) string {
	var sb strings.Builder
	sb.Grow(len(points) * 8)

	var prevLat, prevLon int64
	for _, p := range points {
		lat := int64(math.Round(p[0] * factor))
		lon := int64(math.Round(p[1] * factor))
		writeValue(&sb, lat-prevLat)
		writeValue(&sb, lon-prevLon)
		prevLat, prevLon = lat, lon
	}
	return sb.String()
}

func writeValue(sb *strings.Builder, v int64) {
	u := uint64(v) << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		sb.WriteByte(byte(0x20|(u&0x1f)) + 63)
		u >>= 5
	}
	sb.WriteByte(byte(u) + 63)
}

// Decode decodes an encoded polyline into [lat, lon] points.
func Decode(encoded string) ([][2]float64, error) {
	var (
		points   [][2]float64
		lat, lon int64
	)
	for i := 0; i < len(encoded); {
		dLat, next, err := readValue(encoded, i)
		if err != nil {
			return nil, err
		}
		dLon, next, err := readValue(encoded, next)
		if err != nil {
			return nil, err
		}
		i = next
		lat += dLat
		lon += dLon
		points = append(points, [2]float64{float64(lat) / factor, float64(lon) / factor})
	}
	return points, nil
}

func readValue(s string, i int) (int64, int, error) {
	var (
		u     uint64
		shift uint
	)
	for {
		if i >= len(s) || shift > 60 {
			return 0, 0, ErrMalformed
		}
		b := s[i]
		if b < 63 || b > 126 {
			return 0, 0, ErrMalformed
		}
		chunk := uint64(b - 63)
		i++
		u |= (chunk & 0x1f) << shift
		shift += 5
		if chunk < 0x20 {
			break
		}
	}
	v := int64(u >> 1)
	if u&1 != 0 {
		v = ^v
	}
	return v, i, nil
}
