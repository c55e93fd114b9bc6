package polyline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reference example from the format's documentation.
var reference = [][2]float64{
	{38.5, -120.2},
	{40.7, -120.95},
	{43.252, -126.453},
}

const referenceEncoded = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

func TestEncode(t *testing.T) {
	assert.Equal(t, referenceEncoded, Encode(reference))
	assert.Empty(t, Encode(nil))
}

func TestDecode(t *testing.T) {
	points, err := Decode(referenceEncoded)
	require.NoError(t, err)
	require.Len(t, points, len(reference))
	for i := range reference {
		assert.InDelta(t, reference[i][0], points[i][0], 1e-6)
		assert.InDelta(t, reference[i][1], points[i][1], 1e-6)
	}

	empty, err := Decode("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"truncated value", "_p~iF~ps|U_"},
		{"missing longitude", "_p~iF"},
		{"invalid byte", "_p~iF ps|U"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.encoded)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestRoundTrip_Lucknow(t *testing.T) {
	route := [][2]float64{
		{26.83201, 80.92312},
		{26.83455, 80.93001},
		{26.84092, 80.94017},
		{26.84671, 80.94623},
	}

	points, err := Decode(Encode(route))
	require.NoError(t, err)
	require.Len(t, points, len(route))
	for i := range route {
		assert.InDelta(t, route[i][0], points[i][0], 1e-5)
		assert.InDelta(t, route[i][1], points[i][1], 1e-5)
	}
}
