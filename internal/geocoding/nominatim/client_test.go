package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenpath/greenpath/internal/geo"
	"github.com/greenpath/greenpath/internal/geocoding"
)

func newTestClient(t *testing.T, suffix string, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		BaseURL:      server.URL,
		RegionSuffix: suffix,
		UserAgent:    "greenpath-test",
		HTTPClient:   server.Client(),
		Logger:       zerolog.Nop(),
	})
}

func TestClient_Search(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Charbagh, Lucknow, India", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "greenpath-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[{"lat":"26.8320","lon":"80.9230","display_name":"Charbagh"}]`))
	})

	coords, err := client.Search(context.Background(), "Charbagh")
	require.NoError(t, err)
	require.Len(t, coords, 1)
	assert.Equal(t, geo.Coordinate{Lat: 26.832, Lon: 80.923}, coords[0])
}

func TestClient_Search_CustomSuffix(t *testing.T) {
	tests := []struct {
		name   string
		suffix string
		want   string
	}{
		{"custom", ", Pune, India", "Shivajinagar, Pune, India"},
		{"disabled", NoRegionSuffix, "Shivajinagar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.suffix, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.want, r.URL.Query().Get("q"))
				_, _ = w.Write([]byte(`[]`))
			})

			_, err := client.Search(context.Background(), "Shivajinagar")
			require.NoError(t, err)
		})
	}
}

func TestClient_Search_NoMatch(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	coords, err := client.Search(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Empty(t, coords)
}

func TestClient_Search_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
			want:    geocoding.ErrProviderUnavailable,
		},
		{
			name:    "rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
			want:    geocoding.ErrRateLimitExceeded,
		},
		{
			name:    "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{`)) },
			want:    geocoding.ErrProviderUnavailable,
		},
		{
			name: "non numeric coordinates",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`[{"lat":"north","lon":"80.9"}]`))
			},
			want: geocoding.ErrProviderUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "", tt.handler)

			_, err := client.Search(context.Background(), "Charbagh")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_Reverse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"suburb first", `{"address":{"suburb":"Aminabad","neighbourhood":"Latouche","road":"MG Road"}}`, "Aminabad"},
		{"neighbourhood next", `{"address":{"neighbourhood":"Latouche","road":"MG Road"}}`, "Latouche"},
		{"road last", `{"address":{"road":"MG Road"}}`, "MG Road"},
		{"nothing", `{"error":"Unable to geocode"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/reverse", r.URL.Path)
				assert.Equal(t, "26.85", r.URL.Query().Get("lat"))
				assert.Equal(t, "80.95", r.URL.Query().Get("lon"))
				_, _ = w.Write([]byte(tt.body))
			})

			place, err := client.Reverse(context.Background(), geo.Coordinate{Lat: 26.85, Lon: 80.95})
			require.NoError(t, err)
			assert.Equal(t, tt.want, place.Name)
		})
	}
}

func TestClient_Reverse_Failure(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Reverse(context.Background(), geo.Coordinate{Lat: 26.85, Lon: 80.95})
	assert.ErrorIs(t, err, geocoding.ErrProviderUnavailable)
}
