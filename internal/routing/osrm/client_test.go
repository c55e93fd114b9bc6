package osrm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenpath/greenpath/internal/geo"
	"github.com/greenpath/greenpath/internal/routing"
)

var (
	charbagh   = geo.Coordinate{Lat: 26.832, Lon: 80.923}
	hazratganj = geo.Coordinate{Lat: 26.8467, Lon: 80.9462}
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})
}

func TestClient_Alternatives(t *testing.T) {
	fixture, err := os.ReadFile("testdata/route_response.json")
	require.NoError(t, err)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/route/v1/driving/80.923,26.832;80.9462,26.8467", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "full", q.Get("overview"))
		assert.Equal(t, "geojson", q.Get("geometries"))
		assert.Equal(t, "true", q.Get("alternatives"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(fixture)
	})

	routes, err := client.Alternatives(context.Background(), charbagh, hazratganj)
	require.NoError(t, err)
	require.Len(t, routes, 2)

	assert.InDelta(t, 5000.0, routes[0].DistanceMeters, 1e-9)
	assert.InDelta(t, 612.4, routes[0].DurationSeconds, 1e-9)
	require.Len(t, routes[0].Geometry, 4)
	assert.Equal(t, [2]float64{80.9230, 26.8320}, routes[0].Geometry[0], "geometry stays lon,lat")
	assert.InDelta(t, 6400.5, routes[1].DistanceMeters, 1e-9)
}

func TestClient_Alternatives_NoRoute(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"NoRoute","message":"Impossible route between points"}`))
	})

	routes, err := client.Alternatives(context.Background(), charbagh, hazratganj)
	require.NoError(t, err)
	assert.Empty(t, routes)
	assert.NotNil(t, routes)
}

func TestClient_Alternatives_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  error
		wantCode string
	}{
		{"invalid query", http.StatusBadRequest, `{"code":"InvalidQuery","message":"Query string malformed"}`, routing.ErrProviderUnavailable, "InvalidQuery"},
		{"server error", http.StatusBadGateway, ``, routing.ErrProviderUnavailable, "SERVER_502"},
		{"rate limited", http.StatusTooManyRequests, ``, routing.ErrRateLimitExceeded, "RATE_LIMIT"},
		{"garbage", http.StatusOK, `not json`, routing.ErrProviderUnavailable, "HTTP_200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Alternatives(context.Background(), charbagh, hazratganj)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var routeErr *routing.Error
			require.ErrorAs(t, err, &routeErr)
			assert.Equal(t, tt.wantCode, routeErr.Code)
			assert.Equal(t, ProviderName, routeErr.Provider)
		})
	}
}

func TestClient_Alternatives_InvalidCoordinate(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("provider must not be called")
	})

	_, err := client.Alternatives(context.Background(), geo.Coordinate{Lat: 0, Lon: 200}, hazratganj)
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
}

func TestError_IsRetryable(t *testing.T) {
	assert.True(t, (&routing.Error{Err: routing.ErrRateLimitExceeded}).IsRetryable())
	assert.True(t, (&routing.Error{Code: "REQUEST_FAILED", Err: routing.ErrProviderUnavailable}).IsRetryable())
	assert.False(t, (&routing.Error{Code: "InvalidQuery", Err: routing.ErrProviderUnavailable}).IsRetryable())
}
