package waqi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenpath/greenpath/internal/airquality"
	"github.com/greenpath/greenpath/internal/geo"
)

var charbagh = geo.Coordinate{Lat: 26.8320, Lon: 80.9230}

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	fixed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return NewClient(ClientConfig{
		Token:      token,
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Now:        func() time.Time { return fixed },
		Logger:     zerolog.Nop(),
	})
}

func TestClient_Sample(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feed/geo:26.832;80.923/", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("token"))
		_, _ = w.Write([]byte(`{"status":"ok","data":{"aqi":80,"idx":1234,"city":{"name":"Lalbagh, Lucknow"}}}`))
	})

	sample, err := client.Sample(context.Background(), charbagh)
	require.NoError(t, err)

	assert.Equal(t, 80, sample.AQI)
	assert.Equal(t, "Lalbagh, Lucknow", sample.Station)
	assert.False(t, sample.Fallback)
	assert.Equal(t, 2026, sample.FetchedAt.Year())
}

func TestClient_Sample_NumericString(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","data":{"aqi":"153","city":{"name":"x"}}}`))
	})

	sample, err := client.Sample(context.Background(), charbagh)
	require.NoError(t, err)
	assert.Equal(t, 153, sample.AQI)
	assert.False(t, sample.Fallback)
}

func TestClient_Sample_FallsBackWithoutNumericAQI(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"dash", `{"status":"ok","data":{"aqi":"-","city":{"name":"x"}}}`},
		{"missing", `{"status":"ok","data":{"city":{"name":"x"}}}`},
		{"negative", `{"status":"ok","data":{"aqi":-1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			sample, err := client.Sample(context.Background(), charbagh)
			require.NoError(t, err)
			assert.Equal(t, airquality.DefaultAQI, sample.AQI)
			assert.True(t, sample.Fallback)
		})
	}
}

func TestClient_Sample_MissingToken(t *testing.T) {
	var called bool
	client := newTestClient(t, "", func(http.ResponseWriter, *http.Request) {
		called = true
	})

	_, err := client.Sample(context.Background(), charbagh)
	assert.ErrorIs(t, err, airquality.ErrMissingToken)
	assert.False(t, called, "provider must not be contacted without a token")
}

func TestClient_Sample_ProviderError(t *testing.T) {
	client := newTestClient(t, "bad", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","data":"Invalid key"}`))
	})

	_, err := client.Sample(context.Background(), charbagh)
	require.Error(t, err)
	assert.ErrorIs(t, err, airquality.ErrProviderUnavailable)

	var aqErr *airquality.Error
	require.ErrorAs(t, err, &aqErr)
	assert.Equal(t, "PROVIDER_ERROR", aqErr.Code)
	assert.Contains(t, aqErr.Message, "Invalid key")
}

func TestClient_Sample_HTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, airquality.ErrRateLimitExceeded},
		{"server error", http.StatusBadGateway, airquality.ErrProviderUnavailable},
		{"forbidden", http.StatusForbidden, airquality.ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.Sample(context.Background(), charbagh)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_Sample_MalformedBody(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	_, err := client.Sample(context.Background(), charbagh)
	assert.ErrorIs(t, err, airquality.ErrProviderUnavailable)
}

func TestClient_Sample_InvalidCoordinate(t *testing.T) {
	client := newTestClient(t, "tok", func(http.ResponseWriter, *http.Request) {})

	_, err := client.Sample(context.Background(), geo.Coordinate{Lat: 91})
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
}

func TestClient_Name(t *testing.T) {
	assert.Equal(t, ProviderName, NewClient(ClientConfig{}).Name())
}
