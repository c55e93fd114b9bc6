// Package waqi provides a client for the World Air Quality Index geo feed.
package waqi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenpath/greenpath/internal/airquality"
	"github.com/greenpath/greenpath/internal/geo"
	"github.com/greenpath/greenpath/internal/provider/resilience"
)

const (
	// ProviderName identifies this air-quality provider.
	ProviderName = "waqi"

	// DefaultBaseURL is the WAQI API base URL.
	DefaultBaseURL = "https://api.waqi.info"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the WAQI client.
type ClientConfig struct {
	// Token is the WAQI API token. An empty token fails every Sample call
	// with airquality.ErrMissingToken.
	Token string

	// BaseURL overrides DefaultBaseURL.
	BaseURL string

	// HTTPClient is the HTTP client to use. Defaults to a resilient client.
	HTTPClient HTTPDoer

	// Timeout is the per-attempt timeout for the default client.
	Timeout time.Duration

	// Registry receives provider health updates (optional).
	Registry *resilience.Registry

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	Logger zerolog.Logger
}

// Client is a WAQI API client.
type Client struct {
	token      string
	baseURL    string
	httpClient HTTPDoer
	now        func() time.Time
	logger     zerolog.Logger
}

// NewClient creates a new WAQI client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		token:      cfg.Token,
		baseURL:    baseURL,
		httpClient: httpClient,
		now:        now,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Sample fetches the AQI of the station nearest to the coordinate.
func (c *Client) Sample(ctx context.Context, at geo.Coordinate) (*airquality.Sample, error) {
	if c.token == "" {
		return nil, airquality.ErrMissingToken
	}
	if err := at.Validate(); err != nil {
		return nil, &airquality.Error{
			Provider: ProviderName,
			Code:     "INVALID_COORDINATE",
			Message:  "invalid sample coordinate",
			Err:      err,
		}
	}

	endpoint := fmt.Sprintf("%s/feed/geo:%g;%g/?token=%s", c.baseURL, at.Lat, at.Lon, url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &airquality.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach air quality provider",
			Err:      fmt.Errorf("%w: %w", airquality.ErrProviderUnavailable, err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &airquality.Error{
			Provider: ProviderName,
			Code:     "READ_FAILED",
			Message:  "failed to read air quality response",
			Err:      fmt.Errorf("%w: %w", airquality.ErrProviderUnavailable, err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode)
	}

	var feed feedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, &airquality.Error{
			Provider: ProviderName,
			Code:     "DECODE_FAILED",
			Message:  "malformed air quality response",
			Err:      fmt.Errorf("%w: %w", airquality.ErrProviderUnavailable, err),
		}
	}

	if feed.Status != statusOK {
		var msg string
		_ = json.Unmarshal(feed.Data, &msg)
		c.logger.Warn().
			Str("status", feed.Status).
			Str("provider_message", msg).
			Msg("air quality provider rejected request")
		return nil, &airquality.Error{
			Provider: ProviderName,
			Code:     "PROVIDER_ERROR",
			Message:  "air quality provider returned " + msg,
			Err:      airquality.ErrProviderUnavailable,
		}
	}

	sample := &airquality.Sample{AQI: airquality.DefaultAQI, Fallback: true, FetchedAt: c.now()}

	var data feedData
	if err := json.Unmarshal(feed.Data, &data); err == nil {
		sample.Station = data.City.Name
		if aqi, ok := parseAQI(data.AQI); ok {
			sample.AQI = aqi
			sample.Fallback = false
		}
	}

	if sample.Fallback {
		c.logger.Debug().
			Float64("lat", at.Lat).
			Float64("lon", at.Lon).
			Int("aqi", sample.AQI).
			Msg("no numeric AQI for location, using default")
	}

	return sample, nil
}

// parseAQI accepts a JSON number or a numeric string such as "85".
// Stations without data report "-", which is rejected.
func parseAQI(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0, false
	}
	n, err := num.Float64()
	if err != nil || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return int(math.Round(n)), true
}

func statusError(status int) error {
	if status == http.StatusTooManyRequests {
		return &airquality.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "air quality provider rate limit exceeded",
			Err:      airquality.ErrRateLimitExceeded,
		}
	}
	return &airquality.Error{
		Provider: ProviderName,
		Code:     fmt.Sprintf("HTTP_%d", status),
		Message:  fmt.Sprintf("air quality provider returned status %d", status),
		Err:      airquality.ErrProviderUnavailable,
	}
}
