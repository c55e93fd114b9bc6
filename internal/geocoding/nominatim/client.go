// Package nominatim provides a client for the OpenStreetMap Nominatim geocoder.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenpath/greenpath/internal/geo"
	"github.com/greenpath/greenpath/internal/geocoding"
	"github.com/greenpath/greenpath/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultRegionSuffix scopes free-text searches to the service area.
	DefaultRegionSuffix = ", Lucknow, India"

	// DefaultUserAgent is sent on every request as required by the
	// Nominatim usage policy.
	DefaultUserAgent = "greenpath-route-service"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	BaseURL string

	// RegionSuffix is appended to every search text. Defaults to
	// DefaultRegionSuffix; set NoRegionSuffix to disable.
	RegionSuffix string

	UserAgent string

	// HTTPClient is the HTTP client to use. Defaults to a resilient client.
	HTTPClient HTTPDoer

	Timeout time.Duration

	// Registry receives provider health updates (optional).
	Registry *resilience.Registry

	Logger zerolog.Logger
}

// NoRegionSuffix disables the region suffix when used as RegionSuffix.
const NoRegionSuffix = "-"

// Client is a Nominatim API client.
type Client struct {
	baseURL      string
	regionSuffix string
	userAgent    string
	httpClient   HTTPDoer
	logger       zerolog.Logger
}

// NewClient creates a new Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	suffix := cfg.RegionSuffix
	switch suffix {
	case "":
		suffix = DefaultRegionSuffix
	case NoRegionSuffix:
		suffix = ""
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
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

	return &Client{
		baseURL:      baseURL,
		regionSuffix: suffix,
		userAgent:    userAgent,
		httpClient:   httpClient,
		logger:       cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Search geocodes text within the configured region and returns at most one match.
func (c *Client) Search(ctx context.Context, text string) ([]geo.Coordinate, error) {
	q := url.Values{}
	q.Set("q", text+c.regionSuffix)
	q.Set("format", "json")
	q.Set("limit", "1")

	var results []searchResult
	if err := c.get(ctx, "/search", q, &results); err != nil {
		return nil, err
	}

	coords := make([]geo.Coordinate, 0, len(results))
	for _, r := range results {
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lon, errLon := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLon != nil {
			return nil, &geocoding.Error{
				Provider: ProviderName,
				Code:     "DECODE_FAILED",
				Message:  "geocoder returned non-numeric coordinates",
				Err:      geocoding.ErrProviderUnavailable,
			}
		}
		coords = append(coords, geo.Coordinate{Lat: lat, Lon: lon})
	}

	c.logger.Debug().
		Str("query", text).
		Int("matches", len(coords)).
		Msg("geocoded place")

	return coords, nil
}

// Reverse returns the locality at a coordinate, preferring suburb, then
// neighbourhood, then road.
func (c *Client) Reverse(ctx context.Context, at geo.Coordinate) (*geocoding.Place, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(at.Lon, 'f', -1, 64))
	q.Set("format", "json")

	var result reverseResult
	if err := c.get(ctx, "/reverse", q, &result); err != nil {
		return nil, err
	}

	// "Unable to geocode" comes back as 200 with an error field; that is an
	// empty place, not a provider failure.
	return &geocoding.Place{
		Name:        result.Address.label(),
		DisplayName: result.DisplayName,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &geocoding.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach geocoding provider",
			Err:      fmt.Errorf("%w: %w", geocoding.ErrProviderUnavailable, err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &geocoding.Error{
			Provider: ProviderName,
			Code:     "READ_FAILED",
			Message:  "failed to read geocoding response",
			Err:      fmt.Errorf("%w: %w", geocoding.ErrProviderUnavailable, err),
		}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &geocoding.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "geocoding usage limit exceeded",
			Err:      geocoding.ErrRateLimitExceeded,
		}
	case resp.StatusCode != http.StatusOK:
		return &geocoding.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("geocoding provider returned status %d", resp.StatusCode),
			Err:      geocoding.ErrProviderUnavailable,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &geocoding.Error{
			Provider: ProviderName,
			Code:     "DECODE_FAILED",
			Message:  "malformed geocoding response",
			Err:      fmt.Errorf("%w: %w", geocoding.ErrProviderUnavailable, err),
		}
	}
	return nil
}
