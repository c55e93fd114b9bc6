// Package osrm provides a client for the OSRM route service.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenpath/greenpath/internal/geo"
	"github.com/greenpath/greenpath/internal/provider/resilience"
	"github.com/greenpath/greenpath/internal/routing"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "osrm"

	// DefaultBaseURL is the public OSRM demo server.
	DefaultBaseURL = "https://router.project-osrm.org"

	// DefaultProfile is the OSRM profile used for all requests.
	DefaultProfile = "driving"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OSRM client.
type ClientConfig struct {
	BaseURL string

	// Profile overrides DefaultProfile.
	Profile string

	// HTTPClient is the HTTP client to use. Defaults to a resilient client.
	HTTPClient HTTPDoer

	Timeout time.Duration

	// Registry receives provider health updates (optional).
	Registry *resilience.Registry

	Logger zerolog.Logger
}

// Client is an OSRM API client.
type Client struct {
	baseURL    string
	profile    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new OSRM client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	profile := cfg.Profile
	if profile == "" {
		profile = DefaultProfile
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
		baseURL:    baseURL,
		profile:    profile,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Alternatives requests the main route plus alternatives between two points.
func (c *Client) Alternatives(ctx context.Context, from, to geo.Coordinate) ([]routing.RawRoute, error) {
	for _, p := range []geo.Coordinate{from, to} {
		if err := p.Validate(); err != nil {
			return nil, &routing.Error{
				Provider: ProviderName,
				Code:     "INVALID_COORDINATE",
				Message:  "invalid route endpoint",
				Err:      err,
			}
		}
	}

	// OSRM takes lon,lat pairs separated by a semicolon.
	endpoint := fmt.Sprintf("%s/route/v1/%s/%s,%s;%s,%s?overview=full&geometries=geojson&alternatives=true",
		c.baseURL, c.profile,
		formatFloat(from.Lon), formatFloat(from.Lat),
		formatFloat(to.Lon), formatFloat(to.Lat),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Float64("origin_lat", from.Lat).
		Float64("origin_lon", from.Lon).
		Float64("dest_lat", to.Lat).
		Float64("dest_lon", to.Lon).
		Msg("requesting routes from OSRM")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach routing provider",
			Err:      fmt.Errorf("%w: %w", routing.ErrProviderUnavailable, err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "READ_FAILED",
			Message:  "failed to read routing response",
			Err:      fmt.Errorf("%w: %w", routing.ErrProviderUnavailable, err),
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "routing rate limit exceeded",
			Err:      routing.ErrRateLimitExceeded,
		}
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("SERVER_%d", resp.StatusCode),
			Message:  "routing provider is temporarily unavailable",
			Err:      routing.ErrProviderUnavailable,
		}
	}

	// OSRM reports query errors as 4xx with a JSON code, so decode before
	// looking at the status.
	var rr routeResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  "malformed routing response",
			Err:      fmt.Errorf("%w: %w", routing.ErrProviderUnavailable, err),
		}
	}

	switch rr.Code {
	case codeOK:
	case codeNoRoute, codeNoSegment:
		c.logger.Debug().Str("code", rr.Code).Msg("no route between points")
		return []routing.RawRoute{}, nil
	default:
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     rr.Code,
			Message:  "routing provider rejected query: " + rr.Message,
			Err:      routing.ErrProviderUnavailable,
		}
	}

	routes := make([]routing.RawRoute, 0, len(rr.Routes))
	for i := range rr.Routes {
		r := &rr.Routes[i]
		routes = append(routes, routing.RawRoute{
			DistanceMeters:  r.Distance,
			DurationSeconds: r.Duration,
			Geometry:        r.Geometry.Coordinates,
		})
	}

	c.logger.Debug().
		Int("route_count", len(routes)).
		Msg("received routes from OSRM")

	return routes, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
