package resilience

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrCircuitOpen is returned without contacting the provider while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ClientConfig configures a resilient HTTP client for one provider.
type ClientConfig struct {
	// Name is the provider name, used for the breaker and the registry.
	Name string

	// Timeout bounds a single attempt. Default: 10s
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt. Zero
	// means the default (2); use NoRetries to disable.
	MaxRetries uint64

	// InitialInterval is the first backoff interval. Default: 200ms
	InitialInterval time.Duration

	// MaxInterval caps the backoff interval. Default: 2s
	MaxInterval time.Duration

	// Breaker overrides DefaultBreakerConfig.
	Breaker *BreakerConfig

	// Registry receives health updates. Optional.
	Registry *Registry

	// Transport overrides http.DefaultTransport, mainly for tests.
	Transport http.RoundTripper
}

// NoRetries disables retrying when set as MaxRetries.
const NoRetries = ^uint64(0)

// DefaultClientConfig returns the defaults for a provider client.
func DefaultClientConfig(name string) ClientConfig {
	breaker := DefaultBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      2,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Breaker:         &breaker,
	}
}

// Client executes HTTP requests through a circuit breaker with retries.
// It satisfies the HTTPDoer interfaces of the provider packages.
type Client struct {
	name     string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	registry *Registry
	cfg      ClientConfig
}

// NewClient creates a resilient client and registers it when a registry is set.
func NewClient(cfg ClientConfig) *Client {
	defaults := DefaultClientConfig(cfg.Name)
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	switch cfg.MaxRetries {
	case 0:
		cfg.MaxRetries = defaults.MaxRetries
	case NoRetries:
		cfg.MaxRetries = 0
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = defaults.InitialInterval
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = defaults.MaxInterval
	}
	if cfg.Breaker == nil {
		cfg.Breaker = defaults.Breaker
	}

	c := &Client{
		name:     cfg.Name,
		http:     &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		breaker:  newBreaker[*http.Response](*cfg.Breaker), //nolint:bodyclose // type param, not response
		registry: cfg.Registry,
		cfg:      cfg,
	}

	if c.registry != nil {
		c.registry.Register(cfg.Name, c)
	}

	return c
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.name
}

// Do executes the request. 5xx responses and transport errors are retried
// with exponential backoff; 4xx responses are returned as-is. When retries
// are exhausted on a 5xx the last response is returned without error so the
// caller can map the status code.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// Retry with exponential backoff
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx)

	var last *http.Response
	attempt := func() error {
		if last != nil {
			last.Body.Close()
			last = nil
		}

		// Execute through circuit breaker
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // closed by caller
			r, err := c.http.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			// Treat 5xx as failures for the breaker
			if r.StatusCode >= http.StatusInternalServerError {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			last = resp
			return err
		}

		last = resp
		return nil
	}

	// Record health
	err := backoff.Retry(attempt, policy)
	if err != nil {
		c.recordFailure(err)
		if last != nil {
			return last, nil
		}
		return nil, err
	}

	c.recordSuccess()
	return last, nil
}

func (c *Client) recordSuccess() {
	if c.registry != nil {
		c.registry.RecordSuccess(c.name)
	}
}

func (c *Client) recordFailure(err error) {
	if c.registry != nil {
		c.registry.RecordFailure(c.name, err)
	}
}

// ServerError is a 5xx response seen by the breaker.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// State returns the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the breaker counters.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}
