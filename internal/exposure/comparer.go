package exposure

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/greenpath/greenpath/internal/geo"
	"github.com/greenpath/greenpath/internal/geocoding"
	"github.com/greenpath/greenpath/internal/recommend"
	"github.com/greenpath/greenpath/internal/telemetry"
)

// minViaPoints is the route length below which no via names are looked up.
const minViaPoints = 7

// ComparerConfig holds configuration for the Comparer.
type ComparerConfig struct {
	// Geocoder resolves via names (optional). Without it Via is always empty.
	Geocoder geocoding.Provider

	// Concurrency bounds parallel reverse lookups. Default: 4
	Concurrency int

	Metrics *telemetry.ProviderMetrics
	Logger  zerolog.Logger
}

// Comparer computes exposure results for recommended routes.
type Comparer struct {
	geocoder    geocoding.Provider
	concurrency int
	metrics     *telemetry.ProviderMetrics
	logger      zerolog.Logger
}

// NewComparer creates a new Comparer.
func NewComparer(cfg ComparerConfig) *Comparer {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Comparer{
		geocoder:    cfg.Geocoder,
		concurrency: concurrency,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
}

// Compare scores the first MaxCompared routes. Via names are best effort:
// a failed lookup drops that name and never fails the comparison.
func (c *Comparer) Compare(ctx context.Context, routes []recommend.EnrichedRoute) []Result {
	if len(routes) > MaxCompared {
		routes = routes[:MaxCompared]
	}
	if len(routes) == 0 {
		return []Result{}
	}

	results := make([]Result, len(routes))
	maxExposure := 0.0
	for i, r := range routes {
		exposure := Index(r.DistanceKm, r.AQI)
		maxExposure = max(maxExposure, exposure)
		results[i] = Result{
			Name:          r.Name,
			DistanceKm:    r.DistanceKm,
			ETAMinutes:    r.ETAMinutes,
			Duration:      r.TimeLabel(),
			BaseAQI:       r.AQI,
			ExposureIndex: exposure,
			Risk:          RiskFor(exposure),
			Via:           []string{},
		}
	}

	for i := range results {
		results[i].AdjustedAQI = DisplayAQIAdjustment(results[i].BaseAQI, results[i].ExposureIndex, maxExposure)
	}

	if len(routes) > 1 {
		c.resolveVia(ctx, routes, results)
	}

	safest := SafestIndex(results)
	for i := range results {
		results[i].Recommended = i == safest
		results[i].Impact = ImpactFor(results[i].ExposureIndex, i == safest)
	}

	return results
}

// resolveVia looks up the places a third and two thirds of the way along
// each route.
func (c *Comparer) resolveVia(ctx context.Context, routes []recommend.EnrichedRoute, results []Result) {
	if c.geocoder == nil {
		return
	}

	names := make([][2]string, len(routes))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, r := range routes {
		n := len(r.Coordinates)
		if n < minViaPoints {
			continue
		}
		for j, idx := range [2]int{n / 3, 2 * n / 3} {
			p := r.Coordinates[idx]
			g.Go(func() error {
				names[i][j] = c.placeName(ctx, geo.Coordinate{Lat: p[0], Lon: p[1]})
				return nil
			})
		}
	}
	_ = g.Wait()

	for i := range results {
		for _, name := range names[i] {
			if name != "" {
				results[i].Via = append(results[i].Via, name)
			}
		}
	}
}

func (c *Comparer) placeName(ctx context.Context, at geo.Coordinate) string {
	ctx, call := c.metrics.Start(ctx, c.geocoder.Name(), "reverse")
	place, err := c.geocoder.Reverse(ctx, at)
	call.End(err)

	if err != nil {
		c.logger.Debug().Err(err).
			Float64("lat", at.Lat).
			Float64("lon", at.Lon).
			Msg("via name lookup failed")
		return ""
	}
	return place.Name
}
