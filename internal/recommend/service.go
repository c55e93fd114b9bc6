package recommend

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/greenpath/greenpath/internal/airquality"
	"github.com/greenpath/greenpath/internal/geo"
	"github.com/greenpath/greenpath/internal/geocoding"
	"github.com/greenpath/greenpath/internal/routing"
	"github.com/greenpath/greenpath/internal/scoring"
	"github.com/greenpath/greenpath/internal/telemetry"
)

// DefaultTimeZone is the zone whose wall-clock hour drives the traffic estimate.
const DefaultTimeZone = "Asia/Kolkata"

// ServiceConfig holds configuration for the recommendation service.
type ServiceConfig struct {
	Geocoder   geocoding.Provider
	Router     routing.Provider
	AirQuality airquality.Provider

	// Metrics records provider calls (optional).
	Metrics *telemetry.ProviderMetrics

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Location is the traffic time zone. Defaults to DefaultTimeZone.
	Location *time.Location

	Logger zerolog.Logger
}

// Service runs the route enrichment pipeline. It holds no per-request state
// and is safe for concurrent use.
type Service struct {
	geocoder   geocoding.Provider
	router     routing.Provider
	airQuality airquality.Provider
	metrics    *telemetry.ProviderMetrics
	now        func() time.Time
	loc        *time.Location
	logger     zerolog.Logger
}

// NewService creates a new recommendation service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	loc := cfg.Location
	if loc == nil {
		loc = LoadLocation(DefaultTimeZone)
	}

	return &Service{
		geocoder:   cfg.Geocoder,
		router:     cfg.Router,
		airQuality: cfg.AirQuality,
		metrics:    cfg.Metrics,
		now:        now,
		loc:        loc,
		logger:     cfg.Logger,
	}
}

// LoadLocation loads a time zone, falling back to India Standard Time when
// the zone database does not know the name.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("IST", 5*60*60+30*60)
	}
	return loc
}

// FindRoutes geocodes both places, fetches route alternatives and one AQI
// sample for the source, and returns the routes scored and ranked.
// An empty route list is a successful result. FindRoutes has no side
// effects; wrap it in a HistoryRecorder to store searches.
func (s *Service) FindRoutes(ctx context.Context, source, destination string) (*Result, error) {
	source = strings.TrimSpace(source)
	destination = strings.TrimSpace(destination)
	if source == "" || destination == "" {
		return nil, newError(KindInput, "Source and destination are required", ErrMissingInput)
	}

	source = NormalizePlace(source)
	destination = NormalizePlace(destination)

	logger := s.logger.With().
		Str("source", source).
		Str("destination", destination).
		Logger()

	from, to, err := s.geocodePair(ctx, source, destination)
	if err != nil {
		return nil, err
	}

	// Routes and the AQI sample only depend on the geocodes. Both calls run to
	// completion so that an empty route list wins over an AQI failure.
	var (
		raw      []routing.RawRoute
		routeErr error
		sample   *airquality.Sample
		aqErr    error
		g        errgroup.Group
	)
	g.Go(func() error {
		raw, routeErr = s.alternatives(ctx, from, to)
		return nil
	})
	g.Go(func() error {
		sample, aqErr = s.sample(ctx, from)
		return nil
	})
	_ = g.Wait()

	if routeErr != nil {
		logger.Error().Err(routeErr).Str("provider", s.router.Name()).Msg("route alternatives failed")
		return nil, newError(KindProviderUnavailable, "Unable to fetch routes", routeErr)
	}

	result := &Result{
		Source:      source,
		Destination: destination,
		Routes:      []EnrichedRoute{},
	}
	if len(raw) == 0 {
		logger.Info().Msg("no routes between locations")
		return result, nil
	}

	if aqErr != nil {
		return nil, s.airQualityError(logger, aqErr)
	}

	hour := s.now().In(s.loc).Hour()
	estimate := scoring.EstimateTraffic(hour)

	result.Routes = Enrich(raw, sample.AQI, estimate)
	result.Recommended = &result.Routes[0]
	result.AirQuality = newAirQuality(source, from, sample)

	logger.Info().
		Int("routes", len(result.Routes)).
		Int("aqi", sample.AQI).
		Int("hour", hour).
		Int("health_score", result.Recommended.HealthScore).
		Msg("routes recommended")

	return result, nil
}

// AirQualityAt geocodes a single place and returns its AQI reading.
func (s *Service) AirQualityAt(ctx context.Context, location string) (*AirQuality, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, newError(KindInput, "Location is required", ErrMissingInput)
	}
	location = NormalizePlace(location)

	at, err := s.geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	sample, err := s.sample(ctx, at)
	if err != nil {
		return nil, s.airQualityError(s.logger.With().Str("location", location).Logger(), err)
	}

	return newAirQuality(location, at, sample), nil
}

// Enrich scores raw router alternatives against one shared AQI reading and
// traffic estimate. The result is sorted cleanest first and the first
// element is the recommendation.
func Enrich(raw []routing.RawRoute, aqi int, estimate scoring.TrafficEstimate) []EnrichedRoute {
	type scored struct {
		route   EnrichedRoute
		traffic int
	}

	items := make([]scored, len(raw))
	for i, r := range raw {
		km := r.DistanceMeters / 1000
		items[i] = scored{
			route: EnrichedRoute{
				Name:              fmt.Sprintf("Route %d", i+1),
				DistanceKm:        km,
				PollutionCategory: scoring.PollutionCategoryFor(aqi),
				AQI:               aqi,
				Coordinates:       geo.SwapAxes(r.Geometry),
				IsPeakHour:        estimate.Peak,
			},
			traffic: scoring.RouteTraffic(estimate.Base, km, aqi),
		}
	}

	// Every route shares one AQI sample, so this keeps router order. It is
	// kept so per-route sampling would rank correctly.
	slices.SortStableFunc(items, func(a, b scored) int {
		return cmp.Compare(a.route.AQI, b.route.AQI)
	})

	out := make([]EnrichedRoute, len(items))
	for i, it := range items {
		r := it.route
		r.TrafficPercent = DisplayTrafficAdjustment(it.traffic, len(items), i)
		r.TrafficLevel = scoring.TrafficCategoryFor(r.TrafficPercent)
		r.ETAMinutes = scoring.ETAMinutes(r.DistanceKm, r.TrafficPercent)
		r.HealthScore = scoring.HealthScore(aqi, r.TrafficPercent, scoring.Hazards{})
		out[i] = r
	}
	return out
}

// DisplayTrafficAdjustment lowers the traffic shown for a route by ten points
// per position from the end of the list, never below scoring.MinTraffic.
// It is a presentation heuristic, not a traffic measurement.
func DisplayTrafficAdjustment(traffic, total, index int) int {
	return max(scoring.MinTraffic, traffic-10*(total-index))
}

// NormalizePlace lower-cases a place name and capitalizes each word, so
// "CHARBAGH railway" becomes "Charbagh Railway".
func NormalizePlace(s string) string {
	runes := []rune(strings.ToLower(strings.TrimSpace(s)))
	inWord := false
	for i, r := range runes {
		word := r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
		if word && !inWord {
			runes[i] = unicode.ToUpper(r)
		}
		inWord = word
	}
	return string(runes)
}

func (s *Service) geocodePair(ctx context.Context, source, destination string) (from, to geo.Coordinate, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		from, err = s.geocode(gctx, source)
		return err
	})
	g.Go(func() error {
		var err error
		to, err = s.geocode(gctx, destination)
		return err
	})
	err = g.Wait()
	return from, to, err
}

func (s *Service) geocode(ctx context.Context, place string) (geo.Coordinate, error) {
	ctx, call := s.metrics.Start(ctx, s.geocoder.Name(), "search")
	coords, err := s.geocoder.Search(ctx, place)
	call.End(err)

	if err != nil {
		s.logger.Error().Err(err).
			Str("provider", s.geocoder.Name()).
			Str("place", place).
			Msg("geocoding failed")
		return geo.Coordinate{}, newError(KindProviderUnavailable, "Unable to reach the geocoding service", err)
	}
	if len(coords) == 0 {
		return geo.Coordinate{}, newError(KindLocationNotFound, "Location not found: "+place, nil)
	}
	return coords[0], nil
}

func (s *Service) alternatives(ctx context.Context, from, to geo.Coordinate) ([]routing.RawRoute, error) {
	ctx, call := s.metrics.Start(ctx, s.router.Name(), "alternatives")
	routes, err := s.router.Alternatives(ctx, from, to)
	call.End(err)
	return routes, err
}

func (s *Service) sample(ctx context.Context, at geo.Coordinate) (*airquality.Sample, error) {
	ctx, call := s.metrics.Start(ctx, s.airQuality.Name(), "sample")
	sample, err := s.airQuality.Sample(ctx, at)
	call.End(err)
	return sample, err
}

func (s *Service) airQualityError(logger zerolog.Logger, err error) error {
	if errors.Is(err, airquality.ErrMissingToken) {
		logger.Error().Err(err).Msg("air quality token is not configured")
		return newError(KindConfiguration, "air-quality token missing", err)
	}
	logger.Error().Err(err).Str("provider", s.airQuality.Name()).Msg("air quality sample failed")
	return newError(KindProviderUnavailable, "Unable to fetch air quality", err)
}

func newAirQuality(location string, at geo.Coordinate, sample *airquality.Sample) *AirQuality {
	return &AirQuality{
		Location:  location,
		At:        at,
		AQI:       sample.AQI,
		Category:  scoring.PollutionCategoryFor(sample.AQI),
		Station:   sample.Station,
		Fallback:  sample.Fallback,
		FetchedAt: sample.FetchedAt,
	}
}
