package exposure_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenpath/greenpath/internal/exposure"
	"github.com/greenpath/greenpath/internal/geo"
	"github.com/greenpath/greenpath/internal/geocoding"
	"github.com/greenpath/greenpath/internal/recommend"
)

type fakeGeocoder struct {
	mu     sync.Mutex
	names  map[geo.Coordinate]string
	fail   map[geo.Coordinate]bool
	lookup atomic.Int32
}

func (f *fakeGeocoder) Name() string { return "fake-geocoder" }

func (f *fakeGeocoder) Search(context.Context, string) ([]geo.Coordinate, error) {
	return nil, nil
}

func (f *fakeGeocoder) Reverse(_ context.Context, at geo.Coordinate) (*geocoding.Place, error) {
	f.lookup.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[at] {
		return nil, errors.New("reverse failed")
	}
	return &geocoding.Place{Name: f.names[at]}, nil
}

// path builds n points along a line; point i is (26+i/100, 80+i/100).
func path(n int) [][2]float64 {
	pts := make([][2]float64, n)
	for i := range pts {
		pts[i] = [2]float64{26 + float64(i)/100, 80 + float64(i)/100}
	}
	return pts
}

func at(pts [][2]float64, i int) geo.Coordinate {
	return geo.Coordinate{Lat: pts[i][0], Lon: pts[i][1]}
}

func route(name string, km float64, aqi int, coords [][2]float64) recommend.EnrichedRoute {
	return recommend.EnrichedRoute{
		Name:        name,
		DistanceKm:  km,
		AQI:         aqi,
		ETAMinutes:  10,
		Coordinates: coords,
	}
}

func TestCompare_ScenarioD(t *testing.T) {
	comparer := exposure.NewComparer(exposure.ComparerConfig{Logger: zerolog.Nop()})

	results := comparer.Compare(context.Background(), []recommend.EnrichedRoute{
		route("Route 1", 2.5, 80, nil),
		route("Route 2", 7.5, 80, nil),
	})
	require.Len(t, results, 2)

	first, second := results[0], results[1]
	assert.InDelta(t, 100.0, first.ExposureIndex, 1e-9)
	assert.InDelta(t, 300.0, second.ExposureIndex, 1e-9)
	assert.Equal(t, 76, first.AdjustedAQI, "round(80*0.95)")
	assert.Equal(t, 92, second.AdjustedAQI)
	assert.Equal(t, 80, first.BaseAQI)
	assert.Equal(t, exposure.RiskLow, first.Risk)
	assert.Equal(t, exposure.RiskMedium, second.Risk)

	assert.True(t, first.Recommended)
	assert.False(t, second.Recommended)
	assert.Equal(t, exposure.TonePositive, first.Impact.Tone)
	assert.Equal(t, exposure.ToneWarning, second.Impact.Tone)
	assert.Equal(t, "10 mins", first.Duration)
}

func TestCompare_OnlyFirstTwoRoutes(t *testing.T) {
	comparer := exposure.NewComparer(exposure.ComparerConfig{Logger: zerolog.Nop()})

	results := comparer.Compare(context.Background(), []recommend.EnrichedRoute{
		route("Route 1", 9, 80, nil),
		route("Route 2", 4, 80, nil),
		route("Route 3", 1, 80, nil),
	})

	require.Len(t, results, 2)
	assert.Equal(t, "Route 2", results[1].Name)
	assert.True(t, results[1].Recommended, "lowest exposure among the compared routes")
}

func TestCompare_Empty(t *testing.T) {
	comparer := exposure.NewComparer(exposure.ComparerConfig{Logger: zerolog.Nop()})

	results := comparer.Compare(context.Background(), nil)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestCompare_ViaNames(t *testing.T) {
	long := path(9)  // lookups at 3 and 6
	other := path(7) // lookups at 2 and 4

	geocoder := &fakeGeocoder{
		names: map[geo.Coordinate]string{
			at(long, 3):  "Aminabad",
			at(long, 6):  "Kaiserbagh",
			at(other, 2): "Lalbagh",
			at(other, 4): "",
		},
	}
	comparer := exposure.NewComparer(exposure.ComparerConfig{Geocoder: geocoder, Logger: zerolog.Nop()})

	results := comparer.Compare(context.Background(), []recommend.EnrichedRoute{
		route("Route 1", 5, 80, long),
		route("Route 2", 6, 80, other),
	})

	assert.Equal(t, []string{"Aminabad", "Kaiserbagh"}, results[0].Via)
	assert.Equal(t, []string{"Lalbagh"}, results[1].Via, "empty names are dropped")
	assert.Equal(t, int32(4), geocoder.lookup.Load())
}

func TestCompare_ViaNamesBestEffort(t *testing.T) {
	pts := path(9)
	geocoder := &fakeGeocoder{
		names: map[geo.Coordinate]string{at(pts, 6): "Kaiserbagh"},
		fail:  map[geo.Coordinate]bool{at(pts, 3): true},
	}
	comparer := exposure.NewComparer(exposure.ComparerConfig{Geocoder: geocoder, Logger: zerolog.Nop()})

	results := comparer.Compare(context.Background(), []recommend.EnrichedRoute{
		route("Route 1", 5, 80, pts),
		route("Route 2", 6, 80, pts),
	})

	assert.Equal(t, []string{"Kaiserbagh"}, results[0].Via)
	assert.Equal(t, []string{"Kaiserbagh"}, results[1].Via)
}

func TestCompare_NoViaLookups(t *testing.T) {
	tests := []struct {
		name   string
		routes []recommend.EnrichedRoute
	}{
		{"single route", []recommend.EnrichedRoute{route("Route 1", 5, 80, path(20))}},
		{"short geometry", []recommend.EnrichedRoute{route("Route 1", 5, 80, path(6)), route("Route 2", 5, 80, path(6))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geocoder := &fakeGeocoder{}
			comparer := exposure.NewComparer(exposure.ComparerConfig{Geocoder: geocoder, Logger: zerolog.Nop()})

			results := comparer.Compare(context.Background(), tt.routes)
			for _, r := range results {
				assert.Empty(t, r.Via)
			}
			assert.Zero(t, geocoder.lookup.Load())
		})
	}
}

type fakeFinder struct {
	result *recommend.Result
	err    error
}

func (f *fakeFinder) FindRoutes(context.Context, string, string) (*recommend.Result, error) {
	return f.result, f.err
}

func TestService_Analyze(t *testing.T) {
	routes := []recommend.EnrichedRoute{
		route("Route 1", 7.5, 80, nil),
		route("Route 2", 2.5, 80, nil),
	}
	finder := &fakeFinder{result: &recommend.Result{
		Source:      "Charbagh",
		Destination: "Hazratganj",
		Routes:      routes,
		Recommended: &routes[0],
	}}
	svc := exposure.NewService(finder, exposure.NewComparer(exposure.ComparerConfig{Logger: zerolog.Nop()}))

	report, err := svc.Analyze(context.Background(), "charbagh", "hazratganj")
	require.NoError(t, err)
	require.Len(t, report.Routes, 2)
	require.NotNil(t, report.Safest)
	assert.Equal(t, "Route 2", report.Safest.Name)
	assert.Equal(t, "Charbagh", report.Source)
}

func TestService_Analyze_NoRoutes(t *testing.T) {
	finder := &fakeFinder{result: &recommend.Result{Routes: []recommend.EnrichedRoute{}}}
	svc := exposure.NewService(finder, exposure.NewComparer(exposure.ComparerConfig{Logger: zerolog.Nop()}))

	report, err := svc.Analyze(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Empty(t, report.Routes)
	assert.Nil(t, report.Safest)
}

func TestService_Analyze_PropagatesPipelineError(t *testing.T) {
	pipelineErr := &recommend.Error{Kind: recommend.KindConfiguration, Message: "air-quality token missing"}
	svc := exposure.NewService(&fakeFinder{err: pipelineErr}, exposure.NewComparer(exposure.ComparerConfig{}))

	_, err := svc.Analyze(context.Background(), "a", "b")
	assert.Equal(t, recommend.KindConfiguration, recommend.KindOf(err))
}
