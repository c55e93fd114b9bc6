package recommend_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/greenpath/greenpath/internal/airquality"
	"github.com/greenpath/greenpath/internal/geo"
	"github.com/greenpath/greenpath/internal/geocoding"
	"github.com/greenpath/greenpath/internal/history"
	"github.com/greenpath/greenpath/internal/routing"
)

var (
	charbagh   = geo.Coordinate{Lat: 26.832, Lon: 80.923}
	hazratganj = geo.Coordinate{Lat: 26.8467, Lon: 80.9462}
)

type fakeGeocoder struct {
	places   map[string]geo.Coordinate
	err      error
	searches atomic.Int32
}

func (f *fakeGeocoder) Name() string { return "fake-geocoder" }

func (f *fakeGeocoder) Search(_ context.Context, text string) ([]geo.Coordinate, error) {
	f.searches.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.places[text]; ok {
		return []geo.Coordinate{c}, nil
	}
	return []geo.Coordinate{}, nil
}

func (f *fakeGeocoder) Reverse(context.Context, geo.Coordinate) (*geocoding.Place, error) {
	return &geocoding.Place{}, nil
}

type fakeRouter struct {
	routes []routing.RawRoute
	err    error
	calls  atomic.Int32
	from   geo.Coordinate
	to     geo.Coordinate
}

func (f *fakeRouter) Name() string { return "fake-router" }

func (f *fakeRouter) Alternatives(_ context.Context, from, to geo.Coordinate) ([]routing.RawRoute, error) {
	f.calls.Add(1)
	f.from, f.to = from, to
	return f.routes, f.err
}

type fakeAirQuality struct {
	aqi   int
	err   error
	calls atomic.Int32
	at    geo.Coordinate
}

func (f *fakeAirQuality) Name() string { return "fake-aq" }

func (f *fakeAirQuality) Sample(_ context.Context, at geo.Coordinate) (*airquality.Sample, error) {
	f.calls.Add(1)
	f.at = at
	if f.err != nil {
		return nil, f.err
	}
	return &airquality.Sample{AQI: f.aqi, Station: "Lalbagh"}, nil
}

type fakeRecorder struct {
	mu    sync.Mutex
	saved []*history.Record
	err   error
}

func (f *fakeRecorder) Save(_ context.Context, rec *history.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, rec)
	return f.err
}

func (f *fakeRecorder) records() []*history.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*history.Record(nil), f.saved...)
}

func line(points ...[2]float64) [][2]float64 { return points }

func straight(meters float64) routing.RawRoute {
	return routing.RawRoute{
		DistanceMeters: meters,
		Geometry:       line([2]float64{80.923, 26.832}, [2]float64{80.9462, 26.8467}),
	}
}
