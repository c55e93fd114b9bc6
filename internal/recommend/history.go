package recommend

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenpath/greenpath/internal/history"
)

// RouteFinder runs the recommendation pipeline.
type RouteFinder interface {
	FindRoutes(ctx context.Context, source, destination string) (*Result, error)
}

// HistoryRecorderConfig holds configuration for a HistoryRecorder.
type HistoryRecorderConfig struct {
	Finder RouteFinder
	Store  history.Recorder

	// Timeout bounds one background save. Default: 2s
	Timeout time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	Logger zerolog.Logger
}

// HistoryRecorder wraps a RouteFinder and stores the recommended route of
// every successful search. Saves run in the background and never delay or
// fail the search. Only user-facing route searches go through it, so
// derived views such as the exposure comparison leave history untouched.
type HistoryRecorder struct {
	finder  RouteFinder
	store   history.Recorder
	timeout time.Duration
	now     func() time.Time
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

// NewHistoryRecorder creates a new HistoryRecorder.
func NewHistoryRecorder(cfg HistoryRecorderConfig) *HistoryRecorder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &HistoryRecorder{
		finder:  cfg.Finder,
		store:   cfg.Store,
		timeout: timeout,
		now:     now,
		logger:  cfg.Logger,
	}
}

// FindRoutes runs the wrapped finder and queues a history save when a route
// was recommended.
func (h *HistoryRecorder) FindRoutes(ctx context.Context, source, destination string) (*Result, error) {
	result, err := h.finder.FindRoutes(ctx, source, destination)
	if err != nil || result.Recommended == nil || h.store == nil {
		return result, err
	}

	rec := newRecord(result, h.now())

	// Detach from the request so the save outlives the response.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer cancel()

		if err := h.store.Save(ctx, rec); err != nil {
			h.logger.Warn().Err(err).
				Str("source", rec.Source).
				Str("destination", rec.Destination).
				Msg("failed to record route history")
		}
	}()

	return result, nil
}

// Wait blocks until every queued save has finished.
func (h *HistoryRecorder) Wait() {
	h.wg.Wait()
}

func newRecord(result *Result, now time.Time) *history.Record {
	best := result.Recommended
	return &history.Record{
		Source:          result.Source,
		Destination:     result.Destination,
		DistanceKm:      best.DistanceKm,
		DurationMinutes: best.ETAMinutes,
		Pollution:       string(best.PollutionCategory),
		AQI:             best.AQI,
		HealthScore:     best.HealthScore,
		CreatedAt:       now.UTC(),
	}
}
