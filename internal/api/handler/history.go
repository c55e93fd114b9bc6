package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/greenpath/greenpath/internal/api/models"
	"github.com/greenpath/greenpath/internal/api/response"
	"github.com/greenpath/greenpath/internal/history"
)

// HistoryLister lists recorded recommendations.
type HistoryLister interface {
	List(ctx context.Context, limit int) ([]*history.Record, error)
}

// HistoryHandler handles /api/routes/history.
type HistoryHandler struct {
	lister HistoryLister
	logger zerolog.Logger
}

// NewHistoryHandler creates a new HistoryHandler. A nil lister means history
// is not stored by this process and the endpoint answers 503.
func NewHistoryHandler(lister HistoryLister, logger zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{lister: lister, logger: logger}
}

// ListHistory handles GET /api/routes/history?limit=.
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	if h.lister == nil {
		response.ServiceUnavailable(w, r, "Route history is not available")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(w, r, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.lister.List(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("listing route history failed")
		response.InternalError(w, r, "Failed to fetch route history")
		return
	}

	entries := make([]models.HistoryEntry, len(records))
	for i, rec := range records {
		entries[i] = models.HistoryEntry{
			ID:          rec.ID,
			Source:      rec.Source,
			Destination: rec.Destination,
			Distance:    formatKm(rec.DistanceKm),
			Time:        fmt.Sprintf("%d mins", rec.DurationMinutes),
			Pollution:   rec.Pollution,
			AQI:         rec.AQI,
			HealthScore: rec.HealthScore,
			CreatedAt:   models.Timestamp(rec.CreatedAt),
		}
	}
	response.OK(w, r, entries)
}

func formatKm(km float64) string {
	return fmt.Sprintf("%.1f km", km)
}
