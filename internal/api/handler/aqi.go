package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/greenpath/greenpath/internal/api/models"
	"github.com/greenpath/greenpath/internal/api/response"
	"github.com/greenpath/greenpath/internal/recommend"
)

// AirQualityLookup resolves a place name to its current air quality.
type AirQualityLookup interface {
	AirQualityAt(ctx context.Context, location string) (*recommend.AirQuality, error)
}

// AQIHandler handles /api/aqi.
type AQIHandler struct {
	lookup AirQualityLookup
	logger zerolog.Logger
}

// NewAQIHandler creates a new AQIHandler.
func NewAQIHandler(lookup AirQualityLookup, logger zerolog.Logger) *AQIHandler {
	return &AQIHandler{lookup: lookup, logger: logger}
}

// GetAQI handles GET /api/aqi?location=.
func (h *AQIHandler) GetAQI(w http.ResponseWriter, r *http.Request) {
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" {
		response.BadRequest(w, r, "Location is required")
		return
	}

	aq, err := h.lookup.AirQualityAt(r.Context(), location)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	response.OK(w, r, models.AirQuality{
		Location:  aq.Location,
		Lat:       aq.At.Lat,
		Lon:       aq.At.Lon,
		AQI:       aq.AQI,
		Category:  string(aq.Category),
		Station:   aq.Station,
		Fallback:  aq.Fallback,
		FetchedAt: models.Timestamp(aq.FetchedAt),
	})
}
