package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/greenpath/greenpath/internal/api/models"
	"github.com/greenpath/greenpath/internal/api/response"
	"github.com/greenpath/greenpath/internal/exposure"
)

// ExposureAnalyzer compares the exposure of the recommended routes.
type ExposureAnalyzer interface {
	Analyze(ctx context.Context, source, destination string) (*exposure.Report, error)
}

// ExposureHandler handles /api/exposure.
type ExposureHandler struct {
	analyzer ExposureAnalyzer
	logger   zerolog.Logger
}

// NewExposureHandler creates a new ExposureHandler.
func NewExposureHandler(analyzer ExposureAnalyzer, logger zerolog.Logger) *ExposureHandler {
	return &ExposureHandler{analyzer: analyzer, logger: logger}
}

// GetExposure handles GET /api/exposure?source=&destination=.
func (h *ExposureHandler) GetExposure(w http.ResponseWriter, r *http.Request) {
	source, destination := queryEndpoints(r).Endpoints()

	report, err := h.analyzer.Analyze(r.Context(), source, destination)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	resp := models.ExposureResponse{
		Success:     true,
		Source:      report.Source,
		Destination: report.Destination,
		Routes:      make([]models.ExposureRoute, len(report.Routes)),
	}
	for i, res := range report.Routes {
		resp.Routes[i] = toExposureRoute(res)
		if res.Recommended {
			resp.Safest = &resp.Routes[i]
		}
	}
	if len(resp.Routes) == 0 {
		resp.Message = "No routes found"
	}

	response.JSON(w, r, http.StatusOK, resp)
}

func toExposureRoute(res exposure.Result) models.ExposureRoute {
	via := res.Via
	if via == nil {
		via = []string{}
	}
	return models.ExposureRoute{
		Name:          res.Name,
		Distance:      formatKm(res.DistanceKm),
		Duration:      res.Duration,
		BaseAQI:       res.BaseAQI,
		AQI:           res.AdjustedAQI,
		ExposureIndex: res.ExposureIndex,
		Risk:          string(res.Risk),
		Via:           via,
		Impact: models.ExposureImpact{
			Cigarettes:  res.Impact.Cigarettes,
			IndoorHours: res.Impact.IndoorHours,
			Tone:        string(res.Impact.Tone),
			Message:     res.Impact.Message,
		},
		Recommended: res.Recommended,
	}
}
