package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/greenpath/greenpath/internal/api/models"
	"github.com/greenpath/greenpath/internal/api/response"
	"github.com/greenpath/greenpath/internal/recommend"
	"github.com/greenpath/greenpath/pkg/polyline"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 16 << 10

// RouteFinder runs the recommendation pipeline.
type RouteFinder interface {
	FindRoutes(ctx context.Context, source, destination string) (*recommend.Result, error)
}

// RouteHandler handles /api/routes.
type RouteHandler struct {
	finder RouteFinder
	logger zerolog.Logger
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(finder RouteFinder, logger zerolog.Logger) *RouteHandler {
	return &RouteHandler{finder: finder, logger: logger}
}

// GetRoutes handles GET /api/routes?source=&destination= (or from=&to=).
func (h *RouteHandler) GetRoutes(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, queryEndpoints(r))
}

// PostRoutes handles POST /api/routes with a JSON body.
func (h *RouteHandler) PostRoutes(w http.ResponseWriter, r *http.Request) {
	var req models.RouteRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}
	h.respond(w, r, req)
}

func (h *RouteHandler) respond(w http.ResponseWriter, r *http.Request, req models.RouteRequest) {
	source, destination := req.Endpoints()

	result, err := h.finder.FindRoutes(r.Context(), source, destination)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	resp := models.RoutesResponse{
		Success:     true,
		Source:      result.Source,
		Destination: result.Destination,
		Routes:      make([]models.Route, len(result.Routes)),
	}
	for i := range result.Routes {
		resp.Routes[i] = toRoute(result.Routes[i])
	}
	if len(resp.Routes) > 0 {
		resp.Recommended = &resp.Routes[0]
	} else {
		resp.Message = "No routes found"
	}

	response.JSON(w, r, http.StatusOK, resp)
}

func queryEndpoints(r *http.Request) models.RouteRequest {
	q := r.URL.Query()
	return models.RouteRequest{
		Source:      q.Get("source"),
		Destination: q.Get("destination"),
		From:        q.Get("from"),
		To:          q.Get("to"),
	}
}

func toRoute(er recommend.EnrichedRoute) models.Route {
	return models.Route{
		Name:         er.Name,
		Distance:     er.DistanceLabel(),
		RawDistance:  er.DistanceKm,
		Time:         er.TimeLabel(),
		ETAMinutes:   er.ETAMinutes,
		Pollution:    string(er.PollutionCategory),
		AQI:          er.AQI,
		HealthScore:  er.HealthScore,
		Traffic:      er.TrafficPercent,
		TrafficLevel: string(er.TrafficLevel),
		Coordinates:  er.Coordinates,
		Polyline:     polyline.Encode(er.Coordinates),
		IsPeakHour:   er.IsPeakHour,
	}
}
