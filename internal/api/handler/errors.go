// Package handler provides HTTP handlers for the GreenPath API.
package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/greenpath/greenpath/internal/api/middleware"
	"github.com/greenpath/greenpath/internal/api/models"
	"github.com/greenpath/greenpath/internal/api/response"
	"github.com/greenpath/greenpath/internal/recommend"
)

// fail maps a pipeline error onto a problem response. Only the classified
// message reaches the client; the wrapped cause is logged.
func fail(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	traceID := middleware.GetRequestID(r.Context())
	msg := recommend.MessageOf(err)
	kind := recommend.KindOf(err)

	var problem *models.Problem
	switch kind {
	case recommend.KindInput:
		problem = models.NewBadRequest(traceID, msg)
	case recommend.KindLocationNotFound:
		problem = models.NewNotFound(traceID, msg)
	case recommend.KindProviderUnavailable:
		problem = models.NewProviderError(traceID, msg)
	case recommend.KindConfiguration:
		problem = models.NewConfigurationError(traceID, msg)
	default:
		problem = models.NewInternalError(traceID, "Server Error")
	}

	event := logger.Warn()
	if problem.Status >= 500 {
		event = logger.Error()
	}
	event.Err(err).
		Str("request_id", traceID).
		Str("kind", kind.String()).
		Int("status", problem.Status).
		Msg("request failed")

	response.Error(w, r, problem)
}
