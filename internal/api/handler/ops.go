package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/greenpath/greenpath/internal/api/models"
	"github.com/greenpath/greenpath/internal/api/response"
	"github.com/greenpath/greenpath/internal/provider/resilience"
)

// Banner is the message served at the root path.
const Banner = "GreenPath route service running"

// Pinger checks a dependency, e.g. *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	db        Pinger
	providers *resilience.Registry
	now       func() time.Time
}

// OpsConfig holds configuration for the OpsHandler.
type OpsConfig struct {
	Version   string
	BuildTime string
	// DB is checked by the readiness probe when set.
	DB Pinger
	// Providers backs the status endpoint when set.
	Providers *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		db:        cfg.DB,
		providers: cfg.Providers,
		now:       time.Now,
	}
}

// Root handles GET /.
func (h *OpsHandler) Root(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Envelope{Success: true, Message: Banner})
}

// HealthCheck handles GET /api/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /api/ops/ready. It fails when the database is
// configured but unreachable.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.pingDB(r.Context()); err != nil {
		response.JSON(w, r, http.StatusServiceUnavailable, models.Health{
			Status:  models.HealthStatusFail,
			Time:    models.Timestamp(h.now()),
			Details: map[string]any{"database": err.Error()},
		})
		return
	}
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
	})
}

// SystemStatus handles GET /api/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(h.now()),
		Subsystems: []models.SubsystemStatus{},
		Providers:  []models.ProviderStatus{},
	}

	if h.db != nil {
		sub := models.SubsystemStatus{Name: "postgres", Status: models.HealthStatusOK}
		if err := h.pingDB(r.Context()); err != nil {
			sub.Status = models.HealthStatusFail
			sub.Detail = err.Error()
		}
		status.Subsystems = append(status.Subsystems, sub)
		status.Status = worst(status.Status, sub.Status)
	}

	if h.providers != nil {
		for _, p := range h.providers.All() {
			ps := models.ProviderStatus{
				Provider:      p.Name,
				Status:        providerStatus(p),
				CircuitState:  p.State,
				LastSuccessAt: timestampPtr(p.LastSuccessAt),
				LastFailureAt: timestampPtr(p.LastFailureAt),
				Message:       p.LastError,
			}
			status.Providers = append(status.Providers, ps)
			// A broken provider degrades the service; it never fails it outright.
			if ps.Status != models.HealthStatusOK {
				status.Status = worst(status.Status, models.HealthStatusDegraded)
			}
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) pingDB(ctx context.Context) error {
	if h.db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.db.Ping(ctx)
}

func timestampPtr(t *time.Time) *models.Timestamp {
	if t == nil {
		return nil
	}
	return models.TimestampPtr(*t)
}

func providerStatus(p *resilience.ProviderHealth) models.HealthStatus {
	switch {
	case p.IsUnhealthy():
		return models.HealthStatusFail
	case p.IsDegraded():
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}

var severity = map[models.HealthStatus]int{
	models.HealthStatusOK:       0,
	models.HealthStatusDegraded: 1,
	models.HealthStatusFail:     2,
}

func worst(a, b models.HealthStatus) models.HealthStatus {
	if severity[b] > severity[a] {
		return b
	}
	return a
}
