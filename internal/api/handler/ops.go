package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/tripsense/tripsense/internal/api/models"
	"github.com/tripsense/tripsense/internal/api/response"
)

// ReadyCheck verifies one dependency; nil error means ready.
type ReadyCheck func(ctx context.Context) error

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	checks    map[string]ReadyCheck
	providers func() []models.ProviderStatus
}

// NewOpsHandler creates a new OpsHandler. checks are dependency probes
// run on readiness; providers snapshots external provider health at
// request time (nil is allowed).
func NewOpsHandler(version, buildTime string, checks map[string]ReadyCheck, providers func() []models.ProviderStatus) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		checks:    checks,
		providers: providers,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Fails
// when any dependency probe fails; degraded providers do not fail it.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	details := map[string]interface{}{}
	if h.providers != nil {
		details["providers"] = h.providers()
	}

	status := models.HealthStatusOK
	httpStatus := http.StatusOK
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			details[name] = err.Error()
			status = models.HealthStatusFail
			httpStatus = http.StatusServiceUnavailable
		}
	}

	health := models.Health{
		Status:  status,
		Time:    models.Timestamp(time.Now()),
		Details: details,
	}
	response.JSON(w, r, httpStatus, health)
}
