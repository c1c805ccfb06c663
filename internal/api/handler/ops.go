// Package handler provides the HTTP handlers of the API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/eventfootprint/eventfootprint/internal/api/models"
	"github.com/eventfootprint/eventfootprint/internal/api/response"
	"github.com/eventfootprint/eventfootprint/internal/resilience"
)

// readyTimeout bounds the store ping of a readiness check.
const readyTimeout = 2 * time.Second

// OpsConfig holds the dependencies of OpsHandler.
type OpsConfig struct {
	Version   string
	BuildTime string
	// Ping checks the store; nil means there is nothing to check.
	Ping     func(ctx context.Context) error
	Breakers *resilience.Registry
	// Sessions reports the number of live intake sessions.
	Sessions func() int
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsConfig
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	details := map[string]any{
		"version":   h.cfg.Version,
		"buildTime": h.cfg.BuildTime,
	}
	if h.cfg.Sessions != nil {
		details["intakeSessions"] = h.cfg.Sessions()
	}
	response.JSON(w, r, http.StatusOK, models.Health{
		Status:  models.HealthStatusOK,
		Time:    models.Timestamp(time.Now()),
		Details: details,
	})
}

// ReadinessCheck handles GET /v1/ops/ready. It returns 503 when the store
// cannot be reached, and DEGRADED while a breaker is open.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ready := models.Readiness{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	store := models.SubsystemStatus{Name: "store", Status: models.HealthStatusOK}
	if h.cfg.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		err := h.cfg.Ping(ctx)
		cancel()
		if err != nil {
			detail := err.Error()
			store.Status = models.HealthStatusFail
			store.Detail = &detail
			ready.Status = models.HealthStatusFail
		}
	}
	ready.Subsystems = append(ready.Subsystems, store)

	if h.cfg.Breakers != nil {
		for _, hh := range h.cfg.Breakers.GetAllHealth() {
			b := breakerStatus(hh)
			if b.Status != models.HealthStatusOK && ready.Status == models.HealthStatusOK {
				ready.Status = models.HealthStatusDegraded
			}
			ready.Breakers = append(ready.Breakers, b)
		}
	}

	status := http.StatusOK
	if ready.Status == models.HealthStatusFail {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, r, status, ready)
}

func breakerStatus(h *resilience.Health) models.BreakerStatus {
	b := models.BreakerStatus{
		Name:                h.Name,
		Status:              models.HealthStatusOK,
		State:               h.CircuitState.String(),
		ConsecutiveFailures: h.Counts.ConsecutiveFailures,
	}
	switch h.CircuitState {
	case gobreaker.StateOpen:
		b.Status = models.HealthStatusFail
	case gobreaker.StateHalfOpen:
		b.Status = models.HealthStatusDegraded
	}
	b.LastSuccessAt = models.TimestampPtr(h.LastSuccessAt)
	b.LastFailureAt = models.TimestampPtr(h.LastFailureAt)
	if h.LastError != "" {
		msg := h.LastError
		b.LastError = &msg
	}
	return b
}
