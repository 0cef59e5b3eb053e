// Package handler provides HTTP handlers for the BikePulse API.
package handler

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bikepulse/bikepulse/internal/api/models"
	"github.com/bikepulse/bikepulse/internal/api/response"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	pool      *pgxpool.Pool
}

// NewOpsHandler creates a new OpsHandler. The pool may be nil; the database
// checks are then skipped.
func NewOpsHandler(version, buildTime string, pool *pgxpool.Pool) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		pool:      pool,
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

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Fails when the
// database is unreachable.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.pool != nil {
		if err := h.pool.Ping(r.Context()); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]interface{}{"database": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - per-subsystem status. Feed health
// is not reported here: this process never calls the feed, so it has no
// signal; the poller's own health endpoint is the authority on the feed.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   now,
	}

	if h.pool != nil {
		dbStatus := models.HealthStatusOK
		if err := h.pool.Ping(r.Context()); err != nil {
			dbStatus = models.HealthStatusFail
			status.Status = models.HealthStatusDegraded
		}
		status.Subsystems = append(status.Subsystems, models.SubsystemStatus{
			Name:   "postgres",
			Status: dbStatus,
		})
	}

	response.JSON(w, r, http.StatusOK, status)
}
