// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package api

import (
	"net/http"
	"time"

	"github.com/tablewise/menucast/internal/models"
)

// Sync staleness thresholds for health reporting. A snapshot older
// than an hour is degraded; older than two hours means syncs have been
// failing for multiple scheduled intervals.
const (
	syncWarningAge = time.Hour
	syncErrorAge   = 2 * time.Hour
)

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string                  `json:"status"`
	Database  string                  `json:"database"`
	Sync      HealthSyncStatus        `json:"sync"`
	Scheduler SchedulerStatusResponse `json:"scheduler"`
	Timestamp time.Time               `json:"timestamp"`
}

// HealthSyncStatus summarizes catalog sync health.
type HealthSyncStatus struct {
	Status             string     `json:"status"`
	State              string     `json:"state"`
	LastSuccessfulSync *time.Time `json:"last_successful_sync"`
	LastError          string     `json:"last_error,omitempty"`
}

// HandleHealth handles GET /health
//
// Reports overall health from two signals: database reachability and
// catalog sync staleness. A service that has never synced is "pending"
// rather than unhealthy, so fresh deployments pass their first checks.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	resp := HealthResponse{
		Status:    "ok",
		Database:  "ok",
		Scheduler: schedulerStatusResponse(h),
		Timestamp: time.Now().UTC(),
	}

	if err := h.db.Ping(r.Context()); err != nil {
		resp.Status = "error"
		resp.Database = "unreachable"
		rw.writeJSON(http.StatusServiceUnavailable, APIResponse{Success: false, Data: resp})
		return
	}

	status, err := h.status.GetSyncStatus(r.Context())
	if err != nil {
		resp.Status = "error"
		resp.Sync.Status = "unknown"
		rw.writeJSON(http.StatusServiceUnavailable, APIResponse{Success: false, Data: resp})
		return
	}

	resp.Sync = syncHealth(status, time.Now())
	if resp.Sync.Status == "error" {
		resp.Status = "error"
	} else if resp.Sync.Status == "warning" && resp.Status == "ok" {
		resp.Status = "warning"
	}

	statusCode := http.StatusOK
	if resp.Status == "error" {
		statusCode = http.StatusServiceUnavailable
	}

	rw.writeJSON(statusCode, APIResponse{Success: resp.Status != "error", Data: resp})
}

// syncHealth grades sync freshness into ok, warning, error, or pending.
func syncHealth(status *models.SyncStatus, now time.Time) HealthSyncStatus {
	health := HealthSyncStatus{
		State:              string(status.Status),
		LastSuccessfulSync: status.LastSuccessfulSync,
		LastError:          status.LastError,
	}

	if status.LastSuccessfulSync == nil {
		health.Status = "pending"
		return health
	}

	age := now.Sub(*status.LastSuccessfulSync)
	switch {
	case age > syncErrorAge:
		health.Status = "error"
	case age > syncWarningAge:
		health.Status = "warning"
	default:
		health.Status = "ok"
	}

	return health
}
