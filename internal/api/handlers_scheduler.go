// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package api

import (
	"net/http"
)

// SchedulerStatusResponse describes the background scheduler state.
// SyncRunning reports an in-flight sync regardless of how it started.
type SchedulerStatusResponse struct {
	Running         bool   `json:"running"`
	SyncRunning     bool   `json:"sync_running"`
	IntervalSeconds int    `json:"interval_seconds"`
	Interval        string `json:"interval"`
}

// HandleSchedulerStart handles POST /api/v1/admin/scheduler/start
//
// Starting an already-running scheduler is a no-op, not an error.
func (h *Handlers) HandleSchedulerStart(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	h.syncMgr.Start()

	rw.Success(schedulerStatusResponse(h))
}

// HandleSchedulerStop handles POST /api/v1/admin/scheduler/stop
//
// Stopping an already-stopped scheduler is a no-op, not an error. A
// sync currently in flight is not interrupted; only future scheduled
// runs are cancelled.
func (h *Handlers) HandleSchedulerStop(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	h.syncMgr.Stop()

	rw.Success(schedulerStatusResponse(h))
}

// HandleSchedulerStatus handles GET /api/v1/admin/scheduler/status
func (h *Handlers) HandleSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	rw.Success(schedulerStatusResponse(h))
}

func schedulerStatusResponse(h *Handlers) SchedulerStatusResponse {
	status := h.syncMgr.Status()
	return SchedulerStatusResponse{
		Running:         status.Running,
		SyncRunning:     status.SyncRunning,
		IntervalSeconds: int(status.Interval.Seconds()),
		Interval:        status.Interval.String(),
	}
}
