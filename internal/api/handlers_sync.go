// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package api

import (
	"errors"
	"net/http"

	"github.com/tablewise/menucast/internal/logging"
	"github.com/tablewise/menucast/internal/sync"
)

// SyncTriggerResponse reports the outcome of a manual sync trigger.
type SyncTriggerResponse struct {
	Items      int   `json:"items"`
	Categories int   `json:"categories"`
	DurationMs int64 `json:"duration_ms"`
}

// HandleTriggerSync handles POST /api/v1/admin/sync
//
// Runs a catalog sync synchronously and reports the resulting counts.
// Returns 409 when a sync is already running; manual triggers and the
// background scheduler share the same single-flight guard.
func (h *Handlers) HandleTriggerSync(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	result, err := h.syncMgr.TriggerSync(r.Context())
	if err != nil {
		if errors.Is(err, sync.ErrSyncInProgress) {
			rw.Conflict("sync already in progress")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Manual sync failed")
		rw.ExternalServiceError("catalog", err)
		return
	}

	// A completed sync replaces the snapshot the cached menu was built
	// from, so the read model must be rebuilt on next request.
	h.menuSvc.Invalidate()

	rw.Success(SyncTriggerResponse{
		Items:      result.Items,
		Categories: result.Categories,
		DurationMs: result.Duration.Milliseconds(),
	})
}

// HandleGetSyncStatus handles GET /api/v1/admin/sync/status
//
// Returns the single current-state sync record: lifecycle state, last
// attempt and last success timestamps, last error, and counts.
func (h *Handlers) HandleGetSyncStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status, err := h.status.GetSyncStatus(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(status)
}
