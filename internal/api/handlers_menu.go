// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package api

import (
	"fmt"
	"net/http"
)

// HandleGetMenu handles GET /api/v1/menu
//
// Returns the public menu: active items grouped by category, sold-out
// items removed, empty categories pruned. The response carries an ETag
// derived from the last successful sync, so clients and intermediaries
// can revalidate cheaply between syncs.
func (h *Handlers) HandleGetMenu(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	menuData, etag, err := h.menuSvc.PublicMenu(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d",
		int(h.cacheCfg.MenuMaxAge.Seconds()), int(h.cacheCfg.MenuStaleWhileRevalidate.Seconds())))
	w.Header().Set("Vary", "Accept-Encoding")

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	rw.Success(menuData)
}

// HandleGetAdminMenu handles GET /api/v1/admin/menu
//
// Returns the unfiltered menu: every synced item including inactive and
// sold-out ones, with local row ids, sold-out flags, and display
// category labels. Always served fresh and never cached, so admin
// actions are immediately visible.
func (h *Handlers) HandleGetAdminMenu(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	menuData, err := h.menuSvc.AdminMenu(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")

	rw.Success(menuData)
}
