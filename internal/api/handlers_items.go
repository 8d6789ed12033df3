// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package api

import (
	"errors"
	"net/http"

	"github.com/tablewise/menucast/internal/logging"
	"github.com/tablewise/menucast/internal/menu"
	"github.com/tablewise/menucast/internal/models"
)

// SoldOutResponse reports the result of a sold-out update.
type SoldOutResponse struct {
	ItemID  int64 `json:"item_id"`
	SoldOut bool  `json:"sold_out"`
}

// BulkSoldOutResponse reports the result of a bulk sold-out update.
// Updated counts only the rows actually changed; unknown ids are
// skipped, not errors.
type BulkSoldOutResponse struct {
	Updated   int64 `json:"updated"`
	Requested int   `json:"requested"`
	SoldOut   bool  `json:"sold_out"`
}

// HandleSetSoldOut handles PATCH /api/v1/admin/items/{id}/sold-out
//
// Sets the locally-owned sold-out flag on a single item by row id.
func (h *Handlers) HandleSetSoldOut(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	itemID, ok := idParam(rw, r, "id")
	if !ok {
		return
	}

	var req models.SoldOutRequest
	if !decodeRequest(rw, r, &req) {
		return
	}

	if err := h.items.SetSoldOut(r.Context(), itemID, *req.SoldOut); err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			rw.NotFound("menu item not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	// Sold-out changes alter the public read model without a sync.
	h.menuSvc.Invalidate()

	logging.Ctx(r.Context()).Info().
		Int64("item_id", itemID).
		Bool("sold_out", *req.SoldOut).
		Msg("Item sold-out flag updated")

	rw.Success(SoldOutResponse{ItemID: itemID, SoldOut: *req.SoldOut})
}

// HandleSetSoldOutBulk handles POST /api/v1/admin/items/sold-out
//
// Sets the sold-out flag on every listed item in a single set-based
// update rather than one statement per item.
func (h *Handlers) HandleSetSoldOutBulk(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.BulkSoldOutRequest
	if !decodeRequest(rw, r, &req) {
		return
	}

	updated, err := h.items.SetSoldOutBulk(r.Context(), req.ItemIDs, *req.SoldOut)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	if updated > 0 {
		h.menuSvc.Invalidate()
	}

	logging.Ctx(r.Context()).Info().
		Int64("updated", updated).
		Int("requested", len(req.ItemIDs)).
		Bool("sold_out", *req.SoldOut).
		Msg("Bulk sold-out update applied")

	rw.Success(BulkSoldOutResponse{
		Updated:   updated,
		Requested: len(req.ItemIDs),
		SoldOut:   *req.SoldOut,
	})
}
