// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package api

import (
	"errors"
	"net/http"

	"github.com/tablewise/menucast/internal/models"
	"github.com/tablewise/menucast/internal/overlay"
)

// writeOverlayError maps overlay store errors onto HTTP responses.
// Uniqueness and in-use violations are conflicts; missing rows are 404s.
func writeOverlayError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, overlay.ErrDuplicateName):
		rw.Conflict("a category with this name already exists")
	case errors.Is(err, overlay.ErrCategoryInUse):
		rw.Conflict("category has assigned items and cannot be deleted")
	case errors.Is(err, overlay.ErrAlreadyAssigned):
		rw.Conflict("item is already assigned to this category")
	case errors.Is(err, overlay.ErrNotFound):
		rw.NotFound("category not found")
	case errors.Is(err, overlay.ErrItemNotFound):
		rw.NotFound("menu item not found")
	case errors.Is(err, overlay.ErrNotAssigned):
		rw.NotFound("item is not assigned to this category")
	default:
		rw.DatabaseError(err)
	}
}

// Display categories

// HandleListDisplayCategories handles GET /api/v1/admin/display-categories
func (h *Handlers) HandleListDisplayCategories(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	categories, err := h.overlays.ListDisplayCategories(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(categories)
}

// HandleCreateDisplayCategory handles POST /api/v1/admin/display-categories
func (h *Handlers) HandleCreateDisplayCategory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.DisplayCategoryRequest
	if !decodeRequest(rw, r, &req) {
		return
	}

	category, err := h.overlays.CreateDisplayCategory(r.Context(), &req)
	if err != nil {
		writeOverlayError(rw, err)
		return
	}

	rw.Created(category)
}

// HandleUpdateDisplayCategory handles PUT /api/v1/admin/display-categories/{id}
func (h *Handlers) HandleUpdateDisplayCategory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := idParam(rw, r, "id")
	if !ok {
		return
	}

	var req models.DisplayCategoryRequest
	if !decodeRequest(rw, r, &req) {
		return
	}

	category, err := h.overlays.UpdateDisplayCategory(r.Context(), id, &req)
	if err != nil {
		writeOverlayError(rw, err)
		return
	}

	rw.Success(category)
}

// HandleDeleteDisplayCategory handles DELETE /api/v1/admin/display-categories/{id}
func (h *Handlers) HandleDeleteDisplayCategory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := idParam(rw, r, "id")
	if !ok {
		return
	}

	if err := h.overlays.DeleteDisplayCategory(r.Context(), id); err != nil {
		writeOverlayError(rw, err)
		return
	}

	rw.NoContent()
}

// HandleAssignDisplayItem handles POST /api/v1/admin/display-categories/{id}/items
func (h *Handlers) HandleAssignDisplayItem(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := idParam(rw, r, "id")
	if !ok {
		return
	}

	var req models.AssignmentRequest
	if !decodeRequest(rw, r, &req) {
		return
	}

	if err := h.overlays.AssignItemToDisplayCategory(r.Context(), id, req.ItemID); err != nil {
		writeOverlayError(rw, err)
		return
	}

	rw.Created(req)
}

// HandleUnassignDisplayItem handles DELETE /api/v1/admin/display-categories/{id}/items/{itemId}
func (h *Handlers) HandleUnassignDisplayItem(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := idParam(rw, r, "id")
	if !ok {
		return
	}

	itemID, ok := idParam(rw, r, "itemId")
	if !ok {
		return
	}

	if err := h.overlays.UnassignItemFromDisplayCategory(r.Context(), id, itemID); err != nil {
		writeOverlayError(rw, err)
		return
	}

	rw.NoContent()
}

// Combo categories

// HandleListComboCategories handles GET /api/v1/admin/combo-categories
func (h *Handlers) HandleListComboCategories(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	categories, err := h.overlays.ListComboCategories(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(categories)
}

// HandleCreateComboCategory handles POST /api/v1/admin/combo-categories
func (h *Handlers) HandleCreateComboCategory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.ComboCategoryRequest
	if !decodeRequest(rw, r, &req) {
		return
	}

	category, err := h.overlays.CreateComboCategory(r.Context(), &req)
	if err != nil {
		writeOverlayError(rw, err)
		return
	}

	rw.Created(category)
}

// HandleUpdateComboCategory handles PUT /api/v1/admin/combo-categories/{id}
func (h *Handlers) HandleUpdateComboCategory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := idParam(rw, r, "id")
	if !ok {
		return
	}

	var req models.ComboCategoryRequest
	if !decodeRequest(rw, r, &req) {
		return
	}

	category, err := h.overlays.UpdateComboCategory(r.Context(), id, &req)
	if err != nil {
		writeOverlayError(rw, err)
		return
	}

	rw.Success(category)
}

// HandleDeleteComboCategory handles DELETE /api/v1/admin/combo-categories/{id}
func (h *Handlers) HandleDeleteComboCategory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := idParam(rw, r, "id")
	if !ok {
		return
	}

	if err := h.overlays.DeleteComboCategory(r.Context(), id); err != nil {
		writeOverlayError(rw, err)
		return
	}

	rw.NoContent()
}

// HandleAssignComboItem handles POST /api/v1/admin/combo-categories/{id}/items
func (h *Handlers) HandleAssignComboItem(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := idParam(rw, r, "id")
	if !ok {
		return
	}

	var req models.AssignmentRequest
	if !decodeRequest(rw, r, &req) {
		return
	}

	if err := h.overlays.AssignItemToComboCategory(r.Context(), id, req.ItemID); err != nil {
		writeOverlayError(rw, err)
		return
	}

	rw.Created(req)
}

// HandleUnassignComboItem handles DELETE /api/v1/admin/combo-categories/{id}/items/{itemId}
func (h *Handlers) HandleUnassignComboItem(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := idParam(rw, r, "id")
	if !ok {
		return
	}

	itemID, ok := idParam(rw, r, "itemId")
	if !ok {
		return
	}

	if err := h.overlays.UnassignItemFromComboCategory(r.Context(), id, itemID); err != nil {
		writeOverlayError(rw, err)
		return
	}

	rw.NoContent()
}
