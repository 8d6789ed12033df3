// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package models

// SoldOutRequest sets the sold-out flag on a single item.
type SoldOutRequest struct {
	SoldOut *bool `json:"soldOut" validate:"required"`
}

// BulkSoldOutRequest sets the sold-out flag on every listed item in one
// statement. Duplicate ids are harmless; unknown ids are ignored by the
// set-based update and reported via the affected-row count.
type BulkSoldOutRequest struct {
	ItemIDs []int64 `json:"itemIds" validate:"required,min=1,max=500,dive,gt=0"`
	SoldOut *bool   `json:"soldOut" validate:"required"`
}

// DisplayCategoryRequest creates or updates a display category.
type DisplayCategoryRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=120"`
	Description  string `json:"description" validate:"max=500"`
	DisplayOrder int    `json:"displayOrder" validate:"min=0"`
	Active       *bool  `json:"active"`
}

// ComboCategoryRequest creates or updates a combo category.
type ComboCategoryRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=120"`
	Description  string `json:"description" validate:"max=500"`
	DisplayOrder int    `json:"displayOrder" validate:"min=0"`
	Required     *bool  `json:"required"`
	Active       *bool  `json:"active"`
}

// AssignmentRequest assigns an item to an overlay category by local row id.
type AssignmentRequest struct {
	ItemID int64 `json:"itemId" validate:"required,gt=0"`
}
