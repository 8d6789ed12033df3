// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package models

// DisplayCategory is an admin-curated grouping used to control public
// menu presentation. It is independent of the externally-synced category
// data: created, edited, and deleted entirely through admin operations.
type DisplayCategory struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"displayOrder"`
	Active       bool   `json:"active"`
}

// ComboCategory is an admin-curated grouping of selectable sub-items for
// composite menu items. Required marks whether a choice from this group
// is mandatory when composing the combo.
type ComboCategory struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"displayOrder"`
	Required     bool   `json:"required"`
	Active       bool   `json:"active"`
}

// CategoryAssignment is an item-to-overlay-category join row. The item is
// referenced by its local row id; row ids are stable across syncs because
// items are upserted by external id rather than recreated.
type CategoryAssignment struct {
	ItemID     int64 `json:"itemId"`
	CategoryID int64 `json:"categoryId"`
}
