// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package models

import "github.com/goccy/go-json"

// VariationView is a freshly-derived variation attribute attached to an
// item view. Always computed from the latest synced rows, never from a
// cached serialization.
type VariationView struct {
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	Value      string `json:"value"`
}

// MenuItemView is the public shape of a menu item: the retained raw
// source payload plus variation data recomputed from local rows.
type MenuItemView struct {
	ExternalID   string          `json:"externalId"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	DisplayOrder int             `json:"displayOrder"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Variations   []VariationView `json:"variations,omitempty"`
}

// AdminMenuItemView extends MenuItemView with the fields admin mutation
// calls need: the local row id, the sold-out flag, and the names of the
// active display categories currently assigned to the item.
type AdminMenuItemView struct {
	MenuItemView
	ID                int64    `json:"id"`
	Active            bool     `json:"active"`
	SoldOut           bool     `json:"soldOut"`
	DisplayCategories []string `json:"displayCategories"`
}

// PublicMenu maps category name to its ordered items, sold-out items
// removed and empty categories pruned.
type PublicMenu map[string][]MenuItemView

// AdminMenu maps category name to its ordered items, unfiltered.
type AdminMenu map[string][]AdminMenuItemView
