// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package catalog

import "github.com/goccy/go-json"

// SourceItem is one catalog entry as delivered by the POS catalog API.
// The raw JSON of each item is also retained verbatim so the read model
// can expose source fields Menucast does not interpret.
// Item state the source does not own (active flag, display order) is
// absent here: the sync engine derives both during normalization.
type SourceItem struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	CategoryIDs   []string          `json:"category_ids"`
	CategoryNames []string          `json:"category_names"`
	Variations    []SourceVariation `json:"variations"`

	// Raw is the untouched source payload for this item. Populated by
	// the client during decode, never sent by the source itself.
	Raw json.RawMessage `json:"-"`
}

// SourceVariation is a priced option of an item (size, temperature).
type SourceVariation struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Value        string `json:"value"`
	DisplayOrder int    `json:"display_order"`
}

// itemsPage is the wire format of one catalog list response page.
type itemsPage struct {
	Items  []json.RawMessage `json:"items"`
	Cursor string            `json:"cursor"`
}
