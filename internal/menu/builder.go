// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

// Package menu builds the two read models served by the API.
//
// The public menu is the guest-facing view: active items only, sold-out
// and inactive items filtered, grouped by source category, empty
// categories pruned. It is cheap to serve because the service layer
// caches it keyed on the last successful sync.
//
// The admin menu is the operator view: every item regardless of state,
// with internal row ids, sold-out flags, and display category labels.
// It is always built fresh.
package menu

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tablewise/menucast/internal/database"
	"github.com/tablewise/menucast/internal/metrics"
	"github.com/tablewise/menucast/internal/models"
)

// uncategorizedLabel groups admin items the source assigned to no
// category. The public menu drops such items instead.
const uncategorizedLabel = "Uncategorized"

// Builder assembles menu read models from the synced catalog.
type Builder struct {
	db *database.DB
}

// NewBuilder creates a menu builder over the given database.
func NewBuilder(db *database.DB) *Builder {
	return &Builder{db: db}
}

type itemRow struct {
	id           int64
	externalID   string
	name         string
	description  string
	displayOrder int
	active       bool
	soldOut      bool
	rawPayload   string
	categoryName string
	hasCategory  bool
}

// BuildPublicMenu assembles the guest-facing menu. Sold-out and
// inactive items are invisible; categories with nothing left to show
// are pruned entirely.
func (b *Builder) BuildPublicMenu(ctx context.Context) (models.PublicMenu, error) {
	started := time.Now()
	rows, err := b.queryItems(ctx, true)
	metrics.RecordDBQuery("select", "menu_items", time.Since(started), err)
	if err != nil {
		return nil, err
	}

	menu := make(models.PublicMenu)
	for _, row := range rows {
		if !row.hasCategory {
			continue
		}
		view := models.MenuItemView{
			ExternalID:   row.externalID,
			Name:         row.name,
			Description:  row.description,
			DisplayOrder: row.displayOrder,
			Payload:      json.RawMessage(row.rawPayload),
		}
		menu[row.categoryName] = append(menu[row.categoryName], view)
	}

	if err := b.attachVariations(ctx, menu); err != nil {
		return nil, err
	}
	return menu, nil
}

// BuildAdminMenu assembles the operator view with row ids, sold-out
// flags, and display category labels. Items without a source category
// are grouped under "Uncategorized".
func (b *Builder) BuildAdminMenu(ctx context.Context) (models.AdminMenu, error) {
	started := time.Now()
	rows, err := b.queryItems(ctx, false)
	metrics.RecordDBQuery("select", "menu_items", time.Since(started), err)
	if err != nil {
		return nil, err
	}

	displayLabels, err := b.displayCategoryLabels(ctx)
	if err != nil {
		return nil, err
	}

	menu := make(models.AdminMenu)
	for _, row := range rows {
		category := row.categoryName
		if !row.hasCategory {
			category = uncategorizedLabel
		}
		view := models.AdminMenuItemView{
			MenuItemView: models.MenuItemView{
				ExternalID:   row.externalID,
				Name:         row.name,
				Description:  row.description,
				DisplayOrder: row.displayOrder,
				Payload:      json.RawMessage(row.rawPayload),
			},
			ID:                row.id,
			Active:            row.active,
			SoldOut:           row.soldOut,
			DisplayCategories: displayLabels[row.id],
		}
		menu[category] = append(menu[category], view)
	}

	if err := b.attachAdminVariations(ctx, menu); err != nil {
		return nil, err
	}
	return menu, nil
}

// queryItems loads items joined to their source categories, one row per
// item/category pair. publicOnly filters to servable items.
func (b *Builder) queryItems(ctx context.Context, publicOnly bool) ([]itemRow, error) {
	query := `
		SELECT i.id, i.external_id, i.name, i.description, i.display_order,
		       i.active, i.sold_out, i.raw_payload,
		       c.name, c.display_order,
		       ic.category_external_id IS NOT NULL
		FROM menu_items i
		LEFT JOIN menu_item_categories ic ON ic.item_id = i.id
		LEFT JOIN menu_categories c ON c.external_id = ic.category_external_id`
	if publicOnly {
		query += `
		WHERE i.active AND NOT i.sold_out AND (c.active IS NULL OR c.active)`
	}
	query += `
		ORDER BY c.display_order NULLS LAST, i.display_order, i.name`

	rows, err := b.db.Conn().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var out []itemRow
	for rows.Next() {
		var (
			row      itemRow
			catName  sql.NullString
			catOrder sql.NullInt64
		)
		if err := rows.Scan(&row.id, &row.externalID, &row.name, &row.description,
			&row.displayOrder, &row.active, &row.soldOut, &row.rawPayload,
			&catName, &catOrder, &row.hasCategory); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		if catName.Valid {
			row.categoryName = catName.String
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// attachVariations loads and attaches variations for every item in the
// public menu.
func (b *Builder) attachVariations(ctx context.Context, menu models.PublicMenu) error {
	byItem, err := b.variationsByItem(ctx)
	if err != nil {
		return err
	}

	for category, items := range menu {
		for i := range items {
			items[i].Variations = byItem[items[i].ExternalID]
		}
		menu[category] = items
	}
	return nil
}

// attachAdminVariations does the same for the operator view.
func (b *Builder) attachAdminVariations(ctx context.Context, menu models.AdminMenu) error {
	byItem, err := b.variationsByItem(ctx)
	if err != nil {
		return err
	}

	for category, items := range menu {
		for i := range items {
			items[i].Variations = byItem[items[i].ExternalID]
		}
		menu[category] = items
	}
	return nil
}

// variationsByItem reloads every variation row, grouped by the owning
// item's external id. Variations are always recomputed from the current
// rows rather than reused from any cached serialization.
func (b *Builder) variationsByItem(ctx context.Context) (map[string][]models.VariationView, error) {
	rows, err := b.db.Conn().QueryContext(ctx, `
		SELECT i.external_id, v.external_id, v.name, v.value
		FROM menu_item_variations v
		JOIN menu_items i ON i.id = v.item_id
		ORDER BY v.display_order, v.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query variations: %w", err)
	}
	defer rows.Close()

	byItem := make(map[string][]models.VariationView)
	for rows.Next() {
		var itemExt string
		var v models.VariationView
		if err := rows.Scan(&itemExt, &v.ExternalID, &v.Name, &v.Value); err != nil {
			return nil, fmt.Errorf("failed to scan variation: %w", err)
		}
		byItem[itemExt] = append(byItem[itemExt], v)
	}
	return byItem, rows.Err()
}

// displayCategoryLabels returns the display category names assigned to
// each item, ordered for presentation. Only active display categories
// contribute labels; a deactivated category keeps its assignments but
// disappears from the admin view until reactivated.
func (b *Builder) displayCategoryLabels(ctx context.Context) (map[int64][]string, error) {
	rows, err := b.db.Conn().QueryContext(ctx, `
		SELECT a.item_id, d.name
		FROM menu_item_display_categories a
		JOIN display_categories d ON d.id = a.category_id
		WHERE d.active
		ORDER BY d.display_order, d.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query display category labels: %w", err)
	}
	defer rows.Close()

	labels := make(map[int64][]string)
	for rows.Next() {
		var (
			itemID int64
			name   string
		)
		if err := rows.Scan(&itemID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan display label: %w", err)
		}
		labels[itemID] = append(labels[itemID], name)
	}
	return labels, rows.Err()
}
