// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

// Package sync replaces the stored menu catalog with the current state
// of the external POS source.
//
// Ownership rules enforced here:
//   - Source-owned fields (names, descriptions, ordering, active,
//     category membership, variations, raw payload) are replaced on
//     every sync.
//   - Locally-owned state (sold_out flags, display and combo category
//     overlays) is carried forward by external id and never touched by
//     the source, except that overlay assignments of items deleted by
//     the source are garbage-collected in the same transaction.
//
// A sync is all-or-nothing: any failure rolls back the whole snapshot
// and the previously synced catalog keeps serving.
package sync

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tablewise/menucast/internal/catalog"
	"github.com/tablewise/menucast/internal/database"
	"github.com/tablewise/menucast/internal/logging"
	"github.com/tablewise/menucast/internal/metrics"
	"github.com/tablewise/menucast/internal/models"
)

// Result summarizes one completed sync run.
type Result struct {
	Items      int
	Categories int
	Duration   time.Duration
}

// Engine performs full catalog synchronization runs.
type Engine struct {
	db     *database.DB
	source catalog.Source
	status *StatusTracker
}

// NewEngine creates a sync engine.
func NewEngine(db *database.DB, source catalog.Source, status *StatusTracker) *Engine {
	return &Engine{
		db:     db,
		source: source,
		status: status,
	}
}

// derivedCategory is a category reconstructed from item membership, in
// first-seen feed order.
type derivedCategory struct {
	ExternalID   string
	Name         string
	DisplayOrder int
}

// SyncMenuData runs one full synchronization: fetch the catalog,
// replace the stored snapshot in a single transaction, and record the
// outcome in sync_status. Status bookkeeping failures are logged but
// never fail an otherwise successful sync.
func (e *Engine) SyncMenuData(ctx context.Context) (*Result, error) {
	started := time.Now().UTC()

	inProgress := models.SyncStateInProgress
	if err := e.status.UpdateSyncStatus(ctx, models.SyncStatusUpdate{
		LastSyncAttempt: &started,
		Status:          &inProgress,
	}); err != nil {
		logging.Warn().Err(err).Msg("Failed to mark sync in progress")
	}

	items, err := e.source.ListItems(ctx)
	if err != nil {
		metrics.SyncErrors.WithLabelValues("catalog_api").Inc()
		return nil, e.fail(ctx, started, fmt.Errorf("catalog fetch failed: %w", err))
	}

	categories := deriveCategories(items)

	if err := e.applySnapshot(ctx, items, categories); err != nil {
		metrics.SyncErrors.WithLabelValues("database").Inc()
		return nil, e.fail(ctx, started, fmt.Errorf("catalog store failed: %w", err))
	}

	finished := time.Now().UTC()
	result := &Result{
		Items:      len(items),
		Categories: len(categories),
		Duration:   finished.Sub(started),
	}

	success := models.SyncStateSuccess
	noError := ""
	if err := e.status.UpdateSyncStatus(ctx, models.SyncStatusUpdate{
		LastSuccessfulSync: &finished,
		Status:             &success,
		LastError:          &noError,
		ItemsCount:         &result.Items,
		CategoriesCount:    &result.Categories,
	}); err != nil {
		logging.Warn().Err(err).Msg("Failed to record sync success")
	}

	metrics.RecordSyncRun(result.Duration, result.Items, result.Categories, nil)

	logging.Info().
		Int("items", result.Items).
		Int("categories", result.Categories).
		Dur("duration", result.Duration).
		Msg("Catalog sync completed")

	return result, nil
}

// fail records an error outcome. The previous snapshot and
// last_successful_sync are left untouched.
func (e *Engine) fail(ctx context.Context, started time.Time, syncErr error) error {
	errState := models.SyncStateError
	msg := syncErr.Error()
	if err := e.status.UpdateSyncStatus(ctx, models.SyncStatusUpdate{
		Status:    &errState,
		LastError: &msg,
	}); err != nil {
		logging.Warn().Err(err).Msg("Failed to record sync error")
	}

	metrics.RecordSyncRun(time.Since(started), 0, 0, syncErr)

	logging.Error().Err(syncErr).Msg("Catalog sync failed")
	return syncErr
}

// deriveCategories reconstructs the category list from item membership.
// The source feed carries categories only as references on items, so
// ordering follows first appearance in the feed. A category id without
// a usable name gets a synthetic placeholder.
func deriveCategories(items []catalog.SourceItem) []derivedCategory {
	var order []string
	names := make(map[string]string)

	for _, item := range items {
		for i, catID := range item.CategoryIDs {
			if catID == "" {
				continue
			}
			if _, seen := names[catID]; !seen {
				order = append(order, catID)
				names[catID] = ""
			}
			if names[catID] == "" && i < len(item.CategoryNames) && item.CategoryNames[i] != "" {
				names[catID] = item.CategoryNames[i]
			}
		}
	}

	categories := make([]derivedCategory, len(order))
	for i, catID := range order {
		name := names[catID]
		if name == "" {
			name = fmt.Sprintf("Category %d", i+1)
		}
		categories[i] = derivedCategory{
			ExternalID:   catID,
			Name:         name,
			DisplayOrder: i,
		}
	}
	return categories
}

// applySnapshot replaces the stored catalog with the fetched snapshot
// in one transaction.
func (e *Engine) applySnapshot(ctx context.Context, items []catalog.SourceItem, categories []derivedCategory) error {
	return e.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := upsertCategories(ctx, tx, categories); err != nil {
			return err
		}
		if err := upsertItems(ctx, tx, items); err != nil {
			return err
		}
		if err := deleteMissing(ctx, tx, "menu_categories", categoryExternalIDs(categories)); err != nil {
			return err
		}
		if err := deleteMissing(ctx, tx, "menu_items", itemExternalIDs(items)); err != nil {
			return err
		}
		if err := rebuildItemRelations(ctx, tx, items); err != nil {
			return err
		}
		return gcOverlayAssignments(ctx, tx)
	})
}

func upsertCategories(ctx context.Context, tx *sql.Tx, categories []derivedCategory) error {
	for _, cat := range categories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO menu_categories (external_id, name, display_order, active)
			VALUES (?, ?, ?, TRUE)
			ON CONFLICT (external_id) DO UPDATE SET
				name = excluded.name,
				display_order = excluded.display_order,
				active = excluded.active`,
			cat.ExternalID, cat.Name, cat.DisplayOrder)
		if err != nil {
			return fmt.Errorf("failed to upsert category %s: %w", cat.ExternalID, err)
		}
	}
	return nil
}

// upsertItems writes source-owned item fields. Every synced item is
// active with a display order equal to its position in the fetch; the
// source feed carries neither field. The ON CONFLICT clause
// deliberately omits sold_out so existing rows keep their local flag;
// new rows start not sold out.
func upsertItems(ctx context.Context, tx *sql.Tx, items []catalog.SourceItem) error {
	now := time.Now().UTC()
	for pos, item := range items {
		payload := string(item.Raw)
		if payload == "" {
			payload = "{}"
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO menu_items (external_id, name, description, display_order, active, raw_payload, updated_at)
			VALUES (?, ?, ?, ?, TRUE, ?, ?)
			ON CONFLICT (external_id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				display_order = excluded.display_order,
				active = excluded.active,
				raw_payload = excluded.raw_payload,
				updated_at = excluded.updated_at`,
			item.ID, item.Name, item.Description, pos, payload, now)
		if err != nil {
			return fmt.Errorf("failed to upsert item %s: %w", item.ID, err)
		}
	}
	return nil
}

// deleteMissing removes rows whose external_id is no longer in the
// snapshot. An empty snapshot empties the table.
func deleteMissing(ctx context.Context, tx *sql.Tx, table string, keep []string) error {
	if len(keep) == 0 {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil { //nolint:gosec // table is a compile-time constant
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",")
	args := make([]interface{}, len(keep))
	for i, id := range keep {
		args[i] = id
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE external_id NOT IN (%s)", table, placeholders) //nolint:gosec // table is a compile-time constant
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to prune %s: %w", table, err)
	}
	return nil
}

// rebuildItemRelations replaces category membership and variations for
// every item. Both tables are fully source-owned.
func rebuildItemRelations(ctx context.Context, tx *sql.Tx, items []catalog.SourceItem) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM menu_item_categories`); err != nil {
		return fmt.Errorf("failed to clear item categories: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM menu_item_variations`); err != nil {
		return fmt.Errorf("failed to clear item variations: %w", err)
	}

	ids, err := itemIDsByExternalID(ctx, tx)
	if err != nil {
		return err
	}

	for _, item := range items {
		itemID, ok := ids[item.ID]
		if !ok {
			return fmt.Errorf("item %s missing after upsert", item.ID)
		}

		for _, catID := range item.CategoryIDs {
			if catID == "" {
				continue
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO menu_item_categories (item_id, category_external_id)
				VALUES (?, ?)
				ON CONFLICT (item_id, category_external_id) DO NOTHING`,
				itemID, catID)
			if err != nil {
				return fmt.Errorf("failed to link item %s to category %s: %w", item.ID, catID, err)
			}
		}

		for i, v := range item.Variations {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO menu_item_variations (item_id, external_id, name, value, display_order)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (item_id, external_id) DO NOTHING`,
				itemID, v.ID, v.Name, v.Value, orDefault(v.DisplayOrder, i))
			if err != nil {
				return fmt.Errorf("failed to store variation %s of item %s: %w", v.ID, item.ID, err)
			}
		}
	}
	return nil
}

// gcOverlayAssignments drops display and combo assignments that point
// at items the source deleted. The categories themselves survive.
func gcOverlayAssignments(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"menu_item_display_categories", "menu_item_combo_categories"} {
		query := fmt.Sprintf("DELETE FROM %s WHERE item_id NOT IN (SELECT id FROM menu_items)", table) //nolint:gosec // table is a compile-time constant
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to prune %s: %w", table, err)
		}
	}
	return nil
}

func itemIDsByExternalID(ctx context.Context, tx *sql.Tx) (map[string]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, external_id FROM menu_items`)
	if err != nil {
		return nil, fmt.Errorf("failed to load item ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var (
			id  int64
			ext string
		)
		if err := rows.Scan(&id, &ext); err != nil {
			return nil, fmt.Errorf("failed to scan item id: %w", err)
		}
		ids[ext] = id
	}
	return ids, rows.Err()
}

func categoryExternalIDs(categories []derivedCategory) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = c.ExternalID
	}
	return out
}

func itemExternalIDs(items []catalog.SourceItem) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item.ID] {
			seen[item.ID] = true
			out = append(out, item.ID)
		}
	}
	return out
}

func orDefault(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}
