// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tablewise/menucast/internal/catalog"
	"github.com/tablewise/menucast/internal/config"
	"github.com/tablewise/menucast/internal/database"
	"github.com/tablewise/menucast/internal/models"
)

// testDBSemaphore serializes DuckDB instance creation across tests.
var testDBSemaphore = make(chan struct{}, 1)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})
	return db
}

// fakeSource serves canned catalog snapshots or a canned error.
type fakeSource struct {
	items   []catalog.SourceItem
	err     error
	started chan struct{} // closed when ListItems is entered, if non-nil
	release chan struct{} // blocks ListItems until closed, if non-nil
}

func (f *fakeSource) Ping(ctx context.Context) error { return f.err }

func (f *fakeSource) ListItems(ctx context.Context) ([]catalog.SourceItem, error) {
	if f.started != nil {
		close(f.started)
		f.started = nil
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func newTestEngine(t *testing.T, source catalog.Source) (*Engine, *database.DB, *StatusTracker) {
	t.Helper()
	db := newTestDB(t)
	status := NewStatusTracker(db)
	return NewEngine(db, source, status), db, status
}

func item(id, name string, cats ...string) catalog.SourceItem {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = "Name of " + c
	}
	return catalog.SourceItem{
		ID:            id,
		Name:          name,
		CategoryIDs:   cats,
		CategoryNames: names,
	}
}

func countRows(t *testing.T, db *database.DB, table string) int {
	t.Helper()
	var n int
	if err := db.Conn().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s failed: %v", table, err)
	}
	return n
}

func TestSyncReplacesCatalogWithSnapshot(t *testing.T) {
	source := &fakeSource{items: []catalog.SourceItem{
		item("a", "Burger", "c1"),
		item("b", "Fries", "c1"),
		item("c", "Cola", "c2"),
	}}
	engine, db, _ := newTestEngine(t, source)
	ctx := context.Background()

	result, err := engine.SyncMenuData(ctx)
	if err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	if result.Items != 3 || result.Categories != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}

	// Second snapshot: c removed, d added, b renamed.
	source.items = []catalog.SourceItem{
		item("a", "Burger", "c1"),
		item("b", "Loaded Fries", "c1"),
		item("d", "Lemonade", "c2"),
	}
	if _, err := engine.SyncMenuData(ctx); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}

	if n := countRows(t, db, "menu_items"); n != 3 {
		t.Errorf("expected 3 items, got %d", n)
	}

	var name string
	if err := db.Conn().QueryRow(
		`SELECT name FROM menu_items WHERE external_id = 'b'`).Scan(&name); err != nil {
		t.Fatalf("item b lookup failed: %v", err)
	}
	if name != "Loaded Fries" {
		t.Errorf("expected item b renamed, got %q", name)
	}

	var count int
	if err := db.Conn().QueryRow(
		`SELECT COUNT(*) FROM menu_items WHERE external_id = 'c'`).Scan(&count); err != nil {
		t.Fatalf("item c lookup failed: %v", err)
	}
	if count != 0 {
		t.Error("expected item c to be deleted")
	}
}

func TestSyncPreservesSoldOutByExternalID(t *testing.T) {
	source := &fakeSource{items: []catalog.SourceItem{
		item("a", "Burger", "c1"),
		item("b", "Fries", "c1"),
	}}
	engine, db, _ := newTestEngine(t, source)
	ctx := context.Background()

	if _, err := engine.SyncMenuData(ctx); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	if _, err := db.Conn().ExecContext(ctx,
		`UPDATE menu_items SET sold_out = TRUE WHERE external_id = 'a'`); err != nil {
		t.Fatalf("failed to mark sold out: %v", err)
	}

	var idBefore int64
	if err := db.Conn().QueryRow(
		`SELECT id FROM menu_items WHERE external_id = 'a'`).Scan(&idBefore); err != nil {
		t.Fatalf("id lookup failed: %v", err)
	}

	// Re-sync with updated source data for the same items plus one new.
	source.items = []catalog.SourceItem{
		item("a", "Smash Burger", "c1"),
		item("b", "Fries", "c1"),
		item("c", "Cola", "c1"),
	}
	if _, err := engine.SyncMenuData(ctx); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}

	var (
		soldOut bool
		name    string
		idAfter int64
	)
	if err := db.Conn().QueryRow(
		`SELECT id, name, sold_out FROM menu_items WHERE external_id = 'a'`).
		Scan(&idAfter, &name, &soldOut); err != nil {
		t.Fatalf("item a lookup failed: %v", err)
	}
	if !soldOut {
		t.Error("expected sold_out flag to survive the sync")
	}
	if name != "Smash Burger" {
		t.Errorf("expected source fields replaced, got %q", name)
	}
	if idAfter != idBefore {
		t.Errorf("expected stable row id across syncs, got %d then %d", idBefore, idAfter)
	}

	var newSoldOut bool
	if err := db.Conn().QueryRow(
		`SELECT sold_out FROM menu_items WHERE external_id = 'c'`).Scan(&newSoldOut); err != nil {
		t.Fatalf("item c lookup failed: %v", err)
	}
	if newSoldOut {
		t.Error("expected new item to default to not sold out")
	}
}

func TestSyncFailureKeepsPreviousSnapshot(t *testing.T) {
	source := &fakeSource{items: []catalog.SourceItem{
		item("a", "Burger", "c1"),
	}}
	engine, db, status := newTestEngine(t, source)
	ctx := context.Background()

	if _, err := engine.SyncMenuData(ctx); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	before, err := status.GetSyncStatus(ctx)
	if err != nil {
		t.Fatalf("status read failed: %v", err)
	}
	if before.LastSuccessfulSync == nil {
		t.Fatal("expected last_successful_sync to be set")
	}

	source.err = errors.New("source down")
	if _, err := engine.SyncMenuData(ctx); err == nil {
		t.Fatal("expected sync to fail")
	}

	if n := countRows(t, db, "menu_items"); n != 1 {
		t.Errorf("expected previous snapshot to survive, got %d items", n)
	}

	after, err := status.GetSyncStatus(ctx)
	if err != nil {
		t.Fatalf("status read failed: %v", err)
	}
	if after.Status != models.SyncStateError {
		t.Errorf("expected error status, got %s", after.Status)
	}
	if after.LastError == "" {
		t.Error("expected last_error to be recorded")
	}
	if after.LastSuccessfulSync == nil || !after.LastSuccessfulSync.Equal(*before.LastSuccessfulSync) {
		t.Error("expected last_successful_sync to be unchanged after failure")
	}
}

func TestSyncGarbageCollectsOverlayAssignments(t *testing.T) {
	source := &fakeSource{items: []catalog.SourceItem{
		item("a", "Burger", "c1"),
		item("b", "Fries", "c1"),
	}}
	engine, db, _ := newTestEngine(t, source)
	ctx := context.Background()

	if _, err := engine.SyncMenuData(ctx); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	var itemB int64
	if err := db.Conn().QueryRow(
		`SELECT id FROM menu_items WHERE external_id = 'b'`).Scan(&itemB); err != nil {
		t.Fatalf("item b lookup failed: %v", err)
	}
	if _, err := db.Conn().ExecContext(ctx,
		`INSERT INTO display_categories (name) VALUES ('Favorites')`); err != nil {
		t.Fatalf("failed to create display category: %v", err)
	}
	var catID int64
	if err := db.Conn().QueryRow(
		`SELECT id FROM display_categories WHERE name = 'Favorites'`).Scan(&catID); err != nil {
		t.Fatalf("category lookup failed: %v", err)
	}
	if _, err := db.Conn().ExecContext(ctx,
		`INSERT INTO menu_item_display_categories (item_id, category_id) VALUES (?, ?)`,
		itemB, catID); err != nil {
		t.Fatalf("failed to assign: %v", err)
	}

	// Item b disappears from the source.
	source.items = []catalog.SourceItem{item("a", "Burger", "c1")}
	if _, err := engine.SyncMenuData(ctx); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}

	if n := countRows(t, db, "menu_item_display_categories"); n != 0 {
		t.Errorf("expected orphaned assignment to be removed, got %d rows", n)
	}
	if n := countRows(t, db, "display_categories"); n != 1 {
		t.Errorf("expected display category itself to survive, got %d rows", n)
	}
}

func TestSyncRebuildsVariations(t *testing.T) {
	withVariation := item("a", "Coffee", "c1")
	withVariation.Variations = []catalog.SourceVariation{
		{ID: "v1", Name: "Small", Value: "8oz"},
		{ID: "v2", Name: "Large", Value: "16oz"},
	}
	source := &fakeSource{items: []catalog.SourceItem{withVariation}}
	engine, db, _ := newTestEngine(t, source)
	ctx := context.Background()

	if _, err := engine.SyncMenuData(ctx); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	if n := countRows(t, db, "menu_item_variations"); n != 2 {
		t.Fatalf("expected 2 variations, got %d", n)
	}

	// Source drops one variation.
	withVariation.Variations = withVariation.Variations[:1]
	source.items = []catalog.SourceItem{withVariation}
	if _, err := engine.SyncMenuData(ctx); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if n := countRows(t, db, "menu_item_variations"); n != 1 {
		t.Errorf("expected variations re-derived, got %d", n)
	}
}

func TestDeriveCategoriesFirstSeenOrder(t *testing.T) {
	items := []catalog.SourceItem{
		{ID: "a", CategoryIDs: []string{"c2"}, CategoryNames: []string{"Mains"}},
		{ID: "b", CategoryIDs: []string{"c1", "c2"}, CategoryNames: []string{"", "Mains"}},
		{ID: "c", CategoryIDs: []string{"c3"}, CategoryNames: []string{"Drinks"}},
	}

	cats := deriveCategories(items)
	if len(cats) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(cats))
	}
	if cats[0].ExternalID != "c2" || cats[1].ExternalID != "c1" || cats[2].ExternalID != "c3" {
		t.Errorf("unexpected order: %+v", cats)
	}
	if cats[0].Name != "Mains" {
		t.Errorf("expected name from feed, got %q", cats[0].Name)
	}
	// c1 never carries a name anywhere in the feed.
	if cats[1].Name != "Category 2" {
		t.Errorf("expected synthetic name for unnamed category, got %q", cats[1].Name)
	}
	for i, c := range cats {
		if c.DisplayOrder != i {
			t.Errorf("expected display order %d, got %d", i, c.DisplayOrder)
		}
	}
}

func TestSyncNormalizesActiveAndFetchOrder(t *testing.T) {
	// The raw payload may carry active/display_order fields; the engine
	// owns both and must ignore them.
	burger := item("a", "Burger", "c1")
	burger.Raw = json.RawMessage(`{"id":"a","name":"Burger","active":false,"display_order":9}`)
	fries := item("b", "Fries", "c1")
	cola := item("c", "Cola", "c1")

	source := &fakeSource{items: []catalog.SourceItem{burger, fries, cola}}
	engine, db, _ := newTestEngine(t, source)

	if _, err := engine.SyncMenuData(context.Background()); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	rows, err := db.Conn().Query(
		`SELECT external_id, display_order, active FROM menu_items ORDER BY display_order`)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	defer rows.Close()

	want := []string{"a", "b", "c"}
	pos := 0
	for rows.Next() {
		var (
			ext    string
			order  int
			active bool
		)
		if err := rows.Scan(&ext, &order, &active); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		if pos >= len(want) || ext != want[pos] {
			t.Fatalf("unexpected item %q at position %d", ext, pos)
		}
		if order != pos {
			t.Errorf("item %q: expected fetch-order position %d, got %d", ext, pos, order)
		}
		if !active {
			t.Errorf("item %q: expected active after sync", ext)
		}
		pos++
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows failed: %v", err)
	}
	if pos != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), pos)
	}
}

func TestSyncEmptySnapshotEmptiesCatalog(t *testing.T) {
	source := &fakeSource{items: []catalog.SourceItem{item("a", "Burger", "c1")}}
	engine, db, _ := newTestEngine(t, source)
	ctx := context.Background()

	if _, err := engine.SyncMenuData(ctx); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	source.items = nil
	result, err := engine.SyncMenuData(ctx)
	if err != nil {
		t.Fatalf("empty sync failed: %v", err)
	}
	if result.Items != 0 {
		t.Errorf("expected 0 items, got %d", result.Items)
	}
	if n := countRows(t, db, "menu_items"); n != 0 {
		t.Errorf("expected empty catalog, got %d items", n)
	}
	if n := countRows(t, db, "menu_categories"); n != 0 {
		t.Errorf("expected empty categories, got %d rows", n)
	}
}

func TestStatusTrackerSingleCurrentRow(t *testing.T) {
	db := newTestDB(t)
	tracker := NewStatusTracker(db)
	ctx := context.Background()

	now := time.Now().UTC()
	inProgress := models.SyncStateInProgress
	if err := tracker.UpdateSyncStatus(ctx, models.SyncStatusUpdate{
		LastSyncAttempt: &now,
		Status:          &inProgress,
	}); err != nil {
		t.Fatalf("first update failed: %v", err)
	}

	success := models.SyncStateSuccess
	items := 12
	if err := tracker.UpdateSyncStatus(ctx, models.SyncStatusUpdate{
		LastSuccessfulSync: &now,
		Status:             &success,
		ItemsCount:         &items,
	}); err != nil {
		t.Fatalf("second update failed: %v", err)
	}

	var rowCount int
	if err := db.Conn().QueryRow(`SELECT COUNT(*) FROM sync_status`).Scan(&rowCount); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if rowCount != 1 {
		t.Fatalf("expected exactly one status row, got %d", rowCount)
	}

	status, err := tracker.GetSyncStatus(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if status.Status != models.SyncStateSuccess {
		t.Errorf("expected success, got %s", status.Status)
	}
	if status.ItemsCount != 12 {
		t.Errorf("expected items count 12, got %d", status.ItemsCount)
	}
	// Partial update must not clobber the attempt timestamp.
	if status.LastSyncAttempt == nil {
		t.Error("expected last_sync_attempt preserved across partial update")
	}
}

func TestStatusTrackerPendingBeforeFirstSync(t *testing.T) {
	db := newTestDB(t)
	tracker := NewStatusTracker(db)

	status, err := tracker.GetSyncStatus(context.Background())
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if status.Status != models.SyncStatePending {
		t.Errorf("expected pending, got %s", status.Status)
	}
	if status.LastSuccessfulSync != nil {
		t.Error("expected no last_successful_sync before first sync")
	}
}
