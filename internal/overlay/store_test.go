// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package overlay

import (
	"context"
	"errors"
	"testing"

	"github.com/tablewise/menucast/internal/config"
	"github.com/tablewise/menucast/internal/database"
	"github.com/tablewise/menucast/internal/models"
)

var testDBSemaphore = make(chan struct{}, 1)

func newTestStore(t *testing.T) (*Store, *database.DB) {
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
	return NewStore(db), db
}

func insertTestItem(t *testing.T, db *database.DB, externalID string) int64 {
	t.Helper()
	ctx := context.Background()
	if _, err := db.Conn().ExecContext(ctx,
		`INSERT INTO menu_items (external_id, name) VALUES (?, ?)`, externalID, externalID); err != nil {
		t.Fatalf("failed to insert item: %v", err)
	}
	var id int64
	if err := db.Conn().QueryRow(
		`SELECT id FROM menu_items WHERE external_id = ?`, externalID).Scan(&id); err != nil {
		t.Fatalf("failed to look up item: %v", err)
	}
	return id
}

func TestCreateDisplayCategoryRejectsDuplicateName(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateDisplayCategory(ctx, &models.DisplayCategoryRequest{Name: "Favorites"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := store.CreateDisplayCategory(ctx, &models.DisplayCategoryRequest{Name: "Favorites"}); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	// Display and combo namespaces are independent.
	if _, err := store.CreateComboCategory(ctx, &models.ComboCategoryRequest{Name: "Favorites"}); err != nil {
		t.Fatalf("combo create with same name should succeed: %v", err)
	}
}

func TestUpdateDisplayCategoryRenameConflict(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a, err := store.CreateDisplayCategory(ctx, &models.DisplayCategoryRequest{Name: "Brunch"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := store.CreateDisplayCategory(ctx, &models.DisplayCategoryRequest{Name: "Dinner"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := store.UpdateDisplayCategory(ctx, a.ID, &models.DisplayCategoryRequest{Name: "Dinner"}); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	// Renaming to its own name is fine.
	updated, err := store.UpdateDisplayCategory(ctx, a.ID, &models.DisplayCategoryRequest{Name: "Brunch", Description: "Sat + Sun"})
	if err != nil {
		t.Fatalf("self-rename failed: %v", err)
	}
	if updated.Description != "Sat + Sun" {
		t.Errorf("expected description updated, got %q", updated.Description)
	}
}

func TestUpdateMissingCategoryReturnsNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.UpdateDisplayCategory(context.Background(), 9999, &models.DisplayCategoryRequest{Name: "Ghost"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteDisplayCategoryGuardedByAssignments(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	cat, err := store.CreateDisplayCategory(ctx, &models.DisplayCategoryRequest{Name: "Favorites"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	itemID := insertTestItem(t, db, "i-1")

	if err := store.AssignItemToDisplayCategory(ctx, cat.ID, itemID); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	if err := store.DeleteDisplayCategory(ctx, cat.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}

	if err := store.UnassignItemFromDisplayCategory(ctx, cat.ID, itemID); err != nil {
		t.Fatalf("unassign failed: %v", err)
	}
	if err := store.DeleteDisplayCategory(ctx, cat.ID); err != nil {
		t.Fatalf("delete after unassign failed: %v", err)
	}

	cats, err := store.ListDisplayCategories(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("expected no categories, got %d", len(cats))
	}
}

func TestAssignRejectsDuplicates(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	cat, err := store.CreateComboCategory(ctx, &models.ComboCategoryRequest{Name: "Lunch Deal"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	itemID := insertTestItem(t, db, "i-1")

	if err := store.AssignItemToComboCategory(ctx, cat.ID, itemID); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if err := store.AssignItemToComboCategory(ctx, cat.ID, itemID); !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("expected ErrAlreadyAssigned, got %v", err)
	}
}

func TestAssignValidatesTargets(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	cat, err := store.CreateDisplayCategory(ctx, &models.DisplayCategoryRequest{Name: "Favorites"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	itemID := insertTestItem(t, db, "i-1")

	if err := store.AssignItemToDisplayCategory(ctx, 9999, itemID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing category, got %v", err)
	}
	if err := store.AssignItemToDisplayCategory(ctx, cat.ID, 9999); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound for missing item, got %v", err)
	}
	if err := store.UnassignItemFromDisplayCategory(ctx, cat.ID, itemID); !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("expected ErrNotAssigned, got %v", err)
	}
}

func TestComboCategoryRequiredFlag(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	required := true
	cat, err := store.CreateComboCategory(ctx, &models.ComboCategoryRequest{
		Name:     "Pick a Side",
		Required: &required,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !cat.Required {
		t.Error("expected required flag persisted")
	}

	cats, err := store.ListComboCategories(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(cats) != 1 || !cats[0].Required {
		t.Errorf("unexpected list result: %+v", cats)
	}
}

func TestListOrdersByDisplayOrderThenName(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, req := range []models.DisplayCategoryRequest{
		{Name: "Zeta", DisplayOrder: 0},
		{Name: "Alpha", DisplayOrder: 0},
		{Name: "First", DisplayOrder: 0},
	} {
		r := req
		if _, err := store.CreateDisplayCategory(ctx, &r); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	// Move First ahead of the pack.
	cats, err := store.ListDisplayCategories(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if cats[0].Name != "Alpha" || cats[1].Name != "First" || cats[2].Name != "Zeta" {
		t.Errorf("unexpected order: %v, %v, %v", cats[0].Name, cats[1].Name, cats[2].Name)
	}
}
