// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tablewise/menucast/internal/config"
)

// testDBSemaphore serializes DuckDB instance creation. Concurrent
// in-memory instance creation is flaky under -race with limited memory.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates an in-memory database for testing.
// The semaphore slot is held for the duration of the test.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	}

	type result struct {
		db  *DB
		err error
	}
	done := make(chan result, 1)
	go func() {
		db, err := New(cfg)
		done <- result{db, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("failed to create test database: %v", r.err)
		}
		t.Cleanup(func() {
			if err := r.db.Close(); err != nil {
				t.Logf("failed to close test database: %v", err)
			}
		})
		return r.db
	case <-time.After(120 * time.Second):
		t.Fatal("timed out creating test database")
		return nil
	}
}

func TestNewCreatesSchema(t *testing.T) {
	db := setupTestDB(t)

	tables := []string{
		"menu_categories",
		"menu_items",
		"menu_item_categories",
		"menu_item_variations",
		"sync_status",
		"display_categories",
		"menu_item_display_categories",
		"combo_categories",
		"menu_item_combo_categories",
		"schema_migrations",
	}

	for _, table := range tables {
		var count int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		if err := db.Conn().QueryRow(query).Scan(&count); err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}
}

func TestNewIsIdempotentOnExistingSchema(t *testing.T) {
	db := setupTestDB(t)

	// Re-running the DDL against a populated connection must not error.
	if err := db.initialize(); err != nil {
		t.Fatalf("re-initialization failed: %v", err)
	}
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestSyncStatusSingleRowConstraint(t *testing.T) {
	db := setupTestDB(t)

	ctx := context.Background()
	_, err := db.Conn().ExecContext(ctx,
		`INSERT INTO sync_status (id, status) VALUES (1, 'pending')`)
	if err != nil {
		t.Fatalf("inserting row with id=1 failed: %v", err)
	}

	_, err = db.Conn().ExecContext(ctx,
		`INSERT INTO sync_status (id, status) VALUES (2, 'pending')`)
	if err == nil {
		t.Fatal("expected CHECK constraint to reject id=2")
	}
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO menu_categories (external_id, name) VALUES ('cat-1', 'Starters')`)
		return err
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	var count int
	if err := db.Conn().QueryRow(`SELECT COUNT(*) FROM menu_categories`).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 category, got %d", count)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	sentinel := errors.New("boom")
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO menu_categories (external_id, name) VALUES ('cat-1', 'Starters')`); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	var count int
	if err := db.Conn().QueryRow(`SELECT COUNT(*) FROM menu_categories`).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected rollback to leave 0 categories, got %d", count)
	}
}

func TestSequencesAssignDistinctIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, ext := range []string{"i-1", "i-2", "i-3"} {
		_, err := db.Conn().ExecContext(ctx,
			`INSERT INTO menu_items (external_id, name) VALUES (?, ?)`, ext, ext)
		if err != nil {
			t.Fatalf("insert %s failed: %v", ext, err)
		}
	}

	rows, err := db.Conn().QueryContext(ctx, `SELECT id FROM menu_items ORDER BY id`)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	defer closeQuietly(rows)

	seen := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		if seen[id] {
			t.Errorf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows error: %v", err)
	}
	if len(seen) != 3 {
		t.Errorf("expected 3 distinct ids, got %d", len(seen))
	}
}
