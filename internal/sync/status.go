// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package sync

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tablewise/menucast/internal/database"
	"github.com/tablewise/menucast/internal/models"
)

// StatusTracker owns the single-row sync_status table. Every write is
// an upsert against id=1; readers always see exactly one row (or none
// before the first sync attempt, reported as pending).
type StatusTracker struct {
	db *database.DB
}

// NewStatusTracker creates a status tracker over the given database.
func NewStatusTracker(db *database.DB) *StatusTracker {
	return &StatusTracker{db: db}
}

// UpdateSyncStatus applies a partial update to the current status row.
// Nil fields in the update leave the stored value unchanged, so an
// error update never clobbers last_successful_sync.
func (t *StatusTracker) UpdateSyncStatus(ctx context.Context, update models.SyncStatusUpdate) error {
	return t.db.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := readStatusRow(ctx, tx)
		if err != nil {
			return err
		}

		if update.LastSyncAttempt != nil {
			current.LastSyncAttempt = update.LastSyncAttempt
		}
		if update.LastSuccessfulSync != nil {
			current.LastSuccessfulSync = update.LastSuccessfulSync
		}
		if update.Status != nil {
			current.Status = *update.Status
		}
		if update.LastError != nil {
			current.LastError = *update.LastError
		}
		if update.ItemsCount != nil {
			current.ItemsCount = *update.ItemsCount
		}
		if update.CategoriesCount != nil {
			current.CategoriesCount = *update.CategoriesCount
		}
		current.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO sync_status
				(id, last_sync_attempt, last_successful_sync, status, last_error, items_count, categories_count, updated_at)
			VALUES (1, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				last_sync_attempt = excluded.last_sync_attempt,
				last_successful_sync = excluded.last_successful_sync,
				status = excluded.status,
				last_error = excluded.last_error,
				items_count = excluded.items_count,
				categories_count = excluded.categories_count,
				updated_at = excluded.updated_at`,
			current.LastSyncAttempt, current.LastSuccessfulSync, string(current.Status),
			current.LastError, current.ItemsCount, current.CategoriesCount, current.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert sync status: %w", err)
		}
		return nil
	})
}

// GetSyncStatus returns the current sync status. Before the first sync
// attempt it returns a pending status with zero counts.
func (t *StatusTracker) GetSyncStatus(ctx context.Context) (*models.SyncStatus, error) {
	var status *models.SyncStatus
	err := t.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		status, err = readStatusRow(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

func readStatusRow(ctx context.Context, tx *sql.Tx) (*models.SyncStatus, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT last_sync_attempt, last_successful_sync, status, last_error,
		       items_count, categories_count, updated_at
		FROM sync_status WHERE id = 1`)

	var (
		status   models.SyncStatus
		stateStr string
	)
	err := row.Scan(&status.LastSyncAttempt, &status.LastSuccessfulSync, &stateStr,
		&status.LastError, &status.ItemsCount, &status.CategoriesCount, &status.UpdatedAt)
	if err == sql.ErrNoRows {
		return &models.SyncStatus{Status: models.SyncStatePending}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sync status: %w", err)
	}
	status.Status = models.SyncState(stateStr)
	return &status, nil
}
