// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package menu

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tablewise/menucast/internal/database"
	"github.com/tablewise/menucast/internal/metrics"
)

// ErrItemNotFound is returned when a sold-out update targets a row id
// that does not exist.
var ErrItemNotFound = errors.New("menu item not found")

// ItemStore performs the locally owned item writes: sold-out flags.
// All other item fields belong to the sync engine.
type ItemStore struct {
	db *database.DB
}

// NewItemStore creates an item store over the given database.
func NewItemStore(db *database.DB) *ItemStore {
	return &ItemStore{db: db}
}

// SetSoldOut updates the sold-out flag of one item by row id.
func (s *ItemStore) SetSoldOut(ctx context.Context, itemID int64, soldOut bool) error {
	started := time.Now()
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE menu_items SET sold_out = ? WHERE id = ?`, soldOut, itemID)
		if err != nil {
			return fmt.Errorf("failed to update sold-out flag: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check sold-out update: %w", err)
		}
		if affected == 0 {
			return ErrItemNotFound
		}
		return nil
	})
	metrics.RecordDBQuery("update", "menu_items", time.Since(started), err)
	return err
}

// SetSoldOutBulk updates the sold-out flag for a set of items in one
// statement. Returns the number of rows actually updated; unknown ids
// are skipped, not an error, so stale admin screens degrade gracefully.
func (s *ItemStore) SetSoldOutBulk(ctx context.Context, itemIDs []int64, soldOut bool) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(itemIDs)), ",")
	args := make([]interface{}, 0, len(itemIDs)+1)
	args = append(args, soldOut)
	for _, id := range itemIDs {
		args = append(args, id)
	}

	var updated int64
	started := time.Now()
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE menu_items SET sold_out = ? WHERE id IN (%s)`, placeholders), //nolint:gosec // placeholders only, values are bound
			args...)
		if err != nil {
			return fmt.Errorf("failed to bulk update sold-out flags: %w", err)
		}
		updated, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check bulk update: %w", err)
		}
		return nil
	})
	metrics.RecordDBQuery("update", "menu_items", time.Since(started), err)
	return updated, err
}
