// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

// Package overlay manages the locally owned curation layer on top of
// the synced catalog: display categories (presentation grouping) and
// combo categories (meal-deal grouping), plus their item assignments.
//
// Overlay rows reference items by internal row id. That is safe
// because sync upserts items in place; a row id only disappears when
// the source deletes the item, and sync garbage-collects the
// assignments in the same transaction.
package overlay

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tablewise/menucast/internal/database"
)

// Sentinel errors mapped to API status codes by the handlers.
var (
	// ErrNotFound is returned when a category id does not exist.
	ErrNotFound = errors.New("category not found")

	// ErrItemNotFound is returned when an assignment targets a menu
	// item that does not exist.
	ErrItemNotFound = errors.New("menu item not found")

	// ErrDuplicateName is returned when a create or rename collides
	// with an existing category name of the same kind.
	ErrDuplicateName = errors.New("category name already in use")

	// ErrCategoryInUse is returned when deleting a category that still
	// has items assigned.
	ErrCategoryInUse = errors.New("category has assigned items")

	// ErrAlreadyAssigned is returned when an item is assigned to a
	// category it is already in.
	ErrAlreadyAssigned = errors.New("item already assigned to category")

	// ErrNotAssigned is returned when removing an assignment that does
	// not exist.
	ErrNotAssigned = errors.New("item not assigned to category")
)

// kind describes one overlay category family. Display and combo
// categories share all behavior except their tables and the combo-only
// required flag.
type kind struct {
	table       string
	joinTable   string
	sequence    string
	hasRequired bool
}

var (
	displayKind = kind{
		table:     "display_categories",
		joinTable: "menu_item_display_categories",
		sequence:  "seq_display_categories",
	}
	comboKind = kind{
		table:       "combo_categories",
		joinTable:   "menu_item_combo_categories",
		sequence:    "seq_combo_categories",
		hasRequired: true,
	}
)

// Store provides overlay category persistence.
type Store struct {
	db *database.DB
}

// NewStore creates an overlay store over the given database.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

type categoryRow struct {
	ID           int64
	Name         string
	Description  string
	DisplayOrder int
	Required     bool
	Active       bool
}

// nameTaken reports whether another category of this kind already uses
// the name. excludeID skips the row being renamed.
func nameTaken(ctx context.Context, tx *sql.Tx, k kind, name string, excludeID int64) (bool, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE name = ? AND id != ?`, k.table) //nolint:gosec // table names are compile-time constants
	if err := tx.QueryRowContext(ctx, query, name, excludeID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return count > 0, nil
}

func getCategory(ctx context.Context, tx *sql.Tx, k kind, id int64) (*categoryRow, error) {
	cols := "id, name, description, display_order, active"
	if k.hasRequired {
		cols = "id, name, description, display_order, required, active"
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, cols, k.table) //nolint:gosec // table names are compile-time constants

	var row categoryRow
	var err error
	if k.hasRequired {
		err = tx.QueryRowContext(ctx, query, id).Scan(
			&row.ID, &row.Name, &row.Description, &row.DisplayOrder, &row.Required, &row.Active)
	} else {
		err = tx.QueryRowContext(ctx, query, id).Scan(
			&row.ID, &row.Name, &row.Description, &row.DisplayOrder, &row.Active)
	}
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return &row, nil
}

func (s *Store) createCategory(ctx context.Context, k kind, name, description string, displayOrder int, required, active bool) (*categoryRow, error) {
	var created *categoryRow
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		taken, err := nameTaken(ctx, tx, k, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}

		var id int64
		if err := tx.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT nextval('%s')`, k.sequence)).Scan(&id); err != nil { //nolint:gosec // sequence names are compile-time constants
			return fmt.Errorf("failed to allocate category id: %w", err)
		}

		if k.hasRequired {
			_, err = tx.ExecContext(ctx,
				fmt.Sprintf(`INSERT INTO %s (id, name, description, display_order, required, active) VALUES (?, ?, ?, ?, ?, ?)`, k.table), //nolint:gosec
				id, name, description, displayOrder, required, active)
		} else {
			_, err = tx.ExecContext(ctx,
				fmt.Sprintf(`INSERT INTO %s (id, name, description, display_order, active) VALUES (?, ?, ?, ?, ?)`, k.table), //nolint:gosec
				id, name, description, displayOrder, active)
		}
		if err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}

		created, err = getCategory(ctx, tx, k, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) updateCategory(ctx context.Context, k kind, id int64, name, description string, displayOrder int, required, active bool) (*categoryRow, error) {
	var updated *categoryRow
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := getCategory(ctx, tx, k, id); err != nil {
			return err
		}

		taken, err := nameTaken(ctx, tx, k, name, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}

		if k.hasRequired {
			_, err = tx.ExecContext(ctx,
				fmt.Sprintf(`UPDATE %s SET name = ?, description = ?, display_order = ?, required = ?, active = ? WHERE id = ?`, k.table), //nolint:gosec
				name, description, displayOrder, required, active, id)
		} else {
			_, err = tx.ExecContext(ctx,
				fmt.Sprintf(`UPDATE %s SET name = ?, description = ?, display_order = ?, active = ? WHERE id = ?`, k.table), //nolint:gosec
				name, description, displayOrder, active, id)
		}
		if err != nil {
			return fmt.Errorf("failed to update category: %w", err)
		}

		updated, err = getCategory(ctx, tx, k, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) deleteCategory(ctx context.Context, k kind, id int64) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := getCategory(ctx, tx, k, id); err != nil {
			return err
		}

		var assigned int
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE category_id = ?`, k.joinTable) //nolint:gosec
		if err := tx.QueryRowContext(ctx, query, id).Scan(&assigned); err != nil {
			return fmt.Errorf("failed to count assignments: %w", err)
		}
		if assigned > 0 {
			return ErrCategoryInUse
		}

		_, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, k.table), id) //nolint:gosec
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return nil
	})
}

func (s *Store) assignItem(ctx context.Context, k kind, categoryID, itemID int64) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := getCategory(ctx, tx, k, categoryID); err != nil {
			return err
		}

		var itemCount int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM menu_items WHERE id = ?`, itemID).Scan(&itemCount); err != nil {
			return fmt.Errorf("failed to check item: %w", err)
		}
		if itemCount == 0 {
			return ErrItemNotFound
		}

		var existing int
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE item_id = ? AND category_id = ?`, k.joinTable) //nolint:gosec
		if err := tx.QueryRowContext(ctx, query, itemID, categoryID).Scan(&existing); err != nil {
			return fmt.Errorf("failed to check assignment: %w", err)
		}
		if existing > 0 {
			return ErrAlreadyAssigned
		}

		_, err := tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s (item_id, category_id) VALUES (?, ?)`, k.joinTable), //nolint:gosec
			itemID, categoryID)
		if err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}
		return nil
	})
}

func (s *Store) unassignItem(ctx context.Context, k kind, categoryID, itemID int64) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := getCategory(ctx, tx, k, categoryID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE item_id = ? AND category_id = ?`, k.joinTable), //nolint:gosec
			itemID, categoryID)
		if err != nil {
			return fmt.Errorf("failed to remove assignment: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check removal: %w", err)
		}
		if affected == 0 {
			return ErrNotAssigned
		}
		return nil
	})
}

func (s *Store) listCategories(ctx context.Context, k kind) ([]categoryRow, error) {
	cols := "id, name, description, display_order, active"
	if k.hasRequired {
		cols = "id, name, description, display_order, required, active"
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY display_order, name`, cols, k.table) //nolint:gosec

	rows, err := s.db.Conn().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []categoryRow
	for rows.Next() {
		var row categoryRow
		if k.hasRequired {
			err = rows.Scan(&row.ID, &row.Name, &row.Description, &row.DisplayOrder, &row.Required, &row.Active)
		} else {
			err = rows.Scan(&row.ID, &row.Name, &row.Description, &row.DisplayOrder, &row.Active)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
