// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package overlay

import (
	"context"

	"github.com/tablewise/menucast/internal/models"
)

func toDisplayCategory(row *categoryRow) *models.DisplayCategory {
	return &models.DisplayCategory{
		ID:           row.ID,
		Name:         row.Name,
		Description:  row.Description,
		DisplayOrder: row.DisplayOrder,
		Active:       row.Active,
	}
}

// ListDisplayCategories returns all display categories ordered for
// presentation.
func (s *Store) ListDisplayCategories(ctx context.Context) ([]models.DisplayCategory, error) {
	rows, err := s.listCategories(ctx, displayKind)
	if err != nil {
		return nil, err
	}
	out := make([]models.DisplayCategory, len(rows))
	for i := range rows {
		out[i] = *toDisplayCategory(&rows[i])
	}
	return out, nil
}

// CreateDisplayCategory creates a display category. Returns
// ErrDuplicateName when the name is taken.
func (s *Store) CreateDisplayCategory(ctx context.Context, req *models.DisplayCategoryRequest) (*models.DisplayCategory, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	row, err := s.createCategory(ctx, displayKind, req.Name, req.Description, req.DisplayOrder, false, active)
	if err != nil {
		return nil, err
	}
	return toDisplayCategory(row), nil
}

// UpdateDisplayCategory replaces the mutable fields of a display
// category. Returns ErrNotFound or ErrDuplicateName.
func (s *Store) UpdateDisplayCategory(ctx context.Context, id int64, req *models.DisplayCategoryRequest) (*models.DisplayCategory, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	row, err := s.updateCategory(ctx, displayKind, id, req.Name, req.Description, req.DisplayOrder, false, active)
	if err != nil {
		return nil, err
	}
	return toDisplayCategory(row), nil
}

// DeleteDisplayCategory removes an empty display category. Returns
// ErrCategoryInUse while items remain assigned.
func (s *Store) DeleteDisplayCategory(ctx context.Context, id int64) error {
	return s.deleteCategory(ctx, displayKind, id)
}

// AssignItemToDisplayCategory adds an item to a display category.
// Returns ErrAlreadyAssigned on duplicates.
func (s *Store) AssignItemToDisplayCategory(ctx context.Context, categoryID, itemID int64) error {
	return s.assignItem(ctx, displayKind, categoryID, itemID)
}

// UnassignItemFromDisplayCategory removes an item from a display
// category. Returns ErrNotAssigned when the assignment does not exist.
func (s *Store) UnassignItemFromDisplayCategory(ctx context.Context, categoryID, itemID int64) error {
	return s.unassignItem(ctx, displayKind, categoryID, itemID)
}
