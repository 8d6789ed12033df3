// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package overlay

import (
	"context"

	"github.com/tablewise/menucast/internal/models"
)

func toComboCategory(row *categoryRow) *models.ComboCategory {
	return &models.ComboCategory{
		ID:           row.ID,
		Name:         row.Name,
		Description:  row.Description,
		DisplayOrder: row.DisplayOrder,
		Required:     row.Required,
		Active:       row.Active,
	}
}

// ListComboCategories returns all combo categories ordered for
// presentation.
func (s *Store) ListComboCategories(ctx context.Context) ([]models.ComboCategory, error) {
	rows, err := s.listCategories(ctx, comboKind)
	if err != nil {
		return nil, err
	}
	out := make([]models.ComboCategory, len(rows))
	for i := range rows {
		out[i] = *toComboCategory(&rows[i])
	}
	return out, nil
}

// CreateComboCategory creates a combo category. Returns
// ErrDuplicateName when the name is taken.
func (s *Store) CreateComboCategory(ctx context.Context, req *models.ComboCategoryRequest) (*models.ComboCategory, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	required := false
	if req.Required != nil {
		required = *req.Required
	}
	row, err := s.createCategory(ctx, comboKind, req.Name, req.Description, req.DisplayOrder, required, active)
	if err != nil {
		return nil, err
	}
	return toComboCategory(row), nil
}

// UpdateComboCategory replaces the mutable fields of a combo category.
func (s *Store) UpdateComboCategory(ctx context.Context, id int64, req *models.ComboCategoryRequest) (*models.ComboCategory, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	required := false
	if req.Required != nil {
		required = *req.Required
	}
	row, err := s.updateCategory(ctx, comboKind, id, req.Name, req.Description, req.DisplayOrder, required, active)
	if err != nil {
		return nil, err
	}
	return toComboCategory(row), nil
}

// DeleteComboCategory removes an empty combo category. Returns
// ErrCategoryInUse while items remain assigned.
func (s *Store) DeleteComboCategory(ctx context.Context, id int64) error {
	return s.deleteCategory(ctx, comboKind, id)
}

// AssignItemToComboCategory adds an item to a combo category.
func (s *Store) AssignItemToComboCategory(ctx context.Context, categoryID, itemID int64) error {
	return s.assignItem(ctx, comboKind, categoryID, itemID)
}

// UnassignItemFromComboCategory removes an item from a combo category.
func (s *Store) UnassignItemFromComboCategory(ctx context.Context, categoryID, itemID int64) error {
	return s.unassignItem(ctx, comboKind, categoryID, itemID)
}
