// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

// Package models defines the domain types shared across Menucast packages.
//
// Ownership rules:
//   - The sync engine exclusively owns MenuCategory, MenuItem (except the
//     sold-out flag), item-category memberships, and variations. These are
//     rebuilt from the external catalog on every sync.
//   - Admin operations exclusively own the sold-out flag, DisplayCategory,
//     ComboCategory, and all overlay assignments. Sync never touches them.
package models

import (
	"time"

	"github.com/goccy/go-json"
)

// MenuCategory is a category sourced from the external catalog.
// The full category set is replaced on every sync.
type MenuCategory struct {
	ID           int64  `json:"id"`
	ExternalID   string `json:"externalId"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"displayOrder"`
	Active       bool   `json:"active"`
}

// MenuItem is an item sourced from the external catalog, augmented with
// locally-owned operational state.
//
// ExternalID is the reconciliation key across syncs. SoldOut is locally
// owned and is never supplied by the source; it must survive every sync
// for items that remain in the catalog. RawPayload retains the source
// item verbatim for fields not modeled relationally (nested pricing
// and modifier data).
type MenuItem struct {
	ID           int64           `json:"id"`
	ExternalID   string          `json:"externalId"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	DisplayOrder int             `json:"displayOrder"`
	Active       bool            `json:"active"`
	SoldOut      bool            `json:"soldOut"`
	RawPayload   json.RawMessage `json:"-"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// MenuItemVariation is a named attribute extracted from a source item's
// nested custom-attribute structure (e.g. a combo-type choice marker).
// Rebuilt from source data on every sync.
type MenuItemVariation struct {
	ItemID     int64  `json:"itemId"`
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	Value      string `json:"value"`
}

// SyncState is the lifecycle state of the current sync attempt.
type SyncState string

const (
	SyncStatePending    SyncState = "pending"
	SyncStateInProgress SyncState = "in_progress"
	SyncStateSuccess    SyncState = "success"
	SyncStateError      SyncState = "error"
)

// SyncStatus is the single current-state record describing sync health.
// Exactly one logical row exists; it is overwritten in place on every
// update. No history is retained.
type SyncStatus struct {
	LastSyncAttempt    *time.Time `json:"lastSyncAttempt"`
	LastSuccessfulSync *time.Time `json:"lastSuccessfulSync"`
	Status             SyncState  `json:"status"`
	LastError          string     `json:"lastError,omitempty"`
	ItemsCount         int        `json:"itemsCount"`
	CategoriesCount    int        `json:"categoriesCount"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// SyncStatusUpdate is a partial update applied to the status row.
// Nil fields are left unchanged.
type SyncStatusUpdate struct {
	LastSyncAttempt    *time.Time
	LastSuccessfulSync *time.Time
	Status             *SyncState
	LastError          *string
	ItemsCount         *int
	CategoriesCount    *int
}
