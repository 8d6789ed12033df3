// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package api

import (
	"github.com/tablewise/menucast/internal/config"
	"github.com/tablewise/menucast/internal/database"
	"github.com/tablewise/menucast/internal/menu"
	"github.com/tablewise/menucast/internal/overlay"
	"github.com/tablewise/menucast/internal/sync"
)

// Handlers holds all HTTP request handlers and their dependencies.
type Handlers struct {
	db       *database.DB
	menuSvc  *menu.Service
	items    *menu.ItemStore
	overlays *overlay.Store
	syncMgr  *sync.Manager
	status   *sync.StatusTracker
	cacheCfg *config.CacheConfig
}

// NewHandlers creates the handler set from its dependencies.
func NewHandlers(
	db *database.DB,
	menuSvc *menu.Service,
	items *menu.ItemStore,
	overlays *overlay.Store,
	syncMgr *sync.Manager,
	status *sync.StatusTracker,
	cacheCfg *config.CacheConfig,
) *Handlers {
	return &Handlers{
		db:       db,
		menuSvc:  menuSvc,
		items:    items,
		overlays: overlays,
		syncMgr:  syncMgr,
		status:   status,
		cacheCfg: cacheCfg,
	}
}
