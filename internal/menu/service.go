// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package menu

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/tablewise/menucast/internal/logging"
	"github.com/tablewise/menucast/internal/metrics"
	"github.com/tablewise/menucast/internal/models"
)

// StatusProvider reports the current sync status. Implemented by the
// sync package's status tracker.
type StatusProvider interface {
	GetSyncStatus(ctx context.Context) (*models.SyncStatus, error)
}

// Service serves menu read models. The public menu is cached in
// process, keyed on the last successful sync timestamp: the snapshot
// only changes when a sync commits, so a key match means the cached
// copy is still exact. The admin menu always bypasses the cache.
type Service struct {
	builder *Builder
	status  StatusProvider

	mu        sync.Mutex
	cached    models.PublicMenu
	cachedKey string
	etag      string
	localGen  uint64 // bumped on local writes so the ETag changes without a sync
}

// NewService creates a menu service.
func NewService(builder *Builder, status StatusProvider) *Service {
	return &Service{
		builder: builder,
		status:  status,
	}
}

// PublicMenu returns the guest-facing menu and its ETag. The ETag is
// derived from the last successful sync timestamp plus a local write
// generation, so clients can revalidate with If-None-Match.
func (s *Service) PublicMenu(ctx context.Context) (models.PublicMenu, string, error) {
	syncKey, err := s.syncCacheKey(ctx)
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf("%s/%d", syncKey, s.localGen)
	if s.cached != nil && s.cachedKey == key {
		metrics.RecordCacheHit("public_menu")
		return s.cached, s.etag, nil
	}

	metrics.RecordCacheMiss("public_menu")

	menu, err := s.builder.BuildPublicMenu(ctx)
	if err != nil {
		return nil, "", err
	}

	s.cached = menu
	s.cachedKey = key
	s.etag = generateETag([]byte(key))

	logging.Debug().Str("key", key).Msg("Public menu cache rebuilt")
	return menu, s.etag, nil
}

// AdminMenu returns the operator view, always built fresh.
func (s *Service) AdminMenu(ctx context.Context) (models.AdminMenu, error) {
	return s.builder.BuildAdminMenu(ctx)
}

// Invalidate drops the cached public menu. Called after local writes
// (sold-out toggles) that change the public view without a sync. The
// generation bump makes the next ETag differ so clients revalidate.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
	s.cachedKey = ""
	s.etag = ""
	s.localGen++
}

// syncCacheKey derives the sync half of the cache key.
func (s *Service) syncCacheKey(ctx context.Context) (string, error) {
	status, err := s.status.GetSyncStatus(ctx)
	if err != nil {
		return "", err
	}
	if status.LastSuccessfulSync == nil {
		return "never-synced", nil
	}
	return status.LastSuccessfulSync.UTC().Format(time.RFC3339Nano), nil
}

// generateETag computes a strong ETag as an FNV-1a hash of the input.
func generateETag(data []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(data) // fnv Write never returns an error
	return fmt.Sprintf(`"%x"`, h.Sum64())
}
