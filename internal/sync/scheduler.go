// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package sync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tablewise/menucast/internal/config"
	"github.com/tablewise/menucast/internal/logging"
)

// ErrSyncInProgress is returned when a sync is requested while another
// run (scheduled or manual) already holds the sync slot.
var ErrSyncInProgress = errors.New("sync already in progress")

// Manager runs the periodic sync schedule and serves manual triggers.
//
// Scheduled ticks and manual triggers share one mutex, so at most one
// sync runs at a time process-wide. A tick that finds the slot busy is
// skipped, not queued.
type Manager struct {
	engine *Engine
	cfg    *config.SyncConfig

	mu       sync.RWMutex // protects running, stopChan
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	syncMu     sync.Mutex  // single-flight slot shared by schedule and manual triggers
	syncActive atomic.Bool // true while the slot is held by a run
}

// SchedulerStatus describes the scheduler for the admin API. Running is
// the schedule toggle; SyncRunning reports whether a sync (scheduled or
// manual) is in flight right now.
type SchedulerStatus struct {
	Running     bool          `json:"running"`
	SyncRunning bool          `json:"syncRunning"`
	Interval    time.Duration `json:"interval"`
}

// NewManager creates a sync manager. The schedule does not start until
// Start is called.
func NewManager(engine *Engine, cfg *config.SyncConfig) *Manager {
	return &Manager{
		engine: engine,
		cfg:    cfg,
	}
}

// interval returns the effective schedule interval, clamped to the
// configured floor. Config loading clamps too; clamping again here
// keeps the floor intact for callers that build configs by hand.
func (m *Manager) interval() time.Duration {
	if m.cfg.Interval < config.MinSyncInterval {
		return config.MinSyncInterval
	}
	return m.cfg.Interval
}

// Start begins the periodic schedule. Starting an already running
// scheduler is a no-op.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		logging.Debug().Msg("Sync scheduler already running")
		return
	}

	m.running = true
	m.stopChan = make(chan struct{})
	m.wg.Add(1)
	go m.runLoop(m.stopChan)

	logging.Info().
		Dur("interval", m.interval()).
		Dur("warmup", m.cfg.WarmupDelay).
		Msg("Sync scheduler started")
}

// Stop halts the periodic schedule and waits for an in-flight run to
// finish. Stopping an already stopped scheduler is a no-op.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopChan)
	m.mu.Unlock()

	m.wg.Wait()
	logging.Info().Msg("Sync scheduler stopped")
}

// Status reports whether the schedule is running and at what interval.
func (m *Manager) Status() SchedulerStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return SchedulerStatus{
		Running:     m.running,
		SyncRunning: m.syncActive.Load(),
		Interval:    m.interval(),
	}
}

// TriggerSync runs one sync immediately. Returns ErrSyncInProgress
// without waiting if another run holds the slot.
func (m *Manager) TriggerSync(ctx context.Context) (*Result, error) {
	if !m.syncMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer m.syncMu.Unlock()

	m.syncActive.Store(true)
	defer m.syncActive.Store(false)

	return m.engine.SyncMenuData(ctx)
}

// runLoop waits out the warmup delay, runs an initial sync, then syncs
// on every tick until stopped.
func (m *Manager) runLoop(stopChan chan struct{}) {
	defer m.wg.Done()

	if m.cfg.WarmupDelay > 0 {
		select {
		case <-time.After(m.cfg.WarmupDelay):
		case <-stopChan:
			return
		}
	}

	m.runScheduled()

	ticker := time.NewTicker(m.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.runScheduled()
		case <-stopChan:
			return
		}
	}
}

// runScheduled performs one scheduled sync, skipping the tick if a
// manual trigger holds the slot.
func (m *Manager) runScheduled() {
	if !m.syncMu.TryLock() {
		logging.Debug().Msg("Skipping scheduled sync, another sync in progress")
		return
	}
	defer m.syncMu.Unlock()

	m.syncActive.Store(true)
	defer m.syncActive.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := m.engine.SyncMenuData(ctx); err != nil {
		logging.Warn().Err(err).Msg("Scheduled sync failed (will retry next tick)")
	}
}

// Serve runs the scheduler as a supervised service. It starts the
// schedule (when enabled), blocks until the context is canceled, then
// stops cleanly.
func (m *Manager) Serve(ctx context.Context) error {
	if m.cfg.Enabled {
		m.Start()
		defer m.Stop()
	} else {
		logging.Info().Msg("Periodic sync disabled, manual triggers only")
	}

	<-ctx.Done()
	return ctx.Err()
}

// String identifies the service in supervisor logs.
func (m *Manager) String() string {
	return "sync-scheduler"
}
