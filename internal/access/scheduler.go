// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package access

import (
	"context"
	"sync"
	"time"

	"github.com/toweratlas/toweratlas/internal/config"
	"github.com/toweratlas/toweratlas/internal/logging"
)

// Scheduler runs the periodic grant jobs: the expiry sweep and the
// expiry-warning pass. Both jobs are idempotent, so a missed or doubled
// tick has no lasting effect.
type Scheduler struct {
	service *Service
	cfg     config.AccessConfig

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler creates a scheduler for the access service.
func NewScheduler(service *Service, cfg config.AccessConfig) *Scheduler {
	return &Scheduler{
		service: service,
		cfg:     cfg,
	}
}

// Start launches the background tickers. Returns immediately; Stop
// shuts them down.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(ctx)

	logging.Info().
		Dur("sweep_interval", s.cfg.SweepInterval).
		Dur("warn_interval", s.cfg.ExpiryWarnInterval).
		Msg("Access scheduler started")
}

// Stop halts the tickers and waits for in-flight passes to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done
	logging.Info().Msg("Access scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	sweep := time.NewTicker(s.cfg.SweepInterval)
	defer sweep.Stop()
	warn := time.NewTicker(s.cfg.ExpiryWarnInterval)
	defer warn.Stop()

	// One sweep at startup catches grants that expired while the
	// service was down.
	s.runSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweep.C:
			s.runSweep(ctx)
		case <-warn.C:
			s.runWarn(ctx)
		}
	}
}

func (s *Scheduler) runSweep(ctx context.Context) {
	if _, err := s.service.Sweep(ctx); err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Msg("Grant sweep failed")
	}
}

func (s *Scheduler) runWarn(ctx context.Context) {
	sent, err := s.service.WarnExpiring(ctx)
	if err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Msg("Expiry warning pass failed")
		return
	}
	if sent > 0 {
		logging.Info().Int("sent", sent).Msg("Expiry warnings sent")
	}
}
