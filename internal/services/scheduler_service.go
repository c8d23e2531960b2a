// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package services

import (
	"context"

	"github.com/toweratlas/toweratlas/internal/access"
)

// SchedulerService runs the access scheduler under the supervision
// tree.
type SchedulerService struct {
	scheduler *access.Scheduler
}

// NewSchedulerService wraps the scheduler.
func NewSchedulerService(scheduler *access.Scheduler) *SchedulerService {
	return &SchedulerService{scheduler: scheduler}
}

// Serve starts the scheduler and blocks until the context is canceled.
func (s *SchedulerService) Serve(ctx context.Context) error {
	s.scheduler.Start()
	<-ctx.Done()
	s.scheduler.Stop()
	return ctx.Err()
}

func (s *SchedulerService) String() string {
	return "access-scheduler"
}
