// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

// Package notify delivers user-facing notifications. Every notification
// is persisted; delivery to an external webhook is best-effort on top.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/toweratlas/toweratlas/internal/logging"
	"github.com/toweratlas/toweratlas/internal/metrics"
	"github.com/toweratlas/toweratlas/internal/models"
)

// Store is the persistence slice the service needs.
type Store interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	HasRecentNotification(ctx context.Context, category models.NotificationCategory, referenceID string, since time.Time) (bool, error)
}

// Sink forwards a notification to an external system.
type Sink interface {
	Deliver(ctx context.Context, n *models.Notification) error
}

// Service persists and fans out notifications. A rate limiter bounds
// fan-out so a large sweep cannot flood the sink.
type Service struct {
	store       Store
	sink        Sink
	limiter     *rate.Limiter
	dedupWindow time.Duration
	now         func() time.Time
}

// New creates a Service. sink may be nil when no webhook is configured.
func New(store Store, sink Sink, ratePerSecond float64, burst int, dedupWindow time.Duration) *Service {
	if ratePerSecond <= 0 {
		ratePerSecond = 10
	}
	if burst <= 0 {
		burst = 1
	}
	return &Service{
		store:       store,
		sink:        sink,
		limiter:     rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		dedupWindow: dedupWindow,
		now:         time.Now,
	}
}

// Send persists a notification and forwards it to the sink. A sink
// failure is logged, not returned; the stored row is the source of
// truth and external delivery is best-effort.
func (s *Service) Send(ctx context.Context, n *models.Notification) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}

	if err := s.store.CreateNotification(ctx, n); err != nil {
		return err
	}
	metrics.RecordNotification(string(n.Category))

	if s.sink != nil {
		if err := s.sink.Deliver(ctx, n); err != nil {
			logging.Warn().
				Err(err).
				Str("category", string(n.Category)).
				Str("notification_id", n.ID).
				Msg("Webhook delivery failed")
		}
	}
	return nil
}

// SendDeduped sends unless a notification with the same category and
// reference was already created inside the dedup window. Returns true
// when a notification was actually sent.
//
// The existence check and the insert are not atomic, so two concurrent
// passes can both send. Duplicate suppression here is best-effort; the
// scheduled jobs that use it run on a single instance.
func (s *Service) SendDeduped(ctx context.Context, n *models.Notification) (bool, error) {
	if n.ReferenceID != "" && s.dedupWindow > 0 {
		seen, err := s.store.HasRecentNotification(ctx, n.Category, n.ReferenceID, s.now().Add(-s.dedupWindow))
		if err != nil {
			return false, err
		}
		if seen {
			return false, nil
		}
	}
	if err := s.Send(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}
