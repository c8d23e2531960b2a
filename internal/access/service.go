// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

// Package access implements the temporary access grant lifecycle:
// creation, revocation, the expiry sweep that reconciles materialized
// assignments, and expiry warnings.
package access

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/toweratlas/toweratlas/internal/audit"
	"github.com/toweratlas/toweratlas/internal/config"
	"github.com/toweratlas/toweratlas/internal/database"
	"github.com/toweratlas/toweratlas/internal/errs"
	"github.com/toweratlas/toweratlas/internal/logging"
	"github.com/toweratlas/toweratlas/internal/metrics"
	"github.com/toweratlas/toweratlas/internal/models"
	"github.com/toweratlas/toweratlas/internal/notify"
)

// Service owns grant lifecycle operations.
type Service struct {
	db       *database.DB
	notifier *notify.Service
	recorder *audit.Recorder
	cfg      config.AccessConfig
	now      func() time.Time
}

// NewService creates the access service. recorder may be nil when
// auditing is disabled.
func NewService(db *database.DB, notifier *notify.Service, recorder *audit.Recorder, cfg config.AccessConfig) *Service {
	return &Service{
		db:       db,
		notifier: notifier,
		recorder: recorder,
		cfg:      cfg,
		now:      time.Now,
	}
}

// GrantRequest carries the validated inputs for a new grant.
type GrantRequest struct {
	UserID      int64
	RegionID    int64
	RegionName  string
	AccessLevel models.AccessLevel
	Reason      string
	ExpiresAt   time.Time
}

// Grant creates a temporary access grant. The region may be addressed
// by ID or by name. Returns Conflict when the user already holds an
// active grant for the region.
func (s *Service) Grant(ctx context.Context, req GrantRequest, by models.Identity) (*models.TemporaryAccessGrant, error) {
	now := s.now().UTC()

	if !req.ExpiresAt.After(now) {
		return nil, errs.New(errs.KindInvalidArgument, "expires_at must be in the future")
	}
	level := req.AccessLevel
	if level == "" {
		level = models.AccessView
	}
	if !level.Valid() {
		return nil, errs.New(errs.KindInvalidArgument, "invalid access level")
	}

	user, err := s.db.GetUser(ctx, req.UserID)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.New(errs.KindNotFound, "user not found")
		}
		return nil, err
	}

	region, err := s.resolveRegion(ctx, req.RegionID, req.RegionName)
	if err != nil {
		return nil, err
	}

	g := &models.TemporaryAccessGrant{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		RegionID:    region.ID,
		RegionName:  region.Name,
		AccessLevel: level,
		Reason:      req.Reason,
		GrantedBy:   by.UserID,
		GrantedAt:   now,
		ExpiresAt:   req.ExpiresAt.UTC(),
	}
	if err := s.db.CreateGrant(ctx, g); err != nil {
		return nil, err
	}

	s.record(&audit.Event{
		Category: audit.CategoryAccess,
		Action:   audit.ActionGrantCreated,
		Actor:    audit.Actor{UserID: by.UserID, Username: by.Username, Role: string(by.Role)},
		Target:   audit.Target{Type: "grant", ID: g.ID, Name: region.Name},
		Source:   audit.SourceFromContext(ctx),
		After:    g,
		Details: map[string]interface{}{
			"user_id":      g.UserID,
			"region_id":    g.RegionID,
			"access_level": string(g.AccessLevel),
			"expires_at":   g.ExpiresAt.Format(time.RFC3339),
		},
	})

	s.notifyBestEffort(ctx, &models.Notification{
		UserID:      g.UserID,
		Category:    models.NotificationGrantCreated,
		Title:       "Temporary access granted",
		Body:        fmt.Sprintf("You have been granted %s access to %s until %s.", g.AccessLevel, region.Name, g.ExpiresAt.Format(time.RFC3339)),
		ReferenceID: g.ID,
	})

	logging.Info().
		Str("grant_id", g.ID).
		Int64("user_id", g.UserID).
		Int64("region_id", g.RegionID).
		Time("expires_at", g.ExpiresAt).
		Msg("Temporary access granted")

	return g, nil
}

// Revoke marks a grant revoked and removes its materialized assignment.
// Revoking an already-revoked grant is a no-op.
func (s *Service) Revoke(ctx context.Context, grantID string, by models.Identity) (*models.TemporaryAccessGrant, error) {
	g, err := s.db.RevokeGrant(ctx, grantID, s.now())
	if err != nil {
		return nil, err
	}

	s.record(&audit.Event{
		Category: audit.CategoryAccess,
		Action:   audit.ActionGrantRevoked,
		Severity: audit.SeverityWarning,
		Actor:    audit.Actor{UserID: by.UserID, Username: by.Username, Role: string(by.Role)},
		Target:   audit.Target{Type: "grant", ID: g.ID, Name: g.RegionName},
		Source:   audit.SourceFromContext(ctx),
		After:    g,
		Details: map[string]interface{}{
			"user_id":   g.UserID,
			"region_id": g.RegionID,
		},
	})

	s.notifyBestEffort(ctx, &models.Notification{
		UserID:      g.UserID,
		Category:    models.NotificationGrantRevoked,
		Title:       "Temporary access revoked",
		Body:        fmt.Sprintf("Your temporary access to %s has been revoked.", g.RegionName),
		ReferenceID: g.ID,
	})

	logging.Info().
		Str("grant_id", g.ID).
		Int64("revoked_by", by.UserID).
		Msg("Temporary access revoked")

	return g, nil
}

// Sweep reconciles materialized assignments with grant liveness,
// removing rows no active grant backs. Safe to run repeatedly.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	removed, err := s.db.SweepExpiredGrants(ctx, s.now())
	if err != nil {
		return 0, err
	}
	metrics.RecordSweep(removed)

	if removed > 0 {
		s.record(&audit.Event{
			Category: audit.CategoryAccess,
			Action:   audit.ActionGrantSwept,
			Actor:    audit.Actor{UserID: 0, Username: "system"},
			Target:   audit.Target{Type: "assignments", ID: "sweep"},
			Details:  map[string]interface{}{"removed": removed},
		})
		logging.Info().
			Int("removed", removed).
			Msg("Expired grant assignments swept")
	}
	return removed, nil
}

// WarnExpiring notifies holders of grants expiring around the 24-hour
// mark. The window straddles the mark so an hourly cadence cannot skip
// a grant; repeat warnings for the same grant are deduplicated.
func (s *Service) WarnExpiring(ctx context.Context) (int, error) {
	now := s.now().UTC()
	grants, err := s.db.GrantsExpiringBetween(ctx, now.Add(s.cfg.ExpiryWarnAfter), now.Add(s.cfg.ExpiryWarnBefore))
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range grants {
		g := &grants[i]
		ok, err := s.notifier.SendDeduped(ctx, &models.Notification{
			UserID:      g.UserID,
			Category:    models.NotificationGrantExpiring,
			Title:       "Temporary access expiring soon",
			Body:        fmt.Sprintf("Your access to %s expires at %s.", g.RegionName, g.ExpiresAt.Format(time.RFC3339)),
			ReferenceID: g.ID,
		})
		if err != nil {
			logging.Error().
				Err(err).
				Str("grant_id", g.ID).
				Msg("Failed to send expiry warning")
			continue
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

// AccessSummary is what a user sees on the my-access surface.
type AccessSummary struct {
	PermanentRegions []models.Region       `json:"permanent_regions"`
	ActiveGrants     []models.GrantSummary `json:"active_grants"`
}

// MyAccess reports the caller's current regions and live grants.
// Remaining time is computed against the current instant.
func (s *Service) MyAccess(ctx context.Context, ident models.Identity) (*AccessSummary, error) {
	now := s.now().UTC()

	regions, err := s.db.PermanentRegionsForUser(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	grants, err := s.db.ActiveGrantsForUser(ctx, ident.UserID, now)
	if err != nil {
		return nil, err
	}

	summary := &AccessSummary{
		PermanentRegions: regions,
		ActiveGrants:     make([]models.GrantSummary, 0, len(grants)),
	}
	for i := range grants {
		g := &grants[i]
		summary.ActiveGrants = append(summary.ActiveGrants, models.GrantSummary{
			ID:               g.ID,
			RegionID:         g.RegionID,
			RegionName:       g.RegionName,
			AccessLevel:      g.AccessLevel,
			Reason:           g.Reason,
			ExpiresAt:        g.ExpiresAt,
			SecondsRemaining: g.SecondsRemaining(now),
			Expired:          !g.ActiveAt(now),
		})
	}
	return summary, nil
}

func (s *Service) resolveRegion(ctx context.Context, id int64, name string) (*models.Region, error) {
	var (
		region *models.Region
		err    error
	)
	switch {
	case id > 0:
		region, err = s.db.GetRegion(ctx, id)
	case name != "":
		region, err = s.db.GetRegionByName(ctx, name)
	default:
		return nil, errs.New(errs.KindInvalidArgument, "region_id or region_name is required")
	}
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.New(errs.KindNotFound, "region not found")
		}
		return nil, err
	}
	return region, nil
}

func (s *Service) record(e *audit.Event) {
	if s.recorder != nil {
		s.recorder.Record(e)
	}
}

func (s *Service) notifyBestEffort(ctx context.Context, n *models.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, n); err != nil {
		logging.Warn().
			Err(err).
			Str("category", string(n.Category)).
			Msg("Failed to send notification")
	}
}
