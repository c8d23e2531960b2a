// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package access

import (
	"context"
	"testing"
	"time"

	"github.com/toweratlas/toweratlas/internal/config"
	"github.com/toweratlas/toweratlas/internal/database"
	"github.com/toweratlas/toweratlas/internal/errs"
	"github.com/toweratlas/toweratlas/internal/models"
	"github.com/toweratlas/toweratlas/internal/notify"
)

var admin = models.Identity{UserID: 1, Username: "admin", Role: models.RoleAdmin}

func setupService(t *testing.T) (*Service, *database.DB) {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		QueryTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.AccessConfig{
		SweepInterval:      5 * time.Minute,
		ExpiryWarnInterval: time.Hour,
		ExpiryWarnAfter:    23 * time.Hour,
		ExpiryWarnBefore:   25 * time.Hour,
		NotifyDedupWindow:  48 * time.Hour,
	}
	notifier := notify.New(db, nil, 1000, 100, cfg.NotifyDedupWindow)
	svc := NewService(db, notifier, nil, cfg)

	ctx := context.Background()
	for _, u := range []*models.User{
		{ID: 1, Username: "admin", Role: models.RoleAdmin, Active: true, CreatedAt: time.Now()},
		{ID: 7, Username: "surveyor", Role: models.RoleUser, Active: true, CreatedAt: time.Now()},
	} {
		if err := db.UpsertUser(ctx, u); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}
	if _, err := db.CreateRegion(ctx, &models.Region{
		Name:   "Bengaluru Urban",
		State:  "Karnataka",
		Bounds: models.BoundingBox{South: 12.7, North: 13.2, West: 77.3, East: 77.9},
		Active: true,
	}); err != nil {
		t.Fatalf("failed to seed region: %v", err)
	}
	return svc, db
}

func TestGrantByRegionName(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	g, err := svc.Grant(ctx, GrantRequest{
		UserID:     7,
		RegionName: "Bengaluru Urban",
		Reason:     "field survey",
		ExpiresAt:  time.Now().Add(48 * time.Hour),
	}, admin)
	if err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if g.AccessLevel != models.AccessView {
		t.Errorf("access level defaulted to %s, want view", g.AccessLevel)
	}
	if g.RegionName != "Bengaluru Urban" {
		t.Errorf("RegionName = %q", g.RegionName)
	}

	// A grant-created notification was persisted for the holder.
	notifications, err := db.NotificationsForUser(ctx, 7, 10)
	if err != nil {
		t.Fatalf("NotificationsForUser failed: %v", err)
	}
	if len(notifications) != 1 || notifications[0].Category != models.NotificationGrantCreated {
		t.Errorf("unexpected notifications: %+v", notifications)
	}
}

func TestGrantValidation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	future := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name string
		req  GrantRequest
		want func(error) bool
	}{
		{
			name: "past expiry",
			req:  GrantRequest{UserID: 7, RegionName: "Bengaluru Urban", ExpiresAt: time.Now().Add(-time.Hour)},
			want: errs.IsInvalidArgument,
		},
		{
			name: "unknown user",
			req:  GrantRequest{UserID: 999, RegionName: "Bengaluru Urban", ExpiresAt: future},
			want: errs.IsNotFound,
		},
		{
			name: "unknown region",
			req:  GrantRequest{UserID: 7, RegionName: "Atlantis", ExpiresAt: future},
			want: errs.IsNotFound,
		},
		{
			name: "missing region",
			req:  GrantRequest{UserID: 7, ExpiresAt: future},
			want: errs.IsInvalidArgument,
		},
		{
			name: "bad access level",
			req:  GrantRequest{UserID: 7, RegionName: "Bengaluru Urban", AccessLevel: "root", ExpiresAt: future},
			want: errs.IsInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Grant(ctx, tt.req, admin)
			if err == nil || !tt.want(err) {
				t.Errorf("Grant() error = %v", err)
			}
		})
	}
}

func TestGrantConflict(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	req := GrantRequest{
		UserID:     7,
		RegionName: "Bengaluru Urban",
		Reason:     "survey",
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}
	if _, err := svc.Grant(ctx, req, admin); err != nil {
		t.Fatalf("first Grant failed: %v", err)
	}
	_, err := svc.Grant(ctx, req, admin)
	if !errs.IsConflict(err) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestRevokeAndMyAccess(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	holder := models.Identity{UserID: 7, Username: "surveyor", Role: models.RoleUser}

	g, err := svc.Grant(ctx, GrantRequest{
		UserID:     7,
		RegionName: "Bengaluru Urban",
		Reason:     "survey",
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}, admin)
	if err != nil {
		t.Fatalf("Grant failed: %v", err)
	}

	summary, err := svc.MyAccess(ctx, holder)
	if err != nil {
		t.Fatalf("MyAccess failed: %v", err)
	}
	if len(summary.ActiveGrants) != 1 {
		t.Fatalf("expected 1 active grant, got %d", len(summary.ActiveGrants))
	}
	ag := summary.ActiveGrants[0]
	if ag.Expired || ag.SecondsRemaining <= 0 {
		t.Errorf("grant should be live: %+v", ag)
	}

	if _, err := svc.Revoke(ctx, g.ID, admin); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	summary, err = svc.MyAccess(ctx, holder)
	if err != nil {
		t.Fatalf("MyAccess after revoke failed: %v", err)
	}
	if len(summary.ActiveGrants) != 0 {
		t.Errorf("expected no active grants after revoke, got %+v", summary.ActiveGrants)
	}

	if _, err := svc.Revoke(ctx, "00000000-0000-0000-0000-000000000000", admin); !errs.IsNotFound(err) {
		t.Errorf("expected NotFound for unknown grant, got %v", err)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	region, err := db.GetRegionByName(ctx, "Bengaluru Urban")
	if err != nil {
		t.Fatalf("GetRegionByName failed: %v", err)
	}

	// Insert an already-expired grant directly; Grant() rejects past
	// expiries.
	past := time.Now().UTC().Add(-48 * time.Hour)
	expired := &models.TemporaryAccessGrant{
		ID:          "11111111-1111-1111-1111-111111111111",
		UserID:      7,
		RegionID:    region.ID,
		AccessLevel: models.AccessView,
		Reason:      "old survey",
		GrantedBy:   1,
		GrantedAt:   past,
		ExpiresAt:   past.Add(24 * time.Hour),
	}
	if err := db.CreateGrant(ctx, expired); err != nil {
		t.Fatalf("CreateGrant failed: %v", err)
	}

	removed, err := svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	removed, err = svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("second Sweep failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("second sweep removed = %d, want 0", removed)
	}
}

func TestWarnExpiringDeduplicates(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	// Expires in 24h: inside the 23h-25h warning window.
	if _, err := svc.Grant(ctx, GrantRequest{
		UserID:     7,
		RegionName: "Bengaluru Urban",
		Reason:     "survey",
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}, admin); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}

	sent, err := svc.WarnExpiring(ctx)
	if err != nil {
		t.Fatalf("WarnExpiring failed: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}

	// The next hourly pass finds the same grant but stays quiet.
	sent, err = svc.WarnExpiring(ctx)
	if err != nil {
		t.Fatalf("second WarnExpiring failed: %v", err)
	}
	if sent != 0 {
		t.Errorf("second pass sent = %d, want 0", sent)
	}

	var warnings int
	notifications, err := db.NotificationsForUser(ctx, 7, 10)
	if err != nil {
		t.Fatalf("NotificationsForUser failed: %v", err)
	}
	for _, n := range notifications {
		if n.Category == models.NotificationGrantExpiring {
			warnings++
		}
	}
	if warnings != 1 {
		t.Errorf("expiry warnings stored = %d, want 1", warnings)
	}
}
