// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package assets

import (
	"context"
	"testing"
	"time"

	"github.com/toweratlas/toweratlas/internal/config"
	"github.com/toweratlas/toweratlas/internal/database"
	"github.com/toweratlas/toweratlas/internal/errs"
	"github.com/toweratlas/toweratlas/internal/geo"
	"github.com/toweratlas/toweratlas/internal/models"
)

var (
	owner    = models.Identity{UserID: 7, Username: "surveyor", Role: models.RoleUser}
	stranger = models.Identity{UserID: 8, Username: "other", Role: models.RoleUser}
	admin    = models.Identity{UserID: 1, Username: "admin", Role: models.RoleAdmin}
)

func setupService(t *testing.T) (*Service, *models.Region) {
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

	region, err := db.CreateRegion(context.Background(), &models.Region{
		Name:   "Bengaluru Urban",
		State:  "Karnataka",
		Bounds: models.BoundingBox{South: 12.7, North: 13.2, West: 77.3, East: 77.9},
		Active: true,
	})
	if err != nil {
		t.Fatalf("failed to seed region: %v", err)
	}

	return NewService(db, geo.NewRectangleMatcher(), nil), region
}

func TestCreateDetectsRegion(t *testing.T) {
	svc, region := setupService(t)

	a, err := svc.Create(context.Background(), CreateRequest{
		Name:      "MG Road Tower",
		ItemType:  models.AssetTypeTower,
		Latitude:  12.975,
		Longitude: 77.606,
	}, owner)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.RegionID == nil || *a.RegionID != region.ID {
		t.Errorf("RegionID = %v, want %d", a.RegionID, region.ID)
	}
	if a.Status != models.StatusActive {
		t.Errorf("status defaulted to %s, want Active", a.Status)
	}
	if a.Source != models.SourceManual {
		t.Errorf("source defaulted to %s, want manual", a.Source)
	}
	if a.CreatedBy != owner.UserID {
		t.Errorf("CreatedBy = %d, want %d", a.CreatedBy, owner.UserID)
	}
}

func TestCreateOutsideAnyRegion(t *testing.T) {
	svc, _ := setupService(t)

	// Inside the envelope but outside every region boundary.
	a, err := svc.Create(context.Background(), CreateRequest{
		Name:      "Remote Tower",
		ItemType:  models.AssetTypeTower,
		Latitude:  20.0,
		Longitude: 80.0,
	}, owner)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.RegionID != nil {
		t.Errorf("expected nil RegionID, got %v", *a.RegionID)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := setupService(t)

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"south of envelope", CreateRequest{Name: "x", ItemType: models.AssetTypeTower, Latitude: 4.0, Longitude: 77.0}},
		{"west of envelope", CreateRequest{Name: "x", ItemType: models.AssetTypeTower, Latitude: 13.0, Longitude: 60.0}},
		{"latitude out of range", CreateRequest{Name: "x", ItemType: models.AssetTypeTower, Latitude: 95.0, Longitude: 77.0}},
		{"bad type", CreateRequest{Name: "x", ItemType: "Satellite", Latitude: 13.0, Longitude: 77.5}},
		{"bad status", CreateRequest{Name: "x", ItemType: models.AssetTypeTower, Status: "Broken", Latitude: 13.0, Longitude: 77.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req, owner)
			if !errs.IsInvalidArgument(err) {
				t.Errorf("expected InvalidArgument, got %v", err)
			}
		})
	}
}

func TestUpdateOwnership(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateRequest{
		Name:      "MG Road Tower",
		ItemType:  models.AssetTypeTower,
		Latitude:  12.975,
		Longitude: 77.606,
	}, owner)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	req := UpdateRequest{
		Name:      "MG Road Tower II",
		ItemType:  models.AssetTypeTower,
		Status:    models.StatusMaintenance,
		Latitude:  12.975,
		Longitude: 77.606,
	}

	if _, err := svc.Update(ctx, a.ID, req, stranger); !errs.IsForbidden(err) {
		t.Errorf("expected Forbidden for non-owner, got %v", err)
	}

	updated, err := svc.Update(ctx, a.ID, req, owner)
	if err != nil {
		t.Fatalf("owner Update failed: %v", err)
	}
	if updated.Name != "MG Road Tower II" || updated.Status != models.StatusMaintenance {
		t.Errorf("update not applied: %+v", updated)
	}

	// Elevated roles may update anything.
	if _, err := svc.Update(ctx, a.ID, req, admin); err != nil {
		t.Errorf("admin Update failed: %v", err)
	}
}

func TestUpdateRegionRedetection(t *testing.T) {
	svc, region := setupService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateRequest{
		Name:      "Mobile Unit",
		ItemType:  models.AssetTypeEquipment,
		Latitude:  12.975,
		Longitude: 77.606,
	}, owner)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.RegionID == nil || *a.RegionID != region.ID {
		t.Fatalf("expected initial region %d", region.ID)
	}

	// A plain move keeps the stored region.
	moved, err := svc.Update(ctx, a.ID, UpdateRequest{
		Name:      "Mobile Unit",
		ItemType:  models.AssetTypeEquipment,
		Status:    models.StatusActive,
		Latitude:  20.0,
		Longitude: 80.0,
	}, owner)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if moved.RegionID == nil || *moved.RegionID != region.ID {
		t.Errorf("expected region kept on move, got %v", moved.RegionID)
	}

	// Explicit redetection re-runs the point-in-region match.
	redetected, err := svc.Update(ctx, a.ID, UpdateRequest{
		Name:           "Mobile Unit",
		ItemType:       models.AssetTypeEquipment,
		Status:         models.StatusActive,
		Latitude:       20.0,
		Longitude:      80.0,
		RedetectRegion: true,
	}, owner)
	if err != nil {
		t.Fatalf("Update with redetect failed: %v", err)
	}
	if redetected.RegionID != nil {
		t.Errorf("expected region cleared after redetection, got %v", *redetected.RegionID)
	}
}

func TestDeleteAndGetScope(t *testing.T) {
	svc, region := setupService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateRequest{
		Name:      "MG Road Tower",
		ItemType:  models.AssetTypeTower,
		Latitude:  12.975,
		Longitude: 77.606,
	}, owner)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Visible to the owner, to region members and to unrestricted scope.
	if _, err := svc.Get(ctx, a.ID, models.Scope{OwnerID: owner.UserID}); err != nil {
		t.Errorf("owner Get failed: %v", err)
	}
	if _, err := svc.Get(ctx, a.ID, models.Scope{OwnerID: 8, RegionIDs: []int64{region.ID}}); err != nil {
		t.Errorf("region member Get failed: %v", err)
	}
	if _, err := svc.Get(ctx, a.ID, models.Scope{Unrestricted: true}); err != nil {
		t.Errorf("unrestricted Get failed: %v", err)
	}

	// Out-of-scope callers see NotFound, not Forbidden.
	if _, err := svc.Get(ctx, a.ID, models.Scope{OwnerID: 9}); !errs.IsNotFound(err) {
		t.Errorf("expected NotFound for out-of-scope caller, got %v", err)
	}

	if err := svc.Delete(ctx, a.ID, stranger); !errs.IsForbidden(err) {
		t.Errorf("expected Forbidden for non-owner delete, got %v", err)
	}
	if err := svc.Delete(ctx, a.ID, owner); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(ctx, a.ID, owner); !errs.IsNotFound(err) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
}
