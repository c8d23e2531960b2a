// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

// Package assets implements asset lifecycle operations on top of the
// store: envelope validation, region auto-detection and ownership
// checks.
package assets

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/toweratlas/toweratlas/internal/audit"
	"github.com/toweratlas/toweratlas/internal/database"
	"github.com/toweratlas/toweratlas/internal/errs"
	"github.com/toweratlas/toweratlas/internal/geo"
	"github.com/toweratlas/toweratlas/internal/models"
)

// Service owns asset CRUD.
type Service struct {
	db       *database.DB
	matcher  geo.RegionMatcher
	recorder *audit.Recorder
	now      func() time.Time
}

// NewService creates the asset service. recorder may be nil when
// auditing is disabled.
func NewService(db *database.DB, matcher geo.RegionMatcher, recorder *audit.Recorder) *Service {
	return &Service{
		db:       db,
		matcher:  matcher,
		recorder: recorder,
		now:      time.Now,
	}
}

// CreateRequest carries the validated inputs for a new asset.
type CreateRequest struct {
	Name      string
	ItemType  models.AssetType
	Status    models.AssetStatus
	Latitude  float64
	Longitude float64
	Source    models.AssetSource
}

// Create validates and stores a new asset. Coordinates outside the
// national envelope are rejected, never silently stored. The region is
// detected from the coordinate; no match leaves the asset unassigned,
// visible only through ownership or unrestricted scope.
func (s *Service) Create(ctx context.Context, req CreateRequest, by models.Identity) (*models.InfrastructureAsset, error) {
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}
	if !req.ItemType.Valid() {
		return nil, errs.New(errs.KindInvalidArgument, "invalid asset type")
	}
	status := req.Status
	if status == "" {
		status = models.StatusActive
	}
	if !status.Valid() {
		return nil, errs.New(errs.KindInvalidArgument, "invalid asset status")
	}
	source := req.Source
	if source == "" {
		source = models.SourceManual
	}

	now := s.now().UTC()
	a := &models.InfrastructureAsset{
		ID:        uuid.NewString(),
		Name:      req.Name,
		ItemType:  req.ItemType,
		Status:    status,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		RegionID:  s.detectRegion(ctx, req.Latitude, req.Longitude),
		CreatedBy: by.UserID,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.CreateAsset(ctx, a); err != nil {
		return nil, err
	}

	s.record(ctx, audit.ActionAssetCreated, nil, a, by)
	return a, nil
}

// UpdateRequest carries the mutable fields of an asset. RedetectRegion
// re-runs region detection against the new coordinate; without it the
// stored region is kept even when the asset moves.
type UpdateRequest struct {
	Name           string
	ItemType       models.AssetType
	Status         models.AssetStatus
	Latitude       float64
	Longitude      float64
	RedetectRegion bool
}

// Update rewrites an asset. Only the creator or an elevated role may
// modify it.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, by models.Identity) (*models.InfrastructureAsset, error) {
	a, err := s.db.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(a, by); err != nil {
		return nil, err
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}
	if !req.ItemType.Valid() {
		return nil, errs.New(errs.KindInvalidArgument, "invalid asset type")
	}
	if !req.Status.Valid() {
		return nil, errs.New(errs.KindInvalidArgument, "invalid asset status")
	}

	before := *a
	a.Name = req.Name
	a.ItemType = req.ItemType
	a.Status = req.Status
	a.Latitude = req.Latitude
	a.Longitude = req.Longitude
	if req.RedetectRegion {
		a.RegionID = s.detectRegion(ctx, req.Latitude, req.Longitude)
	}
	a.UpdatedAt = s.now().UTC()

	if err := s.db.UpdateAsset(ctx, a); err != nil {
		return nil, err
	}
	s.record(ctx, audit.ActionAssetUpdated, &before, a, by)
	return a, nil
}

// Delete removes an asset. Only the creator or an elevated role may
// delete it.
func (s *Service) Delete(ctx context.Context, id string, by models.Identity) error {
	a, err := s.db.GetAsset(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(a, by); err != nil {
		return err
	}
	if err := s.db.DeleteAsset(ctx, id); err != nil {
		return err
	}
	s.record(ctx, audit.ActionAssetDeleted, a, nil, by)
	return nil
}

// Get fetches one asset visible to the caller's scope.
func (s *Service) Get(ctx context.Context, id string, scope models.Scope) (*models.InfrastructureAsset, error) {
	a, err := s.db.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if !assetVisible(a, scope) {
		// Hidden assets read as absent so scope cannot be probed.
		return nil, errs.New(errs.KindNotFound, "asset not found")
	}
	return a, nil
}

func (s *Service) detectRegion(ctx context.Context, lat, lng float64) *int64 {
	regions, err := s.db.ListActiveRegions(ctx)
	if err != nil {
		return nil
	}
	if match := s.matcher.Match(lat, lng, regions); match != nil {
		id := match.ID
		return &id
	}
	return nil
}

func (s *Service) authorize(a *models.InfrastructureAsset, by models.Identity) error {
	if by.Elevated() || a.CreatedBy == by.UserID {
		return nil
	}
	return errs.New(errs.KindForbidden, "only the creator or an elevated role may modify this asset")
}

func (s *Service) record(ctx context.Context, action string, before, after *models.InfrastructureAsset, by models.Identity) {
	if s.recorder == nil {
		return
	}
	subject := after
	if subject == nil {
		subject = before
	}
	e := &audit.Event{
		Category: audit.CategoryAsset,
		Action:   action,
		Actor:    audit.Actor{UserID: by.UserID, Username: by.Username, Role: string(by.Role)},
		Target:   audit.Target{Type: "asset", ID: subject.ID, Name: subject.Name},
		Source:   audit.SourceFromContext(ctx),
	}
	if before != nil {
		e.Before = before
	}
	if after != nil {
		e.After = after
	}
	s.recorder.Record(e)
}

func assetVisible(a *models.InfrastructureAsset, scope models.Scope) bool {
	if scope.Unrestricted {
		if scope.TargetOwnerID != 0 {
			return a.CreatedBy == scope.TargetOwnerID
		}
		return true
	}
	if a.CreatedBy == scope.OwnerID {
		return true
	}
	if a.RegionID == nil {
		return false
	}
	for _, id := range scope.RegionIDs {
		if id == *a.RegionID {
			return true
		}
	}
	return false
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return errs.New(errs.KindInvalidArgument, "coordinates out of range")
	}
	if !models.InEnvelope(lat, lng) {
		return errs.New(errs.KindInvalidArgument, "coordinates outside the service envelope")
	}
	return nil
}
