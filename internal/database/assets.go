// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package database

import (
	"context"
	"time"

	"github.com/toweratlas/toweratlas/internal/errs"
	"github.com/toweratlas/toweratlas/internal/models"
)

// CreateAsset inserts an infrastructure asset. The caller is responsible
// for envelope validation and region detection; this layer persists what
// it is given.
func (db *DB) CreateAsset(ctx context.Context, a *models.InfrastructureAsset) error {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	_, execErr := db.conn.ExecContext(ctx, `
		INSERT INTO infrastructure_assets
			(id, name, item_type, status, latitude, longitude,
			 region_id, created_by, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, string(a.ItemType), string(a.Status),
		a.Latitude, a.Longitude, a.RegionID, a.CreatedBy, string(a.Source),
		a.CreatedAt.UTC(), a.UpdatedAt.UTC())
	return mapQueryErr("create_asset", start, execErr)
}

// GetAsset fetches an asset by ID.
func (db *DB) GetAsset(ctx context.Context, id string) (*models.InfrastructureAsset, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	var a models.InfrastructureAsset
	var itemType, status, source string
	scanErr := db.conn.QueryRowContext(ctx, `
		SELECT id, name, item_type, status, latitude, longitude,
		       region_id, created_by, source, created_at, updated_at
		FROM infrastructure_assets WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &itemType, &status, &a.Latitude, &a.Longitude,
			&a.RegionID, &a.CreatedBy, &source, &a.CreatedAt, &a.UpdatedAt)
	if err := mapQueryErr("get_asset", start, scanErr); err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.New(errs.KindNotFound, "asset not found")
		}
		return nil, err
	}
	a.ItemType = models.AssetType(itemType)
	a.Status = models.AssetStatus(status)
	a.Source = models.AssetSource(source)
	return &a, nil
}

// UpdateAsset rewrites the mutable fields of an asset. Returns NotFound
// if no asset with that ID exists.
func (db *DB) UpdateAsset(ctx context.Context, a *models.InfrastructureAsset) error {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	res, execErr := db.conn.ExecContext(ctx, `
		UPDATE infrastructure_assets SET
			name = ?, item_type = ?, status = ?,
			latitude = ?, longitude = ?, region_id = ?, updated_at = ?
		WHERE id = ?`,
		a.Name, string(a.ItemType), string(a.Status),
		a.Latitude, a.Longitude, a.RegionID, a.UpdatedAt.UTC(), a.ID)
	if err := mapQueryErr("update_asset", start, execErr); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.New(errs.KindNotFound, "asset not found")
	}
	return nil
}

// DeleteAsset removes an asset. Returns NotFound if it does not exist.
func (db *DB) DeleteAsset(ctx context.Context, id string) error {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	res, execErr := db.conn.ExecContext(ctx,
		`DELETE FROM infrastructure_assets WHERE id = ?`, id)
	if err := mapQueryErr("delete_asset", start, execErr); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.New(errs.KindNotFound, "asset not found")
	}
	return nil
}
