// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/toweratlas/toweratlas/internal/models"
)

// CreateRegion inserts a region and returns it with its assigned ID.
func (db *DB) CreateRegion(ctx context.Context, r *models.Region) (*models.Region, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	scanErr := db.conn.QueryRowContext(ctx, `
		INSERT INTO regions (name, state, south, north, west, east, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		r.Name, r.State, r.Bounds.South, r.Bounds.North,
		r.Bounds.West, r.Bounds.East, r.Active).
		Scan(&r.ID)
	if err := mapQueryErr("create_region", start, scanErr); err != nil {
		return nil, err
	}
	return r, nil
}

// GetRegion fetches a region by ID.
func (db *DB) GetRegion(ctx context.Context, id int64) (*models.Region, error) {
	return db.getRegion(ctx, "id = ?", id)
}

// GetRegionByName fetches a region by its unique name.
func (db *DB) GetRegionByName(ctx context.Context, name string) (*models.Region, error) {
	return db.getRegion(ctx, "name = ?", name)
}

func (db *DB) getRegion(ctx context.Context, where string, arg interface{}) (*models.Region, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	var r models.Region
	scanErr := db.conn.QueryRowContext(ctx, `
		SELECT id, name, state, south, north, west, east, active
		FROM regions WHERE `+where, arg).
		Scan(&r.ID, &r.Name, &r.State,
			&r.Bounds.South, &r.Bounds.North, &r.Bounds.West, &r.Bounds.East,
			&r.Active)
	if err := mapQueryErr("get_region", start, scanErr); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListActiveRegions returns all active regions ordered by name. The
// result feeds the coordinate-to-region matcher, which checks regions
// in order and takes the first match.
func (db *DB) ListActiveRegions(ctx context.Context) ([]models.Region, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	rows, queryErr := db.conn.QueryContext(ctx, `
		SELECT id, name, state, south, north, west, east, active
		FROM regions WHERE active ORDER BY name`)
	if err := mapQueryErr("list_regions", start, queryErr); err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRegions(rows)
}

func scanRegions(rows *sql.Rows) ([]models.Region, error) {
	var regions []models.Region
	for rows.Next() {
		var r models.Region
		if err := rows.Scan(&r.ID, &r.Name, &r.State,
			&r.Bounds.South, &r.Bounds.North, &r.Bounds.West, &r.Bounds.East,
			&r.Active); err != nil {
			return nil, mapQueryErr("scan_region", time.Now(), err)
		}
		regions = append(regions, r)
	}
	return regions, rows.Err()
}
