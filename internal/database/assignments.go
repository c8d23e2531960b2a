// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package database

import (
	"context"
	"time"

	"github.com/toweratlas/toweratlas/internal/models"
)

// UpsertPermanentAssignment records a permanent region assignment for a
// user. If a grant previously materialized a temporary row for the same
// pair, the row is promoted to permanent so the sweeper will no longer
// touch it.
func (db *DB) UpsertPermanentAssignment(ctx context.Context, userID, regionID int64, level models.AccessLevel) error {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	_, execErr := db.conn.ExecContext(ctx, `
		INSERT INTO user_region_assignments (user_id, region_id, access_level, source, created_at)
		VALUES (?, ?, ?, 'permanent', ?)
		ON CONFLICT (user_id, region_id) DO UPDATE SET
			access_level = excluded.access_level,
			source = 'permanent'`,
		userID, regionID, string(level), time.Now().UTC())
	return mapQueryErr("upsert_assignment", start, execErr)
}

// DeletePermanentAssignment removes a permanent assignment. Rows
// materialized by temporary grants are left alone; those are owned by
// the grant lifecycle.
func (db *DB) DeletePermanentAssignment(ctx context.Context, userID, regionID int64) (bool, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	res, execErr := db.conn.ExecContext(ctx, `
		DELETE FROM user_region_assignments
		WHERE user_id = ? AND region_id = ? AND source = 'permanent'`,
		userID, regionID)
	if err := mapQueryErr("delete_assignment", start, execErr); err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// PermanentRegionIDs returns the region IDs the user holds through
// permanent assignments. Grant-materialized rows are excluded: temporary
// access is always recomputed from grant expiry so a stale row can never
// extend access.
func (db *DB) PermanentRegionIDs(ctx context.Context, userID int64) ([]int64, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	rows, queryErr := db.conn.QueryContext(ctx, `
		SELECT region_id FROM user_region_assignments
		WHERE user_id = ? AND source = 'permanent'
		ORDER BY region_id`, userID)
	if err := mapQueryErr("permanent_region_ids", start, queryErr); err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PermanentRegionsForUser returns the full region records behind a
// user's permanent assignments, for the my-access surface.
func (db *DB) PermanentRegionsForUser(ctx context.Context, userID int64) ([]models.Region, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	rows, queryErr := db.conn.QueryContext(ctx, `
		SELECT r.id, r.name, r.state, r.south, r.north, r.west, r.east, r.active
		FROM regions r
		JOIN user_region_assignments a ON a.region_id = r.id
		WHERE a.user_id = ? AND a.source = 'permanent'
		ORDER BY r.name`, userID)
	if err := mapQueryErr("permanent_regions_for_user", start, queryErr); err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRegions(rows)
}

// AssignmentsForUser lists all assignment rows for a user, permanent and
// materialized, for the my-access surface.
func (db *DB) AssignmentsForUser(ctx context.Context, userID int64) ([]models.UserRegionAssignment, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	rows, queryErr := db.conn.QueryContext(ctx, `
		SELECT user_id, region_id, access_level, source, created_at
		FROM user_region_assignments
		WHERE user_id = ?
		ORDER BY region_id`, userID)
	if err := mapQueryErr("assignments_for_user", start, queryErr); err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UserRegionAssignment
	for rows.Next() {
		var a models.UserRegionAssignment
		var level, source string
		if err := rows.Scan(&a.UserID, &a.RegionID, &level, &source, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.AccessLevel = models.AccessLevel(level)
		a.Source = models.AssignmentSource(source)
		out = append(out, a)
	}
	return out, rows.Err()
}
