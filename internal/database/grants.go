// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/toweratlas/toweratlas/internal/errs"
	"github.com/toweratlas/toweratlas/internal/models"
)

const grantColumns = `
	g.id, g.user_id, g.region_id, g.access_level, g.reason,
	g.granted_by, g.granted_at, g.expires_at, g.revoked_at`

// CreateGrant inserts a temporary access grant and materializes the
// corresponding assignment row in one transaction. Returns Conflict when
// an active grant already exists for the same (user, region) pair.
//
// The assignment row exists so scope resolution reads one table; it is
// never consulted for liveness, which always comes from expires_at.
func (db *DB) CreateGrant(ctx context.Context, g *models.TemporaryAccessGrant) error {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	tx, txErr := db.conn.BeginTx(ctx, nil)
	if err := mapQueryErr("create_grant", start, txErr); err != nil {
		return err
	}
	defer tx.Rollback()

	var active int
	if err := tx.QueryRowContext(ctx, `
		SELECT count(*) FROM temporary_access_grants
		WHERE user_id = ? AND region_id = ?
		  AND revoked_at IS NULL AND expires_at > ?`,
		g.UserID, g.RegionID, g.GrantedAt.UTC()).Scan(&active); err != nil {
		return mapQueryErr("create_grant", start, err)
	}
	if active > 0 {
		return errs.New(errs.KindConflict, "an active grant already exists for this user and region")
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO temporary_access_grants
			(id, user_id, region_id, access_level, reason,
			 granted_by, granted_at, expires_at, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		g.ID, g.UserID, g.RegionID, string(g.AccessLevel), g.Reason,
		g.GrantedBy, g.GrantedAt.UTC(), g.ExpiresAt.UTC()); err != nil {
		return mapQueryErr("create_grant", start, err)
	}

	// Materialize the assignment. An existing permanent row stays
	// permanent and keeps its own access level; the grant does not
	// widen it.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_region_assignments (user_id, region_id, access_level, source, created_at)
		VALUES (?, ?, ?, 'temporary', ?)
		ON CONFLICT (user_id, region_id) DO NOTHING`,
		g.UserID, g.RegionID, string(g.AccessLevel), g.GrantedAt.UTC()); err != nil {
		return mapQueryErr("create_grant", start, err)
	}

	return mapQueryErr("create_grant", start, tx.Commit())
}

// GetGrant fetches a grant by ID with its region name.
func (db *DB) GetGrant(ctx context.Context, id string) (*models.TemporaryAccessGrant, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT `+grantColumns+`, r.name
		FROM temporary_access_grants g
		JOIN regions r ON r.id = g.region_id
		WHERE g.id = ?`, id)
	g, scanErr := scanGrant(row)
	if err := mapQueryErr("get_grant", start, scanErr); err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.New(errs.KindNotFound, "grant not found")
		}
		return nil, err
	}
	return g, nil
}

// RevokeGrant marks a grant revoked and removes its materialized
// assignment if no other active grant backs the same (user, region)
// pair. Revoking an already-revoked or expired grant is a no-op; the
// loser of a concurrent race observes the updated state and succeeds.
func (db *DB) RevokeGrant(ctx context.Context, id string, now time.Time) (*models.TemporaryAccessGrant, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	tx, txErr := db.conn.BeginTx(ctx, nil)
	if err := mapQueryErr("revoke_grant", start, txErr); err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+grantColumns+`, r.name
		FROM temporary_access_grants g
		JOIN regions r ON r.id = g.region_id
		WHERE g.id = ?`, id)
	g, scanErr := scanGrant(row)
	if err := mapQueryErr("revoke_grant", start, scanErr); err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.New(errs.KindNotFound, "grant not found")
		}
		return nil, err
	}

	if g.RevokedAt == nil {
		// TIMESTAMPTZ stores microseconds; truncate so the returned
		// grant matches what a re-read will see.
		ts := now.UTC().Truncate(time.Microsecond)
		if _, err := tx.ExecContext(ctx, `
			UPDATE temporary_access_grants SET revoked_at = ?
			WHERE id = ? AND revoked_at IS NULL`, ts, id); err != nil {
			return nil, mapQueryErr("revoke_grant", start, err)
		}
		g.RevokedAt = &ts
	}

	if err := removeUnbackedAssignment(ctx, tx, g.UserID, g.RegionID, now); err != nil {
		return nil, mapQueryErr("revoke_grant", start, err)
	}

	if err := mapQueryErr("revoke_grant", start, tx.Commit()); err != nil {
		return nil, err
	}
	return g, nil
}

// SweepExpiredGrants removes materialized assignment rows whose backing
// grants have all expired or been revoked. Safe to run repeatedly:
// the delete is conditioned on current grant state, so reruns and
// concurrent sweeps are no-ops. Returns the number of assignment rows
// removed this pass.
func (db *DB) SweepExpiredGrants(ctx context.Context, now time.Time) (int, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	res, execErr := db.conn.ExecContext(ctx, `
		DELETE FROM user_region_assignments
		WHERE source = 'temporary'
		  AND NOT EXISTS (
			SELECT 1 FROM temporary_access_grants g
			WHERE g.user_id = user_region_assignments.user_id
			  AND g.region_id = user_region_assignments.region_id
			  AND g.revoked_at IS NULL AND g.expires_at > ?)`,
		now.UTC())
	if err := mapQueryErr("sweep_grants", start, execErr); err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// removeUnbackedAssignment deletes the materialized assignment for the
// pair unless a permanent assignment or another active grant still backs
// it. Single statement, so check and delete cannot interleave.
func removeUnbackedAssignment(ctx context.Context, tx *sql.Tx, userID, regionID int64, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM user_region_assignments
		WHERE user_id = ? AND region_id = ? AND source = 'temporary'
		  AND NOT EXISTS (
			SELECT 1 FROM temporary_access_grants g
			WHERE g.user_id = ? AND g.region_id = ?
			  AND g.revoked_at IS NULL AND g.expires_at > ?)`,
		userID, regionID, userID, regionID, now.UTC())
	return err
}

// ActiveGrantRegionIDs returns region IDs the user can currently access
// through live grants. Liveness is computed against expires_at at call
// time, never read from a cached flag.
func (db *DB) ActiveGrantRegionIDs(ctx context.Context, userID int64, now time.Time) ([]int64, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	rows, queryErr := db.conn.QueryContext(ctx, `
		SELECT DISTINCT region_id FROM temporary_access_grants
		WHERE user_id = ? AND revoked_at IS NULL AND expires_at > ?
		ORDER BY region_id`, userID, now.UTC())
	if err := mapQueryErr("active_grant_regions", start, queryErr); err != nil {
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

// ActiveGrantsForUser lists the user's live grants with region names,
// most recent first.
func (db *DB) ActiveGrantsForUser(ctx context.Context, userID int64, now time.Time) ([]models.TemporaryAccessGrant, error) {
	return db.listGrants(ctx, `
		WHERE g.user_id = ? AND g.revoked_at IS NULL AND g.expires_at > ?
		ORDER BY g.granted_at DESC`, userID, now.UTC())
}

// GrantsExpiringBetween returns active grants whose expiry falls inside
// (from, to]. The expiry-warning job uses a window straddling the
// 24-hour mark so an hourly cadence cannot skip over a grant.
func (db *DB) GrantsExpiringBetween(ctx context.Context, from, to time.Time) ([]models.TemporaryAccessGrant, error) {
	return db.listGrants(ctx, `
		WHERE g.revoked_at IS NULL AND g.expires_at > ? AND g.expires_at <= ?
		ORDER BY g.expires_at`, from.UTC(), to.UTC())
}

// GrantsForRegion lists all grants for a region, newest first, for the
// administrative listing surface.
func (db *DB) GrantsForRegion(ctx context.Context, regionID int64) ([]models.TemporaryAccessGrant, error) {
	return db.listGrants(ctx, `
		WHERE g.region_id = ?
		ORDER BY g.granted_at DESC`, regionID)
}

func (db *DB) listGrants(ctx context.Context, tail string, args ...interface{}) ([]models.TemporaryAccessGrant, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	rows, queryErr := db.conn.QueryContext(ctx, `
		SELECT `+grantColumns+`, r.name
		FROM temporary_access_grants g
		JOIN regions r ON r.id = g.region_id `+tail, args...)
	if err := mapQueryErr("list_grants", start, queryErr); err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []models.TemporaryAccessGrant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, *g)
	}
	return grants, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGrant(row rowScanner) (*models.TemporaryAccessGrant, error) {
	var g models.TemporaryAccessGrant
	var level string
	var revokedAt sql.NullTime
	if err := row.Scan(&g.ID, &g.UserID, &g.RegionID, &level, &g.Reason,
		&g.GrantedBy, &g.GrantedAt, &g.ExpiresAt, &revokedAt, &g.RegionName); err != nil {
		return nil, err
	}
	g.AccessLevel = models.AccessLevel(level)
	if revokedAt.Valid {
		t := revokedAt.Time
		g.RevokedAt = &t
	}
	return &g, nil
}
