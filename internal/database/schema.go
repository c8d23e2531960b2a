// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package database

import (
	"context"

	"github.com/toweratlas/toweratlas/internal/errs"
)

// schemaStatements creates the core tables and indexes. All statements
// are idempotent so startup can run them unconditionally.
//
// The audit_events table is owned by the audit package and created by
// its store, not here.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         BIGINT PRIMARY KEY,
		username   VARCHAR NOT NULL UNIQUE,
		role       VARCHAR NOT NULL,
		active     BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE SEQUENCE IF NOT EXISTS region_id_seq`,

	`CREATE TABLE IF NOT EXISTS regions (
		id     BIGINT PRIMARY KEY DEFAULT nextval('region_id_seq'),
		name   VARCHAR NOT NULL UNIQUE,
		state  VARCHAR NOT NULL,
		south  DOUBLE NOT NULL,
		north  DOUBLE NOT NULL,
		west   DOUBLE NOT NULL,
		east   DOUBLE NOT NULL,
		active BOOLEAN NOT NULL DEFAULT true
	)`,

	`CREATE TABLE IF NOT EXISTS infrastructure_assets (
		id         VARCHAR PRIMARY KEY,
		name       VARCHAR NOT NULL,
		item_type  VARCHAR NOT NULL,
		status     VARCHAR NOT NULL,
		latitude   DOUBLE NOT NULL,
		longitude  DOUBLE NOT NULL,
		region_id  BIGINT,
		created_by BIGINT NOT NULL,
		source     VARCHAR NOT NULL DEFAULT 'manual',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_assets_lat_lng ON infrastructure_assets (latitude, longitude)`,
	`CREATE INDEX IF NOT EXISTS idx_assets_region ON infrastructure_assets (region_id)`,
	`CREATE INDEX IF NOT EXISTS idx_assets_creator ON infrastructure_assets (created_by)`,
	`CREATE INDEX IF NOT EXISTS idx_assets_status ON infrastructure_assets (status)`,

	// One row per (user, region). "source" records whether the row is an
	// independent permanent assignment or was materialized by a temporary
	// grant, so the grant sweeper only ever removes its own rows.
	`CREATE TABLE IF NOT EXISTS user_region_assignments (
		user_id      BIGINT NOT NULL,
		region_id    BIGINT NOT NULL,
		access_level VARCHAR NOT NULL DEFAULT 'view',
		source       VARCHAR NOT NULL DEFAULT 'permanent',
		created_at   TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, region_id)
	)`,

	`CREATE TABLE IF NOT EXISTS temporary_access_grants (
		id           VARCHAR PRIMARY KEY,
		user_id      BIGINT NOT NULL,
		region_id    BIGINT NOT NULL,
		access_level VARCHAR NOT NULL DEFAULT 'view',
		reason       VARCHAR NOT NULL,
		granted_by   BIGINT NOT NULL,
		granted_at   TIMESTAMPTZ NOT NULL,
		expires_at   TIMESTAMPTZ NOT NULL,
		revoked_at   TIMESTAMPTZ
	)`,

	`CREATE INDEX IF NOT EXISTS idx_grants_user_region ON temporary_access_grants (user_id, region_id)`,
	`CREATE INDEX IF NOT EXISTS idx_grants_expires ON temporary_access_grants (expires_at)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id           VARCHAR PRIMARY KEY,
		user_id      BIGINT NOT NULL,
		category     VARCHAR NOT NULL,
		title        VARCHAR NOT NULL,
		body         VARCHAR NOT NULL,
		reference_id VARCHAR,
		created_at   TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notifications_ref ON notifications (reference_id, category, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, created_at)`,
}

func (db *DB) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return errs.Wrap(errs.KindInternal, err, "failed to initialize schema")
		}
	}
	return nil
}
