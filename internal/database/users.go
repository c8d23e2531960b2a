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

// UpsertUser inserts or refreshes a user record. User identities originate
// in the external identity provider; this table mirrors the fields needed
// for ownership checks and audit attribution.
func (db *DB) UpsertUser(ctx context.Context, u *models.User) error {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO users (id, username, role, active, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			role = excluded.role,
			active = excluded.active`,
		u.ID, u.Username, string(u.Role), u.Active, u.CreatedAt.UTC())
	return mapQueryErr("upsert_user", start, err)
}

// GetUser fetches a user by ID.
func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	var u models.User
	var role string
	scanErr := db.conn.QueryRowContext(ctx, `
		SELECT id, username, role, active, created_at
		FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &role, &u.Active, &u.CreatedAt)
	if err := mapQueryErr("get_user", start, scanErr); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}
