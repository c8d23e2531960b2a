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

// CreateNotification persists a notification row.
func (db *DB) CreateNotification(ctx context.Context, n *models.Notification) error {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	_, execErr := db.conn.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, category, title, body, reference_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, string(n.Category), n.Title, n.Body, n.ReferenceID, n.CreatedAt.UTC())
	return mapQueryErr("create_notification", start, execErr)
}

// HasRecentNotification reports whether a notification with the given
// category and reference was created after the cutoff. The expiry-warning
// job uses this to avoid re-warning about the same grant on every pass.
func (db *DB) HasRecentNotification(ctx context.Context, category models.NotificationCategory, referenceID string, since time.Time) (bool, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	var n int
	scanErr := db.conn.QueryRowContext(ctx, `
		SELECT count(*) FROM notifications
		WHERE category = ? AND reference_id = ? AND created_at > ?`,
		string(category), referenceID, since.UTC()).Scan(&n)
	if err := mapQueryErr("has_recent_notification", start, scanErr); err != nil {
		return false, err
	}
	return n > 0, nil
}

// NotificationsForUser lists a user's notifications, newest first.
func (db *DB) NotificationsForUser(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	start := time.Now()
	rows, queryErr := db.conn.QueryContext(ctx, `
		SELECT id, user_id, category, title, body, reference_id, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, userID, limit)
	if err := mapQueryErr("notifications_for_user", start, queryErr); err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		var category string
		if err := rows.Scan(&n.ID, &n.UserID, &category, &n.Title, &n.Body, &n.ReferenceID, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Category = models.NotificationCategory(category)
		out = append(out, n)
	}
	return out, rows.Err()
}
