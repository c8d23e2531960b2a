// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package models

import "time"

// NotificationCategory classifies notifications for dedup and display.
type NotificationCategory string

const (
	NotificationGrantCreated  NotificationCategory = "grant_created"
	NotificationGrantRevoked  NotificationCategory = "grant_revoked"
	NotificationGrantExpiring NotificationCategory = "grant_expiring"
)

// Notification is a persisted user-facing message. ReferenceID ties the
// notification to the entity it is about (a grant ID for grant lifecycle
// messages) so repeat sends can be suppressed.
type Notification struct {
	ID          string               `json:"id"`
	UserID      int64                `json:"user_id"`
	Category    NotificationCategory `json:"category"`
	Title       string               `json:"title"`
	Body        string               `json:"body"`
	ReferenceID string               `json:"reference_id,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}
