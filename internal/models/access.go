// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package models

import "time"

// AccessLevel is the permission level carried by an assignment or grant.
type AccessLevel string

const (
	AccessView AccessLevel = "view"
	AccessEdit AccessLevel = "edit"
)

// Valid reports whether l is a known access level.
func (l AccessLevel) Valid() bool {
	return l == AccessView || l == AccessEdit
}

// AssignmentSource records how an assignment row came to exist.
// Permanent rows survive grant expiry; temporary rows are materialized from
// grants and removed by the sweep when no active grant backs them.
type AssignmentSource string

const (
	AssignmentPermanent AssignmentSource = "permanent"
	AssignmentTemporary AssignmentSource = "temporary"
)

// UserRegionAssignment pairs a user with a region they may see.
// Unique per (user, region); permanent rows persist until explicitly removed.
type UserRegionAssignment struct {
	UserID      int64            `json:"user_id"`
	RegionID    int64            `json:"region_id"`
	AccessLevel AccessLevel      `json:"access_level"`
	Source      AssignmentSource `json:"source"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TemporaryAccessGrant is a time-boxed, revocable region access grant.
//
// State machine: active -> expired (automatic, time-driven) or
// active -> revoked (explicit). No transition out of expired or revoked.
// At most one active grant exists per (user, region) at a time.
type TemporaryAccessGrant struct {
	ID          string      `json:"id"`
	UserID      int64       `json:"user_id"`
	RegionID    int64       `json:"region_id"`
	RegionName  string      `json:"region_name,omitempty"`
	AccessLevel AccessLevel `json:"access_level"`
	Reason      string      `json:"reason"`
	GrantedBy   int64       `json:"granted_by"`
	GrantedAt   time.Time   `json:"granted_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
	RevokedAt   *time.Time  `json:"revoked_at,omitempty"`
}

// ActiveAt reports whether the grant is live at the given instant.
// Liveness is always recomputed from ExpiresAt; a stale "active" flag is
// never trusted (an expired-but-not-yet-swept grant must not grant access).
func (g *TemporaryAccessGrant) ActiveAt(now time.Time) bool {
	return g.RevokedAt == nil && g.ExpiresAt.After(now)
}

// SecondsRemaining returns the whole seconds until expiry, clamped at zero
// so expired grants render as "expired" rather than negative durations.
func (g *TemporaryAccessGrant) SecondsRemaining(now time.Time) int64 {
	remaining := g.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int64(remaining.Seconds())
}
