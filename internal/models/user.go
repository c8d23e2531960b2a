// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package models

import "time"

// Role is a user's access role.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// Elevated reports whether the role bypasses region and ownership scoping.
// Elevated identities see all assets and may perform grant administration.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleManager
}

// User is an account known to the system. Authentication happens in an
// external layer; this record backs grant target lookups and identity
// resolution.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the authenticated caller supplied by the auth layer on every
// request.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Elevated reports whether the identity's role is elevated.
func (i Identity) Elevated() bool {
	return i.Role.Elevated()
}

// Scope is the visibility predicate computed for an identity.
//
// When Unrestricted is true, callers skip region and ownership filtering
// entirely; TargetOwnerID (admin "view as" mode) then narrows results to
// assets created by that user without re-applying region scoping. Otherwise
// callers must match assets where owner == OwnerID OR region ∈ RegionIDs.
type Scope struct {
	Unrestricted  bool
	RegionIDs     []int64
	OwnerID       int64
	TargetOwnerID int64
}
