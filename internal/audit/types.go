// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

// Package audit records security-relevant events to an append-only
// store. Recording is fire-and-forget: an audit failure is logged but
// never fails the operation that triggered it.
package audit

import "time"

// Category groups events by subsystem.
type Category string

const (
	CategoryAccess Category = "access"
	CategoryAsset  Category = "asset"
	CategoryAuth   Category = "auth"
	CategoryAdmin  Category = "admin"
)

// Severity indicates event importance.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityAlert   Severity = "alert"
)

// Actor identifies who performed the action.
type Actor struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Target identifies what the action applied to.
type Target struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Source records where the triggering request originated.
type Source struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Event is one append-only audit record. Events are never updated or
// deleted individually; retention-based purge is the only removal path.
// Before and After hold entity snapshots for mutations that have them.
type Event struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Category  Category               `json:"category"`
	Action    string                 `json:"action"`
	Severity  Severity               `json:"severity"`
	Actor     Actor                  `json:"actor"`
	Target    Target                 `json:"target"`
	Source    Source                 `json:"source,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Before    interface{}            `json:"before,omitempty"`
	After     interface{}            `json:"after,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Filter narrows event listing.
type Filter struct {
	Category Category
	Action   string
	ActorID  int64
	Since    time.Time
	Until    time.Time
	Limit    int
	Offset   int
}

// Actions recorded by the service.
const (
	ActionGrantCreated = "grant.created"
	ActionGrantRevoked = "grant.revoked"
	ActionGrantSwept   = "grant.swept"
	ActionAssetCreated = "asset.created"
	ActionAssetUpdated = "asset.updated"
	ActionAssetDeleted = "asset.deleted"
	ActionViewAsUsed   = "auth.view_as"
	ActionAuthRejected = "auth.rejected"
	ActionAuditPurged  = "audit.purged"
)
