// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package models

import "time"

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints. Status is "success" or "error"; Error is populated only on
// failure. Metadata carries query timing for observability.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is a stable error kind plus a human-readable message. No stack
// traces or internal identifiers are ever exposed.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ViewportData is the payload of a viewport query response.
//
// Limited is true when the result count equals the applied cap, signaling
// that more data exists beyond the returned window; the caller should
// re-query at finer granularity rather than assume completeness.
type ViewportData struct {
	Items   []MapItem   `json:"items"`
	Count   int         `json:"count"`
	Limited bool        `json:"limited"`
	Limit   int         `json:"limit"`
	Bounds  BoundingBox `json:"bounds"`
	Zoom    int         `json:"zoom"`
}

// ClusterData is the payload of a cluster query response. At zoom
// levels where clustering no longer makes sense the endpoint returns
// individual markers in Items instead, with Clusters empty.
type ClusterData struct {
	Clusters []Cluster   `json:"clusters"`
	Items    []MapItem   `json:"items,omitempty"`
	Count    int         `json:"count"`
	Bounds   BoundingBox `json:"bounds"`
	Zoom     int         `json:"zoom"`
	GridSize float64     `json:"grid_size,omitempty"`
}

// GrantSummary is the per-grant payload for the my-access endpoint, with
// time remaining computed server-side in seconds.
type GrantSummary struct {
	ID               string      `json:"id"`
	RegionID         int64       `json:"region_id"`
	RegionName       string      `json:"region_name"`
	AccessLevel      AccessLevel `json:"access_level"`
	Reason           string      `json:"reason"`
	ExpiresAt        time.Time   `json:"expires_at"`
	SecondsRemaining int64       `json:"seconds_remaining"`
	Expired          bool        `json:"expired"`
}
