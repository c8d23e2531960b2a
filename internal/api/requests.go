// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package api

// CreateGrantRequest is the body of POST /api/v1/temporary-access.
// The region may be addressed by ID or name; ExpiresAt is RFC 3339.
type CreateGrantRequest struct {
	UserID      int64  `json:"user_id" validate:"required,gt=0"`
	RegionID    int64  `json:"region_id" validate:"omitempty,gt=0"`
	RegionName  string `json:"region_name" validate:"omitempty,max=200"`
	AccessLevel string `json:"access_level" validate:"omitempty,oneof=view edit"`
	Reason      string `json:"reason" validate:"required,max=500"`
	ExpiresAt   string `json:"expires_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// CreateAssetRequest is the body of POST /api/v1/assets.
type CreateAssetRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	ItemType  string  `json:"item_type" validate:"required"`
	Status    string  `json:"status" validate:"omitempty"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Source    string  `json:"source" validate:"omitempty,oneof=manual kml"`
}

// UpdateAssetRequest is the body of PUT /api/v1/assets/{id}. Region
// assignment is kept as stored unless redetect_region asks for a fresh
// point-in-region match.
type UpdateAssetRequest struct {
	Name           string  `json:"name" validate:"required,max=200"`
	ItemType       string  `json:"item_type" validate:"required"`
	Status         string  `json:"status" validate:"required"`
	Latitude       float64 `json:"latitude" validate:"latitude"`
	Longitude      float64 `json:"longitude" validate:"longitude"`
	RedetectRegion bool    `json:"redetect_region"`
}
