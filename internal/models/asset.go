// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package models

import "time"

// AssetType categorizes infrastructure assets.
type AssetType string

const (
	AssetTypePOP       AssetType = "POP"
	AssetTypeSubPOP    AssetType = "SubPOP"
	AssetTypeTower     AssetType = "Tower"
	AssetTypeBuilding  AssetType = "Building"
	AssetTypeEquipment AssetType = "Equipment"
	AssetTypeOther     AssetType = "Other"
)

// AssetTypes lists all valid asset types in a stable order.
// Cluster per-type breakdowns iterate this list.
var AssetTypes = []AssetType{
	AssetTypePOP,
	AssetTypeSubPOP,
	AssetTypeTower,
	AssetTypeBuilding,
	AssetTypeEquipment,
	AssetTypeOther,
}

// Valid reports whether t is a known asset type.
func (t AssetType) Valid() bool {
	for _, known := range AssetTypes {
		if t == known {
			return true
		}
	}
	return false
}

// AssetStatus is the lifecycle status of an infrastructure asset.
type AssetStatus string

const (
	StatusActive      AssetStatus = "Active"
	StatusInactive    AssetStatus = "Inactive"
	StatusPlanned     AssetStatus = "Planned"
	StatusMaintenance AssetStatus = "Maintenance"
	StatusDamaged     AssetStatus = "Damaged"
	StatusRFS         AssetStatus = "RFS"
)

// VisibleStatuses are the statuses shown on the map view. The raw viewport
// variant returns all statuses; the map view restricts to these.
var VisibleStatuses = []AssetStatus{
	StatusActive,
	StatusPlanned,
	StatusMaintenance,
	StatusRFS,
}

// Valid reports whether s is a known lifecycle status.
func (s AssetStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPlanned, StatusMaintenance, StatusDamaged, StatusRFS:
		return true
	}
	return false
}

// AssetSource records how an asset entered the store.
type AssetSource string

const (
	SourceManual AssetSource = "manual"
	SourceKML    AssetSource = "kml"
)

// National bounding envelope (WGS84 decimal degrees). Assets outside this
// envelope are rejected at creation, never silently stored.
const (
	EnvelopeSouth = 6.5
	EnvelopeNorth = 35.5
	EnvelopeWest  = 68.0
	EnvelopeEast  = 97.5
)

// InEnvelope reports whether a coordinate pair lies inside the national
// bounding envelope.
func InEnvelope(lat, lng float64) bool {
	return lat >= EnvelopeSouth && lat <= EnvelopeNorth &&
		lng >= EnvelopeWest && lng <= EnvelopeEast
}

// InfrastructureAsset is a geographically located telecom asset.
//
// RegionID is nullable: it stays unset when no region boundary matched at
// creation time. The region is recomputed only at creation, not re-derived
// on coordinate edits unless explicitly re-triggered.
type InfrastructureAsset struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	ItemType  AssetType   `json:"item_type"`
	Status    AssetStatus `json:"status"`
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	RegionID  *int64      `json:"region_id,omitempty"`
	CreatedBy int64       `json:"created_by"`
	Source    AssetSource `json:"source"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// MapItem is the minimal field set needed for marker rendering. Full
// records are fetched through the asset CRUD surface, not the viewport
// path; the separation keeps payloads small at scale.
type MapItem struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	ItemType  AssetType   `json:"item_type"`
	Status    AssetStatus `json:"status"`
}

// Cluster is a spatially aggregated stand-in for multiple assets, used to
// bound response size at low zoom. Latitude/Longitude are the arithmetic
// mean of constituent coordinates, not the grid-cell midpoint, which avoids
// visual snapping artifacts.
type Cluster struct {
	Latitude  float64          `json:"latitude"`
	Longitude float64          `json:"longitude"`
	Count     int64            `json:"count"`
	ByType    map[string]int64 `json:"by_type"`
}
