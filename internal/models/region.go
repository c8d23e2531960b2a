// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package models

// BoundingBox is an axis-aligned lat/lng rectangle. It doubles as the map
// viewport shape and the region boundary descriptor.
type BoundingBox struct {
	South float64 `json:"south"`
	North float64 `json:"north"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// Contains reports whether the point lies inside the box (edges inclusive).
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.South && lat <= b.North && lng >= b.West && lng <= b.East
}

// Region is a named administrative area with an axis-aligned rectangle
// boundary. The rectangle is an approximation of the true polygon; see the
// geo package for the pluggable matcher that performs point-in-region tests.
// Static reference data, rarely mutated.
type Region struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	State  string      `json:"state"`
	Bounds BoundingBox `json:"bounds"`
	Active bool        `json:"active"`
}
