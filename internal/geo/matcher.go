// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

// Package geo provides point-in-region matching for asset region detection.
//
// Region boundaries are stored as axis-aligned lat/lng rectangles per
// administrative area. The rectangle check is geometrically inaccurate near
// borders; RegionMatcher is an interface so a polygon-based implementation
// can replace the rectangle pre-filter without touching callers.
package geo

import "github.com/toweratlas/toweratlas/internal/models"

// RegionMatcher resolves the region containing a coordinate.
type RegionMatcher interface {
	// Match returns the first active region whose boundary contains the
	// point, or nil when no boundary matches. Inactive regions are skipped.
	Match(lat, lng float64, regions []models.Region) *models.Region
}

// RectangleMatcher matches points against axis-aligned rectangle bounds.
// Edges are inclusive; the first match in slice order wins, so overlapping
// rectangles resolve deterministically by region ordering.
type RectangleMatcher struct{}

// NewRectangleMatcher creates a rectangle-based region matcher.
func NewRectangleMatcher() *RectangleMatcher {
	return &RectangleMatcher{}
}

// Match implements RegionMatcher.
func (m *RectangleMatcher) Match(lat, lng float64, regions []models.Region) *models.Region {
	for i := range regions {
		if !regions[i].Active {
			continue
		}
		if regions[i].Bounds.Contains(lat, lng) {
			return &regions[i]
		}
	}
	return nil
}
