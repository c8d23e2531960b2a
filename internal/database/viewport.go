// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package database

import (
	"context"
	"time"

	"github.com/toweratlas/toweratlas/internal/database/query"
	"github.com/toweratlas/toweratlas/internal/models"
)

// Zoom-derived result caps. Lower zoom means a larger visible area, so
// the default cap shrinks to keep payloads bounded. HardLimit is the
// ceiling regardless of what the client requests.
const (
	LowZoomMaxZoom = 8
	MidZoomMaxZoom = 12

	LowZoomLimit  = 500
	MidZoomLimit  = 1000
	HighZoomLimit = 2000
	HardLimit     = 5000
)

// DefaultViewportLimit returns the default marker cap for a zoom level.
func DefaultViewportLimit(zoom int) int {
	switch {
	case zoom <= LowZoomMaxZoom:
		return LowZoomLimit
	case zoom <= MidZoomMaxZoom:
		return MidZoomLimit
	default:
		return HighZoomLimit
	}
}

// ClampViewportLimit resolves the effective cap: the zoom default when
// the client asked for nothing or a non-positive value, otherwise the
// requested value bounded by HardLimit.
func ClampViewportLimit(requested, zoom int) int {
	if requested <= 0 {
		return DefaultViewportLimit(zoom)
	}
	if requested > HardLimit {
		return HardLimit
	}
	return requested
}

// ViewportQuery describes one bounded marker query.
type ViewportQuery struct {
	Bounds models.BoundingBox
	Zoom   int
	Scope  models.Scope

	Types    []models.AssetType
	Statuses []models.AssetStatus
	Sources  []models.AssetSource
	Search   string

	// Limit is the client-requested cap; zero means use the zoom default.
	Limit int
}

// QueryViewport returns assets inside the bounding box visible to the
// caller's scope, capped by the effective limit. The second return value
// is true when the result count equals the cap, signaling the caller to
// re-query at finer granularity rather than assume completeness.
func (db *DB) QueryViewport(ctx context.Context, q ViewportQuery) ([]models.MapItem, bool, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	limit := ClampViewportLimit(q.Limit, q.Zoom)

	wb := query.NewWhereBuilder()
	wb.AddBoundingBox(q.Bounds)
	wb.AddScope(q.Scope)
	wb.AddTypes(q.Types)
	wb.AddSources(q.Sources)
	wb.AddSearch(q.Search)
	if len(q.Statuses) > 0 {
		wb.AddStatuses(q.Statuses)
	} else {
		wb.AddStatuses(models.VisibleStatuses)
	}
	whereClause, args := wb.BuildWithPrefix()
	args = append(args, limit)

	start := time.Now()
	rows, queryErr := db.conn.QueryContext(ctx, `
		SELECT id, name, latitude, longitude, item_type, status
		FROM infrastructure_assets
		`+whereClause+`
		ORDER BY id
		LIMIT ?`, args...)
	if err := mapQueryErr("viewport", start, queryErr); err != nil {
		return nil, false, err
	}
	defer rows.Close()

	items := make([]models.MapItem, 0, limit)
	for rows.Next() {
		var m models.MapItem
		var itemType, status string
		if err := rows.Scan(&m.ID, &m.Name, &m.Latitude, &m.Longitude, &itemType, &status); err != nil {
			return nil, false, err
		}
		m.ItemType = models.AssetType(itemType)
		m.Status = models.AssetStatus(status)
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, false, mapQueryErr("viewport", start, err)
	}

	return items, len(items) == limit, nil
}
