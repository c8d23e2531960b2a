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

// MaxClusters caps one clustering response. Cells are ordered densest
// first, so anything dropped past the cap is visually marginal.
const MaxClusters = 1000

// ClusterZoomThreshold is the zoom at or above which clustering makes no
// sense; callers should fall back to the viewport marker query.
const ClusterZoomThreshold = 15

// DefaultGridSize returns the grid cell size in degrees for a zoom
// level. Coarser grids at low zoom keep cluster counts small when the
// viewport spans most of the map.
func DefaultGridSize(zoom int) float64 {
	switch {
	case zoom <= 5:
		return 2.0
	case zoom <= 8:
		return 0.5
	case zoom <= 11:
		return 0.1
	default:
		return 0.05
	}
}

// ClusterQuery describes one grid aggregation request.
type ClusterQuery struct {
	Bounds models.BoundingBox
	Zoom   int
	Scope  models.Scope

	// GridSize overrides the zoom-derived cell size when positive.
	GridSize float64

	// RegionID narrows aggregation to one region when positive.
	RegionID int64
}

// ClusterViewport aggregates visible assets into grid cells and returns
// one cluster per non-empty cell: arithmetic-mean center, total count
// and per-type breakdown. Aggregation runs inside DuckDB so only cell
// summaries cross the driver boundary.
func (db *DB) ClusterViewport(ctx context.Context, q ClusterQuery) ([]models.Cluster, float64, error) {
	ctx, cancel := db.opContext(ctx)
	defer cancel()

	gridSize := q.GridSize
	if gridSize <= 0 {
		gridSize = DefaultGridSize(q.Zoom)
	}

	wb := query.NewWhereBuilder()
	wb.AddBoundingBox(q.Bounds)
	wb.AddScope(q.Scope)
	wb.AddStatuses(models.VisibleStatuses)
	if q.RegionID > 0 {
		wb.AddClause("region_id = ?", q.RegionID)
	}
	whereClause, whereArgs := wb.BuildWithPrefix()

	// round(coord / gridSize) is the cell index; grouping by the index
	// snaps each asset to its nearest cell without materializing a grid.
	start := time.Now()
	rows, queryErr := db.conn.QueryContext(ctx, `
		SELECT
			avg(latitude), avg(longitude), count(*),
			count(*) FILTER (WHERE item_type = 'POP'),
			count(*) FILTER (WHERE item_type = 'SubPOP'),
			count(*) FILTER (WHERE item_type = 'Tower'),
			count(*) FILTER (WHERE item_type = 'Building'),
			count(*) FILTER (WHERE item_type = 'Equipment'),
			count(*) FILTER (WHERE item_type = 'Other')
		FROM infrastructure_assets
		`+whereClause+`
		GROUP BY round(latitude / ?), round(longitude / ?)
		ORDER BY count(*) DESC, avg(latitude), avg(longitude)
		LIMIT ?`, reorderClusterArgs(whereArgs, gridSize)...)
	if err := mapQueryErr("clusters", start, queryErr); err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clusters []models.Cluster
	for rows.Next() {
		var c models.Cluster
		counts := make([]int64, len(models.AssetTypes))
		dest := []interface{}{&c.Latitude, &c.Longitude, &c.Count}
		for i := range counts {
			dest = append(dest, &counts[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, err
		}
		c.ByType = make(map[string]int64)
		for i, t := range models.AssetTypes {
			if counts[i] > 0 {
				c.ByType[string(t)] = counts[i]
			}
		}
		clusters = append(clusters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapQueryErr("clusters", start, err)
	}
	return clusters, gridSize, nil
}

// reorderClusterArgs lays out query arguments in the order the SQL text
// consumes placeholders: WHERE args first, then the two GROUP BY grid
// divisors, then the LIMIT.
func reorderClusterArgs(whereArgs []interface{}, gridSize float64) []interface{} {
	args := make([]interface{}, 0, len(whereArgs)+3)
	args = append(args, whereArgs...)
	args = append(args, gridSize, gridSize, MaxClusters)
	return args
}
