// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/toweratlas/toweratlas/internal/database"
	"github.com/toweratlas/toweratlas/internal/errs"
	"github.com/toweratlas/toweratlas/internal/models"
)

const defaultZoom = 10

// Viewport handles GET /api/v1/map/viewport.
//
// Required query parameters: south, north, west, east. Optional: zoom,
// limit, item_type, status, source, filter, user_id. Results are capped
// by the zoom-derived limit; the limited flag reports truncation.
func (h *Handler) Viewport(w http.ResponseWriter, r *http.Request) {
	_, callerScope, err := h.callerScope(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	bounds, err := parseBounds(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	zoom, err := intQuery(r, "zoom", defaultZoom)
	if err != nil {
		respondError(w, r, err)
		return
	}
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		respondError(w, r, err)
		return
	}

	q := database.ViewportQuery{
		Bounds: bounds,
		Zoom:   zoom,
		Scope:  callerScope,
		Search: r.URL.Query().Get("filter"),
		Limit:  limit,
	}
	for _, t := range csvQuery(r, "item_type") {
		q.Types = append(q.Types, models.AssetType(t))
	}
	for _, s := range csvQuery(r, "status") {
		q.Statuses = append(q.Statuses, models.AssetStatus(s))
	}
	for _, s := range csvQuery(r, "source") {
		q.Sources = append(q.Sources, models.AssetSource(s))
	}

	start := time.Now()
	items, limited, err := h.db.QueryViewport(r.Context(), q)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, models.ViewportData{
		Items:   items,
		Count:   len(items),
		Limited: limited,
		Limit:   database.ClampViewportLimit(limit, zoom),
		Bounds:  bounds,
		Zoom:    zoom,
	}, time.Since(start))
}

// Clusters handles GET /api/v1/map/clusters.
//
// At zoom levels at or above the clustering threshold individual
// markers are returned instead; a cluster of one is noise at street
// level.
func (h *Handler) Clusters(w http.ResponseWriter, r *http.Request) {
	_, callerScope, err := h.callerScope(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	bounds, err := parseBounds(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	zoom, err := intQuery(r, "zoom", defaultZoom)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var gridOverride float64
	if raw := r.URL.Query().Get("grid_size"); raw != "" {
		gridOverride, err = strconv.ParseFloat(raw, 64)
		if err != nil || gridOverride <= 0 {
			respondError(w, r, errs.New(errs.KindInvalidArgument, "grid_size must be a positive number"))
			return
		}
	}
	regionID, err := intQuery(r, "region_id", 0)
	if err != nil {
		respondError(w, r, err)
		return
	}

	start := time.Now()

	if zoom >= database.ClusterZoomThreshold {
		items, _, err := h.db.QueryViewport(r.Context(), database.ViewportQuery{
			Bounds: bounds,
			Zoom:   zoom,
			Scope:  callerScope,
		})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, models.ClusterData{
			Clusters: []models.Cluster{},
			Items:    items,
			Count:    len(items),
			Bounds:   bounds,
			Zoom:     zoom,
		}, time.Since(start))
		return
	}

	clusters, gridSize, err := h.db.ClusterViewport(r.Context(), database.ClusterQuery{
		Bounds:   bounds,
		Zoom:     zoom,
		Scope:    callerScope,
		GridSize: gridOverride,
		RegionID: int64(regionID),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	if clusters == nil {
		clusters = []models.Cluster{}
	}

	respondJSON(w, http.StatusOK, models.ClusterData{
		Clusters: clusters,
		Count:    len(clusters),
		Bounds:   bounds,
		Zoom:     zoom,
		GridSize: gridSize,
	}, time.Since(start))
}
