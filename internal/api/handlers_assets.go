// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/toweratlas/toweratlas/internal/assets"
	"github.com/toweratlas/toweratlas/internal/models"
)

// CreateAsset handles POST /api/v1/assets.
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	ident, err := h.identity(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req CreateAssetRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	start := time.Now()
	a, err := h.assets.Create(r.Context(), assets.CreateRequest{
		Name:      req.Name,
		ItemType:  models.AssetType(req.ItemType),
		Status:    models.AssetStatus(req.Status),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Source:    models.AssetSource(req.Source),
	}, ident)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, a, time.Since(start))
}

// GetAsset handles GET /api/v1/assets/{assetID}. Assets outside the
// caller's scope read as absent.
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	_, callerScope, err := h.callerScope(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	start := time.Now()
	a, err := h.assets.Get(r.Context(), chi.URLParam(r, "assetID"), callerScope)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, a, time.Since(start))
}

// UpdateAsset handles PUT /api/v1/assets/{assetID}.
func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	ident, err := h.identity(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req UpdateAssetRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	start := time.Now()
	a, err := h.assets.Update(r.Context(), chi.URLParam(r, "assetID"), assets.UpdateRequest{
		Name:           req.Name,
		ItemType:       models.AssetType(req.ItemType),
		Status:         models.AssetStatus(req.Status),
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		RedetectRegion: req.RedetectRegion,
	}, ident)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, a, time.Since(start))
}

// DeleteAsset handles DELETE /api/v1/assets/{assetID}.
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	ident, err := h.identity(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	start := time.Now()
	if err := h.assets.Delete(r.Context(), chi.URLParam(r, "assetID"), ident); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true}, time.Since(start))
}
