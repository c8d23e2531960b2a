// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/toweratlas/toweratlas/internal/access"
	"github.com/toweratlas/toweratlas/internal/errs"
	"github.com/toweratlas/toweratlas/internal/models"
)

// CreateGrant handles POST /api/v1/temporary-access. Elevated roles
// only.
func (h *Handler) CreateGrant(w http.ResponseWriter, r *http.Request) {
	ident, err := h.requireElevated(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req CreateGrantRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
	if err != nil {
		respondError(w, r, errs.New(errs.KindInvalidArgument, "expires_at must be RFC 3339"))
		return
	}

	start := time.Now()
	g, err := h.access.Grant(r.Context(), access.GrantRequest{
		UserID:      req.UserID,
		RegionID:    req.RegionID,
		RegionName:  req.RegionName,
		AccessLevel: models.AccessLevel(req.AccessLevel),
		Reason:      req.Reason,
		ExpiresAt:   expiresAt,
	}, ident)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, g, time.Since(start))
}

// RevokeGrant handles DELETE /api/v1/temporary-access/{grantID}.
// Elevated roles only.
func (h *Handler) RevokeGrant(w http.ResponseWriter, r *http.Request) {
	ident, err := h.requireElevated(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	start := time.Now()
	g, err := h.access.Revoke(r.Context(), chi.URLParam(r, "grantID"), ident)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, g, time.Since(start))
}

// RegionGrants handles GET /api/v1/temporary-access/region/{regionID}.
// Elevated roles only.
func (h *Handler) RegionGrants(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireElevated(r); err != nil {
		respondError(w, r, err)
		return
	}

	regionID, err := strconv.ParseInt(chi.URLParam(r, "regionID"), 10, 64)
	if err != nil || regionID <= 0 {
		respondError(w, r, errs.New(errs.KindInvalidArgument, "regionID must be a positive integer"))
		return
	}

	start := time.Now()
	grants, err := h.db.GrantsForRegion(r.Context(), regionID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if grants == nil {
		grants = []models.TemporaryAccessGrant{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"grants": grants,
		"count":  len(grants),
	}, time.Since(start))
}

// CleanupGrants handles POST /api/v1/temporary-access/cleanup: an
// on-demand sweep alongside the scheduled one. Elevated roles only;
// idempotent.
func (h *Handler) CleanupGrants(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireElevated(r); err != nil {
		respondError(w, r, err)
		return
	}

	start := time.Now()
	removed, err := h.access.Sweep(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"removed": removed}, time.Since(start))
}

// MyAccess handles GET /api/v1/temporary-access/my-access: the
// caller's regions and live grants with remaining time.
func (h *Handler) MyAccess(w http.ResponseWriter, r *http.Request) {
	ident, err := h.identity(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	start := time.Now()
	summary, err := h.access.MyAccess(r.Context(), ident)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary, time.Since(start))
}
