// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package api

import (
	"net/http"
	"time"

	"github.com/toweratlas/toweratlas/internal/models"
)

// ListNotifications handles GET /api/v1/notifications: the caller's own
// notifications, newest first.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ident, err := h.identity(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	limit, err := intQuery(r, "limit", h.cfg.API.DefaultPageSize)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}

	start := time.Now()
	notifications, err := h.db.NotificationsForUser(r.Context(), ident.UserID, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"count":         len(notifications),
	}, time.Since(start))
}
