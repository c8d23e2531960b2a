// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/toweratlas/toweratlas/internal/audit"
	"github.com/toweratlas/toweratlas/internal/errs"
)

// ListAuditEvents handles GET /api/v1/audit. Elevated roles only.
// Filters: category, action, actor_id, since, until (RFC 3339), plus
// limit/offset paging.
func (h *Handler) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireElevated(r); err != nil {
		respondError(w, r, err)
		return
	}
	if h.auditStore == nil {
		respondError(w, r, errs.New(errs.KindNotFound, "auditing is disabled"))
		return
	}

	f := audit.Filter{
		Category: audit.Category(r.URL.Query().Get("category")),
		Action:   r.URL.Query().Get("action"),
	}
	if raw := r.URL.Query().Get("actor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, r, errs.New(errs.KindInvalidArgument, "actor_id must be an integer"))
			return
		}
		f.ActorID = id
	}
	for name, dst := range map[string]*time.Time{"since": &f.Since, "until": &f.Until} {
		if raw := r.URL.Query().Get(name); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				respondError(w, r, errs.New(errs.KindInvalidArgument, "%s must be RFC 3339", name))
				return
			}
			*dst = t
		}
	}

	limit, err := intQuery(r, "limit", h.cfg.API.DefaultPageSize)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}
	f.Limit = limit
	if f.Offset, err = intQuery(r, "offset", 0); err != nil {
		respondError(w, r, err)
		return
	}

	start := time.Now()
	events, err := h.auditStore.List(r.Context(), f)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	}, time.Since(start))
}

// PurgeAuditEvents handles POST /api/v1/audit/purge, removing events
// older than the configured retention. Elevated roles only.
func (h *Handler) PurgeAuditEvents(w http.ResponseWriter, r *http.Request) {
	ident, err := h.requireElevated(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if h.auditStore == nil {
		respondError(w, r, errs.New(errs.KindNotFound, "auditing is disabled"))
		return
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -h.cfg.Audit.RetentionDays)
	start := time.Now()
	n, err := h.auditStore.Purge(r.Context(), cutoff)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if h.recorder != nil {
		h.recorder.Record(&audit.Event{
			Category: audit.CategoryAdmin,
			Action:   audit.ActionAuditPurged,
			Actor:    audit.Actor{UserID: ident.UserID, Username: ident.Username, Role: string(ident.Role)},
			Target:   audit.Target{Type: "audit", ID: "purge"},
			Source:   audit.SourceFromContext(r.Context()),
			Details:  map[string]interface{}{"purged": n, "cutoff": cutoff.Format(time.RFC3339)},
		})
	}
	respondJSON(w, http.StatusOK, map[string]int64{"purged": n}, time.Since(start))
}
