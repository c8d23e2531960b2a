// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package api

import (
	"net/http"
	"strconv"

	"github.com/toweratlas/toweratlas/internal/access"
	"github.com/toweratlas/toweratlas/internal/assets"
	"github.com/toweratlas/toweratlas/internal/audit"
	"github.com/toweratlas/toweratlas/internal/auth"
	"github.com/toweratlas/toweratlas/internal/config"
	"github.com/toweratlas/toweratlas/internal/database"
	"github.com/toweratlas/toweratlas/internal/errs"
	"github.com/toweratlas/toweratlas/internal/models"
	"github.com/toweratlas/toweratlas/internal/scope"
)

// ViewAsHeader carries the user ID an elevated caller wants to see the
// map as.
const ViewAsHeader = "X-View-As-User"

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	db         *database.DB
	scopes     *scope.Resolver
	access     *access.Service
	assets     *assets.Service
	auditStore audit.Store
	recorder   *audit.Recorder
	cfg        *config.Config
}

// NewHandler creates the Handler. auditStore and recorder may be nil
// when auditing is disabled.
func NewHandler(db *database.DB, scopes *scope.Resolver, accessSvc *access.Service, assetSvc *assets.Service, auditStore audit.Store, recorder *audit.Recorder, cfg *config.Config) *Handler {
	return &Handler{
		db:         db,
		scopes:     scopes,
		access:     accessSvc,
		assets:     assetSvc,
		auditStore: auditStore,
		recorder:   recorder,
		cfg:        cfg,
	}
}

// identity extracts the authenticated caller, which the auth middleware
// guarantees for routes under /api/v1.
func (h *Handler) identity(r *http.Request) (models.Identity, error) {
	ident, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return models.Identity{}, errs.New(errs.KindForbidden, "authentication required")
	}
	return ident, nil
}

// requireElevated rejects callers below manager. Rejections are
// audited at alert severity; repeated ones from the same caller are an
// operator signal.
func (h *Handler) requireElevated(r *http.Request) (models.Identity, error) {
	ident, err := h.identity(r)
	if err != nil {
		return ident, err
	}
	if !ident.Elevated() {
		if h.recorder != nil {
			h.recorder.Record(&audit.Event{
				Category: audit.CategoryAuth,
				Action:   audit.ActionAuthRejected,
				Severity: audit.SeverityAlert,
				Actor:    audit.Actor{UserID: ident.UserID, Username: ident.Username, Role: string(ident.Role)},
				Target:   audit.Target{Type: "endpoint", ID: r.URL.Path},
				Source:   audit.SourceFromContext(r.Context()),
			})
		}
		return ident, errs.New(errs.KindForbidden, "this operation requires an elevated role")
	}
	return ident, nil
}

// callerScope resolves the access scope for the request. View-as can
// arrive as the X-View-As-User header or a user_id query parameter; the
// header wins when both are present. Use of view-as is audited.
func (h *Handler) callerScope(r *http.Request) (models.Identity, models.Scope, error) {
	ident, err := h.identity(r)
	if err != nil {
		return ident, models.Scope{}, err
	}

	raw := r.Header.Get(ViewAsHeader)
	if raw == "" {
		raw = r.URL.Query().Get("user_id")
	}
	var viewAs int64
	if raw != "" {
		viewAs, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || viewAs <= 0 {
			return ident, models.Scope{}, errs.New(errs.KindInvalidArgument, "view-as user ID must be a positive integer")
		}
	}

	s, err := h.scopes.Resolve(r.Context(), ident, viewAs)
	if err != nil {
		return ident, models.Scope{}, err
	}

	if viewAs != 0 && viewAs != ident.UserID && h.recorder != nil {
		h.recorder.Record(&audit.Event{
			Category: audit.CategoryAuth,
			Action:   audit.ActionViewAsUsed,
			Actor:    audit.Actor{UserID: ident.UserID, Username: ident.Username, Role: string(ident.Role)},
			Target:   audit.Target{Type: "user", ID: strconv.FormatInt(viewAs, 10)},
			Source:   audit.SourceFromContext(r.Context()),
		})
	}
	return ident, s, nil
}
