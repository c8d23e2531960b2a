// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/toweratlas/toweratlas/internal/audit"
	"github.com/toweratlas/toweratlas/internal/auth"
	"github.com/toweratlas/toweratlas/internal/middleware"
)

// NewRouter assembles the HTTP routes. /health and /metrics are open;
// everything under /api/v1 is authenticated.
func NewRouter(h *Handler, authmw *auth.Middleware) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(auditSource)
	r.Use(chimw.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimw.Timeout(timeoutOr(h.cfg.Server.Timeout, 30*time.Second)))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", ViewAsHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if !h.cfg.Security.RateLimitDisabled {
		r.Use(httprate.LimitByIP(h.cfg.Security.RateLimitReqs, h.cfg.Security.RateLimitWindow))
	}

	r.Get("/health", h.Health)
	r.Get("/health/live", h.HealthLive)
	r.Get("/health/ready", h.HealthReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authmw.Authenticate)

		r.Route("/map", func(r chi.Router) {
			r.Get("/viewport", h.Viewport)
			r.Get("/clusters", h.Clusters)
		})

		r.Route("/assets", func(r chi.Router) {
			r.Post("/", h.CreateAsset)
			r.Get("/{assetID}", h.GetAsset)
			r.Put("/{assetID}", h.UpdateAsset)
			r.Delete("/{assetID}", h.DeleteAsset)
		})

		r.Route("/temporary-access", func(r chi.Router) {
			r.Post("/", h.CreateGrant)
			r.Get("/my-access", h.MyAccess)
			r.Get("/region/{regionID}", h.RegionGrants)
			r.Post("/cleanup", h.CleanupGrants)
			r.Delete("/{grantID}", h.RevokeGrant)
		})

		r.Get("/notifications", h.ListNotifications)

		r.Route("/audit", func(r chi.Router) {
			r.Get("/", h.ListAuditEvents)
			r.Post("/purge", h.PurgeAuditEvents)
		})
	})

	return r
}

// auditSource attaches the client origin to the context so audit
// events carry it. Runs after RealIP so RemoteAddr is the true client.
func auditSource(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := audit.WithSource(r.Context(), audit.Source{
			IP:        r.RemoteAddr,
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// timeoutOr returns d when positive, def otherwise.
func timeoutOr(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
