// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package auth

import (
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/toweratlas/toweratlas/internal/logging"
	"github.com/toweratlas/toweratlas/internal/models"
)

// devIdentity is the identity injected when auth mode is "none".
// Development only; config validation rejects "none" in production.
var devIdentity = models.Identity{UserID: 1, Username: "dev", Role: models.RoleAdmin}

// Middleware authenticates requests and stores the identity in the
// request context.
type Middleware struct {
	verifier *Verifier
	enabled  bool
}

// NewMiddleware creates the auth middleware. With mode "none" every
// request runs as the development admin identity.
func NewMiddleware(mode, secret string) *Middleware {
	if mode == "none" {
		return &Middleware{enabled: false}
	}
	return &Middleware{
		verifier: NewVerifier(secret),
		enabled:  true,
	}
}

// Authenticate is the chi middleware. Requests without a valid bearer
// token are rejected with 401.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), devIdentity)))
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			unauthorized(w, "missing bearer token")
			return
		}

		ident, err := m.verifier.Verify(token)
		if err != nil {
			logging.Debug().
				Err(err).
				Str("path", r.URL.Path).
				Msg("Token verification failed")
			unauthorized(w, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "error",
		"error": map[string]string{
			"code":    "UNAUTHENTICATED",
			"message": msg,
		},
	})
}
