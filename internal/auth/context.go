// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package auth

import (
	"context"

	"github.com/toweratlas/toweratlas/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the caller's identity.
func WithIdentity(ctx context.Context, ident models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFrom extracts the caller's identity from the context. The
// second return value is false for unauthenticated contexts.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(models.Identity)
	return ident, ok
}
