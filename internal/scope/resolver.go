// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

// Package scope resolves the access scope applied to every spatial
// query. Scope is computed fresh per request; nothing about region
// membership or grant liveness is cached between requests, so expiry
// and revocation take effect on the next query.
package scope

import (
	"context"
	"sort"
	"time"

	"github.com/toweratlas/toweratlas/internal/errs"
	"github.com/toweratlas/toweratlas/internal/models"
)

// Store is the slice of the persistence layer scope resolution reads.
type Store interface {
	PermanentRegionIDs(ctx context.Context, userID int64) ([]int64, error)
	ActiveGrantRegionIDs(ctx context.Context, userID int64, now time.Time) ([]int64, error)
}

// Resolver computes access scopes.
type Resolver struct {
	store Store
	now   func() time.Time
}

// NewResolver creates a Resolver backed by the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store, now: time.Now}
}

// Resolve computes the scope for the calling identity.
//
// Elevated roles (admin, manager) get an unrestricted scope. When viewAs
// is non-zero an elevated caller sees exactly what that user's ownership
// predicate would show, which is how support staff reproduce a reported
// "missing asset". Non-elevated callers asking to view as someone else
// get Forbidden.
//
// For everyone else the scope is the caller's own assets plus assets in
// permitted regions: permanent assignments unioned with regions backed
// by a live temporary grant, where live is recomputed from expires_at at
// this instant.
func (r *Resolver) Resolve(ctx context.Context, ident models.Identity, viewAs int64) (models.Scope, error) {
	if ident.Elevated() {
		return models.Scope{
			Unrestricted:  true,
			OwnerID:       ident.UserID,
			TargetOwnerID: viewAs,
		}, nil
	}

	if viewAs != 0 && viewAs != ident.UserID {
		return models.Scope{}, errs.New(errs.KindForbidden, "view-as requires an elevated role")
	}

	permanent, err := r.store.PermanentRegionIDs(ctx, ident.UserID)
	if err != nil {
		return models.Scope{}, err
	}
	granted, err := r.store.ActiveGrantRegionIDs(ctx, ident.UserID, r.now())
	if err != nil {
		return models.Scope{}, err
	}

	return models.Scope{
		OwnerID:   ident.UserID,
		RegionIDs: mergeRegionIDs(permanent, granted),
	}, nil
}

// mergeRegionIDs unions two ID sets into a sorted, deduplicated slice.
func mergeRegionIDs(a, b []int64) []int64 {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(a)+len(b))
	merged := make([]int64, 0, len(a)+len(b))
	for _, ids := range [][]int64{a, b} {
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				merged = append(merged, id)
			}
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })
	return merged
}
