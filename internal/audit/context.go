// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package audit

import "context"

type contextKey struct{}

var sourceKey contextKey

// WithSource attaches request origin metadata to the context so
// services can stamp it onto the events they record.
func WithSource(ctx context.Context, s Source) context.Context {
	return context.WithValue(ctx, sourceKey, s)
}

// SourceFromContext returns the origin metadata attached by WithSource,
// or a zero Source when none is present.
func SourceFromContext(ctx context.Context) Source {
	if s, ok := ctx.Value(sourceKey).(Source); ok {
		return s
	}
	return Source{}
}
