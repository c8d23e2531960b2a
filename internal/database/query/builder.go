// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

// Package query provides SQL query building utilities for the database
// package. Predicates are composed as typed clauses ANDed together, so
// predicate composition is unit-testable independent of the store and no
// stringly-typed WHERE assembly leaks into query call sites.
package query

import (
	"fmt"
	"strings"

	"github.com/toweratlas/toweratlas/internal/models"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddBoundingBox(bounds)
//	wb.AddScope(scope)
//	whereClause, args := wb.Build()
//	// latitude >= ? AND latitude <= ? AND longitude >= ? AND longitude <= ?
//	//   AND (created_by = ? OR region_id IN (?, ?))
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
// This is useful for custom conditions not covered by helper methods.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddBoundingBox adds spatial containment clauses for the viewport:
// latitude between south/north, longitude between west/east.
func (wb *WhereBuilder) AddBoundingBox(b models.BoundingBox) *WhereBuilder {
	wb.clauses = append(wb.clauses,
		"latitude >= ?", "latitude <= ?",
		"longitude >= ?", "longitude <= ?")
	wb.args = append(wb.args, b.South, b.North, b.West, b.East)
	return wb
}

// AddScope adds the access-scope predicate computed for the caller.
//
// Unrestricted scopes add nothing unless a "view as" target is set, in
// which case results narrow to assets created by that user. Restricted
// scopes match assets the caller owns or assets inside a permitted region.
func (wb *WhereBuilder) AddScope(scope models.Scope) *WhereBuilder {
	if scope.Unrestricted {
		if scope.TargetOwnerID != 0 {
			wb.clauses = append(wb.clauses, "created_by = ?")
			wb.args = append(wb.args, scope.TargetOwnerID)
		}
		return wb
	}

	if len(scope.RegionIDs) == 0 {
		wb.clauses = append(wb.clauses, "created_by = ?")
		wb.args = append(wb.args, scope.OwnerID)
		return wb
	}

	placeholders := make([]string, len(scope.RegionIDs))
	wb.args = append(wb.args, scope.OwnerID)
	for i, id := range scope.RegionIDs {
		placeholders[i] = "?"
		wb.args = append(wb.args, id)
	}
	wb.clauses = append(wb.clauses,
		fmt.Sprintf("(created_by = ? OR region_id IN (%s))", strings.Join(placeholders, ", ")))
	return wb
}

// AddTypes adds an asset type filter using an IN clause.
// An empty slice is skipped.
func (wb *WhereBuilder) AddTypes(types []models.AssetType) *WhereBuilder {
	return addInClause(wb, "item_type", types)
}

// AddStatuses adds a lifecycle status filter using an IN clause.
// An empty slice is skipped.
func (wb *WhereBuilder) AddStatuses(statuses []models.AssetStatus) *WhereBuilder {
	return addInClause(wb, "status", statuses)
}

// AddSources adds a provenance filter (manual/kml) using an IN clause.
// An empty slice is skipped.
func (wb *WhereBuilder) AddSources(sources []models.AssetSource) *WhereBuilder {
	return addInClause(wb, "source", sources)
}

// AddSearch adds a case-insensitive substring match on the asset name.
// An empty search string is skipped.
func (wb *WhereBuilder) AddSearch(text string) *WhereBuilder {
	if text != "" {
		wb.clauses = append(wb.clauses, "name ILIKE ?")
		wb.args = append(wb.args, "%"+text+"%")
	}
	return wb
}

// addInClause appends "column IN (?, ...)" for any string-kinded slice.
func addInClause[T ~string](wb *WhereBuilder, column string, values []T) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		wb.args = append(wb.args, string(v))
	}
	wb.clauses = append(wb.clauses,
		fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	return wb
}

// Build constructs the final WHERE clause and returns it with arguments.
// Clauses are joined with "AND". Returns ("1=1", []) if no clauses were
// added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
