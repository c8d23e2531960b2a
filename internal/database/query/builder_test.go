// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package query

import (
	"reflect"
	"testing"

	"github.com/toweratlas/toweratlas/internal/models"
)

func TestWhereBuilderEmpty(t *testing.T) {
	wb := NewWhereBuilder()
	clause, args := wb.Build()
	if clause != "1=1" {
		t.Errorf("expected '1=1' for empty builder, got %q", clause)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}
	if !wb.IsEmpty() {
		t.Error("expected IsEmpty to be true")
	}
}

func TestWhereBuilderBoundingBox(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddBoundingBox(models.BoundingBox{South: 12.0, North: 14.0, West: 77.0, East: 79.0})

	clause, args := wb.Build()
	want := "latitude >= ? AND latitude <= ? AND longitude >= ? AND longitude <= ?"
	if clause != want {
		t.Errorf("clause = %q, want %q", clause, want)
	}
	wantArgs := []interface{}{12.0, 14.0, 77.0, 79.0}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %v, want %v", args, wantArgs)
	}
}

func TestWhereBuilderScope(t *testing.T) {
	tests := []struct {
		name       string
		scope      models.Scope
		wantClause string
		wantArgs   []interface{}
	}{
		{
			name:       "unrestricted adds nothing",
			scope:      models.Scope{Unrestricted: true},
			wantClause: "1=1",
			wantArgs:   []interface{}{},
		},
		{
			name:       "unrestricted with view-as target narrows to owner",
			scope:      models.Scope{Unrestricted: true, TargetOwnerID: 42},
			wantClause: "created_by = ?",
			wantArgs:   []interface{}{int64(42)},
		},
		{
			name:       "restricted with no regions is owner only",
			scope:      models.Scope{OwnerID: 7},
			wantClause: "created_by = ?",
			wantArgs:   []interface{}{int64(7)},
		},
		{
			name:       "restricted with regions is owner or region",
			scope:      models.Scope{OwnerID: 7, RegionIDs: []int64{3, 9}},
			wantClause: "(created_by = ? OR region_id IN (?, ?))",
			wantArgs:   []interface{}{int64(7), int64(3), int64(9)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := NewWhereBuilder()
			wb.AddScope(tt.scope)
			clause, args := wb.Build()
			if clause != tt.wantClause {
				t.Errorf("clause = %q, want %q", clause, tt.wantClause)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestWhereBuilderFilters(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddTypes([]models.AssetType{models.AssetTypeTower, models.AssetTypePOP})
	wb.AddStatuses([]models.AssetStatus{models.StatusActive})
	wb.AddSources(nil)
	wb.AddSearch("ring road")

	clause, args := wb.Build()
	want := "item_type IN (?, ?) AND status IN (?) AND name ILIKE ?"
	if clause != want {
		t.Errorf("clause = %q, want %q", clause, want)
	}
	wantArgs := []interface{}{"Tower", "POP", "Active", "%ring road%"}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %v, want %v", args, wantArgs)
	}
}

func TestWhereBuilderSkipsEmptyFilters(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddTypes(nil)
	wb.AddStatuses(nil)
	wb.AddSearch("")
	if !wb.IsEmpty() {
		t.Errorf("expected empty builder, got %d clauses", wb.Count())
	}
}

func TestWhereBuilderPrefix(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddClause("region_id = ?", int64(5))
	clause, args := wb.BuildWithPrefix()
	if clause != "WHERE region_id = ?" {
		t.Errorf("clause = %q", clause)
	}
	if len(args) != 1 || args[0] != int64(5) {
		t.Errorf("args = %v", args)
	}
}
