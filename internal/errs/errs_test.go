// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "direct kinded error",
			err:  New(KindNotFound, "region %q not found", "Gujarat"),
			want: KindNotFound,
		},
		{
			name: "wrapped kinded error",
			err:  fmt.Errorf("grant create: %w", New(KindConflict, "active grant exists")),
			want: KindConflict,
		},
		{
			name: "plain error defaults to internal",
			err:  errors.New("disk full"),
			want: KindInternal,
		},
		{
			name: "kinded error wrapping a cause keeps its kind",
			err:  Wrap(KindTimeout, errors.New("context deadline exceeded"), "viewport query"),
			want: KindTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageOf_DoesNotLeakInternals(t *testing.T) {
	cause := errors.New("duckdb: IO error on /data/toweratlas.duckdb")
	err := Wrap(KindInternal, cause, "failed to query assets")

	msg := MessageOf(err)
	if msg != "failed to query assets" {
		t.Errorf("MessageOf() = %q, want clean message", msg)
	}

	// A plain error must yield the generic message, never its own text.
	if got := MessageOf(cause); got != "an internal error occurred" {
		t.Errorf("MessageOf(plain) = %q", got)
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("constraint violation")
	err := Wrap(KindConflict, cause, "duplicate grant")

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindInvalidArgument, "INVALID_ARGUMENT"},
		{KindNotFound, "NOT_FOUND"},
		{KindConflict, "CONFLICT"},
		{KindForbidden, "FORBIDDEN"},
		{KindTimeout, "TIMEOUT"},
		{KindInternal, "INTERNAL"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestIsHelpers(t *testing.T) {
	if !IsConflict(New(KindConflict, "dup")) {
		t.Error("IsConflict failed")
	}
	if !IsForbidden(New(KindForbidden, "no")) {
		t.Error("IsForbidden failed")
	}
	if IsNotFound(New(KindConflict, "dup")) {
		t.Error("IsNotFound false positive")
	}
}
