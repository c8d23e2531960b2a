// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

// Package errs defines the error taxonomy shared by all TowerAtlas services.
//
// Every user-visible failure carries one of six stable kinds. The API layer
// maps kinds to HTTP status codes and error code strings; internal callers
// branch on kinds via KindOf or the Is* helpers. Wrapped causes stay
// available through errors.Unwrap for logging, but are never exposed to
// clients.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the stable failure categories.
type Kind uint8

const (
	// KindInternal is an unexpected store or system failure.
	KindInternal Kind = iota

	// KindInvalidArgument is a malformed or missing input (bbox edges,
	// grant fields). Rejected before any store access.
	KindInvalidArgument

	// KindNotFound is an unknown user, region, grant, or asset.
	KindNotFound

	// KindConflict is a duplicate active grant or unique constraint hit.
	KindConflict

	// KindForbidden is a non-elevated identity attempting an
	// elevated-only operation.
	KindForbidden

	// KindTimeout is a store query that exceeded its bound.
	KindTimeout
)

// String returns the stable machine-readable code for the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "INVALID_ARGUMENT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindForbidden:
		return "FORBIDDEN"
	case KindTimeout:
		return "TIMEOUT"
	default:
		return "INTERNAL"
	}
}

// Error is a kinded error with a human-readable message and an optional
// wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the human-readable message without internal detail.
// This is what API responses expose to clients.
func (e *Error) Message() string {
	return e.Msg
}

// New creates a kinded error with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates a kinded error wrapping a cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from an error chain.
// Errors outside the taxonomy report KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message from an error chain.
// Errors outside the taxonomy yield a generic message so internal detail
// never leaks to callers.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "an internal error occurred"
}

// IsInvalidArgument reports whether err is an InvalidArgument error.
func IsInvalidArgument(err error) bool { return KindOf(err) == KindInvalidArgument }

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsConflict reports whether err is a Conflict error.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsForbidden reports whether err is a Forbidden error.
func IsForbidden(err error) bool { return KindOf(err) == KindForbidden }

// IsTimeout reports whether err is a Timeout error.
func IsTimeout(err error) bool { return KindOf(err) == KindTimeout }
