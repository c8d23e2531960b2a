// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

// Package api implements the HTTP surface: routing, request parsing and
// the response envelope shared by every endpoint.
package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/toweratlas/toweratlas/internal/errs"
	"github.com/toweratlas/toweratlas/internal/logging"
	"github.com/toweratlas/toweratlas/internal/middleware"
	"github.com/toweratlas/toweratlas/internal/models"
	"github.com/toweratlas/toweratlas/internal/validation"
)

// statusFromKind maps the service error taxonomy to HTTP status codes.
func statusFromKind(kind errs.Kind) int {
	switch kind {
	case errs.KindInvalidArgument:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON writes a success envelope.
func respondJSON(w http.ResponseWriter, status int, data interface{}, queryTime time.Duration) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: queryTime.Milliseconds(),
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes an error envelope. Validation errors carry their
// field details; everything else exposes only the stable code and a
// safe message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var details map[string]interface{}
	status := statusFromKind(errs.KindOf(err))
	code := errs.KindOf(err).String()

	if verr, ok := err.(*validation.RequestValidationError); ok {
		status = http.StatusBadRequest
		code = errs.KindInvalidArgument.String()
		details = map[string]interface{}{"fields": verr.Fields()}
	}

	if status >= 500 {
		logging.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("Request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    code,
			Message: errs.MessageOf(err),
			Details: details,
		},
	}
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		logging.Error().Err(encErr).Msg("Failed to encode error response")
	}
}

// floatQuery parses a required float query parameter.
func floatQuery(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errs.New(errs.KindInvalidArgument, "missing required parameter: %s", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errs.New(errs.KindInvalidArgument, "parameter %s must be a number", name)
	}
	return v, nil
}

// intQuery parses an optional int query parameter, returning def when
// absent.
func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.New(errs.KindInvalidArgument, "parameter %s must be an integer", name)
	}
	return v, nil
}

// parseBounds reads the four required viewport bounds parameters and
// validates their ordering.
func parseBounds(r *http.Request) (models.BoundingBox, error) {
	var b models.BoundingBox
	var err error
	if b.South, err = floatQuery(r, "south"); err != nil {
		return b, err
	}
	if b.North, err = floatQuery(r, "north"); err != nil {
		return b, err
	}
	if b.West, err = floatQuery(r, "west"); err != nil {
		return b, err
	}
	if b.East, err = floatQuery(r, "east"); err != nil {
		return b, err
	}
	if b.South > b.North {
		return b, errs.New(errs.KindInvalidArgument, "south must not exceed north")
	}
	if b.West > b.East {
		return b, errs.New(errs.KindInvalidArgument, "west must not exceed east")
	}
	return b, nil
}

// csvQuery splits a comma-separated query parameter into trimmed values.
func csvQuery(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// decodeBody decodes and validates a JSON request body.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errs.New(errs.KindInvalidArgument, "invalid JSON body")
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}
