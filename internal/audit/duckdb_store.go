// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/toweratlas/toweratlas/internal/errs"
)

// Store persists audit events.
type Store interface {
	Write(ctx context.Context, e *Event) error
	List(ctx context.Context, f Filter) ([]Event, error)
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// DuckDBStore is the production Store, sharing the service's DuckDB
// connection. It owns the audit_events table.
type DuckDBStore struct {
	conn *sql.DB
}

// NewDuckDBStore creates the store and its table.
func NewDuckDBStore(conn *sql.DB) (*DuckDBStore, error) {
	s := &DuckDBStore{conn: conn}
	if _, err := conn.ExecContext(context.Background(), `
		CREATE TABLE IF NOT EXISTS audit_events (
			id         VARCHAR PRIMARY KEY,
			ts         TIMESTAMPTZ NOT NULL,
			category   VARCHAR NOT NULL,
			action     VARCHAR NOT NULL,
			severity   VARCHAR NOT NULL,
			actor_id   BIGINT NOT NULL,
			actor_name VARCHAR,
			actor_role VARCHAR,
			target_type VARCHAR,
			target_id  VARCHAR,
			target_name VARCHAR,
			source_ip  VARCHAR,
			user_agent VARCHAR,
			request_id VARCHAR,
			before_state VARCHAR,
			after_state VARCHAR,
			details    VARCHAR
		)`); err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "failed to create audit table")
	}
	if _, err := conn.ExecContext(context.Background(),
		`CREATE INDEX IF NOT EXISTS idx_audit_ts ON audit_events (ts)`); err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "failed to create audit index")
	}
	return s, nil
}

// Write appends one event.
func (s *DuckDBStore) Write(ctx context.Context, e *Event) error {
	var details string
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return errs.Wrap(errs.KindInternal, err, "failed to encode audit details")
		}
		details = string(raw)
	}
	before, err := encodeSnapshot(e.Before)
	if err != nil {
		return err
	}
	after, err := encodeSnapshot(e.After)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO audit_events
			(id, ts, category, action, severity,
			 actor_id, actor_name, actor_role,
			 target_type, target_id, target_name,
			 source_ip, user_agent, request_id,
			 before_state, after_state, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp.UTC(), string(e.Category), e.Action, string(e.Severity),
		e.Actor.UserID, e.Actor.Username, e.Actor.Role,
		e.Target.Type, e.Target.ID, e.Target.Name,
		e.Source.IP, e.Source.UserAgent, e.RequestID,
		before, after, details)
	if err != nil {
		return errs.Wrap(errs.KindInternal, err, "failed to write audit event")
	}
	return nil
}

func encodeSnapshot(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", errs.Wrap(errs.KindInternal, err, "failed to encode audit snapshot")
	}
	return string(raw), nil
}

// List returns events matching the filter, newest first.
func (s *DuckDBStore) List(ctx context.Context, f Filter) ([]Event, error) {
	var clauses []string
	var args []interface{}
	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, string(f.Category))
	}
	if f.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, f.Action)
	}
	if f.ActorID != 0 {
		clauses = append(clauses, "actor_id = ?")
		args = append(args, f.ActorID)
	}
	if !f.Since.IsZero() {
		clauses = append(clauses, "ts >= ?")
		args = append(args, f.Since.UTC())
	}
	if !f.Until.IsZero() {
		clauses = append(clauses, "ts <= ?")
		args = append(args, f.Until.UTC())
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, f.Offset)

	rows, err := s.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, ts, category, action, severity,
		       actor_id, actor_name, actor_role,
		       target_type, target_id, target_name,
		       source_ip, user_agent, request_id,
		       before_state, after_state, details
		FROM audit_events %s
		ORDER BY ts DESC
		LIMIT ? OFFSET ?`, where), args...)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "failed to list audit events")
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var category, severity, before, after, details string
		if err := rows.Scan(&e.ID, &e.Timestamp, &category, &e.Action, &severity,
			&e.Actor.UserID, &e.Actor.Username, &e.Actor.Role,
			&e.Target.Type, &e.Target.ID, &e.Target.Name,
			&e.Source.IP, &e.Source.UserAgent, &e.RequestID,
			&before, &after, &details); err != nil {
			return nil, errs.Wrap(errs.KindInternal, err, "failed to scan audit event")
		}
		e.Category = Category(category)
		e.Severity = Severity(severity)
		if before != "" {
			e.Before = json.RawMessage(before)
		}
		if after != "" {
			e.After = json.RawMessage(after)
		}
		if details != "" {
			if err := json.Unmarshal([]byte(details), &e.Details); err != nil {
				return nil, errs.Wrap(errs.KindInternal, err, "failed to decode audit details")
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Purge removes events older than the cutoff and returns how many were
// deleted. This is the only path that removes audit rows.
func (s *DuckDBStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM audit_events WHERE ts < ?`, before.UTC())
	if err != nil {
		return 0, errs.Wrap(errs.KindInternal, err, "failed to purge audit events")
	}
	n, _ := res.RowsAffected()
	return n, nil
}
