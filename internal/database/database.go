// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

// Package database provides the DuckDB-backed persistence layer for
// TowerAtlas: infrastructure assets, regions, users, region assignments,
// temporary access grants and notifications, plus the bounded viewport
// and cluster queries the map surface is built on.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/toweratlas/toweratlas/internal/config"
	"github.com/toweratlas/toweratlas/internal/errs"
	"github.com/toweratlas/toweratlas/internal/logging"
	"github.com/toweratlas/toweratlas/internal/metrics"
)

// DB wraps the DuckDB connection and carries the per-query timeout
// applied to every operation.
type DB struct {
	conn         *sql.DB
	queryTimeout time.Duration
}

// New opens (or creates) the DuckDB database at the configured path and
// initializes the schema. Path ":memory:" yields an in-memory database,
// used by tests.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	dsn := cfg.Path
	if dsn != ":memory:" && cfg.Threads > 0 {
		dsn = fmt.Sprintf("%s?threads=%d", cfg.Path, cfg.Threads)
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "failed to open database")
	}

	// DuckDB is an embedded engine; keep the pool small so mutating
	// statements do not pile up write transaction conflicts.
	maxConns := cfg.MaxOpenConns
	if maxConns <= 0 {
		maxConns = 1
	}
	conn.SetMaxOpenConns(maxConns)
	conn.SetMaxIdleConns(maxConns)
	conn.SetConnMaxLifetime(0)

	db := &DB{
		conn:         conn,
		queryTimeout: cfg.QueryTimeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.QueryTimeout)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, errs.Wrap(errs.KindInternal, err, "failed to connect to database")
	}

	if err := db.initSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	logging.Info().
		Str("path", cfg.Path).
		Dur("query_timeout", cfg.QueryTimeout).
		Msg("Database initialized")

	return db, nil
}

// Conn exposes the underlying connection for subsystems that manage
// their own tables, such as the audit store.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.opContext(ctx)
	defer cancel()
	if err := db.conn.PingContext(ctx); err != nil {
		return errs.Wrap(errs.KindInternal, err, "database unreachable")
	}
	return nil
}

// opContext derives a context bounded by the configured query timeout.
func (db *DB) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.queryTimeout)
}

// mapQueryErr converts low-level query failures into the service error
// taxonomy and records the query metric. Deadline expiry surfaces as a
// timeout so callers can map it to 504 instead of a generic 500.
func mapQueryErr(op string, start time.Time, err error) error {
	metrics.RecordDBQuery(op, time.Since(start), err)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(errs.KindTimeout, err, "query timed out")
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.KindNotFound, err, "record not found")
	}
	return errs.Wrap(errs.KindInternal, err, "%s failed", op)
}
