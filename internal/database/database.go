// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

// Package database provides DuckDB-backed persistence for the study
// platform: researcher accounts, projects, experiments, videos with the
// position ledger, participants, interactions, and view sessions.
//
// All write paths that touch positions run inside transactions; see
// crud_videos.go for the ledger invariants.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/swipelab/swipelab/internal/config"
	"github.com/swipelab/swipelab/internal/logging"
)

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig

	// ledgerMu serializes every write that assigns positions. DuckDB's
	// snapshot isolation is optimistic: two concurrent max(position)+1
	// transactions do not touch the same rows, so both commit and the
	// slot is claimed twice. The store is embedded, this process is the
	// only writer, so an in-process mutex closes the race.
	ledgerMu sync.Mutex
}

// New creates a new database connection and initializes the schema.
// An empty cfg.Path opens an in-memory database, which tests rely on.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	connStr := fmt.Sprintf("?access_mode=read_write&threads=%d&max_memory=%s", numThreads, cfg.MaxMemory)
	if cfg.Path != "" {
		// Ensure the parent directory exists so first startup does not fail
		// with "No such file or directory". 0750 per gosec G301.
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
		connStr = cfg.Path + connStr
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn: conn,
		cfg:  cfg,
	}

	db.configureConnectionPool()

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", numThreads).
		Msg("Database initialized")

	return db, nil
}

// configureConnectionPool tunes database/sql for DuckDB's embedded model.
// DuckDB handles its own parallelism internally, so a small pool suffices.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(4)
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(0)
}

// initialize creates the schema if it does not exist yet.
func (db *DB) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return db.createSchema(ctx)
}

// Conn exposes the underlying connection for health checks.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close database connection")
	}
}
