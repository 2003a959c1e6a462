// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/swipelab/swipelab/internal/models"
)

// ErrEmailTaken is returned when registering an already-used email.
var ErrEmailTaken = errors.New("email already registered")

// CreateResearcher inserts a new researcher account. The caller hashes
// the password before this point.
func (db *DB) CreateResearcher(ctx context.Context, r *models.Researcher) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO researchers (id, email, name, lastname, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		r.ID, strings.ToLower(r.Email), r.Name, r.Lastname, r.PasswordHash, r.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create researcher: %w", err)
	}
	return nil
}

// GetResearcherByEmail retrieves a researcher by email (case-insensitive).
func (db *DB) GetResearcherByEmail(ctx context.Context, email string) (*models.Researcher, error) {
	query := `SELECT id, email, name, lastname, password_hash, created_at
		FROM researchers WHERE email = ?`
	row := db.conn.QueryRowContext(ctx, query, strings.ToLower(email))
	return scanResearcher(row)
}

// GetResearcher retrieves a researcher by ID.
func (db *DB) GetResearcher(ctx context.Context, id uuid.UUID) (*models.Researcher, error) {
	query := `SELECT id, email, name, lastname, password_hash, created_at
		FROM researchers WHERE id = ?`
	row := db.conn.QueryRowContext(ctx, query, id)
	return scanResearcher(row)
}

func scanResearcher(row *sql.Row) (*models.Researcher, error) {
	var r models.Researcher
	err := row.Scan(&r.ID, &r.Email, &r.Name, &r.Lastname, &r.PasswordHash, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan researcher: %w", err)
	}
	return &r, nil
}

// isUniqueConstraintError reports whether err is a DuckDB unique
// constraint violation. DuckDB's messages contain "unique constraint"
// or "duplicate key".
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "unique constraint") || strings.Contains(errMsg, "duplicate key")
}
