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
	"time"

	"github.com/google/uuid"

	"github.com/swipelab/swipelab/internal/models"
)

// ErrAccountInUse is returned when deleting a social account that still
// has videos attached.
var ErrAccountInUse = errors.New("social account still referenced by videos")

const accountColumns = `id, researcher_id, username, display_name, avatar_url, created_at`

// CreateSocialAccount inserts a new creator persona.
func (db *DB) CreateSocialAccount(ctx context.Context, a *models.SocialAccount) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO social_accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.conn.ExecContext(ctx, query,
		a.ID, a.ResearcherID, a.Username, a.DisplayName, a.AvatarURL, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create social account: %w", err)
	}
	return nil
}

// GetSocialAccount retrieves a social account by ID.
func (db *DB) GetSocialAccount(ctx context.Context, id uuid.UUID) (*models.SocialAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM social_accounts WHERE id = ?`
	var a models.SocialAccount
	err := db.conn.QueryRowContext(ctx, query, id).
		Scan(&a.ID, &a.ResearcherID, &a.Username, &a.DisplayName, &a.AvatarURL, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan social account: %w", err)
	}
	return &a, nil
}

// ListSocialAccounts retrieves all social accounts owned by a researcher.
func (db *DB) ListSocialAccounts(ctx context.Context, researcherID uuid.UUID) ([]models.SocialAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM social_accounts
		WHERE researcher_id = ? ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, researcherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list social accounts: %w", err)
	}
	defer closeRows(rows)

	accounts := []models.SocialAccount{}
	for rows.Next() {
		var a models.SocialAccount
		if err := rows.Scan(&a.ID, &a.ResearcherID, &a.Username, &a.DisplayName, &a.AvatarURL, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan social account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateSocialAccount updates a social account's persona fields.
func (db *DB) UpdateSocialAccount(ctx context.Context, a *models.SocialAccount) error {
	query := `UPDATE social_accounts SET username = ?, display_name = ?, avatar_url = ?
		WHERE id = ? AND researcher_id = ?`

	res, err := db.conn.ExecContext(ctx, query,
		a.Username, a.DisplayName, a.AvatarURL, a.ID, a.ResearcherID)
	if err != nil {
		return fmt.Errorf("failed to update social account: %w", err)
	}
	return requireRowAffected(res)
}

// DeleteSocialAccount removes a social account. Accounts still attached
// to videos are refused so feed reads never lose their joined persona.
func (db *DB) DeleteSocialAccount(ctx context.Context, id, researcherID uuid.UUID) error {
	var inUse int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM videos WHERE social_account_id = ?`, id).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("failed to check social account usage: %w", err)
	}
	if inUse > 0 {
		return ErrAccountInUse
	}

	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM social_accounts WHERE id = ? AND researcher_id = ?`, id, researcherID)
	if err != nil {
		return fmt.Errorf("failed to delete social account: %w", err)
	}
	return requireRowAffected(res)
}
