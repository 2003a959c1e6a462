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

const commentColumns = `id, video_id, author_name, author_avatar, body,
	likes, source, position, created_at`

// AppendComment inserts a comment at the end of the video's comment
// list: position is max(position)+1 within the video, 0 for the first.
// Runs under ledgerMu like the video ledger, for the same reason.
func (db *DB) AppendComment(ctx context.Context, c *models.PreseededComment) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Source == "" {
		c.Source = "manual"
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	db.ledgerMu.Lock()
	defer db.ledgerMu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	var maxPos sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT MAX(position) FROM preseeded_comments WHERE video_id = ?`, c.VideoID).Scan(&maxPos)
	if err != nil {
		return fmt.Errorf("failed to read max comment position: %w", err)
	}

	next := int64(0)
	if maxPos.Valid {
		next = maxPos.Int64 + 1
	}
	c.Position = int(next)

	_, err = tx.ExecContext(ctx, `INSERT INTO preseeded_comments (`+commentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.VideoID, c.AuthorName, c.AuthorAvatar, c.Body,
		c.Likes, c.Source, c.Position, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit comment append: %w", err)
	}
	return nil
}

// GetComment retrieves a comment by ID.
func (db *DB) GetComment(ctx context.Context, id uuid.UUID) (*models.PreseededComment, error) {
	query := `SELECT ` + commentColumns + ` FROM preseeded_comments WHERE id = ?`
	var c models.PreseededComment
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.VideoID, &c.AuthorName, &c.AuthorAvatar, &c.Body,
		&c.Likes, &c.Source, &c.Position, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}
	return &c, nil
}

// GetCommentsByVideo retrieves a video's comments in display order.
func (db *DB) GetCommentsByVideo(ctx context.Context, videoID uuid.UUID) ([]models.PreseededComment, error) {
	query := `SELECT ` + commentColumns + ` FROM preseeded_comments
		WHERE video_id = ? ORDER BY position ASC`

	rows, err := db.conn.QueryContext(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer closeRows(rows)

	comments := []models.PreseededComment{}
	for rows.Next() {
		var c models.PreseededComment
		if err := rows.Scan(
			&c.ID, &c.VideoID, &c.AuthorName, &c.AuthorAvatar, &c.Body,
			&c.Likes, &c.Source, &c.Position, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// UpdateComment updates a comment's display fields. Position and the
// owning video never change through updates.
func (db *DB) UpdateComment(ctx context.Context, c *models.PreseededComment) error {
	query := `UPDATE preseeded_comments SET
		author_name = ?, author_avatar = ?, body = ?, likes = ?, source = ?
		WHERE id = ?`

	res, err := db.conn.ExecContext(ctx, query,
		c.AuthorName, c.AuthorAvatar, c.Body, c.Likes, c.Source, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return requireRowAffected(res)
}

// DeleteComment removes a single comment. Positions of the remaining
// comments are untouched; gaps only affect relative order.
func (db *DB) DeleteComment(ctx context.Context, videoID, id uuid.UUID) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM preseeded_comments WHERE id = ? AND video_id = ?`, id, videoID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return requireRowAffected(res)
}
