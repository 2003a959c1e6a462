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

	"github.com/swipelab/swipelab/internal/logging"
	"github.com/swipelab/swipelab/internal/metrics"
	"github.com/swipelab/swipelab/internal/models"
)

// Position ledger invariants, enforced by the methods in this file:
//
//   - Append assigns max(position)+1 within the experiment, or 0 for the
//     first video. Position-assigning writes serialize on db.ledgerMu;
//     DuckDB's optimistic snapshot isolation alone would let two
//     concurrent appends read the same maximum and both commit.
//   - Reorder accepts only a complete permutation of the experiment's
//     video ids and rewrites positions to the dense range 0..N-1
//     atomically. Any rejection leaves every position untouched.
//   - Deletes never renumber survivors. Gaps are legal; relative order
//     is preserved and the next append still lands past the old maximum.

const videoColumns = `id, experiment_id, social_account_id, filename, caption,
	likes, comments, shares, song, description, position, is_locked, created_at`

// AppendVideo inserts a video at the end of the experiment's ledger.
// The max(position) read and the insert run under ledgerMu so two
// concurrent appends cannot claim the same slot.
func (db *DB) AppendVideo(ctx context.Context, v *models.Video) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
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
		`SELECT MAX(position) FROM videos WHERE experiment_id = ?`, v.ExperimentID).Scan(&maxPos)
	if err != nil {
		return fmt.Errorf("failed to read max position: %w", err)
	}

	next := int64(0)
	if maxPos.Valid {
		next = maxPos.Int64 + 1
	}
	v.Position = int(next)

	_, err = tx.ExecContext(ctx, `INSERT INTO videos (`+videoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.ExperimentID, v.SocialAccountID, v.Filename, v.Caption,
		v.Likes, v.Comments, v.Shares, v.Song, v.Description, v.Position, v.IsLocked, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit append: %w", err)
	}

	metrics.LedgerAppendsTotal.Inc()
	return nil
}

// ReorderVideos rewrites the experiment's positions to match ids: the
// video at ids[i] gets position i. The request must be a complete
// permutation of the experiment's videos; otherwise a
// *ReorderValidationError is returned and nothing changes.
func (db *DB) ReorderVideos(ctx context.Context, experimentID uuid.UUID, ids []uuid.UUID) (err error) {
	db.ledgerMu.Lock()
	defer db.ledgerMu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM videos WHERE experiment_id = ?`, experimentID)
	if err != nil {
		return fmt.Errorf("failed to read video ids: %w", err)
	}
	existing := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			closeRows(rows)
			return fmt.Errorf("failed to scan video id: %w", err)
		}
		existing[id] = true
	}
	closeRows(rows)
	if err = rows.Err(); err != nil {
		return fmt.Errorf("failed to read video ids: %w", err)
	}

	if verr := validateReorder(existing, ids); verr != nil {
		metrics.LedgerReordersTotal.WithLabelValues(verr.Code).Inc()
		err = verr
		return err
	}

	for i, id := range ids {
		if _, err = tx.ExecContext(ctx,
			`UPDATE videos SET position = ? WHERE id = ? AND experiment_id = ?`,
			i, id, experimentID); err != nil {
			return fmt.Errorf("failed to update position: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}

	metrics.LedgerReordersTotal.WithLabelValues("applied").Inc()
	return nil
}

// validateReorder checks that ids is exactly a permutation of the keys
// of existing. An empty request against an empty experiment is valid.
func validateReorder(existing map[uuid.UUID]bool, ids []uuid.UUID) *ReorderValidationError {
	if len(ids) != len(existing) {
		return &ReorderValidationError{
			Code:     ReorderCountMismatch,
			Expected: len(existing),
			Provided: len(ids),
		}
	}

	seen := make(map[uuid.UUID]bool, len(ids))
	var dupes, unknown []uuid.UUID
	for _, id := range ids {
		if seen[id] {
			dupes = append(dupes, id)
			continue
		}
		seen[id] = true
		if !existing[id] {
			unknown = append(unknown, id)
		}
	}
	if len(dupes) > 0 {
		return &ReorderValidationError{
			Code:     ReorderDuplicateID,
			Expected: len(existing),
			Provided: len(ids),
			IDs:      dupes,
		}
	}
	if len(unknown) > 0 {
		return &ReorderValidationError{
			Code:     ReorderUnknownID,
			Expected: len(existing),
			Provided: len(ids),
			IDs:      unknown,
		}
	}
	return nil
}

// GetVideo retrieves a video by ID.
func (db *DB) GetVideo(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = ?`
	var v models.Video
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.ExperimentID, &v.SocialAccountID, &v.Filename, &v.Caption,
		&v.Likes, &v.Comments, &v.Shares, &v.Song, &v.Description, &v.Position, &v.IsLocked, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan video: %w", err)
	}
	return &v, nil
}

// GetVideosByExperiment retrieves an experiment's videos in ledger order
// with the creator persona joined. This is both the researcher listing
// and the feed composer's input.
func (db *DB) GetVideosByExperiment(ctx context.Context, experimentID uuid.UUID) ([]models.Video, error) {
	query := `SELECT v.id, v.experiment_id, v.social_account_id, v.filename, v.caption,
		v.likes, v.comments, v.shares, v.song, v.description, v.position, v.is_locked, v.created_at,
		a.id, a.researcher_id, a.username, a.display_name, a.avatar_url, a.created_at
		FROM videos v
		JOIN social_accounts a ON v.social_account_id = a.id
		WHERE v.experiment_id = ?
		ORDER BY v.position ASC`

	rows, err := db.conn.QueryContext(ctx, query, experimentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer closeRows(rows)

	videos := []models.Video{}
	for rows.Next() {
		var v models.Video
		var a models.SocialAccount
		if err := rows.Scan(
			&v.ID, &v.ExperimentID, &v.SocialAccountID, &v.Filename, &v.Caption,
			&v.Likes, &v.Comments, &v.Shares, &v.Song, &v.Description, &v.Position, &v.IsLocked, &v.CreatedAt,
			&a.ID, &a.ResearcherID, &a.Username, &a.DisplayName, &a.AvatarURL, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		v.SocialAccount = &a
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// UpdateVideo updates a video's display metadata and lock flag. The
// position itself changes only through ReorderVideos or a delete.
func (db *DB) UpdateVideo(ctx context.Context, v *models.Video) error {
	query := `UPDATE videos SET
		social_account_id = ?, filename = ?, caption = ?, likes = ?, comments = ?,
		shares = ?, song = ?, description = ?, is_locked = ?
		WHERE id = ?`

	res, err := db.conn.ExecContext(ctx, query,
		v.SocialAccountID, v.Filename, v.Caption, v.Likes, v.Comments,
		v.Shares, v.Song, v.Description, v.IsLocked, v.ID)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	return requireRowAffected(res)
}

// BulkDeleteVideos removes the given videos from an experiment along with
// their interactions, view sessions and pre-seeded comments. Survivors
// keep their positions;
// the resulting gaps are tolerated by composition and by future appends.
func (db *DB) BulkDeleteVideos(ctx context.Context, experimentID uuid.UUID, ids []uuid.UUID) (deleted int64, err error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, experimentID)

	// Scope the child deletes to this experiment too, so a foreign video
	// id in the request cannot touch another experiment's logged data.
	scoped := `IN (SELECT id FROM videos WHERE id IN (` + placeholders + `) AND experiment_id = ?)`
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM interactions WHERE video_id `+scoped, args...); err != nil {
		return 0, fmt.Errorf("failed to delete interactions: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM view_sessions WHERE video_id `+scoped, args...); err != nil {
		return 0, fmt.Errorf("failed to delete view sessions: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM preseeded_comments WHERE video_id `+scoped, args...); err != nil {
		return 0, fmt.Errorf("failed to delete comments: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM videos WHERE id IN (`+placeholders+`) AND experiment_id = ?`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete videos: %w", err)
	}
	deleted, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}

	if deleted < int64(len(ids)) {
		logging.Warn().
			Str("experiment_id", experimentID.String()).
			Int("requested", len(ids)).
			Int64("deleted", deleted).
			Msg("Bulk delete skipped ids not in experiment")
	}
	return deleted, nil
}

// DeleteVideo removes a single video. Positions of the remaining videos
// are untouched.
func (db *DB) DeleteVideo(ctx context.Context, experimentID, id uuid.UUID) error {
	deleted, err := db.BulkDeleteVideos(ctx, experimentID, []uuid.UUID{id})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}
