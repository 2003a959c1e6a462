// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package database

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/swipelab/swipelab/internal/models"
)

const experimentColumns = `id, project_id, name, public_url, persist_timer,
	show_unmute_prompt, is_active, created_at`

// NewPublicURL generates the unguessable share token for an experiment:
// 16 random bytes hex-encoded, so 32 lowercase hex characters.
func NewPublicURL() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate public url: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// CreateExperiment inserts a new experiment. A PublicURL is generated
// when the caller leaves it empty.
func (db *DB) CreateExperiment(ctx context.Context, e *models.Experiment) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.PublicURL == "" {
		url, err := NewPublicURL()
		if err != nil {
			return err
		}
		e.PublicURL = url
	}

	query := `INSERT INTO experiments (` + experimentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		e.ID, e.ProjectID, e.Name, e.PublicURL, e.PersistTimer,
		e.ShowUnmutePrompt, e.IsActive, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create experiment: %w", err)
	}
	return nil
}

// GetExperiment retrieves an experiment by ID.
func (db *DB) GetExperiment(ctx context.Context, id uuid.UUID) (*models.Experiment, error) {
	query := `SELECT ` + experimentColumns + ` FROM experiments WHERE id = ?`
	return scanExperiment(db.conn.QueryRowContext(ctx, query, id))
}

// GetExperimentByPublicURL retrieves an experiment by its share token.
// Inactive experiments are still returned; the feed handler decides how
// to respond to the kill switch.
func (db *DB) GetExperimentByPublicURL(ctx context.Context, publicURL string) (*models.Experiment, error) {
	query := `SELECT ` + experimentColumns + ` FROM experiments WHERE public_url = ?`
	return scanExperiment(db.conn.QueryRowContext(ctx, query, publicURL))
}

// GetExperimentForResearcher retrieves an experiment only if it belongs
// to one of the researcher's projects.
func (db *DB) GetExperimentForResearcher(ctx context.Context, id, researcherID uuid.UUID) (*models.Experiment, error) {
	query := `SELECT e.id, e.project_id, e.name, e.public_url, e.persist_timer,
		e.show_unmute_prompt, e.is_active, e.created_at
		FROM experiments e
		JOIN projects p ON e.project_id = p.id
		WHERE e.id = ? AND p.researcher_id = ?`
	return scanExperiment(db.conn.QueryRowContext(ctx, query, id, researcherID))
}

// ListExperiments retrieves all experiments in a project, newest first.
func (db *DB) ListExperiments(ctx context.Context, projectID uuid.UUID) ([]models.Experiment, error) {
	query := `SELECT ` + experimentColumns + ` FROM experiments
		WHERE project_id = ? ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	defer closeRows(rows)

	experiments := []models.Experiment{}
	for rows.Next() {
		var e models.Experiment
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Name, &e.PublicURL, &e.PersistTimer,
			&e.ShowUnmutePrompt, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan experiment: %w", err)
		}
		experiments = append(experiments, e)
	}
	return experiments, rows.Err()
}

// UpdateExperiment updates an experiment's name and player settings.
// PublicURL is immutable after creation.
func (db *DB) UpdateExperiment(ctx context.Context, e *models.Experiment) error {
	query := `UPDATE experiments SET
		name = ?, persist_timer = ?, show_unmute_prompt = ?, is_active = ?
		WHERE id = ?`

	res, err := db.conn.ExecContext(ctx, query,
		e.Name, e.PersistTimer, e.ShowUnmutePrompt, e.IsActive, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update experiment: %w", err)
	}
	return requireRowAffected(res)
}

// DeleteExperiment removes an experiment and its videos, comments,
// participants, interactions and view sessions.
func (db *DB) DeleteExperiment(ctx context.Context, id uuid.UUID) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	res, err := tx.ExecContext(ctx, `DELETE FROM experiments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete experiment: %w", err)
	}
	if err = requireRowAffected(res); err != nil {
		return err
	}

	for _, q := range []string{
		`DELETE FROM interactions WHERE video_id IN (SELECT id FROM videos WHERE experiment_id = ?)`,
		`DELETE FROM view_sessions WHERE video_id IN (SELECT id FROM videos WHERE experiment_id = ?)`,
		`DELETE FROM preseeded_comments WHERE video_id IN (SELECT id FROM videos WHERE experiment_id = ?)`,
		`DELETE FROM videos WHERE experiment_id = ?`,
		`DELETE FROM participants WHERE experiment_id = ?`,
	} {
		if _, err = tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("failed to cascade experiment delete: %w", err)
		}
	}

	return tx.Commit()
}

func scanExperiment(row *sql.Row) (*models.Experiment, error) {
	var e models.Experiment
	err := row.Scan(&e.ID, &e.ProjectID, &e.Name, &e.PublicURL, &e.PersistTimer,
		&e.ShowUnmutePrompt, &e.IsActive, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan experiment: %w", err)
	}
	return &e, nil
}
