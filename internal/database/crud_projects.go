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

const projectColumns = `id, researcher_id, name, query_key, time_limit_seconds,
	redirect_url, end_screen_message, lock_all_positions, randomization_seed, created_at`

// CreateProject inserts a new project, applying the platform defaults for
// any zero-valued settings.
func (db *DB) CreateProject(ctx context.Context, p *models.Project) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.QueryKey == "" {
		p.QueryKey = "participantId"
	}
	if p.TimeLimitSeconds == 0 {
		p.TimeLimitSeconds = 300
	}

	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		p.ID, p.ResearcherID, p.Name, p.QueryKey, p.TimeLimitSeconds,
		p.RedirectURL, p.EndScreenMessage, p.LockAllPositions, p.RandomizationSeed, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetProject retrieves a project by ID.
func (db *DB) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	return scanProject(db.conn.QueryRowContext(ctx, query, id))
}

// ListProjects retrieves all projects owned by a researcher, newest first.
func (db *DB) ListProjects(ctx context.Context, researcherID uuid.UUID) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects
		WHERE researcher_id = ? ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, researcherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer closeRows(rows)

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.ResearcherID, &p.Name, &p.QueryKey, &p.TimeLimitSeconds,
			&p.RedirectURL, &p.EndScreenMessage, &p.LockAllPositions, &p.RandomizationSeed, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateProject updates a project's settings. Ownership is enforced by
// the researcher_id predicate, not by a prior read.
func (db *DB) UpdateProject(ctx context.Context, p *models.Project) error {
	query := `UPDATE projects SET
		name = ?, query_key = ?, time_limit_seconds = ?, redirect_url = ?,
		end_screen_message = ?, lock_all_positions = ?, randomization_seed = ?
		WHERE id = ? AND researcher_id = ?`

	res, err := db.conn.ExecContext(ctx, query,
		p.Name, p.QueryKey, p.TimeLimitSeconds, p.RedirectURL,
		p.EndScreenMessage, p.LockAllPositions, p.RandomizationSeed,
		p.ID, p.ResearcherID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return requireRowAffected(res)
}

// DeleteProject removes a project and everything beneath it: experiments,
// their videos, comments, participants, interactions and view sessions.
func (db *DB) DeleteProject(ctx context.Context, id, researcherID uuid.UUID) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND researcher_id = ?`, id, researcherID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if err = requireRowAffected(res); err != nil {
		return err
	}

	for _, q := range []string{
		`DELETE FROM interactions WHERE video_id IN (
			SELECT v.id FROM videos v JOIN experiments e ON v.experiment_id = e.id WHERE e.project_id = ?)`,
		`DELETE FROM view_sessions WHERE video_id IN (
			SELECT v.id FROM videos v JOIN experiments e ON v.experiment_id = e.id WHERE e.project_id = ?)`,
		`DELETE FROM preseeded_comments WHERE video_id IN (
			SELECT v.id FROM videos v JOIN experiments e ON v.experiment_id = e.id WHERE e.project_id = ?)`,
		`DELETE FROM videos WHERE experiment_id IN (SELECT id FROM experiments WHERE project_id = ?)`,
		`DELETE FROM participants WHERE experiment_id IN (SELECT id FROM experiments WHERE project_id = ?)`,
		`DELETE FROM experiments WHERE project_id = ?`,
	} {
		if _, err = tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("failed to cascade project delete: %w", err)
		}
	}

	return tx.Commit()
}

func scanProject(row *sql.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.ResearcherID, &p.Name, &p.QueryKey, &p.TimeLimitSeconds,
		&p.RedirectURL, &p.EndScreenMessage, &p.LockAllPositions, &p.RandomizationSeed, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	return &p, nil
}

// requireRowAffected converts a zero-row update or delete into ErrNotFound.
func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
