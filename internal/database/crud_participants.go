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

// EnsureParticipant returns the participant row for (experiment,
// participantID), creating it on first contact. Enrollment is implicit:
// the first feed request or interaction creates the row.
func (db *DB) EnsureParticipant(ctx context.Context, experimentID uuid.UUID, participantID string) (*models.Participant, error) {
	query := `SELECT id, experiment_id, participant_id, created_at
		FROM participants WHERE experiment_id = ? AND participant_id = ?`

	var p models.Participant
	err := db.conn.QueryRowContext(ctx, query, experimentID, participantID).
		Scan(&p.ID, &p.ExperimentID, &p.ParticipantID, &p.CreatedAt)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up participant: %w", err)
	}

	p = models.Participant{
		ID:            uuid.New(),
		ExperimentID:  experimentID,
		ParticipantID: participantID,
		CreatedAt:     time.Now().UTC(),
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO participants (id, experiment_id, participant_id, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.ExperimentID, p.ParticipantID, p.CreatedAt)
	if err != nil {
		// Lost a race with a concurrent first contact; read the winner.
		if isUniqueConstraintError(err) {
			err = db.conn.QueryRowContext(ctx, query, experimentID, participantID).
				Scan(&p.ID, &p.ExperimentID, &p.ParticipantID, &p.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("failed to re-read participant: %w", err)
			}
			return &p, nil
		}
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}
	return &p, nil
}

// InsertInteraction logs one participant event.
func (db *DB) InsertInteraction(ctx context.Context, i *models.Interaction) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now().UTC()
	}

	var data any
	if len(i.InteractionData) > 0 {
		data = string(i.InteractionData)
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO interactions (id, participant_uuid, video_id, interaction_type, interaction_data, ts)
		VALUES (?, ?, ?, ?, ?, ?)`,
		i.ID, i.ParticipantUUID, i.VideoID, i.InteractionType, data, i.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}

// UpsertViewSession records a watch-time heartbeat. The first heartbeat
// for a session id creates the row; later ones advance last_heartbeat
// and the accumulated duration.
func (db *DB) UpsertViewSession(ctx context.Context, s *models.ViewSession) error {
	now := time.Now().UTC()
	if s.StartTime.IsZero() {
		s.StartTime = now
	}
	if s.LastHeartbeat.IsZero() {
		s.LastHeartbeat = now
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE view_sessions SET last_heartbeat = ?, duration_seconds = ? WHERE session_id = ?`,
		s.LastHeartbeat, s.DurationSeconds, s.SessionID)
	if err != nil {
		return fmt.Errorf("failed to update view session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO view_sessions (id, session_id, participant_id, video_id, start_time, last_heartbeat, duration_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.SessionID, s.ParticipantID, s.VideoID, s.StartTime, s.LastHeartbeat, s.DurationSeconds)
	if err != nil {
		if isUniqueConstraintError(err) {
			// Concurrent first heartbeat; retry as an update.
			_, err = db.conn.ExecContext(ctx,
				`UPDATE view_sessions SET last_heartbeat = ?, duration_seconds = ? WHERE session_id = ?`,
				s.LastHeartbeat, s.DurationSeconds, s.SessionID)
			if err == nil {
				return nil
			}
		}
		return fmt.Errorf("failed to insert view session: %w", err)
	}
	return nil
}

// GetSessionSummaries aggregates per-participant watch activity for an
// experiment's results view, most recent participants first.
func (db *DB) GetSessionSummaries(ctx context.Context, experimentID uuid.UUID) ([]models.ParticipantSessionSummary, error) {
	query := `SELECT p.participant_id,
		MIN(vs.start_time),
		MAX(vs.last_heartbeat),
		CAST(COALESCE(SUM(vs.duration_seconds), 0) * 1000 AS BIGINT),
		COUNT(DISTINCT vs.video_id)
		FROM participants p
		LEFT JOIN view_sessions vs ON vs.participant_id = p.participant_id
			AND vs.video_id IN (SELECT id FROM videos WHERE experiment_id = p.experiment_id)
		WHERE p.experiment_id = ?
		GROUP BY p.participant_id, p.created_at
		ORDER BY p.created_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, experimentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session summaries: %w", err)
	}
	defer closeRows(rows)

	summaries := []models.ParticipantSessionSummary{}
	for rows.Next() {
		var s models.ParticipantSessionSummary
		var started, ended sql.NullTime
		if err := rows.Scan(&s.ParticipantID, &started, &ended, &s.TotalDurationMs, &s.VideosWatched); err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}
		if started.Valid {
			s.StartedAt = started.Time
		}
		if ended.Valid {
			s.EndedAt = &ended.Time
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// InteractionExportRow is one flattened row of the CSV results export.
type InteractionExportRow struct {
	ParticipantID   string
	VideoFilename   string
	VideoPosition   int
	InteractionType string
	InteractionData string
	Timestamp       time.Time
}

// GetInteractionExport returns every logged interaction for an
// experiment, joined with participant and video metadata, in
// chronological order.
func (db *DB) GetInteractionExport(ctx context.Context, experimentID uuid.UUID) ([]InteractionExportRow, error) {
	query := `SELECT p.participant_id, v.filename, v.position, i.interaction_type,
		COALESCE(i.interaction_data, ''), i.ts
		FROM interactions i
		JOIN participants p ON i.participant_uuid = p.id
		JOIN videos v ON i.video_id = v.id
		WHERE v.experiment_id = ?
		ORDER BY i.ts ASC`

	rows, err := db.conn.QueryContext(ctx, query, experimentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query interaction export: %w", err)
	}
	defer closeRows(rows)

	export := []InteractionExportRow{}
	for rows.Next() {
		var r InteractionExportRow
		if err := rows.Scan(&r.ParticipantID, &r.VideoFilename, &r.VideoPosition,
			&r.InteractionType, &r.InteractionData, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan interaction row: %w", err)
		}
		export = append(export, r)
	}
	return export, rows.Err()
}
