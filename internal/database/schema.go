// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package database

import (
	"context"
	"fmt"
)

// createSchema creates all tables and indexes. Statements are idempotent
// so startup against an existing database file is a no-op.
func (db *DB) createSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS researchers (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			lastname TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS projects (
			id UUID PRIMARY KEY,
			researcher_id UUID NOT NULL,
			name TEXT NOT NULL,
			query_key TEXT NOT NULL DEFAULT 'participantId',
			time_limit_seconds INTEGER NOT NULL DEFAULT 300,
			redirect_url TEXT NOT NULL DEFAULT '',
			end_screen_message TEXT NOT NULL DEFAULT '',
			lock_all_positions BOOLEAN NOT NULL DEFAULT FALSE,
			randomization_seed BIGINT NOT NULL DEFAULT 42,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS experiments (
			id UUID PRIMARY KEY,
			project_id UUID NOT NULL,
			name TEXT NOT NULL,
			public_url TEXT NOT NULL UNIQUE,
			persist_timer BOOLEAN NOT NULL DEFAULT FALSE,
			show_unmute_prompt BOOLEAN NOT NULL DEFAULT TRUE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS social_accounts (
			id UUID PRIMARY KEY,
			researcher_id UUID NOT NULL,
			username TEXT NOT NULL,
			display_name TEXT NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// position is the zero-based ledger slot; dense 0..N-1 after every
		// reorder, gaps tolerated after deletes.
		`CREATE TABLE IF NOT EXISTS videos (
			id UUID PRIMARY KEY,
			experiment_id UUID NOT NULL,
			social_account_id UUID NOT NULL,
			filename TEXT NOT NULL,
			caption TEXT NOT NULL DEFAULT '',
			likes INTEGER NOT NULL DEFAULT 0,
			comments INTEGER NOT NULL DEFAULT 0,
			shares INTEGER NOT NULL DEFAULT 0,
			song TEXT NOT NULL DEFAULT '',
			description TEXT,
			position INTEGER NOT NULL,
			is_locked BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Researcher-authored comments rendered on a video's card. position
		// is the per-video display order, appended max(position)+1.
		`CREATE TABLE IF NOT EXISTS preseeded_comments (
			id UUID PRIMARY KEY,
			video_id UUID NOT NULL,
			author_name TEXT NOT NULL,
			author_avatar TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL,
			likes INTEGER NOT NULL DEFAULT 0,
			source TEXT NOT NULL DEFAULT 'manual',
			position INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS participants (
			id UUID PRIMARY KEY,
			experiment_id UUID NOT NULL,
			participant_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (experiment_id, participant_id)
		)`,

		`CREATE TABLE IF NOT EXISTS interactions (
			id UUID PRIMARY KEY,
			participant_uuid UUID NOT NULL,
			video_id UUID NOT NULL,
			interaction_type TEXT NOT NULL,
			interaction_data TEXT,
			ts TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS view_sessions (
			id UUID PRIMARY KEY,
			session_id UUID NOT NULL UNIQUE,
			participant_id TEXT NOT NULL,
			video_id UUID NOT NULL,
			start_time TIMESTAMP NOT NULL,
			last_heartbeat TIMESTAMP NOT NULL,
			duration_seconds DOUBLE NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_videos_experiment_position
			ON videos (experiment_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_preseeded_comments_video
			ON preseeded_comments (video_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_experiments_project
			ON experiments (project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_participant
			ON interactions (participant_uuid)`,
		`CREATE INDEX IF NOT EXISTS idx_view_sessions_participant
			ON view_sessions (participant_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}
