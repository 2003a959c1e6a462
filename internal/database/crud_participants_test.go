// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/swipelab/swipelab/internal/models"
)

func TestEnsureParticipantIdempotent(t *testing.T) {
	db := newTestDB(t)
	exp, _ := newTestExperiment(t, db)
	ctx := context.Background()

	first, err := db.EnsureParticipant(ctx, exp.ID, "prolific-001")
	if err != nil {
		t.Fatalf("first ensure failed: %v", err)
	}
	second, err := db.EnsureParticipant(ctx, exp.ID, "prolific-001")
	if err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected same participant row, got %s and %s", first.ID, second.ID)
	}
}

func TestEnsureParticipantScopedToExperiment(t *testing.T) {
	db := newTestDB(t)
	exp1, _ := newTestExperiment(t, db)
	exp2, _ := newTestExperiment(t, db)
	ctx := context.Background()

	p1, err := db.EnsureParticipant(ctx, exp1.ID, "prolific-001")
	if err != nil {
		t.Fatalf("ensure in exp1 failed: %v", err)
	}
	p2, err := db.EnsureParticipant(ctx, exp2.ID, "prolific-001")
	if err != nil {
		t.Fatalf("ensure in exp2 failed: %v", err)
	}
	if p1.ID == p2.ID {
		t.Error("same external id in different experiments must get distinct rows")
	}
}

func TestInsertInteractionAndExport(t *testing.T) {
	db := newTestDB(t)
	exp, acc := newTestExperiment(t, db)
	ctx := context.Background()

	v := appendTestVideo(t, db, exp, acc, "a.mp4")
	p, err := db.EnsureParticipant(ctx, exp.ID, "prolific-001")
	if err != nil {
		t.Fatalf("ensure participant failed: %v", err)
	}

	i := &models.Interaction{
		ParticipantUUID: p.ID,
		VideoID:         v.ID,
		InteractionType: "like",
		InteractionData: []byte(`{"doubleTap":true}`),
	}
	if err := db.InsertInteraction(ctx, i); err != nil {
		t.Fatalf("insert interaction failed: %v", err)
	}

	export, err := db.GetInteractionExport(ctx, exp.ID)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(export) != 1 {
		t.Fatalf("expected 1 export row, got %d", len(export))
	}
	row := export[0]
	if row.ParticipantID != "prolific-001" {
		t.Errorf("expected participant prolific-001, got %q", row.ParticipantID)
	}
	if row.VideoFilename != "a.mp4" {
		t.Errorf("expected filename a.mp4, got %q", row.VideoFilename)
	}
	if row.InteractionType != "like" {
		t.Errorf("expected type like, got %q", row.InteractionType)
	}
	if row.InteractionData != `{"doubleTap":true}` {
		t.Errorf("unexpected data payload %q", row.InteractionData)
	}
}

func TestUpsertViewSessionHeartbeat(t *testing.T) {
	db := newTestDB(t)
	exp, acc := newTestExperiment(t, db)
	ctx := context.Background()

	v := appendTestVideo(t, db, exp, acc, "a.mp4")
	if _, err := db.EnsureParticipant(ctx, exp.ID, "prolific-001"); err != nil {
		t.Fatalf("ensure participant failed: %v", err)
	}
	sessionID := uuid.New()
	start := time.Now().UTC().Truncate(time.Second)

	s := &models.ViewSession{
		SessionID:       sessionID,
		ParticipantID:   "prolific-001",
		VideoID:         v.ID,
		StartTime:       start,
		LastHeartbeat:   start,
		DurationSeconds: 0,
	}
	if err := db.UpsertViewSession(ctx, s); err != nil {
		t.Fatalf("first heartbeat failed: %v", err)
	}

	s.LastHeartbeat = start.Add(5 * time.Second)
	s.DurationSeconds = 5
	if err := db.UpsertViewSession(ctx, s); err != nil {
		t.Fatalf("second heartbeat failed: %v", err)
	}

	summaries, err := db.GetSessionSummaries(ctx, exp.ID)
	if err != nil {
		t.Fatalf("summaries failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].TotalDurationMs != 5000 {
		t.Errorf("expected 5000ms watched, got %d", summaries[0].TotalDurationMs)
	}
	if summaries[0].VideosWatched != 1 {
		t.Errorf("expected 1 video watched, got %d", summaries[0].VideosWatched)
	}
}
