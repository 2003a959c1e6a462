// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/swipelab/swipelab/internal/database"
	"github.com/swipelab/swipelab/internal/feed"
	"github.com/swipelab/swipelab/internal/logging"
	"github.com/swipelab/swipelab/internal/models"
)

// GetFeed delivers the composed feed for one participant. This is the
// public entry point behind the share link; no authentication, the
// unguessable publicUrl token is the capability.
//
// The participant id is read from the query parameter named by the
// project's queryKey setting ("participantId" unless the researcher
// matched it to their recruiting platform). A request without the
// parameter gets the raw ledger order, which is what the researcher's
// preview iframe does.
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	experiment, project, ok := h.resolvePublicExperiment(rw, r, chi.URLParam(r, "publicUrl"))
	if !ok {
		return
	}

	queryKey := project.QueryKey
	if queryKey == "" {
		queryKey = "participantId"
	}
	participantID := r.URL.Query().Get(queryKey)

	// "preview" is the dashboard's sentinel, not a real subject; it gets
	// the raw ledger order and is never enrolled.
	if participantID != "" && participantID != "preview" {
		if _, err := h.db.EnsureParticipant(r.Context(), experiment.ID, participantID); err != nil {
			rw.InternalError(err)
			return
		}
	}

	videos, err := h.db.GetVideosByExperiment(r.Context(), experiment.ID)
	if err != nil {
		rw.InternalError(err)
		return
	}

	composed := feed.Compose(videos, project.RandomizationSeed, participantID, project.LockAllPositions)

	logging.Ctx(r.Context()).Debug().
		Str("experiment_id", experiment.ID.String()).
		Int("cards", len(composed)).
		Bool("preview", participantID == "" || participantID == "preview").
		Msg("Feed composed")

	rw.Success(models.FeedResponse{
		ExperimentID:     experiment.ID,
		ExperimentName:   experiment.Name,
		PersistTimer:     experiment.PersistTimer,
		ShowUnmutePrompt: experiment.ShowUnmutePrompt,
		ProjectSettings: models.ProjectSettings{
			QueryKey:         queryKey,
			TimeLimitSeconds: project.TimeLimitSeconds,
			RedirectURL:      project.RedirectURL,
			EndScreenMessage: project.EndScreenMessage,
		},
		Videos: composed,
	})
}

// PostInteraction logs one participant event against a video.
func (h *Handler) PostInteraction(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req interactionRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	experiment, _, ok := h.resolvePublicExperiment(rw, r, req.PublicURL)
	if !ok {
		return
	}
	if !h.videoInExperiment(rw, r, req.VideoID, experiment.ID) {
		return
	}

	participant, err := h.db.EnsureParticipant(r.Context(), experiment.ID, req.ParticipantID)
	if err != nil {
		rw.InternalError(err)
		return
	}

	interaction := &models.Interaction{
		ParticipantUUID: participant.ID,
		VideoID:         req.VideoID,
		InteractionType: req.InteractionType,
		InteractionData: req.InteractionData,
	}
	if err := h.db.InsertInteraction(r.Context(), interaction); err != nil {
		rw.InternalError(err)
		return
	}
	rw.Created(interaction)
}

// Heartbeat upserts a watch-time session. The player sends one every
// few seconds per visible video; the row keyed by sessionId accumulates
// the watched duration.
func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req heartbeatRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	experiment, _, ok := h.resolvePublicExperiment(rw, r, req.PublicURL)
	if !ok {
		return
	}
	if !h.videoInExperiment(rw, r, req.VideoID, experiment.ID) {
		return
	}
	if _, err := h.db.EnsureParticipant(r.Context(), experiment.ID, req.ParticipantID); err != nil {
		rw.InternalError(err)
		return
	}

	session := &models.ViewSession{
		SessionID:       req.SessionID,
		ParticipantID:   req.ParticipantID,
		VideoID:         req.VideoID,
		DurationSeconds: req.DurationSeconds,
	}
	if err := h.db.UpsertViewSession(r.Context(), session); err != nil {
		rw.InternalError(err)
		return
	}
	rw.NoContent()
}

// resolvePublicExperiment maps a share token to its experiment and
// project, enforcing the kill switch. An unknown token and an inactive
// experiment are distinguishable (404 vs 403) so the player can show
// "study closed" instead of a dead link.
func (h *Handler) resolvePublicExperiment(rw *ResponseWriter, r *http.Request, publicURL string) (*models.Experiment, *models.Project, bool) {
	experiment, err := h.db.GetExperimentByPublicURL(r.Context(), publicURL)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("experiment not found")
			return nil, nil, false
		}
		rw.InternalError(err)
		return nil, nil, false
	}
	if !experiment.IsActive {
		rw.Forbidden("experiment is not active")
		return nil, nil, false
	}

	project, err := h.db.GetProject(r.Context(), experiment.ProjectID)
	if err != nil {
		rw.InternalError(err)
		return nil, nil, false
	}
	return experiment, project, true
}

// videoInExperiment verifies the target video belongs to the share
// link's experiment, so a leaked video id from one study cannot receive
// events through another study's link.
func (h *Handler) videoInExperiment(rw *ResponseWriter, r *http.Request, videoID, experimentID uuid.UUID) bool {
	video, err := h.db.GetVideo(r.Context(), videoID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("video not found")
			return false
		}
		rw.InternalError(err)
		return false
	}
	if video.ExperimentID != experimentID {
		rw.NotFound("video not found")
		return false
	}
	return true
}
