// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package api

import (
	"errors"
	"net/http"

	"github.com/swipelab/swipelab/internal/database"
	"github.com/swipelab/swipelab/internal/models"
)

// AppendVideo adds a video at the end of the experiment's feed order.
// Clients never choose the position; the ledger assigns the next slot.
func (h *Handler) AppendVideo(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	experiment, ok := h.ownedExperiment(rw, r)
	if !ok {
		return
	}

	var req videoRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}
	if _, err := h.db.GetSocialAccount(r.Context(), req.SocialAccountID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.BadRequest("socialAccountId does not exist")
			return
		}
		rw.InternalError(err)
		return
	}

	video := &models.Video{
		ExperimentID:    experiment.ID,
		SocialAccountID: req.SocialAccountID,
		Filename:        req.Filename,
		Caption:         req.Caption,
		Likes:           req.Likes,
		Comments:        req.Comments,
		Shares:          req.Shares,
		Song:            req.Song,
		Description:     req.Description,
		IsLocked:        req.IsLocked,
	}
	if err := h.db.AppendVideo(r.Context(), video); err != nil {
		rw.InternalError(err)
		return
	}
	rw.Created(video)
}

// ListVideos returns the experiment's videos in ledger order.
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	experiment, ok := h.ownedExperiment(rw, r)
	if !ok {
		return
	}

	videos, err := h.db.GetVideosByExperiment(r.Context(), experiment.ID)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(videos)
}

// UpdateVideo updates a video's display metadata and lock flag.
func (h *Handler) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	video, ok := h.ownedVideo(rw, r)
	if !ok {
		return
	}

	var req videoRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	video.SocialAccountID = req.SocialAccountID
	video.Filename = req.Filename
	video.Caption = req.Caption
	video.Likes = req.Likes
	video.Comments = req.Comments
	video.Shares = req.Shares
	video.Song = req.Song
	video.Description = req.Description
	video.IsLocked = req.IsLocked

	if err := h.db.UpdateVideo(r.Context(), video); err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(video)
}

// ReorderVideos applies a complete new ordering: the video at index i of
// videoIds gets position i. Partial orderings are rejected with the
// specific reason so the dashboard can resync.
func (h *Handler) ReorderVideos(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	experiment, ok := h.ownedExperiment(rw, r)
	if !ok {
		return
	}

	var req reorderRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	err := h.db.ReorderVideos(r.Context(), experiment.ID, req.VideoIDs)
	if err != nil {
		var verr *database.ReorderValidationError
		if errors.As(err, &verr) {
			rw.ValidationFailed(verr.Error(), map[string]interface{}{
				"code":     verr.Code,
				"expected": verr.Expected,
				"provided": verr.Provided,
				"videoIds": verr.IDs,
			})
			return
		}
		rw.InternalError(err)
		return
	}

	videos, err := h.db.GetVideosByExperiment(r.Context(), experiment.ID)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(videos)
}

// DeleteVideo removes one video. Remaining positions are untouched.
func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	video, ok := h.ownedVideo(rw, r)
	if !ok {
		return
	}

	if err := h.db.DeleteVideo(r.Context(), video.ExperimentID, video.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("video not found")
			return
		}
		rw.InternalError(err)
		return
	}
	rw.NoContent()
}

// BulkDeleteVideos removes a batch of videos in one transaction.
func (h *Handler) BulkDeleteVideos(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	experiment, ok := h.ownedExperiment(rw, r)
	if !ok {
		return
	}

	var req bulkDeleteRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	deleted, err := h.db.BulkDeleteVideos(r.Context(), experiment.ID, req.VideoIDs)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(map[string]int64{"deleted": deleted})
}
