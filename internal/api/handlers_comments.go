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

// Pre-seeded comments are researcher-authored props staged on a video
// card so the stimulus carries a believable social context. Participants
// never write comments; everything here sits behind researcher auth and
// the experiment ownership chain.

// ListComments returns a video's comments in display order.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	video, ok := h.ownedVideo(rw, r)
	if !ok {
		return
	}

	comments, err := h.db.GetCommentsByVideo(r.Context(), video.ID)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(comments)
}

// CreateComment appends a comment to the end of the video's comment
// list. Clients never choose the position.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	video, ok := h.ownedVideo(rw, r)
	if !ok {
		return
	}

	var req commentRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	comment := &models.PreseededComment{
		VideoID:      video.ID,
		AuthorName:   req.AuthorName,
		AuthorAvatar: req.AuthorAvatar,
		Body:         req.Body,
		Likes:        req.Likes,
		Source:       req.Source,
	}
	if err := h.db.AppendComment(r.Context(), comment); err != nil {
		rw.InternalError(err)
		return
	}
	rw.Created(comment)
}

// UpdateComment updates a comment's display fields. The position and the
// owning video are immutable.
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	comment, ok := h.ownedComment(rw, r)
	if !ok {
		return
	}

	var req commentRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	comment.AuthorName = req.AuthorName
	comment.AuthorAvatar = req.AuthorAvatar
	comment.Body = req.Body
	comment.Likes = req.Likes
	if req.Source != "" {
		comment.Source = req.Source
	}

	if err := h.db.UpdateComment(r.Context(), comment); err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(comment)
}

// DeleteComment removes one comment. Remaining positions are untouched.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	comment, ok := h.ownedComment(rw, r)
	if !ok {
		return
	}

	if err := h.db.DeleteComment(r.Context(), comment.VideoID, comment.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("comment not found")
			return
		}
		rw.InternalError(err)
		return
	}
	rw.NoContent()
}

// ownedVideo resolves the videoId path parameter within the requester's
// experiment. Foreign and unknown videos are indistinguishable (404).
func (h *Handler) ownedVideo(rw *ResponseWriter, r *http.Request) (*models.Video, bool) {
	experiment, ok := h.ownedExperiment(rw, r)
	if !ok {
		return nil, false
	}
	videoID, ok := pathUUID(rw, r, "videoId")
	if !ok {
		return nil, false
	}

	video, err := h.db.GetVideo(r.Context(), videoID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("video not found")
			return nil, false
		}
		rw.InternalError(err)
		return nil, false
	}
	if video.ExperimentID != experiment.ID {
		rw.NotFound("video not found")
		return nil, false
	}
	return video, true
}

// ownedComment resolves the commentId path parameter beneath an owned
// video.
func (h *Handler) ownedComment(rw *ResponseWriter, r *http.Request) (*models.PreseededComment, bool) {
	video, ok := h.ownedVideo(rw, r)
	if !ok {
		return nil, false
	}
	commentID, ok := pathUUID(rw, r, "commentId")
	if !ok {
		return nil, false
	}

	comment, err := h.db.GetComment(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("comment not found")
			return nil, false
		}
		rw.InternalError(err)
		return nil, false
	}
	if comment.VideoID != video.ID {
		rw.NotFound("comment not found")
		return nil, false
	}
	return comment, true
}
