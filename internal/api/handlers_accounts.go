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

// CreateSocialAccount creates a creator persona.
func (h *Handler) CreateSocialAccount(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req accountRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	account := &models.SocialAccount{
		ResearcherID: researcherFromContext(r.Context()),
		Username:     req.Username,
		DisplayName:  req.DisplayName,
		AvatarURL:    req.AvatarURL,
	}
	if err := h.db.CreateSocialAccount(r.Context(), account); err != nil {
		rw.InternalError(err)
		return
	}
	rw.Created(account)
}

// ListSocialAccounts lists the researcher's creator personas.
func (h *Handler) ListSocialAccounts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	accounts, err := h.db.ListSocialAccounts(r.Context(), researcherFromContext(r.Context()))
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(accounts)
}

// UpdateSocialAccount updates a creator persona.
func (h *Handler) UpdateSocialAccount(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := pathUUID(rw, r, "accountId")
	if !ok {
		return
	}
	var req accountRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	account := &models.SocialAccount{
		ID:           id,
		ResearcherID: researcherFromContext(r.Context()),
		Username:     req.Username,
		DisplayName:  req.DisplayName,
		AvatarURL:    req.AvatarURL,
	}
	if err := h.db.UpdateSocialAccount(r.Context(), account); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("social account not found")
			return
		}
		rw.InternalError(err)
		return
	}
	rw.Success(account)
}

// DeleteSocialAccount deletes a creator persona unless videos still
// reference it.
func (h *Handler) DeleteSocialAccount(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := pathUUID(rw, r, "accountId")
	if !ok {
		return
	}
	err := h.db.DeleteSocialAccount(r.Context(), id, researcherFromContext(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, database.ErrAccountInUse):
			rw.Conflict("social account still referenced by videos")
		case errors.Is(err, database.ErrNotFound):
			rw.NotFound("social account not found")
		default:
			rw.InternalError(err)
		}
		return
	}
	rw.NoContent()
}
