// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package api

import (
	"errors"
	"net/http"

	"github.com/swipelab/swipelab/internal/auth"
	"github.com/swipelab/swipelab/internal/database"
	"github.com/swipelab/swipelab/internal/logging"
	"github.com/swipelab/swipelab/internal/models"
)

// Register creates a researcher account and returns a session token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req registerRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password, h.cfg.Security.BcryptCost)
	if err != nil {
		rw.InternalError(err)
		return
	}

	researcher := &models.Researcher{
		Email:        req.Email,
		Name:         req.Name,
		Lastname:     req.Lastname,
		PasswordHash: hash,
	}
	if err := h.db.CreateResearcher(r.Context(), researcher); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			rw.Conflict("email already registered")
			return
		}
		rw.InternalError(err)
		return
	}

	token, err := h.jwt.GenerateToken(researcher.ID, researcher.Email)
	if err != nil {
		rw.InternalError(err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("researcher_id", researcher.ID.String()).
		Msg("Researcher registered")
	rw.Created(tokenResponse{Token: token})
}

// Login verifies credentials and returns a session token. Unknown email
// and wrong password produce the same response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req loginRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	researcher, err := h.db.GetResearcherByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.Unauthorized("invalid credentials")
			return
		}
		rw.InternalError(err)
		return
	}

	if !auth.CheckPassword(researcher.PasswordHash, req.Password) {
		logging.Ctx(r.Context()).Warn().
			Str("researcher_id", researcher.ID.String()).
			Msg("Failed login attempt")
		rw.Unauthorized("invalid credentials")
		return
	}

	token, err := h.jwt.GenerateToken(researcher.ID, researcher.Email)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(tokenResponse{Token: token})
}

// Me returns the authenticated researcher's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	researcher, err := h.db.GetResearcher(r.Context(), researcherFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.Unauthorized("account no longer exists")
			return
		}
		rw.InternalError(err)
		return
	}
	rw.Success(researcher)
}
