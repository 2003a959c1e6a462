// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package api

import (
	"errors"
	"net/http"

	"github.com/swipelab/swipelab/internal/database"
	"github.com/swipelab/swipelab/internal/logging"
	"github.com/swipelab/swipelab/internal/models"
)

// CreateProject creates a project for the authenticated researcher.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req projectRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	project := &models.Project{
		ResearcherID:      researcherFromContext(r.Context()),
		Name:              req.Name,
		QueryKey:          req.QueryKey,
		TimeLimitSeconds:  req.TimeLimitSeconds,
		RedirectURL:       req.RedirectURL,
		EndScreenMessage:  req.EndScreenMessage,
		LockAllPositions:  req.LockAllPositions,
		RandomizationSeed: req.RandomizationSeed,
	}
	if err := h.db.CreateProject(r.Context(), project); err != nil {
		rw.InternalError(err)
		return
	}
	rw.Created(project)
}

// ListProjects lists the researcher's projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	projects, err := h.db.ListProjects(r.Context(), researcherFromContext(r.Context()))
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(projects)
}

// GetProject returns one of the researcher's projects.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	project, ok := h.ownedProject(rw, r)
	if !ok {
		return
	}
	rw.Success(project)
}

// UpdateProject updates a project's settings. A changed randomization
// seed reassigns every participant ordering in the project, so the
// change is logged for the audit trail.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	existing, ok := h.ownedProject(rw, r)
	if !ok {
		return
	}

	var req projectRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	if req.RandomizationSeed != existing.RandomizationSeed {
		logging.Ctx(r.Context()).Warn().
			Str("project_id", existing.ID.String()).
			Int64("old_seed", existing.RandomizationSeed).
			Int64("new_seed", req.RandomizationSeed).
			Msg("Randomization seed changed, all participant orderings reassigned")
	}

	existing.Name = req.Name
	existing.QueryKey = req.QueryKey
	existing.TimeLimitSeconds = req.TimeLimitSeconds
	existing.RedirectURL = req.RedirectURL
	existing.EndScreenMessage = req.EndScreenMessage
	existing.LockAllPositions = req.LockAllPositions
	existing.RandomizationSeed = req.RandomizationSeed

	if err := h.db.UpdateProject(r.Context(), existing); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("project not found")
			return
		}
		rw.InternalError(err)
		return
	}
	rw.Success(existing)
}

// DeleteProject deletes a project and all data beneath it.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := pathUUID(rw, r, "projectId")
	if !ok {
		return
	}
	err := h.db.DeleteProject(r.Context(), id, researcherFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("project not found")
			return
		}
		rw.InternalError(err)
		return
	}
	rw.NoContent()
}

// ownedProject loads the project from the URL and verifies ownership.
func (h *Handler) ownedProject(rw *ResponseWriter, r *http.Request) (*models.Project, bool) {
	id, ok := pathUUID(rw, r, "projectId")
	if !ok {
		return nil, false
	}

	project, err := h.db.GetProject(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("project not found")
			return nil, false
		}
		rw.InternalError(err)
		return nil, false
	}
	if project.ResearcherID != researcherFromContext(r.Context()) {
		rw.NotFound("project not found")
		return nil, false
	}
	return project, true
}
