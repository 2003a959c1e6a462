// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package api

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"

	"github.com/swipelab/swipelab/internal/database"
	"github.com/swipelab/swipelab/internal/models"
)

// CreateExperiment creates an experiment in one of the researcher's
// projects. The unguessable share link token is generated server-side.
func (h *Handler) CreateExperiment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	project, ok := h.ownedProject(rw, r)
	if !ok {
		return
	}

	var req experimentRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	experiment := &models.Experiment{
		ProjectID:        project.ID,
		Name:             req.Name,
		PersistTimer:     req.PersistTimer,
		ShowUnmutePrompt: req.ShowUnmutePrompt,
		IsActive:         req.IsActive,
	}
	if err := h.db.CreateExperiment(r.Context(), experiment); err != nil {
		rw.InternalError(err)
		return
	}
	rw.Created(experiment)
}

// ListExperiments lists a project's experiments.
func (h *Handler) ListExperiments(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	project, ok := h.ownedProject(rw, r)
	if !ok {
		return
	}

	experiments, err := h.db.ListExperiments(r.Context(), project.ID)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(experiments)
}

// GetExperiment returns one experiment owned by the researcher.
func (h *Handler) GetExperiment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	experiment, ok := h.ownedExperiment(rw, r)
	if !ok {
		return
	}
	rw.Success(experiment)
}

// UpdateExperiment updates an experiment's name and player settings,
// including the IsActive kill switch.
func (h *Handler) UpdateExperiment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	experiment, ok := h.ownedExperiment(rw, r)
	if !ok {
		return
	}

	var req experimentRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	experiment.Name = req.Name
	experiment.PersistTimer = req.PersistTimer
	experiment.ShowUnmutePrompt = req.ShowUnmutePrompt
	experiment.IsActive = req.IsActive

	if err := h.db.UpdateExperiment(r.Context(), experiment); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("experiment not found")
			return
		}
		rw.InternalError(err)
		return
	}
	rw.Success(experiment)
}

// DeleteExperiment deletes an experiment and its videos, participants
// and logged data.
func (h *Handler) DeleteExperiment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	experiment, ok := h.ownedExperiment(rw, r)
	if !ok {
		return
	}
	if err := h.db.DeleteExperiment(r.Context(), experiment.ID); err != nil {
		rw.InternalError(err)
		return
	}
	rw.NoContent()
}

// ExperimentResults returns per-participant session summaries.
func (h *Handler) ExperimentResults(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	experiment, ok := h.ownedExperiment(rw, r)
	if !ok {
		return
	}

	summaries, err := h.db.GetSessionSummaries(r.Context(), experiment.ID)
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(summaries)
}

// ExportInteractionsCSV streams every logged interaction of an
// experiment as a CSV download.
func (h *Handler) ExportInteractionsCSV(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	experiment, ok := h.ownedExperiment(rw, r)
	if !ok {
		return
	}

	export, err := h.db.GetInteractionExport(r.Context(), experiment.ID)
	if err != nil {
		rw.InternalError(err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		`attachment; filename="interactions-`+experiment.PublicURL+`.csv"`)

	cw := csv.NewWriter(w)
	record := []string{"participant_id", "video_filename", "video_position",
		"interaction_type", "interaction_data", "timestamp"}
	if err := cw.Write(record); err != nil {
		rw.InternalError(err)
		return
	}
	for _, row := range export {
		record[0] = row.ParticipantID
		record[1] = row.VideoFilename
		record[2] = strconv.Itoa(row.VideoPosition)
		record[3] = row.InteractionType
		record[4] = row.InteractionData
		record[5] = row.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z")
		if err := cw.Write(record); err != nil {
			rw.InternalError(err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		rw.InternalError(err)
	}
}

// ownedExperiment loads the experiment from the URL, enforcing that it
// belongs to one of the researcher's projects.
func (h *Handler) ownedExperiment(rw *ResponseWriter, r *http.Request) (*models.Experiment, bool) {
	id, ok := pathUUID(rw, r, "experimentId")
	if !ok {
		return nil, false
	}

	experiment, err := h.db.GetExperimentForResearcher(r.Context(), id, researcherFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("experiment not found")
			return nil, false
		}
		rw.InternalError(err)
		return nil, false
	}
	return experiment, true
}
