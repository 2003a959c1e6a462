// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthLive reports process liveness. It never touches the database.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady reports readiness to serve traffic, including a database
// round trip.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeInternalError, "database unavailable")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}
