// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

// Package middleware provides the HTTP middleware chain: request ID
// propagation, Prometheus instrumentation, and panic recovery.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/swipelab/swipelab/internal/logging"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

// RequestID tags each request with a unique ID, honoring an upstream
// X-Request-ID when present, and wires it into the logging context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = logging.ContextWithRequestID(ctx, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
