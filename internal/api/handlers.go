// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/swipelab/swipelab/internal/auth"
	"github.com/swipelab/swipelab/internal/config"
	"github.com/swipelab/swipelab/internal/database"
	"github.com/swipelab/swipelab/internal/validation"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	db  *database.DB
	jwt *auth.JWTManager
	cfg *config.Config
}

// NewHandler creates the API handler.
func NewHandler(db *database.DB, jwt *auth.JWTManager, cfg *config.Config) *Handler {
	return &Handler{db: db, jwt: jwt, cfg: cfg}
}

type researcherKeyType struct{}

var researcherKey researcherKeyType

// researcherFromContext returns the authenticated researcher's id. The
// zero UUID means the request skipped the Authenticate middleware.
func researcherFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(researcherKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// Authenticate requires a valid Bearer token and stores the researcher
// id in the request context.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := NewResponseWriter(w, r)

		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			rw.Unauthorized("missing bearer token")
			return
		}

		claims, err := h.jwt.ValidateToken(header[len(prefix):])
		if err != nil {
			rw.Unauthorized("invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), researcherKey, claims.ResearcherID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// decodeAndValidate decodes the JSON body into dst and runs struct
// validation, writing the error response itself on failure.
func decodeAndValidate(rw *ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		rw.BadRequest("invalid JSON body")
		return false
	}
	if err := validation.ValidateStruct(dst); err != nil {
		var ve *validation.RequestValidationError
		if errors.As(err, &ve) {
			rw.ValidationFailed("request validation failed", ve.Fields())
		} else {
			rw.BadRequest(err.Error())
		}
		return false
	}
	return true
}

// pathUUID parses the named chi URL parameter as a UUID.
func pathUUID(rw *ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		rw.BadRequest("invalid " + name)
		return uuid.Nil, false
	}
	return id, true
}
