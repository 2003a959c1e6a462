// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swipelab/swipelab/internal/config"
	"github.com/swipelab/swipelab/internal/middleware"
)

// NewRouter assembles the full HTTP surface.
//
// Three trust zones with distinct rate limits:
//   - public participant endpoints (feed, interactions, heartbeats),
//     reached through share links by anonymous participants
//   - the researcher dashboard API under /api/v1, JWT-protected
//   - operational endpoints (health, metrics)
func NewRouter(h *Handler, cfg *config.SecurityConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.PrometheusMetrics)

	rateLimit := func(requests int, window time.Duration) func(http.Handler) http.Handler {
		if cfg.RateLimitDisabled {
			return passthrough
		}
		return httprate.LimitByIP(requests, window)
	}

	// Operational endpoints.
	r.Get("/health/live", h.HealthLive)
	r.Get("/health/ready", h.HealthReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public participant endpoints. Generous limits: every participant
	// heartbeats several times per minute.
	r.Group(func(r chi.Router) {
		r.Use(rateLimit(cfg.FeedRateLimit, cfg.FeedRateWindow))
		r.Get("/api/feed/{publicUrl}", h.GetFeed)
		r.Post("/api/interactions", h.PostInteraction)
		r.Post("/api/interactions/heartbeat", h.Heartbeat)
	})

	// Researcher authentication. Login carries the strictest limit.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(rateLimit(cfg.LoginRateLimit, cfg.LoginRateWindow)).Post("/login", h.Login)
		r.With(rateLimit(cfg.LoginRateLimit, cfg.LoginRateWindow)).Post("/register", h.Register)
		r.With(h.Authenticate).Get("/me", h.Me)
	})

	// Researcher dashboard API.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(cfg.RateLimitReqs, cfg.RateLimitWindow))
		r.Use(h.Authenticate)

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", h.CreateProject)
			r.Get("/", h.ListProjects)
			r.Route("/{projectId}", func(r chi.Router) {
				r.Get("/", h.GetProject)
				r.Put("/", h.UpdateProject)
				r.Delete("/", h.DeleteProject)
				r.Post("/experiments", h.CreateExperiment)
				r.Get("/experiments", h.ListExperiments)
			})
		})

		r.Route("/experiments/{experimentId}", func(r chi.Router) {
			r.Get("/", h.GetExperiment)
			r.Put("/", h.UpdateExperiment)
			r.Delete("/", h.DeleteExperiment)
			r.Get("/results", h.ExperimentResults)
			r.Get("/results/export", h.ExportInteractionsCSV)

			r.Post("/videos", h.AppendVideo)
			r.Get("/videos", h.ListVideos)
			r.Put("/videos/order", h.ReorderVideos)
			r.Post("/videos/bulk-delete", h.BulkDeleteVideos)
			r.Put("/videos/{videoId}", h.UpdateVideo)
			r.Delete("/videos/{videoId}", h.DeleteVideo)

			r.Route("/videos/{videoId}/comments", func(r chi.Router) {
				r.Get("/", h.ListComments)
				r.Post("/", h.CreateComment)
				r.Put("/{commentId}", h.UpdateComment)
				r.Delete("/{commentId}", h.DeleteComment)
			})
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", h.CreateSocialAccount)
			r.Get("/", h.ListSocialAccounts)
			r.Put("/{accountId}", h.UpdateSocialAccount)
			r.Delete("/{accountId}", h.DeleteSocialAccount)
		})
	})

	return r
}

func passthrough(next http.Handler) http.Handler {
	return next
}
