package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Device realtime channel. Authentication happens in-band: the first
	// frame must be a valid auth frame, so the upgrade itself is open.
	wsPath := s.wsCfg.Path
	if wsPath == "" {
		wsPath = "/ws"
	}
	r.Get(wsPath, s.handleWebSocket)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Owner login (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// System metrics (no auth required for basic monitoring)
		r.Get("/metrics", s.handleMetrics)

		// Owner routes (bearer token)
		r.Group(func(r chi.Router) {
			r.Use(s.ownerAuthMiddleware)

			r.Get("/auth/me", s.handleMe)

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Get("/{id}", s.handleGetDevice)
			})

			r.Route("/energy", func(r chi.Router) {
				r.Post("/transfer", s.handleTransfer)
				r.Get("/transfers", s.handleListTransfers)
			})
		})

		// Device control surface (pre-provisioned credentials)
		r.Group(func(r chi.Router) {
			r.Use(s.deviceAuthMiddleware)

			r.Post("/devices/{id}/power/on", s.handlePowerOn)
			r.Post("/devices/{id}/power/off", s.handlePowerOff)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
