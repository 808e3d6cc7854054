package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// No auth required
		r.Get("/health", s.handleHealth)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// The UI multiplexes device sub-resources through an
			// endpoint query parameter on a single path.
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleDevicesGet)
				r.Post("/", s.handleDevicesPost)
				r.Put("/", s.handleDevicesPut)
				r.Delete("/", s.handleDevicesDelete)
			})

			r.Get("/users/profile", s.handleGetProfile)
			r.Put("/users/profile", s.handleUpdateProfile)

			// User management is admin-only
			r.Group(func(r chi.Router) {
				r.Use(s.adminOnlyMiddleware)

				r.Get("/users", s.handleListUsers)
				r.Post("/users", s.handleCreateUser)
				r.Delete("/users", s.handleBulkDeleteUsers)
				r.Get("/users/{id}", s.handleGetUser)
				r.Put("/users/{id}", s.handleUpdateUser)
				r.Delete("/users/{id}", s.handleDeleteUser)

				r.Get("/audit-logs", s.handleListAuditLogs)
			})
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
