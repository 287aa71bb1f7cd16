/**
 * @description
 * This file sets up the HTTP router for the bnpl-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies
 * middleware for logging, recovery, CORS, and authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for the mobile/web clients.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// BnplRoutes creates and returns the router for the BNPL service.
func BnplRoutes(h *BnplHandlers, jwtSecret string, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// News proxy endpoints are public.
	r.Route("/api/news", func(r chi.Router) {
		r.Get("/", h.SearchNewsHandler)
		r.Get("/summary", h.GetNewsSummaryHandler)
	})

	// BNPL endpoints require a service token when a secret is configured.
	r.Route("/api/bnpl", func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		r.Post("/apply", h.ApplyBnplHandler)
		r.Get("/info", h.GetBnplInfoHandler)
		r.Get("/usage-history", h.GetUsageHistoryHandler)
	})

	return r
}
