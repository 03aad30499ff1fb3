package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// NewRouter builds the HTTP routes. site serves the static pages and may be nil.
func NewRouter(h *ConcertHandler, site http.Handler, log *zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(log))             // structured access log
	r.Use(Recoverer(h.tr, log))    // recover from panics, localized 500
	r.Use(CORS)                    // open CORS, preflight short-circuit
	r.Use(chimiddleware.Timeout(30 * time.Second))

	// Health
	r.Get("/health", HealthCheck)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/generate-ticket", h.GenerateTicket)
		r.Get("/download-ticket", h.DownloadTicket)
		r.Post("/chatbot", h.Chat)
		r.Post("/create-admin", h.CreateAdmin)
		r.Get("/admin/registrations", h.ListRegistrations)
	})

	if site != nil {
		r.Handle("/*", site)
	}
	return r
}
