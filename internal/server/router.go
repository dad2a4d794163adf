package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/template-doctor/template-doctor/internal/server/handler"
)

// requestTimeout bounds one validation request end to end. Validations hold
// the connection open while the remote run executes, so this must comfortably
// exceed the locator and poller budgets combined.
const requestTimeout = 15 * time.Minute

// NewRouter creates and configures a new HTTP router with middleware and API routes.
func NewRouter(validations *handler.ValidationHandler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Configure middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/validation-docker-image", validations.ValidateDockerImage)
		r.Post("/validation-ossf", validations.ValidateOSSF)
		r.Post("/validation-template", validations.ValidateTemplate)
		r.Get("/validation-status", validations.ValidationStatus)
		r.Post("/validation-cancel", validations.CancelValidation)
		r.Get("/validations", validations.ListValidations)
	})

	return r
}
