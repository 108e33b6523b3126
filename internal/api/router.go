/**
 * @description
 * This file sets up the HTTP router for the beneficiary service using the
 * `chi` routing library. It defines all the API routes and applies necessary
 * middleware.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: The routing library.
 * - The service's internal packages for handlers and middleware.
 */
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alokkulkarni/beneficiaries/internal/app"
	"github.com/alokkulkarni/beneficiaries/internal/config"
	"github.com/alokkulkarni/beneficiaries/pkg/middleware"
)

// NewRouter creates and configures a new HTTP router. limiter may be nil, in
// which case mutation routes are not rate limited.
func NewRouter(cfg *config.Config, service *app.BeneficiaryService, audit *app.AuditService, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	handler := NewBeneficiaryHandler(service, audit)

	// Group routes that require authentication
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTSecret))

		r.Route("/beneficiaries", func(r chi.Router) {
			// Mutations, rate limited per customer when Redis is configured.
			r.Group(func(r chi.Router) {
				if limiter != nil {
					r.Use(limiter.Handler)
				}
				r.Post("/", handler.CreateBeneficiary)
				r.Put("/{id}", handler.UpdateBeneficiary)
				r.Delete("/{id}", handler.DeleteBeneficiary)
			})

			r.Get("/", handler.ListBeneficiaries)
			r.Get("/{id}", handler.GetBeneficiary)
			r.Post("/search", handler.SearchBeneficiaries)
			r.Get("/analytics", handler.BeneficiaryAnalytics)
			r.Get("/duplicates", handler.PotentialDuplicates)
			r.Get("/usage-report", handler.UsageReport)
			r.Get("/audit", handler.CustomerAuditHistory)
			r.Get("/{id}/audit", handler.BeneficiaryAuditHistory)
		})
	})

	return r
}
