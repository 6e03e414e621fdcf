// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/laurensbos/webstability-backend/internal/adapters/http/handlers"
	"github.com/laurensbos/webstability-backend/internal/adapters/http/middleware"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given; the first entry becomes
// the outermost wrapper. It is mounted inside the router so the matched
// route pattern is visible to the telemetry middleware.
func NewRouter(
	projectHandler *handlers.ProjectHandler,
	changeHandler *handlers.ChangeRequestHandler,
	healthHandler *handlers.HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	if len(middlewares) > 0 {
		r.Use(middleware.Chain(middlewares...))
	}

	// Health endpoints (outside /api/v1 prefix).
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// API v1 routes.
	r.Route("/api/v1", func(r chi.Router) {
		// Project lifecycle.
		r.Post("/projects", projectHandler.CreateProject)
		r.Get("/projects", projectHandler.ListProjects)
		r.Get("/projects/{id}", projectHandler.GetProject)
		r.Delete("/projects/{id}", projectHandler.DeleteProject)
		r.Post("/projects/{id}/phase", projectHandler.RequestPhaseTransition)
		r.Post("/projects/{id}/payment-link", projectHandler.CreatePaymentLink)
		r.Post("/projects/{id}/payments/confirm", projectHandler.ConfirmPayment)
		r.Get("/projects/{id}/checklist", projectHandler.EvaluateChecklist)
		r.Patch("/projects/{id}/checklist", projectHandler.UpdateChecklist)
		r.Post("/projects/{id}/referral-code", projectHandler.GetOrCreateReferralCode)
		r.Post("/projects/{id}/messages", projectHandler.AppendMessage)
		r.Post("/projects/{id}/feedback", projectHandler.SubmitFeedback)
		r.Post("/projects/{id}/feedback/{feedbackId}/resolve", projectHandler.ResolveFeedback)

		// Change-request ledger.
		r.Post("/projects/{id}/change-requests", changeHandler.Submit)
		r.Get("/change-requests", changeHandler.List)
		r.Get("/change-requests/stats", changeHandler.Stats)
		r.Patch("/change-requests/bulk", changeHandler.BulkUpdate)
		r.Patch("/change-requests/{id}", changeHandler.UpdateStatus)
	})

	return r
}
