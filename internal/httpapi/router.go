// Package httpapi implements the REST surface of the trust service.
//
// Every /scams route expects an "Authorization: Bearer <jwt>" header.
//
// Routes:
//
//	POST /scams/report                        → file a manual scam report
//	POST /scams/check                         → match a posting against reports, warn caller
//	POST /scams/analyze-job                   → score a posting and enforce the decision
//	POST /scams/check-banned                  → look up company / url / email bans
//	GET  /scams                               → paginated report listing
//	GET  /scams/my-warnings                   → caller's active warnings
//	PUT  /scams/my-warnings/{scamId}/dismiss  → hide one warning
//	GET  /scams/stats                         → registry aggregates
//	GET  /scams/banned-entities/stats         → (admin) ban registry counts
//	GET  /scams/flagged-jobs                  → (admin) review queue
//	PUT  /scams/flagged-jobs/{id}/review      → (admin) approve or ban a flagged job
//	PUT  /scams/{scamId}/review               → (admin) REPORTED → UNDER_REVIEW
//	PUT  /scams/{scamId}/verify               → (admin) mark a report VERIFIED
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"jobmate/trust-service/internal/auth"
	"jobmate/trust-service/internal/metrics"
	"jobmate/trust-service/internal/scam"
)

const maxBodyBytes = 1 << 20

// Handler holds shared dependencies.
type Handler struct {
	svc      *scam.Service
	verifier *auth.Verifier
}

// NewHandler returns a configured Handler.
func NewHandler(svc *scam.Service, verifier *auth.Verifier) *Handler {
	return &Handler{svc: svc, verifier: verifier}
}

// Routes builds the router with the ambient middleware stack applied.
// Callers may mount further unauthenticated routes (health, metrics) on it.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware(routePattern))
	r.Use(middleware.Timeout(15 * time.Second))

	r.Route("/scams", func(r chi.Router) {
		r.Use(h.verifier.Middleware)

		r.Post("/report", h.createReport)
		r.Post("/check", h.check)
		r.Post("/analyze-job", h.analyzeJob)
		r.Post("/check-banned", h.checkBanned)
		r.Get("/", h.listReports)
		r.Get("/my-warnings", h.myWarnings)
		r.Put("/my-warnings/{scamId}/dismiss", h.dismissWarning)
		r.Get("/stats", h.stats)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			r.Get("/banned-entities/stats", h.bannedStats)
			r.Get("/flagged-jobs", h.listFlaggedJobs)
			r.Put("/flagged-jobs/{id}/review", h.reviewFlaggedJob)
			r.Put("/{scamId}/review", h.startReview)
			r.Put("/{scamId}/verify", h.verify)
		})
	})

	return r
}

// routePattern labels metrics with the templated route, keeping label
// cardinality bounded.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
