package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abrezinsky/contestvote/internal/auth"
)

// conditionalHTTPLogger logs requests while request logging is switched on
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.RequestLogging() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)

	// WebSocket sits outside the timeout middleware
	if h.WS != nil {
		r.Get("/ws", h.WS)
	}

	r.Get("/healthz", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(h.Identity.Middleware)

		// Public contest views
		r.Get("/api/contests", h.handleListContests)
		r.Get("/api/contests/{id}", h.handleGetContest)
		r.Get("/api/contests/{id}/qr", h.handleContestQR)
		r.Get("/api/contests/{id}/leaderboard", h.handleLeaderboard)
		r.Get("/api/contests/{id}/submissions", h.handleListSubmissions)
		r.Get("/api/submissions/{id}/rank", h.handleSubmissionRank)

		// Voter actions
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireVoter)
			r.Get("/api/contests/{id}/entitlement", h.handleEntitlement)
			r.Post("/api/contests/{id}/submissions", h.handleSubmit)
			r.Post("/api/submissions/{id}/vote", h.handleVote)
		})

		// Admin session
		r.Post("/api/admin/login", h.handleLogin)
		r.Post("/api/admin/logout", h.handleLogout)

		// Admin API (protected)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAdmin)

			r.Get("/api/admin/contests", h.handleAdminListContests)
			r.Post("/api/admin/contests", h.handleCreateContest)
			r.Put("/api/admin/contests/{id}", h.handleUpdateContest)
			r.Post("/api/admin/contests/{id}/status", h.handleSetStatus)
			r.Get("/api/admin/contests/{id}/submissions", h.handleAdminListSubmissions)
			r.Get("/api/admin/contests/{id}/stats", h.handleStats)
			r.Post("/api/admin/contests/{id}/payouts", h.handlePushPayouts)
			r.Post("/api/admin/contests/sync", h.handleSyncStatuses)

			r.Put("/api/admin/submissions/{id}/review", h.handleReview)
			r.Post("/api/admin/prizes/validate", h.handleValidatePrizes)
			r.Post("/api/admin/tokens", h.handleIssueToken)

			r.Get("/api/admin/settings", h.handleGetSettings)
			r.Put("/api/admin/settings", h.handleUpdateSettings)
		})
	})

	return r
}
