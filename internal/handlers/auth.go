package handlers

import (
	"net/http"
	"time"

	"github.com/abrezinsky/contestvote/internal/auth"
)

const maxTokenTTL = 30 * 24 * time.Hour

// handleLogin exchanges the admin password for a session cookie
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	token, ok := h.Auth.Login(req.Password)
	if !ok {
		respondError(w, Unauthorized("Invalid password"))
		return
	}

	auth.SetSessionCookie(w, token)
	respondSuccess(w, "Logged in")
}

// handleLogout clears the session
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Auth.Logout(cookie.Value)
	}

	auth.ClearSessionCookie(w)
	respondSuccess(w, "Logged out")
}

// handleIssueToken signs a voter token, for operators wiring an external
// login in front of the API
func (h *Handlers) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Subject == "" {
		respondError(w, BadRequest("subject is required"))
		return
	}

	ttl := time.Duration(req.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if ttl > maxTokenTTL {
		ttl = maxTokenTTL
	}

	token, err := h.Identity.IssueToken(req.Subject, ttl)
	if err == auth.ErrNoSecret {
		respondError(w, BadRequest("JWT secret is not configured"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, TokenResponse{Token: token, ExpiresAt: time.Now().Add(ttl).UTC()})
}
