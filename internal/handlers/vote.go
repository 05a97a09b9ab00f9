package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/contestvote/internal/auth"
	"github.com/abrezinsky/contestvote/internal/services"
)

// handleVote casts the caller's vote for a submission
func (h *Handlers) handleVote(w http.ResponseWriter, r *http.Request) {
	voter := auth.FromContext(r.Context())

	decision, err := h.Voting.TryCastVote(r.Context(), voter, chi.URLParam(r, "id"), h.now())
	if err != nil {
		respondError(w, err)
		return
	}
	if !decision.Accepted() {
		respondError(w, VoteRejected(decision.Reason))
		return
	}

	respondOK(w, VoteResponse{Status: services.VoteAccepted, VotesCount: decision.VotesCount})
}

// handleEntitlement returns the caller's remaining votes in a contest
func (h *Handlers) handleEntitlement(w http.ResponseWriter, r *http.Request) {
	voter := auth.FromContext(r.Context())

	view, err := h.Voting.Entitlement(r.Context(), voter, chi.URLParam(r, "id"), h.now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, view)
}

// handleSubmit records a new entry by the caller
func (h *Handlers) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var in services.SubmissionInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, err)
		return
	}

	sub, err := h.Submissions.Submit(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"), in, h.now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, sub)
}
