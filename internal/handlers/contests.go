package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/contestvote/internal/models"
	"github.com/abrezinsky/contestvote/internal/services"
)

// handleHealth reports liveness
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]string{"status": "ok"})
}

// publicContest loads a contest visible to participants. Drafts are
// reported as missing.
func (h *Handlers) publicContest(ctx context.Context, id string) (*services.ContestDetails, error) {
	details, err := h.Contests.ContestPhase(ctx, id, h.now())
	if err != nil {
		return nil, err
	}
	if details.Contest.Status == models.ContestStatusDraft {
		return nil, services.ErrContestNotFound
	}
	return details, nil
}

// handleListContests lists contests visible to participants
func (h *Handlers) handleListContests(w http.ResponseWriter, r *http.Request) {
	status := models.ContestStatus(r.URL.Query().Get("status"))
	contests, err := h.Contests.ListContests(r.Context(), status)
	if err != nil {
		respondError(w, err)
		return
	}

	visible := make([]models.Contest, 0, len(contests))
	for _, c := range contests {
		if c.Status != models.ContestStatusDraft {
			visible = append(visible, c)
		}
	}
	respondOK(w, visible)
}

// handleGetContest returns a contest with its current phase
func (h *Handlers) handleGetContest(w http.ResponseWriter, r *http.Request) {
	details, err := h.publicContest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ContestResponse{Contest: details.Contest, Phase: details.Phase})
}

// handleContestQR renders a share QR code for the contest page
func (h *Handlers) handleContestQR(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.publicContest(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	png, err := h.Contests.ShareQR(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}

// handleLeaderboard returns the ranked standings
func (h *Handlers) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.publicContest(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	board, err := h.Results.Standings(r.Context(), id, h.now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, board)
}

// handleListSubmissions lists the approved entries of a contest
func (h *Handlers) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.publicContest(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	subs, err := h.Submissions.ListSubmissions(r.Context(), id, models.SubmissionApproved)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, subs)
}

// handleSubmissionRank returns the current rank of one submission
func (h *Handlers) handleSubmissionRank(w http.ResponseWriter, r *http.Request) {
	rank, err := h.Results.SubmissionRank(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, rank)
}
