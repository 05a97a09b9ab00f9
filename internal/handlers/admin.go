package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/contestvote/internal/models"
	"github.com/abrezinsky/contestvote/internal/prize"
	"github.com/abrezinsky/contestvote/internal/services"
)

// ==================== Contests ====================

func (h *Handlers) handleAdminListContests(w http.ResponseWriter, r *http.Request) {
	status := models.ContestStatus(r.URL.Query().Get("status"))
	contests, err := h.Contests.ListContests(r.Context(), status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, contests)
}

func (h *Handlers) handleCreateContest(w http.ResponseWriter, r *http.Request) {
	var draft services.ContestDraft
	if err := decodeJSON(r, &draft); err != nil {
		respondError(w, err)
		return
	}

	contest, err := h.Contests.CreateContest(r.Context(), draft, h.now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, contest)
}

func (h *Handlers) handleUpdateContest(w http.ResponseWriter, r *http.Request) {
	var draft services.ContestDraft
	if err := decodeJSON(r, &draft); err != nil {
		respondError(w, err)
		return
	}

	contest, err := h.Contests.UpdateContest(r.Context(), chi.URLParam(r, "id"), draft, h.now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, contest)
}

func (h *Handlers) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Status == "" {
		respondError(w, BadRequest("status is required"))
		return
	}

	contest, err := h.Contests.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status, h.now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, contest)
}

// handleSyncStatuses applies the schedule to every contest now rather than
// waiting for the next background tick
func (h *Handlers) handleSyncStatuses(w http.ResponseWriter, r *http.Request) {
	result, err := h.Contests.SyncStatuses(r.Context(), h.now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

// ==================== Submissions ====================

func (h *Handlers) handleAdminListSubmissions(w http.ResponseWriter, r *http.Request) {
	status := models.SubmissionStatus(r.URL.Query().Get("status"))
	subs, err := h.Submissions.ListSubmissions(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, subs)
}

func (h *Handlers) handleReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	sub, err := h.Submissions.Review(r.Context(), chi.URLParam(r, "id"), req.Approve)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, sub)
}

// ==================== Results ====================

func (h *Handlers) handleStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stats, err := h.Results.GetStats(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, StatsResponse{ContestID: id, ContestStats: stats})
}

func (h *Handlers) handlePushPayouts(w http.ResponseWriter, r *http.Request) {
	result, err := h.Results.PushPayouts(r.Context(), chi.URLParam(r, "id"), h.now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

// handleValidatePrizes checks a distribution without saving anything, so the
// contest form can report problems as they are typed
func (h *Handlers) handleValidatePrizes(w http.ResponseWriter, r *http.Request) {
	var req PrizeValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if problems := prize.Validate(req.PrizeDistribution, req.PrizePool); len(problems) > 0 {
		respondError(w, ValidationFailed(problems))
		return
	}
	respondOK(w, PrizeValidateResponse{Valid: true, Total: prize.Total(req.PrizeDistribution)})
}

// ==================== Settings ====================

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.AllSettings(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var resp SettingsResponse
	if settings.BaseURL != nil {
		resp.BaseURL = *settings.BaseURL
	}
	if settings.PayoutURL != nil {
		resp.PayoutURL = *settings.PayoutURL
	}
	respondOK(w, resp)
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req services.Settings
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Settings.UpdateSettings(r.Context(), req); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Settings updated")
}
