package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/abrezinsky/contestvote/internal/models"
	"github.com/abrezinsky/contestvote/internal/repository"
	"github.com/abrezinsky/contestvote/internal/schedule"
)

// ContestResponse is a contest together with its current phase
type ContestResponse struct {
	models.Contest
	Phase schedule.PhaseInfo `json:"phase"`
}

// VoteResponse is the body of an accepted vote
type VoteResponse struct {
	Status     string `json:"status"`
	VotesCount int    `json:"votes_count"`
}

// PrizeValidateResponse reports a valid distribution
type PrizeValidateResponse struct {
	Valid bool            `json:"valid"`
	Total decimal.Decimal `json:"total"`
}

// StatsResponse is the admin view of contest activity
type StatsResponse struct {
	ContestID string `json:"contest_id"`
	*repository.ContestStats
}

// TokenResponse carries a signed voter token
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SettingsResponse is the response for settings
type SettingsResponse struct {
	BaseURL   string `json:"base_url"`
	PayoutURL string `json:"payout_url"`
}
