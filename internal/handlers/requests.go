package handlers

import (
	"github.com/shopspring/decimal"

	"github.com/abrezinsky/contestvote/internal/models"
)

// LoginRequest is the admin login body
type LoginRequest struct {
	Password string `json:"password"`
}

// StatusRequest moves a contest to a new status
type StatusRequest struct {
	Status models.ContestStatus `json:"status"`
}

// ReviewRequest approves or rejects a pending submission
type ReviewRequest struct {
	Approve bool `json:"approve"`
}

// PrizeValidateRequest checks a distribution against a pool
type PrizeValidateRequest struct {
	PrizePool         decimal.Decimal     `json:"prize_pool"`
	PrizeDistribution []models.PrizePlace `json:"prize_distribution"`
}

// TokenRequest asks for a signed voter token
type TokenRequest struct {
	Subject  string `json:"subject"`
	TTLHours int    `json:"ttl_hours"`
}
