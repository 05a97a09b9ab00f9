package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContestStatus is the lifecycle state of a contest
type ContestStatus string

const (
	ContestStatusDraft    ContestStatus = "draft"
	ContestStatusActive   ContestStatus = "active"
	ContestStatusEnded    ContestStatus = "ended"
	ContestStatusArchived ContestStatus = "archived"
)

var contestTransitions = map[ContestStatus][]ContestStatus{
	ContestStatusDraft:  {ContestStatusActive, ContestStatusArchived},
	ContestStatusActive: {ContestStatusEnded},
	ContestStatusEnded:  {ContestStatusArchived},
}

// Valid reports whether s is a known status.
func (s ContestStatus) Valid() bool {
	switch s {
	case ContestStatusDraft, ContestStatusActive, ContestStatusEnded, ContestStatusArchived:
		return true
	}
	return false
}

// CanTransitionTo reports whether a contest may move from s to next.
func (s ContestStatus) CanTransitionTo(next ContestStatus) bool {
	for _, allowed := range contestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Contest is a single competition with its schedule anchors and configuration
type Contest struct {
	ID                       string        `json:"id"`
	Title                    string        `json:"title"`
	Description              string        `json:"description"`
	Status                   ContestStatus `json:"status"`
	StartAt                  time.Time     `json:"start_at"`
	SubmissionEndAt          time.Time     `json:"submission_end_at"`
	VotingStartAt            time.Time     `json:"voting_start_at"`
	VotingEndAt              time.Time     `json:"voting_end_at"`
	CustomSubmissionDeadline bool          `json:"custom_submission_deadline"`
	Config                   ContestConfig `json:"config"`
	CreatedAt                time.Time     `json:"created_at"`
	UpdatedAt                time.Time     `json:"updated_at"`
}

// PrizePlace is one funded place of a prize distribution
type PrizePlace struct {
	Place int             `json:"place"`
	Value decimal.Decimal `json:"value"`
}
