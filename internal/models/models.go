package models

import "time"

// SubmissionStatus is the moderation state of a submission
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Submission is a creator's entry in a contest
type Submission struct {
	ID         string           `json:"id"`
	ContestID  string           `json:"contest_id"`
	UserID     string           `json:"user_id"`
	Title      string           `json:"title"`
	MediaURL   string           `json:"media_url"`
	MediaType  MediaType        `json:"media_type"`
	Status     SubmissionStatus `json:"status"`
	VotesCount int              `json:"votes_count"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Vote records one voter backing one submission
type Vote struct {
	ID           string    `json:"id"`
	VoterID      string    `json:"voter_id"`
	SubmissionID string    `json:"submission_id"`
	ContestID    string    `json:"contest_id"`
	CastAt       time.Time `json:"cast_at"`
}

// EntitlementState tracks quota consumption per voter per contest
type EntitlementState struct {
	VoterID              string    `json:"voter_id"`
	ContestID            string    `json:"contest_id"`
	PeriodWindowStart    time.Time `json:"period_window_start"`
	VotesInCurrentPeriod int       `json:"votes_in_current_period"`
	LifetimeVotesUsed    int       `json:"lifetime_votes_used"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Identity is the caller as established by the auth layer. Only a verified
// bearer token yields an Authenticated identity; voting and entry rules
// refuse anything else.
type Identity struct {
	ID            string `json:"id"`
	Authenticated bool   `json:"authenticated"`
}

// IsZero reports whether no identity was supplied.
func (i Identity) IsZero() bool {
	return i.ID == ""
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
