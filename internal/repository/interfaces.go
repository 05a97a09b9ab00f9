package repository

import (
	"context"
	"time"

	"github.com/abrezinsky/contestvote/internal/models"
)

// ContestRepository defines contest data operations
type ContestRepository interface {
	CreateContest(ctx context.Context, c models.Contest) error
	UpdateContest(ctx context.Context, c models.Contest) error
	GetContest(ctx context.Context, id string) (*models.Contest, error)
	ListContests(ctx context.Context, status models.ContestStatus) ([]models.Contest, error)
	SetContestStatus(ctx context.Context, id string, from, to models.ContestStatus, at time.Time) (bool, error)
}

// SubmissionRepository defines submission data operations
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, s models.Submission) error
	GetSubmission(ctx context.Context, id string) (*models.Submission, error)
	ListSubmissions(ctx context.Context, contestID string, status models.SubmissionStatus) ([]models.Submission, error)
	CountUserSubmissions(ctx context.Context, contestID, userID string) (int, error)
	SetSubmissionStatus(ctx context.Context, id string, status models.SubmissionStatus) error
}

// VoteRepository defines vote and quota data operations
type VoteRepository interface {
	HasVoted(ctx context.Context, voterID, submissionID string) (bool, error)
	GetEntitlementState(ctx context.Context, voterID, contestID string) (*models.EntitlementState, error)
	CastVote(ctx context.Context, vote models.Vote, decide QuotaFunc) (*VoteOutcome, error)
	CountVotes(ctx context.Context, contestID string) (int, error)
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetContestStats(ctx context.Context, contestID string) (*ContestStats, error)
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	ContestRepository
	SubmissionRepository
	VoteRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
