package services

import (
	"context"
	"time"

	"github.com/abrezinsky/contestvote/internal/entitlement"
	"github.com/abrezinsky/contestvote/internal/models"
	"github.com/abrezinsky/contestvote/internal/repository"
)

// Broadcaster defines the interface for broadcasting messages to clients
type Broadcaster interface {
	BroadcastVote(contestID, submissionID string, votesCount int)
	BroadcastContestStatus(contestID string, status models.ContestStatus)
}

// ContestServicer defines the interface for contest operations
type ContestServicer interface {
	CreateContest(ctx context.Context, d ContestDraft, now time.Time) (*models.Contest, error)
	UpdateContest(ctx context.Context, id string, d ContestDraft, now time.Time) (*models.Contest, error)
	GetContest(ctx context.Context, id string) (*models.Contest, error)
	ListContests(ctx context.Context, status models.ContestStatus) ([]models.Contest, error)
	SetStatus(ctx context.Context, id string, status models.ContestStatus, now time.Time) (*models.Contest, error)
	ContestPhase(ctx context.Context, id string, now time.Time) (*ContestDetails, error)
	SyncStatuses(ctx context.Context, now time.Time) (*SyncResult, error)
	ShareQR(ctx context.Context, id string) ([]byte, error)
	SetBroadcaster(b Broadcaster)
}

// SubmissionServicer defines the interface for submission operations
type SubmissionServicer interface {
	Submit(ctx context.Context, who models.Identity, contestID string, in SubmissionInput, now time.Time) (*models.Submission, error)
	Review(ctx context.Context, id string, approve bool) (*models.Submission, error)
	ListSubmissions(ctx context.Context, contestID string, status models.SubmissionStatus) ([]models.Submission, error)
}

// VotingServicer defines the interface for voting operations
type VotingServicer interface {
	TryCastVote(ctx context.Context, voter models.Identity, submissionID string, now time.Time) (*VoteDecision, error)
	Entitlement(ctx context.Context, voter models.Identity, contestID string, now time.Time) (*entitlement.View, error)
	SetBroadcaster(b Broadcaster)
}

// ResultsServicer defines the interface for results operations
type ResultsServicer interface {
	Rank(ctx context.Context, contestID, submissionID string) (int, bool, error)
	SubmissionRank(ctx context.Context, submissionID string) (*SubmissionRank, error)
	Standings(ctx context.Context, contestID string, now time.Time) (*Leaderboard, error)
	GetStats(ctx context.Context, contestID string) (*repository.ContestStats, error)
	PushPayouts(ctx context.Context, contestID string, now time.Time) (*PayoutResult, error)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
	GetPayoutURL(ctx context.Context) (string, error)
	SetPayoutURL(ctx context.Context, url string) error
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	AllSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, settings Settings) error
}

// Ensure concrete types implement interfaces
var (
	_ ContestServicer    = (*ContestService)(nil)
	_ SubmissionServicer = (*SubmissionService)(nil)
	_ VotingServicer     = (*VotingService)(nil)
	_ ResultsServicer    = (*ResultsService)(nil)
	_ SettingsServicer   = (*SettingsService)(nil)
)
