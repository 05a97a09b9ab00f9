package mock

import (
	"context"
	"time"

	"github.com/abrezinsky/contestvote/internal/models"
	"github.com/abrezinsky/contestvote/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.CastVoteError = errors.New("database error")
//	svc := services.NewVotingService(log, mockRepo, nil)
//	_, err := svc.TryCastVote(ctx, voter, submissionID, now)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Contest Errors =====
	CreateContestError    error
	UpdateContestError    error
	GetContestError       error
	ListContestsError     error
	SetContestStatusError error

	// ===== Submission Errors =====
	CreateSubmissionError     error
	GetSubmissionError        error
	ListSubmissionsError      error
	CountUserSubmissionsError error
	SetSubmissionStatusError  error

	// ===== Vote Errors =====
	HasVotedError            error
	GetEntitlementStateError error
	CastVoteError            error
	CountVotesError          error

	// ===== Settings Errors =====
	GetSettingError      error
	SetSettingError      error
	GetContestStatsError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Contest Methods =====

func (m *Repository) CreateContest(ctx context.Context, c models.Contest) error {
	if m.CreateContestError != nil {
		return m.CreateContestError
	}
	return m.FullRepository.CreateContest(ctx, c)
}

func (m *Repository) UpdateContest(ctx context.Context, c models.Contest) error {
	if m.UpdateContestError != nil {
		return m.UpdateContestError
	}
	return m.FullRepository.UpdateContest(ctx, c)
}

func (m *Repository) GetContest(ctx context.Context, id string) (*models.Contest, error) {
	if m.GetContestError != nil {
		return nil, m.GetContestError
	}
	return m.FullRepository.GetContest(ctx, id)
}

func (m *Repository) ListContests(ctx context.Context, status models.ContestStatus) ([]models.Contest, error) {
	if m.ListContestsError != nil {
		return nil, m.ListContestsError
	}
	return m.FullRepository.ListContests(ctx, status)
}

func (m *Repository) SetContestStatus(ctx context.Context, id string, from, to models.ContestStatus, at time.Time) (bool, error) {
	if m.SetContestStatusError != nil {
		return false, m.SetContestStatusError
	}
	return m.FullRepository.SetContestStatus(ctx, id, from, to, at)
}

// ===== Submission Methods =====

func (m *Repository) CreateSubmission(ctx context.Context, s models.Submission) error {
	if m.CreateSubmissionError != nil {
		return m.CreateSubmissionError
	}
	return m.FullRepository.CreateSubmission(ctx, s)
}

func (m *Repository) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	if m.GetSubmissionError != nil {
		return nil, m.GetSubmissionError
	}
	return m.FullRepository.GetSubmission(ctx, id)
}

func (m *Repository) ListSubmissions(ctx context.Context, contestID string, status models.SubmissionStatus) ([]models.Submission, error) {
	if m.ListSubmissionsError != nil {
		return nil, m.ListSubmissionsError
	}
	return m.FullRepository.ListSubmissions(ctx, contestID, status)
}

func (m *Repository) CountUserSubmissions(ctx context.Context, contestID, userID string) (int, error) {
	if m.CountUserSubmissionsError != nil {
		return 0, m.CountUserSubmissionsError
	}
	return m.FullRepository.CountUserSubmissions(ctx, contestID, userID)
}

func (m *Repository) SetSubmissionStatus(ctx context.Context, id string, status models.SubmissionStatus) error {
	if m.SetSubmissionStatusError != nil {
		return m.SetSubmissionStatusError
	}
	return m.FullRepository.SetSubmissionStatus(ctx, id, status)
}

// ===== Vote Methods =====

func (m *Repository) HasVoted(ctx context.Context, voterID, submissionID string) (bool, error) {
	if m.HasVotedError != nil {
		return false, m.HasVotedError
	}
	return m.FullRepository.HasVoted(ctx, voterID, submissionID)
}

func (m *Repository) GetEntitlementState(ctx context.Context, voterID, contestID string) (*models.EntitlementState, error) {
	if m.GetEntitlementStateError != nil {
		return nil, m.GetEntitlementStateError
	}
	return m.FullRepository.GetEntitlementState(ctx, voterID, contestID)
}

func (m *Repository) CastVote(ctx context.Context, vote models.Vote, decide repository.QuotaFunc) (*repository.VoteOutcome, error) {
	if m.CastVoteError != nil {
		return nil, m.CastVoteError
	}
	return m.FullRepository.CastVote(ctx, vote, decide)
}

func (m *Repository) CountVotes(ctx context.Context, contestID string) (int, error) {
	if m.CountVotesError != nil {
		return 0, m.CountVotesError
	}
	return m.FullRepository.CountVotes(ctx, contestID)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) GetContestStats(ctx context.Context, contestID string) (*repository.ContestStats, error) {
	if m.GetContestStatsError != nil {
		return nil, m.GetContestStatsError
	}
	return m.FullRepository.GetContestStats(ctx, contestID)
}

// Ensure mock implements the full interface
var _ repository.FullRepository = (*Repository)(nil)
