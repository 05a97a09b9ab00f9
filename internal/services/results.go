package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/abrezinsky/contestvote/internal/logger"
	"github.com/abrezinsky/contestvote/internal/models"
	"github.com/abrezinsky/contestvote/internal/prize"
	"github.com/abrezinsky/contestvote/internal/ranking"
	"github.com/abrezinsky/contestvote/internal/repository"
	"github.com/abrezinsky/contestvote/internal/schedule"
	"github.com/abrezinsky/contestvote/pkg/payout"
)

// ResultsServiceRepository defines the repository methods needed by ResultsService
type ResultsServiceRepository interface {
	repository.ContestRepository
	repository.SubmissionRepository
	repository.SettingsRepository
}

// ResultsService computes standings and hands final winners to the
// settlement service
type ResultsService struct {
	log      logger.Logger
	repo     ResultsServiceRepository
	settings SettingsServicer
	client   payout.Client
}

// NewResultsService creates a new ResultsService
func NewResultsService(log logger.Logger, repo ResultsServiceRepository, settings SettingsServicer, client payout.Client) *ResultsService {
	return &ResultsService{log: log, repo: repo, settings: settings, client: client}
}

// Standing is one ranked submission with its prize, if any
type Standing struct {
	Rank          int               `json:"rank"`
	Submission    models.Submission `json:"submission"`
	PrizeEligible bool              `json:"prize_eligible"`
	Prize         *decimal.Decimal  `json:"prize,omitempty"`
}

// Leaderboard is the ranked view of a contest
type Leaderboard struct {
	ContestID string          `json:"contest_id"`
	Final     bool            `json:"final"`
	Status    string          `json:"status"` // "final" or "live"
	Currency  models.Currency `json:"currency"`
	Standings []Standing      `json:"standings"`
}

// SubmissionRank is the rank of a single submission
type SubmissionRank struct {
	SubmissionID string `json:"submission_id"`
	ContestID    string `json:"contest_id"`
	Rank         int    `json:"rank"`
	VotesCount   int    `json:"votes_count"`
}

// Payout statuses
const (
	PayoutPaid    = "paid"
	PayoutSkipped = "skipped"
	PayoutFailed  = "error"
)

// PayoutDetail reports what happened to one prize place
type PayoutDetail struct {
	Place        int             `json:"place"`
	SubmissionID string          `json:"submission_id"`
	UserID       string          `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	Reference    string          `json:"reference,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// PayoutResult contains the result of pushing winners to the settlement service
type PayoutResult struct {
	Paid    int            `json:"paid"`
	Skipped int            `json:"skipped"`
	Failed  int            `json:"failed"`
	Details []PayoutDetail `json:"details"`
}

// Rank returns the 1-based rank of submissionID among the approved
// submissions of contestID. ok is false when it is not ranked.
func (s *ResultsService) Rank(ctx context.Context, contestID, submissionID string) (int, bool, error) {
	subs, err := s.repo.ListSubmissions(ctx, contestID, models.SubmissionApproved)
	if err != nil {
		return 0, false, err
	}
	rank, ok := ranking.Rank(subs, submissionID)
	return rank, ok, nil
}

// SubmissionRank looks up a submission and returns its current rank
func (s *ResultsService) SubmissionRank(ctx context.Context, submissionID string) (*SubmissionRank, error) {
	sub, err := s.repo.GetSubmission(ctx, submissionID)
	if err == repository.ErrNotFound {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}

	rank, ok, err := s.Rank(ctx, sub.ContestID, sub.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotRanked
	}
	return &SubmissionRank{SubmissionID: sub.ID, ContestID: sub.ContestID, Rank: rank, VotesCount: sub.VotesCount}, nil
}

// Standings ranks every approved submission of a contest and attaches prize
// amounts. The leaderboard is final once voting has ended at now.
func (s *ResultsService) Standings(ctx context.Context, contestID string, now time.Time) (*Leaderboard, error) {
	c, err := s.repo.GetContest(ctx, contestID)
	if err == repository.ErrNotFound {
		return nil, ErrContestNotFound
	}
	if err != nil {
		return nil, err
	}

	subs, err := s.repo.ListSubmissions(ctx, contestID, models.SubmissionApproved)
	if err != nil {
		return nil, err
	}

	board := &Leaderboard{
		ContestID: c.ID,
		Final:     schedule.Of(*c).Ended(now),
		Currency:  c.Config.Currency,
		Standings: []Standing{},
	}
	board.Status = "live"
	if board.Final {
		board.Status = "final"
	}

	for _, e := range ranking.Standings(subs) {
		st := Standing{Rank: e.Rank, Submission: e.Submission}
		if amount, ok := prize.AmountFor(c.Config.PrizeDistribution, e.Rank); ok {
			st.PrizeEligible = true
			st.Prize = &amount
		}
		board.Standings = append(board.Standings, st)
	}
	return board, nil
}

// GetStats returns submission and vote counts for a contest
func (s *ResultsService) GetStats(ctx context.Context, contestID string) (*repository.ContestStats, error) {
	if _, err := s.repo.GetContest(ctx, contestID); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrContestNotFound
		}
		return nil, err
	}
	return s.repo.GetContestStats(ctx, contestID)
}

// PushPayouts sends every prize-eligible placement of a final leaderboard to
// the settlement service. Places already settled or worth nothing are
// skipped; individual failures are reported without aborting the push.
func (s *ResultsService) PushPayouts(ctx context.Context, contestID string, now time.Time) (*PayoutResult, error) {
	board, err := s.Standings(ctx, contestID, now)
	if err != nil {
		return nil, err
	}
	if !board.Final {
		return nil, ErrResultsNotFinal
	}

	url, err := s.settings.GetPayoutURL(ctx)
	if err != nil {
		return nil, err
	}
	if url != "" {
		s.client.SetBaseURL(url)
	}
	if s.client.BaseURL() == "" {
		return nil, ErrPayoutNotConfigured
	}

	result := &PayoutResult{Details: []PayoutDetail{}}
	for _, st := range board.Standings {
		if !st.PrizeEligible {
			continue
		}
		detail := PayoutDetail{
			Place:        st.Rank,
			SubmissionID: st.Submission.ID,
			UserID:       st.Submission.UserID,
			Amount:       *st.Prize,
		}

		if !st.Prize.IsPositive() {
			detail.Status = PayoutSkipped
			result.Skipped++
			result.Details = append(result.Details, detail)
			continue
		}

		ref, err := s.client.Submit(ctx, payout.Winner{
			ContestID:    contestID,
			SubmissionID: st.Submission.ID,
			UserID:       st.Submission.UserID,
			Place:        st.Rank,
			Amount:       *st.Prize,
			Currency:     string(board.Currency),
		})
		switch {
		case err == nil:
			detail.Status = PayoutPaid
			detail.Reference = ref
			result.Paid++
		case stderrors.Is(err, payout.ErrAlreadySettled):
			detail.Status = PayoutSkipped
			result.Skipped++
		default:
			detail.Status = PayoutFailed
			detail.Error = err.Error()
			result.Failed++
			s.log.Error("Payout failed", "contest_id", contestID, "place", st.Rank, "error", err)
		}
		result.Details = append(result.Details, detail)
	}

	s.log.Info("Payouts pushed", "contest_id", contestID, "paid", result.Paid, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}
