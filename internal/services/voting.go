package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/contestvote/internal/entitlement"
	"github.com/abrezinsky/contestvote/internal/logger"
	"github.com/abrezinsky/contestvote/internal/models"
	"github.com/abrezinsky/contestvote/internal/repository"
)

// VotingServiceRepository defines the repository methods needed by VotingService
type VotingServiceRepository interface {
	repository.ContestRepository
	repository.SubmissionRepository
	repository.VoteRepository
}

// VotingService decides and records votes
type VotingService struct {
	log         logger.Logger
	repo        VotingServiceRepository
	broadcaster Broadcaster
}

// NewVotingService creates a new VotingService. broadcaster may be nil.
func NewVotingService(log logger.Logger, repo VotingServiceRepository, broadcaster Broadcaster) *VotingService {
	return &VotingService{log: log, repo: repo, broadcaster: broadcaster}
}

// SetBroadcaster sets the broadcaster for accepted votes
func (s *VotingService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Vote decision statuses
const (
	VoteAccepted = "accepted"
	VoteRejected = "rejected"
)

// VoteDecision is the outcome of TryCastVote
type VoteDecision struct {
	Status     string             `json:"status"`
	Reason     entitlement.Reason `json:"-"`
	Code       string             `json:"code,omitempty"`
	Message    string             `json:"message,omitempty"`
	VotesCount int                `json:"votes_count,omitempty"`
}

// Accepted reports whether the vote was recorded
func (d *VoteDecision) Accepted() bool {
	return d.Status == VoteAccepted
}

func rejected(reason entitlement.Reason) *VoteDecision {
	return &VoteDecision{
		Status:  VoteRejected,
		Reason:  reason,
		Code:    reason.Code(),
		Message: reason.Message(),
	}
}

// TryCastVote evaluates the entitlement rules for voter and, when they pass,
// records the vote. Rejections are returned as decisions; the error return
// is reserved for lookups and infrastructure failures.
func (s *VotingService) TryCastVote(ctx context.Context, voter models.Identity, submissionID string, now time.Time) (*VoteDecision, error) {
	sub, err := s.repo.GetSubmission(ctx, submissionID)
	if err == repository.ErrNotFound {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubmissionApproved {
		return nil, ErrSubmissionNotFound
	}

	c, err := s.repo.GetContest(ctx, sub.ContestID)
	if err == repository.ErrNotFound {
		return nil, ErrContestNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.Status == models.ContestStatusDraft {
		return nil, ErrContestNotFound
	}

	hasVoted, err := s.repo.HasVoted(ctx, voter.ID, sub.ID)
	if err != nil {
		return nil, err
	}
	state, err := s.loadState(ctx, voter.ID, c.ID)
	if err != nil {
		return nil, err
	}

	// CastVote re-evaluates against the stored contest under the write lock.
	pre := entitlement.Evaluate(entitlement.Request{
		Contest:    *c,
		Submission: *sub,
		Voter:      voter,
		HasVoted:   hasVoted,
		State:      state,
		Now:        now,
	})
	if !pre.Accepted() {
		s.log.Debug("Vote rejected", "contest_id", c.ID, "submission_id", sub.ID, "voter_id", voter.ID, "reason", pre.Reason.Code())
		return rejected(pre.Reason), nil
	}

	vote := models.Vote{
		ID:           uuid.NewString(),
		VoterID:      voter.ID,
		SubmissionID: sub.ID,
		ContestID:    c.ID,
		CastAt:       now.UTC(),
	}
	out, err := s.repo.CastVote(ctx, vote, func(stored models.Contest, current models.EntitlementState) (models.EntitlementState, entitlement.Reason) {
		return entitlement.Recheck(stored, voter, current, now)
	})
	if err != nil {
		s.log.Error("Failed to record vote", "contest_id", c.ID, "submission_id", sub.ID, "voter_id", voter.ID, "error", err)
		return nil, err
	}
	if !out.Recorded() {
		s.log.Debug("Vote rejected", "contest_id", c.ID, "submission_id", sub.ID, "voter_id", voter.ID, "reason", out.Reason.Code())
		return rejected(out.Reason), nil
	}

	s.log.Info("Vote recorded", "contest_id", c.ID, "submission_id", sub.ID, "voter_id", voter.ID, "votes_count", out.VotesCount)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastVote(c.ID, sub.ID, out.VotesCount)
	}

	return &VoteDecision{Status: VoteAccepted, Reason: entitlement.None, VotesCount: out.VotesCount}, nil
}

// Entitlement returns the advisory quota view for voter in contestID
func (s *VotingService) Entitlement(ctx context.Context, voter models.Identity, contestID string, now time.Time) (*entitlement.View, error) {
	c, err := s.repo.GetContest(ctx, contestID)
	if err == repository.ErrNotFound {
		return nil, ErrContestNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.Status == models.ContestStatusDraft {
		return nil, ErrContestNotFound
	}

	state, err := s.loadState(ctx, voter.ID, contestID)
	if err != nil {
		return nil, err
	}
	view := entitlement.Describe(*c, voter, state, now)
	return &view, nil
}

func (s *VotingService) loadState(ctx context.Context, voterID, contestID string) (models.EntitlementState, error) {
	st, err := s.repo.GetEntitlementState(ctx, voterID, contestID)
	if err == repository.ErrNotFound {
		return models.EntitlementState{VoterID: voterID, ContestID: contestID}, nil
	}
	if err != nil {
		return models.EntitlementState{}, err
	}
	return *st, nil
}
