package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/contestvote/internal/entitlement"
	"github.com/abrezinsky/contestvote/internal/models"
)

// QuotaFunc receives the contest as stored at the start of the vote
// transaction and the voter's quota state (zero window when none exists
// yet), and returns the state to persist and the decision. It runs inside
// the transaction and must not block.
type QuotaFunc func(contest models.Contest, current models.EntitlementState) (models.EntitlementState, entitlement.Reason)

// VoteOutcome is the result of CastVote
type VoteOutcome struct {
	Reason     entitlement.Reason
	VotesCount int
	State      models.EntitlementState
}

// Recorded reports whether the vote was stored.
func (o *VoteOutcome) Recorded() bool {
	return o.Reason == entitlement.None
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// HasVoted reports whether voterID already backs submissionID
func (r *Repository) HasVoted(ctx context.Context, voterID, submissionID string) (bool, error) {
	return hasVoted(ctx, r.db, voterID, submissionID)
}

func hasVoted(ctx context.Context, q queryer, voterID, submissionID string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE voter_id = ? AND submission_id = ?`, voterID, submissionID).Scan(&count)
	return count > 0, err
}

// GetEntitlementState returns the stored quota state or ErrNotFound
func (r *Repository) GetEntitlementState(ctx context.Context, voterID, contestID string) (*models.EntitlementState, error) {
	return getEntitlementState(ctx, r.db, voterID, contestID)
}

func getEntitlementState(ctx context.Context, q queryer, voterID, contestID string) (*models.EntitlementState, error) {
	st := models.EntitlementState{VoterID: voterID, ContestID: contestID}
	err := q.QueryRowContext(ctx, `
		SELECT period_window_start, votes_in_current_period, lifetime_votes_used, updated_at
		FROM entitlement_states WHERE voter_id = ? AND contest_id = ?
	`, voterID, contestID).Scan(&st.PeriodWindowStart, &st.VotesInCurrentPeriod, &st.LifetimeVotesUsed, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// CastVote records vote atomically. Inside one immediate transaction it
// re-reads the contest, rejects duplicates, evaluates decide against the
// stored contest and quota state,
// persists the resulting state and, when accepted, inserts the vote and
// increments the submission's vote count in SQL.
func (r *Repository) CastVote(ctx context.Context, vote models.Vote, decide QuotaFunc) (*VoteOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	contest, err := scanContest(tx.QueryRowContext(ctx, `SELECT `+contestColumns+` FROM contests WHERE id = ?`, vote.ContestID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	voted, err := hasVoted(ctx, tx, vote.VoterID, vote.SubmissionID)
	if err != nil {
		return nil, err
	}
	if voted {
		return &VoteOutcome{Reason: entitlement.AlreadyVoted}, nil
	}

	current, err := getEntitlementState(ctx, tx, vote.VoterID, vote.ContestID)
	if err == ErrNotFound {
		current = &models.EntitlementState{VoterID: vote.VoterID, ContestID: vote.ContestID}
	} else if err != nil {
		return nil, err
	}

	next, reason := decide(*contest, *current)
	next.VoterID = vote.VoterID
	next.ContestID = vote.ContestID
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = vote.CastAt
	}

	outcome := &VoteOutcome{Reason: reason, State: next}

	if reason == entitlement.None {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO votes (id, voter_id, submission_id, contest_id, cast_at) VALUES (?, ?, ?, ?, ?)
		`, vote.ID, vote.VoterID, vote.SubmissionID, vote.ContestID, vote.CastAt.UTC()); err != nil {
			if isUniqueViolation(err) {
				return &VoteOutcome{Reason: entitlement.AlreadyVoted}, nil
			}
			return nil, err
		}

		res, err := tx.ExecContext(ctx, `UPDATE submissions SET votes_count = votes_count + 1 WHERE id = ?`, vote.SubmissionID)
		if err != nil {
			return nil, err
		}
		if err := requireRow(res); err != nil {
			return nil, err
		}

		if err := tx.QueryRowContext(ctx, `SELECT votes_count FROM submissions WHERE id = ?`, vote.SubmissionID).Scan(&outcome.VotesCount); err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO entitlement_states (voter_id, contest_id, period_window_start, votes_in_current_period, lifetime_votes_used, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(voter_id, contest_id) DO UPDATE SET
			period_window_start = excluded.period_window_start,
			votes_in_current_period = excluded.votes_in_current_period,
			lifetime_votes_used = excluded.lifetime_votes_used,
			updated_at = excluded.updated_at
	`, next.VoterID, next.ContestID, next.PeriodWindowStart.UTC(), next.VotesInCurrentPeriod, next.LifetimeVotesUsed, next.UpdatedAt.UTC()); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return outcome, nil
}

// CountVotes returns the number of votes cast in a contest
func (r *Repository) CountVotes(ctx context.Context, contestID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE contest_id = ?`, contestID).Scan(&count)
	return count, err
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
