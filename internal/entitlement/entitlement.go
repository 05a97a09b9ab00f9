// Package entitlement decides whether a voter may cast one more vote in a
// contest. Everything here is pure; persistence and atomicity live in the
// repository's vote transaction.
package entitlement

import (
	"time"

	"github.com/abrezinsky/contestvote/internal/models"
	"github.com/abrezinsky/contestvote/internal/schedule"
)

// Reason explains why a vote was rejected. None means the vote is allowed.
type Reason int

const (
	None Reason = iota
	VotingClosed
	AlreadyVoted
	SelfVote
	MethodNotPermitted
	PeriodQuotaExceeded
	LifetimeQuotaExceeded
)

// Code is the stable machine-readable form used on the wire.
func (r Reason) Code() string {
	switch r {
	case VotingClosed:
		return "VOTING_CLOSED"
	case AlreadyVoted:
		return "ALREADY_VOTED"
	case SelfVote:
		return "SELF_VOTE"
	case MethodNotPermitted:
		return "METHOD_NOT_PERMITTED"
	case PeriodQuotaExceeded:
		return "PERIOD_QUOTA_EXCEEDED"
	case LifetimeQuotaExceeded:
		return "LIFETIME_QUOTA_EXCEEDED"
	default:
		return ""
	}
}

// Message is a user-displayable description.
func (r Reason) Message() string {
	switch r {
	case VotingClosed:
		return "voting is not open for this contest"
	case AlreadyVoted:
		return "you have already voted for this submission"
	case SelfVote:
		return "you cannot vote for your own submission"
	case MethodNotPermitted:
		return "you are not permitted to vote in this contest"
	case PeriodQuotaExceeded:
		return "you have used all votes for the current period"
	case LifetimeQuotaExceeded:
		return "you have used all votes for this contest"
	default:
		return ""
	}
}

func (r Reason) String() string {
	if r == None {
		return "ACCEPTED"
	}
	return r.Code()
}

// Request gathers the facts needed to evaluate one vote attempt.
type Request struct {
	Contest    models.Contest
	Submission models.Submission
	Voter      models.Identity
	HasVoted   bool
	State      models.EntitlementState
	Now        time.Time
}

// Decision is the outcome of Evaluate. State is the voter's quota state
// after rolling the period window and, when accepted, consuming one vote.
type Decision struct {
	Reason Reason
	State  models.EntitlementState
}

// Accepted reports whether the vote may be recorded.
func (d Decision) Accepted() bool {
	return d.Reason == None
}

// Evaluate runs the checks in order and stops at the first failure:
// voting open, duplicate vote, self vote, method gating, lifetime cap,
// period quota.
func Evaluate(req Request) Decision {
	sched := schedule.Of(req.Contest)
	if req.Contest.Status != models.ContestStatusActive || !sched.VotingOpen(req.Now) {
		return Decision{Reason: VotingClosed, State: req.State}
	}
	if req.HasVoted {
		return Decision{Reason: AlreadyVoted, State: req.State}
	}
	if req.Submission.UserID == req.Voter.ID {
		return Decision{Reason: SelfVote, State: req.State}
	}
	if !Admits(req.Contest.Config, req.Voter) {
		return Decision{Reason: MethodNotPermitted, State: req.State}
	}

	state, reason := CheckQuota(req.Contest.Config, sched.VotingStartAt, req.State, req.Now)
	if reason != None {
		return Decision{Reason: reason, State: state}
	}
	return Decision{Reason: None, State: Consume(state, req.Now)}
}

// Recheck repeats the contest-dependent checks against a freshly read
// contest and quota state and consumes one vote when all pass. Duplicate
// and self votes do not depend on the contest row and are not repeated.
func Recheck(c models.Contest, voter models.Identity, state models.EntitlementState, now time.Time) (models.EntitlementState, Reason) {
	sched := schedule.Of(c)
	if c.Status != models.ContestStatusActive || !sched.VotingOpen(now) {
		return state, VotingClosed
	}
	if !Admits(c.Config, voter) {
		return state, MethodNotPermitted
	}
	next, reason := CheckQuota(c.Config, sched.VotingStartAt, state, now)
	if reason != None {
		return next, reason
	}
	return Consume(next, now), None
}

// Admits reports whether any enabled voting method admits voter. Every
// method requires an authenticated identity.
func Admits(cfg models.ContestConfig, voter models.Identity) bool {
	if voter.IsZero() || !voter.Authenticated {
		return false
	}
	for _, m := range cfg.VotingMethods {
		switch m {
		case models.VotingMethodPublic, models.VotingMethodLoggedUsers:
			return true
		case models.VotingMethodJury:
			if cfg.IsJuryMember(voter.ID) {
				return true
			}
		}
	}
	return false
}

// PeriodLength returns the configured period as a duration.
func PeriodLength(cfg models.ContestConfig) time.Duration {
	return time.Duration(cfg.PeriodDurationHours) * time.Hour
}

// WindowStart returns the start of the period containing now. Periods are
// fixed-length and anchored at votingStartAt so every voter shares the same
// boundaries. Before voting starts the first window is returned.
func WindowStart(votingStartAt time.Time, period time.Duration, now time.Time) time.Time {
	if period <= 0 || !now.After(votingStartAt) {
		return votingStartAt
	}
	k := now.Sub(votingStartAt) / period
	return votingStartAt.Add(k * period)
}

// Roll advances state to the window starting at windowStart, resetting the
// per-period counter when the stored window is older.
func Roll(state models.EntitlementState, windowStart time.Time) models.EntitlementState {
	if state.PeriodWindowStart.Before(windowStart) {
		state.PeriodWindowStart = windowStart
		state.VotesInCurrentPeriod = 0
	}
	return state
}

// CheckQuota rolls state to the current window and applies the lifetime
// cap and then the per-period quota. A zero limit means no cap. The
// lifetime cap is checked first so an exhausted contest allowance is
// always reported as such.
func CheckQuota(cfg models.ContestConfig, votingStartAt time.Time, state models.EntitlementState, now time.Time) (models.EntitlementState, Reason) {
	state = Roll(state, WindowStart(votingStartAt, PeriodLength(cfg), now))

	if cfg.TotalVotesPerUser > 0 && state.LifetimeVotesUsed >= cfg.TotalVotesPerUser {
		return state, LifetimeQuotaExceeded
	}
	if cfg.VotesPerUserPerPeriod > 0 && state.VotesInCurrentPeriod >= cfg.VotesPerUserPerPeriod {
		return state, PeriodQuotaExceeded
	}
	return state, None
}

// Consume records one accepted vote.
func Consume(state models.EntitlementState, now time.Time) models.EntitlementState {
	state.VotesInCurrentPeriod++
	state.LifetimeVotesUsed++
	state.UpdatedAt = now
	return state
}

// View is the advisory quota summary shown to clients. Remaining values are
// -1 when the corresponding limit is disabled.
type View struct {
	PeriodRemaining   int       `json:"period_remaining"`
	LifetimeRemaining int       `json:"lifetime_remaining"`
	WindowStart       time.Time `json:"window_start"`
	WindowEnd         time.Time `json:"window_end"`
	VotingOpen        bool      `json:"voting_open"`
	Permitted         bool      `json:"permitted"`
}

// Describe computes the advisory view for voter at now.
func Describe(c models.Contest, voter models.Identity, state models.EntitlementState, now time.Time) View {
	sched := schedule.Of(c)
	period := PeriodLength(c.Config)
	start := WindowStart(sched.VotingStartAt, period, now)
	state = Roll(state, start)

	v := View{
		PeriodRemaining:   -1,
		LifetimeRemaining: -1,
		WindowStart:       start,
		WindowEnd:         start.Add(period),
		VotingOpen:        c.Status == models.ContestStatusActive && sched.VotingOpen(now),
		Permitted:         Admits(c.Config, voter),
	}
	if v.WindowEnd.After(sched.VotingEndAt) {
		v.WindowEnd = sched.VotingEndAt
	}
	if c.Config.VotesPerUserPerPeriod > 0 {
		v.PeriodRemaining = max(c.Config.VotesPerUserPerPeriod-state.VotesInCurrentPeriod, 0)
	}
	if c.Config.TotalVotesPerUser > 0 {
		v.LifetimeRemaining = max(c.Config.TotalVotesPerUser-state.LifetimeVotesUsed, 0)
		if v.PeriodRemaining > v.LifetimeRemaining {
			v.PeriodRemaining = v.LifetimeRemaining
		}
	}
	return v
}
