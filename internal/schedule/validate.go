package schedule

import (
	"time"

	"github.com/abrezinsky/contestvote/internal/errors"
	"github.com/abrezinsky/contestvote/internal/models"
)

// Mode selects which ordering rules Validate enforces.
type Mode int

const (
	// Strict enforces every ordering rule. Used when authoring a contest
	// that has not started.
	Strict Mode = iota
	// LiveEdit relaxes rules involving startAt so a running contest can be
	// extended or shortened. Contradictory anchors are still rejected and
	// no changed anchor may be placed before now.
	LiveEdit
)

func (m Mode) String() string {
	if m == LiveEdit {
		return "live_edit"
	}
	return "strict"
}

// ModeFor picks the validation mode for editing a contest with the given
// stored status and start anchor.
func ModeFor(status models.ContestStatus, startAt, now time.Time) Mode {
	if status == models.ContestStatusActive || !now.Before(startAt) {
		return LiveEdit
	}
	return Strict
}

// Rule messages.
const (
	MsgStartBeforeVotingEnd       = "contest start must precede voting end"
	MsgVotingStartAfterStart      = "voting cannot start before the contest starts"
	MsgVotingStartBeforeEnd       = "voting start must precede voting end"
	MsgSubmissionEndAfterStart    = "submission deadline must be after the contest start"
	MsgSubmissionEndBeforeVoteEnd = "submission deadline cannot be after voting end"
	MsgAnchorInPast               = "cannot be moved to a time that has already passed"
)

// Validate checks s and returns one entry per violated rule. prev is the
// stored schedule when editing and may be nil when creating.
func Validate(s Schedule, mode Mode, prev *Schedule, now time.Time) errors.ValidationErrors {
	var problems errors.ValidationErrors

	if mode == Strict {
		if !s.StartAt.Before(s.VotingEndAt) {
			problems.Add("voting_end", MsgStartBeforeVotingEnd)
		}
		if s.VotingStartAt.Before(s.StartAt) {
			problems.Add("voting_start", MsgVotingStartAfterStart)
		}
		if (s.CustomSubmissionDeadline || !s.SubmissionEndAt.Equal(s.VotingEndAt)) && !s.StartAt.Before(s.SubmissionEndAt) {
			problems.Add("submission_deadline", MsgSubmissionEndAfterStart)
		}
	}

	if !s.VotingStartAt.Before(s.VotingEndAt) {
		problems.Add("voting_start", MsgVotingStartBeforeEnd)
	}
	if s.SubmissionEndAt.After(s.VotingEndAt) {
		problems.Add("submission_deadline", MsgSubmissionEndBeforeVoteEnd)
	}

	if mode == LiveEdit && prev != nil {
		anchors := []struct {
			field     string
			old, next time.Time
		}{
			{"start", prev.StartAt, s.StartAt},
			{"submission_deadline", prev.SubmissionEndAt, s.SubmissionEndAt},
			{"voting_start", prev.VotingStartAt, s.VotingStartAt},
			{"voting_end", prev.VotingEndAt, s.VotingEndAt},
		}
		for _, a := range anchors {
			if !a.next.Equal(a.old) && a.next.Before(now) {
				problems.Add(a.field, MsgAnchorInPast)
			}
		}
	}

	return problems
}
