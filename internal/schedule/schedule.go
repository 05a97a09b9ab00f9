// Package schedule resolves and validates the four time anchors of a
// contest and answers phase questions against a caller-supplied instant.
package schedule

import (
	"time"

	"github.com/abrezinsky/contestvote/internal/errors"
	"github.com/abrezinsky/contestvote/internal/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	defaultStartTime = "00:00"
	defaultEndTime   = "23:59"
)

// Option selects between starting immediately and starting at a given date.
type Option string

const (
	OptionNow   Option = "now"
	OptionLater Option = "later"
)

// Input holds the raw authoring fields for a contest schedule. Dates are
// YYYY-MM-DD and times HH:MM in the resolving location.
type Input struct {
	StartOption               Option `json:"start_option"`
	StartDate                 string `json:"start_date,omitempty"`
	StartTime                 string `json:"start_time,omitempty"`
	SubmissionDeadlineEnabled bool   `json:"submission_deadline_enabled"`
	SubmissionDeadlineDate    string `json:"submission_deadline_date,omitempty"`
	SubmissionDeadlineTime    string `json:"submission_deadline_time,omitempty"`
	VotingStartOption         Option `json:"voting_start_option"`
	VotingStartDate           string `json:"voting_start_date,omitempty"`
	VotingEndDate             string `json:"voting_end_date"`
	VotingEndTime             string `json:"voting_end_time,omitempty"`
}

// Schedule is the resolved set of anchors. All instants are UTC.
type Schedule struct {
	StartAt                  time.Time `json:"start_at"`
	SubmissionEndAt          time.Time `json:"submission_end_at"`
	VotingStartAt            time.Time `json:"voting_start_at"`
	VotingEndAt              time.Time `json:"voting_end_at"`
	CustomSubmissionDeadline bool      `json:"custom_submission_deadline"`
}

// Of returns the schedule stored on a contest.
func Of(c models.Contest) Schedule {
	return Schedule{
		StartAt:                  c.StartAt,
		SubmissionEndAt:          c.SubmissionEndAt,
		VotingStartAt:            c.VotingStartAt,
		VotingEndAt:              c.VotingEndAt,
		CustomSubmissionDeadline: c.CustomSubmissionDeadline,
	}
}

// Apply copies the anchors onto c.
func (s Schedule) Apply(c *models.Contest) {
	c.StartAt = s.StartAt
	c.SubmissionEndAt = s.SubmissionEndAt
	c.VotingStartAt = s.VotingStartAt
	c.VotingEndAt = s.VotingEndAt
	c.CustomSubmissionDeadline = s.CustomSubmissionDeadline
}

// Resolve turns authoring input into concrete anchors. Missing or
// unparseable dates are returned as InvalidInput errors; ordering is not
// checked here.
func Resolve(in Input, now time.Time, loc *time.Location) (Schedule, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.UTC()

	var s Schedule
	var err error

	if in.StartOption == OptionNow {
		s.StartAt = now
	} else {
		s.StartAt, err = combine("start", in.StartDate, in.StartTime, defaultStartTime, loc)
		if err != nil {
			return Schedule{}, err
		}
	}

	s.VotingEndAt, err = combine("voting_end", in.VotingEndDate, in.VotingEndTime, defaultEndTime, loc)
	if err != nil {
		return Schedule{}, err
	}

	if in.SubmissionDeadlineEnabled {
		s.CustomSubmissionDeadline = true
		s.SubmissionEndAt, err = combine("submission_deadline", in.SubmissionDeadlineDate, in.SubmissionDeadlineTime, defaultEndTime, loc)
		if err != nil {
			return Schedule{}, err
		}
	} else {
		s.SubmissionEndAt = s.VotingEndAt
	}

	switch {
	case in.VotingStartOption == OptionNow:
		s.VotingStartAt = now
	case in.VotingStartDate != "":
		s.VotingStartAt, err = combine("voting_start", in.VotingStartDate, "", defaultStartTime, loc)
		if err != nil {
			return Schedule{}, err
		}
	default:
		s.VotingStartAt = s.StartAt
	}

	return s, nil
}

func combine(field, date, clock, defaultClock string, loc *time.Location) (time.Time, error) {
	if date == "" {
		return time.Time{}, errors.InvalidInput(field+"_date", "date is required")
	}
	d, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, errors.InvalidInputf(field+"_date", "invalid date %q, expected YYYY-MM-DD", date)
	}
	if clock == "" {
		clock = defaultClock
	}
	c, err := time.Parse(timeLayout, clock)
	if err != nil {
		return time.Time{}, errors.InvalidInputf(field+"_time", "invalid time %q, expected HH:MM", clock)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc).UTC(), nil
}

// AcceptingSubmissions reports whether entries may be submitted at now.
func (s Schedule) AcceptingSubmissions(now time.Time) bool {
	return !now.Before(s.StartAt) && now.Before(s.SubmissionEndAt)
}

// VotingOpen reports whether votes may be cast at now.
func (s Schedule) VotingOpen(now time.Time) bool {
	return !now.Before(s.VotingStartAt) && now.Before(s.VotingEndAt)
}

// Ended reports whether the contest has fully closed at now.
func (s Schedule) Ended(now time.Time) bool {
	return !now.Before(s.VotingEndAt)
}

// Phase summarises the schedule at an instant
type Phase string

const (
	PhaseScheduled Phase = "scheduled"
	PhaseOpen      Phase = "open"
	PhaseEnded     Phase = "ended"
)

// Phase returns the coarse phase at now.
func (s Schedule) Phase(now time.Time) Phase {
	switch {
	case s.Ended(now):
		return PhaseEnded
	case now.Before(s.StartAt):
		return PhaseScheduled
	default:
		return PhaseOpen
	}
}

// PhaseInfo is the detailed phase view returned to API clients.
type PhaseInfo struct {
	Phase                Phase `json:"phase"`
	AcceptingSubmissions bool  `json:"accepting_submissions"`
	VotingOpen           bool  `json:"voting_open"`
	Ended                bool  `json:"ended"`
}

// Describe evaluates every phase query at now.
func (s Schedule) Describe(now time.Time) PhaseInfo {
	return PhaseInfo{
		Phase:                s.Phase(now),
		AcceptingSubmissions: s.AcceptingSubmissions(now),
		VotingOpen:           s.VotingOpen(now),
		Ended:                s.Ended(now),
	}
}
