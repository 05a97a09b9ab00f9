package schedule

import (
	"testing"
	"time"

	"github.com/abrezinsky/contestvote/internal/errors"
	"github.com/abrezinsky/contestvote/internal/models"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad test time %q: %v", s, err)
	}
	return ts
}

func TestResolve_DefaultsTimes(t *testing.T) {
	now := mustTime(t, "2024-12-20T10:00:00Z")
	in := Input{
		StartOption:   OptionLater,
		StartDate:     "2025-01-01",
		VotingEndDate: "2025-01-07",
	}

	s, err := Resolve(in, now, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := mustTime(t, "2025-01-01T00:00:00Z"); !s.StartAt.Equal(want) {
		t.Errorf("start: expected %v, got %v", want, s.StartAt)
	}
	if want := mustTime(t, "2025-01-07T23:59:00Z"); !s.VotingEndAt.Equal(want) {
		t.Errorf("voting end: expected %v, got %v", want, s.VotingEndAt)
	}
	if !s.SubmissionEndAt.Equal(s.VotingEndAt) {
		t.Errorf("expected submission end to default to voting end, got %v", s.SubmissionEndAt)
	}
	if !s.VotingStartAt.Equal(s.StartAt) {
		t.Errorf("expected voting start to default to start, got %v", s.VotingStartAt)
	}
	if s.CustomSubmissionDeadline {
		t.Error("did not expect a custom submission deadline")
	}
}

func TestResolve_NowShortcuts(t *testing.T) {
	now := mustTime(t, "2025-03-01T12:34:00Z")
	in := Input{
		StartOption:       OptionNow,
		VotingStartOption: OptionNow,
		VotingEndDate:     "2025-03-10",
		VotingEndTime:     "18:00",
	}

	s, err := Resolve(in, now, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.StartAt.Equal(now) || !s.VotingStartAt.Equal(now) {
		t.Errorf("expected start and voting start at now, got %v / %v", s.StartAt, s.VotingStartAt)
	}
	if want := mustTime(t, "2025-03-10T18:00:00Z"); !s.VotingEndAt.Equal(want) {
		t.Errorf("expected %v, got %v", want, s.VotingEndAt)
	}
}

func TestResolve_CustomDeadlineAndVotingStart(t *testing.T) {
	in := Input{
		StartDate:                 "2025-01-01",
		StartTime:                 "09:30",
		SubmissionDeadlineEnabled: true,
		SubmissionDeadlineDate:    "2025-01-05",
		VotingStartDate:           "2025-01-03",
		VotingEndDate:             "2025-01-08",
		VotingEndTime:             "12:00",
	}

	s, err := Resolve(in, time.Time{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checks := map[string][2]time.Time{
		"start":      {s.StartAt, mustTime(t, "2025-01-01T09:30:00Z")},
		"submission": {s.SubmissionEndAt, mustTime(t, "2025-01-05T23:59:00Z")},
		"voting":     {s.VotingStartAt, mustTime(t, "2025-01-03T00:00:00Z")},
		"end":        {s.VotingEndAt, mustTime(t, "2025-01-08T12:00:00Z")},
	}
	for name, pair := range checks {
		if !pair[0].Equal(pair[1]) {
			t.Errorf("%s: expected %v, got %v", name, pair[1], pair[0])
		}
	}
	if !s.CustomSubmissionDeadline {
		t.Error("expected custom submission deadline flag")
	}
}

func TestResolve_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	in := Input{StartDate: "2025-01-01", VotingEndDate: "2025-01-02", VotingEndTime: "02:00"}

	s, err := Resolve(in, time.Time{}, loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := mustTime(t, "2024-12-31T22:00:00Z"); !s.StartAt.Equal(want) {
		t.Errorf("expected %v, got %v", want, s.StartAt)
	}
	if s.StartAt.Location() != time.UTC {
		t.Errorf("expected UTC instants, got %v", s.StartAt.Location())
	}
}

func TestResolve_DataErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"missing voting end", Input{StartOption: OptionNow}, "voting_end_date"},
		{"bad voting end date", Input{StartOption: OptionNow, VotingEndDate: "2025-02-30"}, "voting_end_date"},
		{"missing start date", Input{StartOption: OptionLater, VotingEndDate: "2025-01-08"}, "start_date"},
		{"bad start time", Input{StartDate: "2025-01-01", StartTime: "25:00", VotingEndDate: "2025-01-08"}, "start_time"},
		{"bad deadline", Input{
			StartOption: OptionNow, VotingEndDate: "2025-01-08",
			SubmissionDeadlineEnabled: true, SubmissionDeadlineDate: "01/05/2025",
		}, "submission_deadline_date"},
		{"bad voting start", Input{StartOption: OptionNow, VotingEndDate: "2025-01-08", VotingStartDate: "tomorrow"}, "voting_start_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.in, time.Now(), time.UTC)
			if err == nil {
				t.Fatal("expected error")
			}
			var appErr *errors.Error
			if !asAppError(err, &appErr) {
				t.Fatalf("expected *errors.Error, got %T", err)
			}
			if appErr.Kind != errors.ErrInvalidInput {
				t.Errorf("expected invalid input, got %v", appErr.Kind)
			}
			if appErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, appErr.Field)
			}
		})
	}
}

func asAppError(err error, target **errors.Error) bool {
	e, ok := err.(*errors.Error)
	if ok {
		*target = e
	}
	return ok
}

func TestPhaseQueries_EndToEndScenario(t *testing.T) {
	s := Schedule{
		StartAt:         mustTime(t, "2025-01-01T00:00:00Z"),
		VotingStartAt:   mustTime(t, "2025-01-01T00:00:00Z"),
		VotingEndAt:     mustTime(t, "2025-01-08T00:00:00Z"),
		SubmissionEndAt: mustTime(t, "2025-01-08T00:00:00Z"),
	}

	submitAt := mustTime(t, "2025-01-07T23:00:00Z")
	if !s.AcceptingSubmissions(submitAt) {
		t.Error("expected submissions to be accepted an hour before the end")
	}

	voteAt := mustTime(t, "2025-01-08T00:01:00Z")
	if s.VotingOpen(voteAt) {
		t.Error("expected voting to be closed after the end")
	}
	if !s.Ended(voteAt) {
		t.Error("expected contest to have ended")
	}
}

func TestPhaseQueries_Boundaries(t *testing.T) {
	s := Schedule{
		StartAt:         mustTime(t, "2025-01-01T00:00:00Z"),
		SubmissionEndAt: mustTime(t, "2025-01-05T00:00:00Z"),
		VotingStartAt:   mustTime(t, "2025-01-03T00:00:00Z"),
		VotingEndAt:     mustTime(t, "2025-01-08T00:00:00Z"),
	}

	tests := []struct {
		at                       string
		accepting, voting, ended bool
		phase                    Phase
	}{
		{"2024-12-31T23:59:59Z", false, false, false, PhaseScheduled},
		{"2025-01-01T00:00:00Z", true, false, false, PhaseOpen},
		{"2025-01-03T00:00:00Z", true, true, false, PhaseOpen},
		{"2025-01-05T00:00:00Z", false, true, false, PhaseOpen},
		{"2025-01-07T23:59:59Z", false, true, false, PhaseOpen},
		{"2025-01-08T00:00:00Z", false, false, true, PhaseEnded},
	}

	for _, tt := range tests {
		t.Run(tt.at, func(t *testing.T) {
			now := mustTime(t, tt.at)
			info := s.Describe(now)
			if info.AcceptingSubmissions != tt.accepting {
				t.Errorf("accepting: expected %v, got %v", tt.accepting, info.AcceptingSubmissions)
			}
			if info.VotingOpen != tt.voting {
				t.Errorf("voting: expected %v, got %v", tt.voting, info.VotingOpen)
			}
			if info.Ended != tt.ended {
				t.Errorf("ended: expected %v, got %v", tt.ended, info.Ended)
			}
			if info.Phase != tt.phase {
				t.Errorf("phase: expected %s, got %s", tt.phase, info.Phase)
			}
		})
	}
}

func TestOfAndApply(t *testing.T) {
	c := models.Contest{
		StartAt:                  mustTime(t, "2025-01-01T00:00:00Z"),
		SubmissionEndAt:          mustTime(t, "2025-01-04T00:00:00Z"),
		VotingStartAt:            mustTime(t, "2025-01-02T00:00:00Z"),
		VotingEndAt:              mustTime(t, "2025-01-05T00:00:00Z"),
		CustomSubmissionDeadline: true,
	}

	s := Of(c)
	var copyTo models.Contest
	s.Apply(&copyTo)

	if Of(copyTo) != s {
		t.Errorf("expected round trip through Apply, got %+v", Of(copyTo))
	}
}
