package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/abrezinsky/contestvote/internal/entitlement"
	"github.com/abrezinsky/contestvote/internal/handlers"
	"github.com/abrezinsky/contestvote/internal/models"
	"github.com/abrezinsky/contestvote/internal/services"
)

func TestHandleVote_Accepted(t *testing.T) {
	ts := newTestSetup(t)
	ts.seedContest(t, "c1", models.DefaultConfig())
	ts.seedSubmission(t, "c1", "s1", "author", time.Minute)

	rec := ts.do(t, http.MethodPost, "/api/submissions/s1/vote", nil, asUser("bob"))

	expectStatus(t, rec, http.StatusOK)
	var resp handlers.VoteResponse
	decodeBody(t, rec, &resp)
	if resp.Status != services.VoteAccepted || resp.VotesCount != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHandleVote_GuestHeaderCannotVote(t *testing.T) {
	ts := newTestSetup(t)
	cfg := models.DefaultConfig()
	cfg.VotingMethods = []models.VotingMethod{models.VotingMethodPublic}
	cfg.VotesPerUserPerPeriod = 1
	cfg.TotalVotesPerUser = 1
	ts.seedContest(t, "c1", cfg)
	ts.seedSubmission(t, "c1", "s1", "author", time.Minute)

	// Rotating a client-chosen id must not mint fresh voters
	for i := 0; i < 20; i++ {
		rec := ts.do(t, http.MethodPost, "/api/submissions/s1/vote", nil, asGuest(fmt.Sprintf("x%d", i)))
		expectError(t, rec, http.StatusUnauthorized, handlers.ErrCodeUnauthorized)
	}

	rec := ts.do(t, http.MethodGet, "/api/contests/c1/leaderboard", nil)
	expectStatus(t, rec, http.StatusOK)
	var board services.Leaderboard
	decodeBody(t, rec, &board)
	if len(board.Standings) != 1 || board.Standings[0].Submission.VotesCount != 0 {
		t.Errorf("expected no recorded votes, got %+v", board.Standings)
	}

	// The one real voter still gets exactly one vote
	expectStatus(t, ts.do(t, http.MethodPost, "/api/submissions/s1/vote", nil, asUser("bob")), http.StatusOK)
	rec = ts.do(t, http.MethodPost, "/api/submissions/s1/vote", nil, asUser("bob"))
	expectError(t, rec, http.StatusConflict, entitlement.AlreadyVoted.Code())
}

func TestHandleVote_RequiresIdentity(t *testing.T) {
	ts := newTestSetup(t)
	ts.seedContest(t, "c1", models.DefaultConfig())
	ts.seedSubmission(t, "c1", "s1", "author", time.Minute)

	rec := ts.do(t, http.MethodPost, "/api/submissions/s1/vote", nil)

	expectError(t, rec, http.StatusUnauthorized, handlers.ErrCodeUnauthorized)
}

func TestHandleVote_Rejections(t *testing.T) {
	jury := models.DefaultConfig()
	jury.VotingMethods = []models.VotingMethod{models.VotingMethodJury}
	jury.JuryMembers = []string{"juror"}

	tests := []struct {
		name   string
		cfg    models.ContestConfig
		voter  requestOption
		now    time.Duration
		status int
		reason entitlement.Reason
	}{
		{name: "self vote", cfg: models.DefaultConfig(), voter: asUser("author"), now: time.Hour, status: http.StatusForbidden, reason: entitlement.SelfVote},
		{name: "not a juror", cfg: jury, voter: asUser("bob"), now: time.Hour, status: http.StatusForbidden, reason: entitlement.MethodNotPermitted},
		{name: "voting ended", cfg: models.DefaultConfig(), voter: asUser("bob"), now: 7 * 24 * time.Hour, status: http.StatusConflict, reason: entitlement.VotingClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestSetup(t)
			c := ts.seedContest(t, "c1", tt.cfg)
			ts.seedSubmission(t, "c1", "s1", "author", time.Minute)
			ts.now = c.VotingStartAt.Add(tt.now)

			rec := ts.do(t, http.MethodPost, "/api/submissions/s1/vote", nil, tt.voter)

			apiErr := expectError(t, rec, tt.status, tt.reason.Code())
			if apiErr.Message != tt.reason.Message() {
				t.Errorf("expected message %q, got %q", tt.reason.Message(), apiErr.Message)
			}
		})
	}
}

func TestHandleVote_PeriodQuota(t *testing.T) {
	ts := newTestSetup(t)
	ts.seedContest(t, "c1", models.DefaultConfig())
	ts.seedSubmission(t, "c1", "s1", "author-1", time.Minute)
	ts.seedSubmission(t, "c1", "s2", "author-2", 2*time.Minute)

	expectStatus(t, ts.do(t, http.MethodPost, "/api/submissions/s1/vote", nil, asUser("bob")), http.StatusOK)

	rec := ts.do(t, http.MethodPost, "/api/submissions/s2/vote", nil, asUser("bob"))
	expectError(t, rec, http.StatusConflict, entitlement.PeriodQuotaExceeded.Code())

	// The next period restores the quota
	ts.now = ts.now.Add(24 * time.Hour)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/submissions/s2/vote", nil, asUser("bob")), http.StatusOK)
}

func TestHandleVote_SubmissionNotFound(t *testing.T) {
	ts := newTestSetup(t)

	rec := ts.do(t, http.MethodPost, "/api/submissions/missing/vote", nil, asUser("bob"))

	expectError(t, rec, http.StatusNotFound, handlers.ErrCodeNotFound)
}

func TestHandleEntitlement(t *testing.T) {
	ts := newTestSetup(t)
	cfg := models.DefaultConfig()
	cfg.VotesPerUserPerPeriod = 3
	cfg.TotalVotesPerUser = 5
	ts.seedContest(t, "c1", cfg)
	ts.seedSubmission(t, "c1", "s1", "author", time.Minute)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/submissions/s1/vote", nil, asUser("bob")), http.StatusOK)

	rec := ts.do(t, http.MethodGet, "/api/contests/c1/entitlement", nil, asUser("bob"))

	expectStatus(t, rec, http.StatusOK)
	var view entitlement.View
	decodeBody(t, rec, &view)
	if view.PeriodRemaining != 2 || view.LifetimeRemaining != 4 {
		t.Errorf("expected 2/4 remaining, got %d/%d", view.PeriodRemaining, view.LifetimeRemaining)
	}
	if !view.VotingOpen || !view.Permitted {
		t.Errorf("expected open and permitted, got %+v", view)
	}
}

func TestHandleEntitlement_RequiresIdentity(t *testing.T) {
	ts := newTestSetup(t)
	ts.seedContest(t, "c1", models.DefaultConfig())

	rec := ts.do(t, http.MethodGet, "/api/contests/c1/entitlement", nil)

	expectError(t, rec, http.StatusUnauthorized, handlers.ErrCodeUnauthorized)
}

func submissionBody() services.SubmissionInput {
	return services.SubmissionInput{
		Title:     "Sunrise",
		MediaURL:  "https://cdn.example.com/sunrise.png",
		MediaType: models.MediaTypeImage,
		SizeBytes: 1 << 20,
	}
}

func TestHandleSubmit_Success(t *testing.T) {
	ts := newTestSetup(t)
	ts.seedContest(t, "c1", models.DefaultConfig())

	rec := ts.do(t, http.MethodPost, "/api/contests/c1/submissions", submissionBody(), asUser("alice"))

	expectStatus(t, rec, http.StatusCreated)
	var sub models.Submission
	decodeBody(t, rec, &sub)
	if sub.UserID != "alice" || sub.Status != models.SubmissionPending {
		t.Errorf("unexpected submission: %+v", sub)
	}
}

func TestHandleSubmit_GuestHeaderRejected(t *testing.T) {
	ts := newTestSetup(t)
	ts.seedContest(t, "c1", models.DefaultConfig())

	for i := 0; i < 3; i++ {
		rec := ts.do(t, http.MethodPost, "/api/contests/c1/submissions", submissionBody(), asGuest(fmt.Sprintf("device-%d", i)))
		expectError(t, rec, http.StatusUnauthorized, handlers.ErrCodeUnauthorized)
	}
}

func TestHandleSubmit_Errors(t *testing.T) {
	tests := []struct {
		name   string
		cfg    models.ContestConfig
		body   interface{}
		voter  requestOption
		status int
		code   string
	}{
		{name: "invalid json", cfg: models.DefaultConfig(), body: "{bad", voter: asUser("alice"), status: http.StatusBadRequest, code: handlers.ErrCodeBadRequest},
		{name: "missing media", cfg: models.DefaultConfig(), body: services.SubmissionInput{MediaType: models.MediaTypeImage}, voter: asUser("alice"), status: http.StatusUnprocessableEntity, code: handlers.ErrCodeValidation},
		{name: "media type", cfg: models.DefaultConfig(), body: services.SubmissionInput{MediaURL: "https://cdn.example.com/a.mp4", MediaType: models.MediaTypeVideo}, voter: asUser("alice"), status: http.StatusBadRequest, code: handlers.ErrCodeMediaTypeNotAllowed},
		{name: "too large", cfg: models.DefaultConfig(), body: services.SubmissionInput{MediaURL: "https://cdn.example.com/a.png", MediaType: models.MediaTypeImage, SizeBytes: 11 << 20}, voter: asUser("alice"), status: http.StatusRequestEntityTooLarge, code: handlers.ErrCodeFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestSetup(t)
			ts.seedContest(t, "c1", tt.cfg)

			rec := ts.do(t, http.MethodPost, "/api/contests/c1/submissions", tt.body, tt.voter)

			expectError(t, rec, tt.status, tt.code)
		})
	}
}

func TestHandleSubmit_EntryLimit(t *testing.T) {
	ts := newTestSetup(t)
	ts.seedContest(t, "c1", models.DefaultConfig())

	expectStatus(t, ts.do(t, http.MethodPost, "/api/contests/c1/submissions", submissionBody(), asUser("alice")), http.StatusCreated)

	rec := ts.do(t, http.MethodPost, "/api/contests/c1/submissions", submissionBody(), asUser("alice"))
	expectError(t, rec, http.StatusConflict, handlers.ErrCodeEntryLimitReached)
}
