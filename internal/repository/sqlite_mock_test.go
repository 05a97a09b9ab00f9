package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/abrezinsky/contestvote/internal/entitlement"
	"github.com/abrezinsky/contestvote/internal/models"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Repository{db: db}, mock
}

var contestCols = []string{"id", "title", "description", "status", "start_at", "submission_end_at",
	"voting_start_at", "voting_end_at", "custom_submission_deadline", "config", "created_at", "updated_at"}

// expectContestRow expects the in-transaction contest read of CastVote
func expectContestRow(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT (.+) FROM contests WHERE id").WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(contestCols).AddRow("c1", "Title", nil, "active", t0, t0, t0, t0, false, "{}", t0, t0))
}

// TestListContests_ScanError tests row scanning error
func TestListContests_ScanError(t *testing.T) {
	repo, mock := newMockRepo(t)

	// start_at is not a time
	rows := sqlmock.NewRows(contestCols).
		AddRow("c1", "Title", nil, "active", "not-a-time", t0, t0, t0, false, "{}", t0, t0)
	mock.ExpectQuery("SELECT (.+) FROM contests").WillReturnRows(rows)

	if _, err := repo.ListContests(context.Background(), ""); err == nil {
		t.Error("expected error from scan failure, got nil")
	}
}

// TestGetContest_BadConfigJSON tests a corrupt stored config
func TestGetContest_BadConfigJSON(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows(contestCols).
		AddRow("c1", "Title", nil, "active", t0, t0, t0, t0, false, "{not json", t0, t0)
	mock.ExpectQuery("SELECT (.+) FROM contests WHERE id").WithArgs("c1").WillReturnRows(rows)

	if _, err := repo.GetContest(context.Background(), "c1"); err == nil {
		t.Error("expected error for corrupt config, got nil")
	}
}

// TestListContests_QueryError tests query failure
func TestListContests_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM contests WHERE status").WillReturnError(errors.New("query failed"))

	if _, err := repo.ListContests(context.Background(), models.ContestStatusActive); err == nil {
		t.Error("expected query error, got nil")
	}
}

// TestListSubmissions_ScanError tests row scanning error
func TestListSubmissions_ScanError(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "contest_id", "user_id", "title", "media_url", "media_type", "status", "votes_count", "created_at"}).
		AddRow("s1", "c1", "u1", nil, nil, "image", "approved", "many", t0) // votes_count should be int
	mock.ExpectQuery("SELECT (.+) FROM submissions").WillReturnRows(rows)

	if _, err := repo.ListSubmissions(context.Background(), "c1", ""); err == nil {
		t.Error("expected error from scan failure, got nil")
	}
}

// TestSetContestStatus_RowsAffectedError tests a driver that cannot report affected rows
func TestSetContestStatus_RowsAffectedError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE contests SET status").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("rows affected unavailable")))

	ok, err := repo.SetContestStatus(context.Background(), "c1", models.ContestStatusDraft, models.ContestStatusActive, t0)
	if err == nil || ok {
		t.Errorf("expected error, got ok=%v err=%v", ok, err)
	}
}

// TestCastVote_BeginError tests transaction start failure
func TestCastVote_BeginError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	_, err := repo.CastVote(context.Background(), vote("v1", "alice", "s1", "c1", t0), accept(t0))
	if err == nil {
		t.Error("expected begin error, got nil")
	}
}

// TestCastVote_StateLoadError tests that a failed state read rolls back
func TestCastVote_StateLoadError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	expectContestRow(mock)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM votes").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM entitlement_states").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err := repo.CastVote(context.Background(), vote("v1", "alice", "s1", "c1", t0), accept(t0))
	if err == nil {
		t.Error("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestCastVote_ContestMissing tests that a contest deleted before the
// transaction is reported as not found
func TestCastVote_ContestMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM contests WHERE id").WithArgs("c1").WillReturnRows(sqlmock.NewRows(contestCols))
	mock.ExpectRollback()

	_, err := repo.CastVote(context.Background(), vote("v1", "alice", "s1", "c1", t0), accept(t0))
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestCastVote_RejectedSkipsVoteInsert checks that a quota rejection writes
// only the entitlement state
func TestCastVote_RejectedSkipsVoteInsert(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := t0.Add(time.Hour)

	mock.ExpectBegin()
	expectContestRow(mock)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM votes").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM entitlement_states").
		WillReturnRows(sqlmock.NewRows([]string{"period_window_start", "votes_in_current_period", "lifetime_votes_used", "updated_at"}).
			AddRow(t0, 1, 1, t0))
	mock.ExpectExec("INSERT INTO entitlement_states").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := repo.CastVote(context.Background(), vote("v1", "alice", "s1", "c1", at),
		func(_ models.Contest, st models.EntitlementState) (models.EntitlementState, entitlement.Reason) {
			return st, entitlement.PeriodQuotaExceeded
		})
	if err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}
	if out.Reason != entitlement.PeriodQuotaExceeded {
		t.Errorf("expected PeriodQuotaExceeded, got %s", out.Reason)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestCastVote_CommitError tests commit failure
func TestCastVote_CommitError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	expectContestRow(mock)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM votes").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM entitlement_states").WillReturnRows(sqlmock.NewRows([]string{"period_window_start"}))
	mock.ExpectExec("INSERT INTO votes").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE submissions SET votes_count").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT votes_count FROM submissions").WillReturnRows(sqlmock.NewRows([]string{"votes_count"}).AddRow(1))
	mock.ExpectExec("INSERT INTO entitlement_states").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	_, err := repo.CastVote(context.Background(), vote("v1", "alice", "s1", "c1", t0), accept(t0))
	if err == nil {
		t.Error("expected commit error, got nil")
	}
}

// TestGetContestStats_QueryErrors tests failure of each stats query
func TestGetContestStats_QueryErrors(t *testing.T) {
	t.Run("submissions query", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("SELECT COUNT(.+) FROM submissions").WillReturnError(errors.New("boom"))
		if _, err := repo.GetContestStats(context.Background(), "c1"); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("votes query", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("SELECT COUNT(.+) FROM submissions").
			WillReturnRows(sqlmock.NewRows([]string{"count", "approved"}).AddRow(2, 1))
		mock.ExpectQuery("SELECT COUNT(.+) FROM votes").WillReturnError(errors.New("boom"))
		if _, err := repo.GetContestStats(context.Background(), "c1"); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

// TestNew_MigrationError tests an unusable database path
func TestNew_MigrationError(t *testing.T) {
	if _, err := New("/nonexistent-dir/sub/contest.db"); err == nil {
		t.Error("expected error for unusable path, got nil")
	}
}
