package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/abrezinsky/contestvote/internal/models"
	"github.com/abrezinsky/contestvote/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// T0 is the reference instant used by fixtures: voting opens here.
var T0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// ActiveContest returns an active contest open for a week from T0 with cfg.
func ActiveContest(id string, cfg models.ContestConfig) models.Contest {
	end := T0.Add(7 * 24 * time.Hour)
	return models.Contest{
		ID:              id,
		Title:           "Contest " + id,
		Status:          models.ContestStatusActive,
		StartAt:         T0,
		SubmissionEndAt: end,
		VotingStartAt:   T0,
		VotingEndAt:     end,
		Config:          cfg,
		CreatedAt:       T0.Add(-time.Hour),
		UpdatedAt:       T0.Add(-time.Hour),
	}
}

// SeedContest stores c and fails the test on error.
func SeedContest(t *testing.T, repo repository.ContestRepository, c models.Contest) models.Contest {
	t.Helper()
	if err := repo.CreateContest(context.Background(), c); err != nil {
		t.Fatalf("failed to seed contest: %v", err)
	}
	return c
}

// SeedSubmission stores an approved submission by userID created at T0+offset.
func SeedSubmission(t *testing.T, repo repository.SubmissionRepository, contestID, id, userID string, offset time.Duration) models.Submission {
	t.Helper()
	s := models.Submission{
		ID:        id,
		ContestID: contestID,
		UserID:    userID,
		Title:     "Entry " + id,
		MediaURL:  "https://media.example/" + id + ".png",
		MediaType: models.MediaTypeImage,
		Status:    models.SubmissionApproved,
		CreatedAt: T0.Add(offset),
	}
	if err := repo.CreateSubmission(context.Background(), s); err != nil {
		t.Fatalf("failed to seed submission: %v", err)
	}
	return s
}
