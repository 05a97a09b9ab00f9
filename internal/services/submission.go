package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/contestvote/internal/errors"
	"github.com/abrezinsky/contestvote/internal/logger"
	"github.com/abrezinsky/contestvote/internal/models"
	"github.com/abrezinsky/contestvote/internal/repository"
	"github.com/abrezinsky/contestvote/internal/schedule"
)

// SubmissionServiceRepository defines the repository methods needed by SubmissionService
type SubmissionServiceRepository interface {
	repository.ContestRepository
	repository.SubmissionRepository
}

// SubmissionService handles entry intake and moderation
type SubmissionService struct {
	log  logger.Logger
	repo SubmissionServiceRepository
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(log logger.Logger, repo SubmissionServiceRepository) *SubmissionService {
	return &SubmissionService{log: log, repo: repo}
}

// SubmissionInput describes an already-uploaded media entry
type SubmissionInput struct {
	Title     string           `json:"title"`
	MediaURL  string           `json:"media_url"`
	MediaType models.MediaType `json:"media_type"`
	SizeBytes int64            `json:"size_bytes"`
	NSFW      bool             `json:"nsfw"`
}

// Submit records a new pending entry for who in contestID
func (s *SubmissionService) Submit(ctx context.Context, who models.Identity, contestID string, in SubmissionInput, now time.Time) (*models.Submission, error) {
	if who.IsZero() {
		return nil, errors.Forbidden("an identity is required to submit")
	}

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
	if c.Status != models.ContestStatusActive || !schedule.Of(*c).AcceptingSubmissions(now) {
		return nil, ErrSubmissionsClosed
	}
	if c.Config.Eligibility == models.EligibilityLoggedUsers && !who.Authenticated {
		return nil, ErrNotEligible
	}

	if err := validateSubmissionInput(in).Err(); err != nil {
		return nil, err
	}
	if !c.Config.AllowsMediaType(in.MediaType) {
		return nil, ErrMediaTypeNotAllowed
	}
	if c.Config.FileSizeLimitMB > 0 && in.SizeBytes > int64(c.Config.FileSizeLimitMB)<<20 {
		return nil, ErrFileTooLarge
	}
	if in.NSFW && !c.Config.NSFWAllowed {
		return nil, ErrNSFWNotAllowed
	}

	if c.Config.MaxSubmissions > 0 {
		count, err := s.repo.CountUserSubmissions(ctx, contestID, who.ID)
		if err != nil {
			return nil, err
		}
		if count >= c.Config.MaxSubmissions {
			return nil, ErrEntryLimitReached
		}
	}

	sub := models.Submission{
		ID:        uuid.NewString(),
		ContestID: contestID,
		UserID:    who.ID,
		Title:     strings.TrimSpace(in.Title),
		MediaURL:  in.MediaURL,
		MediaType: in.MediaType,
		Status:    models.SubmissionPending,
		CreatedAt: now.UTC(),
	}
	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		return nil, err
	}

	s.log.Info("Submission received", "contest_id", contestID, "submission_id", sub.ID, "user_id", who.ID)
	return &sub, nil
}

func validateSubmissionInput(in SubmissionInput) errors.ValidationErrors {
	var problems errors.ValidationErrors
	if len(strings.TrimSpace(in.Title)) > maxTitleLength {
		problems.Add("title", "title is too long")
	}
	if in.MediaURL == "" {
		problems.Add("media_url", "media_url is required")
	} else if u, err := url.Parse(in.MediaURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems.Add("media_url", "media_url must be an absolute URL")
	}
	switch in.MediaType {
	case models.MediaTypeImage, models.MediaTypeVideo, models.MediaTypeAudio:
	case "":
		problems.Add("media_type", "media_type is required")
	default:
		problems.Add("media_type", "unknown media type "+string(in.MediaType))
	}
	if in.SizeBytes < 0 {
		problems.Add("size_bytes", "size_bytes cannot be negative")
	}
	return problems
}

// Review approves or rejects a pending submission. Only approved entries
// can receive votes or rank.
func (s *SubmissionService) Review(ctx context.Context, id string, approve bool) (*models.Submission, error) {
	sub, err := s.repo.GetSubmission(ctx, id)
	if err == repository.ErrNotFound {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubmissionPending {
		return nil, ErrAlreadyReviewed
	}

	status := models.SubmissionRejected
	if approve {
		status = models.SubmissionApproved
	}
	if err := s.repo.SetSubmissionStatus(ctx, id, status); err != nil {
		return nil, err
	}
	sub.Status = status

	s.log.Info("Submission reviewed", "submission_id", id, "contest_id", sub.ContestID, "status", status)
	return sub, nil
}

// ListSubmissions returns a contest's submissions, optionally filtered by status
func (s *SubmissionService) ListSubmissions(ctx context.Context, contestID string, status models.SubmissionStatus) ([]models.Submission, error) {
	if _, err := s.repo.GetContest(ctx, contestID); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrContestNotFound
		}
		return nil, err
	}
	return s.repo.ListSubmissions(ctx, contestID, status)
}
