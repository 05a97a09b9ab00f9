package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/contestvote/internal/errors"
	"github.com/abrezinsky/contestvote/internal/logger"
	"github.com/abrezinsky/contestvote/internal/models"
	"github.com/abrezinsky/contestvote/internal/prize"
	"github.com/abrezinsky/contestvote/internal/repository"
	"github.com/abrezinsky/contestvote/internal/schedule"
)

const maxTitleLength = 200

// ContestService handles contest authoring and lifecycle
type ContestService struct {
	log         logger.Logger
	repo        repository.ContestRepository
	settings    SettingsServicer
	loc         *time.Location
	broadcaster Broadcaster
}

// NewContestService creates a new ContestService. Dates in drafts are
// interpreted in loc.
func NewContestService(log logger.Logger, repo repository.ContestRepository, settings SettingsServicer, loc *time.Location) *ContestService {
	if loc == nil {
		loc = time.UTC
	}
	return &ContestService{log: log, repo: repo, settings: settings, loc: loc}
}

// SetBroadcaster sets the broadcaster for status changes
func (s *ContestService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// ContestDraft is the authoring input for creating or editing a contest
type ContestDraft struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Schedule    schedule.Input     `json:"schedule"`
	Config      models.ConfigInput `json:"config"`
}

// ContestDetails is a contest together with its phase at a given instant
type ContestDetails struct {
	Contest models.Contest     `json:"contest"`
	Phase   schedule.PhaseInfo `json:"phase"`
}

// SyncResult reports the status changes made by SyncStatuses
type SyncResult struct {
	Activated []string `json:"activated"`
	Ended     []string `json:"ended"`
}

// CreateContest validates a draft and stores it. Every problem found in the
// title, schedule, config and prize distribution is reported together.
func (s *ContestService) CreateContest(ctx context.Context, d ContestDraft, now time.Time) (*models.Contest, error) {
	sched, cfg, err := s.prepare(d, schedule.Strict, nil, now)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	c := models.Contest{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Status:      models.ContestStatusDraft,
		Config:      cfg,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	sched.Apply(&c)

	if cfg.AutoActivate && !now.Before(c.StartAt) {
		c.Status = models.ContestStatusActive
	}

	if err := s.repo.CreateContest(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info("Contest created", "contest_id", c.ID, "status", c.Status, "start_at", c.StartAt, "voting_end_at", c.VotingEndAt)
	return &c, nil
}

// UpdateContest replaces the editable fields of a contest. Contests that
// have not started are validated strictly; live contests may only move
// anchors forward in time.
func (s *ContestService) UpdateContest(ctx context.Context, id string, d ContestDraft, now time.Time) (*models.Contest, error) {
	c, err := s.GetContest(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == models.ContestStatusEnded || c.Status == models.ContestStatusArchived {
		return nil, ErrContestClosed
	}

	prev := schedule.Of(*c)
	mode := schedule.ModeFor(c.Status, c.StartAt, now)
	sched, cfg, err := s.prepare(d, mode, &prev, now)
	if err != nil {
		return nil, err
	}

	c.Title = strings.TrimSpace(d.Title)
	c.Description = d.Description
	c.Config = cfg
	c.UpdatedAt = now.UTC()
	sched.Apply(c)

	if err := s.repo.UpdateContest(ctx, *c); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrContestNotFound
		}
		return nil, err
	}

	s.log.Info("Contest updated", "contest_id", c.ID, "mode", mode)
	return c, nil
}

// prepare resolves and validates a draft. In live edits a "now" option
// keeps the already-passed anchor instead of moving it.
func (s *ContestService) prepare(d ContestDraft, mode schedule.Mode, prev *schedule.Schedule, now time.Time) (schedule.Schedule, models.ContestConfig, error) {
	var problems errors.ValidationErrors

	title := strings.TrimSpace(d.Title)
	switch {
	case title == "":
		problems.Add("title", "title is required")
	case len(title) > maxTitleLength:
		problems.Add("title", "title is too long")
	}

	sched, err := schedule.Resolve(d.Schedule, now, s.loc)
	if err != nil {
		var appErr *errors.Error
		if !stderrors.As(err, &appErr) {
			return schedule.Schedule{}, models.ContestConfig{}, err
		}
		problems.Add(appErr.Field, appErr.Message)
	} else {
		if mode == schedule.LiveEdit && prev != nil {
			if d.Schedule.StartOption == schedule.OptionNow {
				resolved := sched.StartAt
				sched.StartAt = prev.StartAt
				// voting start defaulted to the resolved start
				if d.Schedule.VotingStartOption != schedule.OptionNow && sched.VotingStartAt.Equal(resolved) {
					sched.VotingStartAt = prev.VotingStartAt
				}
			}
			if d.Schedule.VotingStartOption == schedule.OptionNow && !now.Before(prev.VotingStartAt) {
				sched.VotingStartAt = prev.VotingStartAt
			}
		}
		problems.Merge(schedule.Validate(sched, mode, prev, now))
	}

	cfg := models.NewConfig(d.Config)
	problems.Merge(cfg.Validate())
	problems.Merge(prize.Validate(cfg.PrizeDistribution, cfg.PrizePool))

	if err := problems.Err(); err != nil {
		return schedule.Schedule{}, models.ContestConfig{}, err
	}
	return sched, cfg, nil
}

// GetContest retrieves a contest by ID
func (s *ContestService) GetContest(ctx context.Context, id string) (*models.Contest, error) {
	c, err := s.repo.GetContest(ctx, id)
	if err == repository.ErrNotFound {
		return nil, ErrContestNotFound
	}
	return c, err
}

// ListContests returns contests, optionally filtered by status
func (s *ContestService) ListContests(ctx context.Context, status models.ContestStatus) ([]models.Contest, error) {
	if status != "" && !status.Valid() {
		return nil, errors.InvalidInputf("status", "unknown status %q", status)
	}
	return s.repo.ListContests(ctx, status)
}

// SetStatus moves a contest through its lifecycle
func (s *ContestService) SetStatus(ctx context.Context, id string, status models.ContestStatus, now time.Time) (*models.Contest, error) {
	if !status.Valid() {
		return nil, errors.InvalidInputf("status", "unknown status %q", status)
	}

	c, err := s.GetContest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Status.CanTransitionTo(status) {
		return nil, &InvalidTransitionError{From: c.Status, To: status}
	}

	ok, err := s.repo.SetContestStatus(ctx, id, c.Status, status, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Conflictf("contest %s changed status concurrently", id)
	}

	s.log.Info("Contest status changed", "contest_id", id, "from", c.Status, "to", status)
	c.Status = status
	c.UpdatedAt = now.UTC()
	s.broadcastStatus(c.ID, status)
	return c, nil
}

// ContestPhase returns a contest together with its phase at now
func (s *ContestService) ContestPhase(ctx context.Context, id string, now time.Time) (*ContestDetails, error) {
	c, err := s.GetContest(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ContestDetails{Contest: *c, Phase: schedule.Of(*c).Describe(now)}, nil
}

// SyncStatuses activates auto-activating drafts whose start has passed and
// ends auto-activating contests whose voting has closed.
func (s *ContestService) SyncStatuses(ctx context.Context, now time.Time) (*SyncResult, error) {
	result := &SyncResult{Activated: []string{}, Ended: []string{}}

	drafts, err := s.repo.ListContests(ctx, models.ContestStatusDraft)
	if err != nil {
		return nil, err
	}
	for _, c := range drafts {
		sched := schedule.Of(c)
		if !c.Config.AutoActivate || now.Before(sched.StartAt) || sched.Ended(now) {
			continue
		}
		ok, err := s.repo.SetContestStatus(ctx, c.ID, models.ContestStatusDraft, models.ContestStatusActive, now)
		if err != nil {
			return nil, err
		}
		if ok {
			result.Activated = append(result.Activated, c.ID)
			s.log.Info("Contest auto-activated", "contest_id", c.ID)
			s.broadcastStatus(c.ID, models.ContestStatusActive)
		}
	}

	active, err := s.repo.ListContests(ctx, models.ContestStatusActive)
	if err != nil {
		return nil, err
	}
	for _, c := range active {
		if !c.Config.AutoActivate || !schedule.Of(c).Ended(now) {
			continue
		}
		ok, err := s.repo.SetContestStatus(ctx, c.ID, models.ContestStatusActive, models.ContestStatusEnded, now)
		if err != nil {
			return nil, err
		}
		if ok {
			result.Ended = append(result.Ended, c.ID)
			s.log.Info("Contest auto-ended", "contest_id", c.ID)
			s.broadcastStatus(c.ID, models.ContestStatusEnded)
		}
	}

	return result, nil
}

// ShareQR renders a PNG QR code linking to the contest page
func (s *ContestService) ShareQR(ctx context.Context, id string) ([]byte, error) {
	if _, err := s.GetContest(ctx, id); err != nil {
		return nil, err
	}

	baseURL, err := s.settings.GetBaseURL(ctx)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(ContestURL(baseURL, id), qrcode.Medium, 256)
}

// ContestURL returns the public page of a contest
func ContestURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/contests/" + id
}

func (s *ContestService) broadcastStatus(id string, status models.ContestStatus) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastContestStatus(id, status)
	}
}
