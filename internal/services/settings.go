package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/abrezinsky/contestvote/internal/errors"
	"github.com/abrezinsky/contestvote/internal/logger"
	"github.com/abrezinsky/contestvote/internal/repository"
)

// Setting keys
const (
	SettingBaseURL   = "base_url"
	SettingPayoutURL = "payout_url"
)

// SettingsService handles settings-related business logic
type SettingsService struct {
	log  logger.Logger
	repo repository.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// Settings is the editable settings document. Nil fields are left unchanged.
type Settings struct {
	BaseURL   *string `json:"base_url,omitempty"`
	PayoutURL *string `json:"payout_url,omitempty"`
}

// GetBaseURL returns the application base URL
func (s *SettingsService) GetBaseURL(ctx context.Context) (string, error) {
	return s.optional(ctx, SettingBaseURL)
}

// SetBaseURL saves the application base URL
func (s *SettingsService) SetBaseURL(ctx context.Context, u string) error {
	if err := checkURL(SettingBaseURL, u); err != nil {
		return err
	}
	return s.repo.SetSetting(ctx, SettingBaseURL, u)
}

// GetPayoutURL returns the settlement service URL
func (s *SettingsService) GetPayoutURL(ctx context.Context) (string, error) {
	return s.optional(ctx, SettingPayoutURL)
}

// SetPayoutURL saves the settlement service URL
func (s *SettingsService) SetPayoutURL(ctx context.Context, u string) error {
	if err := checkURL(SettingPayoutURL, u); err != nil {
		return err
	}
	return s.repo.SetSetting(ctx, SettingPayoutURL, u)
}

// GetSetting retrieves an arbitrary setting
func (s *SettingsService) GetSetting(ctx context.Context, key string) (string, error) {
	return s.repo.GetSetting(ctx, key)
}

// SetSetting saves an arbitrary setting
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, key, value)
}

// AllSettings returns every known setting
func (s *SettingsService) AllSettings(ctx context.Context) (*Settings, error) {
	base, err := s.GetBaseURL(ctx)
	if err != nil {
		return nil, err
	}
	payout, err := s.GetPayoutURL(ctx)
	if err != nil {
		return nil, err
	}
	return &Settings{BaseURL: &base, PayoutURL: &payout}, nil
}

// UpdateSettings applies the non-nil fields of settings
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	var problems errors.ValidationErrors
	if settings.BaseURL != nil {
		if msg := urlProblem(*settings.BaseURL); msg != "" {
			problems.Add(SettingBaseURL, msg)
		}
	}
	if settings.PayoutURL != nil {
		if msg := urlProblem(*settings.PayoutURL); msg != "" {
			problems.Add(SettingPayoutURL, msg)
		}
	}
	if err := problems.Err(); err != nil {
		return err
	}

	if settings.BaseURL != nil {
		if err := s.repo.SetSetting(ctx, SettingBaseURL, *settings.BaseURL); err != nil {
			return err
		}
	}
	if settings.PayoutURL != nil {
		if err := s.repo.SetSetting(ctx, SettingPayoutURL, *settings.PayoutURL); err != nil {
			return err
		}
	}
	s.log.Info("Settings updated")
	return nil
}

func (s *SettingsService) optional(ctx context.Context, key string) (string, error) {
	value, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil // not configured yet
		}
		return "", err
	}
	return value, nil
}

func checkURL(field, raw string) error {
	if msg := urlProblem(raw); msg != "" {
		return errors.InvalidInput(field, msg)
	}
	return nil
}

// urlProblem accepts an empty value (unset) or an absolute http(s) URL.
func urlProblem(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Sprintf("must be an absolute http(s) URL, got %q", raw)
	}
	return ""
}
