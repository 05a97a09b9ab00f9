package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/abrezinsky/contestvote/internal/entitlement"
	"github.com/abrezinsky/contestvote/internal/errors"
	"github.com/abrezinsky/contestvote/internal/handlers"
	"github.com/abrezinsky/contestvote/internal/models"
	"github.com/abrezinsky/contestvote/internal/services"
)

func TestAPIError_Error(t *testing.T) {
	err := handlers.NewAPIError(http.StatusBadRequest, "BAD_REQUEST", "test message")

	if err.Error() != "test message" {
		t.Errorf("expected 'test message', got %q", err.Error())
	}
	if err.Code != "BAD_REQUEST" {
		t.Errorf("expected code 'BAD_REQUEST', got %q", err.Code)
	}
}

func TestInternalError_HidesCause(t *testing.T) {
	err := handlers.InternalError(fmt.Errorf("db connection failed"))

	if err.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", err.Status)
	}
	if err.Message != "Internal server error" {
		t.Errorf("expected generic message, got %q", err.Message)
	}
}

func TestToAPIError(t *testing.T) {
	var problems errors.ValidationErrors
	problems.Add("title", "title is required")
	problems.Add("voting_end", "voting must end after it starts")

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		details int
	}{
		{name: "api error passes through", err: handlers.Conflict("taken"), status: http.StatusConflict, code: handlers.ErrCodeConflict},
		{name: "validation errors", err: problems, status: http.StatusUnprocessableEntity, code: handlers.ErrCodeValidation, details: 2},
		{name: "wrapped validation errors", err: fmt.Errorf("create: %w", problems), status: http.StatusUnprocessableEntity, code: handlers.ErrCodeValidation, details: 2},
		{name: "not found", err: services.ErrContestNotFound, status: http.StatusNotFound, code: handlers.ErrCodeNotFound},
		{name: "invalid input", err: errors.InvalidInput("status", "unknown status"), status: http.StatusUnprocessableEntity, code: handlers.ErrCodeValidation, details: 1},
		{name: "conflict", err: errors.Conflict("changed concurrently"), status: http.StatusConflict, code: handlers.ErrCodeConflict},
		{name: "forbidden", err: errors.Forbidden("no identity"), status: http.StatusForbidden, code: handlers.ErrCodeForbidden},
		{name: "internal kind", err: errors.Internal(fmt.Errorf("boom")), status: http.StatusInternalServerError, code: handlers.ErrCodeInternalServer},
		{name: "invalid transition", err: &services.InvalidTransitionError{From: models.ContestStatusEnded, To: models.ContestStatusActive}, status: http.StatusConflict, code: handlers.ErrCodeInvalidTransition},
		{name: "submissions closed", err: services.ErrSubmissionsClosed, status: http.StatusConflict, code: handlers.ErrCodeSubmissionsClosed},
		{name: "not eligible", err: services.ErrNotEligible, status: http.StatusForbidden, code: handlers.ErrCodeNotEligible},
		{name: "file too large", err: services.ErrFileTooLarge, status: http.StatusRequestEntityTooLarge, code: handlers.ErrCodeFileTooLarge},
		{name: "nsfw", err: services.ErrNSFWNotAllowed, status: http.StatusBadRequest, code: handlers.ErrCodeNSFWNotAllowed},
		{name: "payout not configured", err: services.ErrPayoutNotConfigured, status: http.StatusBadRequest, code: handlers.ErrCodePayoutNotConfigured},
		{name: "unmapped service error", err: &services.ServiceError{Message: "odd"}, status: http.StatusBadRequest, code: handlers.ErrCodeBadRequest},
		{name: "unknown error", err: fmt.Errorf("disk full"), status: http.StatusInternalServerError, code: handlers.ErrCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := handlers.ToAPIError(tt.err)

			if apiErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.Status)
			}
			if apiErr.Code != tt.code {
				t.Errorf("expected code %q, got %q", tt.code, apiErr.Code)
			}
			if len(apiErr.Details) != tt.details {
				t.Errorf("expected %d details, got %+v", tt.details, apiErr.Details)
			}
		})
	}
}

func TestVoteRejected(t *testing.T) {
	tests := []struct {
		reason entitlement.Reason
		status int
	}{
		{entitlement.VotingClosed, http.StatusConflict},
		{entitlement.AlreadyVoted, http.StatusConflict},
		{entitlement.SelfVote, http.StatusForbidden},
		{entitlement.MethodNotPermitted, http.StatusForbidden},
		{entitlement.PeriodQuotaExceeded, http.StatusConflict},
		{entitlement.LifetimeQuotaExceeded, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.reason.Code(), func(t *testing.T) {
			apiErr := handlers.VoteRejected(tt.reason)

			if apiErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.Status)
			}
			if apiErr.Code != tt.reason.Code() || apiErr.Message != tt.reason.Message() {
				t.Errorf("unexpected error body: %+v", apiErr)
			}
		})
	}
}
