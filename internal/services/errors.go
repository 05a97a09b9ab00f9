package services

import (
	"fmt"

	"github.com/abrezinsky/contestvote/internal/errors"
	"github.com/abrezinsky/contestvote/internal/models"
)

// Lookup errors
var (
	ErrContestNotFound    = errors.NotFound("contest not found")
	ErrSubmissionNotFound = errors.NotFound("submission not found")
	ErrNotRanked          = errors.NotFound("submission is not ranked")
)

// Service errors
var (
	ErrSubmissionsClosed   = &ServiceError{Message: "contest is not accepting submissions"}
	ErrNotEligible         = &ServiceError{Message: "only logged-in users may submit to this contest"}
	ErrEntryLimitReached   = &ServiceError{Message: "submission limit reached for this contest"}
	ErrMediaTypeNotAllowed = &ServiceError{Message: "media type is not allowed in this contest"}
	ErrFileTooLarge        = &ServiceError{Message: "file exceeds the contest size limit"}
	ErrNSFWNotAllowed      = &ServiceError{Message: "NSFW content is not allowed in this contest"}
	ErrContestClosed       = &ServiceError{Message: "ended or archived contests cannot be edited"}
	ErrResultsNotFinal     = &ServiceError{Message: "results are not final yet"}
	ErrPayoutNotConfigured = &ServiceError{Message: "payout service URL is not configured"}
	ErrAlreadyReviewed     = &ServiceError{Message: "submission has already been reviewed"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidTransitionError is returned when a contest status change is not
// allowed from the current status
type InvalidTransitionError struct {
	From models.ContestStatus
	To   models.ContestStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change contest status from %s to %s", e.From, e.To)
}
