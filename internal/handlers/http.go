package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/abrezinsky/contestvote/internal/entitlement"
	"github.com/abrezinsky/contestvote/internal/errors"
	"github.com/abrezinsky/contestvote/internal/services"
)

// Error codes for standardized API error responses
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeInternalServer      = "INTERNAL_SERVER_ERROR"
	ErrCodeSubmissionsClosed   = "SUBMISSIONS_CLOSED"
	ErrCodeNotEligible         = "NOT_ELIGIBLE"
	ErrCodeEntryLimitReached   = "ENTRY_LIMIT_REACHED"
	ErrCodeMediaTypeNotAllowed = "MEDIA_TYPE_NOT_ALLOWED"
	ErrCodeFileTooLarge        = "FILE_TOO_LARGE"
	ErrCodeNSFWNotAllowed      = "NSFW_NOT_ALLOWED"
	ErrCodeContestClosed       = "CONTEST_CLOSED"
	ErrCodeResultsNotFinal     = "RESULTS_NOT_FINAL"
	ErrCodePayoutNotConfigured = "PAYOUT_NOT_CONFIGURED"
	ErrCodeAlreadyReviewed     = "ALREADY_REVIEWED"
)

// APIError represents an error with an HTTP status code and error code
type APIError struct {
	Status  int                 `json:"-"`
	Code    string              `json:"code"`
	Message string              `json:"error"`
	Details []errors.FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrBadRequest     = &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: "Bad request"}
	ErrUnauthorized   = &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: "Unauthorized"}
	ErrNotFound       = &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: "Not found"}
	ErrInternalServer = &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
)

// serviceErrors maps service sentinels to their HTTP form
var serviceErrors = map[*services.ServiceError]struct {
	status int
	code   string
}{
	services.ErrSubmissionsClosed:   {http.StatusConflict, ErrCodeSubmissionsClosed},
	services.ErrNotEligible:         {http.StatusForbidden, ErrCodeNotEligible},
	services.ErrEntryLimitReached:   {http.StatusConflict, ErrCodeEntryLimitReached},
	services.ErrMediaTypeNotAllowed: {http.StatusBadRequest, ErrCodeMediaTypeNotAllowed},
	services.ErrFileTooLarge:        {http.StatusRequestEntityTooLarge, ErrCodeFileTooLarge},
	services.ErrNSFWNotAllowed:      {http.StatusBadRequest, ErrCodeNSFWNotAllowed},
	services.ErrContestClosed:       {http.StatusConflict, ErrCodeContestClosed},
	services.ErrResultsNotFinal:     {http.StatusConflict, ErrCodeResultsNotFinal},
	services.ErrPayoutNotConfigured: {http.StatusBadRequest, ErrCodePayoutNotConfigured},
	services.ErrAlreadyReviewed:     {http.StatusConflict, ErrCodeAlreadyReviewed},
}

// NewAPIError creates a new API error with custom message and code
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// BadRequest creates a 400 error with custom message
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: message}
}

// Unauthorized creates a 401 error with custom message
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: message}
}

// NotFound creates a 404 error with custom message
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// Conflict creates a 409 error with custom message
func Conflict(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: ErrCodeConflict, Message: message}
}

// ValidationFailed creates a 422 error listing every problem
func ValidationFailed(problems errors.ValidationErrors) *APIError {
	return &APIError{
		Status:  http.StatusUnprocessableEntity,
		Code:    ErrCodeValidation,
		Message: problems.Error(),
		Details: problems,
	}
}

// InternalError creates a 500 error, logs the original error
func InternalError(err error) *APIError {
	slog.Error("Internal error", "error", err)
	return &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
}

// VoteRejected maps an entitlement rejection to its HTTP form. Callers that
// are not allowed to vote get 403; everything else is a 409 conflict with
// the voter's current state.
func VoteRejected(reason entitlement.Reason) *APIError {
	status := http.StatusConflict
	switch reason {
	case entitlement.SelfVote, entitlement.MethodNotPermitted:
		status = http.StatusForbidden
	}
	return &APIError{Status: status, Code: reason.Code(), Message: reason.Message()}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK JSON response
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondCreated writes a 201 Created JSON response
func respondCreated(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusCreated, data)
}

// respondSuccess writes a 200 OK with a message
func respondSuccess(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

// respondError writes an error response
func respondError(w http.ResponseWriter, err error) {
	apiErr := ToAPIError(err)
	respondJSON(w, apiErr.Status, apiErr)
}

// decodeJSON decodes JSON from request body into the target
func decodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if err == io.EOF {
			return BadRequest("Request body is empty")
		}
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// ToAPIError converts service errors to appropriate API errors
func ToAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var problems errors.ValidationErrors
	if stderrors.As(err, &problems) {
		return ValidationFailed(problems)
	}

	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		switch appErr.Kind {
		case errors.ErrNotFound:
			return NotFound(appErr.Message)
		case errors.ErrValidation, errors.ErrInvalidInput:
			return ValidationFailed(errors.ValidationErrors{{Field: appErr.Field, Message: appErr.Message}})
		case errors.ErrConflict:
			return Conflict(appErr.Message)
		case errors.ErrForbidden:
			return &APIError{Status: http.StatusForbidden, Code: ErrCodeForbidden, Message: appErr.Message}
		default:
			return InternalError(err)
		}
	}

	var transition *services.InvalidTransitionError
	if stderrors.As(err, &transition) {
		return &APIError{Status: http.StatusConflict, Code: ErrCodeInvalidTransition, Message: transition.Error()}
	}

	var svcErr *services.ServiceError
	if stderrors.As(err, &svcErr) {
		if m, ok := serviceErrors[svcErr]; ok {
			return &APIError{Status: m.status, Code: m.code, Message: svcErr.Message}
		}
		return BadRequest(svcErr.Message)
	}

	return InternalError(err)
}
