package handlers

import (
	"net/http"
	"time"

	"github.com/abrezinsky/contestvote/internal/auth"
	"github.com/abrezinsky/contestvote/internal/services"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Contests    services.ContestServicer
	Submissions services.SubmissionServicer
	Voting      services.VotingServicer
	Results     services.ResultsServicer
	Settings    services.SettingsServicer
	Auth        *auth.Auth
	Identity    *auth.Identifier
	WS          http.HandlerFunc
	Log         HTTPLogger
	Now         func() time.Time
}

// HTTPLogger reports whether each request should be logged
type HTTPLogger interface {
	RequestLogging() bool
}

// Services groups the service dependencies of the handlers
type Services struct {
	Contests    services.ContestServicer
	Submissions services.SubmissionServicer
	Voting      services.VotingServicer
	Results     services.ResultsServicer
	Settings    services.SettingsServicer
}

// New creates a new Handlers instance with all dependencies. ws serves the
// live update endpoint and may be nil.
func New(svc Services, adminAuth *auth.Auth, identity *auth.Identifier, ws http.HandlerFunc, log HTTPLogger) *Handlers {
	return &Handlers{
		Contests:    svc.Contests,
		Submissions: svc.Submissions,
		Voting:      svc.Voting,
		Results:     svc.Results,
		Settings:    svc.Settings,
		Auth:        adminAuth,
		Identity:    identity,
		WS:          ws,
		Log:         log,
		Now:         time.Now,
	}
}

// NoopHTTPLogger never logs requests
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) RequestLogging() bool { return false }

// Test credentials used by NewForTesting
const (
	TestAdminPassword = "test-password"
	TestJWTSecret     = "test-secret"
)

// NewForTesting creates a Handlers instance with known admin password and
// token secret and no websocket endpoint
func NewForTesting(svc Services) *Handlers {
	return New(svc, auth.New(TestAdminPassword), auth.NewIdentifier(TestJWTSecret), nil, NoopHTTPLogger{})
}

func (h *Handlers) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}
