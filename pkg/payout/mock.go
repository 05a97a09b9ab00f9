package payout

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a mock settlement client for testing
type MockClient struct {
	mu        sync.Mutex
	baseURL   string
	token     string
	submitErr error
	failPlace map[int]error
	settled   map[string]string // "contest:place" -> reference
	submitted []Winner
	nextRef   int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithSubmitError makes every Submit call fail with err
func WithSubmitError(err error) MockOption {
	return func(m *MockClient) {
		m.submitErr = err
	}
}

// WithPlaceError makes Submit fail with err for one place only
func WithPlaceError(place int, err error) MockOption {
	return func(m *MockClient) {
		m.failPlace[place] = err
	}
}

// WithSettled marks a contest place as already paid
func WithSettled(contestID string, place int) MockOption {
	return func(m *MockClient) {
		m.settled[settleKey(contestID, place)] = "existing"
	}
}

// WithBaseURL sets the base URL
func WithBaseURL(url string) MockOption {
	return func(m *MockClient) {
		m.baseURL = url
	}
}

// NewMockClient creates a new mock settlement client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL:   "http://mock-payout.local",
		failPlace: make(map[int]error),
		settled:   make(map[string]string),
		nextRef:   1000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func settleKey(contestID string, place int) string {
	return fmt.Sprintf("%s:%d", contestID, place)
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseURL
}

// SetBaseURL updates the base URL
func (m *MockClient) SetBaseURL(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseURL = url
}

// SetToken records the token
func (m *MockClient) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

// Token returns the last token set
func (m *MockClient) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Submit records w and returns a generated reference
func (m *MockClient) Submit(ctx context.Context, w Winner) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitErr != nil {
		return "", m.submitErr
	}
	if m.baseURL == "" {
		return "", ErrNotConfigured
	}
	if err, ok := m.failPlace[w.Place]; ok {
		return "", err
	}
	key := settleKey(w.ContestID, w.Place)
	if _, ok := m.settled[key]; ok {
		return "", ErrAlreadySettled
	}

	m.nextRef++
	ref := fmt.Sprintf("PAY-%d", m.nextRef)
	m.settled[key] = ref
	m.submitted = append(m.submitted, w)
	return ref, nil
}

// Submitted returns the winners accepted so far
func (m *MockClient) Submitted() []Winner {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Winner, len(m.submitted))
	copy(out, m.submitted)
	return out
}

var _ Client = (*MockClient)(nil)
