// Package payout provides a client for the external prize-settlement service.
// The service owns wallets and transfers; this client only hands it the
// final winners of a contest.
package payout

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/abrezinsky/contestvote/internal/logger"
)

// ErrAlreadySettled is returned when the settlement service already holds a
// payout for the same contest place.
var ErrAlreadySettled = stderrors.New("payout already settled")

// ErrNotConfigured is returned when no base URL has been set.
var ErrNotConfigured = stderrors.New("payout service URL not configured")

// FlexString is a string type that can be unmarshaled from either a string or a number.
// Settlement references come back as numbers from some providers.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler for FlexString
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	return fmt.Errorf("FlexString: cannot unmarshal %s", string(data))
}

// String returns the string value
func (f FlexString) String() string {
	return string(f)
}

// Winner is one prize-eligible placement handed to the settlement service
type Winner struct {
	ContestID    string          `json:"contest_id"`
	SubmissionID string          `json:"submission_id"`
	UserID       string          `json:"user_id"`
	Place        int             `json:"place"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
}

// Outcome represents the status block of a settlement response
type Outcome struct {
	Summary     string `json:"summary"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// SubmitResponse is the response from POST /payouts
type SubmitResponse struct {
	Reference FlexString `json:"reference"`
	Outcome   Outcome    `json:"outcome"`
}

// Client defines the interface for settlement operations
type Client interface {
	// Submit hands one winner to the settlement service and returns its reference
	Submit(ctx context.Context, w Winner) (string, error)
	// BaseURL returns the configured service base URL
	BaseURL() string
	// SetBaseURL updates the service base URL
	SetBaseURL(url string)
	// SetToken configures the bearer token sent with every request
	SetToken(token string)
}

// HTTPClient is a real HTTP client for the settlement service
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new settlement client
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// NewHTTPClientWithHTTPClient creates a new settlement client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// SetBaseURL updates the base URL
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// SetToken configures the bearer token
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// Submit posts a winner to the settlement service. The contest ID and place
// form the idempotency key so a repeated push is reported as ErrAlreadySettled.
func (c *HTTPClient) Submit(ctx context.Context, w Winner) (string, error) {
	if c.baseURL == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("failed to encode payout: %w", err)
	}

	apiURL := c.baseURL + "/payouts"
	c.log.Debug("Payout request", "method", "POST", "url", apiURL, "contest_id", w.ContestID, "place", w.Place)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", fmt.Sprintf("%s:%d", w.ContestID, w.Place))
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to connect to payout service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Payout response", "status", resp.StatusCode, "body", string(body))

	if resp.StatusCode == http.StatusConflict {
		return "", ErrAlreadySettled
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("payout service returned status %d: %s", resp.StatusCode, string(body))
	}

	var out SubmitResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if out.Outcome.Summary == "failure" {
		if out.Outcome.Code == "duplicate" {
			return "", ErrAlreadySettled
		}
		return "", fmt.Errorf("payout error: %s (%s)", out.Outcome.Description, out.Outcome.Code)
	}

	return out.Reference.String(), nil
}

var _ Client = (*HTTPClient)(nil)
