// Package archive is the HTTP client for the document archive backend.
// Every request is reported to a busy.Counter through busy.Wrap.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmcdole/archivist/internal/busy"
	"github.com/mmcdole/archivist/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	baseRetryDelay = 500 * time.Millisecond
)

// StatusError is returned for non-2xx responses that are not retried
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status code: %d - %s", e.Code, e.Message)
	}
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// Client implements domain.DocumentRepository and domain.Authenticator
type Client struct {
	baseURL    string
	httpClient *http.Client
	busy       *busy.Counter
	logger     *slog.Logger
	retryDelay time.Duration

	mu    sync.RWMutex
	token string
}

var (
	_ domain.DocumentRepository = (*Client)(nil)
	_ domain.Authenticator      = (*Client)(nil)
)

// Option configures a Client
type Option func(*Client)

// WithToken sets the bearer token sent with every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRetryDelay sets the base delay of the exponential backoff
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// NewClient creates a new archive API client. Requests are tracked on
// counter; a private counter is used when counter is nil.
func NewClient(baseURL string, counter *busy.Counter, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if counter == nil {
		counter = busy.NewCounter(logger)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		busy:       counter,
		logger:     logger,
		retryDelay: baseRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// doRequest performs an HTTP request against the archive API and decodes
// the JSON response into out. The whole exchange, retries included, counts
// as one busy operation. 5xx responses are retried with exponential backoff.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, in, out any) error {
	return busy.Do(ctx, c.busy, func(ctx context.Context) error {
		body, err := c.roundTrip(ctx, method, path, query, in)
		if err != nil {
			return err
		}
		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		return nil
	})
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, in any) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	requestID := uuid.NewString()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		// Check context before each attempt
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Wait before retry (exponential backoff)
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "url", reqURL, "request_id", requestID)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token := c.bearer(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		c.logger.Debug("archive request", "method", method, "url", reqURL, "attempt", attempt, "request_id", requestID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error("archive request failed", "error", err, "request_id", requestID)
			return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return nil, domain.ErrAuthFailed
		}

		// Retry on 5xx server errors
		if resp.StatusCode >= 500 && resp.StatusCode < 600 {
			lastErr = &StatusError{Code: resp.StatusCode, Message: errorMessage(body)}
			c.logger.Warn("archive server error, will retry",
				"status", resp.StatusCode,
				"attempt", attempt,
				"maxRetries", maxRetries,
				"path", path,
				"request_id", requestID,
			)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Error("archive request error", "status", resp.StatusCode, "body", string(body), "request_id", requestID)
			return nil, &StatusError{Code: resp.StatusCode, Message: errorMessage(body)}
		}

		return body, nil
	}

	c.logger.Error("archive request failed after retries", "error", lastErr, "url", reqURL, "request_id", requestID)
	return nil, lastErr
}

// errorMessage extracts {"message": "..."} from an error body
func errorMessage(body []byte) string {
	var resp struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &resp) == nil && resp.Message != "" {
		return resp.Message
	}
	return strings.TrimSpace(string(body))
}

// SignIn exchanges credentials for a token. The token is not stored on the
// client; call SetToken to use it.
func (c *Client) SignIn(ctx context.Context, in domain.SignInInput) (*domain.AuthResult, error) {
	var result domain.AuthResult
	if err := c.doRequest(ctx, http.MethodPost, "/auth/sign-in", nil, in, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, domain.ErrAuthFailed
	}
	return &result, nil
}

// SignUp registers a user and returns its id
func (c *Client) SignUp(ctx context.Context, in domain.SignUpInput) (int64, error) {
	var result struct {
		ID int64 `json:"id"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/auth/sign-up", nil, in, &result); err != nil {
		return 0, err
	}
	return result.ID, nil
}

// SearchDocuments returns documents matching q
func (c *Client) SearchDocuments(ctx context.Context, q domain.DocumentQuery) ([]domain.Document, error) {
	var docs []domain.Document
	if err := c.doRequest(ctx, http.MethodGet, "/api/documents", q.Values(), nil, &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

// ListDocuments returns every document visible to the caller in one request
func (c *Client) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return c.SearchDocuments(ctx, domain.DocumentQuery{})
}

// GetDocument returns a single document
func (c *Client) GetDocument(ctx context.Context, id int64) (*domain.Document, error) {
	var doc domain.Document
	path := "/api/documents/" + strconv.FormatInt(id, 10)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &doc); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}
