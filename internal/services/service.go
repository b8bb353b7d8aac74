package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"securebank/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource supplies the bearer token at call time.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// RemoteError is any non-2xx answer or transport failure. Status is zero for
// network failures.
type RemoteError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Err     error  `json:"-"`
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("RemoteError: %s (network)", e.Message)
	}
	return fmt.Sprintf("RemoteError: %s (Status: %d)", e.Message, e.Status)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsNetwork reports whether the request never produced an HTTP response.
func (e *RemoteError) IsNetwork() bool { return e.Status == 0 }

const (
	genericFailureMessage = "Request failed"
	networkFailureMessage = "Unable to reach the server"
)

// Client issues exactly one HTTP request per call: no retries, no caching.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

// NewClient creates a Client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse API base URL (%s): %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("API base URL must be absolute: %q", baseURL)
	}
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logger,
	}, nil
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	public bool
}

// do sends req and decodes the envelope's data into out (if non-nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	raw, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return decodeInto(raw, out)
}

func decodeInto(raw json.RawMessage, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return malformed(err)
	}
	return nil
}

// send returns the raw "data" member of a successful envelope.
func (c *Client) send(ctx context.Context, req request) (json.RawMessage, error) {
	endpoint := *c.baseURL
	endpoint.Path = c.baseURL.Path + req.path
	if len(req.query) > 0 {
		endpoint.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", req.method, req.path, err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.public {
		// Read at call time so a logout takes effect for the very next call.
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := c.logger.With(
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.String("request_id", requestID),
	)
	started := time.Now()

	resp, err := c.http.Do(httpReq)
	if err != nil {
		log.Warn("Request failed before a response", zap.Error(err))
		return nil, &RemoteError{Message: networkFailureMessage, Details: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("Failed to read response body", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, &RemoteError{Message: networkFailureMessage, Details: err.Error(), Err: err}
	}
	log.Debug("Request completed", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, payload)
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, nil
	}

	var envelope models.APIResponse[json.RawMessage]
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, &RemoteError{Status: resp.StatusCode, Message: "Malformed response payload", Details: err.Error(), Err: err}
	}
	return envelope.Data, nil
}

// decodeError prefers the server's own message and falls back to a generic
// one when the body is empty or not JSON.
func decodeError(status int, payload []byte) *RemoteError {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	remote := &RemoteError{Status: status, Message: genericFailureMessage}
	if err := json.Unmarshal(payload, &body); err != nil {
		return remote
	}
	switch {
	case body.Message != "":
		remote.Message = body.Message
	case body.Error != "":
		remote.Message = body.Error
	}
	remote.Details = body.Details
	return remote
}

// decodePage accepts either a page object or a bare array.
func decodePage[T any](raw json.RawMessage) (*models.Page[T], error) {
	trimmed := bytes.TrimSpace(raw)
	page := &models.Page[T]{}
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return page, nil
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &page.Content); err != nil {
			return nil, malformed(err)
		}
		page.TotalElements = int64(len(page.Content))
		page.Size = len(page.Content)
		if len(page.Content) > 0 {
			page.TotalPages = 1
		}
		return page, nil
	}
	if err := json.Unmarshal(trimmed, page); err != nil {
		return nil, malformed(err)
	}
	return page, nil
}

func malformed(err error) error {
	return &RemoteError{Status: http.StatusOK, Message: "Malformed response payload", Details: err.Error(), Err: err}
}

// getPage is the shared implementation of the paginated GET endpoints.
func getPage[T any](ctx context.Context, c *Client, path string, query url.Values) (*models.Page[T], error) {
	raw, err := c.send(ctx, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return nil, err
	}
	return decodePage[T](raw)
}

// AsRemote extracts a *RemoteError from err's chain.
func AsRemote(err error) (*RemoteError, bool) {
	var remote *RemoteError
	ok := errors.As(err, &remote)
	return remote, ok
}
