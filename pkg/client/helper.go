package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/darmiel/cpd/internal/api/middleware"
	"github.com/darmiel/cpd/internal/api/presenter"
)

var (
	ErrInvalidSession = errors.New("invalid session token")
	ErrLoginRequired  = errors.New("login required")
	ErrKeyRejected    = errors.New("key rejected")
	ErrNotAccepted    = errors.New("identity not accepted")
)

// codeErrors maps server error codes to errors callers can match with errors.Is.
var codeErrors = map[presenter.Code]error{
	presenter.CodeInvalidSession: ErrInvalidSession,
	presenter.CodeLoginRequired:  ErrLoginRequired,
	presenter.CodeKeyRejected:    ErrKeyRejected,
	presenter.CodeNotAccepted:    ErrNotAccepted,
}

// APIError is an error response of the server.
type APIError struct {
	StatusCode    int
	Code          presenter.Code
	CorrelationID string
	Message       string
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s (status: %d, code: %s, correlation: %s)", e.Message, e.StatusCode, e.Code, e.CorrelationID)
}

// Unwrap returns the sentinel for the error code, if any.
func (e APIError) Unwrap() error {
	return codeErrors[e.Code]
}

func (c *Client) get(ctx context.Context, url string, result any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, url string, payload, result any) (string, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

// do sends the request and decodes a successful response into result.
// The returned string is the correlation id the server assigned, also on failure.
func (c *Client) do(req *http.Request, result any) (string, error) {
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("connection failed: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	correlation := resp.Header.Get(middleware.CorrelationIDHeader)
	if resp.StatusCode >= http.StatusBadRequest {
		return correlation, decodeError(resp)
	}
	if result == nil {
		return correlation, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return correlation, fmt.Errorf("decoding response: %w", err)
	}
	return correlation, nil
}

func decodeError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("status %d with unreadable body: %w", resp.StatusCode, err)
	}
	var errResp presenter.ErrorResponse
	if json.Unmarshal(body, &errResp) != nil || errResp.Error == "" {
		return fmt.Errorf("status %d: unexpected body '%s'", resp.StatusCode, string(body))
	}
	return APIError{
		StatusCode:    resp.StatusCode,
		Code:          errResp.Code,
		CorrelationID: errResp.CorrelationID,
		Message:       errResp.Error,
	}
}
