// Package mindpal starts MindPal extraction workflow runs. Results arrive
// later through the signed callback webhook.
package mindpal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured means no API key or workflow id is set.
var ErrNotConfigured = errors.New("mindpal client not configured")

type Client struct {
	baseURL    string
	apiKey     string
	workflowID string
	httpClient *http.Client
	backoffs   []time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoffs replaces the 1s/2s/4s retry delays.
func WithBackoffs(b ...time.Duration) Option {
	return func(c *Client) { c.backoffs = b }
}

func NewClient(baseURL, apiKey, workflowID string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		workflowID: workflowID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		backoffs: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.workflowID != ""
}

// RunRequest are the workflow inputs. PdfUploadID comes back as the
// callback's request_id.
type RunRequest struct {
	PdfUploadID string `json:"pdf_upload_id"`
	FileURL     string `json:"file_url"`
	CallbackURL string `json:"callback_url"`
}

type runBody struct {
	Data RunRequest `json:"data"`
}

type RunResponse struct {
	WorkflowRunID string `json:"workflow_run_id"`
	ID            string `json:"id"`
	Status        string `json:"status"`
}

// RunID is whichever identifier the API returned.
func (r RunResponse) RunID() string {
	if r.WorkflowRunID != "" {
		return r.WorkflowRunID
	}
	return r.ID
}

// StartExtraction starts one workflow run. 4xx answers are not retried.
func (c *Client) StartExtraction(ctx context.Context, req RunRequest) (*RunResponse, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	jsonData, err := json.Marshal(runBody{Data: req})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/workflow/run/" + c.workflowID
	var result RunResponse
	err = c.RetryWithBackoff(ctx, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return permanent(fmt.Errorf("failed to create request: %w", err))
		}
		httpReq.Header.Set("x-api-key", c.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return permanent(fmt.Errorf("failed to start workflow run: status %d, body: %s", resp.StatusCode, string(body)))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("failed to start workflow run: status %d, body: %s", resp.StatusCode, string(body))
		}

		result = RunResponse{}
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &result); err != nil {
				return permanent(fmt.Errorf("failed to decode response: %w, body: %s", err, string(body)))
			}
		}
		return nil
	}, len(c.backoffs)+1)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

func permanent(err error) error { return &permanentError{err: err} }

// RetryWithBackoff calls fn up to maxRetries times, sleeping between
// attempts. A permanent error or a cancelled context stops early.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		lastErr = err
		if i == maxRetries-1 {
			break
		}
		delay := time.Duration(0)
		if i < len(c.backoffs) {
			delay = c.backoffs[i]
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
