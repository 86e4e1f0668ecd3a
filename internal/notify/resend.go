// Package notify sends transactional email through the Resend HTTP API.
package notify

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

	"bidsmart-backend/internal/logger"
)

type Sender interface {
	Send(ctx context.Context, msg Email) (*SendResult, error)
}

type Config struct {
	APIKey     string
	BaseURL    string
	FromEmail  string
	Timeout    time.Duration
	MaxRetries int
}

type ResendClient struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	backoff    time.Duration
}

func NewResendClient(log *logger.Logger, cfg Config) (*ResendClient, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing RESEND_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.resend.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if strings.TrimSpace(cfg.FromEmail) == "" {
		cfg.FromEmail = "BidSmart <notifications@bidsmart.app>"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	return &ResendClient{
		log:        log.With("client", "ResendClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		backoff:    500 * time.Millisecond,
	}, nil
}

// Email is one message. From defaults to Config.FromEmail.
type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
	Tags    map[string]string
}

type SendResult struct {
	StatusCode int
	ID         string
}

type sendRequest struct {
	From    string     `json:"from"`
	To      []string   `json:"to"`
	Subject string     `json:"subject"`
	HTML    string     `json:"html,omitempty"`
	Text    string     `json:"text,omitempty"`
	Tags    []emailTag `json:"tags,omitempty"`
}

type emailTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("resend: status %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func (c *ResendClient) Send(ctx context.Context, msg Email) (*SendResult, error) {
	from := strings.TrimSpace(msg.From)
	if from == "" {
		from = c.cfg.FromEmail
	}
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("resend: To required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return nil, fmt.Errorf("resend: Subject required")
	}
	if strings.TrimSpace(msg.HTML) == "" && strings.TrimSpace(msg.Text) == "" {
		return nil, fmt.Errorf("resend: HTML or Text required")
	}

	wire := sendRequest{
		From:    from,
		To:      msg.To,
		Subject: strings.TrimSpace(msg.Subject),
		HTML:    msg.HTML,
		Text:    msg.Text,
	}
	for k, v := range msg.Tags {
		wire.Tags = append(wire.Tags, emailTag{Name: k, Value: v})
	}
	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("resend: marshal: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		res, err := c.post(ctx, "/emails", payload)
		if err == nil {
			return res, nil
		}
		lastErr = err

		var httpErr *HTTPError
		if errors.As(err, &httpErr) && !httpErr.retryable() {
			return nil, err
		}
		c.log.Warn("resend send failed, retrying", "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("resend: failed after %d attempts: %w", c.cfg.MaxRetries, lastErr)
}

func (c *ResendClient) post(ctx context.Context, path string, payload []byte) (*SendResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &out)
	return &SendResult{StatusCode: resp.StatusCode, ID: out.ID}, nil
}
