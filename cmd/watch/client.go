package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bidsmart-backend/internal/models"
)

// apiClient reads project state from the BidSmart API as the signed-in user.
type apiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *apiClient) Status(ctx context.Context, projectID string) (*models.StatusResponse, error) {
	var out models.StatusResponse
	if err := c.get(ctx, "/projects/"+projectID+"/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) Bids(ctx context.Context, projectID string) ([]models.BidDetail, error) {
	var out models.BidListResponse
	if err := c.get(ctx, "/projects/"+projectID+"/bids", &out); err != nil {
		return nil, err
	}
	return out.Bids, nil
}

func (c *apiClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr models.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("GET %s: %d %s", path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("GET %s: %d", path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
