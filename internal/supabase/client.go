package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"

	"bidsmart-backend/internal/config"
)

// CompletionFunction is the edge function that emails the homeowner.
const CompletionFunction = "send-completion-notification"

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

// NewClient authenticates with the service-role key so edge-function calls
// carry it as their bearer token.
func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

// FunctionsNotifier asks the completion edge function to notify a project's owner.
type FunctionsNotifier struct {
	client *Client
}

func NewFunctionsNotifier(client *Client) *FunctionsNotifier {
	return &FunctionsNotifier{client: client}
}

type completionResult struct {
	Sent   bool   `json:"sent"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

func (n *FunctionsNotifier) NotifyProjectComplete(ctx context.Context, projectID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := n.client.Supabase.Functions.Invoke(CompletionFunction, map[string]string{
		"project_id": projectID.String(),
	})
	if err != nil {
		return fmt.Errorf("invoke %s: %w", CompletionFunction, err)
	}

	var res completionResult
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		return fmt.Errorf("decode %s response: %w", CompletionFunction, err)
	}
	if res.Error != "" {
		return fmt.Errorf("%s: %s", CompletionFunction, res.Error)
	}
	return nil
}
