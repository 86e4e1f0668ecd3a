package supabase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

// ScoreFunction is the Postgres function that (re)scores a project's bids.
const ScoreFunction = "calculate_bid_scores"

// ScoreCalculator calls ScoreFunction through PostgREST. The postgrest
// client reports failures through a shared field, so calls are serialised.
type ScoreCalculator struct {
	mu   sync.Mutex
	rest *postgrest.Client
}

func NewScoreCalculator(supabaseURL, serviceRoleKey string) *ScoreCalculator {
	rest := postgrest.NewClient(strings.TrimSuffix(supabaseURL, "/")+"/rest/v1", "public", map[string]string{
		"apikey":        serviceRoleKey,
		"Authorization": "Bearer " + serviceRoleKey,
	})
	return &ScoreCalculator{rest: rest}
}

func (s *ScoreCalculator) CalculateScores(ctx context.Context, projectID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rest.ClientError = nil
	body := s.rest.Rpc(ScoreFunction, "", map[string]string{"p_project_id": projectID.String()})
	if s.rest.ClientError != nil {
		return fmt.Errorf("rpc %s: %w", ScoreFunction, s.rest.ClientError)
	}
	if strings.Contains(body, `"code"`) && strings.Contains(body, `"message"`) {
		return fmt.Errorf("rpc %s: %s", ScoreFunction, body)
	}
	return nil
}
