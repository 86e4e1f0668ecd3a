package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"bidsmart-backend/internal/logger"
	"bidsmart-backend/internal/models"
	"bidsmart-backend/internal/poller"
)

type watcher struct {
	api *apiClient
	log *logger.Logger
	out io.Writer

	interval    time.Duration
	maxAttempts int
	enrichDelay time.Duration
}

type watchSummary struct {
	Status         models.ProjectStatus
	AnalysisStatus string
	Bids           int
	Questions      int
	QuestionsReady bool
}

// run prints the project status, waits for clarification questions on the
// project's bids, then re-reads the bids once more after the enrichment
// delay. Running out of attempts is reported, not treated as failure.
func (w *watcher) run(ctx context.Context, projectID string) (*watchSummary, error) {
	status, err := w.api.Status(ctx, projectID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w.out, "project %s: %s (analysis %s, %d bids)\n", projectID, status.Status, status.AnalysisStatus, status.BidCount)
	for _, u := range status.Uploads {
		fmt.Fprintf(w.out, "  %-40s %s\n", u.FileName, u.Status)
	}

	summary := &watchSummary{Status: status.Status, AnalysisStatus: status.AnalysisStatus}

	res, err := poller.Poll(ctx, w.interval, w.maxAttempts, func(ctx context.Context) (bool, error) {
		bids, err := w.api.Bids(ctx, projectID)
		if err != nil {
			w.log.Warn("failed to fetch bids", "project_id", projectID, "error", err)
			return false, err
		}
		summary.Bids = len(bids)
		summary.Questions = countQuestions(bids)
		return summary.Questions > 0, nil
	})
	if err != nil {
		return summary, err
	}
	summary.QuestionsReady = res.Done
	if res.Exhausted {
		fmt.Fprintf(w.out, "no questions after %d attempts\n", res.Attempts)
	} else {
		fmt.Fprintf(w.out, "%d questions across %d bids\n", summary.Questions, summary.Bids)
	}

	enriched := poller.After(ctx, w.enrichDelay, func(ctx context.Context) error {
		bids, err := w.api.Bids(ctx, projectID)
		if err != nil {
			return err
		}
		summary.Bids = len(bids)
		summary.Questions = countQuestions(bids)
		for _, b := range bids {
			fmt.Fprintf(w.out, "  %-30s total=%s score=%s\n", name(b), amount(b.TotalBidAmount), score(b.Score))
		}
		return nil
	})
	if err := <-enriched; err != nil {
		return summary, err
	}
	return summary, nil
}

func countQuestions(bids []models.BidDetail) int {
	n := 0
	for _, b := range bids {
		n += len(b.Questions)
	}
	return n
}

func name(b models.BidDetail) string {
	if b.ContractorName != nil && *b.ContractorName != "" {
		return *b.ContractorName
	}
	return b.ID.String()
}

func amount(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func score(s *models.BidScore) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", s.OverallScore)
}
