package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"bidsmart-backend/internal/besteffort"
	"bidsmart-backend/internal/extraction"
	"bidsmart-backend/internal/logger"
	"bidsmart-backend/internal/models"
	"bidsmart-backend/internal/supabase"
)

var (
	ErrUploadNotFound = errors.New("pdf upload not found")
	ErrInvalidPayload = errors.New("invalid extraction payload")
	ErrBidInsert      = errors.New("failed to insert bid")
)

// Outcome is reported back to MindPal. Status is the upload's new status.
type Outcome struct {
	Status          string
	BidID           *uuid.UUID
	ProjectComplete bool
}

// CallbackService maps a verified MindPal callback onto the relational
// tables. Writes are sequential and not transactional; a replayed callback
// produces a second bid.
type CallbackService struct {
	store    CallbackStore
	scores   ScoreCalculator
	notifier CompletionNotifier
	log      *logger.Logger
}

func NewCallbackService(store CallbackStore, scores ScoreCalculator, notifier CompletionNotifier, log *logger.Logger) *CallbackService {
	return &CallbackService{
		store:    store,
		scores:   scores,
		notifier: notifier,
		log:      log.With("service", "CallbackService"),
	}
}

func (s *CallbackService) HandleCallback(ctx context.Context, requestID string, raw []byte) (*Outcome, error) {
	uploadID, err := uuid.Parse(requestID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUploadNotFound, requestID)
	}

	upload, err := s.store.GetPdfUpload(ctx, uploadID)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUploadNotFound, uploadID)
		}
		return nil, err
	}

	// The raw body is kept whatever happens next.
	audit, err := s.store.CreateExtraction(ctx, upload.ID, json.RawMessage(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to record extraction: %w", err)
	}
	log := s.log.With("pdf_upload_id", upload.ID, "project_id", upload.ProjectID, "extraction_id", audit.ID)

	res := extraction.Parse(raw)
	switch res.Kind {
	case extraction.Failure:
		msg := res.Payload.FailureMessage()
		log.Warn("mindpal reported extraction failure", "reason", msg)
		s.markFailed(ctx, log, upload.ID, audit.ID, "failed", msg, res.Payload)
		return &Outcome{Status: string(models.UploadFailed)}, nil
	case extraction.Invalid:
		msg := res.Err().Error()
		log.Warn("rejecting invalid extraction payload", "errors", msg)
		s.markFailed(ctx, log, upload.ID, audit.ID, "invalid_payload", msg, res.Payload)
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, msg)
	}

	p := res.Payload
	var dropped *string
	if len(res.Dropped) > 0 {
		msg := "ignored out-of-range values: " + strings.Join(res.Dropped, "; ")
		log.Warn("extraction had out-of-range values", "fields", res.Dropped)
		dropped = &msg
	}

	bid := extraction.BuildBid(p, upload.ProjectID, upload.ID)
	if err := s.store.InsertBid(ctx, &bid); err != nil {
		log.Error("bid insert failed", "error", err)
		s.markFailed(ctx, log, upload.ID, audit.ID, "error", err.Error(), p)
		return nil, fmt.Errorf("%w: %v", ErrBidInsert, err)
	}
	log = log.With("bid_id", bid.ID)

	s.insertChildren(ctx, log, p, bid.ID)

	status := models.UploadExtracted
	if extraction.NeedsReview(p) {
		status = models.UploadReviewNeeded
	}
	if err := s.store.UpdateUploadStatus(ctx, upload.ID, models.UploadStatusUpdate{
		Status:        status,
		MindpalStatus: mindpalStatus(p.Status),
	}); err != nil {
		log.Error("failed to update upload status", "status", status, "error", err)
	}
	if err := s.store.UpdateExtraction(ctx, audit.ID, models.ExtractionUpdate{
		ParsedSuccessfully: true,
		ParseErrors:        dropped,
		OverallConfidence:  p.OverallConfidence.Ptr(),
		BidID:              &bid.ID,
	}); err != nil {
		log.Error("failed to update extraction record", "error", err)
	}

	project, err := s.store.GetProjectByID(ctx, upload.ProjectID)
	if err != nil {
		log.Error("failed to load project", "error", err)
		return &Outcome{Status: string(status), BidID: &bid.ID}, nil
	}
	if project.Status == models.ProjectDraft {
		if err := s.store.UpdateProjectStatus(ctx, project.ID, models.ProjectAnalyzing); err != nil {
			log.Error("failed to move project to analyzing", "error", err)
		} else {
			project.Status = models.ProjectAnalyzing
		}
	}

	if s.scores != nil {
		besteffort.Run(ctx, log, "calculate_bid_scores", func(ctx context.Context) error {
			return s.scores.CalculateScores(ctx, project.ID)
		})
	}

	complete := s.checkCompletion(ctx, log, project)
	log.Info("extraction callback processed", "status", status, "project_complete", complete)

	return &Outcome{Status: string(status), BidID: &bid.ID, ProjectComplete: complete}, nil
}

// insertChildren writes each child collection independently. A failure is
// logged and leaves the bid and the other collections in place.
func (s *CallbackService) insertChildren(ctx context.Context, log *logger.Logger, p *extraction.Payload, bidID uuid.UUID) {
	if items := extraction.BuildLineItems(p, bidID); len(items) > 0 {
		if err := s.store.InsertLineItems(ctx, items); err != nil {
			log.Error("failed to insert line items", "count", len(items), "error", err)
		}
	}
	if items := extraction.BuildEquipment(p, bidID); len(items) > 0 {
		if err := s.store.InsertEquipment(ctx, items); err != nil {
			log.Error("failed to insert equipment", "count", len(items), "error", err)
		}
	}
	if items := extraction.BuildFaqs(p, bidID); len(items) > 0 {
		if err := s.store.InsertFaqs(ctx, items); err != nil {
			log.Error("failed to insert faqs", "count", len(items), "error", err)
		}
	}
	if items := extraction.BuildQuestions(p, bidID); len(items) > 0 {
		if err := s.store.InsertQuestions(ctx, items); err != nil {
			log.Error("failed to insert questions", "count", len(items), "error", err)
		}
	}
}

func (s *CallbackService) markFailed(ctx context.Context, log *logger.Logger, uploadID, auditID uuid.UUID, mindpal, msg string, p *extraction.Payload) {
	if err := s.store.UpdateUploadStatus(ctx, uploadID, models.UploadStatusUpdate{
		Status:        models.UploadFailed,
		MindpalStatus: mindpal,
		ErrorMessage:  &msg,
	}); err != nil {
		log.Error("failed to mark upload failed", "error", err)
	}

	upd := models.ExtractionUpdate{ParseErrors: &msg}
	if p != nil {
		upd.OverallConfidence = p.OverallConfidence.Ptr()
	}
	if err := s.store.UpdateExtraction(ctx, auditID, upd); err != nil {
		log.Error("failed to update extraction record", "error", err)
	}
}

// checkCompletion moves the project to comparing once every upload is
// terminal and at least two produced a bid, then asks for the homeowner
// notification. Concurrent callbacks may both get here.
func (s *CallbackService) checkCompletion(ctx context.Context, log *logger.Logger, project *models.Project) bool {
	if project.Status == models.ProjectCompleted || project.Status == models.ProjectCancelled {
		return false
	}

	uploads, err := s.store.ListUploadsByProject(ctx, project.ID)
	if err != nil {
		log.Error("failed to list uploads for completion check", "error", err)
		return false
	}
	if !ReadyToCompare(uploads) {
		return false
	}

	if err := s.store.UpdateProjectStatus(ctx, project.ID, models.ProjectComparing); err != nil {
		log.Error("failed to move project to comparing", "error", err)
		return false
	}

	if s.notifier != nil {
		besteffort.Run(ctx, log, "send_completion_notification", func(ctx context.Context) error {
			return s.notifier.NotifyProjectComplete(ctx, project.ID)
		})
	}
	return true
}

// ReadyToCompare reports whether every upload is terminal and at least two
// of them succeeded.
func ReadyToCompare(uploads []models.PdfUpload) bool {
	successful := 0
	for _, u := range uploads {
		if !u.Status.IsTerminal() {
			return false
		}
		if u.Status.IsSuccessful() {
			successful++
		}
	}
	return successful >= 2
}

func mindpalStatus(s string) string {
	if s == "" {
		return "completed"
	}
	return s
}
