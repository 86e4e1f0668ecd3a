package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bidsmart-backend/internal/logger"
	"bidsmart-backend/internal/models"
	"bidsmart-backend/internal/notify"
	"bidsmart-backend/internal/supabase"
)

const (
	ReasonEmailDisabled = "email_disabled"
	ReasonNoEmail       = "no_notification_email"
	ReasonAlreadySent   = "already_sent"
)

// NotificationService emails the homeowner once their bids are ready to compare.
type NotificationService struct {
	store      Store
	sender     notify.Sender
	appBaseURL string
	log        *logger.Logger
	now        func() time.Time
}

// NewNotificationService accepts a nil sender when email is not configured.
func NewNotificationService(store Store, sender notify.Sender, appBaseURL string, log *logger.Logger) *NotificationService {
	return &NotificationService{
		store:      store,
		sender:     sender,
		appBaseURL: appBaseURL,
		log:        log.With("service", "NotificationService"),
		now:        time.Now,
	}
}

func (s *NotificationService) SendCompletion(ctx context.Context, projectID uuid.UUID) (*models.NotificationResponse, error) {
	project, err := s.store.GetProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
		}
		return nil, err
	}
	log := s.log.With("project_id", project.ID)

	if project.NotificationSentAt != nil {
		return &models.NotificationResponse{Sent: false, Reason: ReasonAlreadySent}, nil
	}
	if s.sender == nil {
		log.Info("email disabled, skipping completion notification")
		return &models.NotificationResponse{Sent: false, Reason: ReasonEmailDisabled}, nil
	}
	if project.NotificationEmail == nil || *project.NotificationEmail == "" {
		return &models.NotificationResponse{Sent: false, Reason: ReasonNoEmail}, nil
	}

	bids, err := s.store.ListBidsByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	res, err := s.sender.Send(ctx, notify.CompletionEmail(*project, len(bids), s.appBaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to send completion email: %w", err)
	}
	if err := s.store.MarkNotificationSent(ctx, project.ID, s.now().UTC()); err != nil {
		log.Error("email sent but notification_sent_at not recorded", "error", err)
	}

	log.Info("completion notification sent", "email_id", res.ID, "bid_count", len(bids))
	return &models.NotificationResponse{Sent: true}, nil
}
