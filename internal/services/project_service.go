package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bidsmart-backend/internal/logger"
	"bidsmart-backend/internal/models"
	"bidsmart-backend/internal/phase"
	"bidsmart-backend/internal/supabase"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrInvalidState    = errors.New("invalid project state")
)

const DefaultProjectName = "My HVAC Project"

type ProjectService struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

func NewProjectService(store Store, log *logger.Logger) *ProjectService {
	return &ProjectService{store: store, log: log.With("service", "ProjectService"), now: time.Now}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *ProjectService) Create(ctx context.Context, userID uuid.UUID, req models.CreateProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = DefaultProjectName
	}
	p := &models.Project{
		ID:                uuid.New(),
		UserID:            userID,
		Name:              name,
		Status:            models.ProjectDraft,
		PropertyZip:       optional(req.PropertyZip),
		NotificationEmail: optional(req.NotificationEmail),
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("project created", "project_id", p.ID, "user_id", userID)
	return p, nil
}

func (s *ProjectService) List(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	return s.store.ListProjects(ctx, userID)
}

// Get returns ErrProjectNotFound for projects owned by someone else.
func (s *ProjectService) Get(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error) {
	p, err := s.store.GetProject(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
		}
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) Cancel(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error) {
	p, err := s.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if p.Status == models.ProjectCompleted {
		return nil, fmt.Errorf("%w: project already completed", ErrInvalidState)
	}
	if err := s.store.UpdateProjectStatus(ctx, p.ID, models.ProjectCancelled); err != nil {
		return nil, err
	}
	p.Status = models.ProjectCancelled
	return p, nil
}

// SelectBid records the homeowner's choice and completes the project.
func (s *ProjectService) SelectBid(ctx context.Context, userID, projectID, bidID uuid.UUID) (*models.Project, error) {
	p, err := s.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if p.Status == models.ProjectCancelled {
		return nil, fmt.Errorf("%w: project is cancelled", ErrInvalidState)
	}
	bid, err := s.store.GetBid(ctx, bidID)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBidNotFound, bidID)
		}
		return nil, err
	}
	if bid.ProjectID != p.ID {
		return nil, fmt.Errorf("%w: %s", ErrBidNotFound, bidID)
	}

	if err := s.store.SelectBid(ctx, p.ID, bid.ID); err != nil {
		return nil, err
	}
	p.SelectedBidID = &bid.ID
	p.Status = models.ProjectCompleted
	return p, nil
}

// Status summarises a project's extraction progress.
func (s *ProjectService) Status(ctx context.Context, userID, projectID uuid.UUID) (*models.StatusResponse, error) {
	p, err := s.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	uploads, err := s.store.ListUploadsByProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	bids, err := s.store.ListBidsByProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	progress := make([]models.UploadProgress, 0, len(uploads))
	for _, u := range uploads {
		progress = append(progress, models.UploadProgress{
			ID:           u.ID.String(),
			FileName:     u.FileName,
			Status:       u.Status,
			ErrorMessage: u.ErrorMessage,
		})
	}

	return &models.StatusResponse{
		ProjectID:      p.ID.String(),
		Status:         p.Status,
		AnalysisStatus: string(phase.DeriveAnalysisStatus(*p, bids, s.now())),
		Uploads:        progress,
		BidCount:       len(bids),
		UpdatedAt:      p.UpdatedAt,
	}, nil
}

func (s *ProjectService) SaveRequirements(ctx context.Context, userID, projectID uuid.UUID, req models.RequirementsRequest) (*models.ProjectRequirements, error) {
	p, err := s.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	r := &models.ProjectRequirements{
		ID:                 uuid.New(),
		ProjectID:          p.ID,
		PriorityPrice:      req.PriorityPrice,
		PriorityEfficiency: req.PriorityEfficiency,
		PriorityWarranty:   req.PriorityWarranty,
		PriorityReputation: req.PriorityReputation,
		PriorityTimeline:   req.PriorityTimeline,
		TimelineUrgency:    optional(req.TimelineUrgency),
		BudgetRange:        optional(req.BudgetRange),
		SpecificConcerns:   req.SpecificConcerns,
		AdditionalNotes:    optional(req.AdditionalNotes),
	}
	if req.Completed {
		at := s.now().UTC()
		r.CompletedAt = &at
	}
	if err := s.store.UpsertRequirements(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Requirements returns ErrNotFound (wrapped) when none were saved yet.
func (s *ProjectService) Requirements(ctx context.Context, userID, projectID uuid.UUID) (*models.ProjectRequirements, error) {
	p, err := s.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	return s.store.GetRequirements(ctx, p.ID)
}

// PhaseFacts loads what phase.Derive needs for a project.
func (s *ProjectService) PhaseFacts(projectID uuid.UUID) phase.FactsFunc {
	return func(ctx context.Context) (phase.Facts, error) {
		bids, err := s.store.ListBidsByProject(ctx, projectID)
		if err != nil {
			return phase.Facts{}, err
		}
		facts := phase.Facts{BidCount: len(bids)}

		req, err := s.store.GetRequirements(ctx, projectID)
		switch {
		case err == nil:
			facts.RequirementsCompletedAt = req.CompletedAt
		case errors.Is(err, supabase.ErrNotFound):
		default:
			return phase.Facts{}, err
		}
		return facts, nil
	}
}
