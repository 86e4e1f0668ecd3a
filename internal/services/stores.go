package services

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"

	"bidsmart-backend/internal/mindpal"
	"bidsmart-backend/internal/models"
)

// CallbackStore is what the extraction callback writes through.
type CallbackStore interface {
	GetPdfUpload(ctx context.Context, uploadID uuid.UUID) (*models.PdfUpload, error)
	GetProjectByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	CreateExtraction(ctx context.Context, pdfUploadID uuid.UUID, raw json.RawMessage) (*models.MindpalExtraction, error)
	UpdateExtraction(ctx context.Context, extractionID uuid.UUID, upd models.ExtractionUpdate) error
	UpdateUploadStatus(ctx context.Context, uploadID uuid.UUID, upd models.UploadStatusUpdate) error
	InsertBid(ctx context.Context, b *models.ContractorBid) error
	InsertLineItems(ctx context.Context, items []models.BidLineItem) error
	InsertEquipment(ctx context.Context, items []models.BidEquipment) error
	InsertFaqs(ctx context.Context, items []models.BidFaq) error
	InsertQuestions(ctx context.Context, items []models.BidQuestion) error
	UpdateProjectStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error
	ListUploadsByProject(ctx context.Context, projectID uuid.UUID) ([]models.PdfUpload, error)
}

// Store is the full persistence surface used by the user-facing services.
type Store interface {
	CallbackStore

	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	MarkAnalysisQueued(ctx context.Context, projectID uuid.UUID, at time.Time) error
	MarkNotificationSent(ctx context.Context, projectID uuid.UUID, at time.Time) error
	SelectBid(ctx context.Context, projectID, bidID uuid.UUID) error

	CreateUpload(ctx context.Context, u *models.PdfUpload) error
	SetMindpalRun(ctx context.Context, uploadID uuid.UUID, runID string) error
	DeleteUpload(ctx context.Context, uploadID uuid.UUID) error

	GetBid(ctx context.Context, bidID uuid.UUID) (*models.ContractorBid, error)
	ListBidsByProject(ctx context.Context, projectID uuid.UUID) ([]models.ContractorBid, error)
	UpdateBidFlags(ctx context.Context, bidID uuid.UUID, isFavorite, verified *bool, at time.Time) error
	ListLineItems(ctx context.Context, bidID uuid.UUID) ([]models.BidLineItem, error)
	ListEquipment(ctx context.Context, bidID uuid.UUID) ([]models.BidEquipment, error)
	ListFaqs(ctx context.Context, bidID uuid.UUID) ([]models.BidFaq, error)
	ListQuestions(ctx context.Context, bidID uuid.UUID) ([]models.BidQuestion, error)
	GetBidScore(ctx context.Context, bidID uuid.UUID) (*models.BidScore, error)

	UpsertRequirements(ctx context.Context, r *models.ProjectRequirements) error
	GetRequirements(ctx context.Context, projectID uuid.UUID) (*models.ProjectRequirements, error)
}

type ScoreCalculator interface {
	CalculateScores(ctx context.Context, projectID uuid.UUID) error
}

type CompletionNotifier interface {
	NotifyProjectComplete(ctx context.Context, projectID uuid.UUID) error
}

// FileStorage holds the uploaded PDFs.
type FileStorage interface {
	UploadPDF(storagePath string, data io.Reader) error
	SignedURL(storagePath string) (string, error)
	DeleteFile(storagePath string) error
}

type ExtractionStarter interface {
	Configured() bool
	StartExtraction(ctx context.Context, req mindpal.RunRequest) (*mindpal.RunResponse, error)
}
