package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"bidsmart-backend/internal/besteffort"
	"bidsmart-backend/internal/logger"
	"bidsmart-backend/internal/mindpal"
	"bidsmart-backend/internal/models"
	"bidsmart-backend/internal/supabase"
)

// MaxPDFSize is the largest accepted bid PDF.
const MaxPDFSize = 25 << 20

var ErrInvalidFile = errors.New("invalid file")

// UploadService stores bid PDFs and hands them to MindPal.
type UploadService struct {
	store       Store
	storage     FileStorage
	mindpal     ExtractionStarter
	callbackURL string
	log         *logger.Logger
	now         func() time.Time
}

func NewUploadService(store Store, storage FileStorage, starter ExtractionStarter, callbackURL string, log *logger.Logger) *UploadService {
	return &UploadService{
		store:       store,
		storage:     storage,
		mindpal:     starter,
		callbackURL: callbackURL,
		log:         log.With("service", "UploadService"),
		now:         time.Now,
	}
}

type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (in UploadInput) validate() error {
	if in.Size <= 0 {
		return fmt.Errorf("%w: file is empty", ErrInvalidFile)
	}
	if in.Size > MaxPDFSize {
		return fmt.Errorf("%w: file exceeds %d MB", ErrInvalidFile, MaxPDFSize>>20)
	}
	isPDFName := strings.HasSuffix(strings.ToLower(in.FileName), ".pdf")
	ct := strings.ToLower(in.ContentType)
	if !isPDFName && !strings.Contains(ct, "pdf") {
		return fmt.Errorf("%w: only PDF files are accepted", ErrInvalidFile)
	}
	return nil
}

// Upload stores the PDF, records it and starts an extraction run. A failed
// MindPal start leaves the upload in uploaded and is reported through
// AnalysisSent.
func (s *UploadService) Upload(ctx context.Context, project *models.Project, in UploadInput) (*models.UploadResponse, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if project.Status == models.ProjectCancelled || project.Status == models.ProjectCompleted {
		return nil, fmt.Errorf("%w: project is %s", ErrInvalidState, project.Status)
	}

	upload := &models.PdfUpload{
		ID:        uuid.New(),
		ProjectID: project.ID,
		FileName:  in.FileName,
		FileSize:  in.Size,
		Status:    models.UploadUploaded,
	}
	upload.StoragePath = supabase.PDFPath(project.UserID, project.ID, upload.ID, in.FileName)

	if err := s.storage.UploadPDF(upload.StoragePath, in.Body); err != nil {
		return nil, err
	}
	if err := s.store.CreateUpload(ctx, upload); err != nil {
		if derr := s.storage.DeleteFile(upload.StoragePath); derr != nil {
			s.log.Warn("failed to remove orphaned pdf", "storage_path", upload.StoragePath, "error", derr)
		}
		return nil, err
	}

	log := s.log.With("project_id", project.ID, "pdf_upload_id", upload.ID)
	sent := s.startExtraction(ctx, log, upload)
	if sent {
		upload.Status = models.UploadProcessing
		if err := s.store.MarkAnalysisQueued(ctx, project.ID, s.now().UTC()); err != nil {
			log.Error("failed to mark analysis queued", "error", err)
		}
	}

	return &models.UploadResponse{Upload: *upload, AnalysisSent: sent}, nil
}

func (s *UploadService) startExtraction(ctx context.Context, log *logger.Logger, upload *models.PdfUpload) bool {
	if s.mindpal == nil || !s.mindpal.Configured() {
		log.Warn("mindpal not configured, upload left for manual processing")
		return false
	}

	res := besteffort.Run(ctx, log, "start_mindpal_extraction", func(ctx context.Context) error {
		fileURL, err := s.storage.SignedURL(upload.StoragePath)
		if err != nil {
			return err
		}
		run, err := s.mindpal.StartExtraction(ctx, mindpal.RunRequest{
			PdfUploadID: upload.ID.String(),
			FileURL:     fileURL,
			CallbackURL: s.callbackURL,
		})
		if err != nil {
			return err
		}
		return s.store.SetMindpalRun(ctx, upload.ID, run.RunID())
	})
	return res.OK()
}

func (s *UploadService) List(ctx context.Context, projectID uuid.UUID) ([]models.PdfUpload, error) {
	return s.store.ListUploadsByProject(ctx, projectID)
}

// Delete removes an upload row (bids cascade) and, best-effort, its file.
func (s *UploadService) Delete(ctx context.Context, uploadID uuid.UUID) error {
	upload, err := s.store.GetPdfUpload(ctx, uploadID)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUploadNotFound, uploadID)
		}
		return err
	}

	log := s.log.With("pdf_upload_id", upload.ID, "project_id", upload.ProjectID)
	besteffort.Run(ctx, log, "delete_pdf_object", func(context.Context) error {
		return s.storage.DeleteFile(upload.StoragePath)
	})

	if err := s.store.DeleteUpload(ctx, upload.ID); err != nil {
		return err
	}
	log.Info("upload deleted by admin", "previous_status", upload.Status)
	return nil
}
