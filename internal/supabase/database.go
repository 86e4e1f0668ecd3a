package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bidsmart-backend/internal/models"
)

// ErrNotFound is returned (wrapped) when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func notFound(err error, what string, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// nullJSON keeps empty documents out of jsonb columns.
func nullJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// Projects

const projectColumns = `id, user_id, name, status, property_zip, selected_bid_id, notification_email,
	analysis_queued_at, notification_sent_at, created_at, updated_at`

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Status, &p.PropertyZip, &p.SelectedBidID, &p.NotificationEmail,
		&p.AnalysisQueuedAt, &p.NotificationSentAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *DatabaseClient) CreateProject(ctx context.Context, p *models.Project) error {
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO projects (id, user_id, name, status, property_zip, notification_email)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, p.ID, p.UserID, p.Name, p.Status, p.PropertyZip, p.NotificationEmail).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetProject returns the project only when it belongs to userID.
func (d *DatabaseClient) GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	p, err := scanProject(d.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE id = $1 AND user_id = $2
	`, projectID, userID))
	if err != nil {
		return nil, notFound(err, "project", projectID)
	}
	return p, nil
}

// GetProjectByID skips the ownership check; it serves the webhook and
// notification paths, which have no user.
func (d *DatabaseClient) GetProjectByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	p, err := scanProject(d.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE id = $1
	`, projectID))
	if err != nil {
		return nil, notFound(err, "project", projectID)
	}
	return p, nil
}

func (d *DatabaseClient) ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (d *DatabaseClient) UpdateProjectStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE projects
		SET status = $1
		WHERE id = $2
	`, status, projectID)
	return err
}

// MarkAnalysisQueued moves a draft or analyzing project to analyzing and
// stamps the queue time. Projects past analyzing are left untouched.
func (d *DatabaseClient) MarkAnalysisQueued(ctx context.Context, projectID uuid.UUID, at time.Time) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE projects
		SET status = $1, analysis_queued_at = $2
		WHERE id = $3 AND status IN ($4, $5)
	`, models.ProjectAnalyzing, at, projectID, models.ProjectDraft, models.ProjectAnalyzing)
	return err
}

func (d *DatabaseClient) MarkNotificationSent(ctx context.Context, projectID uuid.UUID, at time.Time) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE projects
		SET notification_sent_at = $1
		WHERE id = $2
	`, at, projectID)
	return err
}

func (d *DatabaseClient) SelectBid(ctx context.Context, projectID, bidID uuid.UUID) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE projects
		SET selected_bid_id = $1, status = $2
		WHERE id = $3
	`, bidID, models.ProjectCompleted, projectID)
	return err
}

// PDF uploads

const uploadColumns = `id, project_id, file_name, storage_path, file_size, status, mindpal_status,
	mindpal_run_id, error_message, created_at, updated_at`

func scanUpload(row rowScanner) (*models.PdfUpload, error) {
	var u models.PdfUpload
	err := row.Scan(
		&u.ID, &u.ProjectID, &u.FileName, &u.StoragePath, &u.FileSize, &u.Status, &u.MindpalStatus,
		&u.MindpalRunID, &u.ErrorMessage, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *DatabaseClient) CreateUpload(ctx context.Context, u *models.PdfUpload) error {
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO pdf_uploads (id, project_id, file_name, storage_path, file_size, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, u.ID, u.ProjectID, u.FileName, u.StoragePath, u.FileSize, u.Status).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create upload: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetPdfUpload(ctx context.Context, uploadID uuid.UUID) (*models.PdfUpload, error) {
	u, err := scanUpload(d.db.QueryRowContext(ctx, `
		SELECT `+uploadColumns+`
		FROM pdf_uploads
		WHERE id = $1
	`, uploadID))
	if err != nil {
		return nil, notFound(err, "pdf upload", uploadID)
	}
	return u, nil
}

func (d *DatabaseClient) ListUploadsByProject(ctx context.Context, projectID uuid.UUID) ([]models.PdfUpload, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+uploadColumns+`
		FROM pdf_uploads
		WHERE project_id = $1
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	uploads := []models.PdfUpload{}
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		uploads = append(uploads, *u)
	}
	return uploads, rows.Err()
}

func (d *DatabaseClient) UpdateUploadStatus(ctx context.Context, uploadID uuid.UUID, upd models.UploadStatusUpdate) error {
	var mindpalStatus *string
	if upd.MindpalStatus != "" {
		mindpalStatus = &upd.MindpalStatus
	}
	_, err := d.db.ExecContext(ctx, `
		UPDATE pdf_uploads
		SET status = $1,
			mindpal_status = COALESCE($2, mindpal_status),
			error_message = $3
		WHERE id = $4
	`, upd.Status, mindpalStatus, upd.ErrorMessage, uploadID)
	return err
}

func (d *DatabaseClient) SetMindpalRun(ctx context.Context, uploadID uuid.UUID, runID string) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE pdf_uploads
		SET status = $1, mindpal_status = 'queued', mindpal_run_id = NULLIF($2, '')
		WHERE id = $3
	`, models.UploadProcessing, runID, uploadID)
	return err
}

func (d *DatabaseClient) DeleteUpload(ctx context.Context, uploadID uuid.UUID) error {
	res, err := d.db.ExecContext(ctx, `
		DELETE FROM pdf_uploads
		WHERE id = $1
	`, uploadID)
	if err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: pdf upload %s", ErrNotFound, uploadID)
	}
	return nil
}

// MindPal extraction audit rows

func (d *DatabaseClient) CreateExtraction(ctx context.Context, pdfUploadID uuid.UUID, raw json.RawMessage) (*models.MindpalExtraction, error) {
	e := models.MindpalExtraction{
		ID:          uuid.New(),
		PdfUploadID: pdfUploadID,
		RawPayload:  raw,
	}
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO mindpal_extractions (id, pdf_upload_id, raw_payload, parsed_successfully)
		VALUES ($1, $2, $3, FALSE)
		RETURNING created_at, updated_at
	`, e.ID, e.PdfUploadID, string(raw)).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction: %w", err)
	}
	return &e, nil
}

func (d *DatabaseClient) UpdateExtraction(ctx context.Context, extractionID uuid.UUID, upd models.ExtractionUpdate) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE mindpal_extractions
		SET parsed_successfully = $1, parse_errors = $2, overall_confidence = $3, bid_id = $4
		WHERE id = $5
	`, upd.ParsedSuccessfully, upd.ParseErrors, upd.OverallConfidence, upd.BidID, extractionID)
	return err
}

func (d *DatabaseClient) CountExtractions(ctx context.Context, pdfUploadID uuid.UUID) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM mindpal_extractions WHERE pdf_upload_id = $1
	`, pdfUploadID).Scan(&n)
	return n, err
}

// Requirements

func (d *DatabaseClient) UpsertRequirements(ctx context.Context, r *models.ProjectRequirements) error {
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO project_requirements (
			id, project_id, priority_price, priority_efficiency, priority_warranty, priority_reputation,
			priority_timeline, timeline_urgency, budget_range, specific_concerns, additional_notes, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (project_id) DO UPDATE SET
			priority_price = EXCLUDED.priority_price,
			priority_efficiency = EXCLUDED.priority_efficiency,
			priority_warranty = EXCLUDED.priority_warranty,
			priority_reputation = EXCLUDED.priority_reputation,
			priority_timeline = EXCLUDED.priority_timeline,
			timeline_urgency = EXCLUDED.timeline_urgency,
			budget_range = EXCLUDED.budget_range,
			specific_concerns = EXCLUDED.specific_concerns,
			additional_notes = EXCLUDED.additional_notes,
			completed_at = COALESCE(project_requirements.completed_at, EXCLUDED.completed_at)
		RETURNING id, completed_at, created_at, updated_at
	`, r.ID, r.ProjectID, r.PriorityPrice, r.PriorityEfficiency, r.PriorityWarranty, r.PriorityReputation,
		r.PriorityTimeline, r.TimelineUrgency, r.BudgetRange, pq.Array(r.SpecificConcerns), r.AdditionalNotes,
		r.CompletedAt,
	).Scan(&r.ID, &r.CompletedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save requirements: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetRequirements(ctx context.Context, projectID uuid.UUID) (*models.ProjectRequirements, error) {
	var r models.ProjectRequirements
	err := d.db.QueryRowContext(ctx, `
		SELECT id, project_id, priority_price, priority_efficiency, priority_warranty, priority_reputation,
			priority_timeline, timeline_urgency, budget_range, specific_concerns, additional_notes, completed_at,
			created_at, updated_at
		FROM project_requirements
		WHERE project_id = $1
	`, projectID).Scan(
		&r.ID, &r.ProjectID, &r.PriorityPrice, &r.PriorityEfficiency, &r.PriorityWarranty, &r.PriorityReputation,
		&r.PriorityTimeline, &r.TimelineUrgency, &r.BudgetRange, pq.Array(&r.SpecificConcerns), &r.AdditionalNotes,
		&r.CompletedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "requirements", projectID)
	}
	return &r, nil
}
