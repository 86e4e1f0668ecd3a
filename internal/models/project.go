package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "draft"
	ProjectAnalyzing ProjectStatus = "analyzing"
	ProjectComparing ProjectStatus = "comparing"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

type UploadStatus string

const (
	UploadUploaded     UploadStatus = "uploaded"
	UploadProcessing   UploadStatus = "processing"
	UploadExtracted    UploadStatus = "extracted"
	UploadVerified     UploadStatus = "verified"
	UploadReviewNeeded UploadStatus = "review_needed"
	UploadFailed       UploadStatus = "failed"
)

// IsTerminal reports whether no further automatic transition leaves s.
func (s UploadStatus) IsTerminal() bool {
	switch s {
	case UploadExtracted, UploadVerified, UploadReviewNeeded, UploadFailed:
		return true
	}
	return false
}

// IsSuccessful reports whether the upload produced a usable bid.
func (s UploadStatus) IsSuccessful() bool {
	switch s {
	case UploadExtracted, UploadVerified, UploadReviewNeeded:
		return true
	}
	return false
}

type Project struct {
	ID                 uuid.UUID     `json:"id"`
	UserID             uuid.UUID     `json:"user_id"`
	Name               string        `json:"name"`
	Status             ProjectStatus `json:"status"`
	PropertyZip        *string       `json:"property_zip,omitempty"`
	SelectedBidID      *uuid.UUID    `json:"selected_bid_id,omitempty"`
	NotificationEmail  *string       `json:"notification_email,omitempty"`
	AnalysisQueuedAt   *time.Time    `json:"analysis_queued_at,omitempty"`
	NotificationSentAt *time.Time    `json:"notification_sent_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

type PdfUpload struct {
	ID            uuid.UUID    `json:"id"`
	ProjectID     uuid.UUID    `json:"project_id"`
	FileName      string       `json:"file_name"`
	StoragePath   string       `json:"storage_path"`
	FileSize      int64        `json:"file_size"`
	Status        UploadStatus `json:"status"`
	MindpalStatus *string      `json:"mindpal_status,omitempty"`
	MindpalRunID  *string      `json:"mindpal_run_id,omitempty"`
	ErrorMessage  *string      `json:"error_message,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// UploadStatusUpdate is applied to a pdf_uploads row by the callback path.
type UploadStatusUpdate struct {
	Status        UploadStatus
	MindpalStatus string
	ErrorMessage  *string
}

type MindpalExtraction struct {
	ID                 uuid.UUID       `json:"id"`
	PdfUploadID        uuid.UUID       `json:"pdf_upload_id"`
	RawPayload         json.RawMessage `json:"raw_payload"`
	ParsedSuccessfully bool            `json:"parsed_successfully"`
	ParseErrors        *string         `json:"parse_errors,omitempty"`
	OverallConfidence  *float64        `json:"overall_confidence,omitempty"`
	BidID              *uuid.UUID      `json:"bid_id,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ExtractionUpdate records the parse outcome on an audit row.
type ExtractionUpdate struct {
	ParsedSuccessfully bool
	ParseErrors        *string
	OverallConfidence  *float64
	BidID              *uuid.UUID
}

type ProjectRequirements struct {
	ID                 uuid.UUID  `json:"id"`
	ProjectID          uuid.UUID  `json:"project_id"`
	PriorityPrice      int        `json:"priority_price"`
	PriorityEfficiency int        `json:"priority_efficiency"`
	PriorityWarranty   int        `json:"priority_warranty"`
	PriorityReputation int        `json:"priority_reputation"`
	PriorityTimeline   int        `json:"priority_timeline"`
	TimelineUrgency    *string    `json:"timeline_urgency,omitempty"`
	BudgetRange        *string    `json:"budget_range,omitempty"`
	SpecificConcerns   []string   `json:"specific_concerns"`
	AdditionalNotes    *string    `json:"additional_notes,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
