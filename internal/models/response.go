package models

import "time"

type ProjectListResponse struct {
	Projects []Project `json:"projects"`
}

type UploadResponse struct {
	Upload       PdfUpload `json:"upload"`
	AnalysisSent bool      `json:"analysis_sent"`
}

type UploadListResponse struct {
	Uploads []PdfUpload `json:"uploads"`
}

type BidListResponse struct {
	Bids []BidDetail `json:"bids"`
}

type StatusResponse struct {
	ProjectID      string           `json:"project_id"`
	Status         ProjectStatus    `json:"status"`
	AnalysisStatus string           `json:"analysis_status"`
	Uploads        []UploadProgress `json:"uploads"`
	BidCount       int              `json:"bid_count"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type UploadProgress struct {
	ID           string       `json:"id"`
	FileName     string       `json:"file_name"`
	Status       UploadStatus `json:"status"`
	ErrorMessage *string      `json:"error_message,omitempty"`
}

// CallbackResponse is returned to MindPal by the extraction webhook.
type CallbackResponse struct {
	Success         bool    `json:"success"`
	Status          string  `json:"status"`
	BidID           *string `json:"bidId"`
	ProjectComplete bool    `json:"projectComplete"`
}

type NotificationResponse struct {
	Sent   bool   `json:"sent"`
	Reason string `json:"reason,omitempty"`
}

type ClientConfigResponse struct {
	SupabaseURL     string `json:"supabase_url"`
	SupabaseAnonKey string `json:"supabase_anon_key"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
