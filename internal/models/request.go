package models

type CreateProjectRequest struct {
	Name              string `json:"name" binding:"omitempty,max=200"`
	PropertyZip       string `json:"property_zip" binding:"omitempty,len=5,numeric"`
	NotificationEmail string `json:"notification_email" binding:"omitempty,email"`
}

type SelectBidRequest struct {
	BidID string `json:"bid_id" binding:"required,uuid"`
}

// UpdateBidRequest carries the user-editable flags on a bid. Nil fields are left untouched.
type UpdateBidRequest struct {
	IsFavorite     *bool `json:"is_favorite"`
	VerifiedByUser *bool `json:"verified_by_user"`
}

// RequirementsRequest is the homeowner questionnaire. Weights run 1 (unimportant) to 5.
type RequirementsRequest struct {
	PriorityPrice      int      `json:"priority_price" binding:"required,min=1,max=5"`
	PriorityEfficiency int      `json:"priority_efficiency" binding:"required,min=1,max=5"`
	PriorityWarranty   int      `json:"priority_warranty" binding:"required,min=1,max=5"`
	PriorityReputation int      `json:"priority_reputation" binding:"required,min=1,max=5"`
	PriorityTimeline   int      `json:"priority_timeline" binding:"required,min=1,max=5"`
	TimelineUrgency    string   `json:"timeline_urgency" binding:"omitempty,oneof=flexible within_month within_week emergency"`
	BudgetRange        string   `json:"budget_range" binding:"omitempty,max=100"`
	SpecificConcerns   []string `json:"specific_concerns" binding:"omitempty,max=20,dive,max=500"`
	AdditionalNotes    string   `json:"additional_notes" binding:"omitempty,max=2000"`
	Completed          bool     `json:"completed"`
}

type CompletionNotificationRequest struct {
	ProjectID string `json:"project_id" binding:"required,uuid"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
