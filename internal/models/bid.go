package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceManual ConfidenceLevel = "manual"
)

// ContractorBid is the flattened, structured form of one extracted PDF.
type ContractorBid struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	PdfUploadID uuid.UUID `json:"pdf_upload_id"`

	// Contractor
	ContractorName        *string  `json:"contractor_name"`
	ContractorContactName *string  `json:"contractor_contact_name"`
	ContractorPhone       *string  `json:"contractor_phone"`
	ContractorEmail       *string  `json:"contractor_email"`
	ContractorWebsite     *string  `json:"contractor_website"`
	ContractorAddress     *string  `json:"contractor_address"`
	LicenseNumber         *string  `json:"license_number"`
	LicenseState          *string  `json:"license_state"`
	InsuranceVerified     *bool    `json:"insurance_verified"`
	YearsInBusiness       *int     `json:"years_in_business"`
	GoogleRating          *float64 `json:"google_rating"`
	GoogleReviewCount     *int     `json:"google_review_count"`
	Certifications        []string `json:"certifications"`

	// Pricing
	TotalBidAmount     *float64 `json:"total_bid_amount"`
	EquipmentCost      *float64 `json:"equipment_cost"`
	LaborCost          *float64 `json:"labor_cost"`
	MaterialsCost      *float64 `json:"materials_cost"`
	PermitCost         *float64 `json:"permit_cost"`
	DiscountAmount     *float64 `json:"discount_amount"`
	PriceBeforeRebates *float64 `json:"price_before_rebates"`
	PriceAfterRebates  *float64 `json:"price_after_rebates"`

	// Timeline
	EstimatedDays      *int    `json:"estimated_days"`
	StartDateAvailable *string `json:"start_date_available"`

	// Warranty
	LaborWarrantyYears        *float64 `json:"labor_warranty_years"`
	EquipmentWarrantyYears    *float64 `json:"equipment_warranty_years"`
	AdditionalWarrantyDetails *string  `json:"additional_warranty_details"`

	// Payment terms
	DepositRequired   *float64 `json:"deposit_required"`
	DepositPercentage *float64 `json:"deposit_percentage"`
	PaymentSchedule   *string  `json:"payment_schedule"`
	FinancingOffered  *bool    `json:"financing_offered"`
	FinancingTerms    *string  `json:"financing_terms"`

	// Scope of work
	ScopeSummary           *string  `json:"scope_summary"`
	Inclusions             []string `json:"inclusions"`
	Exclusions             []string `json:"exclusions"`
	PermitsIncluded        *bool    `json:"permits_included"`
	DisposalIncluded       *bool    `json:"disposal_included"`
	ElectricalWorkIncluded *bool    `json:"electrical_work_included"`
	DuctworkIncluded       *bool    `json:"ductwork_included"`
	ThermostatIncluded     *bool    `json:"thermostat_included"`

	// Dates
	BidDate    *string `json:"bid_date"`
	ValidUntil *string `json:"valid_until"`

	// Extraction metadata
	ExtractionConfidence ConfidenceLevel `json:"extraction_confidence"`
	OverallConfidence    *float64        `json:"overall_confidence"`
	ExtractionNotes      json.RawMessage `json:"extraction_notes,omitempty"`
	FieldConfidences     json.RawMessage `json:"field_confidences,omitempty"`

	// User actions
	IsFavorite     bool       `json:"is_favorite"`
	VerifiedByUser bool       `json:"verified_by_user"`
	VerifiedAt     *time.Time `json:"verified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasScopeData reports whether the extraction produced any scope-of-work detail.
func (b *ContractorBid) HasScopeData() bool {
	return (b.ScopeSummary != nil && *b.ScopeSummary != "") || len(b.Inclusions) > 0 || len(b.Exclusions) > 0
}

type BidLineItem struct {
	ID           uuid.UUID `json:"id"`
	BidID        uuid.UUID `json:"bid_id"`
	ItemType     *string   `json:"item_type"`
	Description  string    `json:"description"`
	Quantity     *float64  `json:"quantity"`
	UnitPrice    *float64  `json:"unit_price"`
	TotalPrice   *float64  `json:"total_price"`
	Brand        *string   `json:"brand"`
	ModelNumber  *string   `json:"model_number"`
	IsOptional   bool      `json:"is_optional"`
	Notes        *string   `json:"notes"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

type BidEquipment struct {
	ID              uuid.UUID `json:"id"`
	BidID           uuid.UUID `json:"bid_id"`
	EquipmentType   string    `json:"equipment_type"`
	Brand           *string   `json:"brand"`
	ModelNumber     *string   `json:"model_number"`
	ModelName       *string   `json:"model_name"`
	CapacityBTU     *int      `json:"capacity_btu"`
	CapacityTons    *float64  `json:"capacity_tons"`
	SeerRating      *float64  `json:"seer_rating"`
	Seer2Rating     *float64  `json:"seer2_rating"`
	HspfRating      *float64  `json:"hspf_rating"`
	Hspf2Rating     *float64  `json:"hspf2_rating"`
	EerRating       *float64  `json:"eer_rating"`
	AfueRating      *float64  `json:"afue_rating"`
	VariableSpeed   *bool     `json:"variable_speed"`
	Stages          *int      `json:"stages"`
	RefrigerantType *string   `json:"refrigerant_type"`
	SoundLevelDB    *float64  `json:"sound_level_db"`
	EnergyStar      *bool     `json:"energy_star"`
	EquipmentCost   *float64  `json:"equipment_cost"`
	Confidence      *string   `json:"confidence"`
	CreatedAt       time.Time `json:"created_at"`
}

type BidFaq struct {
	ID           uuid.UUID `json:"id"`
	BidID        uuid.UUID `json:"bid_id"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	Category     *string   `json:"category"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

type BidQuestion struct {
	ID                        uuid.UUID `json:"id"`
	BidID                     uuid.UUID `json:"bid_id"`
	QuestionText              string    `json:"question_text"`
	QuestionCategory          *string   `json:"question_category"`
	Priority                  *string   `json:"priority"`
	Context                   *string   `json:"context"`
	TriggeredBy               *string   `json:"triggered_by"`
	GoodAnswerLooksLike       *string   `json:"good_answer_looks_like"`
	ConcerningAnswerLooksLike *string   `json:"concerning_answer_looks_like"`
	IsAnswered                bool      `json:"is_answered"`
	AnswerText                *string   `json:"answer_text"`
	DisplayOrder              int       `json:"display_order"`
	CreatedAt                 time.Time `json:"created_at"`
}

type BidScore struct {
	ID              uuid.UUID `json:"id"`
	BidID           uuid.UUID `json:"bid_id"`
	OverallScore    float64   `json:"overall_score"`
	PriceScore      float64   `json:"price_score"`
	EfficiencyScore float64   `json:"efficiency_score"`
	WarrantyScore   float64   `json:"warranty_score"`
	ReputationScore float64   `json:"reputation_score"`
	TimelineScore   float64   `json:"timeline_score"`
	CalculatedAt    time.Time `json:"calculated_at"`
}

// BidDetail is a bid with every child collection loaded.
type BidDetail struct {
	ContractorBid
	LineItems []BidLineItem  `json:"line_items"`
	Equipment []BidEquipment `json:"equipment"`
	Faqs      []BidFaq       `json:"faqs"`
	Questions []BidQuestion  `json:"questions"`
	Score     *BidScore      `json:"score,omitempty"`
}
