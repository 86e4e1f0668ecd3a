package extraction

import "encoding/json"

// Envelope holds the fields every callback carries regardless of outcome.
// RequestID is the pdf_uploads id the extraction run was started for.
type Envelope struct {
	RequestID string `json:"request_id"`
	Signature string `json:"signature"`
	Timestamp string `json:"timestamp"`
}

// Payload is the extraction result MindPal posts back. Every business field
// is optional.
type Payload struct {
	Envelope

	Status            string `json:"status"`
	Error             Text   `json:"error"`
	ErrorMessage      Text   `json:"error_message"`
	OverallConfidence Number `json:"overall_confidence"`

	ContractorInfo *ContractorInfo `json:"contractor_info"`
	Pricing        *Pricing        `json:"pricing"`
	Timeline       *Timeline       `json:"timeline"`
	Warranty       *Warranty       `json:"warranty"`
	PaymentTerms   *PaymentTerms   `json:"payment_terms"`
	ScopeOfWork    *ScopeOfWork    `json:"scope_of_work"`
	Dates          *Dates          `json:"dates"`

	LineItems []LineItem  `json:"line_items"`
	Equipment []Equipment `json:"equipment"`
	Faqs      []Faq       `json:"faqs"`
	Questions []Question  `json:"questions"`

	ExtractionNotes  json.RawMessage `json:"extraction_notes"`
	FieldConfidences json.RawMessage `json:"field_confidences"`
}

type ContractorInfo struct {
	CompanyName       Text     `json:"company_name"`
	ContactName       Text     `json:"contact_name"`
	Phone             Text     `json:"phone"`
	Email             Text     `json:"email"`
	Website           Text     `json:"website"`
	Address           Text     `json:"address"`
	LicenseNumber     Text     `json:"license_number"`
	LicenseState      Text     `json:"license_state"`
	InsuranceVerified Flag     `json:"insurance_verified"`
	YearsInBusiness   Number   `json:"years_in_business"`
	GoogleRating      Number   `json:"google_rating"`
	GoogleReviewCount Number   `json:"google_review_count"`
	Certifications    TextList `json:"certifications"`
}

type Pricing struct {
	TotalAmount        Number `json:"total_amount"`
	EquipmentCost      Number `json:"equipment_cost"`
	LaborCost          Number `json:"labor_cost"`
	MaterialsCost      Number `json:"materials_cost"`
	PermitCost         Number `json:"permit_cost"`
	DiscountAmount     Number `json:"discount_amount"`
	PriceBeforeRebates Number `json:"price_before_rebates"`
	PriceAfterRebates  Number `json:"price_after_rebates"`
}

type Timeline struct {
	EstimatedDays      Number `json:"estimated_days"`
	StartDateAvailable Text   `json:"start_date_available"`
}

type Warranty struct {
	LaborWarrantyYears        Number `json:"labor_warranty_years"`
	EquipmentWarrantyYears    Number `json:"equipment_warranty_years"`
	AdditionalWarrantyDetails Text   `json:"additional_warranty_details"`
}

type PaymentTerms struct {
	DepositRequired   Number `json:"deposit_required"`
	DepositPercentage Number `json:"deposit_percentage"`
	PaymentSchedule   Text   `json:"payment_schedule"`
	FinancingOffered  Flag   `json:"financing_offered"`
	FinancingTerms    Text   `json:"financing_terms"`
}

type ScopeOfWork struct {
	Summary                Text     `json:"summary"`
	Inclusions             TextList `json:"inclusions"`
	Exclusions             TextList `json:"exclusions"`
	PermitsIncluded        Flag     `json:"permits_included"`
	DisposalIncluded       Flag     `json:"disposal_included"`
	ElectricalWorkIncluded Flag     `json:"electrical_work_included"`
	DuctworkIncluded       Flag     `json:"ductwork_included"`
	ThermostatIncluded     Flag     `json:"thermostat_included"`
}

type Dates struct {
	BidDate    Text `json:"bid_date"`
	ValidUntil Text `json:"valid_until"`
}

type LineItem struct {
	ItemType    Text   `json:"item_type"`
	Description Text   `json:"description"`
	Quantity    Number `json:"quantity"`
	UnitPrice   Number `json:"unit_price"`
	TotalPrice  Number `json:"total_price"`
	Brand       Text   `json:"brand"`
	ModelNumber Text   `json:"model_number"`
	IsOptional  Flag   `json:"is_optional"`
	Notes       Text   `json:"notes"`
}

type Equipment struct {
	EquipmentType   Text   `json:"equipment_type"`
	Brand           Text   `json:"brand"`
	ModelNumber     Text   `json:"model_number"`
	ModelName       Text   `json:"model_name"`
	CapacityBTU     Number `json:"capacity_btu"`
	CapacityTons    Number `json:"capacity_tons"`
	SeerRating      Number `json:"seer_rating"`
	Seer2Rating     Number `json:"seer2_rating"`
	HspfRating      Number `json:"hspf_rating"`
	Hspf2Rating     Number `json:"hspf2_rating"`
	EerRating       Number `json:"eer_rating"`
	AfueRating      Number `json:"afue_rating"`
	VariableSpeed   Flag   `json:"variable_speed"`
	Stages          Number `json:"stages"`
	RefrigerantType Text   `json:"refrigerant_type"`
	SoundLevelDB    Number `json:"sound_level_db"`
	EnergyStar      Flag   `json:"energy_star"`
	EquipmentCost   Number `json:"equipment_cost"`
	Confidence      Text   `json:"confidence"`
}

type Faq struct {
	Question Text `json:"question"`
	Answer   Text `json:"answer"`
	Category Text `json:"category"`
}

type Question struct {
	QuestionText              Text `json:"question_text"`
	QuestionCategory          Text `json:"question_category"`
	Priority                  Text `json:"priority"`
	Context                   Text `json:"context"`
	TriggeredBy               Text `json:"triggered_by"`
	GoodAnswerLooksLike       Text `json:"good_answer_looks_like"`
	ConcerningAnswerLooksLike Text `json:"concerning_answer_looks_like"`
}

// FailureMessage is the error text MindPal supplied for a failed run.
func (p *Payload) FailureMessage() string {
	switch {
	case p.Error.Valid:
		return p.Error.Value
	case p.ErrorMessage.Valid:
		return p.ErrorMessage.Value
	default:
		return "extraction failed"
	}
}
