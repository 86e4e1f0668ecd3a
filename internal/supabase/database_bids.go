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

const bidColumns = `id, project_id, pdf_upload_id,
	contractor_name, contractor_contact_name, contractor_phone, contractor_email, contractor_website,
	contractor_address, license_number, license_state, insurance_verified, years_in_business,
	google_rating, google_review_count, certifications,
	total_bid_amount, equipment_cost, labor_cost, materials_cost, permit_cost, discount_amount,
	price_before_rebates, price_after_rebates,
	estimated_days, start_date_available,
	labor_warranty_years, equipment_warranty_years, additional_warranty_details,
	deposit_required, deposit_percentage, payment_schedule, financing_offered, financing_terms,
	scope_summary, inclusions, exclusions, permits_included, disposal_included, electrical_work_included,
	ductwork_included, thermostat_included,
	bid_date, valid_until,
	extraction_confidence, overall_confidence, extraction_notes, field_confidences,
	is_favorite, verified_by_user, verified_at, created_at, updated_at`

func bidArgs(b *models.ContractorBid) []interface{} {
	return []interface{}{
		b.ID, b.ProjectID, b.PdfUploadID,
		b.ContractorName, b.ContractorContactName, b.ContractorPhone, b.ContractorEmail, b.ContractorWebsite,
		b.ContractorAddress, b.LicenseNumber, b.LicenseState, b.InsuranceVerified, b.YearsInBusiness,
		b.GoogleRating, b.GoogleReviewCount, pq.Array(b.Certifications),
		b.TotalBidAmount, b.EquipmentCost, b.LaborCost, b.MaterialsCost, b.PermitCost, b.DiscountAmount,
		b.PriceBeforeRebates, b.PriceAfterRebates,
		b.EstimatedDays, b.StartDateAvailable,
		b.LaborWarrantyYears, b.EquipmentWarrantyYears, b.AdditionalWarrantyDetails,
		b.DepositRequired, b.DepositPercentage, b.PaymentSchedule, b.FinancingOffered, b.FinancingTerms,
		b.ScopeSummary, pq.Array(b.Inclusions), pq.Array(b.Exclusions), b.PermitsIncluded, b.DisposalIncluded,
		b.ElectricalWorkIncluded, b.DuctworkIncluded, b.ThermostatIncluded,
		b.BidDate, b.ValidUntil,
		b.ExtractionConfidence, b.OverallConfidence, nullJSON(b.ExtractionNotes), nullJSON(b.FieldConfidences),
		b.IsFavorite, b.VerifiedByUser, b.VerifiedAt,
	}
}

func scanBid(row rowScanner) (*models.ContractorBid, error) {
	var b models.ContractorBid
	var notes, confidences []byte
	err := row.Scan(
		&b.ID, &b.ProjectID, &b.PdfUploadID,
		&b.ContractorName, &b.ContractorContactName, &b.ContractorPhone, &b.ContractorEmail, &b.ContractorWebsite,
		&b.ContractorAddress, &b.LicenseNumber, &b.LicenseState, &b.InsuranceVerified, &b.YearsInBusiness,
		&b.GoogleRating, &b.GoogleReviewCount, pq.Array(&b.Certifications),
		&b.TotalBidAmount, &b.EquipmentCost, &b.LaborCost, &b.MaterialsCost, &b.PermitCost, &b.DiscountAmount,
		&b.PriceBeforeRebates, &b.PriceAfterRebates,
		&b.EstimatedDays, &b.StartDateAvailable,
		&b.LaborWarrantyYears, &b.EquipmentWarrantyYears, &b.AdditionalWarrantyDetails,
		&b.DepositRequired, &b.DepositPercentage, &b.PaymentSchedule, &b.FinancingOffered, &b.FinancingTerms,
		&b.ScopeSummary, pq.Array(&b.Inclusions), pq.Array(&b.Exclusions), &b.PermitsIncluded, &b.DisposalIncluded,
		&b.ElectricalWorkIncluded, &b.DuctworkIncluded, &b.ThermostatIncluded,
		&b.BidDate, &b.ValidUntil,
		&b.ExtractionConfidence, &b.OverallConfidence, &notes, &confidences,
		&b.IsFavorite, &b.VerifiedByUser, &b.VerifiedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(notes) > 0 {
		b.ExtractionNotes = json.RawMessage(notes)
	}
	if len(confidences) > 0 {
		b.FieldConfidences = json.RawMessage(confidences)
	}
	return &b, nil
}

func (d *DatabaseClient) InsertBid(ctx context.Context, b *models.ContractorBid) error {
	args := bidArgs(b)
	placeholders := ""
	for i := range args {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += fmt.Sprintf("$%d", i+1)
	}
	// bidArgs omits created_at and updated_at, the last two columns.
	insertColumns := bidColumns[:len(bidColumns)-len(", created_at, updated_at")]

	err := d.db.QueryRowContext(ctx,
		"INSERT INTO contractor_bids ("+insertColumns+") VALUES ("+placeholders+") RETURNING created_at, updated_at",
		args...,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert bid: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetBid(ctx context.Context, bidID uuid.UUID) (*models.ContractorBid, error) {
	b, err := scanBid(d.db.QueryRowContext(ctx, `
		SELECT `+bidColumns+`
		FROM contractor_bids
		WHERE id = $1
	`, bidID))
	if err != nil {
		return nil, notFound(err, "bid", bidID)
	}
	return b, nil
}

func (d *DatabaseClient) ListBidsByProject(ctx context.Context, projectID uuid.UUID) ([]models.ContractorBid, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+bidColumns+`
		FROM contractor_bids
		WHERE project_id = $1
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	defer rows.Close()

	bids := []models.ContractorBid{}
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, *b)
	}
	return bids, rows.Err()
}

// UpdateBidFlags applies the non-nil flags. Setting verified_by_user also
// stamps verified_at.
func (d *DatabaseClient) UpdateBidFlags(ctx context.Context, bidID uuid.UUID, isFavorite, verified *bool, at time.Time) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE contractor_bids
		SET is_favorite = COALESCE($1, is_favorite),
			verified_by_user = COALESCE($2, verified_by_user),
			verified_at = CASE WHEN $2 IS TRUE THEN $3 WHEN $2 IS FALSE THEN NULL ELSE verified_at END
		WHERE id = $4
	`, isFavorite, verified, at, bidID)
	return err
}

func (d *DatabaseClient) InsertLineItems(ctx context.Context, items []models.BidLineItem) error {
	for _, li := range items {
		_, err := d.db.ExecContext(ctx, `
			INSERT INTO bid_line_items (id, bid_id, item_type, description, quantity, unit_price, total_price,
				brand, model_number, is_optional, notes, display_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, li.ID, li.BidID, li.ItemType, li.Description, li.Quantity, li.UnitPrice, li.TotalPrice,
			li.Brand, li.ModelNumber, li.IsOptional, li.Notes, li.DisplayOrder)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
	}
	return nil
}

func (d *DatabaseClient) InsertEquipment(ctx context.Context, items []models.BidEquipment) error {
	for _, e := range items {
		_, err := d.db.ExecContext(ctx, `
			INSERT INTO bid_equipment (id, bid_id, equipment_type, brand, model_number, model_name, capacity_btu,
				capacity_tons, seer_rating, seer2_rating, hspf_rating, hspf2_rating, eer_rating, afue_rating,
				variable_speed, stages, refrigerant_type, sound_level_db, energy_star, equipment_cost, confidence)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		`, e.ID, e.BidID, e.EquipmentType, e.Brand, e.ModelNumber, e.ModelName, e.CapacityBTU,
			e.CapacityTons, e.SeerRating, e.Seer2Rating, e.HspfRating, e.Hspf2Rating, e.EerRating, e.AfueRating,
			e.VariableSpeed, e.Stages, e.RefrigerantType, e.SoundLevelDB, e.EnergyStar, e.EquipmentCost, e.Confidence)
		if err != nil {
			return fmt.Errorf("failed to insert equipment: %w", err)
		}
	}
	return nil
}

func (d *DatabaseClient) InsertFaqs(ctx context.Context, items []models.BidFaq) error {
	for _, f := range items {
		_, err := d.db.ExecContext(ctx, `
			INSERT INTO bid_faqs (id, bid_id, question, answer, category, display_order)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, f.ID, f.BidID, f.Question, f.Answer, f.Category, f.DisplayOrder)
		if err != nil {
			return fmt.Errorf("failed to insert faq: %w", err)
		}
	}
	return nil
}

func (d *DatabaseClient) InsertQuestions(ctx context.Context, items []models.BidQuestion) error {
	for _, q := range items {
		_, err := d.db.ExecContext(ctx, `
			INSERT INTO bid_questions (id, bid_id, question_text, question_category, priority, context,
				triggered_by, good_answer_looks_like, concerning_answer_looks_like, display_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, q.ID, q.BidID, q.QuestionText, q.QuestionCategory, q.Priority, q.Context,
			q.TriggeredBy, q.GoodAnswerLooksLike, q.ConcerningAnswerLooksLike, q.DisplayOrder)
		if err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}
	}
	return nil
}

func (d *DatabaseClient) ListLineItems(ctx context.Context, bidID uuid.UUID) ([]models.BidLineItem, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, bid_id, item_type, description, quantity, unit_price, total_price, brand, model_number,
			is_optional, notes, display_order, created_at
		FROM bid_line_items
		WHERE bid_id = $1
		ORDER BY display_order ASC
	`, bidID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	defer rows.Close()

	items := []models.BidLineItem{}
	for rows.Next() {
		var li models.BidLineItem
		if err := rows.Scan(
			&li.ID, &li.BidID, &li.ItemType, &li.Description, &li.Quantity, &li.UnitPrice, &li.TotalPrice,
			&li.Brand, &li.ModelNumber, &li.IsOptional, &li.Notes, &li.DisplayOrder, &li.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

func (d *DatabaseClient) ListEquipment(ctx context.Context, bidID uuid.UUID) ([]models.BidEquipment, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, bid_id, equipment_type, brand, model_number, model_name, capacity_btu, capacity_tons,
			seer_rating, seer2_rating, hspf_rating, hspf2_rating, eer_rating, afue_rating, variable_speed,
			stages, refrigerant_type, sound_level_db, energy_star, equipment_cost, confidence, created_at
		FROM bid_equipment
		WHERE bid_id = $1
		ORDER BY created_at ASC
	`, bidID)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	defer rows.Close()

	items := []models.BidEquipment{}
	for rows.Next() {
		var e models.BidEquipment
		if err := rows.Scan(
			&e.ID, &e.BidID, &e.EquipmentType, &e.Brand, &e.ModelNumber, &e.ModelName, &e.CapacityBTU, &e.CapacityTons,
			&e.SeerRating, &e.Seer2Rating, &e.HspfRating, &e.Hspf2Rating, &e.EerRating, &e.AfueRating, &e.VariableSpeed,
			&e.Stages, &e.RefrigerantType, &e.SoundLevelDB, &e.EnergyStar, &e.EquipmentCost, &e.Confidence, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (d *DatabaseClient) ListFaqs(ctx context.Context, bidID uuid.UUID) ([]models.BidFaq, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, bid_id, question, answer, category, display_order, created_at
		FROM bid_faqs
		WHERE bid_id = $1
		ORDER BY display_order ASC
	`, bidID)
	if err != nil {
		return nil, fmt.Errorf("failed to list faqs: %w", err)
	}
	defer rows.Close()

	items := []models.BidFaq{}
	for rows.Next() {
		var f models.BidFaq
		if err := rows.Scan(&f.ID, &f.BidID, &f.Question, &f.Answer, &f.Category, &f.DisplayOrder, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan faq: %w", err)
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

func (d *DatabaseClient) ListQuestions(ctx context.Context, bidID uuid.UUID) ([]models.BidQuestion, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, bid_id, question_text, question_category, priority, context, triggered_by,
			good_answer_looks_like, concerning_answer_looks_like, is_answered, answer_text, display_order, created_at
		FROM bid_questions
		WHERE bid_id = $1
		ORDER BY display_order ASC
	`, bidID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	items := []models.BidQuestion{}
	for rows.Next() {
		var q models.BidQuestion
		if err := rows.Scan(
			&q.ID, &q.BidID, &q.QuestionText, &q.QuestionCategory, &q.Priority, &q.Context, &q.TriggeredBy,
			&q.GoodAnswerLooksLike, &q.ConcerningAnswerLooksLike, &q.IsAnswered, &q.AnswerText, &q.DisplayOrder, &q.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		items = append(items, q)
	}
	return items, rows.Err()
}

// GetBidScore returns nil, nil when the bid has not been scored yet.
func (d *DatabaseClient) GetBidScore(ctx context.Context, bidID uuid.UUID) (*models.BidScore, error) {
	var s models.BidScore
	err := d.db.QueryRowContext(ctx, `
		SELECT id, bid_id, overall_score, price_score, efficiency_score, warranty_score, reputation_score,
			timeline_score, calculated_at
		FROM bid_scores
		WHERE bid_id = $1
	`, bidID).Scan(
		&s.ID, &s.BidID, &s.OverallScore, &s.PriceScore, &s.EfficiencyScore, &s.WarrantyScore, &s.ReputationScore,
		&s.TimelineScore, &s.CalculatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bid score: %w", err)
	}
	return &s, nil
}
