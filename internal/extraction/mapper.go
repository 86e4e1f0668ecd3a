package extraction

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"

	"bidsmart-backend/internal/models"
)

// BuildBid flattens the nested payload into a contractor_bids row.
// Absent sections leave their columns nil.
func BuildBid(p *Payload, projectID, pdfUploadID uuid.UUID) models.ContractorBid {
	bid := models.ContractorBid{
		ID:                   uuid.New(),
		ProjectID:            projectID,
		PdfUploadID:          pdfUploadID,
		OverallConfidence:    p.OverallConfidence.Ptr(),
		ExtractionConfidence: ConfidenceLevel(p.OverallConfidence.Ptr()),
		ExtractionNotes:      rawOrNil(p.ExtractionNotes),
		FieldConfidences:     rawOrNil(p.FieldConfidences),
	}

	if c := p.ContractorInfo; c != nil {
		bid.ContractorName = c.CompanyName.Ptr()
		bid.ContractorContactName = c.ContactName.Ptr()
		bid.ContractorPhone = c.Phone.Ptr()
		bid.ContractorEmail = c.Email.Ptr()
		bid.ContractorWebsite = c.Website.Ptr()
		bid.ContractorAddress = c.Address.Ptr()
		bid.LicenseNumber = c.LicenseNumber.Ptr()
		bid.LicenseState = c.LicenseState.Ptr()
		bid.InsuranceVerified = c.InsuranceVerified.Ptr()
		bid.YearsInBusiness = c.YearsInBusiness.IntPtr()
		bid.GoogleRating = c.GoogleRating.Ptr()
		bid.GoogleReviewCount = c.GoogleReviewCount.IntPtr()
		bid.Certifications = []string(c.Certifications)
	}

	if pr := p.Pricing; pr != nil {
		bid.TotalBidAmount = pr.TotalAmount.Ptr()
		bid.EquipmentCost = pr.EquipmentCost.Ptr()
		bid.LaborCost = pr.LaborCost.Ptr()
		bid.MaterialsCost = pr.MaterialsCost.Ptr()
		bid.PermitCost = pr.PermitCost.Ptr()
		bid.DiscountAmount = pr.DiscountAmount.Ptr()
		bid.PriceBeforeRebates = pr.PriceBeforeRebates.Ptr()
		bid.PriceAfterRebates = pr.PriceAfterRebates.Ptr()
	}

	if t := p.Timeline; t != nil {
		bid.EstimatedDays = t.EstimatedDays.IntPtr()
		bid.StartDateAvailable = t.StartDateAvailable.Ptr()
	}

	if w := p.Warranty; w != nil {
		bid.LaborWarrantyYears = w.LaborWarrantyYears.Ptr()
		bid.EquipmentWarrantyYears = w.EquipmentWarrantyYears.Ptr()
		bid.AdditionalWarrantyDetails = w.AdditionalWarrantyDetails.Ptr()
	}

	if pt := p.PaymentTerms; pt != nil {
		bid.DepositRequired = pt.DepositRequired.Ptr()
		bid.DepositPercentage = pt.DepositPercentage.Ptr()
		bid.PaymentSchedule = pt.PaymentSchedule.Ptr()
		bid.FinancingOffered = pt.FinancingOffered.Ptr()
		bid.FinancingTerms = pt.FinancingTerms.Ptr()
	}

	if s := p.ScopeOfWork; s != nil {
		bid.ScopeSummary = s.Summary.Ptr()
		bid.Inclusions = []string(s.Inclusions)
		bid.Exclusions = []string(s.Exclusions)
		bid.PermitsIncluded = s.PermitsIncluded.Ptr()
		bid.DisposalIncluded = s.DisposalIncluded.Ptr()
		bid.ElectricalWorkIncluded = s.ElectricalWorkIncluded.Ptr()
		bid.DuctworkIncluded = s.DuctworkIncluded.Ptr()
		bid.ThermostatIncluded = s.ThermostatIncluded.Ptr()
	}

	if d := p.Dates; d != nil {
		bid.BidDate = d.BidDate.Ptr()
		bid.ValidUntil = d.ValidUntil.Ptr()
	}

	return bid
}

// BuildLineItems skips entries without a description.
func BuildLineItems(p *Payload, bidID uuid.UUID) []models.BidLineItem {
	items := make([]models.BidLineItem, 0, len(p.LineItems))
	for _, li := range p.LineItems {
		if !li.Description.Valid {
			continue
		}
		items = append(items, models.BidLineItem{
			ID:           uuid.New(),
			BidID:        bidID,
			ItemType:     li.ItemType.Ptr(),
			Description:  li.Description.Value,
			Quantity:     li.Quantity.Ptr(),
			UnitPrice:    li.UnitPrice.Ptr(),
			TotalPrice:   li.TotalPrice.Ptr(),
			Brand:        li.Brand.Ptr(),
			ModelNumber:  li.ModelNumber.Ptr(),
			IsOptional:   li.IsOptional.Valid && li.IsOptional.Value,
			Notes:        li.Notes.Ptr(),
			DisplayOrder: len(items),
		})
	}
	return items
}

// BuildEquipment defaults a missing equipment_type to "other".
func BuildEquipment(p *Payload, bidID uuid.UUID) []models.BidEquipment {
	items := make([]models.BidEquipment, 0, len(p.Equipment))
	for _, e := range p.Equipment {
		equipmentType := "other"
		if e.EquipmentType.Valid {
			equipmentType = e.EquipmentType.Value
		}
		items = append(items, models.BidEquipment{
			ID:              uuid.New(),
			BidID:           bidID,
			EquipmentType:   equipmentType,
			Brand:           e.Brand.Ptr(),
			ModelNumber:     e.ModelNumber.Ptr(),
			ModelName:       e.ModelName.Ptr(),
			CapacityBTU:     e.CapacityBTU.IntPtr(),
			CapacityTons:    e.CapacityTons.Ptr(),
			SeerRating:      e.SeerRating.Ptr(),
			Seer2Rating:     e.Seer2Rating.Ptr(),
			HspfRating:      e.HspfRating.Ptr(),
			Hspf2Rating:     e.Hspf2Rating.Ptr(),
			EerRating:       e.EerRating.Ptr(),
			AfueRating:      e.AfueRating.Ptr(),
			VariableSpeed:   e.VariableSpeed.Ptr(),
			Stages:          e.Stages.IntPtr(),
			RefrigerantType: e.RefrigerantType.Ptr(),
			SoundLevelDB:    e.SoundLevelDB.Ptr(),
			EnergyStar:      e.EnergyStar.Ptr(),
			EquipmentCost:   e.EquipmentCost.Ptr(),
			Confidence:      e.Confidence.Ptr(),
		})
	}
	return items
}

// BuildFaqs keeps only entries with both a question and an answer.
func BuildFaqs(p *Payload, bidID uuid.UUID) []models.BidFaq {
	items := make([]models.BidFaq, 0, len(p.Faqs))
	for _, f := range p.Faqs {
		if !f.Question.Valid || !f.Answer.Valid {
			continue
		}
		items = append(items, models.BidFaq{
			ID:           uuid.New(),
			BidID:        bidID,
			Question:     f.Question.Value,
			Answer:       f.Answer.Value,
			Category:     f.Category.Ptr(),
			DisplayOrder: len(items),
		})
	}
	return items
}

func BuildQuestions(p *Payload, bidID uuid.UUID) []models.BidQuestion {
	items := make([]models.BidQuestion, 0, len(p.Questions))
	for _, q := range p.Questions {
		if !q.QuestionText.Valid {
			continue
		}
		items = append(items, models.BidQuestion{
			ID:                        uuid.New(),
			BidID:                     bidID,
			QuestionText:              q.QuestionText.Value,
			QuestionCategory:          q.QuestionCategory.Ptr(),
			Priority:                  q.Priority.Ptr(),
			Context:                   q.Context.Ptr(),
			TriggeredBy:               q.TriggeredBy.Ptr(),
			GoodAnswerLooksLike:       q.GoodAnswerLooksLike.Ptr(),
			ConcerningAnswerLooksLike: q.ConcerningAnswerLooksLike.Ptr(),
			DisplayOrder:              len(items),
		})
	}
	return items
}

func rawOrNil(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return trimmed
}
