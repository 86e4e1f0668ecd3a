package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type Kind int

const (
	// Success is a complete extraction.
	Success Kind = iota
	// Partial means MindPal flagged missing sections; the bid is still stored.
	Partial
	// Failure means MindPal could not extract the PDF at all.
	Failure
	// Invalid means the body could not be decoded.
	Invalid
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Partial:
		return "partial"
	case Failure:
		return "failure"
	default:
		return "invalid"
	}
}

// ParseResult is the typed outcome of decoding one callback body. Dropped
// lists values that were present but out of range and are treated as absent.
type ParseResult struct {
	Kind    Kind
	Payload *Payload
	Errors  []string
	Dropped []string
}

// Err joins the decode errors, or returns nil.
func (r ParseResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return errors.New(strings.Join(r.Errors, "; "))
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func payloadValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

const (
	percent    = "min=0,max=100"
	nonNeg     = "min=0"
	efficiency = "min=0,max=60"
	rating     = "min=0,max=5"
)

// bounds drops out-of-range numbers one field at a time so that a single bad
// value never costs the rest of the extraction.
type bounds struct {
	dropped []string
}

func (b *bounds) check(n *Number, field, rule string) {
	if !n.Valid {
		return
	}
	if err := payloadValidator().Var(n.Value, rule); err != nil {
		b.dropped = append(b.dropped, fmt.Sprintf("%s=%v outside %s", field, n.Value, rule))
		*n = Number{}
	}
}

func (b *bounds) payload(p *Payload) {
	b.check(&p.OverallConfidence, "overall_confidence", percent)

	if c := p.ContractorInfo; c != nil {
		b.check(&c.YearsInBusiness, "contractor_info.years_in_business", nonNeg)
		b.check(&c.GoogleRating, "contractor_info.google_rating", rating)
		b.check(&c.GoogleReviewCount, "contractor_info.google_review_count", nonNeg)
	}
	if t := p.Timeline; t != nil {
		b.check(&t.EstimatedDays, "timeline.estimated_days", nonNeg)
	}
	if w := p.Warranty; w != nil {
		b.check(&w.LaborWarrantyYears, "warranty.labor_warranty_years", nonNeg)
		b.check(&w.EquipmentWarrantyYears, "warranty.equipment_warranty_years", nonNeg)
	}
	if pt := p.PaymentTerms; pt != nil {
		b.check(&pt.DepositPercentage, "payment_terms.deposit_percentage", percent)
	}
	for i := range p.Equipment {
		e := &p.Equipment[i]
		at := fmt.Sprintf("equipment[%d].", i)
		b.check(&e.CapacityBTU, at+"capacity_btu", nonNeg)
		b.check(&e.CapacityTons, at+"capacity_tons", nonNeg)
		b.check(&e.SeerRating, at+"seer_rating", efficiency)
		b.check(&e.Seer2Rating, at+"seer2_rating", efficiency)
		b.check(&e.HspfRating, at+"hspf_rating", efficiency)
		b.check(&e.Hspf2Rating, at+"hspf2_rating", efficiency)
		b.check(&e.EerRating, at+"eer_rating", efficiency)
		b.check(&e.AfueRating, at+"afue_rating", percent)
		b.check(&e.Stages, at+"stages", nonNeg)
	}
}

// Parse decodes a callback body and range-checks its numbers in one place so
// that the mapper can rely on typed, optional fields. Only a body that cannot
// be decoded is Invalid; any status other than failed or partial is Success.
func Parse(raw []byte) ParseResult {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return ParseResult{Kind: Invalid, Errors: []string{fmt.Sprintf("decode payload: %v", err)}}
	}

	p.Status = strings.ToLower(strings.TrimSpace(p.Status))

	var b bounds
	b.payload(&p)
	res := ParseResult{Kind: Success, Payload: &p, Dropped: b.dropped}

	switch p.Status {
	case "failed":
		res.Kind = Failure
	case "partial":
		res.Kind = Partial
	}
	return res
}
