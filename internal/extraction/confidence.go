package extraction

import "bidsmart-backend/internal/models"

// ReviewThreshold is the overall confidence below which a bid needs a human look.
const ReviewThreshold = 70

// ConfidenceLevel buckets a 0–100 score. A missing score means nobody can
// vouch for the numbers, so the bid is treated as manual entry.
func ConfidenceLevel(score *float64) models.ConfidenceLevel {
	switch {
	case score == nil:
		return models.ConfidenceManual
	case *score >= 80:
		return models.ConfidenceHigh
	case *score >= 60:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// NeedsReview reports whether the extracted bid must be confirmed by the homeowner.
// A missing confidence counts as zero.
func NeedsReview(p *Payload) bool {
	if p.Status == "partial" {
		return true
	}
	return !p.OverallConfidence.Valid || p.OverallConfidence.Value < ReviewThreshold
}
