package phase

import (
	"time"

	"bidsmart-backend/internal/models"
)

type AnalysisStatus string

const (
	AnalysisProcessing AnalysisStatus = "processing"
	AnalysisPartial    AnalysisStatus = "partial"
	AnalysisComplete   AnalysisStatus = "complete"
	AnalysisFailed     AnalysisStatus = "failed"
	AnalysisTimeout    AnalysisStatus = "timeout"
)

// AnalysisTimeoutAfter is how long a project may sit in analyzing before the
// client is told to stop waiting.
const AnalysisTimeoutAfter = 10 * time.Minute

// DeriveAnalysisStatus summarises extraction progress for display. It only
// reads its inputs.
func DeriveAnalysisStatus(p models.Project, bids []models.ContractorBid, now time.Time) AnalysisStatus {
	switch p.Status {
	case models.ProjectComparing, models.ProjectCompleted:
		return AnalysisComplete
	case models.ProjectCancelled:
		return AnalysisFailed
	}

	withScope := 0
	for i := range bids {
		if bids[i].HasScopeData() {
			withScope++
		}
	}
	if withScope > 0 && withScope < len(bids) {
		return AnalysisPartial
	}

	if p.Status == models.ProjectAnalyzing && p.AnalysisQueuedAt != nil && now.Sub(*p.AnalysisQueuedAt) > AnalysisTimeoutAfter {
		return AnalysisTimeout
	}
	return AnalysisProcessing
}
