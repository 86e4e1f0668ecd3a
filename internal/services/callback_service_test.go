package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bidsmart-backend/internal/logger"
	"bidsmart-backend/internal/models"
	"bidsmart-backend/internal/services"
	"bidsmart-backend/internal/testutil"
)

type callbackFixture struct {
	store    *testutil.MemStore
	scores   *testutil.MockScoreCalculator
	notifier *testutil.MockNotifier
	svc      *services.CallbackService
	project  *models.Project
}

func newCallbackFixture(t *testing.T, status models.ProjectStatus) *callbackFixture {
	t.Helper()
	f := &callbackFixture{
		store:    testutil.NewMemStore(),
		scores:   new(testutil.MockScoreCalculator),
		notifier: new(testutil.MockNotifier),
	}
	f.scores.On("CalculateScores", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.svc = services.NewCallbackService(f.store, f.scores, f.notifier, logger.Nop())
	f.project = f.store.AddProject(uuid.New(), status)
	return f
}

func body(uploadID uuid.UUID, fields string) []byte {
	return []byte(fmt.Sprintf(`{"request_id":%q,"signature":"sig","timestamp":"2025-01-01T00:00:00Z",%s}`, uploadID, fields))
}

const acme = `"status":"extracted","overall_confidence":85,
	"contractor_info":{"company_name":"Acme HVAC"},"pricing":{"total_amount":12000}`

func TestHandleCallback_AcmeScenario(t *testing.T) {
	f := newCallbackFixture(t, models.ProjectDraft)
	upload := f.store.AddUpload(f.project.ID, models.UploadProcessing)

	out, err := f.svc.HandleCallback(context.Background(), upload.ID.String(), body(upload.ID, acme))
	require.NoError(t, err)
	assert.Equal(t, "extracted", out.Status)
	require.NotNil(t, out.BidID)
	assert.False(t, out.ProjectComplete)

	bids := f.store.BidsFor(upload.ID)
	require.Len(t, bids, 1)
	assert.Equal(t, "Acme HVAC", *bids[0].ContractorName)
	assert.Equal(t, 12000.0, *bids[0].TotalBidAmount)
	assert.Equal(t, models.ConfidenceHigh, bids[0].ExtractionConfidence)
	assert.Equal(t, *out.BidID, bids[0].ID)

	u := f.store.Upload(upload.ID)
	assert.Equal(t, models.UploadExtracted, u.Status)
	require.NotNil(t, u.MindpalStatus)
	assert.Equal(t, "extracted", *u.MindpalStatus)

	audits := f.store.ExtractionsFor(upload.ID)
	require.Len(t, audits, 1)
	assert.True(t, audits[0].ParsedSuccessfully)
	assert.Equal(t, bids[0].ID, *audits[0].BidID)

	assert.Equal(t, models.ProjectAnalyzing, f.store.Project(f.project.ID).Status)
	f.scores.AssertCalled(t, "CalculateScores", mock.Anything, f.project.ID)
	f.notifier.AssertNotCalled(t, "NotifyProjectComplete", mock.Anything, mock.Anything)
}

func TestHandleCallback_FailedPayload(t *testing.T) {
	f := newCallbackFixture(t, models.ProjectAnalyzing)
	upload := f.store.AddUpload(f.project.ID, models.UploadProcessing)

	out, err := f.svc.HandleCallback(context.Background(), upload.ID.String(),
		body(upload.ID, `"status":"failed","error":"PDF was unreadable"`))
	require.NoError(t, err)
	assert.Equal(t, "failed", out.Status)
	assert.Nil(t, out.BidID)

	assert.Empty(t, f.store.BidsFor(upload.ID))
	u := f.store.Upload(upload.ID)
	assert.Equal(t, models.UploadFailed, u.Status)
	require.NotNil(t, u.ErrorMessage)
	assert.Equal(t, "PDF was unreadable", *u.ErrorMessage)

	audits := f.store.ExtractionsFor(upload.ID)
	require.Len(t, audits, 1)
	assert.False(t, audits[0].ParsedSuccessfully)
	f.scores.AssertNotCalled(t, "CalculateScores", mock.Anything, mock.Anything)
}

func TestHandleCallback_ReviewNeeded(t *testing.T) {
	tests := []struct {
		name   string
		fields string
	}{
		{"low confidence", `"status":"extracted","overall_confidence":69`},
		{"missing confidence", `"status":"extracted"`},
		{"partial", `"status":"partial","overall_confidence":95`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCallbackFixture(t, models.ProjectAnalyzing)
			upload := f.store.AddUpload(f.project.ID, models.UploadProcessing)

			out, err := f.svc.HandleCallback(context.Background(), upload.ID.String(), body(upload.ID, tt.fields))
			require.NoError(t, err)
			assert.Equal(t, "review_needed", out.Status)
			assert.Equal(t, models.UploadReviewNeeded, f.store.Upload(upload.ID).Status)
			assert.Len(t, f.store.BidsFor(upload.ID), 1)
		})
	}
}

func TestHandleCallback_ReplayCreatesSecondBid(t *testing.T) {
	f := newCallbackFixture(t, models.ProjectAnalyzing)
	upload := f.store.AddUpload(f.project.ID, models.UploadProcessing)
	raw := body(upload.ID, acme)

	_, err := f.svc.HandleCallback(context.Background(), upload.ID.String(), raw)
	require.NoError(t, err)
	_, err = f.svc.HandleCallback(context.Background(), upload.ID.String(), raw)
	require.NoError(t, err)

	assert.Len(t, f.store.BidsFor(upload.ID), 2)
	assert.Len(t, f.store.ExtractionsFor(upload.ID), 2)
}

func TestHandleCallback_CompletesProjectOnSecondBid(t *testing.T) {
	f := newCallbackFixture(t, models.ProjectAnalyzing)
	first := f.store.AddUpload(f.project.ID, models.UploadProcessing)
	second := f.store.AddUpload(f.project.ID, models.UploadProcessing)
	f.notifier.On("NotifyProjectComplete", mock.Anything, f.project.ID).Return(nil).Once()

	out, err := f.svc.HandleCallback(context.Background(), first.ID.String(), body(first.ID, acme))
	require.NoError(t, err)
	assert.False(t, out.ProjectComplete)
	assert.Equal(t, models.ProjectAnalyzing, f.store.Project(f.project.ID).Status)

	out, err = f.svc.HandleCallback(context.Background(), second.ID.String(), body(second.ID, acme))
	require.NoError(t, err)
	assert.True(t, out.ProjectComplete)
	assert.Equal(t, models.ProjectComparing, f.store.Project(f.project.ID).Status)
	f.notifier.AssertNumberOfCalls(t, "NotifyProjectComplete", 1)
}

func TestHandleCallback_NotificationFailureIsSwallowed(t *testing.T) {
	f := newCallbackFixture(t, models.ProjectAnalyzing)
	f.store.AddUpload(f.project.ID, models.UploadExtracted)
	upload := f.store.AddUpload(f.project.ID, models.UploadProcessing)
	f.notifier.On("NotifyProjectComplete", mock.Anything, f.project.ID).Return(errors.New("edge function down"))

	out, err := f.svc.HandleCallback(context.Background(), upload.ID.String(), body(upload.ID, acme))
	require.NoError(t, err)
	assert.True(t, out.ProjectComplete)
	assert.Equal(t, models.ProjectComparing, f.store.Project(f.project.ID).Status)
}

func TestHandleCallback_ScoreFailureIsSwallowed(t *testing.T) {
	f := newCallbackFixture(t, models.ProjectAnalyzing)
	f.scores = new(testutil.MockScoreCalculator)
	f.scores.On("CalculateScores", mock.Anything, mock.Anything).Return(errors.New("rpc failed"))
	f.svc = services.NewCallbackService(f.store, f.scores, f.notifier, logger.Nop())
	upload := f.store.AddUpload(f.project.ID, models.UploadProcessing)

	out, err := f.svc.HandleCallback(context.Background(), upload.ID.String(), body(upload.ID, acme))
	require.NoError(t, err)
	assert.Equal(t, "extracted", out.Status)
}

func TestHandleCallback_FailedUploadDoesNotCountTowardsCompletion(t *testing.T) {
	f := newCallbackFixture(t, models.ProjectAnalyzing)
	f.store.AddUpload(f.project.ID, models.UploadExtracted)
	upload := f.store.AddUpload(f.project.ID, models.UploadProcessing)

	_, err := f.svc.HandleCallback(context.Background(), upload.ID.String(), body(upload.ID, `"status":"failed"`))
	require.NoError(t, err)
	assert.Equal(t, models.ProjectAnalyzing, f.store.Project(f.project.ID).Status)
	f.notifier.AssertNotCalled(t, "NotifyProjectComplete", mock.Anything, mock.Anything)
}

func TestHandleCallback_InvalidPayload(t *testing.T) {
	f := newCallbackFixture(t, models.ProjectAnalyzing)
	upload := f.store.AddUpload(f.project.ID, models.UploadProcessing)

	_, err := f.svc.HandleCallback(context.Background(), upload.ID.String(),
		body(upload.ID, `"status":"extracted","equipment":{"brand":"Carrier"}`))
	require.ErrorIs(t, err, services.ErrInvalidPayload)

	assert.Empty(t, f.store.BidsFor(upload.ID))
	assert.Equal(t, models.UploadFailed, f.store.Upload(upload.ID).Status)
	audits := f.store.ExtractionsFor(upload.ID)
	require.Len(t, audits, 1)
	require.NotNil(t, audits[0].ParseErrors)
}

func TestHandleCallback_OutOfRangeValuesKeepTheBid(t *testing.T) {
	tests := []struct {
		name   string
		fields string
		want   models.UploadStatus
	}{
		{"bad equipment row", acme + `,"equipment":[{"brand":"Carrier","seer_rating":160}]`, models.UploadExtracted},
		{"unlisted status word", `"status":"complete","overall_confidence":90,"contractor_info":{"company_name":"Acme HVAC"}`, models.UploadExtracted},
		{"confidence above 100", `"status":"extracted","overall_confidence":150,"pricing":{"total_amount":9800}`, models.UploadReviewNeeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCallbackFixture(t, models.ProjectAnalyzing)
			upload := f.store.AddUpload(f.project.ID, models.UploadProcessing)

			out, err := f.svc.HandleCallback(context.Background(), upload.ID.String(), body(upload.ID, tt.fields))
			require.NoError(t, err)
			require.NotNil(t, out.BidID)
			assert.Equal(t, string(tt.want), out.Status)
			assert.Len(t, f.store.BidsFor(upload.ID), 1)
			assert.Equal(t, tt.want, f.store.Upload(upload.ID).Status)
		})
	}
}

func TestHandleCallback_DroppedValuesAreRecorded(t *testing.T) {
	f := newCallbackFixture(t, models.ProjectAnalyzing)
	upload := f.store.AddUpload(f.project.ID, models.UploadProcessing)

	_, err := f.svc.HandleCallback(context.Background(), upload.ID.String(),
		body(upload.ID, acme+`,"equipment":[{"brand":"Carrier","seer_rating":160}]`))
	require.NoError(t, err)

	bids := f.store.BidsFor(upload.ID)
	require.Len(t, bids, 1)
	equipment := f.store.Equipment[bids[0].ID]
	require.Len(t, equipment, 1)
	assert.Nil(t, equipment[0].SeerRating)

	audits := f.store.ExtractionsFor(upload.ID)
	require.Len(t, audits, 1)
	assert.True(t, audits[0].ParsedSuccessfully)
	require.NotNil(t, audits[0].ParseErrors)
	assert.Contains(t, *audits[0].ParseErrors, "equipment[0].seer_rating")
}

func TestHandleCallback_UnknownUpload(t *testing.T) {
	f := newCallbackFixture(t, models.ProjectAnalyzing)
	missing := uuid.New()

	_, err := f.svc.HandleCallback(context.Background(), missing.String(), body(missing, acme))
	assert.ErrorIs(t, err, services.ErrUploadNotFound)

	_, err = f.svc.HandleCallback(context.Background(), "not-a-uuid", []byte(`{}`))
	assert.ErrorIs(t, err, services.ErrUploadNotFound)
	assert.Empty(t, f.store.Extractions)
}

func TestHandleCallback_BidInsertFailure(t *testing.T) {
	f := newCallbackFixture(t, models.ProjectAnalyzing)
	upload := f.store.AddUpload(f.project.ID, models.UploadProcessing)
	f.store.FailInsertBid = testutil.ErrInjected

	_, err := f.svc.HandleCallback(context.Background(), upload.ID.String(), body(upload.ID, acme))
	require.ErrorIs(t, err, services.ErrBidInsert)

	u := f.store.Upload(upload.ID)
	assert.Equal(t, models.UploadFailed, u.Status)
	assert.Equal(t, "error", *u.MindpalStatus)
	assert.Len(t, f.store.ExtractionsFor(upload.ID), 1)
}

func TestHandleCallback_ChildInsertFailureKeepsBid(t *testing.T) {
	f := newCallbackFixture(t, models.ProjectAnalyzing)
	upload := f.store.AddUpload(f.project.ID, models.UploadProcessing)
	f.store.FailInsertLineItems = testutil.ErrInjected

	out, err := f.svc.HandleCallback(context.Background(), upload.ID.String(), body(upload.ID,
		`"status":"extracted","overall_confidence":90,
		"line_items":[{"description":"Heat pump","total_price":9000}],
		"faqs":[{"question":"Permits?","answer":"Included"}]`))
	require.NoError(t, err)
	require.NotNil(t, out.BidID)
	assert.Empty(t, f.store.LineItems[*out.BidID])
	assert.Len(t, f.store.Faqs[*out.BidID], 1)
}

func TestReadyToCompare(t *testing.T) {
	up := func(s models.UploadStatus) models.PdfUpload { return models.PdfUpload{Status: s} }

	assert.False(t, services.ReadyToCompare(nil))
	assert.False(t, services.ReadyToCompare([]models.PdfUpload{up(models.UploadExtracted)}))
	assert.False(t, services.ReadyToCompare([]models.PdfUpload{up(models.UploadExtracted), up(models.UploadProcessing), up(models.UploadVerified)}))
	assert.False(t, services.ReadyToCompare([]models.PdfUpload{up(models.UploadExtracted), up(models.UploadFailed)}))
	assert.True(t, services.ReadyToCompare([]models.PdfUpload{up(models.UploadReviewNeeded), up(models.UploadVerified), up(models.UploadFailed)}))
}
