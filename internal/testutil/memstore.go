// Package testutil holds in-memory stand-ins for the Postgres store and the
// external clients used by the services.
package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bidsmart-backend/internal/models"
	"bidsmart-backend/internal/supabase"
)

// MemStore implements services.Store on maps. Fail* fields inject errors.
type MemStore struct {
	mu sync.Mutex

	Projects     map[uuid.UUID]*models.Project
	Uploads      map[uuid.UUID]*models.PdfUpload
	Extractions  map[uuid.UUID]*models.MindpalExtraction
	Bids         map[uuid.UUID]*models.ContractorBid
	LineItems    map[uuid.UUID][]models.BidLineItem
	Equipment    map[uuid.UUID][]models.BidEquipment
	Faqs         map[uuid.UUID][]models.BidFaq
	Questions    map[uuid.UUID][]models.BidQuestion
	Scores       map[uuid.UUID]*models.BidScore
	Requirements map[uuid.UUID]*models.ProjectRequirements

	ProjectStatusHistory []models.ProjectStatus

	FailInsertBid       error
	FailInsertLineItems error
	FailListLineItems   error

	seq time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		Projects:     make(map[uuid.UUID]*models.Project),
		Uploads:      make(map[uuid.UUID]*models.PdfUpload),
		Extractions:  make(map[uuid.UUID]*models.MindpalExtraction),
		Bids:         make(map[uuid.UUID]*models.ContractorBid),
		LineItems:    make(map[uuid.UUID][]models.BidLineItem),
		Equipment:    make(map[uuid.UUID][]models.BidEquipment),
		Faqs:         make(map[uuid.UUID][]models.BidFaq),
		Questions:    make(map[uuid.UUID][]models.BidQuestion),
		Scores:       make(map[uuid.UUID]*models.BidScore),
		Requirements: make(map[uuid.UUID]*models.ProjectRequirements),
		seq:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick hands out strictly increasing timestamps so ordering is stable.
func (m *MemStore) tick() time.Time {
	m.seq = m.seq.Add(time.Second)
	return m.seq
}

func notFound(what string, id uuid.UUID) error {
	return fmt.Errorf("%w: %s %s", supabase.ErrNotFound, what, id)
}

// AddProject seeds a project and returns it.
func (m *MemStore) AddProject(userID uuid.UUID, status models.ProjectStatus) *models.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	p := &models.Project{ID: uuid.New(), UserID: userID, Name: "Test project", Status: status, CreatedAt: now, UpdatedAt: now}
	m.Projects[p.ID] = p
	return p
}

// AddUpload seeds an upload for projectID.
func (m *MemStore) AddUpload(projectID uuid.UUID, status models.UploadStatus) *models.PdfUpload {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	id := uuid.New()
	u := &models.PdfUpload{
		ID:          id,
		ProjectID:   projectID,
		FileName:    "bid.pdf",
		StoragePath: "u/p/" + id.String() + "/bid.pdf",
		FileSize:    1024,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.Uploads[u.ID] = u
	return u
}

func (m *MemStore) ExtractionsFor(uploadID uuid.UUID) []models.MindpalExtraction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.MindpalExtraction
	for _, e := range m.Extractions {
		if e.PdfUploadID == uploadID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *MemStore) BidsFor(uploadID uuid.UUID) []models.ContractorBid {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ContractorBid
	for _, b := range m.Bids {
		if b.PdfUploadID == uploadID {
			out = append(out, *b)
		}
	}
	return out
}

func (m *MemStore) Upload(id uuid.UUID) models.PdfUpload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.Uploads[id]
}

func (m *MemStore) Project(id uuid.UUID) models.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.Projects[id]
}

// Projects

func (m *MemStore) CreateProject(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	m.Projects[p.ID] = &cp
	return nil
}

func (m *MemStore) GetProject(_ context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Projects[projectID]
	if !ok || p.UserID != userID {
		return nil, notFound("project", projectID)
	}
	cp := *p
	return &cp, nil
}

func (m *MemStore) GetProjectByID(_ context.Context, projectID uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Projects[projectID]
	if !ok {
		return nil, notFound("project", projectID)
	}
	cp := *p
	return &cp, nil
}

func (m *MemStore) ListProjects(_ context.Context, userID uuid.UUID) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Project{}
	for _, p := range m.Projects {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) UpdateProjectStatus(_ context.Context, projectID uuid.UUID, status models.ProjectStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Projects[projectID]; ok {
		p.Status = status
		p.UpdatedAt = m.tick()
		m.ProjectStatusHistory = append(m.ProjectStatusHistory, status)
	}
	return nil
}

func (m *MemStore) MarkAnalysisQueued(_ context.Context, projectID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Projects[projectID]
	if !ok || (p.Status != models.ProjectDraft && p.Status != models.ProjectAnalyzing) {
		return nil
	}
	p.Status = models.ProjectAnalyzing
	p.AnalysisQueuedAt = &at
	return nil
}

func (m *MemStore) MarkNotificationSent(_ context.Context, projectID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Projects[projectID]; ok {
		p.NotificationSentAt = &at
	}
	return nil
}

func (m *MemStore) SelectBid(_ context.Context, projectID, bidID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Projects[projectID]; ok {
		id := bidID
		p.SelectedBidID = &id
		p.Status = models.ProjectCompleted
	}
	return nil
}

// Uploads

func (m *MemStore) CreateUpload(_ context.Context, u *models.PdfUpload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	m.Uploads[u.ID] = &cp
	return nil
}

func (m *MemStore) GetPdfUpload(_ context.Context, uploadID uuid.UUID) (*models.PdfUpload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Uploads[uploadID]
	if !ok {
		return nil, notFound("pdf upload", uploadID)
	}
	cp := *u
	return &cp, nil
}

func (m *MemStore) ListUploadsByProject(_ context.Context, projectID uuid.UUID) ([]models.PdfUpload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.PdfUpload{}
	for _, u := range m.Uploads {
		if u.ProjectID == projectID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) UpdateUploadStatus(_ context.Context, uploadID uuid.UUID, upd models.UploadStatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Uploads[uploadID]
	if !ok {
		return nil
	}
	u.Status = upd.Status
	if upd.MindpalStatus != "" {
		s := upd.MindpalStatus
		u.MindpalStatus = &s
	}
	u.ErrorMessage = upd.ErrorMessage
	u.UpdatedAt = m.tick()
	return nil
}

func (m *MemStore) SetMindpalRun(_ context.Context, uploadID uuid.UUID, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Uploads[uploadID]; ok {
		queued := "queued"
		u.Status = models.UploadProcessing
		u.MindpalStatus = &queued
		if runID != "" {
			u.MindpalRunID = &runID
		}
	}
	return nil
}

func (m *MemStore) DeleteUpload(_ context.Context, uploadID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Uploads[uploadID]; !ok {
		return notFound("pdf upload", uploadID)
	}
	delete(m.Uploads, uploadID)
	for id, b := range m.Bids {
		if b.PdfUploadID == uploadID {
			delete(m.Bids, id)
		}
	}
	return nil
}

// Extraction audit rows

func (m *MemStore) CreateExtraction(_ context.Context, pdfUploadID uuid.UUID, raw json.RawMessage) (*models.MindpalExtraction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	e := &models.MindpalExtraction{
		ID:          uuid.New(),
		PdfUploadID: pdfUploadID,
		RawPayload:  append(json.RawMessage(nil), raw...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.Extractions[e.ID] = e
	cp := *e
	return &cp, nil
}

func (m *MemStore) UpdateExtraction(_ context.Context, extractionID uuid.UUID, upd models.ExtractionUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Extractions[extractionID]
	if !ok {
		return notFound("extraction", extractionID)
	}
	e.ParsedSuccessfully = upd.ParsedSuccessfully
	e.ParseErrors = upd.ParseErrors
	e.OverallConfidence = upd.OverallConfidence
	e.BidID = upd.BidID
	return nil
}

// Bids

func (m *MemStore) InsertBid(_ context.Context, b *models.ContractorBid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailInsertBid != nil {
		return m.FailInsertBid
	}
	now := m.tick()
	b.CreatedAt, b.UpdatedAt = now, now
	cp := *b
	m.Bids[b.ID] = &cp
	return nil
}

func (m *MemStore) GetBid(_ context.Context, bidID uuid.UUID) (*models.ContractorBid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Bids[bidID]
	if !ok {
		return nil, notFound("bid", bidID)
	}
	cp := *b
	return &cp, nil
}

func (m *MemStore) ListBidsByProject(_ context.Context, projectID uuid.UUID) ([]models.ContractorBid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ContractorBid{}
	for _, b := range m.Bids {
		if b.ProjectID == projectID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) UpdateBidFlags(_ context.Context, bidID uuid.UUID, isFavorite, verified *bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Bids[bidID]
	if !ok {
		return nil
	}
	if isFavorite != nil {
		b.IsFavorite = *isFavorite
	}
	if verified != nil {
		b.VerifiedByUser = *verified
		if *verified {
			b.VerifiedAt = &at
		} else {
			b.VerifiedAt = nil
		}
	}
	return nil
}

func (m *MemStore) InsertLineItems(_ context.Context, items []models.BidLineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailInsertLineItems != nil {
		return m.FailInsertLineItems
	}
	for _, it := range items {
		m.LineItems[it.BidID] = append(m.LineItems[it.BidID], it)
	}
	return nil
}

func (m *MemStore) InsertEquipment(_ context.Context, items []models.BidEquipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		m.Equipment[it.BidID] = append(m.Equipment[it.BidID], it)
	}
	return nil
}

func (m *MemStore) InsertFaqs(_ context.Context, items []models.BidFaq) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		m.Faqs[it.BidID] = append(m.Faqs[it.BidID], it)
	}
	return nil
}

func (m *MemStore) InsertQuestions(_ context.Context, items []models.BidQuestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		m.Questions[it.BidID] = append(m.Questions[it.BidID], it)
	}
	return nil
}

func (m *MemStore) ListLineItems(_ context.Context, bidID uuid.UUID) ([]models.BidLineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailListLineItems != nil {
		return nil, m.FailListLineItems
	}
	return append([]models.BidLineItem{}, m.LineItems[bidID]...), nil
}

func (m *MemStore) ListEquipment(_ context.Context, bidID uuid.UUID) ([]models.BidEquipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.BidEquipment{}, m.Equipment[bidID]...), nil
}

func (m *MemStore) ListFaqs(_ context.Context, bidID uuid.UUID) ([]models.BidFaq, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.BidFaq{}, m.Faqs[bidID]...), nil
}

func (m *MemStore) ListQuestions(_ context.Context, bidID uuid.UUID) ([]models.BidQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.BidQuestion{}, m.Questions[bidID]...), nil
}

func (m *MemStore) GetBidScore(_ context.Context, bidID uuid.UUID) (*models.BidScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Scores[bidID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// Requirements

func (m *MemStore) UpsertRequirements(_ context.Context, r *models.ProjectRequirements) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	if prev, ok := m.Requirements[r.ProjectID]; ok {
		r.ID = prev.ID
		r.CreatedAt = prev.CreatedAt
		if prev.CompletedAt != nil {
			r.CompletedAt = prev.CompletedAt
		}
	} else {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	cp := *r
	m.Requirements[r.ProjectID] = &cp
	return nil
}

func (m *MemStore) GetRequirements(_ context.Context, projectID uuid.UUID) (*models.ProjectRequirements, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Requirements[projectID]
	if !ok {
		return nil, notFound("requirements for project", projectID)
	}
	cp := *r
	return &cp, nil
}

// ErrInjected is a convenience error for failure injection.
var ErrInjected = errors.New("injected failure")
