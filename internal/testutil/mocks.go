package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"bidsmart-backend/internal/mindpal"
	"bidsmart-backend/internal/notify"
)

type MockScoreCalculator struct {
	mock.Mock
}

func (m *MockScoreCalculator) CalculateScores(ctx context.Context, projectID uuid.UUID) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyProjectComplete(ctx context.Context, projectID uuid.UUID) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

type MockExtractionStarter struct {
	mock.Mock
}

func (m *MockExtractionStarter) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockExtractionStarter) StartExtraction(ctx context.Context, req mindpal.RunRequest) (*mindpal.RunResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mindpal.RunResponse), args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg notify.Email) (*notify.SendResult, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notify.SendResult), args.Error(1)
}

// MemStorage keeps uploaded objects in memory.
type MemStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
	FailPut error
}

func NewMemStorage() *MemStorage {
	return &MemStorage{Objects: make(map[string][]byte)}
}

func (s *MemStorage) UploadPDF(storagePath string, data io.Reader) error {
	if s.FailPut != nil {
		return s.FailPut
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[storagePath] = buf.Bytes()
	return nil
}

func (s *MemStorage) SignedURL(storagePath string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Objects[storagePath]; !ok {
		return "", fmt.Errorf("object %s not found", storagePath)
	}
	return "https://storage.test/signed/" + storagePath + "?token=t", nil
}

func (s *MemStorage) DeleteFile(storagePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, storagePath)
	return nil
}

func (s *MemStorage) Has(storagePath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Objects[storagePath]
	return ok
}
