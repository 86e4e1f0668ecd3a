package supabase

import (
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

// SignedURLTTL is how long MindPal has to fetch a PDF, in seconds.
const SignedURLTTL = 60 * 60

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) *StorageClient {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	return &StorageClient{
		client:  storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// PDFPath is users/{user_id}/projects/{project_id}/{upload_id}-{file name}.
func PDFPath(userID, projectID, uploadID uuid.UUID, fileName string) string {
	name := unsafeName.ReplaceAllString(path.Base(fileName), "_")
	if name == "" || name == "." || name == "_" {
		name = "bid.pdf"
	}
	return fmt.Sprintf("users/%s/projects/%s/%s-%s", userID, projectID, uploadID, name)
}

func (s *StorageClient) UploadPDF(storagePath string, data io.Reader) error {
	contentType := "application/pdf"
	upsert := false
	_, err := s.client.UploadFile(s.bucket, storagePath, data, storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}

// SignedURL returns a time-limited download link for a private object.
func (s *StorageClient) SignedURL(storagePath string) (string, error) {
	resp, err := s.client.CreateSignedUrl(s.bucket, storagePath, SignedURLTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign url: %w", err)
	}
	if strings.HasPrefix(resp.SignedURL, "/") {
		return s.baseURL + "/storage/v1" + resp.SignedURL, nil
	}
	return resp.SignedURL, nil
}

func (s *StorageClient) DeleteFile(storagePath string) error {
	if _, err := s.client.RemoveFile(s.bucket, []string{storagePath}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
