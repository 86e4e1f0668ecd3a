package mindpal_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidsmart-backend/internal/mindpal"
)

func TestClient_RetryWithBackoff(t *testing.T) {
	client := mindpal.NewClient("https://api.test.com/v1/", "test-key", "wf", mindpal.WithBackoffs(time.Millisecond, time.Millisecond))

	callCount := 0
	err := client.RetryWithBackoff(context.Background(), func() error {
		callCount++
		if callCount < 3 {
			return assert.AnError
		}
		return nil
	}, 3)

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
}

func TestClient_RetryWithBackoff_Exhausted(t *testing.T) {
	client := mindpal.NewClient("https://api.test.com/v1/", "test-key", "wf", mindpal.WithBackoffs(time.Millisecond))

	err := client.RetryWithBackoff(context.Background(), func() error {
		return assert.AnError
	}, 3)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 retries")
}

func TestStartExtraction(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/workflow/run/wf-123", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("x-api-key"))

		var body struct {
			Data mindpal.RunRequest `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "upload-1", body.Data.PdfUploadID)
		assert.Equal(t, "https://cb.example/functions/v1/mindpal-callback", body.Data.CallbackURL)

		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"workflow_run_id": "run-9", "status": "queued"})
	}))
	defer srv.Close()

	client := mindpal.NewClient(srv.URL, "secret-key", "wf-123", mindpal.WithBackoffs(time.Millisecond))
	resp, err := client.StartExtraction(context.Background(), mindpal.RunRequest{
		PdfUploadID: "upload-1",
		FileURL:     "https://storage.example/bid.pdf",
		CallbackURL: "https://cb.example/functions/v1/mindpal-callback",
	})

	require.NoError(t, err)
	assert.Equal(t, "run-9", resp.RunID())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestStartExtraction_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	client := mindpal.NewClient(srv.URL, "wrong", "wf", mindpal.WithBackoffs(time.Millisecond, time.Millisecond))
	_, err := client.StartExtraction(context.Background(), mindpal.RunRequest{PdfUploadID: "u"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStartExtraction_NotConfigured(t *testing.T) {
	client := mindpal.NewClient("https://api.test.com", "", "wf")
	_, err := client.StartExtraction(context.Background(), mindpal.RunRequest{})
	assert.ErrorIs(t, err, mindpal.ErrNotConfigured)
	assert.False(t, client.Configured())
}
