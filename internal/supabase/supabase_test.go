package supabase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidsmart-backend/internal/supabase"
)

func TestPDFPath(t *testing.T) {
	userID, projectID, uploadID := uuid.New(), uuid.New(), uuid.New()

	p := supabase.PDFPath(userID, projectID, uploadID, "Acme HVAC quote (final).pdf")
	assert.True(t, strings.HasPrefix(p, "users/"+userID.String()+"/projects/"+projectID.String()+"/"))
	assert.True(t, strings.HasSuffix(p, uploadID.String()+"-Acme_HVAC_quote_final_.pdf"))
}

func TestPDFPath_StripsDirectories(t *testing.T) {
	p := supabase.PDFPath(uuid.New(), uuid.New(), uuid.New(), "../../etc/passwd")
	assert.NotContains(t, p, "..")
	assert.True(t, strings.HasSuffix(p, "-passwd"))
}

func TestScoreCalculator_CancelledContext(t *testing.T) {
	calc := supabase.NewScoreCalculator("http://localhost:1", "service-key")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, calc.CalculateScores(ctx, uuid.New()), context.Canceled)
}

func TestScoreCalculator_CallsRPC(t *testing.T) {
	projectID := uuid.New()
	var gotPath, gotKey string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte("null"))
	}))
	defer srv.Close()

	err := supabase.NewScoreCalculator(srv.URL, "service-key").CalculateScores(context.Background(), projectID)

	require.NoError(t, err)
	assert.Equal(t, "/rest/v1/rpc/calculate_bid_scores", gotPath)
	assert.Equal(t, "service-key", gotKey)
	assert.Equal(t, projectID.String(), gotBody["p_project_id"])
}

func TestScoreCalculator_PostgresError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"PGRST202","message":"function not found"}`))
	}))
	defer srv.Close()

	err := supabase.NewScoreCalculator(srv.URL, "service-key").CalculateScores(context.Background(), uuid.New())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "function not found")
}
