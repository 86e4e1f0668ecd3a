package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidsmart-backend/internal/logger"
	"bidsmart-backend/internal/models"
	"bidsmart-backend/internal/notify"
)

func TestResendClient_Send(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "BidSmart <hi@example.com>", body["from"])
		assert.Equal(t, "Ready", body["subject"])

		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	client, err := notify.NewResendClient(logger.Nop(), notify.Config{
		APIKey:    "re_test",
		BaseURL:   srv.URL,
		FromEmail: "BidSmart <hi@example.com>",
		Timeout:   time.Second,
	})
	require.NoError(t, err)

	res, err := client.Send(context.Background(), notify.Email{To: []string{"a@b.com"}, Subject: "Ready", Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "email_1", res.ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestResendClient_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid to"}`))
	}))
	defer srv.Close()

	client, err := notify.NewResendClient(logger.Nop(), notify.Config{APIKey: "re_test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Send(context.Background(), notify.Email{To: []string{"bad"}, Subject: "x", Text: "y"})
	var httpErr *notify.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResendClient_Validation(t *testing.T) {
	_, err := notify.NewResendClient(logger.Nop(), notify.Config{})
	assert.Error(t, err)

	client, err := notify.NewResendClient(logger.Nop(), notify.Config{APIKey: "k"})
	require.NoError(t, err)
	_, err = client.Send(context.Background(), notify.Email{Subject: "s", Text: "t"})
	assert.Error(t, err)
}

func TestCompletionEmail(t *testing.T) {
	email := "owner@example.com"
	p := models.Project{ID: uuid.New(), Name: "Furnace <swap>", NotificationEmail: &email}

	msg := notify.CompletionEmail(p, 3, "https://app.bidsmart.test/")
	assert.Equal(t, []string{email}, msg.To)
	assert.Contains(t, msg.Subject, "3 HVAC bids")
	assert.Contains(t, msg.HTML, "Furnace &lt;swap&gt;")
	assert.Contains(t, msg.Text, "https://app.bidsmart.test/projects/"+p.ID.String())
}
