package webhook_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
	"time"

	"bidsmart-backend/internal/webhook"

	"github.com/stretchr/testify/assert"
)

const (
	secret   = "test-callback-secret"
	uploadID = "6f1c1b7e-1d2a-4a8e-9f3b-2a7c5d9e0b11"
)

func TestVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-5 * time.Minute).Format(time.RFC3339)
	stale := now.Add(-61 * time.Minute).Format(time.RFC3339)
	skewed := now.Add(5 * time.Minute).Format(time.RFC3339)
	future := now.Add(61 * time.Minute).Format(time.RFC3339)

	tests := []struct {
		name      string
		id        string
		timestamp string
		signature string
		secret    string
		want      error
	}{
		{"valid hex", uploadID, fresh, webhook.Sign(webhook.SignaturePayload(uploadID, fresh), secret), secret, nil},
		{"missing secret fails closed", uploadID, fresh, "abc", "", webhook.ErrSecretNotConfigured},
		{"missing id", "", fresh, "abc", secret, webhook.ErrMissingFields},
		{"missing timestamp", uploadID, "", "abc", secret, webhook.ErrMissingFields},
		{"missing signature", uploadID, fresh, "", secret, webhook.ErrMissingFields},
		{"unparseable timestamp", uploadID, "yesterday", "abc", secret, webhook.ErrInvalidTimestamp},
		{"61 minutes old", uploadID, stale, webhook.Sign(webhook.SignaturePayload(uploadID, stale), secret), secret, webhook.ErrExpired},
		{"5 minutes ahead", uploadID, skewed, webhook.Sign(webhook.SignaturePayload(uploadID, skewed), secret), secret, nil},
		{"61 minutes ahead", uploadID, future, webhook.Sign(webhook.SignaturePayload(uploadID, future), secret), secret, webhook.ErrExpired},
		{"wrong secret", uploadID, fresh, webhook.Sign(webhook.SignaturePayload(uploadID, fresh), "other"), secret, webhook.ErrInvalidSignature},
		{"signed for another upload", uploadID, fresh, webhook.Sign(webhook.SignaturePayload("other-id", fresh), secret), secret, webhook.ErrInvalidSignature},
		{"garbage signature", uploadID, fresh, "not-a-signature", secret, webhook.ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := webhook.Verify(tt.id, tt.timestamp, tt.signature, tt.secret, now)
			assert.ErrorIs(t, err, tt.want)
			if tt.want == nil {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerify_AcceptsBase64(t *testing.T) {
	now := time.Now().UTC()
	ts := now.Format(time.RFC3339)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(webhook.SignaturePayload(uploadID, ts)))
	sum := mac.Sum(nil)

	assert.NoError(t, webhook.Verify(uploadID, ts, base64.StdEncoding.EncodeToString(sum), secret, now))
	assert.NoError(t, webhook.Verify(uploadID, ts, base64.RawURLEncoding.EncodeToString(sum), secret, now))
}

func TestVerify_JustInsideWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ts := now.Add(-59 * time.Minute).Format(time.RFC3339)

	err := webhook.Verify(uploadID, ts, webhook.Sign(webhook.SignaturePayload(uploadID, ts), secret), secret, now)
	assert.NoError(t, err)
}
