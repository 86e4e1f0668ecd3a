// Package webhook authenticates MindPal extraction callbacks.
//
// MindPal signs "<pdf upload id>:<RFC3339 timestamp>" with HMAC-SHA256 using
// the shared MINDPAL_CALLBACK_SECRET. Timestamps more than ReplayWindow away
// from the server clock, in either direction, are refused even when the
// signature is otherwise valid.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// ReplayWindow is how far a signed timestamp may be from now.
const ReplayWindow = time.Hour

var (
	ErrSecretNotConfigured = errors.New("callback secret not configured")
	ErrMissingFields       = errors.New("missing required fields: request_id, signature, timestamp")
	ErrInvalidTimestamp    = errors.New("invalid timestamp")
	ErrExpired             = errors.New("signature expired")
	ErrInvalidSignature    = errors.New("invalid signature")
)

// SignaturePayload is the string MindPal signs.
func SignaturePayload(pdfUploadID, timestamp string) string {
	return pdfUploadID + ":" + timestamp
}

// Sign returns the lowercase hex HMAC-SHA256 of payload.
func Sign(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a callback signature at time now. The secret is checked
// first so that a misconfigured deployment refuses every request.
func Verify(pdfUploadID, timestamp, signature, secret string, now time.Time) error {
	if secret == "" {
		return ErrSecretNotConfigured
	}
	if pdfUploadID == "" || timestamp == "" || signature == "" {
		return ErrMissingFields
	}

	signedAt, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return ErrInvalidTimestamp
	}
	if age := now.Sub(signedAt); age > ReplayWindow || age < -ReplayWindow {
		return ErrExpired
	}

	provided, ok := decodeSignature(signature)
	if !ok {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(SignaturePayload(pdfUploadID, timestamp)))
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}

// decodeSignature accepts hex, standard base64 and URL-safe base64.
func decodeSignature(signature string) ([]byte, bool) {
	signature = strings.TrimSpace(strings.TrimPrefix(signature, "sha256="))
	if b, err := hex.DecodeString(signature); err == nil && len(b) == sha256.Size {
		return b, true
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(signature); err == nil && len(b) == sha256.Size {
			return b, true
		}
	}
	return nil, false
}
