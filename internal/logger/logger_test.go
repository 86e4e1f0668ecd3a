package logger_test

import (
	"testing"

	"bidsmart-backend/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &logger.Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestLogger_RedactsSecrets(t *testing.T) {
	log, logs := observed()

	log.Info("callback received", "pdf_upload_id", "abc", "signature", "deadbeef", "api_key", "k")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "abc", fields["pdf_upload_id"])
	assert.Equal(t, "[REDACTED]", fields["signature"])
	assert.Equal(t, "[REDACTED]", fields["api_key"])
}

func TestLogger_WithCarriesFields(t *testing.T) {
	log, logs := observed()

	log.With("service", "CallbackService", "service_role_token", "x").Warn("child insert failed")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "CallbackService", entry.ContextMap()["service"])
	assert.Equal(t, "[REDACTED]", entry.ContextMap()["service_role_token"])
}

func TestNew_Modes(t *testing.T) {
	dev, err := logger.New("development", "debug")
	require.NoError(t, err)
	assert.NotNil(t, dev.SugaredLogger)

	prod, err := logger.New("production", "warn")
	require.NoError(t, err)
	assert.NotNil(t, prod.SugaredLogger)
}
