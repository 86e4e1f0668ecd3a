package config_test

import (
	"testing"

	"bidsmart-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co/")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-role")
	t.Setenv("SUPABASE_JWT_SECRET", "jwt-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("RESEND_API_KEY", "")
	t.Setenv("MINDPAL_CALLBACK_URL", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://proj.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, "bid-pdfs", cfg.SupabaseStorageBucket)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://proj.supabase.co/functions/v1/mindpal-callback", cfg.MindpalCallbackURL)
	assert.Equal(t, "https://proj.supabase.co/functions/v1", cfg.FunctionsURL())
	assert.False(t, cfg.EmailEnabled())
}

func TestLoad_ViteFallback(t *testing.T) {
	setRequired(t)
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("VITE_SUPABASE_URL", "https://vite.supabase.co")
	t.Setenv("VITE_SUPABASE_ANON_KEY", "anon")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://vite.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, "anon", cfg.SupabaseAnonKey)
}

func TestLoad_MissingServiceRoleKey(t *testing.T) {
	setRequired(t)
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_SERVICE_ROLE_KEY")
}

func TestLoad_CallbackSecretIsOptionalAtBoot(t *testing.T) {
	setRequired(t)
	t.Setenv("MINDPAL_CALLBACK_SECRET", "")
	t.Setenv("RESEND_API_KEY", "re_123")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.MindpalCallbackSecret)
	assert.True(t, cfg.EmailEnabled())
}
