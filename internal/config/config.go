package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabaseServiceRoleKey string
	SupabaseAnonKey        string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// MindPal
	MindpalAPIKey         string
	MindpalAPIBaseURL     string
	MindpalWorkflowID     string
	MindpalCallbackURL    string
	MindpalCallbackSecret string

	// Email
	ResendAPIKey    string
	ResendFromEmail string
	AppBaseURL      string

	// Database
	DatabaseURL string

	// Phase state cache
	RedisAddr string

	// Admin
	AdminAPIKey string

	// Server
	Port        string
	Environment string
	LogLevel    string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	supabaseURL := getEnv("SUPABASE_URL", getEnv("VITE_SUPABASE_URL", ""))

	cfg := &Config{
		SupabaseURL:            strings.TrimRight(supabaseURL, "/"),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseAnonKey:        getEnv("VITE_SUPABASE_ANON_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "bid-pdfs"),

		MindpalAPIKey:         getEnv("MINDPAL_API_KEY", ""),
		MindpalAPIBaseURL:     getEnv("MINDPAL_API_BASE_URL", "https://api.mindpal.space/api/v1"),
		MindpalWorkflowID:     getEnv("MINDPAL_WORKFLOW_ID", ""),
		MindpalCallbackURL:    getEnv("MINDPAL_CALLBACK_URL", ""),
		MindpalCallbackSecret: getEnv("MINDPAL_CALLBACK_SECRET", ""),

		ResendAPIKey:    getEnv("RESEND_API_KEY", ""),
		ResendFromEmail: getEnv("RESEND_FROM_EMAIL", "BidSmart <notifications@bidsmart.app>"),
		AppBaseURL:      getEnv("APP_BASE_URL", "http://localhost:5173"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	if cfg.MindpalCallbackURL == "" && cfg.SupabaseURL != "" {
		cfg.MindpalCallbackURL = cfg.SupabaseURL + "/functions/v1/mindpal-callback"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings the server cannot boot without. The MindPal
// callback secret is deliberately absent: the webhook refuses requests at
// runtime when it is unset.
func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceRoleKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	return nil
}

// EmailEnabled reports whether completion emails can be sent.
func (c *Config) EmailEnabled() bool {
	return c.ResendAPIKey != ""
}

// FunctionsURL is the base URL of the Supabase edge functions.
func (c *Config) FunctionsURL() string {
	return c.SupabaseURL + "/functions/v1"
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
