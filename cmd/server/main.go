// @title           BidSmart Backend API
// @version         1.0.0
// @description     Backend API for comparing HVAC contractor bids. Homeowners upload bid PDFs, MindPal extracts them, and the results are scored side by side.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bidsmart-backend/internal/config"
	"bidsmart-backend/internal/database"
	"bidsmart-backend/internal/handlers"
	"bidsmart-backend/internal/logger"
	"bidsmart-backend/internal/mindpal"
	"bidsmart-backend/internal/notify"
	"bidsmart-backend/internal/phase"
	"bidsmart-backend/internal/services"
	"bidsmart-backend/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rc := RouterConfig{Config: cfg, Log: log}

	var dbClient *supabase.DatabaseClient
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, migrations skipped and API routes disabled")
	} else {
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("failed to connect to database", "error", err)
		}
		dbClient = supabase.NewDatabaseClient(db)
		defer dbClient.Close()

		if err := database.NewMigrator(db, log).Run(ctx); err != nil {
			log.Fatal("migration failed", "error", err)
		}
	}

	if dbClient == nil {
		rc.Health = handlers.NewHealthHandler(nil)
	} else {
		rc.Health = handlers.NewHealthHandler(dbClient)
		wireServices(ctx, cfg, log, dbClient, &rc)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(rc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func wireServices(ctx context.Context, cfg *config.Config, log *logger.Logger, db *supabase.DatabaseClient, rc *RouterConfig) {
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatal("failed to initialize Supabase client", "error", err)
	}
	storageClient := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, cfg.SupabaseStorageBucket)
	scores := supabase.NewScoreCalculator(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
	notifier := supabase.NewFunctionsNotifier(supabaseClient)

	mindpalClient := mindpal.NewClient(cfg.MindpalAPIBaseURL, cfg.MindpalAPIKey, cfg.MindpalWorkflowID)
	if !mindpalClient.Configured() {
		log.Warn("MindPal not configured, uploads will stay in uploaded")
	}

	var sender notify.Sender
	if cfg.EmailEnabled() {
		resend, err := notify.NewResendClient(log, notify.Config{
			APIKey:    cfg.ResendAPIKey,
			FromEmail: cfg.ResendFromEmail,
		})
		if err != nil {
			log.Fatal("failed to initialize Resend client", "error", err)
		}
		sender = resend
	} else {
		log.Warn("RESEND_API_KEY not set, completion emails disabled")
	}

	var cache phase.Cache = phase.NewMemoryCache()
	if cfg.RedisAddr != "" {
		rcache, err := phase.NewRedisCache(ctx, cfg.RedisAddr, phase.DefaultTTL)
		if err != nil {
			log.Warn("redis unavailable, phase state kept in memory", "addr", cfg.RedisAddr, "error", err)
		} else {
			cache = rcache
		}
	}

	projects := services.NewProjectService(db, log)
	uploads := services.NewUploadService(db, storageClient, mindpalClient, cfg.MindpalCallbackURL, log)
	bids := services.NewBidService(db, log)
	callbacks := services.NewCallbackService(db, scores, notifier, log)
	notifications := services.NewNotificationService(db, sender, cfg.AppBaseURL, log)

	rc.Projects = handlers.NewProjectsHandler(projects)
	rc.Uploads = handlers.NewUploadHandler(projects, uploads)
	rc.Bids = handlers.NewBidsHandler(projects, bids)
	rc.Phase = handlers.NewPhaseHandler(projects, phase.NewStore(cache, log))
	rc.Admin = handlers.NewAdminHandler(uploads)
	rc.Webhook = handlers.NewWebhookHandler(cfg.MindpalCallbackSecret, callbacks, log)
	rc.Notification = handlers.NewNotificationHandler(notifications)
}
