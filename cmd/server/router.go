package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bidsmart-backend/internal/config"
	"bidsmart-backend/internal/handlers"
	"bidsmart-backend/internal/logger"
	"bidsmart-backend/internal/middleware"
	"bidsmart-backend/internal/models"
)

type RouterConfig struct {
	Config *config.Config
	Log    *logger.Logger

	Health *handlers.HealthHandler

	// The handlers below are nil when the server runs without a database.
	Projects     *handlers.ProjectsHandler
	Uploads      *handlers.UploadHandler
	Bids         *handlers.BidsHandler
	Phase        *handlers.PhaseHandler
	Admin        *handlers.AdminHandler
	Webhook      *handlers.WebhookHandler
	Notification *handlers.NotificationHandler
}

func NewRouter(rc RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(rc.Log),
		middleware.Recovery(rc.Log),
		middleware.CORS(rc.Config.AppBaseURL),
	)

	// Public
	router.GET("/health", rc.Health.Health)
	router.GET("/api/v1/client-config", handlers.ClientConfig(rc.Config))

	if rc.Projects == nil {
		router.NoRoute(databaseUnavailable)
		return router
	}

	// Edge-function routes authenticate on their own
	functions := router.Group("/functions/v1")
	functions.Any("/mindpal-callback", rc.Webhook.MindpalCallback)
	functions.POST("/send-completion-notification",
		middleware.ServiceKeyAuth(rc.Config.SupabaseServiceRoleKey),
		rc.Notification.SendCompletion)

	api := router.Group("/api/v1")

	admin := api.Group("/admin", middleware.AdminAuth(rc.Config.AdminAPIKey))
	admin.DELETE("/uploads/:upload_id", rc.Admin.DeleteUpload)

	user := api.Group("", middleware.AuthMiddleware(rc.Config))

	// Projects
	user.POST("/projects", rc.Projects.CreateProject)
	user.GET("/projects", rc.Projects.ListProjects)
	user.GET("/projects/:project_id", rc.Projects.GetProject)
	user.POST("/projects/:project_id/cancel", rc.Projects.CancelProject)
	user.POST("/projects/:project_id/select-bid", rc.Projects.SelectBid)
	user.GET("/projects/:project_id/status", rc.Projects.GetStatus)
	user.PUT("/projects/:project_id/requirements", rc.Projects.SaveRequirements)
	user.GET("/projects/:project_id/requirements", rc.Projects.GetRequirements)

	// Uploads and bids
	user.POST("/projects/:project_id/uploads", rc.Uploads.Upload)
	user.GET("/projects/:project_id/uploads", rc.Uploads.ListUploads)
	user.GET("/projects/:project_id/bids", rc.Bids.ListBids)
	user.PATCH("/bids/:bid_id", rc.Bids.UpdateBid)

	// Phase
	user.GET("/projects/:project_id/phase", rc.Phase.GetPhase)
	user.POST("/projects/:project_id/phase/:phase/complete", rc.Phase.CompletePhase)
	user.POST("/projects/:project_id/phase/:phase/navigate", rc.Phase.NavigatePhase)

	return router
}

func databaseUnavailable(c *gin.Context) {
	path := c.Request.URL.Path
	if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/functions/") {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "database not available",
			Message: "DATABASE_URL is not configured",
		})
		return
	}
	c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found"})
}
