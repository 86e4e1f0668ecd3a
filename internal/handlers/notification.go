package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bidsmart-backend/internal/models"
	"bidsmart-backend/internal/services"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// SendCompletion godoc
// @Summary     Send the bids-ready email
// @Description Called with the service-role key once a project reaches comparing. Sends at most once per project.
// @Tags        functions
// @Accept      json
// @Produce     json
// @Param       Authorization header string true "Bearer <service role key>"
// @Param       request body models.CompletionNotificationRequest true "Project"
// @Success     200 {object} models.NotificationResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /functions/v1/send-completion-notification [post]
func (h *NotificationHandler) SendCompletion(c *gin.Context) {
	var req models.CompletionNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "project_id is required", Message: err.Error()})
		return
	}
	projectID, _ := uuid.Parse(req.ProjectID)

	resp, err := h.notifications.SendCompletion(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err, "send completion notification")
		return
	}
	c.JSON(http.StatusOK, resp)
}
