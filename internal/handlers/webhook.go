package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bidsmart-backend/internal/extraction"
	"bidsmart-backend/internal/logger"
	"bidsmart-backend/internal/models"
	"bidsmart-backend/internal/services"
	"bidsmart-backend/internal/webhook"
)

// maxCallbackBody bounds the MindPal callback body.
const maxCallbackBody = 5 << 20

type WebhookHandler struct {
	secret    string
	callbacks *services.CallbackService
	log       *logger.Logger
	now       func() time.Time
}

func NewWebhookHandler(secret string, callbacks *services.CallbackService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		secret:    secret,
		callbacks: callbacks,
		log:       log.With("handler", "WebhookHandler"),
		now:       time.Now,
	}
}

// SetClock replaces the clock used for the replay window.
func (h *WebhookHandler) SetClock(now func() time.Time) {
	h.now = now
}

// MindpalCallback godoc
// @Summary     MindPal extraction callback
// @Description Receives a signed extraction result for one PDF upload and maps it onto the bid tables.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Success     200 {object} models.CallbackResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     405 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /functions/v1/mindpal-callback [post]
func (h *WebhookHandler) MindpalCallback(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{Error: "method not allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read request body",
			Message: err.Error(),
		})
		return
	}

	var env extraction.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid JSON",
			Message: err.Error(),
		})
		return
	}

	if err := webhook.Verify(env.RequestID, env.Timestamp, env.Signature, h.secret, h.now()); err != nil {
		status := http.StatusUnauthorized
		switch {
		case errors.Is(err, webhook.ErrSecretNotConfigured):
			h.log.Error("rejecting callback, MINDPAL_CALLBACK_SECRET is not set")
			status = http.StatusInternalServerError
		case errors.Is(err, webhook.ErrMissingFields):
			status = http.StatusBadRequest
		default:
			h.log.Warn("callback signature rejected", "request_id", env.RequestID, "error", err)
		}
		c.JSON(status, models.ErrorResponse{Error: err.Error()})
		return
	}

	out, err := h.callbacks.HandleCallback(c.Request.Context(), env.RequestID, body)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, services.ErrUploadNotFound):
			status = http.StatusNotFound
		case errors.Is(err, services.ErrInvalidPayload):
			status = http.StatusBadRequest
		}
		_ = c.Error(err)
		c.JSON(status, models.ErrorResponse{Error: err.Error()})
		return
	}

	resp := models.CallbackResponse{
		Success:         true,
		Status:          out.Status,
		ProjectComplete: out.ProjectComplete,
	}
	if out.BidID != nil {
		id := out.BidID.String()
		resp.BidID = &id
	}
	c.JSON(http.StatusOK, resp)
}
