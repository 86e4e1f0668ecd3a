package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bidsmart-backend/internal/middleware"
	"bidsmart-backend/internal/models"
	"bidsmart-backend/internal/phase"
	"bidsmart-backend/internal/services"
	"bidsmart-backend/internal/supabase"
)

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}
	return userID, true
}

func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid " + label})
		return uuid.Nil, false
	}
	return id, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrBidNotFound),
		errors.Is(err, services.ErrUploadNotFound),
		errors.Is(err, supabase.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidFile),
		errors.Is(err, services.ErrInvalidPayload),
		errors.Is(err, phase.ErrUnknownPhase):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, phase.ErrPhaseLocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with a status derived from its kind. action reads
// as "failed to <action>".
func respondError(c *gin.Context, err error, action string) {
	_ = c.Error(err)
	c.JSON(statusFor(err), models.ErrorResponse{
		Error:   "failed to " + action,
		Message: err.Error(),
	})
}
