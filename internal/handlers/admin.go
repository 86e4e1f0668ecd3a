package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bidsmart-backend/internal/services"
)

type AdminHandler struct {
	uploads *services.UploadService
}

func NewAdminHandler(uploads *services.UploadService) *AdminHandler {
	return &AdminHandler{uploads: uploads}
}

// DeleteUpload godoc
// @Summary     Delete an upload
// @Description Removes the stored PDF and the upload row; its bids cascade. Requires X-Admin-Key.
// @Tags        admin
// @Produce     json
// @Param       X-Admin-Key header string true "Admin API key"
// @Param       upload_id path string true "Upload ID (UUID)"
// @Success     200 {object} map[string]string
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /api/v1/admin/uploads/{upload_id} [delete]
func (h *AdminHandler) DeleteUpload(c *gin.Context) {
	uploadID, ok := uuidParam(c, "upload_id", "upload id")
	if !ok {
		return
	}
	if err := h.uploads.Delete(c.Request.Context(), uploadID); err != nil {
		respondError(c, err, "delete upload")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "upload_id": uploadID.String()})
}
