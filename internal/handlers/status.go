package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStatus godoc
// @Summary     Get extraction status
// @Description Returns the project status, the derived analysis status and per-upload progress
// @Tags        status
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.StatusResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/projects/{project_id}/status [get]
func (h *ProjectsHandler) GetStatus(c *gin.Context) {
	userID, projectID, ok := h.userProject(c)
	if !ok {
		return
	}
	status, err := h.projects.Status(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err, "get status")
		return
	}
	c.JSON(http.StatusOK, status)
}
