package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bidsmart-backend/internal/models"
	"bidsmart-backend/internal/services"
)

type UploadHandler struct {
	projects *services.ProjectService
	uploads  *services.UploadService
}

func NewUploadHandler(projects *services.ProjectService, uploads *services.UploadService) *UploadHandler {
	return &UploadHandler{projects: projects, uploads: uploads}
}

// Upload godoc
// @Summary     Upload a bid PDF
// @Description Stores one contractor bid PDF and starts a MindPal extraction run.
// @Description If MindPal is not configured the upload stays in "uploaded".
// @Tags        upload
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       file formData file true "Bid PDF, at most 25 MB"
// @Success     201 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     413 {object} models.ErrorResponse
// @Router      /api/v1/projects/{project_id}/uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "project_id", "project id")
	if !ok {
		return
	}

	project, err := h.projects.Get(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err, "get project")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxPDFSize+1<<20)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no file provided",
			Message: err.Error(),
		})
		return
	}
	if fileHeader.Size > services.MaxPDFSize {
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: "file exceeds 25 MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to open file",
			Message: err.Error(),
		})
		return
	}
	defer file.Close()

	resp, err := h.uploads.Upload(c.Request.Context(), project, services.UploadInput{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		respondError(c, err, "upload bid")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListUploads godoc
// @Summary     List bid PDFs
// @Tags        upload
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.UploadListResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/projects/{project_id}/uploads [get]
func (h *UploadHandler) ListUploads(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "project_id", "project id")
	if !ok {
		return
	}
	if _, err := h.projects.Get(c.Request.Context(), userID, projectID); err != nil {
		respondError(c, err, "get project")
		return
	}

	uploads, err := h.uploads.List(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err, "list uploads")
		return
	}
	c.JSON(http.StatusOK, models.UploadListResponse{Uploads: uploads})
}
