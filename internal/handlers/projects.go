package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bidsmart-backend/internal/models"
	"bidsmart-backend/internal/services"
)

type ProjectsHandler struct {
	projects *services.ProjectService
}

func NewProjectsHandler(projects *services.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{projects: projects}
}

// CreateProject godoc
// @Summary     Create a project
// @Description Creates a draft project for comparing HVAC bids
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateProjectRequest false "Project details"
// @Success     201 {object} models.Project
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /api/v1/projects [post]
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
			return
		}
	}

	project, err := h.projects.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "create project")
		return
	}
	c.JSON(http.StatusCreated, project)
}

// ListProjects godoc
// @Summary     List projects
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ProjectListResponse
// @Router      /api/v1/projects [get]
func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projects, err := h.projects.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "list projects")
		return
	}
	c.JSON(http.StatusOK, models.ProjectListResponse{Projects: projects})
}

// userProject resolves the :project_id path parameter for the caller.
func (h *ProjectsHandler) userProject(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	projectID, ok := uuidParam(c, "project_id", "project id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, projectID, true
}

// GetProject godoc
// @Summary     Get a project
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.Project
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/projects/{project_id} [get]
func (h *ProjectsHandler) GetProject(c *gin.Context) {
	userID, projectID, ok := h.userProject(c)
	if !ok {
		return
	}
	project, err := h.projects.Get(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err, "get project")
		return
	}
	c.JSON(http.StatusOK, project)
}

// CancelProject godoc
// @Summary     Cancel a project
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.Project
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /api/v1/projects/{project_id}/cancel [post]
func (h *ProjectsHandler) CancelProject(c *gin.Context) {
	userID, projectID, ok := h.userProject(c)
	if !ok {
		return
	}
	project, err := h.projects.Cancel(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err, "cancel project")
		return
	}
	c.JSON(http.StatusOK, project)
}

// SelectBid godoc
// @Summary     Select the winning bid
// @Description Records the chosen bid and marks the project completed
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       request body models.SelectBidRequest true "Bid to select"
// @Success     200 {object} models.Project
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/projects/{project_id}/select-bid [post]
func (h *ProjectsHandler) SelectBid(c *gin.Context) {
	userID, projectID, ok := h.userProject(c)
	if !ok {
		return
	}
	var req models.SelectBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}
	bidID, _ := uuid.Parse(req.BidID)

	project, err := h.projects.SelectBid(c.Request.Context(), userID, projectID, bidID)
	if err != nil {
		respondError(c, err, "select bid")
		return
	}
	c.JSON(http.StatusOK, project)
}

// SaveRequirements godoc
// @Summary     Save homeowner priorities
// @Tags        requirements
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       request body models.RequirementsRequest true "Priorities, each weighted 1-5"
// @Success     200 {object} models.ProjectRequirements
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/v1/projects/{project_id}/requirements [put]
func (h *ProjectsHandler) SaveRequirements(c *gin.Context) {
	userID, projectID, ok := h.userProject(c)
	if !ok {
		return
	}
	var req models.RequirementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}
	reqs, err := h.projects.SaveRequirements(c.Request.Context(), userID, projectID, req)
	if err != nil {
		respondError(c, err, "save requirements")
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// GetRequirements godoc
// @Summary     Get homeowner priorities
// @Tags        requirements
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.ProjectRequirements
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/projects/{project_id}/requirements [get]
func (h *ProjectsHandler) GetRequirements(c *gin.Context) {
	userID, projectID, ok := h.userProject(c)
	if !ok {
		return
	}
	reqs, err := h.projects.Requirements(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err, "get requirements")
		return
	}
	c.JSON(http.StatusOK, reqs)
}
