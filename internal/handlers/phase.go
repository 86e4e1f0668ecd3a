package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bidsmart-backend/internal/phase"
	"bidsmart-backend/internal/services"
)

type PhaseHandler struct {
	projects *services.ProjectService
	store    *phase.Store
}

func NewPhaseHandler(projects *services.ProjectService, store *phase.Store) *PhaseHandler {
	return &PhaseHandler{projects: projects, store: store}
}

type phaseAction func(c *gin.Context, userID, projectID string, facts phase.FactsFunc) (phase.State, error)

func (h *PhaseHandler) run(c *gin.Context, action string, fn phaseAction) {
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

	st, err := fn(c, userID.String(), projectID.String(), h.projects.PhaseFacts(projectID))
	if err != nil {
		respondError(c, err, action)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GetPhase godoc
// @Summary     Get the phase state
// @Tags        phase
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} phase.State
// @Router      /api/v1/projects/{project_id}/phase [get]
func (h *PhaseHandler) GetPhase(c *gin.Context) {
	h.run(c, "load phase", func(c *gin.Context, userID, projectID string, facts phase.FactsFunc) (phase.State, error) {
		return h.store.Load(c.Request.Context(), userID, projectID, facts)
	})
}

// CompletePhase godoc
// @Summary     Complete a phase
// @Description Completing phase 1 unlocks phases 2, 3 and 4
// @Tags        phase
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       phase path string true "Phase number or name"
// @Success     200 {object} phase.State
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /api/v1/projects/{project_id}/phase/{phase}/complete [post]
func (h *PhaseHandler) CompletePhase(c *gin.Context) {
	h.run(c, "complete phase", func(c *gin.Context, userID, projectID string, facts phase.FactsFunc) (phase.State, error) {
		p, err := phase.Parse(c.Param("phase"))
		if err != nil {
			return phase.State{}, err
		}
		return h.store.Complete(c.Request.Context(), userID, projectID, p, facts)
	})
}

// NavigatePhase godoc
// @Summary     Move to a phase
// @Tags        phase
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       phase path string true "Phase number or name"
// @Success     200 {object} phase.State
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /api/v1/projects/{project_id}/phase/{phase}/navigate [post]
func (h *PhaseHandler) NavigatePhase(c *gin.Context) {
	h.run(c, "navigate phase", func(c *gin.Context, userID, projectID string, facts phase.FactsFunc) (phase.State, error) {
		p, err := phase.Parse(c.Param("phase"))
		if err != nil {
			return phase.State{}, err
		}
		return h.store.Navigate(c.Request.Context(), userID, projectID, p, facts)
	})
}
