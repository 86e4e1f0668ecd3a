package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bidsmart-backend/internal/models"
	"bidsmart-backend/internal/services"
)

type BidsHandler struct {
	projects *services.ProjectService
	bids     *services.BidService
}

func NewBidsHandler(projects *services.ProjectService, bids *services.BidService) *BidsHandler {
	return &BidsHandler{projects: projects, bids: bids}
}

// ListBids godoc
// @Summary     List bids with details
// @Description Returns every bid of the project with line items, equipment, FAQs, questions and scores
// @Tags        bids
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.BidListResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/projects/{project_id}/bids [get]
func (h *BidsHandler) ListBids(c *gin.Context) {
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

	bids, err := h.bids.ProjectBids(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err, "list bids")
		return
	}
	c.JSON(http.StatusOK, models.BidListResponse{Bids: bids})
}

// UpdateBid godoc
// @Summary     Update bid flags
// @Tags        bids
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       bid_id path string true "Bid ID (UUID)"
// @Param       request body models.UpdateBidRequest true "Flags to change"
// @Success     200 {object} models.ContractorBid
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/bids/{bid_id} [patch]
func (h *BidsHandler) UpdateBid(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bidID, ok := uuidParam(c, "bid_id", "bid id")
	if !ok {
		return
	}
	var req models.UpdateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	bid, err := h.bids.UpdateBid(c.Request.Context(), userID, bidID, req)
	if err != nil {
		respondError(c, err, "update bid")
		return
	}
	c.JSON(http.StatusOK, bid)
}
