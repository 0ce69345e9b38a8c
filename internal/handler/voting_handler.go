package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/plenary-api/internal/models"
	"github.com/noah-isme/plenary-api/internal/service"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
	"github.com/noah-isme/plenary-api/pkg/response"
)

// VotingHandler wires the admin voting lifecycle endpoints.
type VotingHandler struct {
	service *service.LifecycleService
}

// NewVotingHandler creates a new handler.
func NewVotingHandler(svc *service.LifecycleService) *VotingHandler {
	return &VotingHandler{service: svc}
}

// Start godoc
// @Summary Start a voting round
// @Description Opens voting on the selected proposal
// @Tags Voting
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /voting/start [post]
func (h *VotingHandler) Start(c *gin.Context) {
	if err := h.service.Start(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": models.StatusStarted}, nil)
}

// End godoc
// @Summary End the voting round
// @Description Closes voting, tallies the ballots and records the outcome on the proposal
// @Tags Voting
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /voting/end [post]
func (h *VotingHandler) End(c *gin.Context) {
	if err := h.service.End(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": models.StatusClosed}, nil)
}

// New godoc
// @Summary Prepare a new voting round
// @Description Resets the session to not started. Past ballots and outcomes stay in the log.
// @Tags Voting
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /voting/new [post]
func (h *VotingHandler) New(c *gin.Context) {
	if err := h.service.NewVoting(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": models.StatusNotStarted}, nil)
}

// Select godoc
// @Summary Select the active proposal
// @Description Points voting at a registered proposal
// @Tags Voting
// @Accept json
// @Produce json
// @Param payload body models.SelectProposalRequest true "Selection payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /voting/select [post]
func (h *VotingHandler) Select(c *gin.Context) {
	var req models.SelectProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid selection payload"))
		return
	}
	if err := h.service.SelectProposal(c.Request.Context(), req.ProposalID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"proposal_id": req.ProposalID}, nil)
}

// ChangePhase godoc
// @Summary Change the voting phase
// @Description Switches between axis-restricted rounds and the final open plenary
// @Tags Voting
// @Accept json
// @Produce json
// @Param payload body models.ChangePhaseRequest true "Phase payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /voting/phase [post]
func (h *VotingHandler) ChangePhase(c *gin.Context) {
	var req models.ChangePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid phase payload"))
		return
	}
	if err := h.service.ChangePhase(c.Request.Context(), req.Phase); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"phase": req.Phase}, nil)
}

// ResetProposalVotes godoc
// @Summary Reset a proposal's ballots
// @Description Deletes the ballots cast for one proposal and returns it to pending
// @Tags Voting
// @Produce json
// @Param id path string true "Proposal id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /voting/proposals/{id}/reset-votes [post]
func (h *VotingHandler) ResetProposalVotes(c *gin.Context) {
	if err := h.service.ResetProposalVotes(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
