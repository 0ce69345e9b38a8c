package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/plenary-api/internal/middleware"
	"github.com/noah-isme/plenary-api/internal/models"
	"github.com/noah-isme/plenary-api/internal/service"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
	"github.com/noah-isme/plenary-api/pkg/response"
)

// VoteHandler wires HTTP endpoints to the vote service.
type VoteHandler struct {
	service *service.VoteService
}

// NewVoteHandler creates a new handler.
func NewVoteHandler(svc *service.VoteService) *VoteHandler {
	return &VoteHandler{service: svc}
}

// Cast godoc
// @Summary Cast a ballot
// @Description Casts one ballot on the active proposal for the authenticated voter
// @Tags Voting
// @Accept json
// @Produce json
// @Param payload body models.CastVoteRequest true "Ballot payload"
// @Param X-Device-Token header string false "Device pseudo-identity token, echoed back in the response"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /votes [post]
func (h *VoteHandler) Cast(c *gin.Context) {
	claimsValue, ok := c.Get(middleware.ContextSessionKey)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	claims := claimsValue.(*models.SessionClaims)

	var req models.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid ballot payload"))
		return
	}
	if req.DeviceToken == "" {
		req.DeviceToken = c.GetHeader("X-Device-Token")
	}

	res, err := h.service.Cast(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}
