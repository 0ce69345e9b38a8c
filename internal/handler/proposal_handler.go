package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/plenary-api/internal/models"
	"github.com/noah-isme/plenary-api/internal/service"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
	"github.com/noah-isme/plenary-api/pkg/response"
)

// ProposalHandler wires the proposal management endpoints.
type ProposalHandler struct {
	service  *service.ProposalService
	importer *service.ImportService
}

// NewProposalHandler creates a new handler.
func NewProposalHandler(svc *service.ProposalService, importer *service.ImportService) *ProposalHandler {
	return &ProposalHandler{service: svc, importer: importer}
}

// List godoc
// @Summary List proposals
// @Description Lists registered proposals sorted by axis then title
// @Tags Proposals
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /proposals [get]
func (h *ProposalHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.List(c.Request.Context()), nil)
}

// Get godoc
// @Summary Get a proposal
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /proposals/{id} [get]
func (h *ProposalHandler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, p, nil)
}

// Create godoc
// @Summary Register a proposal
// @Tags Proposals
// @Accept json
// @Produce json
// @Param payload body models.ProposalRequest true "Proposal payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /proposals [post]
func (h *ProposalHandler) Create(c *gin.Context) {
	var req models.ProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid proposal payload"))
		return
	}
	p, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p)
}

// Update godoc
// @Summary Update a proposal
// @Description Rewrites the descriptive fields. Tally and classification are preserved.
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal id"
// @Param payload body models.ProposalRequest true "Proposal payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /proposals/{id} [put]
func (h *ProposalHandler) Update(c *gin.Context) {
	var req models.ProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid proposal payload"))
		return
	}
	p, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, p, nil)
}

// Delete godoc
// @Summary Delete a proposal
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /proposals/{id} [delete]
func (h *ProposalHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import godoc
// @Summary Import proposals
// @Description Fetches the configured spreadsheet and registers one proposal per new row
// @Tags Proposals
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /proposals/import [post]
func (h *ProposalHandler) Import(c *gin.Context) {
	summary, err := h.importer.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
