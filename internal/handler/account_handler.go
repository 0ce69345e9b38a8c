package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/plenary-api/internal/models"
	"github.com/noah-isme/plenary-api/internal/service"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
	"github.com/noah-isme/plenary-api/pkg/response"
)

// AccountHandler wires the voter and admin provisioning endpoints.
type AccountHandler struct {
	service *service.AccountService
}

// NewAccountHandler creates a new handler.
func NewAccountHandler(svc *service.AccountService) *AccountHandler {
	return &AccountHandler{service: svc}
}

// ListVoters godoc
// @Summary List provisioned voters
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/voters [get]
func (h *AccountHandler) ListVoters(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ListVoters(c.Request.Context()), nil)
}

// CreateVoter godoc
// @Summary Provision a voter
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.VoterAccountRequest true "Voter payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/voters [post]
func (h *AccountHandler) CreateVoter(c *gin.Context) {
	var req models.VoterAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid voter payload"))
		return
	}
	acc, err := h.service.CreateVoter(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, acc)
}

// UpdateVoter godoc
// @Summary Update a provisioned voter
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "Account id"
// @Param payload body models.VoterAccountRequest true "Voter payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/voters/{id} [put]
func (h *AccountHandler) UpdateVoter(c *gin.Context) {
	var req models.VoterAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid voter payload"))
		return
	}
	acc, err := h.service.UpdateVoter(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, acc, nil)
}

// DeleteVoter godoc
// @Summary Delete a provisioned voter
// @Tags Users
// @Produce json
// @Param id path string true "Account id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/voters/{id} [delete]
func (h *AccountHandler) DeleteVoter(c *gin.Context) {
	if err := h.service.DeleteVoter(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListAdmins godoc
// @Summary List admin accounts
// @Description Lists provisioned administrators. Secret hashes are never returned.
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/admins [get]
func (h *AccountHandler) ListAdmins(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ListAdmins(c.Request.Context()), nil)
}

// CreateAdmin godoc
// @Summary Provision an administrator
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.AdminAccountRequest true "Admin payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/admins [post]
func (h *AccountHandler) CreateAdmin(c *gin.Context) {
	var req models.AdminAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid admin payload"))
		return
	}
	acc, err := h.service.CreateAdmin(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, acc)
}

// DeleteAdmin godoc
// @Summary Delete an admin account
// @Tags Users
// @Produce json
// @Param id path string true "Account id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/admins/{id} [delete]
func (h *AccountHandler) DeleteAdmin(c *gin.Context) {
	if err := h.service.DeleteAdmin(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
