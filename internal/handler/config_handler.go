package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/plenary-api/internal/models"
	"github.com/noah-isme/plenary-api/internal/service"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
	"github.com/noah-isme/plenary-api/pkg/response"
)

// ConfigHandler wires the external source configuration endpoints.
type ConfigHandler struct {
	service *service.ConfigService
}

// NewConfigHandler creates a new handler.
func NewConfigHandler(svc *service.ConfigService) *ConfigHandler {
	return &ConfigHandler{service: svc}
}

// GetRoster godoc
// @Summary Get voter roster source
// @Tags Configuration
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /config/roster [get]
func (h *ConfigHandler) GetRoster(c *gin.Context) {
	cfg := h.service.RosterConfig(c.Request.Context())
	if cfg == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "roster source is not configured"))
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

// SaveRoster godoc
// @Summary Save voter roster source
// @Tags Configuration
// @Accept json
// @Produce json
// @Param payload body models.RosterConfigRequest true "Roster source payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /config/roster [put]
func (h *ConfigHandler) SaveRoster(c *gin.Context) {
	var req models.RosterConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid roster source payload"))
		return
	}
	cfg, err := h.service.SaveRosterConfig(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

// GetImport godoc
// @Summary Get proposal import source
// @Tags Configuration
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /config/proposal-import [get]
func (h *ConfigHandler) GetImport(c *gin.Context) {
	cfg := h.service.ImportConfig(c.Request.Context())
	if cfg == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "proposal import source is not configured"))
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

// SaveImport godoc
// @Summary Save proposal import source
// @Tags Configuration
// @Accept json
// @Produce json
// @Param payload body models.ImportConfigRequest true "Import source payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /config/proposal-import [put]
func (h *ConfigHandler) SaveImport(c *gin.Context) {
	var req models.ImportConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid import source payload"))
		return
	}
	cfg, err := h.service.SaveImportConfig(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}
