package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/plenary-api/internal/models"
	"github.com/noah-isme/plenary-api/internal/service"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
	"github.com/noah-isme/plenary-api/pkg/response"
)

// ClassificationHandler wires the rule engine endpoints.
type ClassificationHandler struct {
	service *service.ClassificationService
}

// NewClassificationHandler creates a new handler.
func NewClassificationHandler(svc *service.ClassificationService) *ClassificationHandler {
	return &ClassificationHandler{service: svc}
}

// ListRules godoc
// @Summary List classification rules
// @Description Rules are evaluated in the order listed; the first match wins
// @Tags Classification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classification/rules [get]
func (h *ClassificationHandler) ListRules(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ListRules(), nil)
}

// CreateRule godoc
// @Summary Create a classification rule
// @Tags Classification
// @Accept json
// @Produce json
// @Param payload body models.ClassificationRuleRequest true "Rule payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /classification/rules [post]
func (h *ClassificationHandler) CreateRule(c *gin.Context) {
	var req models.ClassificationRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rule payload"))
		return
	}
	rule, err := h.service.CreateRule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rule)
}

// UpdateRule godoc
// @Summary Update a classification rule
// @Tags Classification
// @Accept json
// @Produce json
// @Param id path string true "Rule id"
// @Param payload body models.ClassificationRuleRequest true "Rule payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classification/rules/{id} [put]
func (h *ClassificationHandler) UpdateRule(c *gin.Context) {
	var req models.ClassificationRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rule payload"))
		return
	}
	rule, err := h.service.UpdateRule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// DeleteRule godoc
// @Summary Delete a classification rule
// @Tags Classification
// @Produce json
// @Param id path string true "Rule id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classification/rules/{id} [delete]
func (h *ClassificationHandler) DeleteRule(c *gin.Context) {
	if err := h.service.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Apply godoc
// @Summary Apply classification rules
// @Description Classifies every voted proposal by its yes percentage. Re-running is idempotent.
// @Tags Classification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classification/apply [post]
func (h *ClassificationHandler) Apply(c *gin.Context) {
	summary, err := h.service.Apply(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
