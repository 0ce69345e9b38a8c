package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/plenary-api/internal/service"
	"github.com/noah-isme/plenary-api/pkg/export"
	"github.com/noah-isme/plenary-api/pkg/response"
)

// ReportHandler wires the monitoring and export endpoints.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Monitoring godoc
// @Summary Monitoring summary
// @Description Aggregates proposal outcomes overall and per axis
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/monitoring [get]
func (h *ReportHandler) Monitoring(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Monitoring(c.Request.Context()), nil)
}

// ProposalsCSV godoc
// @Summary Export proposals as CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {string} string "CSV document"
// @Router /reports/proposals.csv [get]
func (h *ReportHandler) ProposalsCSV(c *gin.Context) {
	h.renderCSV(c, h.service.ProposalsDataset(c.Request.Context()), "proposals")
}

// ProposalsPDF godoc
// @Summary Export proposals as PDF
// @Tags Reports
// @Produce application/pdf
// @Success 200 {string} string "PDF document"
// @Router /reports/proposals.pdf [get]
func (h *ReportHandler) ProposalsPDF(c *gin.Context) {
	h.renderPDF(c, h.service.ProposalsDataset(c.Request.Context()), "Proposals", "proposals")
}

// VotesCSV godoc
// @Summary Export ballots as CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {string} string "CSV document"
// @Router /reports/votes.csv [get]
func (h *ReportHandler) VotesCSV(c *gin.Context) {
	h.renderCSV(c, h.service.VotesDataset(c.Request.Context()), "votes")
}

// VotesPDF godoc
// @Summary Export ballots as PDF
// @Tags Reports
// @Produce application/pdf
// @Success 200 {string} string "PDF document"
// @Router /reports/votes.pdf [get]
func (h *ReportHandler) VotesPDF(c *gin.Context) {
	h.renderPDF(c, h.service.VotesDataset(c.Request.Context()), "Ballots", "votes")
}

func (h *ReportHandler) renderCSV(c *gin.Context, data export.Dataset, name string) {
	payload, err := h.service.RenderCSV(data)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.attach(c, payload, "text/csv", name+".csv")
}

func (h *ReportHandler) renderPDF(c *gin.Context, data export.Dataset, title, name string) {
	payload, err := h.service.RenderPDF(data, title)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.attach(c, payload, "application/pdf", name+".pdf")
}

func (h *ReportHandler) attach(c *gin.Context, payload []byte, mime, name string) {
	filename := fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102-150405"), name)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, mime, payload)
}
