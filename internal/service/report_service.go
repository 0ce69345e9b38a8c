package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/plenary-api/internal/models"
	"github.com/noah-isme/plenary-api/pkg/export"
)

// ReportService builds monitoring summaries and tabular exports from the
// projected state. Reports are rendered synchronously on request.
type ReportService struct {
	state *StateService
	csv   *export.CSVExporter
	pdf   *export.PDFExporter
}

func NewReportService(state *StateService, csv *export.CSVExporter, pdf *export.PDFExporter) *ReportService {
	return &ReportService{state: state, csv: csv, pdf: pdf}
}

// Monitoring aggregates proposal outcomes overall and per axis.
func (s *ReportService) Monitoring(ctx context.Context) *models.MonitoringReport {
	state := s.state.Current()
	report := &models.MonitoringReport{Total: len(state.Proposals)}

	byAxis := map[string]*models.AxisStats{}
	var axes []string
	for _, p := range state.Proposals {
		axis := strings.TrimSpace(p.Axis)
		stats, ok := byAxis[axis]
		if !ok {
			stats = &models.AxisStats{Axis: axis}
			byAxis[axis] = stats
			axes = append(axes, axis)
		}
		stats.Total++

		if p.Status != models.ProposalVoted || p.Result == nil {
			report.Pending++
			continue
		}
		switch *p.Result {
		case models.ResultApproved:
			report.Approved++
			stats.Approved++
		case models.ResultRejected:
			report.Rejected++
			stats.Rejected++
		}
		if p.Promoted {
			report.Promoted++
			stats.Promoted++
		}
	}

	sort.Strings(axes)
	for _, axis := range axes {
		report.ByAxis = append(report.ByAxis, *byAxis[axis])
	}
	return report
}

// ProposalsDataset lays out every proposal with its outcome, sorted by axis
// then title.
func (s *ReportService) ProposalsDataset(ctx context.Context) export.Dataset {
	state := s.state.Current()
	proposals := make([]models.Proposal, len(state.Proposals))
	copy(proposals, state.Proposals)
	sort.SliceStable(proposals, func(i, j int) bool {
		ai, aj := strings.ToLower(proposals[i].Axis), strings.ToLower(proposals[j].Axis)
		if ai != aj {
			return ai < aj
		}
		return strings.ToLower(proposals[i].Title) < strings.ToLower(proposals[j].Title)
	})

	report := s.Monitoring(ctx)
	data := export.Dataset{
		Headers: []string{"Axis", "Title", "Scope", "Region", "Municipality", "Status", "Result", "Yes", "No", "Abstain", "Total", "Duration (s)", "Label"},
		Summary: []string{
			fmt.Sprintf("Proposals: %d", report.Total),
			fmt.Sprintf("Approved: %d  Rejected: %d  Pending: %d  Promoted to final: %d",
				report.Approved, report.Rejected, report.Pending, report.Promoted),
		},
	}
	for _, p := range proposals {
		result := ""
		if p.Result != nil {
			result = string(*p.Result)
		}
		data.Rows = append(data.Rows, map[string]string{
			"Axis":         p.Axis,
			"Title":        p.Title,
			"Scope":        p.Scope,
			"Region":       p.Region,
			"Municipality": p.Municipality,
			"Status":       string(p.Status),
			"Result":       result,
			"Yes":          strconv.Itoa(p.YesVotes),
			"No":           strconv.Itoa(p.NoVotes),
			"Abstain":      strconv.Itoa(p.AbstainVotes),
			"Total":        strconv.Itoa(p.TotalVotes),
			"Duration (s)": strconv.Itoa(p.DurationSeconds),
			"Label":        p.ClassificationLabel,
		})
	}
	return data
}

// VotesDataset lays out every ballot with the proposal it belongs to.
func (s *ReportService) VotesDataset(ctx context.Context) export.Dataset {
	state := s.state.Current()
	votes := make([]models.Vote, len(state.Votes))
	copy(votes, state.Votes)
	sort.SliceStable(votes, func(i, j int) bool {
		return votes[i].RecordedAt.Before(votes[j].RecordedAt)
	})

	data := export.Dataset{
		Headers: []string{"Recorded At", "Voter", "Proposal", "Choice", "Device"},
		Summary: []string{fmt.Sprintf("Ballots: %d", len(votes))},
	}
	for _, v := range votes {
		title := v.ProposalID
		if p := state.FindProposal(v.ProposalID); p != nil {
			title = p.Title
		} else if state.ActivePointer != nil && state.ActivePointer.ProposalID == v.ProposalID {
			title = state.ActivePointer.Title
		}
		data.Rows = append(data.Rows, map[string]string{
			"Recorded At": v.RecordedAt.Format("2006-01-02 15:04:05"),
			"Voter":       v.VoterID,
			"Proposal":    title,
			"Choice":      string(v.Choice),
			"Device":      v.DeviceToken,
		})
	}
	return data
}

// RenderCSV encodes a dataset as CSV bytes.
func (s *ReportService) RenderCSV(data export.Dataset) ([]byte, error) {
	return s.csv.Render(data)
}

// RenderPDF encodes a dataset as a PDF document.
func (s *ReportService) RenderPDF(data export.Dataset, title string) ([]byte, error) {
	return s.pdf.Render(data, title)
}
