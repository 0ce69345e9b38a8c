package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/plenary-api/internal/models"
	"github.com/noah-isme/plenary-api/pkg/export"
)

func reportProposal(id, title, axis string, result *models.ProposalResult, promoted bool) models.Proposal {
	p := proposalAt(id, title, axis, projBase)
	if result != nil {
		p.Status = models.ProposalVoted
		p.Result = result
		p.Promoted = promoted
	}
	return p
}

func newReportService(t *testing.T, records ...models.Record) *ReportService {
	t.Helper()
	return NewReportService(newStateServiceWith(t, records...), export.NewCSVExporter(), export.NewPDFExporter())
}

func TestReportServiceMonitoring(t *testing.T) {
	approved := models.ResultApproved
	rejected := models.ResultRejected
	svc := newReportService(t,
		reportProposal("p1", "Water access", "Health", &approved, true),
		reportProposal("p2", "Clinic hours", "Health", &rejected, false),
		reportProposal("p3", "New school", "Education", nil, false),
	)

	report := svc.Monitoring(context.Background())

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Approved)
	assert.Equal(t, 1, report.Rejected)
	assert.Equal(t, 1, report.Pending)
	assert.Equal(t, 1, report.Promoted)

	require.Len(t, report.ByAxis, 2)
	assert.Equal(t, "Education", report.ByAxis[0].Axis, "axes sorted alphabetically")
	assert.Equal(t, "Health", report.ByAxis[1].Axis)
	assert.Equal(t, 2, report.ByAxis[1].Total)
	assert.Equal(t, 1, report.ByAxis[1].Approved)
	assert.Equal(t, 1, report.ByAxis[1].Promoted)
}

func TestReportServiceProposalsDatasetSorted(t *testing.T) {
	svc := newReportService(t,
		reportProposal("p1", "Water access", "health", nil, false),
		reportProposal("p2", "New school", "Education", nil, false),
		reportProposal("p3", "Clinic hours", "Health", nil, false),
	)

	data := svc.ProposalsDataset(context.Background())

	require.Len(t, data.Rows, 3)
	assert.Equal(t, "New school", data.Rows[0]["Title"])
	assert.Equal(t, "Clinic hours", data.Rows[1]["Title"], "axis sort ignores case")
	assert.Equal(t, "Water access", data.Rows[2]["Title"])
	assert.Contains(t, data.Summary[0], "Proposals: 3")
}

func TestReportServiceVotesDataset(t *testing.T) {
	svc := newReportService(t,
		reportProposal("p1", "Water access", "Health", nil, false),
		models.Vote{
			Meta:       models.Meta{ID: "v2", Kind: models.KindVote, RecordedAt: projBase.Add(2 * time.Minute)},
			VoterID:    "Bob",
			ProposalID: "p1",
			Choice:     models.ChoiceNo,
		},
		models.Vote{
			Meta:       models.Meta{ID: "v1", Kind: models.KindVote, RecordedAt: projBase.Add(time.Minute)},
			VoterID:    "Alice",
			ProposalID: "p1",
			Choice:     models.ChoiceYes,
		},
		models.Vote{
			Meta:       models.Meta{ID: "v3", Kind: models.KindVote, RecordedAt: projBase.Add(3 * time.Minute)},
			VoterID:    "Carol",
			ProposalID: "gone",
			Choice:     models.ChoiceYes,
		},
	)

	data := svc.VotesDataset(context.Background())

	require.Len(t, data.Rows, 3)
	assert.Equal(t, "Alice", data.Rows[0]["Voter"], "ballots ordered by recorded time")
	assert.Equal(t, "Water access", data.Rows[0]["Proposal"])
	assert.Equal(t, "gone", data.Rows[2]["Proposal"], "unresolvable proposal falls back to the raw id")
}

func TestReportServiceRenderCSV(t *testing.T) {
	svc := newReportService(t, reportProposal("p1", "Water access", "Health", nil, false))

	out, err := svc.RenderCSV(svc.ProposalsDataset(context.Background()))
	require.NoError(t, err)
	assert.Contains(t, string(out), "Water access")
	assert.Contains(t, string(out), "Axis")
}
