package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/plenary-api/internal/models"
)

var projBase = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func controlAt(id string, status models.VotingStatus, at time.Time, phase *models.Phase) models.ControlEvent {
	return models.ControlEvent{
		Meta:   models.Meta{ID: id, Kind: models.KindControl, RecordedAt: at},
		Status: status,
		Phase:  phase,
	}
}

func proposalAt(id, title, axis string, at time.Time) models.Proposal {
	return models.Proposal{
		Meta:         models.Meta{ID: id, Kind: models.KindProposal, RecordedAt: at},
		Title:        title,
		Axis:         axis,
		Scope:        "Regional",
		Region:       "North",
		Municipality: "Springfield",
		Description:  "Body of " + title,
		CreatedAt:    at,
		Status:       models.ProposalPending,
	}
}

func pointerAt(id, proposalID, title string, at time.Time) models.ActiveProposal {
	return models.ActiveProposal{
		Meta:       models.Meta{ID: id, Kind: models.KindActiveProposal, RecordedAt: at},
		ProposalID: proposalID,
		Title:      title,
		Axis:       "health",
		BodyText:   "Cached body",
	}
}

func TestProjectEmptyLog(t *testing.T) {
	state := Project(nil)

	assert.Equal(t, models.StatusNotStarted, state.Status)
	assert.Equal(t, models.PhaseAxes, state.Phase)
	assert.Nil(t, state.StartedAt)
	assert.Nil(t, state.ActivePointer)
	assert.Empty(t, state.Votes)
	assert.Empty(t, state.Proposals)
}

func TestProjectLatestControlWins(t *testing.T) {
	started := projBase.Add(time.Minute)
	state := Project([]models.Record{
		controlAt("c1", models.StatusClosed, projBase, nil),
		func() models.Record {
			c := controlAt("c2", models.StatusStarted, started, nil)
			c.StartedAt = &started
			return c
		}(),
	})

	assert.Equal(t, models.StatusStarted, state.Status)
	require.NotNil(t, state.StartedAt)
	assert.Equal(t, started, *state.StartedAt)
}

func TestProjectControlTieKeepsStorageOrder(t *testing.T) {
	// Equal timestamps: the later stored record wins.
	state := Project([]models.Record{
		controlAt("c1", models.StatusStarted, projBase, nil),
		controlAt("c2", models.StatusClosed, projBase, nil),
	})

	assert.Equal(t, models.StatusClosed, state.Status)
}

func TestProjectPhaseIsSticky(t *testing.T) {
	final := models.PhaseFinal
	state := Project([]models.Record{
		controlAt("c1", models.StatusStarted, projBase, &final),
		controlAt("c2", models.StatusClosed, projBase.Add(time.Minute), nil),
	})

	// The closing record carries no phase; the earlier FINAL sticks.
	assert.Equal(t, models.PhaseFinal, state.Phase)
	assert.Equal(t, models.StatusClosed, state.Status)
}

func TestProjectResetSentinelCollapses(t *testing.T) {
	started := projBase
	final := models.PhaseFinal
	open := controlAt("c1", models.StatusStarted, projBase, &final)
	open.StartedAt = &started

	state := Project([]models.Record{
		open,
		controlAt("c2", models.StatusReset, projBase.Add(time.Hour), nil),
		controlAt("c3", models.StatusNewVotingCreated, projBase.Add(time.Hour+time.Millisecond), nil),
	})

	assert.Equal(t, models.StatusNotStarted, state.Status)
	assert.Nil(t, state.StartedAt)
	assert.Nil(t, state.EndedAt)
	// Phase survives the reset.
	assert.Equal(t, models.PhaseFinal, state.Phase)
}

func TestProjectActivePointerResolution(t *testing.T) {
	p := proposalAt("p1", "Water access", "health", projBase)
	state := Project([]models.Record{
		p,
		pointerAt("a1", "p1", "Water access", projBase.Add(time.Minute)),
	})

	require.NotNil(t, state.ActivePointer)
	require.NotNil(t, state.ActiveProposal)
	assert.Equal(t, "p1", state.ActiveProposal.ID)
}

func TestProjectActivePointerSurvivesProposalDeletion(t *testing.T) {
	state := Project([]models.Record{
		pointerAt("a1", "p-gone", "Deleted proposal", projBase),
	})

	require.NotNil(t, state.ActivePointer)
	assert.Equal(t, "Deleted proposal", state.ActivePointer.Title)
	assert.Nil(t, state.ActiveProposal)
}

func TestProjectLatestPointerWins(t *testing.T) {
	state := Project([]models.Record{
		pointerAt("a1", "p1", "First", projBase),
		pointerAt("a2", "p2", "Second", projBase.Add(time.Minute)),
	})

	require.NotNil(t, state.ActivePointer)
	assert.Equal(t, "p2", state.ActivePointer.ProposalID)
}

func TestProjectKeepsCollectionOrder(t *testing.T) {
	state := Project([]models.Record{
		proposalAt("p1", "First", "health", projBase.Add(time.Minute)),
		proposalAt("p2", "Second", "education", projBase),
	})

	require.Len(t, state.Proposals, 2)
	assert.Equal(t, "p1", state.Proposals[0].ID)
	assert.Equal(t, "p2", state.Proposals[1].ID)
}

func TestProjectLatestConfigWins(t *testing.T) {
	older := models.RosterConfig{
		Meta:      models.Meta{ID: "r1", Kind: models.KindRosterConfig, RecordedAt: projBase},
		SheetURL:  "https://docs.google.com/spreadsheets/d/old/edit",
		SheetName: "Sheet1",
		Columns:   models.RosterColumns{Name: "A", Secret: "B"},
	}
	newer := older
	newer.ID = "r2"
	newer.RecordedAt = projBase.Add(time.Minute)
	newer.SheetURL = "https://docs.google.com/spreadsheets/d/new/edit"

	state := Project([]models.Record{older, newer})

	require.NotNil(t, state.RosterConfig)
	assert.Equal(t, "r2", state.RosterConfig.ID)
}
