package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/plenary-api/internal/models"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
)

type fetcherStub struct {
	rows [][]string
	err  error
}

func (f *fetcherStub) FetchRows(ctx context.Context, sheetURL, sheetName string) ([][]string, error) {
	return f.rows, f.err
}

func importConfig() models.ProposalImportConfig {
	return models.ProposalImportConfig{
		Meta:      models.Meta{ID: "ic1", Kind: models.KindProposalImportConfig, RecordedAt: projBase},
		SheetURL:  "https://docs.google.com/spreadsheets/d/abc123/edit",
		SheetName: "Proposals",
		Columns: models.ImportColumns{
			Title:       "A",
			Axis:        "B",
			Scope:       "C",
			Description: "D",
		},
	}
}

func TestImportRunRegistersRows(t *testing.T) {
	store := &voteStoreStub{}
	fetcher := &fetcherStub{rows: [][]string{
		{"Water access", "Health", "Regional", "Expand coverage"},
		{"School meals", "Education", "Municipal", "Free lunches"},
	}}
	svc := NewImportService(store, newStateServiceWith(t, importConfig()), fetcher, nil)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Fetched)
	assert.Equal(t, 2, summary.Imported)
	assert.Zero(t, summary.Skipped)

	require.Len(t, store.appended, 2)
	first := store.appended[0].(*models.Proposal)
	assert.Equal(t, "Water access", first.Title)
	assert.Equal(t, "Health", first.Axis)
	assert.Equal(t, "Regional", first.Scope)
	assert.Equal(t, "Expand coverage", first.Description)
	assert.Equal(t, models.ProposalPending, first.Status)

	second := store.appended[1].(*models.Proposal)
	assert.True(t, second.RecordedAt.After(first.RecordedAt), "sheet order survives the chronological sort")
}

func TestImportRunRecordsSurviveProjection(t *testing.T) {
	store := &voteStoreStub{}
	// The config maps no region or municipality column; rows with those
	// fields blank must still round-trip the decode gate and show up in
	// the projected proposal list, not get quarantined.
	fetcher := &fetcherStub{rows: [][]string{{"Water access", "Health", "", ""}}}
	svc := NewImportService(store, newStateServiceWith(t, importConfig()), fetcher, nil)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	require.Len(t, store.appended, 1)

	raw, err := models.EncodeRecord(store.appended[0])
	require.NoError(t, err)
	decoded, err := models.DecodeRecord(raw)
	require.NoError(t, err)
	proposal, ok := decoded.(models.Proposal)
	require.True(t, ok)
	assert.Empty(t, proposal.Region)
	assert.Empty(t, proposal.Municipality)

	projected := newStateServiceWith(t, importConfig(), proposal).Current()
	require.Len(t, projected.Proposals, 1)
	assert.Equal(t, "Water access", projected.Proposals[0].Title)
}

func TestImportRunSkipsDuplicatesAndBlanks(t *testing.T) {
	existing := proposalAt("p1", "Water access", "Health", projBase)
	store := &voteStoreStub{}
	fetcher := &fetcherStub{rows: [][]string{
		{"Water access", "health"}, // already registered, case-insensitive
		{"", "Health"},             // blank title
		{"New idea", "Health"},
		{"New idea", "Health"}, // duplicate within the sheet
	}}
	svc := NewImportService(store, newStateServiceWith(t, importConfig(), existing), fetcher, nil)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Fetched)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 3, summary.Skipped)
	require.Len(t, store.appended, 1)
}

func TestImportRunRequiresConfig(t *testing.T) {
	svc := NewImportService(&voteStoreStub{}, newStateServiceWith(t), &fetcherStub{}, nil)

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestImportRunPropagatesFetchError(t *testing.T) {
	fetcher := &fetcherStub{err: appErrors.New("SHEET_FETCH_FAILED", 502, "boom")}
	svc := NewImportService(&voteStoreStub{}, newStateServiceWith(t, importConfig()), fetcher, nil)

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, "SHEET_FETCH_FAILED", appErrors.FromError(err).Code)
}

func TestImportRunRerunIsIdempotent(t *testing.T) {
	store := &voteStoreStub{}
	fetcher := &fetcherStub{rows: [][]string{{"Water access", "Health"}}}
	state := newStateServiceWith(t, importConfig())
	svc := NewImportService(store, state, fetcher, nil)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, store.appended, 1)

	// Re-project with the imported proposal now in state and run again.
	imported := store.appended[0].(*models.Proposal)
	state2 := newStateServiceWith(t, importConfig(), *imported)
	svc2 := NewImportService(store, state2, fetcher, nil)

	summary, err := svc2.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, store.appended, 1, "no new records on rerun")
}
