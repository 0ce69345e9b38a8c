package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/plenary-api/internal/models"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
)

func newRecordRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

type notifierSpy struct {
	calls int
}

func (n *notifierSpy) RecordsChanged(ctx context.Context) { n.calls++ }

func sampleVote(id string) models.Vote {
	return models.Vote{
		Meta:       models.Meta{ID: id, Kind: models.KindVote, RecordedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)},
		VoterID:    "Alice",
		ProposalID: "p1",
		Choice:     models.ChoiceYes,
	}
}

func TestRecordRepositoryLoadAll(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()

	repo := NewRecordRepository(db)
	payload, err := models.EncodeRecord(sampleVote("v1"))
	require.NoError(t, err)
	rows := sqlmock.NewRows([]string{"id", "kind", "payload", "recorded_at"}).
		AddRow("v1", "vote", []byte(payload), time.Now()).
		AddRow("v2", "vote", []byte(`{broken`), time.Now())
	mock.ExpectQuery("SELECT id, kind, payload, recorded_at FROM records ORDER BY recorded_at ASC, id ASC").
		WillReturnRows(rows)

	records, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "v1", records[0].ID)
	assert.Equal(t, models.RecordKind("vote"), records[0].Kind)
	// corrupt payloads pass through untouched; the projection quarantines them
	assert.Equal(t, "v2", records[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryAppendNotifies(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()

	repo := NewRecordRepository(db)
	spy := &notifierSpy{}
	repo.SetNotifier(spy)

	vote := sampleVote("v1")
	mock.ExpectExec("INSERT INTO records").
		WithArgs("v1", models.KindVote, sqlmock.AnyArg(), vote.RecordedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Append(context.Background(), vote))
	assert.Equal(t, 1, spy.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryUpdateByID(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()

	repo := NewRecordRepository(db)
	vote := sampleVote("v1")
	mock.ExpectExec("UPDATE records SET payload").
		WithArgs("v1", models.KindVote, sqlmock.AnyArg(), vote.RecordedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateByID(context.Background(), vote))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryUpdateByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()

	repo := NewRecordRepository(db)
	spy := &notifierSpy{}
	repo.SetNotifier(spy)
	mock.ExpectExec("UPDATE records SET payload").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateByID(context.Background(), sampleVote("missing"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, 0, spy.calls, "no notification for a no-op write")
}

func TestRecordRepositoryDeleteByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()

	repo := NewRecordRepository(db)
	mock.ExpectExec("DELETE FROM records WHERE id").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteByID(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRecordRepositoryDeleteManyByIDs(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()

	repo := NewRecordRepository(db)
	spy := &notifierSpy{}
	repo.SetNotifier(spy)
	mock.ExpectExec(`DELETE FROM records WHERE id IN \(\$1,\$2,\$3\)`).
		WithArgs("v1", "v2", "v3").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteManyByIDs(context.Background(), []string{"v1", "v2", "v3"}))
	assert.Equal(t, 1, spy.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryDeleteManyByIDsEmpty(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()

	repo := NewRecordRepository(db)
	spy := &notifierSpy{}
	repo.SetNotifier(spy)

	require.NoError(t, repo.DeleteManyByIDs(context.Background(), nil))
	assert.Equal(t, 0, spy.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryHasVote(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()

	repo := NewRecordRepository(db)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(models.KindVote, "Alice", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.HasVote(context.Background(), "Alice", "p1")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryVotesForProposalSkipsCorrupt(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()

	repo := NewRecordRepository(db)
	payload, err := models.EncodeRecord(sampleVote("v1"))
	require.NoError(t, err)
	rows := sqlmock.NewRows([]string{"id", "kind", "payload", "recorded_at"}).
		AddRow("v1", "vote", []byte(payload), time.Now()).
		AddRow("v2", "vote", []byte(`{"id":"v2","kind":"vote"}`), time.Now())
	mock.ExpectQuery("SELECT id, kind, payload, recorded_at FROM records").
		WithArgs(models.KindVote, "p1").
		WillReturnRows(rows)

	votes, err := repo.VotesForProposal(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, "Alice", votes[0].VoterID)
}

func TestRecordRepositoryVoteIDsForProposal(t *testing.T) {
	db, mock, cleanup := newRecordRepoMock(t)
	defer cleanup()

	repo := NewRecordRepository(db)
	mock.ExpectQuery("SELECT id FROM records").
		WithArgs(models.KindVote, "p1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("v1").AddRow("v2"))

	ids, err := repo.VoteIDsForProposal(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, ids)
}
