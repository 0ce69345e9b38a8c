package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/plenary-api/internal/models"
	appErrors "github.com/noah-isme/plenary-api/pkg/errors"
)

// Notifier is pinged after every successful mutation so subscribers can
// re-derive state. Delivery to other instances is best-effort.
type Notifier interface {
	RecordsChanged(ctx context.Context)
}

// RecordRepository persists the shared event log in a single records table.
// It exposes the append/update/delete contract of the original shared slot,
// backed by per-statement transactional semantics.
type RecordRepository struct {
	db       *sqlx.DB
	notifier Notifier
}

// NewRecordRepository constructs the repository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// SetNotifier wires the change feed. A nil notifier disables notifications.
func (r *RecordRepository) SetNotifier(n Notifier) {
	r.notifier = n
}

// LoadAll returns every stored record in stable order (recorded_at, then id
// as tie-break). Corrupt payloads are returned as-is; validation happens at
// the projection boundary.
func (r *RecordRepository) LoadAll(ctx context.Context) ([]models.StoredRecord, error) {
	const query = `SELECT id, kind, payload, recorded_at FROM records ORDER BY recorded_at ASC, id ASC`
	var records []models.StoredRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return records, nil
}

// Append inserts a new record and notifies subscribers.
func (r *RecordRepository) Append(ctx context.Context, rec models.Record) error {
	payload, err := models.EncodeRecord(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.RecordID(), err)
	}
	const query = `INSERT INTO records (id, kind, payload, recorded_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, rec.RecordID(), rec.RecordKind(), payload, rec.RecordedTime()); err != nil {
		return fmt.Errorf("append record %s: %w", rec.RecordID(), err)
	}
	r.notify(ctx)
	return nil
}

// UpdateByID replaces the payload of an existing record. A missing target
// yields a recoverable not-found error; callers log and continue.
func (r *RecordRepository) UpdateByID(ctx context.Context, rec models.Record) error {
	payload, err := models.EncodeRecord(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.RecordID(), err)
	}
	const query = `UPDATE records SET payload = $3, recorded_at = $4 WHERE id = $1 AND kind = $2`
	res, err := r.db.ExecContext(ctx, query, rec.RecordID(), rec.RecordKind(), payload, rec.RecordedTime())
	if err != nil {
		return fmt.Errorf("update record %s: %w", rec.RecordID(), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record %s: %w", rec.RecordID(), err)
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("record %s not found", rec.RecordID()))
	}
	r.notify(ctx)
	return nil
}

// DeleteByID removes one record.
func (r *RecordRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM records WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("record %s not found", id))
	}
	r.notify(ctx)
	return nil
}

// DeleteManyByIDs removes a batch of records in one statement.
func (r *RecordRepository) DeleteManyByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM records WHERE id IN (%s)`, placeholders(len(ids)))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	r.notify(ctx)
	return nil
}

// DeleteByKind removes every record of a kind. An empty kind wipes the
// whole log; that path exists only for hard resets.
func (r *RecordRepository) DeleteByKind(ctx context.Context, kind models.RecordKind) error {
	var err error
	if kind == "" {
		_, err = r.db.ExecContext(ctx, `DELETE FROM records`)
	} else {
		_, err = r.db.ExecContext(ctx, `DELETE FROM records WHERE kind = $1`, kind)
	}
	if err != nil {
		return fmt.Errorf("delete records by kind %q: %w", kind, err)
	}
	r.notify(ctx)
	return nil
}

// HasVote reports whether a ballot already exists for the voter/proposal
// pair. Checked against storage rather than the projection so the
// at-most-one-vote rule sees the writer's own appends.
func (r *RecordRepository) HasVote(ctx context.Context, voterID, proposalID string) (bool, error) {
	const query = `SELECT EXISTS (
SELECT 1 FROM records WHERE kind = $1 AND payload->>'voter_id' = $2 AND payload->>'proposal_id' = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, models.KindVote, voterID, proposalID); err != nil {
		return false, fmt.Errorf("check existing vote: %w", err)
	}
	return exists, nil
}

// VotesForProposal returns the decoded ballots of one proposal. Corrupt
// rows are skipped, not deleted.
func (r *RecordRepository) VotesForProposal(ctx context.Context, proposalID string) ([]models.Vote, error) {
	const query = `SELECT id, kind, payload, recorded_at FROM records
WHERE kind = $1 AND payload->>'proposal_id' = $2 ORDER BY recorded_at ASC, id ASC`
	var rows []models.StoredRecord
	if err := r.db.SelectContext(ctx, &rows, query, models.KindVote, proposalID); err != nil {
		return nil, fmt.Errorf("load votes for proposal %s: %w", proposalID, err)
	}
	votes := make([]models.Vote, 0, len(rows))
	for _, row := range rows {
		rec, err := models.DecodeRecord(row.Payload)
		if err != nil {
			continue
		}
		if v, ok := rec.(models.Vote); ok {
			votes = append(votes, v)
		}
	}
	return votes, nil
}

// VoteIDsForProposal returns the ids of every ballot of one proposal,
// feeding the bulk delete used by the per-proposal reset.
func (r *RecordRepository) VoteIDsForProposal(ctx context.Context, proposalID string) ([]string, error) {
	const query = `SELECT id FROM records WHERE kind = $1 AND payload->>'proposal_id' = $2`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, models.KindVote, proposalID); err != nil {
		return nil, fmt.Errorf("load vote ids for proposal %s: %w", proposalID, err)
	}
	return ids, nil
}

func (r *RecordRepository) notify(ctx context.Context) {
	if r.notifier != nil {
		r.notifier.RecordsChanged(ctx)
	}
}

func placeholders(n int) string {
	values := make([]string, n)
	for i := 1; i <= n; i++ {
		values[i-1] = fmt.Sprintf("$%d", i)
	}
	return strings.Join(values, ",")
}
