package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// The event log is a single table. The payload column carries the full
// record envelope; id and kind are denormalised for indexing and bulk
// deletes.
const schema = `
CREATE TABLE IF NOT EXISTS records (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	payload     JSONB NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_kind ON records (kind, recorded_at);
CREATE INDEX IF NOT EXISTS idx_records_vote_pair ON records ((payload->>'voter_id'), (payload->>'proposal_id')) WHERE kind = 'vote';
`

// EnsureSchema creates the records table when missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
