package models

import (
	"encoding/json"
	"time"
)

// StoredRecord is one raw row of the event log as persisted. Payload holds
// the full serialised record including its envelope; DecodeRecord is the
// only trusted path from Payload to a typed Record.
type StoredRecord struct {
	ID         string          `db:"id"`
	Kind       RecordKind      `db:"kind"`
	Payload    json.RawMessage `db:"payload"`
	RecordedAt time.Time       `db:"recorded_at"`
}
