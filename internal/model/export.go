package model

import (
	"time"

	"github.com/google/uuid"
)

// ExportTask is one queued spreadsheet-replica write. Tasks are inserted
// in the same transaction as the ledger upsert and drained by the export
// worker.
type ExportTask struct {
	ID         uuid.UUID  `db:"id"`
	Category   Category   `db:"category"`
	Identity   string     `db:"identity"`
	EventDate  string     `db:"event_date"`
	Answer     Answer     `db:"answer"`
	AnsweredAt time.Time  `db:"answered_at"`
	CreatedAt  time.Time  `db:"created_at"`
	Exported   bool       `db:"exported"`
	ExportedAt *time.Time `db:"exported_at"`
}
