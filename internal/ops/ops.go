package ops

import (
	"database/sql"

	"github.com/gmelani/medtrack/internal/errors"
	"github.com/gmelani/medtrack/internal/record"
	"github.com/gmelani/medtrack/internal/store"
)

// DeleteOutput is the shared result shape for delete operations.
type DeleteOutput struct {
	Deleted bool  `json:"deleted"`
	ID      int64 `json:"id"`
}

// loadSnapshot wraps store loading with the ops error type.
func loadSnapshot(db *sql.DB) (*record.Snapshot, error) {
	snap, err := store.Load(db)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return snap, nil
}

// saveSnapshot wraps store saving with the ops error type.
func saveSnapshot(db *sql.DB, snap *record.Snapshot) error {
	if err := store.Save(db, snap); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// requireSpecialist validates that a specialist id references an
// existing record.
func requireSpecialist(snap *record.Snapshot, id int64) error {
	if snap.FindSpecialist(id) == nil {
		return errors.NewInvalidRequest("specialist does not exist")
	}
	return nil
}

// requireDate validates a required ISO date field.
func requireDate(field, value string) error {
	if value == "" {
		return errors.NewInvalidRequest(field + " is required")
	}
	if !record.ValidDate(value) {
		return errors.NewInvalidRequest(field + " must be an ISO date (YYYY-MM-DD)")
	}
	return nil
}

// inDateRange reports whether date falls within the optional
// inclusive [from, to] bounds. ISO dates compare lexically.
func inDateRange(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}
