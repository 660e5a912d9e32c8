package ops

import (
	"database/sql"
	"sort"

	"github.com/gmelani/medtrack/internal/errors"
	"github.com/gmelani/medtrack/internal/record"
)

// VisitInput contains the user-editable fields of a visit.
type VisitInput struct {
	SpecialistID int64   `json:"specialistId"`
	Date         string  `json:"date"`
	Notes        string  `json:"notes"`
	Cost         float64 `json:"cost"`
}

// VisitOutput contains the stored visit after an add or update.
type VisitOutput struct {
	Visit record.Visit `json:"visit"`
}

// validate rejects the input before any mutation happens.
func (in VisitInput) validate(snap *record.Snapshot) error {
	if in.SpecialistID == 0 {
		return errors.NewInvalidRequest("specialist is required")
	}
	if err := requireSpecialist(snap, in.SpecialistID); err != nil {
		return err
	}
	if err := requireDate("date", in.Date); err != nil {
		return err
	}
	if in.Cost < 0 {
		return errors.NewInvalidRequest("cost must not be negative")
	}
	return nil
}

// AddVisit creates a visit and persists the snapshot.
func AddVisit(db *sql.DB, gen record.IDGenerator, input VisitInput) (*VisitOutput, error) {
	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}
	if err := input.validate(snap); err != nil {
		return nil, err
	}

	v := record.Visit{
		ID:           gen.NextID(),
		SpecialistID: input.SpecialistID,
		Date:         input.Date,
		Notes:        input.Notes,
		Cost:         input.Cost,
	}
	snap.Visits = append(snap.Visits, v)

	if err := saveSnapshot(db, snap); err != nil {
		return nil, err
	}
	return &VisitOutput{Visit: v}, nil
}

// UpdateVisit replaces all editable fields of an existing visit.
func UpdateVisit(db *sql.DB, id int64, input VisitInput) (*VisitOutput, error) {
	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}
	if err := input.validate(snap); err != nil {
		return nil, err
	}

	for i := range snap.Visits {
		if snap.Visits[i].ID != id {
			continue
		}
		snap.Visits[i] = record.Visit{
			ID:           id,
			SpecialistID: input.SpecialistID,
			Date:         input.Date,
			Notes:        input.Notes,
			Cost:         input.Cost,
		}
		if err := saveSnapshot(db, snap); err != nil {
			return nil, err
		}
		return &VisitOutput{Visit: snap.Visits[i]}, nil
	}

	return nil, errors.NewNotFound("visit", id)
}

// DeleteVisit removes a visit by id.
func DeleteVisit(db *sql.DB, id int64) (*DeleteOutput, error) {
	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}

	for i := range snap.Visits {
		if snap.Visits[i].ID != id {
			continue
		}
		snap.Visits = append(snap.Visits[:i], snap.Visits[i+1:]...)
		if err := saveSnapshot(db, snap); err != nil {
			return nil, err
		}
		return &DeleteOutput{Deleted: true, ID: id}, nil
	}

	return nil, errors.NewNotFound("visit", id)
}

// ListVisitsInput contains optional date-range bounds (inclusive).
type ListVisitsInput struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// VisitItem is a visit joined with its specialist's display name.
type VisitItem struct {
	record.Visit
	Specialist string `json:"specialist"`
}

// ListVisitsOutput contains visits sorted by date, newest first.
type ListVisitsOutput struct {
	Items []VisitItem `json:"items"`
	Total int         `json:"total"`
}

// ListVisits returns visits in the optional date range, newest first.
func ListVisits(db *sql.DB, input ListVisitsInput) (*ListVisitsOutput, error) {
	for _, bound := range []string{input.From, input.To} {
		if bound != "" && !record.ValidDate(bound) {
			return nil, errors.NewInvalidRequest("date bounds must be ISO dates (YYYY-MM-DD)")
		}
	}

	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}

	items := []VisitItem{}
	for _, v := range snap.Visits {
		if !inDateRange(v.Date, input.From, input.To) {
			continue
		}
		items = append(items, VisitItem{Visit: v, Specialist: snap.SpecialistName(&v.SpecialistID)})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Date > items[j].Date })

	return &ListVisitsOutput{Items: items, Total: len(items)}, nil
}
