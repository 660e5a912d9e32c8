package ops

import (
	"database/sql"

	"github.com/gmelani/medtrack/internal/errors"
	"github.com/gmelani/medtrack/internal/record"
)

// SpecialistInput contains the user-editable fields of a specialist.
type SpecialistInput struct {
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Interval int    `json:"interval"`
}

// SpecialistOutput contains the stored specialist after an add or update.
type SpecialistOutput struct {
	Specialist record.Specialist `json:"specialist"`
}

func (in SpecialistInput) validate() error {
	if in.Name == "" {
		return errors.NewInvalidRequest("name is required")
	}
	if in.Icon == "" {
		return errors.NewInvalidRequest("icon is required")
	}
	if in.Interval <= 0 {
		return errors.NewInvalidRequest("interval must be a positive number of months")
	}
	return nil
}

// AddSpecialist creates a specialist and persists the snapshot.
func AddSpecialist(db *sql.DB, gen record.IDGenerator, input SpecialistInput) (*SpecialistOutput, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}

	s := record.Specialist{
		ID:       gen.NextID(),
		Name:     input.Name,
		Icon:     input.Icon,
		Interval: input.Interval,
	}
	snap.Specialists = append(snap.Specialists, s)

	if err := saveSnapshot(db, snap); err != nil {
		return nil, err
	}
	return &SpecialistOutput{Specialist: s}, nil
}

// UpdateSpecialist replaces all editable fields of an existing specialist.
func UpdateSpecialist(db *sql.DB, id int64, input SpecialistInput) (*SpecialistOutput, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}

	for i := range snap.Specialists {
		if snap.Specialists[i].ID != id {
			continue
		}
		snap.Specialists[i] = record.Specialist{
			ID:       id,
			Name:     input.Name,
			Icon:     input.Icon,
			Interval: input.Interval,
		}
		if err := saveSnapshot(db, snap); err != nil {
			return nil, err
		}
		return &SpecialistOutput{Specialist: snap.Specialists[i]}, nil
	}

	return nil, errors.NewNotFound("specialist", id)
}

// DeleteSpecialist removes a specialist by id. A specialist referenced
// by any visit or exam cannot be deleted; the collection is left
// unchanged.
func DeleteSpecialist(db *sql.DB, id int64) (*DeleteOutput, error) {
	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}

	sp := snap.FindSpecialist(id)
	if sp == nil {
		return nil, errors.NewNotFound("specialist", id)
	}
	if snap.SpecialistReferenced(id) {
		return nil, errors.NewSpecialistInUse(sp.Name)
	}

	for i := range snap.Specialists {
		if snap.Specialists[i].ID != id {
			continue
		}
		snap.Specialists = append(snap.Specialists[:i], snap.Specialists[i+1:]...)
		break
	}

	if err := saveSnapshot(db, snap); err != nil {
		return nil, err
	}
	return &DeleteOutput{Deleted: true, ID: id}, nil
}

// ListSpecialistsOutput contains all specialists in stored order.
type ListSpecialistsOutput struct {
	Items []record.Specialist `json:"items"`
	Total int                 `json:"total"`
}

// ListSpecialists returns the specialist collection.
func ListSpecialists(db *sql.DB) (*ListSpecialistsOutput, error) {
	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}
	items := snap.Specialists
	if items == nil {
		items = []record.Specialist{}
	}
	return &ListSpecialistsOutput{Items: items, Total: len(items)}, nil
}
