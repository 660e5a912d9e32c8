package ops

import (
	"database/sql"
	"sort"

	"github.com/gmelani/medtrack/internal/errors"
	"github.com/gmelani/medtrack/internal/record"
)

// ExamInput contains the user-editable fields of an exam.
type ExamInput struct {
	Name         string  `json:"name"`
	Date         string  `json:"date"`
	SpecialistID *int64  `json:"specialistId,omitempty"`
	Results      string  `json:"results"`
	Notes        string  `json:"notes"`
	Cost         float64 `json:"cost"`
}

// ExamOutput contains the stored exam after an add or update.
type ExamOutput struct {
	Exam record.Exam `json:"exam"`
}

func (in ExamInput) validate(snap *record.Snapshot) error {
	if in.Name == "" {
		return errors.NewInvalidRequest("name is required")
	}
	if err := requireDate("date", in.Date); err != nil {
		return err
	}
	// Exams may be unprescribed, but a given reference must resolve.
	if in.SpecialistID != nil {
		if err := requireSpecialist(snap, *in.SpecialistID); err != nil {
			return err
		}
	}
	if in.Cost < 0 {
		return errors.NewInvalidRequest("cost must not be negative")
	}
	return nil
}

// AddExam creates an exam and persists the snapshot.
func AddExam(db *sql.DB, gen record.IDGenerator, input ExamInput) (*ExamOutput, error) {
	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}
	if err := input.validate(snap); err != nil {
		return nil, err
	}

	e := record.Exam{
		ID:           gen.NextID(),
		Name:         input.Name,
		Date:         input.Date,
		SpecialistID: input.SpecialistID,
		Results:      input.Results,
		Notes:        input.Notes,
		Cost:         input.Cost,
	}
	snap.Exams = append(snap.Exams, e)

	if err := saveSnapshot(db, snap); err != nil {
		return nil, err
	}
	return &ExamOutput{Exam: e}, nil
}

// UpdateExam replaces all editable fields of an existing exam.
func UpdateExam(db *sql.DB, id int64, input ExamInput) (*ExamOutput, error) {
	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}
	if err := input.validate(snap); err != nil {
		return nil, err
	}

	for i := range snap.Exams {
		if snap.Exams[i].ID != id {
			continue
		}
		snap.Exams[i] = record.Exam{
			ID:           id,
			Name:         input.Name,
			Date:         input.Date,
			SpecialistID: input.SpecialistID,
			Results:      input.Results,
			Notes:        input.Notes,
			Cost:         input.Cost,
		}
		if err := saveSnapshot(db, snap); err != nil {
			return nil, err
		}
		return &ExamOutput{Exam: snap.Exams[i]}, nil
	}

	return nil, errors.NewNotFound("exam", id)
}

// DeleteExam removes an exam by id.
func DeleteExam(db *sql.DB, id int64) (*DeleteOutput, error) {
	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}

	for i := range snap.Exams {
		if snap.Exams[i].ID != id {
			continue
		}
		snap.Exams = append(snap.Exams[:i], snap.Exams[i+1:]...)
		if err := saveSnapshot(db, snap); err != nil {
			return nil, err
		}
		return &DeleteOutput{Deleted: true, ID: id}, nil
	}

	return nil, errors.NewNotFound("exam", id)
}

// ListExamsInput contains optional date-range bounds (inclusive).
type ListExamsInput struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// ExamItem is an exam joined with its specialist's display name
// ("" for unprescribed exams).
type ExamItem struct {
	record.Exam
	Specialist string `json:"specialist"`
}

// ListExamsOutput contains exams sorted by date, newest first.
type ListExamsOutput struct {
	Items []ExamItem `json:"items"`
	Total int        `json:"total"`
}

// ListExams returns exams in the optional date range, newest first.
func ListExams(db *sql.DB, input ListExamsInput) (*ListExamsOutput, error) {
	for _, bound := range []string{input.From, input.To} {
		if bound != "" && !record.ValidDate(bound) {
			return nil, errors.NewInvalidRequest("date bounds must be ISO dates (YYYY-MM-DD)")
		}
	}

	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}

	items := []ExamItem{}
	for _, e := range snap.Exams {
		if !inDateRange(e.Date, input.From, input.To) {
			continue
		}
		items = append(items, ExamItem{Exam: e, Specialist: snap.SpecialistName(e.SpecialistID)})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Date > items[j].Date })

	return &ListExamsOutput{Items: items, Total: len(items)}, nil
}
