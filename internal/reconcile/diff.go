package reconcile

import (
	"github.com/gmelani/medtrack/internal/record"
)

// FoundCounts are raw pre-dedup record counts seen in the file, used
// purely for the "found N in file" summary. They are not "will be
// added" counts.
type FoundCounts struct {
	Visits      int `json:"visits"`
	Exams       int `json:"exams"`
	Specialists int `json:"specialists"`
}

// Preview is the proposed delta an import would apply. It is shown to
// the user for approval and consumed exactly once on confirm.
type Preview struct {
	NewVisits      []record.Visit      `json:"newVisits"`
	NewExams       []record.Exam       `json:"newExams"`
	NewSpecialists []record.Specialist `json:"newSpecialists"`
	TotalFound     FoundCounts         `json:"totalFound"`
}

// Empty reports whether committing the preview would change nothing.
func (p *Preview) Empty() bool {
	return len(p.NewVisits) == 0 && len(p.NewExams) == 0 && len(p.NewSpecialists) == 0
}

// Diff partitions the remapped raw records into duplicates (dropped)
// and new records (kept). Duplicate rules depend on the batch format:
// structured ids are compared directly, tabular records are compared
// by content. Accepted records always get a fresh id — even structured
// imports, whose file ids could collide with local ones.
func Diff(batch *RawBatch, idMap map[int64]int64, staged []record.Specialist, snap *record.Snapshot, gen record.IDGenerator) *Preview {
	preview := &Preview{
		NewVisits:      []record.Visit{},
		NewExams:       []record.Exam{},
		NewSpecialists: staged,
		TotalFound: FoundCounts{
			Visits:      len(batch.Visits),
			Exams:       len(batch.Exams),
			Specialists: len(batch.Specialists),
		},
	}
	if preview.NewSpecialists == nil {
		preview.NewSpecialists = []record.Specialist{}
	}
	structured := batch.Format == FormatStructured

	for _, v := range batch.Visits {
		// Visit.specialistId is non-nullable: an unmapped reference
		// falls back to the first specialist in the existing collection.
		mapped, ok := idMap[v.SpecialistID]
		if !ok {
			mapped = fallbackSpecialistID(snap)
		}

		if visitExists(snap.Visits, v, mapped, structured) {
			continue
		}

		v.ID = gen.NextID()
		v.SpecialistID = mapped
		preview.NewVisits = append(preview.NewVisits, v)
	}

	for _, e := range batch.Exams {
		var mapped *int64
		if e.SpecialistID != nil {
			if m, ok := idMap[*e.SpecialistID]; ok {
				mapped = &m
			}
		}

		if examExists(snap.Exams, e, structured) {
			continue
		}

		e.ID = gen.NextID()
		e.SpecialistID = mapped
		preview.NewExams = append(preview.NewExams, e)
	}

	return preview
}

// visitExists applies the format-dependent duplicate rule for visits:
// structured compares ids, tabular compares date + specialist + notes.
func visitExists(existing []record.Visit, v record.Visit, mappedSpecID int64, structured bool) bool {
	for _, ev := range existing {
		if structured {
			if ev.ID == v.ID {
				return true
			}
		} else if ev.Date == v.Date && ev.SpecialistID == mappedSpecID && ev.Notes == v.Notes {
			return true
		}
	}
	return false
}

// examExists applies the format-dependent duplicate rule for exams:
// structured compares ids, tabular compares date + name.
func examExists(existing []record.Exam, e record.Exam, structured bool) bool {
	for _, ee := range existing {
		if structured {
			if ee.ID == e.ID {
				return true
			}
		} else if ee.Date == e.Date && ee.Name == e.Name {
			return true
		}
	}
	return false
}

// fallbackSpecialistID returns the first existing specialist's id, or
// 1 when the collection is empty.
func fallbackSpecialistID(snap *record.Snapshot) int64 {
	if len(snap.Specialists) > 0 {
		return snap.Specialists[0].ID
	}
	return 1
}
