package ops

import (
	"database/sql"
	"sort"
	"strings"

	"github.com/gmelani/medtrack/internal/errors"
	"github.com/gmelani/medtrack/internal/record"
)

// SearchInput contains the query and optional date-range bounds.
type SearchInput struct {
	Query string `json:"query"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
}

// SearchOutput contains matching visits and exams, newest first.
type SearchOutput struct {
	Visits []VisitItem `json:"visits"`
	Exams  []ExamItem  `json:"exams"`
	Total  int         `json:"total"`
}

// Search finds visits and exams whose text fields contain the query,
// case-insensitively. Visits match on notes and specialist name; exams
// on name, results, notes, and specialist name.
func Search(db *sql.DB, input SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, errors.NewInvalidRequest("query is required")
	}
	for _, bound := range []string{input.From, input.To} {
		if bound != "" && !record.ValidDate(bound) {
			return nil, errors.NewInvalidRequest("date bounds must be ISO dates (YYYY-MM-DD)")
		}
	}

	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	out := &SearchOutput{Visits: []VisitItem{}, Exams: []ExamItem{}}

	for _, v := range snap.Visits {
		if !inDateRange(v.Date, input.From, input.To) {
			continue
		}
		name := snap.SpecialistName(&v.SpecialistID)
		if containsFold(needle, v.Notes, name) {
			out.Visits = append(out.Visits, VisitItem{Visit: v, Specialist: name})
		}
	}
	for _, e := range snap.Exams {
		if !inDateRange(e.Date, input.From, input.To) {
			continue
		}
		name := snap.SpecialistName(e.SpecialistID)
		if containsFold(needle, e.Name, e.Results, e.Notes, name) {
			out.Exams = append(out.Exams, ExamItem{Exam: e, Specialist: name})
		}
	}

	sort.Slice(out.Visits, func(i, j int) bool { return out.Visits[i].Date > out.Visits[j].Date })
	sort.Slice(out.Exams, func(i, j int) bool { return out.Exams[i].Date > out.Exams[j].Date })
	out.Total = len(out.Visits) + len(out.Exams)

	return out, nil
}

// containsFold reports whether any field contains the lowercased needle.
func containsFold(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
