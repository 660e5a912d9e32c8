package ops

import (
	"database/sql"
	"sort"
	"time"

	"github.com/gmelani/medtrack/internal/errors"
	"github.com/gmelani/medtrack/internal/record"
)

// ReportInput contains parameters for the Report operation.
type ReportInput struct {
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	WindowDays int    `json:"window_days,omitempty"` // 0 means the configured default
}

// Checkup is a specialist whose next periodic visit is due within the
// report window, or already overdue.
type Checkup struct {
	SpecialistID int64  `json:"specialistId"`
	Specialist   string `json:"specialist"`
	Icon         string `json:"icon"`
	LastVisit    string `json:"last_visit,omitempty"` // empty when never visited
	DueDate      string `json:"due_date"`
	Overdue      bool   `json:"overdue"`
}

// ReportOutput summarises the record history and upcoming checkups.
type ReportOutput struct {
	Visits           int       `json:"visits"`
	Exams            int       `json:"exams"`
	Specialists      int       `json:"specialists"`
	TotalCost        float64   `json:"total_cost"`
	VisitCost        float64   `json:"visit_cost"`
	ExamCost         float64   `json:"exam_cost"`
	UpcomingCheckups []Checkup `json:"upcoming_checkups"`
}

// Report computes counts, spending, and upcoming checkups over the
// optional date range. Checkup scheduling always looks at the full
// history; the range only bounds counts and costs.
func Report(db *sql.DB, windowDays int, input ReportInput) (*ReportOutput, error) {
	for _, bound := range []string{input.From, input.To} {
		if bound != "" && !record.ValidDate(bound) {
			return nil, errors.NewInvalidRequest("date bounds must be ISO dates (YYYY-MM-DD)")
		}
	}
	if input.WindowDays > 0 {
		windowDays = input.WindowDays
	}

	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}

	out := &ReportOutput{
		Specialists:      len(snap.Specialists),
		UpcomingCheckups: UpcomingCheckups(snap, windowDays, time.Now()),
	}
	for _, v := range snap.Visits {
		if !inDateRange(v.Date, input.From, input.To) {
			continue
		}
		out.Visits++
		out.VisitCost += v.Cost
	}
	for _, e := range snap.Exams {
		if !inDateRange(e.Date, input.From, input.To) {
			continue
		}
		out.Exams++
		out.ExamCost += e.Cost
	}
	out.TotalCost = out.VisitCost + out.ExamCost

	return out, nil
}

// UpcomingCheckups returns the specialists whose next checkup is
// overdue or falls within windowDays of today. The due date is the
// last visit plus the specialist's interval in months; a specialist
// with no visits is due immediately.
func UpcomingCheckups(snap *record.Snapshot, windowDays int, today time.Time) []Checkup {
	todayISO := today.Format("2006-01-02")
	horizon := today.AddDate(0, 0, windowDays).Format("2006-01-02")

	checkups := []Checkup{}
	for _, sp := range snap.Specialists {
		last := ""
		for _, v := range snap.Visits {
			if v.SpecialistID == sp.ID && v.Date > last {
				last = v.Date
			}
		}

		due := todayISO
		if last != "" {
			lastDate, err := time.Parse("2006-01-02", last)
			if err != nil {
				continue
			}
			due = lastDate.AddDate(0, sp.Interval, 0).Format("2006-01-02")
		}
		if due > horizon {
			continue
		}

		checkups = append(checkups, Checkup{
			SpecialistID: sp.ID,
			Specialist:   sp.Name,
			Icon:         sp.Icon,
			LastVisit:    last,
			DueDate:      due,
			Overdue:      due < todayISO,
		})
	}

	sort.Slice(checkups, func(i, j int) bool {
		if checkups[i].DueDate != checkups[j].DueDate {
			return checkups[i].DueDate < checkups[j].DueDate
		}
		return checkups[i].Specialist < checkups[j].Specialist
	})
	return checkups
}
