package ops

import (
	"testing"
	"time"

	"github.com/gmelani/medtrack/internal/errors"
	"github.com/gmelani/medtrack/internal/record"
)

func TestReport_CountsAndCosts(t *testing.T) {
	db := newTestDB(t)
	gen := record.NewSequence(1000)

	if _, err := AddVisit(db, gen, VisitInput{SpecialistID: 1, Date: "2024-03-01", Cost: 90}); err != nil {
		t.Fatalf("AddVisit failed: %v", err)
	}
	if _, err := AddVisit(db, gen, VisitInput{SpecialistID: 2, Date: "2024-06-15", Cost: 80}); err != nil {
		t.Fatalf("AddVisit failed: %v", err)
	}
	if _, err := AddExam(db, gen, ExamInput{Name: "Analisi", Date: "2024-06-16", Cost: 30}); err != nil {
		t.Fatalf("AddExam failed: %v", err)
	}

	out, err := Report(db, 60, ReportInput{})
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if out.Visits != 2 || out.Exams != 1 || out.Specialists != 7 {
		t.Errorf("Unexpected counts: %+v", out)
	}
	if out.VisitCost != 170 || out.ExamCost != 30 || out.TotalCost != 200 {
		t.Errorf("Unexpected costs: %+v", out)
	}

	// Range bounds counts and costs but not checkup scheduling.
	ranged, err := Report(db, 60, ReportInput{From: "2024-06-01", To: "2024-06-30"})
	if err != nil {
		t.Fatalf("Report with range failed: %v", err)
	}
	if ranged.Visits != 1 || ranged.Exams != 1 || ranged.TotalCost != 110 {
		t.Errorf("Unexpected ranged report: %+v", ranged)
	}

	_, err = Report(db, 60, ReportInput{From: "giugno"})
	assertCode(t, err, errors.ErrInvalidRequest)
}

func TestUpcomingCheckups(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	snap := &record.Snapshot{
		Specialists: []record.Specialist{
			{ID: 1, Name: "Oculista", Icon: "👁️", Interval: 12},
			{ID: 2, Name: "Dentista", Icon: "🦷", Interval: 6},
			{ID: 3, Name: "Cardiologo", Icon: "❤️", Interval: 12},
		},
		Visits: []record.Visit{
			// Oculista: due 2024-05-10, overdue.
			{ID: 10, SpecialistID: 1, Date: "2023-05-10"},
			// Dentista: two visits, the later one counts; due 2024-07-01.
			{ID: 11, SpecialistID: 2, Date: "2023-06-01"},
			{ID: 12, SpecialistID: 2, Date: "2024-01-01"},
			// Cardiologo: due 2025-03-01, outside a 60-day window.
			{ID: 13, SpecialistID: 3, Date: "2024-03-01"},
		},
	}

	checkups := UpcomingCheckups(snap, 60, today)
	if len(checkups) != 2 {
		t.Fatalf("Expected 2 checkups, got %d: %+v", len(checkups), checkups)
	}

	// Sorted by due date: overdue Oculista first.
	if checkups[0].Specialist != "Oculista" || !checkups[0].Overdue || checkups[0].DueDate != "2024-05-10" {
		t.Errorf("Unexpected first checkup: %+v", checkups[0])
	}
	if checkups[1].Specialist != "Dentista" || checkups[1].Overdue || checkups[1].DueDate != "2024-07-01" {
		t.Errorf("Unexpected second checkup: %+v", checkups[1])
	}
	if checkups[1].LastVisit != "2024-01-01" {
		t.Errorf("Expected the most recent visit, got %s", checkups[1].LastVisit)
	}
}

func TestUpcomingCheckups_NeverVisited(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	snap := &record.Snapshot{
		Specialists: []record.Specialist{
			{ID: 1, Name: "Oculista", Icon: "👁️", Interval: 12},
		},
	}

	checkups := UpcomingCheckups(snap, 60, today)
	if len(checkups) != 1 {
		t.Fatalf("Expected 1 checkup, got %d", len(checkups))
	}
	if checkups[0].DueDate != "2024-06-15" || checkups[0].Overdue || checkups[0].LastVisit != "" {
		t.Errorf("A never-visited specialist is due today: %+v", checkups[0])
	}
}

func TestReport_WindowOverride(t *testing.T) {
	db := newTestDB(t)
	gen := record.NewSequence(1000)

	// Dentista (interval 6): due 6 months after the visit.
	if _, err := AddVisit(db, gen, VisitInput{SpecialistID: 2, Date: "2024-06-01"}); err != nil {
		t.Fatalf("AddVisit failed: %v", err)
	}

	out, err := Report(db, 60, ReportInput{WindowDays: 400})
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	found := false
	for _, c := range out.UpcomingCheckups {
		if c.Specialist == "Dentista" {
			found = true
		}
	}
	if !found {
		t.Errorf("A 400-day window must include the Dentista checkup: %+v", out.UpcomingCheckups)
	}
}
