package ops

import (
	"testing"

	"github.com/gmelani/medtrack/internal/errors"
	"github.com/gmelani/medtrack/internal/record"
)

func TestSearch_MatchesAcrossFields(t *testing.T) {
	db := newTestDB(t)
	gen := record.NewSequence(1000)

	if _, err := AddVisit(db, gen, VisitInput{SpecialistID: 1, Date: "2024-03-01", Notes: "Controllo della vista"}); err != nil {
		t.Fatalf("AddVisit failed: %v", err)
	}
	if _, err := AddVisit(db, gen, VisitInput{SpecialistID: 4, Date: "2024-06-15", Notes: "Pressione alta"}); err != nil {
		t.Fatalf("AddVisit failed: %v", err)
	}
	specialistID := int64(4)
	if _, err := AddExam(db, gen, ExamInput{Name: "Elettrocardiogramma", Date: "2024-06-16", SpecialistID: &specialistID, Results: "Nella norma"}); err != nil {
		t.Fatalf("AddExam failed: %v", err)
	}

	// Case-insensitive match on visit notes.
	out, err := Search(db, SearchInput{Query: "PRESSIONE"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(out.Visits) != 1 || out.Visits[0].Notes != "Pressione alta" {
		t.Errorf("Expected the pressure visit, got %+v", out.Visits)
	}

	// Specialist name matches both the visit and the prescribed exam.
	out, err = Search(db, SearchInput{Query: "cardiologo"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(out.Visits) != 1 || len(out.Exams) != 1 || out.Total != 2 {
		t.Errorf("Expected one visit and one exam for cardiologo, got %+v", out)
	}

	// Exam results field.
	out, err = Search(db, SearchInput{Query: "norma"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(out.Exams) != 1 || len(out.Visits) != 0 {
		t.Errorf("Expected only the ECG exam, got %+v", out)
	}

	// No match.
	out, err = Search(db, SearchInput{Query: "inesistente"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if out.Total != 0 {
		t.Errorf("Expected no results, got %+v", out)
	}
}

func TestSearch_DateRange(t *testing.T) {
	db := newTestDB(t)
	gen := record.NewSequence(1000)

	if _, err := AddVisit(db, gen, VisitInput{SpecialistID: 1, Date: "2024-03-01", Notes: "controllo"}); err != nil {
		t.Fatalf("AddVisit failed: %v", err)
	}
	if _, err := AddVisit(db, gen, VisitInput{SpecialistID: 1, Date: "2024-06-15", Notes: "controllo"}); err != nil {
		t.Fatalf("AddVisit failed: %v", err)
	}

	out, err := Search(db, SearchInput{Query: "controllo", From: "2024-06-01"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(out.Visits) != 1 || out.Visits[0].Date != "2024-06-15" {
		t.Errorf("Expected only the June visit, got %+v", out.Visits)
	}
}

func TestSearch_Validation(t *testing.T) {
	db := newTestDB(t)

	_, err := Search(db, SearchInput{Query: "   "})
	assertCode(t, err, errors.ErrInvalidRequest)

	_, err = Search(db, SearchInput{Query: "x", From: "not-a-date"})
	assertCode(t, err, errors.ErrInvalidRequest)
}
