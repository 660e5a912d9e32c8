package record

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Dr. Rossi", "dr. rossi"},
		{" dr. rossi ", "dr. rossi"},
		{"DENTISTA", "dentista"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidDate(t *testing.T) {
	if !ValidDate("2024-01-10") {
		t.Error("2024-01-10 should be valid")
	}
	if ValidDate("10/01/2024") {
		t.Error("10/01/2024 should be invalid")
	}
	if ValidDate("2024-13-01") {
		t.Error("month 13 should be invalid")
	}
	if ValidDate("") {
		t.Error("empty date should be invalid")
	}
}

func TestParseCost(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"120", 120},
		{"120.50", 120.50},
		{" 80 ", 80},
		{"abc", 0},
		{"", 0},
		{"-5", 0},
	}
	for _, tt := range tests {
		if got := ParseCost(tt.in); got != tt.want {
			t.Errorf("ParseCost(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSnapshotSpecialistReferenced(t *testing.T) {
	specID := int64(2)
	snap := &Snapshot{
		Specialists: []Specialist{
			{ID: 1, Name: "Oculista", Icon: "x", Interval: 12},
			{ID: 2, Name: "Dentista", Icon: "x", Interval: 6},
			{ID: 3, Name: "Cardiologo", Icon: "x", Interval: 12},
		},
		Visits: []Visit{{ID: 10, SpecialistID: 1, Date: "2024-01-10"}},
		Exams:  []Exam{{ID: 20, Name: "Panoramica", Date: "2024-02-01", SpecialistID: &specID}},
	}

	if !snap.SpecialistReferenced(1) {
		t.Error("specialist 1 is referenced by a visit")
	}
	if !snap.SpecialistReferenced(2) {
		t.Error("specialist 2 is referenced by an exam")
	}
	if snap.SpecialistReferenced(3) {
		t.Error("specialist 3 is unreferenced")
	}
}

func TestSnapshotSpecialistName(t *testing.T) {
	snap := &Snapshot{Specialists: []Specialist{{ID: 1, Name: "Oculista"}}}

	one, missing := int64(1), int64(99)
	if got := snap.SpecialistName(&one); got != "Oculista" {
		t.Errorf("SpecialistName(1) = %q", got)
	}
	if got := snap.SpecialistName(&missing); got != "" {
		t.Errorf("SpecialistName(99) = %q, want empty", got)
	}
	if got := snap.SpecialistName(nil); got != "" {
		t.Errorf("SpecialistName(nil) = %q, want empty", got)
	}
}

func TestClockIDGeneratorNeverRepeats(t *testing.T) {
	gen := &ClockIDGenerator{}
	seen := make(map[int64]bool)
	for i := 0; i < 10000; i++ {
		id := gen.NextID()
		if seen[id] {
			t.Fatalf("duplicate id %d after %d draws", id, i)
		}
		seen[id] = true
	}
}

func TestSequenceIDGenerator(t *testing.T) {
	gen := NewSequence(100)
	for want := int64(100); want < 103; want++ {
		if got := gen.NextID(); got != want {
			t.Errorf("NextID() = %d, want %d", got, want)
		}
	}
}
