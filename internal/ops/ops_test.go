package ops

import (
	"database/sql"
	"testing"

	"github.com/gmelani/medtrack/internal/errors"
	"github.com/gmelani/medtrack/internal/record"
	"github.com/gmelani/medtrack/internal/store"
)

// newTestDB opens a fresh database in a temp directory. The first load
// seeds the default specialists (ids 1-7).
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.Init(t.TempDir())
	if err != nil {
		t.Fatalf("store.Init failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()

	if err == nil {
		t.Fatalf("Expected %s error, got nil", code)
	}
	if !errors.Is(err, code) {
		t.Fatalf("Expected %s error, got: %v", code, err)
	}
}

func TestInDateRange(t *testing.T) {
	tests := []struct {
		date, from, to string
		want           bool
	}{
		{"2024-06-15", "", "", true},
		{"2024-06-15", "2024-06-15", "2024-06-15", true},
		{"2024-06-15", "2024-06-16", "", false},
		{"2024-06-15", "", "2024-06-14", false},
		{"2024-06-15", "2024-01-01", "2024-12-31", true},
	}
	for _, tt := range tests {
		if got := inDateRange(tt.date, tt.from, tt.to); got != tt.want {
			t.Errorf("inDateRange(%q, %q, %q) = %v, want %v", tt.date, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRequireDate(t *testing.T) {
	if err := requireDate("date", "2024-06-15"); err != nil {
		t.Fatalf("Valid date rejected: %v", err)
	}
	assertCode(t, requireDate("date", ""), errors.ErrInvalidRequest)
	assertCode(t, requireDate("date", "15/06/2024"), errors.ErrInvalidRequest)
}

func TestRequireSpecialist(t *testing.T) {
	snap := &record.Snapshot{Specialists: record.DefaultSpecialists()}
	if err := requireSpecialist(snap, 1); err != nil {
		t.Fatalf("Existing specialist rejected: %v", err)
	}
	assertCode(t, requireSpecialist(snap, 999), errors.ErrInvalidRequest)
}
