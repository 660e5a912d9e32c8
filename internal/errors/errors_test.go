package errors

import "testing"

func TestErrorFormatting(t *testing.T) {
	err := NewSpecialistInUse("Dentista")
	want := `SPECIALIST_IN_USE: specialist "Dentista" is referenced by existing visits or exams`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
}

func TestIs(t *testing.T) {
	err := NewNotFound("visit", 42)
	if !Is(err, ErrNotFound) {
		t.Error("Is should match NOT_FOUND")
	}
	if Is(err, ErrInvalidRequest) {
		t.Error("Is should not match a different code")
	}
	if Is(nil, ErrNotFound) {
		t.Error("Is(nil) should be false")
	}
}

func TestNewInternalNilErr(t *testing.T) {
	err := NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q", err.Message)
	}
}
