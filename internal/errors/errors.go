package errors

import "fmt"

// ErrorCode represents a medtrack error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"   // 400
	ErrEmptyFile       ErrorCode = "EMPTY_FILE"        // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"         // 404
	ErrSessionNotFound ErrorCode = "SESSION_NOT_FOUND" // 404
	ErrSpecialistInUse ErrorCode = "SPECIALIST_IN_USE" // 409
	ErrUnconfigured    ErrorCode = "UNCONFIGURED"      // 424
	ErrInternal        ErrorCode = "INTERNAL"          // 500
)

// TrackError represents a structured error with code, status, and details.
type TrackError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TrackError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TrackError {
	return &TrackError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewEmptyFile creates a 400 error for an empty or unreadable import file.
func NewEmptyFile(path string) *TrackError {
	return &TrackError{
		Code:    ErrEmptyFile,
		Status:  400,
		Message: fmt.Sprintf("file is empty or unreadable: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewNotFound creates a 404 error for a missing record.
func NewNotFound(kind string, id int64) *TrackError {
	return &TrackError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %d", kind, id),
		Details: map[string]any{"kind": kind, "id": id},
	}
}

// NewSessionNotFound creates a 404 error for a missing or already
// consumed import session.
func NewSessionNotFound(id string) *TrackError {
	return &TrackError{
		Code:    ErrSessionNotFound,
		Status:  404,
		Message: fmt.Sprintf("import session not found or already applied: %s", id),
		Details: map[string]any{"session_id": id},
	}
}

// NewSpecialistInUse creates a 409 error for the referential delete guard.
func NewSpecialistInUse(name string) *TrackError {
	return &TrackError{
		Code:    ErrSpecialistInUse,
		Status:  409,
		Message: fmt.Sprintf("specialist %q is referenced by existing visits or exams", name),
		Details: map[string]any{"name": name},
	}
}

// NewUnconfigured creates a 424 error for a missing external service setup.
func NewUnconfigured(msg string) *TrackError {
	return &TrackError{
		Code:    ErrUnconfigured,
		Status:  424,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *TrackError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TrackError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a TrackError with the given code.
func Is(err error, code ErrorCode) bool {
	if tErr, ok := err.(*TrackError); ok {
		return tErr.Code == code
	}
	return false
}
