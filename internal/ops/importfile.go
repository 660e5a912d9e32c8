package ops

import (
	"database/sql"
	"os"
	"strings"

	"github.com/gmelani/medtrack/internal/errors"
	"github.com/gmelani/medtrack/internal/reconcile"
	"github.com/gmelani/medtrack/internal/record"
)

// ImportInput contains parameters for the one-shot Import operation
// used by the CLI: preview always, commit only when Apply is set.
type ImportInput struct {
	Path  string // required
	Apply bool
}

// ImportOutput contains the computed delta and whether it was applied.
type ImportOutput struct {
	Format  string             `json:"format"`
	Preview *reconcile.Preview `json:"preview"`
	Applied bool               `json:"applied"`
}

// Import reads a file, reconciles it against the current collections
// and, when Apply is set, commits the delta in the same invocation.
// An empty or unreadable file is a hard error; per-row problems are
// not (the parser skips those rows).
func Import(db *sql.DB, gen record.IDGenerator, input ImportInput) (*ImportOutput, error) {
	text, err := readImportFile(input.Path)
	if err != nil {
		return nil, err
	}

	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}

	session, err := reconcile.NewSession(text, snap, gen)
	if err != nil {
		return nil, err
	}

	out := &ImportOutput{
		Format:  string(session.Format),
		Preview: session.Preview,
	}
	if !input.Apply {
		return out, nil
	}

	if err := applyPreview(db, snap, session.Preview); err != nil {
		return nil, err
	}
	out.Applied = true
	return out, nil
}

// StageImportOutput is the preview of a staged two-phase import.
type StageImportOutput struct {
	SessionID string             `json:"session_id"`
	Format    string             `json:"format"`
	Preview   *reconcile.Preview `json:"preview"`
}

// StageImport computes a preview and parks it in the registry for a
// later commit. Used by the long-lived surfaces (MCP, web) where
// preview and confirmation are separate calls.
func StageImport(db *sql.DB, gen record.IDGenerator, reg *reconcile.Registry, path string) (*StageImportOutput, error) {
	text, err := readImportFile(path)
	if err != nil {
		return nil, err
	}

	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}

	session, err := reconcile.NewSession(text, snap, gen)
	if err != nil {
		return nil, err
	}
	reg.Put(session)

	return &StageImportOutput{
		SessionID: session.ID,
		Format:    string(session.Format),
		Preview:   session.Preview,
	}, nil
}

// CommitOutput reports what a commit added.
type CommitOutput struct {
	AddedVisits      int `json:"added_visits"`
	AddedExams       int `json:"added_exams"`
	AddedSpecialists int `json:"added_specialists"`
}

// CommitStaged consumes a staged session and applies its preview. The
// session is removed whether or not the apply succeeds, so the same
// delta can never be committed twice.
func CommitStaged(db *sql.DB, reg *reconcile.Registry, sessionID string) (*CommitOutput, error) {
	session, ok := reg.Take(sessionID)
	if !ok {
		return nil, errors.NewSessionNotFound(sessionID)
	}

	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}
	if err := applyPreview(db, snap, session.Preview); err != nil {
		return nil, err
	}

	return &CommitOutput{
		AddedVisits:      len(session.Preview.NewVisits),
		AddedExams:       len(session.Preview.NewExams),
		AddedSpecialists: len(session.Preview.NewSpecialists),
	}, nil
}

// applyPreview appends the accepted delta to all three collections and
// persists them together.
func applyPreview(db *sql.DB, snap *record.Snapshot, preview *reconcile.Preview) error {
	snap.Specialists = append(snap.Specialists, preview.NewSpecialists...)
	snap.Visits = append(snap.Visits, preview.NewVisits...)
	snap.Exams = append(snap.Exams, preview.NewExams...)
	return saveSnapshot(db, snap)
}

// readImportFile reads the file and rejects empty or unreadable input.
func readImportFile(path string) (string, error) {
	if path == "" {
		return "", errors.NewInvalidRequest("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewEmptyFile(path)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", errors.NewEmptyFile(path)
	}
	return text, nil
}
