package ops

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gmelani/medtrack/internal/errors"
	"github.com/gmelani/medtrack/internal/record"
)

// Export formats.
const (
	ExportFormatJSON = "json"
	ExportFormatCSV  = "csv"
)

// csvHeader is the exact tabular header; the importer's tabular mode
// expects these six columns in this order.
const csvHeader = "Tipo,Data,Specialista,Nome/Titolo,Dettagli/Note,Costo"

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Format string // json (default) or csv
	Path   string // optional, default: <baseDir>/exports/medtrack-export-<date>.<ext>
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path        string `json:"path"`
	Format      string `json:"format"`
	Visits      int    `json:"visits"`
	Exams       int    `json:"exams"`
	Specialists int    `json:"specialists"`
	ExportedAt  string `json:"exported_at"`
}

// exportFile is the structured backup shape. Re-importing it finds
// every record as an id duplicate, so the round trip is a no-op.
type exportFile struct {
	Version     string              `json:"version"`
	ExportedAt  string              `json:"exportedAt"`
	Specialists []record.Specialist `json:"specialists"`
	Visits      []record.Visit      `json:"visits"`
	Exams       []record.Exam       `json:"exams"`
}

// Export writes the three collections as a structured JSON backup or a
// tabular CSV. The file is written to a temp path and renamed into
// place so a failed export never truncates an earlier one.
func Export(db *sql.DB, baseDir string, input ExportInput) (*ExportOutput, error) {
	format := input.Format
	if format == "" {
		format = ExportFormatJSON
	}
	if format != ExportFormatJSON && format != ExportFormatCSV {
		return nil, errors.NewInvalidRequest("format must be one of: json, csv")
	}

	snap, err := loadSnapshot(db)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	exportedAt := now.Format(time.RFC3339)

	path := input.Path
	if path == "" {
		filename := fmt.Sprintf("medtrack-export-%s.%s", now.Format("2006-01-02"), format)
		path = filepath.Join(baseDir, "exports", filename)
	}

	var content []byte
	switch format {
	case ExportFormatJSON:
		content, err = encodeJSON(snap, exportedAt)
	case ExportFormatCSV:
		content = encodeCSV(snap)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := writeAtomic(path, content); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ExportOutput{
		Path:        path,
		Format:      format,
		Visits:      len(snap.Visits),
		Exams:       len(snap.Exams),
		Specialists: len(snap.Specialists),
		ExportedAt:  exportedAt,
	}, nil
}

// encodeJSON renders the structured backup, indented for readability.
func encodeJSON(snap *record.Snapshot, exportedAt string) ([]byte, error) {
	out := exportFile{
		Version:     "1.0",
		ExportedAt:  exportedAt,
		Specialists: snap.Specialists,
		Visits:      snap.Visits,
		Exams:       snap.Exams,
	}
	if out.Specialists == nil {
		out.Specialists = []record.Specialist{}
	}
	if out.Visits == nil {
		out.Visits = []record.Visit{}
	}
	if out.Exams == nil {
		out.Exams = []record.Exam{}
	}
	return json.MarshalIndent(out, "", "  ")
}

// encodeCSV renders the tabular export: one row per visit and exam,
// every field double-quote-escaped.
func encodeCSV(snap *record.Snapshot) []byte {
	rows := []string{csvHeader}

	for _, v := range snap.Visits {
		rows = append(rows, strings.Join([]string{
			csvEscape("Visita"),
			csvEscape(v.Date),
			csvEscape(snap.SpecialistName(&v.SpecialistID)),
			csvEscape("Visita di controllo"),
			csvEscape(v.Notes),
			csvEscape(formatCost(v.Cost)),
		}, ","))
	}

	for _, e := range snap.Exams {
		details := e.Notes
		if e.Results != "" {
			details = strings.TrimSpace(e.Results + " " + e.Notes)
		}
		rows = append(rows, strings.Join([]string{
			csvEscape("Esame"),
			csvEscape(e.Date),
			csvEscape(snap.SpecialistName(e.SpecialistID)),
			csvEscape(e.Name),
			csvEscape(details),
			csvEscape(formatCost(e.Cost)),
		}, ","))
	}

	return []byte(strings.Join(rows, "\n") + "\n")
}

// csvEscape wraps a value in double quotes, doubling internal quotes.
func csvEscape(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// formatCost renders a cost without trailing zeros.
func formatCost(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

// writeAtomic writes content to a temp file and renames it into place.
func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to finalize export: %w", err)
	}
	success = true
	return nil
}
