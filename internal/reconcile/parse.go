package reconcile

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/gmelani/medtrack/internal/errors"
	"github.com/gmelani/medtrack/internal/record"
)

// Format tags which encoding produced a raw batch. Downstream
// duplicate rules depend on it: structured record ids are trustworthy,
// tabular ones are synthetic.
type Format string

const (
	FormatStructured Format = "structured"
	FormatTabular    Format = "tabular"
)

// Tabular placeholder defaults for specialists synthesized from a
// bare name column.
const (
	placeholderIcon     = "⚕️"
	placeholderInterval = 12
	defaultExamName     = "Esame"
)

// RawBatch holds unvalidated records extracted from an import file,
// not yet identity-resolved or deduplicated.
type RawBatch struct {
	Specialists []record.Specialist
	Visits      []record.Visit
	Exams       []record.Exam
	Format      Format
}

// fieldRe matches one quoted field (with "" escapes) or one unquoted
// comma-free run. Empty fields between consecutive commas are dropped,
// like the exporter's own loose splitter.
var fieldRe = regexp.MustCompile(`"(?:[^"]|"")*"|[^",]+`)

// Parse turns raw file text into a raw batch. Structured JSON is
// attempted first; anything else falls back to tabular parsing.
// Content that is neither yields an empty tabular batch (a no-op
// preview), not an error. Only empty input is a hard error.
func Parse(text string) (*RawBatch, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewInvalidRequest("import content is empty")
	}

	if batch, ok := parseStructured(text); ok {
		return batch, nil
	}
	return parseTabular(text), nil
}

// parseStructured interprets the text as the JSON export shape: a
// top-level object with any of the three collection arrays, or a bare
// array routed by element shape. Record ids are preserved as-is.
func parseStructured(text string) (*RawBatch, bool) {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "[") {
		return parseBareArray(trimmed)
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &root); err != nil {
		return nil, false
	}

	_, hasVisits := root["visits"]
	_, hasExams := root["exams"]
	_, hasSpecialists := root["specialists"]
	if !hasVisits && !hasExams && !hasSpecialists {
		return nil, false
	}

	batch := &RawBatch{Format: FormatStructured}
	batch.Visits = decodeElements[record.Visit](root["visits"])
	batch.Exams = decodeElements[record.Exam](root["exams"])
	batch.Specialists = decodeElements[record.Specialist](root["specialists"])
	return batch, true
}

// parseBareArray routes a top-level array to one of the collections by
// probing the first element: an interval field marks specialists, a
// results field marks exams, anything else is treated as visits.
func parseBareArray(text string) (*RawBatch, bool) {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elements); err != nil {
		return nil, false
	}

	batch := &RawBatch{Format: FormatStructured}
	if len(elements) == 0 {
		return batch, true
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(elements[0], &probe); err != nil {
		return nil, false
	}

	raw := json.RawMessage(text)
	switch {
	case hasKey(probe, "interval"):
		batch.Specialists = decodeElements[record.Specialist](raw)
	case hasKey(probe, "results"):
		batch.Exams = decodeElements[record.Exam](raw)
	default:
		batch.Visits = decodeElements[record.Visit](raw)
	}
	return batch, true
}

func hasKey(m map[string]json.RawMessage, key string) bool {
	_, ok := m[key]
	return ok
}

// decodeElements unmarshals an array element by element, skipping
// malformed entries instead of failing the whole import.
func decodeElements[T any](raw json.RawMessage) []T {
	if raw == nil {
		return nil
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil
	}

	out := make([]T, 0, len(elements))
	for _, el := range elements {
		var v T
		if err := json.Unmarshal(el, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// parseTabular parses the comma-separated encoding: a header line
// followed by rows of Type, Date, SpecialistName, Title, Details,
// Cost. Rows that resolve to fewer than two fields are skipped
// silently. Content without a comma-bearing first line yields an
// empty batch.
func parseTabular(text string) *RawBatch {
	batch := &RawBatch{Format: FormatTabular}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 || !strings.Contains(lines[0], ",") {
		return batch
	}

	for i := 1; i < len(lines); i++ {
		cols := splitRow(lines[i])
		if len(cols) < 2 {
			continue
		}

		typ := strings.ToLower(field(cols, 0))
		date := field(cols, 1)
		specName := field(cols, 2)
		title := field(cols, 3)
		details := field(cols, 4)
		cost := record.ParseCost(field(cols, 5))

		// Placeholder specialist per row; negative line-derived ids
		// cannot collide with real ones. The resolver merges repeats.
		var tempID int64
		if specName != "" {
			tempID = -int64(i)
			batch.Specialists = append(batch.Specialists, record.Specialist{
				ID:       tempID,
				Name:     specName,
				Icon:     placeholderIcon,
				Interval: placeholderInterval,
			})
		}

		if strings.Contains(typ, "visit") {
			batch.Visits = append(batch.Visits, record.Visit{
				SpecialistID: tempID,
				Date:         date,
				Notes:        details,
				Cost:         cost,
			})
		} else {
			name := title
			if name == "" {
				name = defaultExamName
			}
			var specID *int64
			if tempID != 0 {
				specID = &tempID
			}
			batch.Exams = append(batch.Exams, record.Exam{
				Name:         name,
				Date:         date,
				SpecialistID: specID,
				Results:      details,
				Cost:         cost,
			})
		}
	}

	return batch
}

// splitRow splits one tabular line into fields, respecting
// double-quoted segments that may contain commas and "" escapes.
// Falls back to a plain comma split when the pattern matches nothing.
func splitRow(line string) []string {
	cols := fieldRe.FindAllString(line, -1)
	if cols == nil {
		cols = strings.Split(line, ",")
	}
	for i := range cols {
		cols[i] = cleanField(cols[i])
	}
	return cols
}

// cleanField strips surrounding quotes, unescapes "" and trims.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, `""`, `"`)
	return strings.TrimSpace(s)
}

// field returns cols[i] or "" when the row is short.
func field(cols []string, i int) string {
	if i < len(cols) {
		return cols[i]
	}
	return ""
}
