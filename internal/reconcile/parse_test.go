package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyInputIsHardError(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n"} {
		_, err := Parse(text)
		assert.Error(t, err, "input %q", text)
	}
}

func TestParseStructuredObject(t *testing.T) {
	text := `{
		"version": "1.0",
		"exportedAt": "2024-03-01T10:00:00Z",
		"specialists": [{"id": 2, "name": "Dentista", "icon": "🦷", "interval": 6}],
		"visits": [{"id": 555, "specialistId": 2, "date": "2024-01-10", "notes": "checkup", "cost": 80}],
		"exams": [{"id": 777, "name": "Panoramica", "date": "2024-02-01", "specialistId": 2, "results": "ok", "notes": "", "cost": 50}]
	}`

	batch, err := Parse(text)
	require.NoError(t, err)

	assert.Equal(t, FormatStructured, batch.Format)
	require.Len(t, batch.Visits, 1)
	require.Len(t, batch.Exams, 1)
	require.Len(t, batch.Specialists, 1)

	// Structured mode preserves original ids for the diff stage.
	assert.Equal(t, int64(555), batch.Visits[0].ID)
	assert.Equal(t, int64(777), batch.Exams[0].ID)
	assert.Equal(t, int64(2), batch.Specialists[0].ID)
}

func TestParseStructuredMissingArraysDefaultEmpty(t *testing.T) {
	batch, err := Parse(`{"visits": [{"id": 1, "specialistId": 2, "date": "2024-01-10", "notes": "", "cost": 0}]}`)
	require.NoError(t, err)

	assert.Equal(t, FormatStructured, batch.Format)
	assert.Len(t, batch.Visits, 1)
	assert.Empty(t, batch.Exams)
	assert.Empty(t, batch.Specialists)
}

func TestParseStructuredSkipsMalformedElements(t *testing.T) {
	batch, err := Parse(`{"visits": [{"id": 1, "specialistId": 2, "date": "2024-01-10"}, "not an object", {"id": "also bad"}]}`)
	require.NoError(t, err)
	assert.Len(t, batch.Visits, 1)
}

func TestParseBareArrayRoutedByShape(t *testing.T) {
	specs, err := Parse(`[{"id": 2, "name": "Dentista", "icon": "🦷", "interval": 6}]`)
	require.NoError(t, err)
	assert.Len(t, specs.Specialists, 1)

	exams, err := Parse(`[{"id": 7, "name": "Emocromo", "date": "2024-02-01", "specialistId": null, "results": "ok", "notes": "", "cost": 0}]`)
	require.NoError(t, err)
	assert.Len(t, exams.Exams, 1)

	visits, err := Parse(`[{"id": 5, "specialistId": 2, "date": "2024-01-10", "notes": "", "cost": 0}]`)
	require.NoError(t, err)
	assert.Len(t, visits.Visits, 1)
}

func TestParseTabularRows(t *testing.T) {
	text := "Tipo,Data,Specialista,Nome/Titolo,Dettagli/Note,Costo\n" +
		`"Visita","2024-01-10","Dr. Rossi","Visita di controllo","checkup","80"` + "\n" +
		`"Esame","2024-02-01","Dr. Rossi","Emocromo","valori regolari","35.50"` + "\n"

	batch, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, FormatTabular, batch.Format)

	require.Len(t, batch.Visits, 1)
	v := batch.Visits[0]
	assert.Equal(t, "2024-01-10", v.Date)
	assert.Equal(t, "checkup", v.Notes)
	assert.Equal(t, 80.0, v.Cost)
	assert.Negative(t, v.SpecialistID, "tabular specialist reference uses a temp id")

	require.Len(t, batch.Exams, 1)
	e := batch.Exams[0]
	assert.Equal(t, "Emocromo", e.Name)
	assert.Equal(t, "valori regolari", e.Results)
	assert.Equal(t, 35.50, e.Cost)
	require.NotNil(t, e.SpecialistID)

	// One placeholder specialist per row bearing a name.
	require.Len(t, batch.Specialists, 2)
	assert.Equal(t, "Dr. Rossi", batch.Specialists[0].Name)
	assert.Equal(t, 12, batch.Specialists[0].Interval)
	assert.NotEqual(t, batch.Specialists[0].ID, batch.Specialists[1].ID)
}

func TestParseTabularQuotedCommasAndEscapes(t *testing.T) {
	text := "Tipo,Data,Specialista,Nome/Titolo,Dettagli/Note,Costo\n" +
		`"Esame","2024-02-01","Dr. Rossi","RX torace","esito ""negativo"", controllo tra 6 mesi","0"` + "\n"

	batch, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, batch.Exams, 1)
	assert.Equal(t, `esito "negativo", controllo tra 6 mesi`, batch.Exams[0].Results)
}

func TestParseTabularUnquotedFallback(t *testing.T) {
	text := "Tipo,Data,Specialista,Nome/Titolo,Dettagli/Note,Costo\n" +
		"Visita,2024-01-10,Dr. Rossi,Controllo,tutto bene,50\n"

	batch, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, batch.Visits, 1)
	assert.Equal(t, "tutto bene", batch.Visits[0].Notes)
	assert.Equal(t, 50.0, batch.Visits[0].Cost)
}

func TestParseTabularSkipsMalformedRows(t *testing.T) {
	text := "Tipo,Data,Specialista,Nome/Titolo,Dettagli/Note,Costo\n" +
		"garbage\n" +
		`"Visita","2024-01-10","Dr. Rossi","","ok","0"` + "\n"

	batch, err := Parse(text)
	require.NoError(t, err)
	assert.Len(t, batch.Visits, 1)
}

func TestParseTabularVisitWithoutSpecialistName(t *testing.T) {
	text := "Tipo,Data,Specialista,Nome/Titolo,Dettagli/Note,Costo\n" +
		`"Visita","2024-01-10","","Controllo","note qui","0"` + "\n"

	batch, err := Parse(text)
	require.NoError(t, err)
	assert.Empty(t, batch.Specialists)
	require.Len(t, batch.Visits, 1)
	assert.Zero(t, batch.Visits[0].SpecialistID)
}

func TestParseTabularExamWithoutSpecialistIsUnprescribed(t *testing.T) {
	text := "Tipo,Data,Specialista,Nome/Titolo,Dettagli/Note,Costo\n" +
		`"Esame","2024-02-01","","Emocromo","ok","0"` + "\n"

	batch, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, batch.Exams, 1)
	assert.Nil(t, batch.Exams[0].SpecialistID)
	assert.Empty(t, batch.Specialists)
}

func TestParseTabularCostCoercion(t *testing.T) {
	text := "Tipo,Data,Specialista,Nome/Titolo,Dettagli/Note,Costo\n" +
		`"Visita","2024-01-10","Dr. Rossi","x","note","abc"` + "\n" +
		`"Visita","2024-01-11","Dr. Rossi","x","note",""` + "\n"

	batch, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, batch.Visits, 2)
	assert.Zero(t, batch.Visits[0].Cost)
	assert.Zero(t, batch.Visits[1].Cost)
}

func TestParseUnrecognizedContentYieldsEmptyBatch(t *testing.T) {
	batch, err := Parse("just some prose without any commas\nmore prose")
	require.NoError(t, err)
	assert.Equal(t, FormatTabular, batch.Format)
	assert.Empty(t, batch.Visits)
	assert.Empty(t, batch.Exams)
	assert.Empty(t, batch.Specialists)
}

func TestParseTabularMissingExamTitleDefaults(t *testing.T) {
	text := "Tipo,Data,Specialista,Nome/Titolo,Dettagli/Note,Costo\n" +
		`"Esame","2024-02-01","Dr. Rossi","","",""` + "\n"

	batch, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, batch.Exams, 1)
	assert.Equal(t, "Esame", batch.Exams[0].Name)
}
