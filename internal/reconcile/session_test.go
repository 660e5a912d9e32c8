package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmelani/medtrack/internal/record"
)

func TestSessionIdempotentReimport(t *testing.T) {
	// Exporting and re-importing the same state yields zero new records.
	snap := baseSnapshot()
	export, err := json.Marshal(map[string]any{
		"version":     "1.0",
		"exportedAt":  "2024-03-01T10:00:00Z",
		"specialists": snap.Specialists,
		"visits":      snap.Visits,
		"exams":       snap.Exams,
	})
	require.NoError(t, err)

	session, err := NewSession(string(export), snap, record.NewSequence(9000))
	require.NoError(t, err)

	assert.Equal(t, FormatStructured, session.Format)
	assert.True(t, session.Preview.Empty())
	assert.Equal(t, len(snap.Visits), session.Preview.TotalFound.Visits)
	assert.Equal(t, len(snap.Exams), session.Preview.TotalFound.Exams)
}

func TestSessionTabularSpecialistDeduplication(t *testing.T) {
	// Three rows naming the same unknown specialist: one staged
	// specialist, and all derived records reference its generated id.
	text := "Tipo,Data,Specialista,Nome/Titolo,Dettagli/Note,Costo\n" +
		`"Visita","2024-05-01","Dr. Bianchi","","prima visita","100"` + "\n" +
		`"Visita","2024-06-01","dr. bianchi","","controllo","80"` + "\n" +
		`"Esame","2024-06-15"," Dr. Bianchi ","Ecografia","ok","60"` + "\n"

	session, err := NewSession(text, baseSnapshot(), record.NewSequence(9000))
	require.NoError(t, err)
	preview := session.Preview

	require.Len(t, preview.NewSpecialists, 1)
	stagedID := preview.NewSpecialists[0].ID

	require.Len(t, preview.NewVisits, 2)
	for _, v := range preview.NewVisits {
		assert.Equal(t, stagedID, v.SpecialistID)
	}
	require.Len(t, preview.NewExams, 1)
	require.NotNil(t, preview.NewExams[0].SpecialistID)
	assert.Equal(t, stagedID, *preview.NewExams[0].SpecialistID)
}

func TestSessionExistingSpecialistNotDuplicated(t *testing.T) {
	text := "Tipo,Data,Specialista,Nome/Titolo,Dettagli/Note,Costo\n" +
		`"Visita","2024-05-01"," dr. rossi ","","nuova","0"` + "\n"

	session, err := NewSession(text, baseSnapshot(), record.NewSequence(9000))
	require.NoError(t, err)

	assert.Empty(t, session.Preview.NewSpecialists)
	require.Len(t, session.Preview.NewVisits, 1)
	assert.Equal(t, int64(3), session.Preview.NewVisits[0].SpecialistID)
}

func TestSessionIDsAreUnique(t *testing.T) {
	snap := baseSnapshot()
	a, err := NewSession(`{"visits": []}`, snap, record.NewSequence(1))
	require.NoError(t, err)
	b, err := NewSession(`{"visits": []}`, snap, record.NewSequence(1))
	require.NoError(t, err)

	assert.Len(t, a.ID, 26, "session id should be a ULID")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRegistryTakeConsumesOnce(t *testing.T) {
	reg := NewRegistry()
	session, err := NewSession(`{"visits": []}`, baseSnapshot(), record.NewSequence(1))
	require.NoError(t, err)

	reg.Put(session)

	got, ok := reg.Take(session.ID)
	require.True(t, ok)
	assert.Equal(t, session.ID, got.ID)

	_, ok = reg.Take(session.ID)
	assert.False(t, ok, "a session must not be consumable twice")
}

func TestRegistryDrop(t *testing.T) {
	reg := NewRegistry()
	session, err := NewSession(`{"visits": []}`, baseSnapshot(), record.NewSequence(1))
	require.NoError(t, err)

	reg.Put(session)
	reg.Drop(session.ID)

	_, ok := reg.Take(session.ID)
	assert.False(t, ok)
}
