package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmelani/medtrack/internal/record"
)

func TestResolveMatchesExistingCaseAndWhitespaceInsensitive(t *testing.T) {
	existing := []record.Specialist{{ID: 3, Name: "Dr. Rossi", Icon: "⚕️", Interval: 12}}
	raw := []record.Specialist{{ID: -1, Name: " dr. rossi ", Icon: "⚕️", Interval: 12}}

	staged, idMap := Resolve(raw, existing, record.NewSequence(1000))

	assert.Empty(t, staged, "no duplicate specialist should be staged")
	assert.Equal(t, int64(3), idMap[-1])
}

func TestResolveDeduplicatesWithinBatch(t *testing.T) {
	// Same name under three distinct temp ids: at most one staged.
	raw := []record.Specialist{
		{ID: -1, Name: "Dr. Rossi"},
		{ID: -2, Name: "DR. ROSSI"},
		{ID: -3, Name: " dr. rossi"},
	}

	staged, idMap := Resolve(raw, nil, record.NewSequence(1000))

	require.Len(t, staged, 1)
	assert.Equal(t, int64(1000), staged[0].ID)
	assert.Equal(t, "Dr. Rossi", staged[0].Name)
	for _, tempID := range []int64{-1, -2, -3} {
		assert.Equal(t, int64(1000), idMap[tempID], "temp id %d", tempID)
	}
}

func TestResolveStagesNewWithDefaults(t *testing.T) {
	raw := []record.Specialist{{ID: -1, Name: "Fisioterapista"}}

	staged, idMap := Resolve(raw, nil, record.NewSequence(50))

	require.Len(t, staged, 1)
	assert.Equal(t, int64(50), staged[0].ID)
	assert.Equal(t, "⚕️", staged[0].Icon)
	assert.Equal(t, 12, staged[0].Interval)
	assert.Equal(t, int64(50), idMap[-1])
}

func TestResolveKeepsProvidedIconAndInterval(t *testing.T) {
	raw := []record.Specialist{{ID: 9, Name: "Dentista", Icon: "🦷", Interval: 6}}

	staged, _ := Resolve(raw, nil, record.NewSequence(50))

	require.Len(t, staged, 1)
	assert.Equal(t, "🦷", staged[0].Icon)
	assert.Equal(t, 6, staged[0].Interval)
}

func TestResolveSkipsBlankNames(t *testing.T) {
	raw := []record.Specialist{{ID: -1, Name: "   "}}

	staged, idMap := Resolve(raw, nil, record.NewSequence(50))

	assert.Empty(t, staged)
	assert.Empty(t, idMap)
}
