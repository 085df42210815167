package tool

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUIDV7(t *testing.T) {
	id := GenerateUUIDV7()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	require.Equal(t, uuid.Version(7), parsed.Version())
	require.NotEqual(t, id, GenerateUUIDV7())
}

func TestOccurrenceID_Stable(t *testing.T) {
	require.Equal(t, "slot-1:0", OccurrenceID("slot-1", 0))
	require.Equal(t, OccurrenceID("slot-1", 3), OccurrenceID("slot-1", 3))
	require.NotEqual(t, OccurrenceID("slot-1", 3), OccurrenceID("slot-2", 3))
}
