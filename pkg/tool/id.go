package tool

import (
	"fmt"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// OccurrenceID derives a stable occurrence identifier from its slot and
// position in the slot's expansion. Re-materializing the same slot yields
// the same ids for the same sequence indexes.
func OccurrenceID(slotID string, seq int) string {
	return fmt.Sprintf("%s:%d", slotID, seq)
}
