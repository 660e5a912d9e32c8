package reconcile

import (
	"github.com/gmelani/medtrack/internal/record"
)

// Resolve maps every raw specialist reference to a canonical identity.
// It returns the specialists to stage for creation (each with a fresh
// permanent id) and a mapping from every raw temporary id to a
// permanent id, existing or staged.
//
// Resolution order per raw record: existing collection by normalized
// name, then specialists already staged within this same batch, then
// stage a new one. A file mentioning the same name five times stages
// at most one new specialist.
func Resolve(raw []record.Specialist, existing []record.Specialist, gen record.IDGenerator) ([]record.Specialist, map[int64]int64) {
	staged := []record.Specialist{}
	idMap := make(map[int64]int64, len(raw))

	for _, r := range raw {
		key := record.Normalize(r.Name)
		if key == "" {
			continue
		}

		if match := findByName(existing, key); match != nil {
			idMap[r.ID] = match.ID
			continue
		}
		if match := findByName(staged, key); match != nil {
			idMap[r.ID] = match.ID
			continue
		}

		fresh := r
		fresh.ID = gen.NextID()
		if fresh.Icon == "" {
			fresh.Icon = placeholderIcon
		}
		if fresh.Interval <= 0 {
			fresh.Interval = placeholderInterval
		}
		staged = append(staged, fresh)
		idMap[r.ID] = fresh.ID
	}

	return staged, idMap
}

// findByName returns the first specialist whose normalized name equals
// key, or nil.
func findByName(specialists []record.Specialist, key string) *record.Specialist {
	for i := range specialists {
		if record.Normalize(specialists[i].Name) == key {
			return &specialists[i]
		}
	}
	return nil
}
