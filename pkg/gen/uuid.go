package gen

import (
	"github.com/google/uuid"
)

type UUIDGenerator func() uuid.UUID

// UUID returns a generator of random (v4) identifiers.
func UUID() UUIDGenerator {
	return func() uuid.UUID {
		return uuid.New()
	}
}

func (g UUIDGenerator) Next() uuid.UUID {
	if g == nil {
		return uuid.Nil
	}

	return g()
}

// Fixed returns a generator that yields ids in order and then uuid.Nil.
func Fixed(ids ...uuid.UUID) UUIDGenerator {
	i := 0
	return func() uuid.UUID {
		if i >= len(ids) {
			return uuid.Nil
		}
		id := ids[i]
		i++
		return id
	}
}
