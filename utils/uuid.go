package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new random identifier
func GenerateID() uuid.UUID {
	return uuid.New()
}

// NullID wraps id as a present nullable identifier
func NullID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: true}
}
