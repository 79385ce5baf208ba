package domain

import "github.com/google/uuid"

// NewID returns a fresh random identifier for bikes and service entries.
func NewID() string {
	return uuid.NewString()
}
