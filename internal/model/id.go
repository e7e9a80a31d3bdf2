package model

import "github.com/google/uuid"

// NewID returns a time-ordered record id.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
