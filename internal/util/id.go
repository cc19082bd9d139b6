package util

import "github.com/google/uuid"

// NewID returns a random (v4) UUID string used as primary key for every record.
func NewID() string {
	return uuid.NewString()
}
