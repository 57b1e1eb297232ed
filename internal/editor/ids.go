package editor

import (
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces node and page ids.
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator generates random (version 4) UUIDs.
//
// Thread-safety: UUIDGenerator is stateless and safe for concurrent use.
type UUIDGenerator struct{}

// Generate returns a new hyphenated UUID string.
func (UUIDGenerator) Generate() string {
	return uuid.NewString()
}

// Clock stamps history entries and saves. Timestamps are informational;
// ordering always comes from the history list itself.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
