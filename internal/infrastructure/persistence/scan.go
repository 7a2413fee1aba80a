package persistence

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// parseDay parses a DATE() column scanned as text.
// Drivers disagree on the format; the first ten characters are always YYYY-MM-DD.
func parseDay(s string) (time.Time, error) {
	if len(s) < 10 {
		return time.Time{}, fmt.Errorf("malformed day %q", s)
	}
	day, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed day %q: %w", s, err)
	}
	return day, nil
}

// parseID parses a uuid column scanned as text
func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed uuid %q: %w", s, err)
	}
	return id, nil
}
