package id

import (
	"github.com/google/uuid"
)

// RequestID returns a time ordered uuid (v7) for correlating logs of one
// request. It falls back to a random uuid if the clock source fails.
func RequestID() string {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}

// ValidRequestID reports whether s looks like an id a caller may pass
// through; anything longer than a uuid is rejected.
func ValidRequestID(s string) bool {
	return s != "" && len(s) <= 36
}
