package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// GetUlid returns a lexically sortable id; ids generated within one
// millisecond are still strictly increasing.
func GetUlid() string {
	return NewUlidAt(time.Now())
}

// NewUlidAt returns a ulid with the timestamp part set to t.
func NewUlidAt(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return ulid.Make().String()
	}
	return id.String()
}

// ParseUlidTime extracts the creation time from a ulid string.
func ParseUlidTime(s string) (time.Time, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(id.Time()), nil
}
