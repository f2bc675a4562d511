// Package idx generates and validates the ULID identifiers used for
// clients and service records.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrInvalid reports a malformed identifier string.
var ErrInvalid = errors.New("idx: invalid id")

var (
	once    sync.Once
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
)

func initEntropy() {
	entropy = ulid.Monotonic(rand.Reader, 0)
}

// New returns a lexicographically sortable ULID using the current UTC time
// and a shared monotonic entropy source. Safe for concurrent use.
func New() string {
	once.Do(initEntropy)
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}

// Parse validates s as a canonical ULID and returns it trimmed.
func Parse(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalid
	}
	if _, err := ulid.ParseStrict(s); err != nil {
		return "", ErrInvalid
	}
	return s, nil
}

// Valid reports whether s is a well-formed identifier.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}
