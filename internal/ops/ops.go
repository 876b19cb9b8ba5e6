package ops

import (
	"crypto/rand"
	"crypto/subtle"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/knelavan/skilltime/internal/config"
)

// newID generates a new ULID.
func newID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// resolveNow returns the clock override if set, otherwise the wall clock
// in epoch milliseconds. Inputs carry an optional Now so time-dependent
// operations stay reproducible under test.
func resolveNow(override int64) int64 {
	if override > 0 {
		return override
	}
	return time.Now().UnixMilli()
}

// VerifyCreatorKey checks a submitted key against the configured creator
// key. This gates a settings panel in a single-user local app; it is a
// preference toggle, not access control.
func VerifyCreatorKey(cfg *config.Config, key string) bool {
	if cfg == nil || cfg.CreatorKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cfg.CreatorKey), []byte(key)) == 1
}
