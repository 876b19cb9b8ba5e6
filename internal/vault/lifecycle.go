package vault

import "fmt"

// Time constants, all in milliseconds.
//
// A lock month is a fixed 30 days. This is calendar-naive on purpose:
// the unlock instant stays a pure function of creation time and duration,
// independent of timezone and calendar irregularities.
const (
	MonthMillis int64 = 30 * 24 * 60 * 60 * 1000
	DayMillis   int64 = 24 * 60 * 60 * 1000
	HourMillis  int64 = 60 * 60 * 1000
)

// SupportedDurations lists the lock durations the seal flow offers, in months.
var SupportedDurations = []int{1, 3, 6, 12}

// SupportedDuration reports whether months is one of SupportedDurations.
func SupportedDuration(months int) bool {
	for _, m := range SupportedDurations {
		if months == m {
			return true
		}
	}
	return false
}

// ReadyLabel is the remaining-time string for a capsule whose lock has expired.
const ReadyLabel = "Ready to Unlock!"

// NewCapsule builds a sealed text capsule. It is a pure constructor:
// validation of the inputs is the caller's concern, and now is supplied
// explicitly so the unlock instant is reproducible.
func NewCapsule(id, skillID, content, message string, months int, now int64) Capsule {
	return Capsule{
		ID:                 id,
		SkillID:            skillID,
		Type:               ContentText,
		Content:            content,
		MessageToFuture:    message,
		CreatedAt:          now,
		LockDurationMonths: months,
		UnlockAt:           now + int64(months)*MonthMillis,
		IsUnlocked:         false,
	}
}

// IsReady reports whether the capsule's lock has expired at now.
// The threshold is inclusive; the unlocked flag is never consulted.
func IsReady(c Capsule, now int64) bool {
	return now >= c.UnlockAt
}

// RemainingTime formats the time left until unlock as whole days and
// whole hours ("{d}d {h}h left"), dropping finer precision. A ready
// capsule yields ReadyLabel; the difference is never negative.
func RemainingTime(c Capsule, now int64) string {
	diff := c.UnlockAt - now
	if diff <= 0 {
		return ReadyLabel
	}
	days := diff / DayMillis
	hours := (diff % DayMillis) / HourMillis
	return fmt.Sprintf("%dd %dh left", days, hours)
}
