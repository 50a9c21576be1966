package core

import (
	"time"
)

// Clock yields the current time; services take one so output can be pinned in tests
type Clock func() time.Time

// SystemClock returns time.Now in UTC
func SystemClock() time.Time { return time.Now().UTC() }

// FixedClock returns a Clock that always reports t
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
