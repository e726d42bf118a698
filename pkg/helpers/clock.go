package helpers

import "time"

// Clock abstracts wall time so services and the rate limiter can be
// tested with a controlled clock.
type Clock func() time.Time

// SystemClock returns the real wall time.
func SystemClock() time.Time { return time.Now() }
