package scheduling

import "time"

// Clock abstracts the current time so the negotiation's now-relative checks
// (the 24-hour cancellation window) can be pinned in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock {
	return systemClock{}
}
