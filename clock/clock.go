// Package clock abstracts wall-clock time so the engine can be driven by a mock in tests
package clock

import "time"

// Provider supplies the current time
type Provider interface {
	Now() time.Time
}

// System provides the real system time with monotonic clock readings
type System struct{}

// New creates a system time provider
func New() *System {
	return &System{}
}

// Now returns the current time with monotonic clock reading
func (System) Now() time.Time {
	return time.Now()
}
