package engine

import "time"

// TimeProvider supplies wall-clock readings to the frame loop
type TimeProvider interface {
	Now() time.Time
}

// MonotonicTimeProvider reads time.Now, which carries the monotonic clock reading used for frame timestamps
type MonotonicTimeProvider struct{}

// NewMonotonicTimeProvider creates the production time provider
func NewMonotonicTimeProvider() *MonotonicTimeProvider {
	return &MonotonicTimeProvider{}
}

// Now returns the current time with monotonic reading
func (p *MonotonicTimeProvider) Now() time.Time {
	return time.Now()
}
