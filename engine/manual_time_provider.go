package engine

import (
	"sync/atomic"
	"time"
)

// ManualTimeProvider is a TimeProvider that moves only when told to
// Readings are base plus an offset, which may go negative to model a host clock stepping back
type ManualTimeProvider struct {
	base   time.Time
	offset atomic.Int64
}

var _ TimeProvider = (*ManualTimeProvider)(nil)

// NewManualTimeProvider creates a provider reading base until advanced
func NewManualTimeProvider(base time.Time) *ManualTimeProvider {
	return &ManualTimeProvider{base: base}
}

func (p *ManualTimeProvider) Now() time.Time {
	return p.base.Add(time.Duration(p.offset.Load()))
}

// Advance moves the reading by d and returns it
func (p *ManualTimeProvider) Advance(d time.Duration) time.Time {
	return p.base.Add(time.Duration(p.offset.Add(int64(d))))
}

// AdvanceMillis moves the reading by ms host milliseconds, matching FrameLoop raw units
func (p *ManualTimeProvider) AdvanceMillis(ms float64) time.Time {
	return p.Advance(time.Duration(ms * float64(time.Millisecond)))
}
