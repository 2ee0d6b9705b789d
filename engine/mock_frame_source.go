package engine

import "sync/atomic"

// ManualFrameSource is a deterministic FrameSource for tests
// Frames fire only when Fire is called
type ManualFrameSource struct {
	callbacks  frameCallbacks
	subscribes atomic.Int64
	cancels    atomic.Int64
}

var _ FrameSource = (*ManualFrameSource)(nil)

// NewManualFrameSource creates a frame source with no pending callbacks
func NewManualFrameSource() *ManualFrameSource {
	return &ManualFrameSource{}
}

// Subscribe implements FrameSource
func (m *ManualFrameSource) Subscribe(cb FrameCallback) FrameHandle {
	m.subscribes.Add(1)
	return m.callbacks.subscribe(cb)
}

// Cancel implements FrameSource
func (m *ManualFrameSource) Cancel(h FrameHandle) {
	if m.callbacks.cancel(h) {
		m.cancels.Add(1)
	}
}

// Fire delivers one host frame at raw time and returns how many callbacks ran
func (m *ManualFrameSource) Fire(raw float64) int {
	return m.callbacks.fire(raw)
}

// FireAll delivers one frame per timestamp
func (m *ManualFrameSource) FireAll(raws ...float64) {
	for _, raw := range raws {
		m.callbacks.fire(raw)
	}
}

// Pending returns the number of live subscriptions
func (m *ManualFrameSource) Pending() int {
	return m.callbacks.count()
}

// Subscribes returns the total number of Subscribe calls
func (m *ManualFrameSource) Subscribes() int {
	return int(m.subscribes.Load())
}

// Cancels returns the number of Cancel calls that removed a live subscription
func (m *ManualFrameSource) Cancels() int {
	return int(m.cancels.Load())
}
