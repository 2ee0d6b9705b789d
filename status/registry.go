package status

import "sync/atomic"

// Metric keys published by the clock scheduler
const (
	KeyTicks         = "clock.ticks"
	KeySteps         = "clock.steps"
	KeyAgentsUpdated = "agents.updated"
	KeyAgentsFailed  = "agents.failed"
	KeyFrameErrors   = "clock.frame_errors"
	KeySimTime       = "clock.sim_time"
	KeyLastElapsed   = "clock.last_elapsed"
	KeyPeakElapsed   = "clock.peak_elapsed"
)

// Registry is the metrics facade shared by the scheduler and the status line
// Writers cache pointers once; per-tick updates touch atomics only
type Registry struct {
	Ints   *MetricMap[atomic.Int64]
	Floats *MetricMap[Gauge]
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		Ints:   NewMetricMap[atomic.Int64](),
		Floats: NewMetricMap[Gauge](),
	}
}

// Int reads an integer metric, zero when never written
func (r *Registry) Int(key string) int64 {
	if !r.Ints.Has(key) {
		return 0
	}
	return r.Ints.Get(key).Load()
}

// Float reads a float metric, zero when never written
func (r *Registry) Float(key string) float64 {
	if !r.Floats.Has(key) {
		return 0
	}
	return r.Floats.Get(key).Load()
}

// Reset zeroes every registered metric without dropping cached pointers
func (r *Registry) Reset() {
	r.Ints.Range(func(_ string, v *atomic.Int64) { v.Store(0) })
	r.Floats.Range(func(_ string, v *Gauge) { v.Store(0) })
}

// TotalCount returns the number of registered metrics
func (r *Registry) TotalCount() int {
	return r.Ints.Count() + r.Floats.Count()
}
