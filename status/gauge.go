package status

import (
	"math"
	"sync/atomic"
)

// Gauge is a float64 metric updated without locks; the zero value reads 0
type Gauge struct {
	bits atomic.Uint64
}

func (g *Gauge) Store(v float64) { g.bits.Store(math.Float64bits(v)) }

func (g *Gauge) Load() float64 { return math.Float64frombits(g.bits.Load()) }

// Max raises the gauge to v if v is larger and reports whether it did
func (g *Gauge) Max(v float64) bool {
	for {
		old := g.bits.Load()
		if math.Float64frombits(old) >= v {
			return false
		}
		if g.bits.CompareAndSwap(old, math.Float64bits(v)) {
			return true
		}
	}
}
