package engine

// Phase is the lifecycle state of the clock scheduler
type Phase uint8

const (
	PhaseStopped Phase = iota
	PhaseRunning
	PhasePaused
)

func (p Phase) String() string {
	switch p {
	case PhaseStopped:
		return "stopped"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// ClockState holds the scheduler's flags and timing fields
// The three tick fields are valid only while hasTick is set, so they are null or non-null together
type ClockState struct {
	Running bool
	Paused  bool
	Handle  FrameHandle // Live subscription, zero unless Running

	hasTick         bool
	currentTick     float64
	prevTick        float64
	tickStartOffset float64

	// Set by a Run that follows a Pause, consumed by the next normalized tick
	resumePending bool
}

// Phase derives the lifecycle state from the flags
func (s *ClockState) Phase() Phase {
	switch {
	case s.Running:
		return PhaseRunning
	case s.Paused:
		return PhasePaused
	default:
		return PhaseStopped
	}
}

// Pristine reports whether the state equals a freshly reset clock
func (s *ClockState) Pristine() bool {
	return !s.Running && !s.Paused && !s.hasTick
}

// ClockSnapshot is a read-only copy of ClockState with nil for absent ticks
type ClockSnapshot struct {
	Running         bool
	Paused          bool
	CurrentTick     *float64
	PrevTick        *float64
	TickStartOffset *float64
}

// Snapshot copies the state for observers and tests
func (s *ClockState) Snapshot() ClockSnapshot {
	snap := ClockSnapshot{
		Running: s.Running,
		Paused:  s.Paused,
	}
	if s.hasTick {
		current, prev, offset := s.currentTick, s.prevTick, s.tickStartOffset
		snap.CurrentTick = &current
		snap.PrevTick = &prev
		snap.TickStartOffset = &offset
	}
	return snap
}
