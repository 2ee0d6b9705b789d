package engine

import (
	"fmt"
	"strings"
)

// PauseMode selects how the normalizer treats the first tick after a pause
type PauseMode uint8

const (
	// PauseFreeze removes the paused interval from simulation time
	PauseFreeze PauseMode = iota
	// PauseLiteral lets simulation time jump across the pause; the resume adjustment is always zero
	PauseLiteral
)

func (m PauseMode) String() string {
	if m == PauseLiteral {
		return "literal"
	}
	return "freeze"
}

// ParsePauseMode maps a config string to a PauseMode, empty selects PauseFreeze
func ParsePauseMode(s string) (PauseMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "freeze":
		return PauseFreeze, nil
	case "literal":
		return PauseLiteral, nil
	default:
		return PauseFreeze, fmt.Errorf("unknown pause mode %q", s)
	}
}

// PausableClock turns raw host timestamps into zero-origin simulation time
// Not safe for concurrent use; owned by a ClockScheduler
type PausableClock struct {
	state ClockState
	mode  PauseMode
}

// NewPausableClock creates a clock in the reset state
func NewPausableClock(mode PauseMode) *PausableClock {
	return &PausableClock{mode: mode}
}

// Mode returns the configured pause handling
func (pc *PausableClock) Mode() PauseMode {
	return pc.mode
}

// State exposes the clock state for the owning scheduler
func (pc *PausableClock) State() *ClockState {
	return &pc.state
}

// Normalize folds a raw timestamp into simulation time and returns the time elapsed since PrevTick
// PrevTick is not advanced here; callers Commit once the tick has been consumed
func (pc *PausableClock) Normalize(raw float64) float64 {
	s := &pc.state

	if !s.hasTick {
		s.tickStartOffset = raw
		s.currentTick = 0
		s.prevTick = 0
		s.hasTick = true
		s.resumePending = false
		return 0
	}

	// A direct update while paused resumes the same way a Run does
	resuming := s.resumePending || s.Paused
	var tickAtPause float64
	if resuming {
		tickAtPause = s.currentTick
		s.resumePending = false
		s.Paused = false
	}

	s.currentTick = raw - s.tickStartOffset

	var ticksSincePaused float64
	if resuming && pc.mode == PauseFreeze {
		ticksSincePaused = s.currentTick - tickAtPause
	}
	s.currentTick -= ticksSincePaused
	s.tickStartOffset += ticksSincePaused

	// Host clock stepping backwards must not move simulation time backwards
	if s.currentTick < s.prevTick {
		s.currentTick = s.prevTick
	}

	return s.currentTick - s.prevTick
}

// Commit closes the current tick window
func (pc *PausableClock) Commit() {
	if pc.state.hasTick {
		pc.state.prevTick = pc.state.currentTick
	}
}

// CurrentTick returns the simulation time of the last normalized tick
func (pc *PausableClock) CurrentTick() (float64, bool) {
	return pc.state.currentTick, pc.state.hasTick
}

// Pause freezes the clock until Resume or the next Normalize
// A scheduler owning the clock drops Running before calling it
func (pc *PausableClock) Pause() {
	pc.state.Paused = true
}

// Resume leaves the paused state; the adjustment happens on the next Normalize
func (pc *PausableClock) Resume() {
	if pc.state.Paused {
		pc.state.Paused = false
		pc.state.resumePending = true
	}
}

// Reset returns the clock to its initial null state
func (pc *PausableClock) Reset() {
	pc.state = ClockState{}
}
