// Package audio plays short tones when the simulation clock changes lifecycle phase
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"go.uber.org/zap"

	"github.com/lixenwraith/mapsim/engine"
)

// Cue names a lifecycle sound
type Cue uint8

const (
	CueRun Cue = iota
	CueResume
	CuePause
	CueReset
)

func (c Cue) String() string {
	switch c {
	case CueRun:
		return "run"
	case CueResume:
		return "resume"
	case CuePause:
		return "pause"
	case CueReset:
		return "reset"
	default:
		return "unknown"
	}
}

var cueNotes = map[Cue][]Note{
	CueRun:    {{Freq: 523.25, Duration: 70 * time.Millisecond}, {Freq: 783.99, Duration: 110 * time.Millisecond}},
	CueResume: {{Freq: 659.25, Duration: 90 * time.Millisecond}},
	CuePause:  {{Freq: 392.00, Duration: 140 * time.Millisecond}},
	CueReset:  {{Freq: 783.99, Duration: 70 * time.Millisecond}, {Freq: 523.25, Duration: 70 * time.Millisecond}, {Freq: 261.63, Duration: 140 * time.Millisecond}},
}

// CueFor maps a lifecycle transition to its cue
func CueFor(from, to engine.Phase) (Cue, bool) {
	switch {
	case to == engine.PhaseRunning && from == engine.PhasePaused:
		return CueResume, true
	case to == engine.PhaseRunning:
		return CueRun, true
	case to == engine.PhasePaused:
		return CuePause, true
	case to == engine.PhaseStopped && from != engine.PhaseStopped:
		return CueReset, true
	default:
		return 0, false
	}
}

// Sink accepts rendered streams for playback
type Sink interface {
	Play(s beep.Streamer)
}

// CuePlayer observes the clock scheduler and plays a cue per transition
type CuePlayer struct {
	mu     sync.Mutex
	sink   Sink
	volume float64
	played map[Cue]int
	logger *zap.Logger
}

var _ engine.Observer = (*CuePlayer)(nil)

// NewCuePlayer creates a player writing to sink at volume in [0, 1]
func NewCuePlayer(sink Sink, volume float64, logger *zap.Logger) *CuePlayer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CuePlayer{
		sink:   sink,
		volume: volume,
		played: make(map[Cue]int),
		logger: logger,
	}
}

// OnTransition implements engine.Observer
func (p *CuePlayer) OnTransition(from, to engine.Phase) {
	cue, ok := CueFor(from, to)
	if !ok {
		return
	}
	if err := p.Play(cue); err != nil {
		p.logger.Warn("cue failed", zap.Stringer("cue", cue), zap.Error(err))
	}
}

// Play renders cue and hands it to the sink
func (p *CuePlayer) Play(cue Cue) error {
	notes, ok := cueNotes[cue]
	if !ok {
		return fmt.Errorf("unknown cue %d", cue)
	}
	s, err := sequence(notes, p.volume)
	if err != nil {
		return fmt.Errorf("render %s cue: %w", cue, err)
	}

	p.mu.Lock()
	p.played[cue]++
	p.mu.Unlock()

	p.sink.Play(s)
	return nil
}

// Played returns how many times cue was played
func (p *CuePlayer) Played(cue Cue) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played[cue]
}
