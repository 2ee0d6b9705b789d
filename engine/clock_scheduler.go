package engine

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/lixenwraith/mapsim/status"
)

// SchedulerConfig holds the values fixed when the scheduler is built
type SchedulerConfig struct {
	// MovementPrecision is simulation time per movement sub-step, must be > 0
	MovementPrecision float64
	// UnitScale converts raw host units into simulation units before dispatch, must be > 0
	UnitScale     float64
	PauseMode     PauseMode
	FailurePolicy FailurePolicy
}

// DefaultSchedulerConfig uses host units as simulation units and one unit per sub-step
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		MovementPrecision: 1,
		UnitScale:         1,
		PauseMode:         PauseFreeze,
		FailurePolicy:     FailFast,
	}
}

// Observer is notified after every effective lifecycle transition
type Observer interface {
	OnTransition(from, to Phase)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(from, to Phase)

func (f ObserverFunc) OnTransition(from, to Phase) { f(from, to) }

// Option configures a ClockScheduler
type Option func(*ClockScheduler)

// WithLogger sets the structured logger, nil keeps the no-op logger
func WithLogger(logger *zap.Logger) Option {
	return func(cs *ClockScheduler) {
		if logger != nil {
			cs.logger = logger
		}
	}
}

// WithMetrics publishes tick counters into reg
func WithMetrics(reg *status.Registry) Option {
	return func(cs *ClockScheduler) { cs.metrics = reg }
}

// WithFrameErrorHandler receives errors from ticks driven by the frame source
func WithFrameErrorHandler(fn func(error)) Option {
	return func(cs *ClockScheduler) { cs.onFrameError = fn }
}

// ClockScheduler runs the simulation clock from host animation frames and fans ticks out to agents
// It is not safe for concurrent use: confine it to the goroutine that fires the frame callbacks
type ClockScheduler struct {
	clock  *PausableClock
	frames FrameSource
	agents AgentCollection

	precision float64
	unitScale float64
	policy    FailurePolicy

	tickHook     func()
	onFrameError func(error)
	observers    []Observer

	tickCount uint64

	logger  *zap.Logger
	metrics *status.Registry

	// Cached metric pointers, nil without a registry
	statTicks    *atomic.Int64
	statSteps    *atomic.Int64
	statUpdated  *atomic.Int64
	statFailed   *atomic.Int64
	statFrameErr *atomic.Int64
	statSimTime  *status.Gauge
	statElapsed  *status.Gauge
	statPeak     *status.Gauge
}

// NewClockScheduler validates cfg and creates a stopped scheduler
func NewClockScheduler(frames FrameSource, agents AgentCollection, cfg SchedulerConfig, opts ...Option) (*ClockScheduler, error) {
	if frames == nil {
		return nil, fmt.Errorf("frame source: %w", ErrNilCollaborator)
	}
	if agents == nil {
		return nil, fmt.Errorf("agent collection: %w", ErrNilCollaborator)
	}
	if err := ValidatePrecision(cfg.MovementPrecision); err != nil {
		return nil, err
	}
	if err := ValidateUnitScale(cfg.UnitScale); err != nil {
		return nil, err
	}

	cs := &ClockScheduler{
		clock:     NewPausableClock(cfg.PauseMode),
		frames:    frames,
		agents:    agents,
		precision: cfg.MovementPrecision,
		unitScale: cfg.UnitScale,
		policy:    cfg.FailurePolicy,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cs)
	}
	if cs.onFrameError == nil {
		cs.onFrameError = func(err error) {
			cs.logger.Error("tick failed", zap.Error(err))
		}
	}
	if cs.metrics != nil {
		cs.statTicks = cs.metrics.Ints.Get(status.KeyTicks)
		cs.statSteps = cs.metrics.Ints.Get(status.KeySteps)
		cs.statUpdated = cs.metrics.Ints.Get(status.KeyAgentsUpdated)
		cs.statFailed = cs.metrics.Ints.Get(status.KeyAgentsFailed)
		cs.statFrameErr = cs.metrics.Ints.Get(status.KeyFrameErrors)
		cs.statSimTime = cs.metrics.Floats.Get(status.KeySimTime)
		cs.statElapsed = cs.metrics.Floats.Get(status.KeyLastElapsed)
		cs.statPeak = cs.metrics.Floats.Get(status.KeyPeakElapsed)
	}
	return cs, nil
}

// SetMovementPrecision changes the sub-step size; invalid values leave the current one in place
func (cs *ClockScheduler) SetMovementPrecision(precision float64) error {
	if err := ValidatePrecision(precision); err != nil {
		return err
	}
	cs.precision = precision
	return nil
}

// MovementPrecision returns the sub-step size
func (cs *ClockScheduler) MovementPrecision() float64 {
	return cs.precision
}

// SetTickHook installs fn to run once per tick before agent dispatch, nil removes it
func (cs *ClockScheduler) SetTickHook(fn func()) {
	cs.tickHook = fn
}

// AddObserver registers a lifecycle observer
func (cs *ClockScheduler) AddObserver(o Observer) {
	cs.observers = append(cs.observers, o)
}

// Phase returns the current lifecycle state
func (cs *ClockScheduler) Phase() Phase {
	return cs.clock.state.Phase()
}

// Snapshot returns a copy of the clock state
func (cs *ClockScheduler) Snapshot() ClockSnapshot {
	return cs.clock.state.Snapshot()
}

// TickCount returns the number of completed ticks since the last reset
func (cs *ClockScheduler) TickCount() uint64 {
	return cs.tickCount
}

// Run subscribes to host frames; calling it while running does nothing
func (cs *ClockScheduler) Run() {
	s := &cs.clock.state
	if s.Running {
		return
	}
	from := s.Phase()

	cs.clock.Resume()
	s.Handle = cs.frames.Subscribe(cs.onFrame)
	s.Running = true

	cs.logger.Info("clock started",
		zap.Stringer("from", from),
		zap.Uint64("tick_count", cs.tickCount))
	cs.notify(from, PhaseRunning)
}

// Pause cancels the frame subscription and freezes the clock; no-op unless running
func (cs *ClockScheduler) Pause() {
	s := &cs.clock.state
	if !s.Running {
		return
	}

	cs.frames.Cancel(s.Handle)
	s.Handle = 0
	s.Running = false
	cs.clock.Pause()

	current, _ := cs.clock.CurrentTick()
	cs.logger.Info("clock paused",
		zap.Float64("current_tick", current),
		zap.Uint64("tick_count", cs.tickCount))
	cs.notify(PhaseRunning, PhasePaused)
}

// Reset cancels the subscription, clears all timing state and deletes every agent
// No-op on a clock that is already in its initial state
func (cs *ClockScheduler) Reset() {
	s := &cs.clock.state
	if s.Pristine() {
		return
	}
	from := s.Phase()

	if s.Running {
		cs.frames.Cancel(s.Handle)
	}
	cs.clock.Reset()
	cs.tickCount = 0

	// Subscription is already gone, so no tick can observe the teardown
	deleted := 0
	if err := cs.agents.ForEach(func(a Agent) error {
		a.Delete()
		deleted++
		return nil
	}); err != nil {
		cs.logger.Warn("agent deletion incomplete",
			zap.Int("agents_deleted", deleted),
			zap.Error(err))
	}

	if cs.metrics != nil {
		cs.metrics.Reset()
	}

	cs.logger.Info("clock reset",
		zap.Stringer("from", from),
		zap.Int("agents_deleted", deleted))
	cs.notify(from, PhaseStopped)
}

// Update runs one tick for raw host time: normalize, tick hook, dispatch, commit
// A fail-fast agent error aborts the tick before PrevTick advances
// A direct call on a paused clock resumes time and leaves the scheduler Stopped; observers see Paused to Stopped
func (cs *ClockScheduler) Update(raw float64) error {
	wasPaused := cs.clock.state.Paused
	elapsed := cs.clock.Normalize(raw)
	simElapsed := elapsed * cs.unitScale

	if wasPaused && !cs.clock.state.Paused {
		cs.logger.Info("clock resumed by update", zap.Float64("raw", raw))
		cs.notify(PhasePaused, PhaseStopped)
	}

	if cs.tickHook != nil {
		cs.tickHook()
		// The hook reset the world; nothing is left to dispatch to
		if !cs.clock.state.hasTick {
			return nil
		}
	}

	res, err := Dispatch(simElapsed, cs.precision, cs.agents, cs.policy)
	cs.record(res)
	if err != nil && cs.policy == FailFast {
		return fmt.Errorf("tick %d: %w", cs.tickCount+1, err)
	}

	cs.clock.Commit()
	cs.tickCount++

	if cs.metrics != nil {
		current, _ := cs.clock.CurrentTick()
		cs.statTicks.Store(int64(cs.tickCount))
		cs.statSimTime.Store(current * cs.unitScale)
		cs.statElapsed.Store(simElapsed)
		cs.statPeak.Max(simElapsed)
	}

	if ce := cs.logger.Check(zap.DebugLevel, "tick"); ce != nil {
		current, _ := cs.clock.CurrentTick()
		ce.Write(
			zap.Uint64("tick", cs.tickCount),
			zap.Float64("current_tick", current),
			zap.Float64("elapsed", simElapsed),
			zap.Int("steps", res.Steps),
			zap.Int("agents", res.Updated))
	}

	if err != nil {
		return fmt.Errorf("tick %d: %w", cs.tickCount, err)
	}
	return nil
}

// onFrame is the frame-source callback; it re-subscribes only if the tick left the same subscription live
func (cs *ClockScheduler) onFrame(raw float64) {
	s := &cs.clock.state
	if !s.Running {
		return
	}
	fired := s.Handle

	if err := cs.Update(raw); err != nil {
		if cs.statFrameErr != nil {
			cs.statFrameErr.Add(1)
		}
		cs.onFrameError(err)
	}

	if s.Running && s.Handle == fired {
		s.Handle = cs.frames.Subscribe(cs.onFrame)
	}
}

func (cs *ClockScheduler) record(res DispatchResult) {
	if cs.metrics == nil {
		return
	}
	cs.statSteps.Add(int64(res.Steps))
	cs.statUpdated.Add(int64(res.Updated))
	cs.statFailed.Add(int64(res.Failed))
}

func (cs *ClockScheduler) notify(from, to Phase) {
	for _, o := range cs.observers {
		o.OnTransition(from, to)
	}
}
