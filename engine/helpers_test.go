package engine

import (
	"errors"
	"fmt"
	"math"
)

type updateCall struct {
	elapsed   float64
	precision float64
	steps     int
}

// recordingAgent captures every call made to it
type recordingAgent struct {
	id      string
	calls   []updateCall
	deletes int
	fail    error
	onCall  func()
}

func (a *recordingAgent) ID() string { return a.id }

func (a *recordingAgent) Update(elapsed, precision float64, steps int) error {
	a.calls = append(a.calls, updateCall{elapsed: elapsed, precision: precision, steps: steps})
	if a.onCall != nil {
		a.onCall()
	}
	return a.fail
}

func (a *recordingAgent) Delete() { a.deletes++ }

// agentList is an AgentCollection over a fixed slice
type agentList []*recordingAgent

func (l agentList) ForEach(fn func(Agent) error) error {
	for _, a := range l {
		if err := fn(a); err != nil {
			return err
		}
	}
	return nil
}

func newAgents(n int) agentList {
	l := make(agentList, n)
	for i := range l {
		l[i] = &recordingAgent{id: fmt.Sprintf("a%d", i)}
	}
	return l
}

var errBoom = errors.New("boom")

func newTestScheduler(agents AgentCollection, mutate func(*SchedulerConfig), opts ...Option) (*ClockScheduler, *ManualFrameSource) {
	frames := NewManualFrameSource()
	cfg := DefaultSchedulerConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	cs, err := NewClockScheduler(frames, agents, cfg, opts...)
	if err != nil {
		panic(err)
	}
	return cs, frames
}

func tickOf(s ClockSnapshot) float64 {
	if s.CurrentTick == nil {
		return -1
	}
	return *s.CurrentTick
}

func nan() float64 { return math.NaN() }

func inf() float64 { return math.Inf(1) }
