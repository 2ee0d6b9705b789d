package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Agent is an independently updating entity advanced once per tick
type Agent interface {
	// Update advances the agent by elapsed simulation time in steps increments of precision
	Update(elapsed, precision float64, steps int) error
	// Delete removes the agent from the simulated world
	Delete()
}

// Identified is implemented by agents that can name themselves in errors and logs
type Identified interface {
	ID() string
}

// AgentCollection enumerates agents owned by an external collaborator
// ForEach stops at and returns the first error returned by fn; iteration order is unspecified
type AgentCollection interface {
	ForEach(fn func(Agent) error) error
}

// FailurePolicy decides what a failing agent update does to the rest of the tick
type FailurePolicy uint8

const (
	// FailFast aborts the tick on the first agent error
	FailFast FailurePolicy = iota
	// Isolate keeps updating the remaining agents and reports all failures together
	Isolate
)

func (p FailurePolicy) String() string {
	if p == Isolate {
		return "isolate"
	}
	return "fail-fast"
}

// ParseFailurePolicy maps a config string to a FailurePolicy, empty selects FailFast
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail-fast", "failfast":
		return FailFast, nil
	case "isolate":
		return Isolate, nil
	default:
		return FailFast, fmt.Errorf("unknown failure policy %q", s)
	}
}

// SubSteps returns how many whole precision-sized movement steps fit in elapsed
// Counts beyond the int range saturate at math.MaxInt
func SubSteps(elapsed, precision float64) int {
	if precision <= 0 || elapsed <= 0 {
		return 0
	}
	q := math.Floor(elapsed / precision)
	switch {
	case math.IsNaN(q):
		return 0
	case q >= float64(math.MaxInt):
		return math.MaxInt
	}
	return int(q)
}

// DispatchResult summarizes one fan-out
type DispatchResult struct {
	Steps   int
	Updated int
	Failed  int
}

// Dispatch calls Update on every agent exactly once with the same elapsed, precision and step count
// Under Isolate the returned error joins every AgentUpdateError of the tick
func Dispatch(elapsed, precision float64, agents AgentCollection, policy FailurePolicy) (DispatchResult, error) {
	res := DispatchResult{Steps: SubSteps(elapsed, precision)}

	var failures []error
	err := agents.ForEach(func(a Agent) error {
		if uerr := a.Update(elapsed, precision, res.Steps); uerr != nil {
			res.Failed++
			wrapped := &AgentUpdateError{AgentID: agentID(a), Err: uerr}
			if policy == FailFast {
				return wrapped
			}
			failures = append(failures, wrapped)
			return nil
		}
		res.Updated++
		return nil
	})
	if err != nil {
		return res, err
	}
	return res, errors.Join(failures...)
}

func agentID(a Agent) string {
	if id, ok := a.(Identified); ok {
		return id.ID()
	}
	return ""
}
