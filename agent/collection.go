// Package agent holds the agents the clock scheduler drives and the collection that owns them
package agent

import (
	"sort"
	"sync"

	"github.com/lixenwraith/mapsim/engine"
)

// Member is an agent that can be addressed by identity
type Member interface {
	engine.Agent
	engine.Identified
}

// Collection is the addressable agent set handed to the scheduler
// Iteration works on a snapshot, so members may delete themselves while being visited
type Collection struct {
	mu      sync.RWMutex
	members map[string]Member
}

var _ engine.AgentCollection = (*Collection)(nil)

// NewCollection creates an empty collection
func NewCollection() *Collection {
	return &Collection{members: make(map[string]Member)}
}

// Add inserts m, replacing any member with the same id, and reports whether it was new
func (c *Collection) Add(m Member) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, existed := c.members[m.ID()]
	c.members[m.ID()] = m
	return !existed
}

// Get returns the member with id
func (c *Collection) Get(id string) (Member, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.members[id]
	return m, ok
}

// Remove drops the member with id and reports whether it was present
func (c *Collection) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.members[id]; !ok {
		return false
	}
	delete(c.members, id)
	return true
}

// Len returns the number of members
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.members)
}

// ForEach implements engine.AgentCollection
func (c *Collection) ForEach(fn func(engine.Agent) error) error {
	c.mu.RLock()
	snapshot := make([]Member, 0, len(c.members))
	for _, m := range c.members {
		snapshot = append(snapshot, m)
	}
	c.mu.RUnlock()

	// Id order keeps logs and tests reproducible; callers must not depend on it
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ID() < snapshot[j].ID() })

	for _, m := range snapshot {
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}
