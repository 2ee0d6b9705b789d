package agent

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/mapsim/config"
	"github.com/lixenwraith/mapsim/surface"
)

// ErrDeleted is returned by updates reaching a walker after its Delete
var ErrDeleted = errors.New("agent deleted")

// Canvas is the part of the drawing surface a walker draws itself on
type Canvas interface {
	AddAgent(id surface.FeatureID, glyph rune, pos surface.Point) error
	Move(id surface.FeatureID, pos surface.Point) error
	Remove(id surface.FeatureID) bool
}

// Walker paces back and forth along a route in fixed-size movement sub-steps
type Walker struct {
	id     string
	glyph  rune
	route  Route
	speed  float64 // Route units per simulation second
	dist   float64
	dir    float64
	carry  float64 // Elapsed time not yet spent on a whole sub-step
	canvas Canvas
	owner  *Collection

	deleted bool
}

// NewWalker places a walker offset along route and registers it with canvas and owner
func NewWalker(id string, glyph rune, route Route, speed, offset float64, canvas Canvas, owner *Collection) (*Walker, error) {
	w := &Walker{
		id:     id,
		glyph:  glyph,
		route:  route,
		speed:  speed,
		dir:    1,
		canvas: canvas,
		owner:  owner,
	}
	w.advance(offset)

	if err := canvas.AddAgent(surface.FeatureID(id), glyph, w.Position()); err != nil {
		return nil, fmt.Errorf("place walker: %w", err)
	}
	owner.Add(w)
	return w, nil
}

// ID implements engine.Identified
func (w *Walker) ID() string { return w.id }

// Position returns the current point on the route
func (w *Walker) Position() surface.Point {
	return w.route.PointAt(w.dist)
}

// Distance returns how far along the route the walker is
func (w *Walker) Distance() float64 { return w.dist }

// Update implements engine.Agent
// Leftover time below one precision carries into later ticks so no movement is lost
func (w *Walker) Update(elapsed, precision float64, steps int) error {
	if w.deleted {
		return fmt.Errorf("walker %s: %w", w.id, ErrDeleted)
	}

	w.carry += elapsed - float64(steps)*precision
	if w.carry < 0 {
		w.carry = 0
	}
	if precision > 0 && w.carry >= precision {
		extra := int(w.carry / precision)
		steps += extra
		w.carry -= float64(extra) * precision
	}

	stride := w.speed * precision
	for i := 0; i < steps; i++ {
		w.advance(stride)
	}
	return w.canvas.Move(surface.FeatureID(w.id), w.Position())
}

// Delete implements engine.Agent; repeated calls do nothing
func (w *Walker) Delete() {
	if w.deleted {
		return
	}
	w.deleted = true
	w.canvas.Remove(surface.FeatureID(w.id))
	w.owner.Remove(w.id)
}

// advance moves d along the route, reflecting at either end
func (w *Walker) advance(d float64) {
	length := w.route.Length()
	if length <= 0 {
		return
	}
	w.dist += w.dir * d
	for w.dist < 0 || w.dist > length {
		if w.dist > length {
			w.dist = 2*length - w.dist
			w.dir = -1
		} else {
			w.dist = -w.dist
			w.dir = 1
		}
	}
}

// Spawn creates one walker per agent entry on its configured street
func Spawn(agents []config.AgentConfig, streets []config.StreetConfig, canvas Canvas, owner *Collection) error {
	routes := make(map[string]Route, len(streets))
	for _, st := range streets {
		pts := make([]surface.Point, len(st.Points))
		for i, p := range st.Points {
			pts[i] = surface.Point{X: p[0], Y: p[1]}
		}
		routes[st.ID] = NewRoute(pts)
	}

	for _, a := range agents {
		route, ok := routes[a.Street]
		if !ok {
			return fmt.Errorf("agent %s: %w: %s", a.ID, config.ErrUnknownStreet, a.Street)
		}
		if _, err := NewWalker(a.ID, config.Glyph(a.Glyph, '@'), route, a.Speed, a.Offset, canvas, owner); err != nil {
			return fmt.Errorf("agent %s: %w", a.ID, err)
		}
	}
	return nil
}
