package agent

import (
	"errors"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/mapsim/config"
	"github.com/lixenwraith/mapsim/engine"
	"github.com/lixenwraith/mapsim/surface"
)

func newSurface(t *testing.T) *surface.Surface {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)
	return surface.New(screen, nil)
}

func straight(length float64) Route {
	return NewRoute([]surface.Point{{X: 0, Y: 0}, {X: length, Y: 0}})
}

func TestRoutePointAt(t *testing.T) {
	r := NewRoute([]surface.Point{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 3, Y: 10}})
	assert.Equal(t, 11.0, r.Length())

	assert.Equal(t, surface.Point{X: 0, Y: 0}, r.PointAt(-1))
	assert.Equal(t, surface.Point{X: 3, Y: 10}, r.PointAt(50))

	mid := r.PointAt(2.5)
	assert.InDelta(t, 1.5, mid.X, 1e-9)
	assert.InDelta(t, 2.0, mid.Y, 1e-9)

	second := r.PointAt(8)
	assert.InDelta(t, 3.0, second.X, 1e-9)
	assert.InDelta(t, 7.0, second.Y, 1e-9)

	assert.Equal(t, surface.Point{}, Route{}.PointAt(3))
}

func TestWalkerStepsByPrecision(t *testing.T) {
	surf := newSurface(t)
	coll := NewCollection()
	w, err := NewWalker("w1", 'a', straight(100), 2, 0, surf, coll)
	require.NoError(t, err)

	require.NoError(t, w.Update(1.5, 0.5, 3))
	assert.InDelta(t, 3.0, w.Distance(), 1e-9)

	f, ok := surf.Feature("w1")
	require.True(t, ok)
	assert.InDelta(t, 3.0, f.Pos.X, 1e-9)
}

func TestWalkerCarriesRemainder(t *testing.T) {
	surf := newSurface(t)
	w, err := NewWalker("w1", 'a', straight(100), 1, 0, surf, NewCollection())
	require.NoError(t, err)

	require.NoError(t, w.Update(0.7, 0.5, 1))
	assert.InDelta(t, 0.5, w.Distance(), 1e-9)

	require.NoError(t, w.Update(0.4, 0.5, 0))
	assert.InDelta(t, 1.0, w.Distance(), 1e-9, "carried 0.2 + 0.4 makes one extra step")
}

func TestWalkerReflectsAtEnds(t *testing.T) {
	surf := newSurface(t)
	w, err := NewWalker("w1", 'a', straight(10), 1, 8, surf, NewCollection())
	require.NoError(t, err)
	assert.Equal(t, 8.0, w.Distance())

	require.NoError(t, w.Update(5, 1, 5))
	assert.InDelta(t, 7.0, w.Distance(), 1e-9)

	require.NoError(t, w.Update(9, 1, 9))
	assert.InDelta(t, 2.0, w.Distance(), 1e-9)
}

func TestWalkerDelete(t *testing.T) {
	surf := newSurface(t)
	coll := NewCollection()
	w, err := NewWalker("w1", 'a', straight(10), 1, 0, surf, coll)
	require.NoError(t, err)
	require.Equal(t, 1, coll.Len())

	w.Delete()
	w.Delete()

	assert.Zero(t, coll.Len())
	assert.Zero(t, surf.Count(surface.KindAgent))
	assert.ErrorIs(t, w.Update(1, 1, 1), ErrDeleted)
}

func TestWalkerMissingFeatureFailsUpdate(t *testing.T) {
	surf := newSurface(t)
	w, err := NewWalker("w1", 'a', straight(10), 1, 0, surf, NewCollection())
	require.NoError(t, err)

	surf.Remove("w1")
	assert.ErrorIs(t, w.Update(1, 1, 1), surface.ErrUnknownFeature)
}

func TestNewWalkerDuplicate(t *testing.T) {
	surf := newSurface(t)
	coll := NewCollection()
	_, err := NewWalker("w1", 'a', straight(10), 1, 0, surf, coll)
	require.NoError(t, err)

	_, err = NewWalker("w1", 'b', straight(10), 1, 0, surf, coll)
	assert.ErrorIs(t, err, surface.ErrDuplicateFeature)
	assert.Equal(t, 1, coll.Len())
}

func TestCollectionForEachStopsOnError(t *testing.T) {
	surf := newSurface(t)
	coll := NewCollection()
	for _, id := range []string{"c", "a", "b"} {
		_, err := NewWalker(id, 'x', straight(5), 1, 0, surf, coll)
		require.NoError(t, err)
	}

	var visited []string
	stop := errors.New("stop")
	err := coll.ForEach(func(a engine.Agent) error {
		visited = append(visited, a.(Member).ID())
		if len(visited) == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Len(t, visited, 2)

	_, ok := coll.Get("b")
	assert.True(t, ok)
}

func TestSpawnDefaultScenario(t *testing.T) {
	cfg := config.Default()
	surf := newSurface(t)
	coll := NewCollection()

	require.NoError(t, Spawn(cfg.Agents, cfg.Map.Streets, surf, coll))
	assert.Equal(t, len(cfg.Agents), coll.Len())
	assert.Equal(t, len(cfg.Agents), surf.Count(surface.KindAgent))

	err := Spawn([]config.AgentConfig{{ID: "lost", Street: "nowhere"}}, cfg.Map.Streets, surf, coll)
	assert.ErrorIs(t, err, config.ErrUnknownStreet)
}

func TestSchedulerResetDeletesWalkers(t *testing.T) {
	cfg := config.Default()
	surf := newSurface(t)
	coll := NewCollection()
	require.NoError(t, Spawn(cfg.Agents, cfg.Map.Streets, surf, coll))

	sc, err := cfg.Scheduler()
	require.NoError(t, err)
	frames := engine.NewManualFrameSource()
	cs, err := engine.NewClockScheduler(frames, coll, sc)
	require.NoError(t, err)

	cs.Run()
	frames.FireAll(1000, 1100, 1200)

	w, ok := coll.Get("w1")
	require.True(t, ok)
	assert.InDelta(t, 1.6, w.(*Walker).Distance(), 1e-9, "0.2s at 8 cells/s")

	cs.Reset()
	assert.Zero(t, coll.Len())
	assert.Zero(t, surf.Count(surface.KindAgent))
	assert.Zero(t, frames.Pending())
}
