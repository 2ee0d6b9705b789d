package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeZeroOrigin(t *testing.T) {
	for _, raw := range []float64{0, 1, 1000, 123456.789} {
		pc := NewPausableClock(PauseFreeze)
		elapsed := pc.Normalize(raw)

		assert.Equal(t, 0.0, elapsed)
		current, ok := pc.CurrentTick()
		require.True(t, ok)
		assert.Equal(t, 0.0, current)
		assert.Equal(t, raw, pc.State().tickStartOffset)
	}
}

func TestNormalizeScenario(t *testing.T) {
	pc := NewPausableClock(PauseFreeze)

	var ticks, deltas []float64
	for _, raw := range []float64{1000, 1016, 1033} {
		deltas = append(deltas, pc.Normalize(raw))
		current, _ := pc.CurrentTick()
		ticks = append(ticks, current)
		pc.Commit()
	}

	assert.Equal(t, []float64{0, 16, 33}, ticks)
	assert.Equal(t, []float64{0, 16, 17}, deltas)
}

func TestNormalizeMonotonicWithoutPause(t *testing.T) {
	pc := NewPausableClock(PauseFreeze)
	raws := []float64{500, 500, 512.5, 530, 530.25, 600, 1000}

	last := -1.0
	for _, raw := range raws {
		pc.Normalize(raw)
		current, _ := pc.CurrentTick()
		assert.GreaterOrEqual(t, current, last)
		last = current
		pc.Commit()
	}
	assert.Equal(t, 500.0, last)
}

func TestNormalizeWithoutCommitAccumulatesWindow(t *testing.T) {
	pc := NewPausableClock(PauseFreeze)
	pc.Normalize(10)
	pc.Commit()

	assert.Equal(t, 5.0, pc.Normalize(15))
	// Uncommitted tick: the next window still starts at the last committed tick
	assert.Equal(t, 12.0, pc.Normalize(22))
}

func TestNormalizeBackwardsRawClamps(t *testing.T) {
	pc := NewPausableClock(PauseFreeze)
	pc.Normalize(100)
	pc.Commit()
	pc.Normalize(150)
	pc.Commit()

	elapsed := pc.Normalize(120)
	assert.Equal(t, 0.0, elapsed)
	current, _ := pc.CurrentTick()
	assert.Equal(t, 50.0, current)
}

func pauseScenario(t *testing.T, mode PauseMode) (resumeTick, resumeElapsed, nextTick float64) {
	t.Helper()
	pc := NewPausableClock(mode)

	pc.Normalize(1000)
	pc.Commit()
	pc.Normalize(1050)
	pc.Commit()
	current, _ := pc.CurrentTick()
	require.Equal(t, 50.0, current)

	pc.Pause()
	pc.Resume()
	require.False(t, pc.State().Paused)

	// Unpaused, this raw time would be tick 80
	resumeElapsed = pc.Normalize(1080)
	resumeTick, _ = pc.CurrentTick()
	pc.Commit()

	pc.Normalize(1090)
	nextTick, _ = pc.CurrentTick()
	return resumeTick, resumeElapsed, nextTick
}

func TestPauseResumeFreeze(t *testing.T) {
	resumeTick, resumeElapsed, nextTick := pauseScenario(t, PauseFreeze)

	assert.Equal(t, 50.0, resumeTick, "paused interval must not count as simulation time")
	assert.Equal(t, 0.0, resumeElapsed)
	assert.Equal(t, 60.0, nextTick)
}

func TestPauseResumeLiteral(t *testing.T) {
	resumeTick, resumeElapsed, nextTick := pauseScenario(t, PauseLiteral)

	assert.Equal(t, 80.0, resumeTick, "literal mode lets time jump across the pause")
	assert.Equal(t, 30.0, resumeElapsed)
	assert.Equal(t, 90.0, nextTick)
}

func TestNormalizeWhilePausedResumes(t *testing.T) {
	pc := NewPausableClock(PauseFreeze)
	pc.Normalize(0)
	pc.Commit()
	pc.Normalize(20)
	pc.Commit()
	pc.Pause()

	assert.Equal(t, 0.0, pc.Normalize(70))
	assert.False(t, pc.State().Paused)
	assert.Equal(t, PhaseStopped, pc.State().Phase())
}

func TestResetNullsTicksTogether(t *testing.T) {
	pc := NewPausableClock(PauseFreeze)
	pc.Normalize(42)
	pc.Commit()

	snap := pc.State().Snapshot()
	require.NotNil(t, snap.CurrentTick)
	require.NotNil(t, snap.PrevTick)
	require.NotNil(t, snap.TickStartOffset)

	pc.Reset()
	snap = pc.State().Snapshot()
	assert.Nil(t, snap.CurrentTick)
	assert.Nil(t, snap.PrevTick)
	assert.Nil(t, snap.TickStartOffset)
	assert.True(t, pc.State().Pristine())

	pc.Commit()
	assert.True(t, pc.State().Pristine())
}

func TestParsePauseMode(t *testing.T) {
	mode, err := ParsePauseMode("")
	require.NoError(t, err)
	assert.Equal(t, PauseFreeze, mode)

	mode, err = ParsePauseMode(" Literal ")
	require.NoError(t, err)
	assert.Equal(t, PauseLiteral, mode)
	assert.Equal(t, "literal", mode.String())

	_, err = ParsePauseMode("rewind")
	assert.Error(t, err)
}
