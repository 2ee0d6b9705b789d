package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// SampleRate is the rate every cue is rendered at
const SampleRate = beep.SampleRate(44100)

// envelope fades a stream in and out over a fixed total length
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, duration, attack, release time.Duration) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   SampleRate.N(attack),
		release:  SampleRate.N(release),
		total:    SampleRate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	if e.position >= e.total {
		return 0, false
	}
	if remaining := e.total - e.position; len(samples) > remaining {
		samples = samples[:remaining]
	}

	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if left := e.total - e.position; left < e.release {
			vol = math.Min(vol, float64(left)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// withVolume scales s linearly; zero or less is silent
// math.Log2(0) is -Inf, so silence is requested explicitly
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Note is one tone of a cue
type Note struct {
	Freq     float64
	Duration time.Duration
}

// tone renders a single enveloped sine note
func tone(n Note) (beep.Streamer, error) {
	sine, err := generators.SineTone(SampleRate, n.Freq)
	if err != nil {
		return nil, err
	}
	edge := n.Duration / 8
	return newEnvelope(sine, n.Duration, edge, edge), nil
}

// sequence renders notes back to back at vol
func sequence(notes []Note, vol float64) (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		s, err := tone(n)
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}
	return withVolume(beep.Seq(parts...), vol), nil
}
