package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// SpeakerSink plays streams on the system audio device through one shared mixer
type SpeakerSink struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewSpeakerSink opens the audio device
func NewSpeakerSink() (*SpeakerSink, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	s := &SpeakerSink{mixer: &beep.Mixer{}, initialized: true}
	speaker.Play(s.mixer)
	return s, nil
}

// Play implements Sink
func (s *SpeakerSink) Play(st beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	// The mixer is read by the speaker goroutine
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// Close stops playback and releases the device
func (s *SpeakerSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	s.initialized = false
}
