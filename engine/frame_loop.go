package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/mapsim/core"
)

const (
	// DefaultFPS matches a typical display refresh
	DefaultFPS = 60
	// mailboxSize bounds posted commands awaiting the loop goroutine
	mailboxSize = 64
)

// FrameLoop is the host animation-frame source for non-browser hosts
// One goroutine fires frame callbacks at a fixed rate and runs posted commands, so everything
// reached from a callback or a posted command is confined to that goroutine
type FrameLoop struct {
	interval     time.Duration
	timeProvider TimeProvider
	origin       time.Time
	logger       *zap.Logger

	callbacks  frameCallbacks
	afterFrame []func(raw float64)

	mailbox   chan func()
	startOnce sync.Once
	stopOnce  sync.Once
	stopChan  chan struct{}
	done      chan struct{}
	running   atomic.Bool
	// Set while a frame or posted command runs on the loop goroutine
	dispatching atomic.Bool

	frameCount atomic.Uint64
}

var _ FrameSource = (*FrameLoop)(nil)

// NewFrameLoop creates a stopped loop firing fps frames per second
// Raw timestamps are milliseconds since the loop was created, read from tp
func NewFrameLoop(fps int, tp TimeProvider, logger *zap.Logger) *FrameLoop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	if tp == nil {
		tp = NewMonotonicTimeProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FrameLoop{
		interval:     time.Second / time.Duration(fps),
		timeProvider: tp,
		origin:       tp.Now(),
		logger:       logger,
		mailbox:      make(chan func(), mailboxSize),
		stopChan:     make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Interval returns the frame period
func (l *FrameLoop) Interval() time.Duration {
	return l.interval
}

// Now returns the raw host timestamp in milliseconds
func (l *FrameLoop) Now() float64 {
	return float64(l.timeProvider.Now().Sub(l.origin)) / float64(time.Millisecond)
}

// Subscribe implements FrameSource; the callback fires on the next frame
func (l *FrameLoop) Subscribe(cb FrameCallback) FrameHandle {
	return l.callbacks.subscribe(cb)
}

// Cancel implements FrameSource
func (l *FrameLoop) Cancel(h FrameHandle) {
	l.callbacks.cancel(h)
}

// OnAfterFrame registers fn to run after the frame callbacks of every frame, must be called before Start
func (l *FrameLoop) OnAfterFrame(fn func(raw float64)) {
	l.afterFrame = append(l.afterFrame, fn)
}

// Post queues fn to run on the loop goroutine
// Returns false if the loop is stopped or the mailbox is full
func (l *FrameLoop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case <-l.stopChan:
		return false
	default:
	}
	select {
	case l.mailbox <- fn:
		return true
	default:
		l.logger.Warn("frame loop mailbox full, command dropped")
		return false
	}
}

// Start launches the loop goroutine; repeated calls have no effect
func (l *FrameLoop) Start() {
	l.startOnce.Do(func() {
		l.running.Store(true)
		l.logger.Info("frame loop started", zap.Duration("interval", l.interval))
		core.Go(l.loop)
	})
}

// Stop halts the loop and waits for it to exit if it was started
// Called from a frame callback or posted command it only signals: the loop exits once that call returns,
// and callers that must observe the exit wait on Done
func (l *FrameLoop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopChan)
	})
	if l.running.Load() && !l.dispatching.Load() {
		<-l.done
	}
}

// Done closes when the loop goroutine exits
func (l *FrameLoop) Done() <-chan struct{} {
	return l.done
}

// Frames returns the number of frames fired so far
func (l *FrameLoop) Frames() uint64 {
	return l.frameCount.Load()
}

func (l *FrameLoop) loop() {
	defer func() {
		l.logger.Info("frame loop stopped", zap.Uint64("frames", l.frameCount.Load()))
		close(l.done)
	}()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		// A stop requested during the last dispatch wins over pending frames and commands
		select {
		case <-l.stopChan:
			return
		default:
		}

		select {
		case <-l.stopChan:
			return
		case fn := <-l.mailbox:
			l.dispatch(fn)
		case <-ticker.C:
			l.dispatch(l.frame)
		}
	}
}

func (l *FrameLoop) dispatch(fn func()) {
	l.dispatching.Store(true)
	defer l.dispatching.Store(false)
	fn()
}

// frame fires every pending callback with one shared timestamp, then the after-frame hooks
func (l *FrameLoop) frame() {
	raw := l.Now()
	l.callbacks.fire(raw)
	for _, fn := range l.afterFrame {
		fn(raw)
	}
	l.frameCount.Add(1)
}
