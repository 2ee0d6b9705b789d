package engine

import (
	"sort"
	"sync"
)

// FrameHandle identifies one pending frame subscription, zero is never issued
type FrameHandle uint64

// FrameCallback receives the raw host timestamp of the frame it fires in
type FrameCallback func(raw float64)

// FrameSource is the host animation-frame primitive
// Subscriptions are one-shot: a callback fires at most once and must re-subscribe for the next frame
type FrameSource interface {
	Subscribe(cb FrameCallback) FrameHandle
	Cancel(h FrameHandle)
}

// frameCallbacks is the pending-callback table shared by frame source implementations
type frameCallbacks struct {
	mu      sync.Mutex
	next    FrameHandle
	pending map[FrameHandle]FrameCallback
}

func (fc *frameCallbacks) subscribe(cb FrameCallback) FrameHandle {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if fc.pending == nil {
		fc.pending = make(map[FrameHandle]FrameCallback)
	}
	fc.next++
	fc.pending[fc.next] = cb
	return fc.next
}

// cancel reports whether h was still pending
func (fc *frameCallbacks) cancel(h FrameHandle) bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if _, ok := fc.pending[h]; !ok {
		return false
	}
	delete(fc.pending, h)
	return true
}

func (fc *frameCallbacks) count() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.pending)
}

// fire runs every callback pending when the frame began, in subscription order
// Callbacks subscribed during the frame wait for the next one; callbacks cancelled during it never run
func (fc *frameCallbacks) fire(raw float64) int {
	fc.mu.Lock()
	handles := make([]FrameHandle, 0, len(fc.pending))
	for h := range fc.pending {
		handles = append(handles, h)
	}
	fc.mu.Unlock()

	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	fired := 0
	for _, h := range handles {
		fc.mu.Lock()
		cb, ok := fc.pending[h]
		if ok {
			delete(fc.pending, h)
		}
		fc.mu.Unlock()

		if ok {
			cb(raw)
			fired++
		}
	}
	return fired
}
