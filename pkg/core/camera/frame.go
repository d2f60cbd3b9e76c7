// Package camera provides the live-stream frame buffer, the MJPEG stream
// demultiplexer and the still-capture fallback that together produce frames
// for inference.
package camera

import (
	"sync"
	"time"
)

// Frame is one still image taken from the camera. JPEG always holds the
// encoded bytes; Width and Height are populated once the frame has been
// decoded for validation.
type Frame struct {
	JPEG   []byte
	Width  int
	Height int
}

// Buffer holds the most recent frame from the live stream. Writes are
// last-write-wins; no history is kept. Stored frames are freshly allocated
// by the demuxer and never mutated afterwards, so Latest can hand out the
// stored slice without copying.
type Buffer struct {
	mu   sync.Mutex
	jpeg []byte
}

// Store replaces the buffered frame.
func (b *Buffer) Store(jpeg []byte) {
	b.mu.Lock()
	b.jpeg = jpeg
	b.mu.Unlock()
}

// Latest returns the buffered frame, or nil when no frame has arrived yet.
func (b *Buffer) Latest() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.jpeg
}

// Clear drops the buffered frame, e.g. when the stream ends.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.jpeg = nil
	b.mu.Unlock()
}

// Freeze holds a captured frame that the video feed serves instead of the
// live stream for a bounded window after each capture.
type Freeze struct {
	mu    sync.Mutex
	jpeg  []byte
	until time.Time
	timer *time.Timer
}

// Set installs a frozen frame for the given window. Any previously
// scheduled expiry is cancelled; a single new expiry is scheduled.
func (f *Freeze) Set(jpeg []byte, window time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
	}
	f.jpeg = jpeg
	f.until = time.Now().Add(window)
	f.timer = time.AfterFunc(window, f.expire)
}

func (f *Freeze) expire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !time.Now().Before(f.until) {
		f.jpeg = nil
	}
}

// Current returns the frozen frame while the window is active, else nil.
func (f *Freeze) Current() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.jpeg == nil || !time.Now().Before(f.until) {
		return nil
	}
	return f.jpeg
}
