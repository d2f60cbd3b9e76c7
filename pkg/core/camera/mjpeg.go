package camera

import "bytes"

// JPEG frame delimiters in an MJPEG byte stream.
var (
	jpegSOI = []byte{0xff, 0xd8}
	jpegEOI = []byte{0xff, 0xd9}
)

const (
	// DefaultMaxAccumBytes caps the demuxer's internal accumulation buffer.
	// When no frame boundary is found before the cap is reached, stale
	// bytes are dropped rather than growing without bound.
	DefaultMaxAccumBytes = 2 << 20

	// DefaultKeepTailBytes is how much of the accumulation buffer survives
	// an overflow, so a frame spanning the drop point can still resync.
	DefaultKeepTailBytes = 1024
)

// Demuxer splits a continuous MJPEG byte stream into discrete JPEG frames.
// Frames may span arbitrarily many Feed calls; garbage before the first
// start marker is discarded.
type Demuxer struct {
	// MaxAccumBytes and KeepTailBytes default to the package constants
	// when zero.
	MaxAccumBytes int
	KeepTailBytes int

	buf []byte
}

// Feed appends chunk to the internal buffer and returns every frame
// completed by it, in stream order. Each returned frame is freshly
// allocated and safe to retain.
func (d *Demuxer) Feed(chunk []byte) [][]byte {
	maxAccum := d.MaxAccumBytes
	if maxAccum <= 0 {
		maxAccum = DefaultMaxAccumBytes
	}
	keepTail := d.KeepTailBytes
	if keepTail <= 0 {
		keepTail = DefaultKeepTailBytes
	}

	d.buf = append(d.buf, chunk...)

	var frames [][]byte
	for {
		start := bytes.Index(d.buf, jpegSOI)
		if start < 0 {
			// No start marker anywhere: everything buffered is garbage,
			// except a possible trailing 0xff that could begin a marker.
			if len(d.buf) > 0 && d.buf[len(d.buf)-1] == 0xff {
				d.buf = d.buf[len(d.buf)-1:]
			} else {
				d.buf = nil
			}
			return frames
		}
		end := bytes.Index(d.buf[start:], jpegEOI)
		if end < 0 {
			// Partial frame: drop the garbage prefix and wait for more,
			// unless the buffer has outgrown its cap.
			d.buf = d.buf[start:]
			if len(d.buf) > maxAccum {
				d.buf = append([]byte(nil), d.buf[len(d.buf)-keepTail:]...)
			}
			return frames
		}
		end = start + end + len(jpegEOI)
		frame := make([]byte, end-start)
		copy(frame, d.buf[start:end])
		frames = append(frames, frame)
		d.buf = d.buf[end:]
	}
}

// Buffered reports the current accumulation size, for tests and stats.
func (d *Demuxer) Buffered() int {
	return len(d.buf)
}
