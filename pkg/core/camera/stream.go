package camera

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// terminateSignal asks the stream subprocess to shut down cleanly before
// Stop escalates to Kill.
var terminateSignal = syscall.SIGTERM

// StreamConfig configures the live camera subprocess.
type StreamConfig struct {
	// Binary is the live-stream capture binary, e.g. "rpicam-vid".
	Binary string
	Width  int
	Height int

	// ReadChunkBytes is the stdout read size. Default 64 KiB.
	ReadChunkBytes int

	MaxAccumBytes int
	KeepTailBytes int

	// StopGrace bounds how long Stop waits after terminate before killing.
	StopGrace time.Duration
}

// Stream supervises the live camera subprocess and demultiplexes its MJPEG
// output into the shared Buffer. The reader goroutine runs for the lifetime
// of the subprocess; when the stream ends or errors the camera is marked
// not ready.
type Stream struct {
	cfg    StreamConfig
	buffer *Buffer
	logger *slog.Logger

	ready atomic.Bool

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

// NewStream creates a stream supervisor writing into buffer.
func NewStream(cfg StreamConfig, buffer *Buffer, logger *slog.Logger) *Stream {
	if cfg.Binary == "" {
		cfg.Binary = "rpicam-vid"
	}
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	if cfg.ReadChunkBytes <= 0 {
		cfg.ReadChunkBytes = 64 << 10
	}
	if cfg.StopGrace <= 0 {
		cfg.StopGrace = 3 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{cfg: cfg, buffer: buffer, logger: logger}
}

// Start launches the subprocess and the reader goroutine. When the stream
// binary is absent the camera stays not-ready and Start reports the error;
// the caller decides whether that is fatal.
func (s *Stream) Start() error {
	if _, err := exec.LookPath(s.cfg.Binary); err != nil {
		return fmt.Errorf("%s not found: %w", s.cfg.Binary, err)
	}

	cmd := exec.Command(s.cfg.Binary,
		"-t", "0",
		"-n",
		"--codec", "mjpeg",
		"-o", "-",
		"--width", strconv.Itoa(s.cfg.Width),
		"--height", strconv.Itoa(s.cfg.Height),
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("open %s stdout: %w", s.cfg.Binary, err)
	}
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", s.cfg.Binary, err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.ready.Store(true)
	s.logger.Info("camera stream started", "binary", s.cfg.Binary, "width", s.cfg.Width, "height", s.cfg.Height)

	go s.readLoop(stdout)
	return nil
}

func (s *Stream) readLoop(r io.Reader) {
	defer func() {
		s.ready.Store(false)
		s.buffer.Clear()
		s.mu.Lock()
		done := s.done
		s.mu.Unlock()
		if done != nil {
			close(done)
		}
	}()

	demux := Demuxer{
		MaxAccumBytes: s.cfg.MaxAccumBytes,
		KeepTailBytes: s.cfg.KeepTailBytes,
	}
	chunk := make([]byte, s.cfg.ReadChunkBytes)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			for _, frame := range demux.Feed(chunk[:n]) {
				s.buffer.Store(frame)
			}
		}
		if err != nil {
			if err != io.EOF {
				s.logger.Debug("camera stream read ended", "error", err)
			}
			return
		}
	}
}

// Ready reports whether the live stream is producing frames.
func (s *Stream) Ready() bool {
	return s.ready.Load()
}

// WaitFirstFrame blocks until the buffer holds a frame or the timeout
// elapses. It returns whether a frame arrived.
func (s *Stream) WaitFirstFrame(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.buffer.Latest() != nil {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return s.buffer.Latest() != nil
}

// Stop terminates the subprocess: terminate first, then kill after the
// grace period. Safe to call when the stream never started.
func (s *Stream) Stop() {
	s.mu.Lock()
	cmd := s.cmd
	done := s.done
	s.cmd = nil
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return
	}
	_ = cmd.Process.Signal(terminateSignal)
	select {
	case <-done:
	case <-time.After(s.cfg.StopGrace):
		_ = cmd.Process.Kill()
		<-done
	}
	_ = cmd.Wait()
	s.ready.Store(false)
}
