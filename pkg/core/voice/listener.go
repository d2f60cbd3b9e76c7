package voice

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/AnuragGaddu/Narrate/pkg/core/voice/stt"
)

const (
	// DefaultTriggerPhrase fires the capture pipeline when heard.
	DefaultTriggerPhrase = "capture image"

	// DefaultCooldown suppresses re-triggers right after a fire.
	DefaultCooldown = 3 * time.Second

	// DefaultChunkBytes is one mic read: 4000 samples of 16-bit mono
	// PCM at 16 kHz, about 250 ms of audio.
	DefaultChunkBytes = 8000
)

// maxConsecutiveErrors is how many recognizer failures in a row the
// listener tolerates before disabling itself.
const maxConsecutiveErrors = 10

// ListenerConfig configures the trigger-phrase listener.
type ListenerConfig struct {
	TriggerPhrase string
	Cooldown      time.Duration
	ChunkBytes    int
}

func (c *ListenerConfig) withDefaults() {
	if c.TriggerPhrase == "" {
		c.TriggerPhrase = DefaultTriggerPhrase
	}
	c.TriggerPhrase = strings.ToLower(c.TriggerPhrase)
	if c.Cooldown <= 0 {
		c.Cooldown = DefaultCooldown
	}
	if c.ChunkBytes <= 0 {
		c.ChunkBytes = DefaultChunkBytes
	}
}

// Listener pumps mic audio through a speech recognizer and fires the
// pipeline when the trigger phrase appears in a transcript. While the
// pipeline is busy, audio is still drained so the capture subprocess
// never blocks, but transcripts are ignored.
type Listener struct {
	cfg    ListenerConfig
	mic    io.ReadCloser
	rec    stt.Recognizer
	logger *slog.Logger

	// Busy reports whether the pipeline currently holds the run lock.
	Busy func() bool

	// Beep plays the acknowledgement tone. Called on its own goroutine.
	Beep func()

	// Trigger starts the pipeline. Called on its own goroutine.
	Trigger func()

	lastFire time.Time
}

// NewListener wires a listener over a mic stream and recognizer. The
// mic is owned by the listener and closed when Run returns.
func NewListener(cfg ListenerConfig, mic io.ReadCloser, rec stt.Recognizer, logger *slog.Logger) *Listener {
	cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{cfg: cfg, mic: mic, rec: rec, logger: logger}
}

// Run drains mic audio until ctx is cancelled or the mic stream ends.
// Recognizer failures are tolerated up to a limit, after which the
// listener disables itself rather than spinning.
func (l *Listener) Run(ctx context.Context) {
	defer l.mic.Close()

	l.logger.Info("voice listener started",
		"phrase", l.cfg.TriggerPhrase,
		"cooldown", l.cfg.Cooldown,
	)

	buf := make([]byte, l.cfg.ChunkBytes)
	errStreak := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, err := io.ReadFull(l.mic, buf); err != nil {
			if ctx.Err() == nil {
				l.logger.Warn("mic stream ended, voice trigger disabled", "error", err)
			}
			return
		}

		res, err := l.rec.Accept(ctx, buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			errStreak++
			if errStreak >= maxConsecutiveErrors {
				l.logger.Warn("recognizer failing repeatedly, voice trigger disabled", "error", err)
				return
			}
			l.logger.Warn("recognizer error", "error", err)
			continue
		}
		errStreak = 0

		if l.Busy != nil && l.Busy() {
			continue
		}
		if res.Text == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(res.Text), l.cfg.TriggerPhrase) {
			continue
		}
		if time.Since(l.lastFire) < l.cfg.Cooldown {
			continue
		}
		l.fire(ctx, res)
	}
}

func (l *Listener) fire(ctx context.Context, res stt.Result) {
	l.lastFire = time.Now()
	l.logger.Info("trigger phrase heard", "text", res.Text, "final", res.Final)

	if l.Beep != nil {
		go l.Beep()
	}
	if l.Trigger != nil {
		go l.Trigger()
	}

	// Drop accumulated transcript so a lingering partial containing the
	// phrase cannot re-fire after the cooldown.
	if err := l.rec.Reset(ctx); err != nil {
		l.logger.Warn("recognizer reset failed", "error", err)
	}
}
