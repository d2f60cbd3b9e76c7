// Package audio plays synthesized WAV files on the configured ALSA output
// device and renders the short trigger-acknowledgement beep.
package audio

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/AnuragGaddu/Narrate/pkg/core"
)

// PlayerConfig configures WAV playback.
type PlayerConfig struct {
	// Binary is the playback binary, e.g. "aplay".
	Binary string

	// Device is the ALSA output device, e.g. "plughw:2,0".
	Device string

	// Timeout bounds a single playback run.
	Timeout time.Duration
}

// Player runs the playback subprocess, tracking the process handle so an
// external stop request can terminate it mid-playback. A stop-initiated
// termination is reported as success, distinguished from genuine playback
// failure.
type Player struct {
	cfg    PlayerConfig
	logger *slog.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	stopped bool

	// newCmd is swapped in tests.
	newCmd func(ctx context.Context, path string) *exec.Cmd
}

// NewPlayer creates a player for the configured device.
func NewPlayer(cfg PlayerConfig, logger *slog.Logger) *Player {
	if cfg.Binary == "" {
		cfg.Binary = "aplay"
	}
	if cfg.Device == "" {
		cfg.Device = "plughw:2,0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Player{cfg: cfg, logger: logger}
	p.newCmd = func(ctx context.Context, path string) *exec.Cmd {
		return exec.CommandContext(ctx, cfg.Binary, "-D", cfg.Device, path)
	}
	return p
}

// Play plays the WAV file at path and blocks until playback finishes, is
// stopped, or times out. Only one playback runs at a time; a second Play
// while one is active returns a playback error.
func (p *Player) Play(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := p.newCmd(ctx, path)
	cmd.Stderr = &stderr

	p.mu.Lock()
	if p.cmd != nil {
		p.mu.Unlock()
		return core.NewError(core.ErrPlayback, "playback already in progress")
	}
	if err := cmd.Start(); err != nil {
		p.mu.Unlock()
		return core.NewErrorWithDetail(core.ErrPlayback, "start "+p.cfg.Binary, err.Error())
	}
	p.cmd = cmd
	p.stopped = false
	p.mu.Unlock()

	err := cmd.Wait()

	p.mu.Lock()
	stopped := p.stopped
	p.cmd = nil
	p.stopped = false
	p.mu.Unlock()

	if err == nil {
		return nil
	}
	if stopped {
		// Terminated by an intentional stop request: a successful outcome.
		p.logger.Info("playback stopped by user")
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return core.NewError(core.ErrPlaybackTimeout, "audio playback timed out")
	}
	return core.NewErrorWithDetail(core.ErrPlayback, "audio playback failed", stderr.String())
}

// Stop terminates the current playback, if any. It always succeeds.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return
	}
	p.stopped = true
	_ = p.cmd.Process.Kill()
}

// Playing reports whether a playback subprocess is currently tracked.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil
}
