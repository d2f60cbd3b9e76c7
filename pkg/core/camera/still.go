package camera

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/AnuragGaddu/Narrate/pkg/core"
)

// StillConfig configures the exclusive one-shot capture path.
type StillConfig struct {
	// Binary is the one-shot capture binary, e.g. "rpicam-still".
	Binary string
	Width  int
	Height int

	// Timeout bounds the capture subprocess.
	Timeout time.Duration
}

// CaptureStill runs the one-shot capture binary and returns the captured
// JPEG bytes. It only works when the live-stream subprocess does not hold
// the camera; the external driver enforces that exclusivity. The scoped
// temporary file is removed on every exit path.
func CaptureStill(ctx context.Context, cfg StillConfig) ([]byte, error) {
	if cfg.Binary == "" {
		cfg.Binary = "rpicam-still"
	}
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	if _, err := exec.LookPath(cfg.Binary); err != nil {
		return nil, core.NewError(core.ErrCameraUnavailable, cfg.Binary+" not found")
	}

	tmp, err := os.CreateTemp("", "narrate-still-*.jpg")
	if err != nil {
		return nil, core.NewErrorWithDetail(core.ErrCaptureProcess, "create capture file", err.Error())
	}
	path := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(path)

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, cfg.Binary,
		"-n",
		"-o", path,
		"--width", strconv.Itoa(cfg.Width),
		"--height", strconv.Itoa(cfg.Height),
	)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, core.NewError(core.ErrCaptureTimeout, cfg.Binary+" timed out")
		}
		return nil, core.NewErrorWithDetail(core.ErrCaptureProcess, cfg.Binary+" failed", stderr.String())
	}

	jpeg, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewErrorWithDetail(core.ErrCaptureProcess, "read captured frame", err.Error())
	}
	return jpeg, nil
}
