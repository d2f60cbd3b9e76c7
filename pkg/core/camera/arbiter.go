package camera

import (
	"bytes"
	"context"
	"image/jpeg"
	"log/slog"

	"github.com/AnuragGaddu/Narrate/pkg/core"
)

// Arbiter produces the one authoritative frame for inference. It prefers
// the live-stream buffer, which is non-exclusive and fast: the stream
// subprocess holds the camera device, so the one-shot binary cannot run
// while it does. Only when no live frame exists does it fall back to the
// exclusive one-shot capture.
type Arbiter struct {
	Buffer *Buffer
	Still  StillConfig
	Logger *slog.Logger

	// captureStill is swapped in tests.
	captureStill func(context.Context, StillConfig) ([]byte, error)
}

// NewArbiter creates an arbiter over the given live buffer.
func NewArbiter(buffer *Buffer, still StillConfig, logger *slog.Logger) *Arbiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Arbiter{Buffer: buffer, Still: still, Logger: logger, captureStill: CaptureStill}
}

// AcquireFrame returns a decoded frame for inference, or a classified
// error when neither capture path can produce one.
func (a *Arbiter) AcquireFrame(ctx context.Context) (*Frame, error) {
	if raw := a.Buffer.Latest(); raw != nil {
		frame, err := decodeFrame(raw)
		if err == nil {
			return frame, nil
		}
		// Malformed stream frame: not fatal, fall through to the
		// exclusive capture path.
		a.Logger.Warn("stream frame decode failed", "error", err)
	}

	capture := a.captureStill
	if capture == nil {
		capture = CaptureStill
	}
	raw, err := capture(ctx, a.Still)
	if err != nil {
		return nil, err
	}
	frame, err := decodeFrame(raw)
	if err != nil {
		return nil, core.NewErrorWithDetail(core.ErrCaptureProcess, "still capture produced a malformed frame", err.Error())
	}
	return frame, nil
}

func decodeFrame(raw []byte) (*Frame, error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, core.NewErrorWithDetail(core.ErrStreamDecode, "malformed frame", err.Error())
	}
	return &Frame{JPEG: raw, Width: cfg.Width, Height: cfg.Height}, nil
}
