package tts

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/AnuragGaddu/Narrate/pkg/core"
)

// PiperConfig configures the piper subprocess engine.
type PiperConfig struct {
	// Binary is the piper executable. Default "piper".
	Binary string

	// ModelPath is the voice model. A ".onnx" suffix is appended when
	// missing; the ".onnx.json" sidecar is expected alongside.
	ModelPath string

	// Timeout bounds one synthesis run.
	Timeout time.Duration
}

// Piper synthesizes speech by invoking the piper binary with text on
// stdin and a WAV output file.
type Piper struct {
	cfg PiperConfig
}

// NewPiper creates a piper engine.
func NewPiper(cfg PiperConfig) *Piper {
	if cfg.Binary == "" {
		cfg.Binary = "piper"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.ModelPath != "" && !strings.HasSuffix(cfg.ModelPath, ".onnx") {
		cfg.ModelPath += ".onnx"
	}
	return &Piper{cfg: cfg}
}

// Name returns the engine identifier.
func (p *Piper) Name() string {
	return "piper"
}

// Available reports whether the binary and voice model are both present.
func (p *Piper) Available() bool {
	if p.cfg.ModelPath == "" {
		return false
	}
	if _, err := exec.LookPath(p.cfg.Binary); err != nil {
		return false
	}
	if _, err := os.Stat(p.cfg.ModelPath); err != nil {
		return false
	}
	return true
}

// SynthesizeToFile renders text to a WAV file at path.
func (p *Piper) SynthesizeToFile(ctx context.Context, text, path string) error {
	if strings.TrimSpace(text) == "" {
		return core.NewError(core.ErrSynthesisFailed, "no text to synthesize")
	}
	if !p.Available() {
		return core.NewError(core.ErrSynthesisUnavailable, "tts engine not available")
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.cfg.Binary,
		"--model", p.cfg.ModelPath,
		"--output_file", path,
	)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return core.NewErrorWithDetail(core.ErrSynthesisFailed, "TTS synthesis failed", stderr.String())
	}
	return nil
}
