// Package voice runs the always-on microphone listener that fires the
// capture pipeline when the trigger phrase is heard.
package voice

import (
	"fmt"
	"io"
	"os/exec"
	"strconv"
)

// MicConfig configures the microphone capture subprocess.
type MicConfig struct {
	// Binary is the capture binary, e.g. "arecord".
	Binary string

	// Device is the ALSA input device; empty uses the default device.
	Device string

	// SampleRate of the raw PCM stream. Default 16000.
	SampleRate int
}

// Mic reads raw 16-bit mono PCM from a capture subprocess's stdout.
type Mic struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

// NewMic starts the capture subprocess. A missing binary is reported so
// the listener can disable itself instead of crashing.
func NewMic(cfg MicConfig) (*Mic, error) {
	if cfg.Binary == "" {
		cfg.Binary = "arecord"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if _, err := exec.LookPath(cfg.Binary); err != nil {
		return nil, fmt.Errorf("%s not found: %w", cfg.Binary, err)
	}

	args := []string{
		"-f", "S16_LE",
		"-r", strconv.Itoa(cfg.SampleRate),
		"-c", "1",
		"-t", "raw",
	}
	if cfg.Device != "" {
		args = append([]string{"-D", cfg.Device}, args...)
	}

	cmd := exec.Command(cfg.Binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open %s stdout: %w", cfg.Binary, err)
	}
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", cfg.Binary, err)
	}
	return &Mic{cmd: cmd, stdout: stdout}, nil
}

// Read reads raw PCM bytes from the capture stream.
func (m *Mic) Read(p []byte) (int, error) {
	if m == nil || m.stdout == nil {
		return 0, io.EOF
	}
	return m.stdout.Read(p)
}

// Close kills the capture subprocess.
func (m *Mic) Close() error {
	if m == nil {
		return nil
	}
	if m.cmd != nil && m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
		_ = m.cmd.Wait()
	}
	return nil
}
