package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// VoskConfig configures the vosk-server websocket recognizer.
type VoskConfig struct {
	// URL is the vosk-server endpoint, e.g. "ws://127.0.0.1:2700".
	URL string

	// SampleRate of the PCM fed to Accept. Default 16000.
	SampleRate int

	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration

	// IOTimeout bounds each per-chunk write/read round trip.
	IOTimeout time.Duration
}

// Vosk streams audio to a vosk-server instance over a websocket. The
// server answers each binary audio message with one JSON text message
// carrying either a partial or a finalized transcript.
type Vosk struct {
	cfg  VoskConfig
	conn *websocket.Conn
}

type voskResult struct {
	Partial string `json:"partial"`
	Text    string `json:"text"`
}

// NewVosk dials the recognizer server and sends the stream configuration.
// A dial failure is returned to the caller, which typically disables voice
// triggering rather than treating it as fatal.
func NewVosk(ctx context.Context, cfg VoskConfig) (*Vosk, error) {
	if cfg.URL == "" {
		cfg.URL = "ws://127.0.0.1:2700"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.IOTimeout <= 0 {
		cfg.IOTimeout = 10 * time.Second
	}

	v := &Vosk{cfg: cfg}
	if err := v.dial(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Vosk) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: v.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, v.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("recognizer connect %s: %w", v.cfg.URL, err)
	}

	cfgMsg, _ := json.Marshal(map[string]any{
		"config": map[string]any{"sample_rate": v.cfg.SampleRate},
	})
	_ = conn.SetWriteDeadline(time.Now().Add(v.cfg.IOTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, cfgMsg); err != nil {
		_ = conn.Close()
		return fmt.Errorf("recognizer config: %w", err)
	}

	v.conn = conn
	return nil
}

// Name returns the recognizer identifier.
func (v *Vosk) Name() string {
	return "vosk"
}

// Accept sends one PCM chunk and reads the server's transcript answer.
func (v *Vosk) Accept(ctx context.Context, chunk []byte) (Result, error) {
	if v.conn == nil {
		return Result{}, fmt.Errorf("recognizer not connected")
	}

	deadline := time.Now().Add(v.cfg.IOTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	_ = v.conn.SetWriteDeadline(deadline)
	if err := v.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		return Result{}, fmt.Errorf("recognizer send: %w", err)
	}

	_ = v.conn.SetReadDeadline(deadline)
	_, raw, err := v.conn.ReadMessage()
	if err != nil {
		return Result{}, fmt.Errorf("recognizer read: %w", err)
	}

	var res voskResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return Result{}, fmt.Errorf("recognizer response: %w", err)
	}
	if res.Text != "" {
		return Result{Text: res.Text, Final: true}, nil
	}
	return Result{Text: res.Partial}, nil
}

// Reset reconnects, discarding any partial transcript buffered on the
// server side.
func (v *Vosk) Reset(ctx context.Context) error {
	if v.conn != nil {
		_ = v.conn.Close()
		v.conn = nil
	}
	return v.dial(ctx)
}

// Close finalizes the stream and closes the connection.
func (v *Vosk) Close() error {
	if v.conn == nil {
		return nil
	}
	_ = v.conn.SetWriteDeadline(time.Now().Add(v.cfg.IOTimeout))
	_ = v.conn.WriteMessage(websocket.TextMessage, []byte(`{"eof" : 1}`))
	err := v.conn.Close()
	v.conn = nil
	return err
}
