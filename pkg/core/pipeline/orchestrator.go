// Package pipeline drives one capture-describe-speak run at a time:
// acquire a frame, describe it with the vision model, speak the result.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/AnuragGaddu/Narrate/pkg/core"
	"github.com/AnuragGaddu/Narrate/pkg/core/audio"
	"github.com/AnuragGaddu/Narrate/pkg/core/camera"
	"github.com/AnuragGaddu/Narrate/pkg/core/events"
	"github.com/AnuragGaddu/Narrate/pkg/core/vlm"
	"github.com/AnuragGaddu/Narrate/pkg/core/voice/tts"
)

// Pipeline phases as broadcast in status events.
const (
	PhaseIdle       = "idle"
	PhaseTriggered  = "triggered"
	PhaseCapturing  = "capturing"
	PhaseInference  = "processing_inference"
	PhaseSpeaking  = "speaking"
)

// FallbackNarration replaces an empty model response.
const FallbackNarration = "Could not describe image."

// CapturedImagePath is the event reference clients fetch the snapshot from.
const CapturedImagePath = "/captured_image"

// Config bounds the orchestrator's stages.
type Config struct {
	// FreezeWindow is how long the live feed shows the captured still.
	FreezeWindow time.Duration

	// InferenceTimeout bounds one describe call.
	InferenceTimeout time.Duration
}

func (c *Config) withDefaults() {
	if c.FreezeWindow <= 0 {
		c.FreezeWindow = 3 * time.Second
	}
	if c.InferenceTimeout <= 0 {
		c.InferenceTimeout = 60 * time.Second
	}
}

// Orchestrator runs the capture pipeline. At most one run is in flight;
// losers of the trigger race are rejected immediately, never queued.
type Orchestrator struct {
	cfg     Config
	arbiter *camera.Arbiter
	freeze  *camera.Freeze
	worker  *vlm.Worker
	synth   tts.Synthesizer
	player  *audio.Player
	bus     *events.Broadcaster
	logger  *slog.Logger

	busy atomic.Bool

	snapMu   sync.Mutex
	snapshot []byte

	narrMu    sync.Mutex
	narration string
}

// New wires an orchestrator. synth may be nil when no TTS engine is
// configured; the speaking stage then reports unavailability and moves on.
func New(cfg Config, arbiter *camera.Arbiter, freeze *camera.Freeze, worker *vlm.Worker, synth tts.Synthesizer, player *audio.Player, bus *events.Broadcaster, logger *slog.Logger) *Orchestrator {
	cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:     cfg,
		arbiter: arbiter,
		freeze:  freeze,
		worker:  worker,
		synth:   synth,
		player:  player,
		bus:     bus,
		logger:  logger,
	}
}

// Busy reports whether a run currently holds the single-flight lock.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// Snapshot returns the last captured JPEG, or nil if none exists yet.
func (o *Orchestrator) Snapshot() []byte {
	o.snapMu.Lock()
	defer o.snapMu.Unlock()
	return o.snapshot
}

// LastNarration returns the text of the most recent successful inference.
func (o *Orchestrator) LastNarration() string {
	o.narrMu.Lock()
	defer o.narrMu.Unlock()
	return o.narration
}

// Run executes one capture-describe-speak pass. If another run holds the
// lock it broadcasts a rejection and returns ErrBusy without blocking.
// source labels the trigger origin ("http", "voice", "button") in logs.
func (o *Orchestrator) Run(ctx context.Context, source string) error {
	if !o.busy.CompareAndSwap(false, true) {
		o.bus.Broadcast(events.Error("another capture in progress"))
		o.bus.Broadcast(events.Trigger(false))
		o.bus.Broadcast(events.Status(PhaseIdle))
		return core.NewError(core.ErrBusy, "another capture in progress")
	}

	logger := o.logger.With("run_id", uuid.NewString(), "source", source)
	start := time.Now()

	// Lock release and trigger-off must happen no matter how the run
	// exits, including a panic in a collaborator.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline run panicked", "panic", r)
			o.bus.Broadcast(events.Error(fmt.Sprintf("pipeline failure: %v", r)))
		}
		o.bus.Broadcast(events.Status(PhaseIdle))
		o.busy.Store(false)
		o.bus.Broadcast(events.Trigger(false))
		logger.Info("pipeline run finished", "elapsed", time.Since(start))
	}()

	logger.Info("pipeline run started")

	o.bus.Broadcast(events.Status(PhaseCapturing))
	frame, err := o.arbiter.AcquireFrame(ctx)
	if err != nil {
		logger.Error("capture failed", "error", err)
		o.bus.Broadcast(events.Error(err.Error()))
		return err
	}
	logger.Info("frame captured", "bytes", len(frame.JPEG), "width", frame.Width, "height", frame.Height)

	o.snapMu.Lock()
	o.snapshot = frame.JPEG
	o.snapMu.Unlock()
	if o.freeze != nil {
		o.freeze.Set(frame.JPEG, o.cfg.FreezeWindow)
	}
	o.bus.Broadcast(events.CapturedImage(CapturedImagePath))

	o.bus.Broadcast(events.Status(PhaseInference))
	inferCtx, cancel := context.WithTimeout(ctx, o.cfg.InferenceTimeout)
	text, err := o.worker.Submit(inferCtx, frame)
	cancel()
	if err != nil {
		logger.Error("inference failed", "error", err)
		o.bus.Broadcast(events.Error("inference failed: " + err.Error()))
		return err
	}
	if text == "" {
		text = FallbackNarration
	}
	o.narrMu.Lock()
	o.narration = text
	o.narrMu.Unlock()
	o.bus.Broadcast(events.InferenceText(text))
	logger.Info("inference complete", "text", text)

	// Speaking failures never fail the run; the narration already reached
	// subscribers as an inference_text event.
	o.bus.Broadcast(events.Status(PhaseSpeaking))
	if err := o.Speak(ctx, text); err != nil {
		logger.Warn("speaking stage failed", "error", err)
		o.bus.Broadcast(events.Error(core.MessageOf(err)))
	}
	return nil
}

// Speak synthesizes text to a scoped temp file and plays it. Used by the
// speaking stage and the speak endpoint; safe to call while a run is not
// in flight. The temp file is removed on every exit path.
func (o *Orchestrator) Speak(ctx context.Context, text string) error {
	if o.synth == nil || !o.synth.Available() {
		return core.NewError(core.ErrSynthesisUnavailable, "tts engine not available")
	}

	f, err := os.CreateTemp("", "narrate-tts-*.wav")
	if err != nil {
		return core.NewErrorWithDetail(core.ErrSynthesisFailed, "TTS synthesis failed", err.Error())
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	if err := o.synth.SynthesizeToFile(ctx, text, path); err != nil {
		return err
	}
	return o.player.Play(ctx, path)
}

// StopSpeaking terminates any in-flight playback. A run whose playback is
// stopped this way still completes successfully.
func (o *Orchestrator) StopSpeaking() {
	o.player.Stop()
}

// Speaking reports whether playback is currently in flight.
func (o *Orchestrator) Speaking() bool {
	return o.player.Playing()
}
