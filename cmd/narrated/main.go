// Command narrated runs the narration camera appliance: live MJPEG
// streaming, trigger-driven capture, image description and spoken
// narration, with a dev portal for monitoring.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AnuragGaddu/Narrate/pkg/core/audio"
	"github.com/AnuragGaddu/Narrate/pkg/core/camera"
	"github.com/AnuragGaddu/Narrate/pkg/core/events"
	"github.com/AnuragGaddu/Narrate/pkg/core/pipeline"
	"github.com/AnuragGaddu/Narrate/pkg/core/vlm"
	"github.com/AnuragGaddu/Narrate/pkg/core/voice"
	"github.com/AnuragGaddu/Narrate/pkg/core/voice/stt"
	"github.com/AnuragGaddu/Narrate/pkg/core/voice/tts"
	"github.com/AnuragGaddu/Narrate/pkg/gateway/config"
	gatewayserver "github.com/AnuragGaddu/Narrate/pkg/gateway/server"
)

type appDeps struct {
	loadConfig   func() (config.Config, error)
	signalNotify func(chan<- os.Signal, ...os.Signal)
	signalStop   func(chan<- os.Signal)
}

func defaultAppDeps() appDeps {
	return appDeps{
		loadConfig: config.LoadFromEnv,
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {
			signal.Notify(c, sig...)
		},
		signalStop: signal.Stop,
	}
}

func buildHTTPServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func run(ctx context.Context, stderr io.Writer, deps appDeps) error {
	if deps.loadConfig == nil {
		return errors.New("missing loadConfig dependency")
	}
	if deps.signalNotify == nil || deps.signalStop == nil {
		return errors.New("missing signal dependency")
	}

	cfg, err := deps.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Every log record is also fanned out to event-feed subscribers, so
	// the dashboard doubles as a live log tail.
	bus := events.NewBroadcaster(cfg.EventQueueSize)
	logger := slog.New(events.NewLogHandler(slog.NewTextHandler(stderr, nil), bus))

	buffer := &camera.Buffer{}
	freeze := &camera.Freeze{}

	stream := camera.NewStream(camera.StreamConfig{
		Binary: cfg.StreamBinary,
		Width:  cfg.CameraWidth,
		Height: cfg.CameraHeight,
	}, buffer, logger)
	if err := stream.Start(); err != nil {
		// No live stream: the arbiter falls back to one-shot stills.
		logger.Warn("live camera stream unavailable", "error", err)
	} else {
		defer stream.Stop()
		if !stream.WaitFirstFrame(cfg.StreamStartTimeout) {
			logger.Warn("no frame from live stream yet", "timeout", cfg.StreamStartTimeout)
		}
	}

	arbiter := camera.NewArbiter(buffer, camera.StillConfig{
		Binary:  cfg.StillBinary,
		Width:   cfg.CameraWidth,
		Height:  cfg.CameraHeight,
		Timeout: cfg.StillTimeout,
	}, logger)

	describer, err := vlm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return fmt.Errorf("init describer: %w", err)
	}
	worker := vlm.NewWorker(describer, logger)
	defer worker.Close()

	synth := tts.NewPiper(tts.PiperConfig{
		Binary:    cfg.PiperBinary,
		ModelPath: cfg.PiperModelPath,
		Timeout:   cfg.TTSTimeout,
	})
	if !synth.Available() {
		logger.Warn("tts engine not available, narration will be text-only")
	}

	player := audio.NewPlayer(audio.PlayerConfig{
		Binary:  cfg.PlaybackBinary,
		Device:  cfg.PlaybackDevice,
		Timeout: cfg.PlaybackTimeout,
	}, logger)

	orch := pipeline.New(pipeline.Config{
		FreezeWindow:     cfg.FreezeWindow,
		InferenceTimeout: cfg.InferenceTimeout,
	}, arbiter, freeze, worker, synth, player, bus, logger)

	voiceActive := false
	if cfg.VoiceEnabled {
		voiceActive = startVoiceListener(ctx, cfg, orch, bus, player, logger)
	}

	gw := gatewayserver.New(cfg, gatewayserver.Deps{
		Pipeline:     orch,
		Bus:          bus,
		Buffer:       buffer,
		Freeze:       freeze,
		CameraReady:  stream.Ready,
		TTSAvailable: synth.Available,
		VoiceActive:  func() bool { return voiceActive },
	}, logger)
	httpSrv := buildHTTPServer(cfg, gw.Handler())

	logger.Info("starting narrated", "addr", cfg.Addr, "camera", stream.Ready(), "voice", voiceActive)

	listenErrCh := make(chan error, 1)
	go func() {
		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErrCh <- err
			return
		}
		listenErrCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	deps.signalNotify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer deps.signalStop(sigCh)

	select {
	case err := <-listenErrCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	orch.StopSpeaking()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if err := <-listenErrCh; err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("narrated stopped")
	return nil
}

// startVoiceListener wires the mic, recognizer and trigger loop. A missing
// vosk server or capture binary disables the voice trigger with a warning
// instead of failing startup.
func startVoiceListener(ctx context.Context, cfg config.Config, orch *pipeline.Orchestrator, bus *events.Broadcaster, player *audio.Player, logger *slog.Logger) bool {
	rec, err := stt.NewVosk(ctx, stt.VoskConfig{
		URL:        cfg.VoskURL,
		SampleRate: cfg.MicSampleRate,
	})
	if err != nil {
		logger.Warn("speech recognizer unavailable, voice trigger disabled", "error", err)
		return false
	}

	mic, err := voice.NewMic(voice.MicConfig{
		Binary:     cfg.MicBinary,
		Device:     cfg.MicDevice,
		SampleRate: cfg.MicSampleRate,
	})
	if err != nil {
		logger.Warn("microphone unavailable, voice trigger disabled", "error", err)
		_ = rec.Close()
		return false
	}

	beepPath := filepath.Join(os.TempDir(), "narrate-beep.wav")
	if err := audio.WriteBeepWAV(beepPath); err != nil {
		logger.Warn("could not render trigger beep", "error", err)
		beepPath = ""
	}

	l := voice.NewListener(voice.ListenerConfig{
		TriggerPhrase: cfg.TriggerPhrase,
		Cooldown:      cfg.TriggerCooldown,
	}, mic, rec, logger)
	l.Busy = orch.Busy
	l.Beep = func() {
		if beepPath == "" {
			return
		}
		beepCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := player.Play(beepCtx, beepPath); err != nil {
			logger.Warn("trigger beep failed", "error", err)
		}
	}
	l.Trigger = func() {
		bus.Broadcast(events.Trigger(true))
		bus.Broadcast(events.Status(pipeline.PhaseTriggered))
		if err := orch.Run(context.Background(), "voice"); err != nil {
			logger.Warn("voice-triggered run rejected or failed", "error", err)
		}
	}

	go l.Run(ctx)
	return true
}

func runMain(ctx context.Context, stderr io.Writer, deps appDeps) int {
	if stderr == nil {
		stderr = os.Stderr
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "narrated: load .env: %v\n", err)
		return 1
	}

	if err := run(ctx, stderr, deps); err != nil {
		fmt.Fprintf(stderr, "narrated: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(runMain(context.Background(), os.Stderr, defaultAppDeps()))
}
