package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr string

	// CORS
	CORSAllowedOrigins map[string]struct{} // empty => disabled

	// Event feed (SSE)
	SSEKeepaliveInterval time.Duration
	EventQueueSize       int

	// Live video feed
	VideoFrameInterval time.Duration
	FreezeWindow       time.Duration

	// Camera
	StreamBinary       string
	StillBinary        string
	CameraWidth        int
	CameraHeight       int
	StillTimeout       time.Duration
	StreamStartTimeout time.Duration

	// Inference
	GeminiAPIKey     string
	GeminiModel      string
	InferenceTimeout time.Duration

	// Speech synthesis. An empty PiperModelPath disables TTS.
	PiperBinary    string
	PiperModelPath string
	TTSTimeout     time.Duration

	// Playback
	PlaybackBinary  string
	PlaybackDevice  string
	PlaybackTimeout time.Duration

	// Voice trigger
	VoiceEnabled    bool
	VoskURL         string
	MicBinary       string
	MicDevice       string
	MicSampleRate   int
	TriggerPhrase   string
	TriggerCooldown time.Duration

	// Operational defaults
	ReadHeaderTimeout   time.Duration
	ShutdownGracePeriod time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                 envOr("NARRATE_ADDR", ":5000"),
		CORSAllowedOrigins:   make(map[string]struct{}),
		SSEKeepaliveInterval: envDurationOr("NARRATE_SSE_KEEPALIVE_INTERVAL", 15*time.Second),
		EventQueueSize:       envIntOr("NARRATE_EVENT_QUEUE_SIZE", 200),
		VideoFrameInterval:   envDurationOr("NARRATE_VIDEO_FRAME_INTERVAL", 50*time.Millisecond),
		FreezeWindow:         envDurationOr("NARRATE_FREEZE_WINDOW", 3*time.Second),
		StreamBinary:         envOr("NARRATE_STREAM_BINARY", "rpicam-vid"),
		StillBinary:          envOr("NARRATE_STILL_BINARY", "rpicam-still"),
		CameraWidth:          envIntOr("NARRATE_CAMERA_WIDTH", 640),
		CameraHeight:         envIntOr("NARRATE_CAMERA_HEIGHT", 480),
		StillTimeout:         envDurationOr("NARRATE_STILL_TIMEOUT", 10*time.Second),
		StreamStartTimeout:   envDurationOr("NARRATE_STREAM_START_TIMEOUT", 5*time.Second),
		GeminiAPIKey:         envOr("NARRATE_GEMINI_API_KEY", os.Getenv("GEMINI_API_KEY")),
		GeminiModel:          envOr("NARRATE_GEMINI_MODEL", "gemini-2.0-flash"),
		InferenceTimeout:     envDurationOr("NARRATE_INFERENCE_TIMEOUT", 60*time.Second),
		PiperBinary:          envOr("NARRATE_PIPER_BINARY", "piper"),
		PiperModelPath:       envOr("NARRATE_PIPER_MODEL", ""),
		TTSTimeout:           envDurationOr("NARRATE_TTS_TIMEOUT", 60*time.Second),
		PlaybackBinary:       envOr("NARRATE_PLAYBACK_BINARY", "aplay"),
		PlaybackDevice:       envOr("NARRATE_PLAYBACK_DEVICE", "plughw:2,0"),
		PlaybackTimeout:      envDurationOr("NARRATE_PLAYBACK_TIMEOUT", 120*time.Second),
		VoiceEnabled:         envBoolOr("NARRATE_VOICE_ENABLED", true),
		VoskURL:              envOr("NARRATE_VOSK_URL", "ws://127.0.0.1:2700"),
		MicBinary:            envOr("NARRATE_MIC_BINARY", "arecord"),
		MicDevice:            envOr("NARRATE_MIC_DEVICE", ""),
		MicSampleRate:        envIntOr("NARRATE_MIC_SAMPLE_RATE", 16000),
		TriggerPhrase:        envOr("NARRATE_TRIGGER_PHRASE", "capture image"),
		TriggerCooldown:      envDurationOr("NARRATE_TRIGGER_COOLDOWN", 3*time.Second),
		ReadHeaderTimeout:    envDurationOr("NARRATE_READ_HEADER_TIMEOUT", 10*time.Second),
		ShutdownGracePeriod:  envDurationOr("NARRATE_SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	for _, origin := range splitCSV(os.Getenv("NARRATE_CORS_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return Config{}, fmt.Errorf("NARRATE_GEMINI_API_KEY (or GEMINI_API_KEY) must be set")
	}
	if cfg.SSEKeepaliveInterval <= 0 {
		return Config{}, fmt.Errorf("NARRATE_SSE_KEEPALIVE_INTERVAL must be > 0")
	}
	if cfg.EventQueueSize <= 0 {
		return Config{}, fmt.Errorf("NARRATE_EVENT_QUEUE_SIZE must be > 0")
	}
	if cfg.VideoFrameInterval <= 0 {
		return Config{}, fmt.Errorf("NARRATE_VIDEO_FRAME_INTERVAL must be > 0")
	}
	if cfg.FreezeWindow <= 0 {
		return Config{}, fmt.Errorf("NARRATE_FREEZE_WINDOW must be > 0")
	}
	if cfg.CameraWidth <= 0 || cfg.CameraHeight <= 0 {
		return Config{}, fmt.Errorf("NARRATE_CAMERA_WIDTH and NARRATE_CAMERA_HEIGHT must be > 0")
	}
	if cfg.StillTimeout <= 0 {
		return Config{}, fmt.Errorf("NARRATE_STILL_TIMEOUT must be > 0")
	}
	if cfg.StreamStartTimeout <= 0 {
		return Config{}, fmt.Errorf("NARRATE_STREAM_START_TIMEOUT must be > 0")
	}
	if cfg.InferenceTimeout <= 0 {
		return Config{}, fmt.Errorf("NARRATE_INFERENCE_TIMEOUT must be > 0")
	}
	if cfg.TTSTimeout <= 0 {
		return Config{}, fmt.Errorf("NARRATE_TTS_TIMEOUT must be > 0")
	}
	if cfg.PlaybackTimeout <= 0 {
		return Config{}, fmt.Errorf("NARRATE_PLAYBACK_TIMEOUT must be > 0")
	}
	if cfg.MicSampleRate <= 0 {
		return Config{}, fmt.Errorf("NARRATE_MIC_SAMPLE_RATE must be > 0")
	}
	if strings.TrimSpace(cfg.TriggerPhrase) == "" {
		return Config{}, fmt.Errorf("NARRATE_TRIGGER_PHRASE must not be empty")
	}
	if cfg.TriggerCooldown < 0 {
		return Config{}, fmt.Errorf("NARRATE_TRIGGER_COOLDOWN must be >= 0")
	}
	if cfg.VoiceEnabled && strings.TrimSpace(cfg.VoskURL) == "" {
		return Config{}, fmt.Errorf("NARRATE_VOSK_URL must be set when NARRATE_VOICE_ENABLED=true")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("NARRATE_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("NARRATE_SHUTDOWN_GRACE_PERIOD must be > 0")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envBoolOr(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
