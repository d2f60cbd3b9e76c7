package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NARRATE_GEMINI_API_KEY", "test-key")
}

func TestLoadFromEnvDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Addr != ":5000" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.CameraWidth != 640 || cfg.CameraHeight != 480 {
		t.Fatalf("camera dims = %dx%d", cfg.CameraWidth, cfg.CameraHeight)
	}
	if cfg.FreezeWindow != 3*time.Second {
		t.Fatalf("FreezeWindow = %v", cfg.FreezeWindow)
	}
	if cfg.TriggerPhrase != "capture image" {
		t.Fatalf("TriggerPhrase = %q", cfg.TriggerPhrase)
	}
	if cfg.PiperModelPath != "" {
		t.Fatalf("PiperModelPath = %q, want empty (TTS disabled by default)", cfg.PiperModelPath)
	}
	if !cfg.VoiceEnabled {
		t.Fatal("VoiceEnabled should default to true")
	}
}

func TestLoadFromEnvRequiresAPIKey(t *testing.T) {
	t.Setenv("NARRATE_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := LoadFromEnv()
	if err == nil || !strings.Contains(err.Error(), "NARRATE_GEMINI_API_KEY") {
		t.Fatalf("err = %v, want missing api key error", err)
	}
}

func TestLoadFromEnvFallsBackToGeminiAPIKey(t *testing.T) {
	t.Setenv("NARRATE_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "fallback-key")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.GeminiAPIKey != "fallback-key" {
		t.Fatalf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("NARRATE_ADDR", ":8088")
	t.Setenv("NARRATE_CAMERA_WIDTH", "1280")
	t.Setenv("NARRATE_CAMERA_HEIGHT", "720")
	t.Setenv("NARRATE_TRIGGER_COOLDOWN", "5s")
	t.Setenv("NARRATE_CORS_ORIGINS", "http://a.local, http://b.local")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Addr != ":8088" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.CameraWidth != 1280 || cfg.CameraHeight != 720 {
		t.Fatalf("camera dims = %dx%d", cfg.CameraWidth, cfg.CameraHeight)
	}
	if cfg.TriggerCooldown != 5*time.Second {
		t.Fatalf("TriggerCooldown = %v", cfg.TriggerCooldown)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if _, ok := cfg.CORSAllowedOrigins["http://b.local"]; !ok {
		t.Fatal("origin http://b.local not parsed")
	}
}

func TestLoadFromEnvRejectsBadValues(t *testing.T) {
	cases := []struct {
		key, val string
	}{
		{"NARRATE_CAMERA_WIDTH", "-1"},
		{"NARRATE_TRIGGER_COOLDOWN", "-1s"},
		{"NARRATE_EVENT_QUEUE_SIZE", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tc.key, tc.val)
			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("%s=%q accepted, want error", tc.key, tc.val)
			}
		})
	}
}

func TestLoadFromEnvIgnoresMalformedNumbers(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("NARRATE_CAMERA_WIDTH", "not-a-number")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.CameraWidth != 640 {
		t.Fatalf("CameraWidth = %d, want default on parse failure", cfg.CameraWidth)
	}
}
