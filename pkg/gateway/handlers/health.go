package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/AnuragGaddu/Narrate/pkg/gateway/config"
)

type HealthHandler struct{}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// ReadyHandler reports configuration validity plus the runtime readiness
// of the camera, TTS engine and voice trigger.
type ReadyHandler struct {
	Config config.Config

	CameraReady  func() bool
	TTSAvailable func() bool
	VoiceActive  func() bool
}

func (h ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type readyResp struct {
		OK           bool     `json:"ok"`
		CameraReady  bool     `json:"camera_ready"`
		TTSAvailable bool     `json:"tts_available"`
		VoiceActive  bool     `json:"voice_active"`
		Issues       []string `json:"issues,omitempty"`
	}

	issues := make([]string, 0, 4)

	if h.Config.GeminiAPIKey == "" {
		issues = append(issues, "gemini api key not configured")
	}
	if h.Config.VideoFrameInterval <= 0 {
		issues = append(issues, "video frame interval must be > 0")
	}
	if h.Config.SSEKeepaliveInterval <= 0 {
		issues = append(issues, "sse keepalive interval must be > 0")
	}
	if h.Config.FreezeWindow <= 0 {
		issues = append(issues, "freeze window must be > 0")
	}

	resp := readyResp{
		CameraReady:  h.CameraReady != nil && h.CameraReady(),
		TTSAvailable: h.TTSAvailable != nil && h.TTSAvailable(),
		VoiceActive:  h.VoiceActive != nil && h.VoiceActive(),
	}

	// Camera, TTS and voice are degraded modes, not failures: the still
	// fallback and the event feed keep working without them.
	resp.OK = len(issues) == 0
	resp.Issues = issues

	status := http.StatusOK
	if !resp.OK {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
