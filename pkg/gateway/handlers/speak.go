package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/AnuragGaddu/Narrate/pkg/core"
)

// SpeakHandler synthesizes and plays arbitrary text synchronously. With
// no text in the body it replays the last narration.
type SpeakHandler struct {
	Pipeline Pipeline
}

type speakRequest struct {
	Text string `json:"text"`
}

func (h SpeakHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req speakRequest
	// An empty body is fine; malformed JSON is not.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, http.StatusBadRequest,
			core.NewError(core.ErrInvalidRequest, "malformed JSON body"))
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		text = h.Pipeline.LastNarration()
	}
	if text == "" {
		writeJSONError(w, http.StatusBadRequest,
			core.NewError(core.ErrInvalidRequest, "no text to speak"))
		return
	}

	if err := h.Pipeline.Speak(r.Context(), text); err != nil {
		status := http.StatusInternalServerError
		if core.IsType(err, core.ErrSynthesisUnavailable) {
			status = http.StatusServiceUnavailable
		}
		var ce *core.Error
		if !errors.As(err, &ce) {
			ce = core.NewError(core.ErrSynthesisFailed, err.Error())
		}
		writeJSONError(w, status, ce)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StopSpeechHandler terminates any in-flight playback.
type StopSpeechHandler struct {
	Pipeline Pipeline
}

func (h StopSpeechHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	h.Pipeline.StopSpeaking()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
