package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/AnuragGaddu/Narrate/pkg/core/events"
)

// TriggerHandler starts a capture run from an HTTP request. The response
// only acknowledges the start; results arrive on the event feed.
type TriggerHandler struct {
	Pipeline Pipeline
	Bus      *events.Broadcaster
	Logger   *slog.Logger

	// Source labels the origin in logs, e.g. "http" or "button".
	Source string
}

func (h TriggerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	h.Bus.Broadcast(events.Trigger(true))
	h.Bus.Broadcast(events.Status("triggered"))

	source := h.Source
	if source == "" {
		source = "http"
	}

	// The run outlives this request; losers of the single-flight race
	// announce themselves on the event feed.
	go func() {
		if err := h.Pipeline.Run(context.Background(), source); err != nil && h.Logger != nil {
			h.Logger.Warn("capture run rejected or failed", "source", source, "error", err)
		}
	}()

	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}
