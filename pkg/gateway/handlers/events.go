package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/AnuragGaddu/Narrate/pkg/core/events"
	"github.com/AnuragGaddu/Narrate/pkg/gateway/sse"
)

// EventsHandler serves the live event feed over SSE. Each subscriber gets
// its own bounded queue; one that stops reading is dropped by the
// broadcaster rather than stalling the rest.
type EventsHandler struct {
	Bus       *events.Broadcaster
	Keepalive time.Duration
	Logger    *slog.Logger
}

func (h EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	sw, err := sse.New(w)
	if err != nil {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)

	keepalive := h.Keepalive
	if keepalive <= 0 {
		keepalive = 15 * time.Second
	}

	sub := h.Bus.Subscribe()
	defer h.Bus.Unsubscribe(sub)

	timer := time.NewTimer(keepalive)
	defer timer.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-sub.C():
			if !ok {
				// Dropped by the broadcaster for falling behind.
				return
			}
			if err := sw.SendJSON(ev); err != nil {
				return
			}
		case <-timer.C:
			if err := sw.Comment("keepalive"); err != nil {
				return
			}
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(keepalive)
	}
}
