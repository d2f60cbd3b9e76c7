package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/AnuragGaddu/Narrate/pkg/core/camera"
)

const videoBoundary = "FRAME"

// VideoHandler streams the live camera feed as multipart MJPEG. While a
// freeze window is active it serves the frozen still instead, so viewers
// see what was just captured.
type VideoHandler struct {
	Buffer   *camera.Buffer
	Freeze   *camera.Freeze
	Interval time.Duration
}

func (h VideoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	interval := h.Interval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+videoBoundary)
	w.Header().Set("Cache-Control", "no-cache")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		frame := h.currentFrame()
		if frame == nil {
			continue
		}

		_, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", videoBoundary, len(frame))
		if err != nil {
			return
		}
		if _, err := w.Write(frame); err != nil {
			return
		}
		if _, err := fmt.Fprint(w, "\r\n"); err != nil {
			return
		}
		flusher.Flush()
	}
}

func (h VideoHandler) currentFrame() []byte {
	if h.Freeze != nil {
		if frozen := h.Freeze.Current(); frozen != nil {
			return frozen
		}
	}
	if h.Buffer == nil {
		return nil
	}
	return h.Buffer.Latest()
}
