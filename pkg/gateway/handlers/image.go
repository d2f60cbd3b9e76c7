package handlers

import "net/http"

// ImageHandler serves the most recent captured still, or 204 when nothing
// has been captured yet.
type ImageHandler struct {
	Pipeline Pipeline
}

func (h ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	snapshot := h.Pipeline.Snapshot()
	if len(snapshot) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(snapshot)
}
