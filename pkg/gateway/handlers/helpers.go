// Package handlers implements the portal's HTTP surface: the live video
// feed, the event feed, manual trigger, snapshot retrieval and speech
// control.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/AnuragGaddu/Narrate/pkg/core"
)

type errorEnvelope struct {
	Error *core.Error `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, err *core.Error) {
	writeJSON(w, status, errorEnvelope{Error: err})
}

func notFoundError() *core.Error {
	return core.NewError(core.ErrInvalidRequest, "not found")
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeJSONError(w, http.StatusMethodNotAllowed,
		core.NewError(core.ErrInvalidRequest, "method not allowed"))
}
