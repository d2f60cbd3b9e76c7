// Package events carries the typed event stream that the pipeline and the
// rest of the system publish to live dashboard subscribers.
package events

// Type tags an event on the wire.
type Type string

const (
	TypeStatus        Type = "status"
	TypeTrigger       Type = "trigger"
	TypeCapturedImage Type = "captured_image"
	TypeInferenceText Type = "inference_text"
	TypeError         Type = "error"
	TypeLog           Type = "log"
)

// Event is one message on the live feed. Events are immutable once
// constructed; Data is JSON-serializable.
type Event struct {
	Type Type `json:"type"`
	Data any  `json:"data"`
}

// Status reports a pipeline phase transition.
func Status(phase string) Event {
	return Event{Type: TypeStatus, Data: phase}
}

// Trigger reports whether a trigger is currently active.
func Trigger(active bool) Event {
	return Event{Type: TypeTrigger, Data: map[string]bool{"active": active}}
}

// CapturedImage announces that a new still frame is available at ref.
func CapturedImage(ref string) Event {
	return Event{Type: TypeCapturedImage, Data: map[string]string{"ref": ref}}
}

// InferenceText carries the narration produced for the latest capture.
func InferenceText(text string) Event {
	return Event{Type: TypeInferenceText, Data: map[string]string{"text": text}}
}

// Error surfaces a stage failure to subscribers.
func Error(message string) Event {
	return Event{Type: TypeError, Data: map[string]string{"message": message}}
}

// Log relays one log record to subscribers.
func Log(level, message string) Event {
	return Event{Type: TypeLog, Data: map[string]string{"level": level, "message": message}}
}
