package handlers

import "context"

// Pipeline is the slice of the orchestrator the HTTP surface needs.
type Pipeline interface {
	Run(ctx context.Context, source string) error
	Speak(ctx context.Context, text string) error
	StopSpeaking()
	Busy() bool
	Snapshot() []byte
	LastNarration() string
}
