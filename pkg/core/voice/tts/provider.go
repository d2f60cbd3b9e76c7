// Package tts provides text-to-speech synthesis for narration output.
package tts

import "context"

// Synthesizer is the opaque synthesize(text) -> audio collaborator.
type Synthesizer interface {
	// Name returns the engine identifier.
	Name() string

	// Available reports whether the engine can synthesize right now.
	// Unavailability is non-fatal to a pipeline run: the narration text
	// has already been delivered when synthesis is attempted.
	Available() bool

	// SynthesizeToFile renders text as a WAV file at path.
	SynthesizeToFile(ctx context.Context, text, path string) error
}
