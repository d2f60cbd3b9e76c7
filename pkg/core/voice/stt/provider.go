// Package stt provides streaming speech recognition for the voice trigger.
package stt

import "context"

// Result is the recognizer's answer for one audio chunk: either an interim
// partial transcript or a finalized utterance.
type Result struct {
	Text  string
	Final bool
}

// Recognizer consumes fixed-size PCM chunks and yields transcripts. It is
// driven by a single goroutine; implementations need not be safe for
// concurrent use.
type Recognizer interface {
	// Name returns the recognizer identifier.
	Name() string

	// Accept feeds one chunk of 16-bit mono PCM and returns the current
	// partial or finalized transcript.
	Accept(ctx context.Context, chunk []byte) (Result, error)

	// Reset discards buffered recognition state, so a fired trigger
	// cannot re-fire on a stale partial transcript.
	Reset(ctx context.Context) error

	// Close releases the recognizer.
	Close() error
}
