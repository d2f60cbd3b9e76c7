// Package core holds the error taxonomy shared by the capture, inference
// and speech stages.
package core

import (
	"errors"
	"fmt"
)

// Error represents a classified pipeline error.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorType categorizes stage failures.
type ErrorType string

const (
	ErrCameraUnavailable    ErrorType = "camera_unavailable"
	ErrCaptureTimeout       ErrorType = "capture_timeout"
	ErrCaptureProcess       ErrorType = "capture_process_error"
	ErrStreamDecode         ErrorType = "stream_decode_error"
	ErrInferenceTimeout     ErrorType = "inference_timeout"
	ErrInference            ErrorType = "inference_error"
	ErrSynthesisUnavailable ErrorType = "synthesis_unavailable"
	ErrSynthesisFailed      ErrorType = "synthesis_failed"
	ErrPlayback             ErrorType = "playback_error"
	ErrPlaybackTimeout      ErrorType = "playback_timeout"
	ErrInvalidRequest       ErrorType = "invalid_request_error"
	ErrBusy                 ErrorType = "busy_error"
)

// maxDetailLen bounds stderr captured from subprocesses for display.
const maxDetailLen = 500

// NewError creates a classified error.
func NewError(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// NewErrorWithDetail creates a classified error carrying subprocess output
// or similar diagnostics, truncated for display.
func NewErrorWithDetail(t ErrorType, message, detail string) *Error {
	return &Error{Type: t, Message: message, Detail: TruncateDetail(detail)}
}

// TruncateDetail bounds diagnostic strings to a displayable length.
func TruncateDetail(s string) string {
	if len(s) > maxDetailLen {
		return s[:maxDetailLen]
	}
	return s
}

// TypeOf returns the ErrorType of err, or ErrInference when err carries no
// classification.
func TypeOf(err error) ErrorType {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrInference
}

// MessageOf returns the display message of a classified error, or
// err.Error() when err carries no classification.
func MessageOf(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}

// IsType reports whether err is classified as t.
func IsType(err error, t ErrorType) bool {
	return TypeOf(err) == t
}
