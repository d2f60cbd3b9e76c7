package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_ErrorString(t *testing.T) {
	e := NewError(ErrCaptureTimeout, "rpicam-still timed out")
	if got := e.Error(); got != "capture_timeout: rpicam-still timed out" {
		t.Fatalf("Error()=%q", got)
	}

	e = NewErrorWithDetail(ErrCaptureProcess, "rpicam-still failed", "exit status 1")
	if got := e.Error(); !strings.Contains(got, "exit status 1") {
		t.Fatalf("Error()=%q, want detail included", got)
	}
}

func TestNewErrorWithDetail_TruncatesDetail(t *testing.T) {
	long := strings.Repeat("x", 2000)
	e := NewErrorWithDetail(ErrCaptureProcess, "failed", long)
	if len(e.Detail) != maxDetailLen {
		t.Fatalf("detail len=%d, want %d", len(e.Detail), maxDetailLen)
	}
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("stage: %w", NewError(ErrCameraUnavailable, "no backend"))
	if got := TypeOf(wrapped); got != ErrCameraUnavailable {
		t.Fatalf("TypeOf=%v", got)
	}
	if got := TypeOf(errors.New("plain")); got != ErrInference {
		t.Fatalf("TypeOf(plain)=%v, want inference_error", got)
	}
	if !IsType(wrapped, ErrCameraUnavailable) {
		t.Fatalf("IsType=false")
	}
}
