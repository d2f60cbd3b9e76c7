package vlm

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/AnuragGaddu/Narrate/pkg/core"
	"github.com/AnuragGaddu/Narrate/pkg/core/camera"
)

type fakeDescriber struct {
	text  string
	err   error
	delay time.Duration
	panic bool
}

func (f *fakeDescriber) Name() string { return "fake" }

func (f *fakeDescriber) Describe(ctx context.Context, _ *camera.Frame) (string, error) {
	if f.panic {
		panic("backend exploded")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorker_SubmitReturnsDescription(t *testing.T) {
	w := NewWorker(&fakeDescriber{text: "a red mug on a table"}, testLogger())
	defer w.Close()

	text, err := w.Submit(context.Background(), &camera.Frame{JPEG: []byte("x")})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if text != "a red mug on a table" {
		t.Fatalf("text=%q", text)
	}
}

func TestWorker_TimeoutClassified(t *testing.T) {
	w := NewWorker(&fakeDescriber{text: "slow", delay: time.Second}, testLogger())
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := w.Submit(ctx, &camera.Frame{})
	if err == nil {
		t.Fatalf("expected timeout")
	}
	if !core.IsType(err, core.ErrInferenceTimeout) {
		t.Fatalf("type=%v, want inference_timeout", core.TypeOf(err))
	}
}

func TestWorker_PanicIsolatedAndSurvives(t *testing.T) {
	d := &fakeDescriber{panic: true}
	w := NewWorker(d, testLogger())
	defer w.Close()

	_, err := w.Submit(context.Background(), &camera.Frame{})
	if err == nil {
		t.Fatalf("expected error from panicking backend")
	}
	if !core.IsType(err, core.ErrInference) {
		t.Fatalf("type=%v", core.TypeOf(err))
	}

	// The worker goroutine must survive the panic and serve the next call.
	d.panic = false
	d.text = "recovered"
	text, err := w.Submit(context.Background(), &camera.Frame{})
	if err != nil || text != "recovered" {
		t.Fatalf("after panic: text=%q err=%v", text, err)
	}
}

func TestWorker_ClosedWorkerRejects(t *testing.T) {
	w := NewWorker(&fakeDescriber{text: "x"}, testLogger())
	w.Close()
	time.Sleep(10 * time.Millisecond)

	_, err := w.Submit(context.Background(), &camera.Frame{})
	if err == nil {
		t.Fatalf("expected error from closed worker")
	}
}
