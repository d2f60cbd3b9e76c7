package vlm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/AnuragGaddu/Narrate/pkg/core"
	"github.com/AnuragGaddu/Narrate/pkg/core/camera"
)

// Worker runs inference on a single dedicated goroutine so that a stalled
// or compute-heavy describer can never starve the callers' goroutines, and
// so a panicking backend is isolated from them. Submissions are serialized;
// the caller bounds each with a context deadline.
type Worker struct {
	describer Describer
	logger    *slog.Logger
	reqs      chan request
	done      chan struct{}
	closeOnce sync.Once
}

type request struct {
	ctx   context.Context
	frame *camera.Frame
	reply chan result
}

type result struct {
	text string
	err  error
}

// NewWorker starts the dispatch goroutine.
func NewWorker(d Describer, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Worker{
		describer: d,
		logger:    logger,
		reqs:      make(chan request),
		done:      make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	for {
		select {
		case <-w.done:
			return
		case req := <-w.reqs:
			text, err := w.describe(req.ctx, req.frame)
			req.reply <- result{text: text, err: err}
		}
	}
}

// describe invokes the backend, converting a panic into an error so the
// worker survives a crashing describer.
func (w *Worker) describe(ctx context.Context, frame *camera.Frame) (text string, err error) {
	defer func() {
		if v := recover(); v != nil {
			w.logger.Error("describer panicked", "backend", w.describer.Name(), "panic", v)
			err = core.NewErrorWithDetail(core.ErrInference, "inference backend crashed", fmt.Sprint(v))
		}
	}()
	return w.describer.Describe(ctx, frame)
}

// Submit dispatches frame to the worker and waits for the description or
// the context deadline. A timeout is classified as InferenceTimeout; the
// in-flight backend call keeps running on the worker until its own context
// check fires.
func (w *Worker) Submit(ctx context.Context, frame *camera.Frame) (string, error) {
	req := request{ctx: ctx, frame: frame, reply: make(chan result, 1)}

	select {
	case w.reqs <- req:
	case <-ctx.Done():
		return "", timeoutErr(ctx.Err())
	case <-w.done:
		return "", core.NewError(core.ErrInference, "inference worker closed")
	}

	select {
	case res := <-req.reply:
		if res.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", timeoutErr(ctx.Err())
		}
		return res.text, res.err
	case <-ctx.Done():
		return "", timeoutErr(ctx.Err())
	}
}

// Close stops the dispatch goroutine. In-flight work completes; queued
// submissions fail. Safe to call more than once.
func (w *Worker) Close() {
	w.closeOnce.Do(func() { close(w.done) })
}

func timeoutErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewError(core.ErrInferenceTimeout, "inference timed out")
	}
	return core.NewErrorWithDetail(core.ErrInference, "inference canceled", err.Error())
}
