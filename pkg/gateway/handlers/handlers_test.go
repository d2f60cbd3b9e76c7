package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AnuragGaddu/Narrate/pkg/core"
	"github.com/AnuragGaddu/Narrate/pkg/core/camera"
	"github.com/AnuragGaddu/Narrate/pkg/core/events"
	"github.com/AnuragGaddu/Narrate/pkg/gateway/config"
)

type fakePipeline struct {
	mu        sync.Mutex
	runs      []string
	spoken    []string
	stopped   int
	busy      bool
	snapshot  []byte
	narration string
	speakErr  error
	runErr    error
}

func (p *fakePipeline) Run(ctx context.Context, source string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs = append(p.runs, source)
	return p.runErr
}

func (p *fakePipeline) Speak(ctx context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spoken = append(p.spoken, text)
	return p.speakErr
}

func (p *fakePipeline) StopSpeaking() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped++
}

func (p *fakePipeline) Busy() bool { return p.busy }

func (p *fakePipeline) Snapshot() []byte { return p.snapshot }

func (p *fakePipeline) LastNarration() string { return p.narration }

func (p *fakePipeline) runCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.runs)
}

func TestTriggerStartsRunAndAcknowledges(t *testing.T) {
	p := &fakePipeline{}
	bus := events.NewBroadcaster(0)
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	h := TriggerHandler{Pipeline: p, Bus: bus}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/trigger", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "started" {
		t.Fatalf("resp = %v", resp)
	}

	// trigger(true) then status(triggered) reach subscribers immediately,
	// before the run finishes.
	ev := <-sub.C()
	if ev.Type != events.TypeTrigger {
		t.Fatalf("first event = %s, want trigger", ev.Type)
	}
	ev = <-sub.C()
	if ev.Type != events.TypeStatus || ev.Data.(string) != "triggered" {
		t.Fatalf("second event = %+v, want status triggered", ev)
	}

	deadline := time.Now().Add(2 * time.Second)
	for p.runCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Run never invoked")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTriggerRejectsGet(t *testing.T) {
	h := TriggerHandler{Pipeline: &fakePipeline{}, Bus: events.NewBroadcaster(0)}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trigger", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestImageNoContentBeforeFirstCapture(t *testing.T) {
	h := ImageHandler{Pipeline: &fakePipeline{}}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/captured_image", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestImageServesSnapshot(t *testing.T) {
	jpeg := []byte{0xff, 0xd8, 0x01, 0xff, 0xd9}
	h := ImageHandler{Pipeline: &fakePipeline{snapshot: jpeg}}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/captured_image", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("Content-Type = %q", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), jpeg) {
		t.Fatal("body differs from snapshot")
	}
}

func TestSpeakWithText(t *testing.T) {
	p := &fakePipeline{}
	h := SpeakHandler{Pipeline: p}
	body := strings.NewReader(`{"text":"hello there"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/speak", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(p.spoken) != 1 || p.spoken[0] != "hello there" {
		t.Fatalf("spoken = %v", p.spoken)
	}
}

func TestSpeakReplaysLastNarration(t *testing.T) {
	p := &fakePipeline{narration: "a red mug on a table"}
	h := SpeakHandler{Pipeline: p}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/speak", strings.NewReader("")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(p.spoken) != 1 || p.spoken[0] != "a red mug on a table" {
		t.Fatalf("spoken = %v, want last narration replayed unchanged", p.spoken)
	}
}

func TestSpeakNoTextAnywhere(t *testing.T) {
	h := SpeakHandler{Pipeline: &fakePipeline{}}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/speak", strings.NewReader("{}")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSpeakUnavailableMapsTo503(t *testing.T) {
	p := &fakePipeline{speakErr: core.NewError(core.ErrSynthesisUnavailable, "tts engine not available")}
	h := SpeakHandler{Pipeline: p}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/speak", strings.NewReader(`{"text":"x"}`)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestSpeakFailureMapsTo500(t *testing.T) {
	p := &fakePipeline{speakErr: core.NewError(core.ErrSynthesisFailed, "TTS synthesis failed")}
	h := SpeakHandler{Pipeline: p}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/speak", strings.NewReader(`{"text":"x"}`)))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil || env.Error == nil {
		t.Fatalf("error envelope missing: %s", rec.Body.String())
	}
	if env.Error.Type != core.ErrSynthesisFailed {
		t.Fatalf("error type = %s", env.Error.Type)
	}
}

func TestStopSpeech(t *testing.T) {
	p := &fakePipeline{}
	h := StopSpeechHandler{Pipeline: p}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stop_tts", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if p.stopped != 1 {
		t.Fatalf("stopped = %d", p.stopped)
	}
}

func TestVideoFeedStreamsFrames(t *testing.T) {
	buffer := &camera.Buffer{}
	buffer.Store([]byte{0xff, 0xd8, 0xaa, 0xff, 0xd9})

	h := VideoHandler{Buffer: buffer, Freeze: &camera.Freeze{}, Interval: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/video_feed", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.ServeHTTP(rec, req)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "multipart/x-mixed-replace") {
		t.Fatalf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "--FRAME\r\n") {
		t.Fatalf("body missing boundary: %q", body[:min(len(body), 120)])
	}
	if !strings.Contains(body, "Content-Type: image/jpeg") {
		t.Fatal("body missing part content type")
	}
}

func TestVideoFeedPrefersFrozenFrame(t *testing.T) {
	buffer := &camera.Buffer{}
	buffer.Store([]byte{0xff, 0xd8, 0x01, 0xff, 0xd9})
	freeze := &camera.Freeze{}
	freeze.Set([]byte{0xff, 0xd8, 0x02, 0xff, 0xd9}, time.Minute)

	h := VideoHandler{Buffer: buffer, Freeze: freeze}
	got := h.currentFrame()
	if got[2] != 0x02 {
		t.Fatal("live frame served while freeze window active")
	}
}

func TestEventsFeedDeliversAndKeepsAlive(t *testing.T) {
	bus := events.NewBroadcaster(0)
	h := EventsHandler{Bus: bus, Keepalive: 20 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.ServeHTTP(rec, req)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for bus.Count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("handler never subscribed")
		}
		time.Sleep(time.Millisecond)
	}

	bus.Broadcast(events.Status("capturing"))
	time.Sleep(60 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, `data: {"type":"status","data":"capturing"}`) {
		t.Fatalf("event not delivered: %q", body)
	}
	if !strings.Contains(body, ": keepalive") {
		t.Fatalf("no keepalive comment: %q", body)
	}
	if bus.Count() != 0 {
		t.Fatal("subscriber not removed on disconnect")
	}
}

func TestDashboardServesHTML(t *testing.T) {
	h := DashboardHandler{}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/video_feed") {
		t.Fatal("page does not embed video feed")
	}
}

func TestDashboardUnknownPathIs404(t *testing.T) {
	h := DashboardHandler{}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestReadyReportsComponentState(t *testing.T) {
	h := ReadyHandler{
		Config: config.Config{
			GeminiAPIKey:         "k",
			VideoFrameInterval:   50 * time.Millisecond,
			SSEKeepaliveInterval: time.Second,
			FreezeWindow:         time.Second,
		},
		CameraReady:  func() bool { return true },
		TTSAvailable: func() bool { return false },
		VoiceActive:  func() bool { return true },
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["ok"] != true || resp["camera_ready"] != true || resp["tts_available"] != false {
		t.Fatalf("resp = %v", resp)
	}
}

func TestReadyFailsWithoutAPIKey(t *testing.T) {
	h := ReadyHandler{Config: config.Config{
		VideoFrameInterval:   50 * time.Millisecond,
		SSEKeepaliveInterval: time.Second,
		FreezeWindow:         time.Second,
	}}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
