// Package server assembles the portal's routes and middleware chain.
package server

import (
	"log/slog"
	"net/http"

	"github.com/AnuragGaddu/Narrate/pkg/core/camera"
	"github.com/AnuragGaddu/Narrate/pkg/core/events"
	"github.com/AnuragGaddu/Narrate/pkg/gateway/config"
	"github.com/AnuragGaddu/Narrate/pkg/gateway/handlers"
	"github.com/AnuragGaddu/Narrate/pkg/gateway/mw"
)

// Deps are the core components the HTTP surface exposes.
type Deps struct {
	Pipeline handlers.Pipeline
	Bus      *events.Broadcaster
	Buffer   *camera.Buffer
	Freeze   *camera.Freeze

	CameraReady  func() bool
	TTSAvailable func() bool
	VoiceActive  func() bool
}

type Server struct {
	cfg    config.Config
	logger *slog.Logger
	mux    *http.ServeMux
	deps   Deps
}

func New(cfg config.Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		mux:    http.NewServeMux(),
		deps:   deps,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Handle("/", handlers.DashboardHandler{})
	s.mux.Handle("/healthz", handlers.HealthHandler{})
	s.mux.Handle("/readyz", handlers.ReadyHandler{
		Config:       s.cfg,
		CameraReady:  s.deps.CameraReady,
		TTSAvailable: s.deps.TTSAvailable,
		VoiceActive:  s.deps.VoiceActive,
	})

	s.mux.Handle("/video_feed", handlers.VideoHandler{
		Buffer:   s.deps.Buffer,
		Freeze:   s.deps.Freeze,
		Interval: s.cfg.VideoFrameInterval,
	})
	s.mux.Handle("/events", handlers.EventsHandler{
		Bus:       s.deps.Bus,
		Keepalive: s.cfg.SSEKeepaliveInterval,
		Logger:    s.logger,
	})

	trigger := handlers.TriggerHandler{
		Pipeline: s.deps.Pipeline,
		Bus:      s.deps.Bus,
		Logger:   s.logger,
		Source:   "http",
	}
	s.mux.Handle("/trigger", trigger)
	s.mux.Handle("/capture", trigger)

	s.mux.Handle("/captured_image", handlers.ImageHandler{Pipeline: s.deps.Pipeline})
	s.mux.Handle("/speak", handlers.SpeakHandler{Pipeline: s.deps.Pipeline})
	s.mux.Handle("/stop_tts", handlers.StopSpeechHandler{Pipeline: s.deps.Pipeline})
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.CORS(s.cfg, h)
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}
