// Package server exposes the booking assistant over HTTP: batch and
// streaming transcription, text processing, the station catalog, booking
// lookup, health probes, and Prometheus metrics.
//
// The handlers are deliberately thin; the pipeline (speech → language
// detection → rule cascade → optional LLM intent recovery → booking side
// effects) lives in pipeline.go and is shared by the REST and websocket
// surfaces.
package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vaanilabs/vaani/internal/booking"
	"github.com/vaanilabs/vaani/internal/catalog"
	"github.com/vaanilabs/vaani/internal/health"
	"github.com/vaanilabs/vaani/internal/nlu"
	"github.com/vaanilabs/vaani/internal/nlu/llmintent"
	"github.com/vaanilabs/vaani/internal/nlu/translit"
	"github.com/vaanilabs/vaani/internal/observe"
	"github.com/vaanilabs/vaani/pkg/provider/stt"
)

// maxAudioBytes caps uploaded and streamed audio at 10 MiB, roughly five
// minutes of 16 kHz mono PCM. Booking utterances are seconds long.
const maxAudioBytes = 10 << 20

// Server holds the assembled pipeline and serves the HTTP API.
type Server struct {
	processor *nlu.Processor
	catalog   *catalog.Catalog
	bookings  *booking.Service
	translit  *translit.Transliterator

	// stt is nil when no speech provider is configured; audio endpoints
	// then return 503.
	stt stt.Provider

	// classifier is nil when the LLM intent path is not configured.
	classifier *llmintent.Classifier

	metrics *observe.Metrics
	health  *health.Handler
	log     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithSTT sets the speech-to-text provider (usually a resilience.STTFallback).
func WithSTT(p stt.Provider) Option {
	return func(s *Server) { s.stt = p }
}

// WithClassifier enables LLM intent recovery for rule-cascade unknowns.
func WithClassifier(c *llmintent.Classifier) Option {
	return func(s *Server) { s.classifier = c }
}

// WithTransliterator overrides the default offline transliterator.
func WithTransliterator(tr *translit.Transliterator) Option {
	return func(s *Server) { s.translit = tr }
}

// WithHealth sets the health handler with its readiness checkers.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithMetrics overrides the default metrics instance, for tests.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New assembles a Server around the rule processor, station catalog, and
// booking service. Optional pieces (speech provider, LLM classifier,
// transliteration service) are attached via options.
func New(processor *nlu.Processor, cat *catalog.Catalog, bookings *booking.Service, opts ...Option) *Server {
	s := &Server{
		processor: processor,
		catalog:   cat,
		bookings:  bookings,
		translit:  translit.New(),
		health:    health.New(),
		metrics:   observe.DefaultMetrics(),
		log:       slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Routes returns the fully wired handler: API routes behind the observe
// middleware, plus health probes and the Prometheus scrape endpoint.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/transcribe", s.handleTranscribe)
	mux.HandleFunc("POST /api/process", s.handleProcess)
	mux.HandleFunc("GET /api/stations", s.handleStations)
	mux.HandleFunc("GET /api/bookings/{id}", s.handleGetBooking)
	mux.HandleFunc("DELETE /api/bookings/{id}", s.handleCancelBooking)
	mux.HandleFunc("GET /ws/transcribe", s.handleStream)

	s.health.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	return observe.Middleware(s.metrics)(mux)
}
