// Package http exposes the sequencer over REST and server-sent events.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/epsilon"
	"github.com/aretw0/epsilon/internal/logging"
	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/aretw0/epsilon/pkg/locale"
	"github.com/aretw0/epsilon/pkg/region"
	"github.com/aretw0/epsilon/pkg/scheduler"
	"github.com/aretw0/epsilon/pkg/view"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	// LangCookie holds the language shown to the browser.
	LangCookie = "lang"
	// ClientCookie identifies the browser for the preference store.
	ClientCookie = "client_id"

	cookieMaxAge = 30 * 24 * time.Hour
)

// Engine is the control surface served over HTTP.
type Engine interface {
	Play(ctx context.Context) domain.State
	Toggle(ctx context.Context) domain.State
	Pause() domain.State
	Reset() domain.State
	Step() domain.State
	Select(stageID string) domain.State
	Snapshot() domain.State
	Subscribe(l scheduler.Listener) func()
	View(s domain.State, lang string) view.View
	Graph(s domain.State, lang, format string, overlay bool) (string, error)
}

// Server holds the handlers.
type Server struct {
	Engine  Engine
	Streams *StreamManager

	baseCtx  context.Context
	resolver *region.Resolver
	locator  region.Locator
	metrics  http.Handler
	fallback string
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithBaseContext bounds the lifetime of timers started over HTTP.
// Request contexts end with the response, so Play never uses them.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) {
		if ctx != nil {
			s.baseCtx = ctx
		}
	}
}

// WithResolver enables per-client language resolution.
func WithResolver(r *region.Resolver) Option {
	return func(s *Server) {
		s.resolver = r
		if r != nil {
			s.fallback = r.Fallback()
		}
	}
}

// WithLocator serves GET /api/ip through l.
func WithLocator(l region.Locator) Option {
	return func(s *Server) {
		s.locator = l
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates the Server and subscribes its stream manager to the engine.
// Call the returned release function on shutdown.
func NewServer(engine Engine, opts ...Option) (*Server, func()) {
	s := &Server{
		Engine:   engine,
		baseCtx:  context.Background(),
		fallback: locale.Default,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	release := engine.Subscribe(s.Streams.Broadcast)
	return s, release
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) (http.Handler, func()) {
	s, release := NewServer(engine, opts...)
	return s.Routes(), release
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})

	r.Get("/state", s.GetState)
	r.Post("/start", s.control(func(*http.Request) domain.State { return s.Engine.Play(s.baseCtx) }))
	r.Post("/toggle", s.control(func(*http.Request) domain.State { return s.Engine.Toggle(s.baseCtx) }))
	r.Post("/pause", s.control(func(*http.Request) domain.State { return s.Engine.Pause() }))
	r.Post("/reset", s.control(func(*http.Request) domain.State { return s.Engine.Reset() }))
	r.Post("/tick", s.control(func(*http.Request) domain.State { return s.Engine.Step() }))
	r.Post("/select", s.SelectStage)
	r.Get("/graph", s.GetGraph)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/locale", s.GetLocale)
	r.Post("/locale", s.SetLocale)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)

	if s.locator != nil {
		r.Get("/api/ip", region.Handler(s.locator))
	}
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Epsilon API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// Snapshot is the response of every state-returning endpoint.
type Snapshot struct {
	State domain.State `json:"state"`
	View  view.View    `json:"view"`
}

// GetState handles GET /state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w, r, s.Engine.Snapshot())
}

func (s *Server) control(op func(*http.Request) domain.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeSnapshot(w, r, op(r))
	}
}

// SelectStage handles POST /select.
func (s *Server) SelectStage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StageID string `json:"stage_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("SelectStage: Invalid request body", "error", err)
		return
	}
	s.writeSnapshot(w, r, s.Engine.Select(body.StageID))
}

// GetGraph handles GET /graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "mermaid"
	}
	overlay := true
	if v := r.URL.Query().Get("overlay"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid overlay: %v", err), http.StatusBadRequest)
			return
		}
		overlay = b
	}

	out, err := s.Engine.Graph(s.Engine.Snapshot(), s.lang(w, r), format, overlay)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

// SubscribeEvents handles GET /events (SSE). Every snapshot emitted by the
// engine is rendered in the client's language.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	lang := s.lang(w, r)
	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Client connected", "lang", lang)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	if err := s.writeEvent(w, lang, s.Engine.Snapshot()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected")
			return
		case st, ok := <-ch:
			if !ok {
				return
			}
			if err := s.writeEvent(w, lang, st); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) writeEvent(w http.ResponseWriter, lang string, st domain.State) error {
	payload, err := json.Marshal(Snapshot{State: st, View: s.Engine.View(st, lang)})
	if err != nil {
		s.logger.Error("SSE: encode failed", "error", err)
		return err
	}
	_, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload)
	return err
}

// Locale is the body of the /locale endpoints.
type Locale struct {
	Lang      string   `json:"lang"`
	Supported []string `json:"supported,omitempty"`
}

// GetLocale handles GET /locale.
func (s *Server) GetLocale(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, Locale{Lang: s.lang(w, r), Supported: []string{locale.English, locale.Spanish}})
}

// SetLocale handles POST /locale.
func (s *Server) SetLocale(w http.ResponseWriter, r *http.Request) {
	var body Locale
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	lang, err := locale.Parse(body.Lang)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if s.resolver != nil {
		if _, err := s.resolver.Set(r.Context(), s.clientID(w, r), lang); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	setLangCookie(w, lang)
	writeJSON(w, s.logger, Locale{Lang: lang, Supported: []string{locale.English, locale.Spanish}})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	writeJSON(w, s.logger, map[string]any{
		"app":         "epsilon-http",
		"version":     strings.TrimSpace(epsilon.Version),
		"api_version": apiVersion,
		"streams":     s.Streams.Count(),
	})
}

// lang resolves the display language: ?lang=, then the lang cookie, then the
// resolver (stored preference or geolocation), then the fallback.
func (s *Server) lang(w http.ResponseWriter, r *http.Request) string {
	if q := r.URL.Query().Get("lang"); q != "" {
		if lang, err := locale.Parse(q); err == nil {
			return lang
		}
	}
	if c, err := r.Cookie(LangCookie); err == nil {
		if lang, err := locale.Parse(c.Value); err == nil {
			return lang
		}
	}
	if s.resolver == nil {
		return s.fallback
	}

	lang := s.resolver.Resolve(r.Context(), s.clientID(w, r), region.ClientIP(r))
	setLangCookie(w, lang)
	return lang
}

// clientID returns the client cookie, issuing one when absent.
func (s *Server) clientID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(ClientCookie); err == nil && c.Value != "" {
		return c.Value
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		s.logger.Warn("Client id generation failed", "error", err)
		return ""
	}
	id := hex.EncodeToString(buf)
	http.SetCookie(w, &http.Cookie{
		Name:     ClientCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func setLangCookie(w http.ResponseWriter, lang string) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookie,
		Value:    lang,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) writeSnapshot(w http.ResponseWriter, r *http.Request, st domain.State) {
	writeJSON(w, s.logger, Snapshot{State: st, View: s.Engine.View(st, s.lang(w, r))})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "error", err)
	}
}
