// Package web serves the name game to browsers: a static page, a small
// JSON API and a WebSocket per player that mirrors its own engine.
package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/vovakirdan/namegame/internal/game"
	"github.com/vovakirdan/namegame/internal/profile"
)

const (
	timeout = 10 * time.Second
	qrSize  = 320 // mobile-friendly size
)

//go:embed static/index.html
var indexHTML []byte

//go:embed static/app.js
var appJS []byte

// Config holds configuration for the web server.
type Config struct {
	Addr      string // host:port
	PublicURL string // Encoded in /qr
	Version   string
	Seed      int64 // Engine seed, 0 means time-based per connection
}

// Server is the HTTP front end.
type Server struct {
	config   Config
	source   profile.Source
	logger   *log.Logger
	router   *httprouter.Router
	sessions atomic.Int64
	upgrader websocket.Upgrader
}

// NewServer wires the routes.
func NewServer(cfg Config, source profile.Source, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default().WithPrefix("web")
	}

	s := &Server{
		config: cfg,
		source: source,
		logger: logger,
		router: httprouter.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	s.router.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		s.logger.Error("panic", "path", r.URL.Path, "error", i)
		http.Error(w, "An error has occurred. Please try again.", http.StatusInternalServerError)
	}

	s.router.GET("/", s.serveIndex)
	s.router.GET("/app.js", s.serveAppJS)
	s.router.GET("/healthz", s.serveHealthCheck)
	s.router.GET("/version", s.serveVersion)
	s.router.GET("/api/profiles", s.serveProfiles)
	s.router.GET("/qr", s.serveQR)
	s.router.GET("/ws", s.serveWS)

	return s
}

// Handler returns the root handler with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.router)
}

// Sessions returns the number of open WebSocket sessions.
func (s *Server) Sessions() int64 {
	return s.sessions.Load()
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		IdleTimeout:       10 * time.Minute,
		ReadHeaderTimeout: timeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "address", s.config.Addr, "url", s.config.PublicURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errs:
		return err
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func securityHeaders(w http.ResponseWriter) {
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; connect-src 'self' ws: wss:")
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("served",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"took", time.Since(start).Round(time.Microsecond),
		)
	})
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	securityHeaders(w)
	_, _ = w.Write(indexHTML)
}

func (s *Server) serveAppJS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	securityHeaders(w)
	_, _ = w.Write(appJS)
}

func (s *Server) serveHealthCheck(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	securityHeaders(w)
	_, _ = w.Write([]byte("Ok\n"))
}

func (s *Server) serveVersion(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	securityHeaders(w)
	_, _ = w.Write([]byte("namegame v" + s.config.Version + "\n"))
}

type profilesResponse struct {
	Count    int   `json:"count"`
	Playable bool  `json:"playable"`
	Sessions int64 `json:"sessions"`
}

func (s *Server) serveProfiles(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	securityHeaders(w)
	profiles, err := s.source.Profiles(ctx)
	if err != nil {
		s.logger.Warn("cannot load profiles", "error", err)
		writeJSON(w, http.StatusBadGateway, newErrorMessage("could not load profiles"))
		return
	}

	writeJSON(w, http.StatusOK, profilesResponse{
		Count:    len(profiles),
		Playable: len(profiles) >= game.CandidateCount,
		Sessions: s.Sessions(),
	})
}

// serveQR generates a PNG QR code of the public URL using go-qrcode.
func (s *Server) serveQR(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	url := s.config.PublicURL
	if url == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		url = scheme + "://" + r.Host + "/"
	}

	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// serveWS upgrades to a WebSocket with a fresh engine for this player.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()
	logger := s.logger.With("session", id)
	engine := game.NewEngine(game.Options{
		Seed:   s.config.Seed,
		Logger: logger.WithPrefix("engine"),
	})

	c := newClient(id, conn, engine, s.source, logger)

	s.sessions.Add(1)
	logger.Info("session started", "remote", r.RemoteAddr)
	defer func() {
		s.sessions.Add(-1)
		logger.Info("session ended", "remote", r.RemoteAddr)
	}()

	go c.writePump()
	c.readPump(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
