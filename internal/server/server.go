// Package server implements the spritetag HTTP API.
//
// Uploading a sprite starts a session that is processed in the background.
// Clients poll the session or follow its server-sent event stream and query
// the tagged icons with a search term:
//
//	POST   /api/sessions                 upload a sprite (multipart "file" or raw image/svg+xml body)
//	GET    /api/sessions                 list sessions
//	GET    /api/sessions/{id}            progress and icon count
//	GET    /api/sessions/{id}/icons?q=   tagged icons, filtered by q
//	GET    /api/sessions/{id}/events     server-sent events
//	DELETE /api/sessions/{id}            drop a session
//	GET    /healthz                      liveness
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/spritetag/pkg/pipeline"
	"github.com/matzehuels/spritetag/pkg/session"
)

// Defaults.
const (
	// DefaultMaxUpload bounds the size of an uploaded sprite.
	DefaultMaxUpload = 10 << 20

	heartbeatInterval = 15 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server serves the HTTP API. Sessions are processed on background
// goroutines that stop when [Server.Close] is called.
type Server struct {
	Runner    *pipeline.Runner
	Store     session.Store
	Logger    *log.Logger
	MaxUpload int64

	router *chi.Mux

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a server. A nil store uses an in-memory store.
func New(runner *pipeline.Runner, store session.Store, logger *log.Logger) *Server {
	if store == nil {
		store = session.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		Runner:    runner,
		Store:     store,
		Logger:    logger,
		MaxUpload: DefaultMaxUpload,
		baseCtx:   ctx,
		cancel:    cancel,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/icons", s.handleIcons)
			r.Get("/events", s.handleEvents)
		})
	})
	return r
}

// start processes upload in the background.
func (s *Server) start(sess *session.Session, up pipeline.Upload) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer sess.Finish()
		if _, err := s.Runner.Process(sess.Bind(s.baseCtx), up, sess); err != nil {
			s.Logger.Warn("session ended early", "session", sess.ID, "err", err)
		}
	}()
}

// Close cancels running sessions and waits for them to stop.
func (s *Server) Close() error {
	s.cancel()
	s.wg.Wait()
	return nil
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully and stops background sessions.
func (s *Server) ListenAndServe(ctx context.Context, addr string, sessionTTL time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if sessionTTL > 0 {
		go session.RunCleanup(s.baseCtx, s.Store, sessionTTL/4+time.Second, sessionTTL)
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Stop sessions first so open event streams end.
	s.cancel()
	err := srv.Shutdown(shutdownCtx)
	s.wg.Wait()
	return err
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
