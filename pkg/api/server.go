// Package api serves the mask pipeline over HTTP.
//
// # Endpoints
//
//	GET  /healthz              liveness probe
//	GET  /version              build information
//	POST /v1/masks?format=png  generate a mask and return one artifact
//
// The mask endpoint takes pipeline options as its JSON body:
//
//	curl -X POST 'localhost:8080/v1/masks?format=png' \
//	    -d '{"dims": [64, 64], "sigma": 1.5}' -o mask.png
//
// Responses carry the artifact with its content type, an X-Cache header
// ("hit" when neither stage had to run) and the mask's content hash in
// X-Mask-Hash. Errors are JSON objects with a machine-readable code.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/dithermask/pkg/pipeline"
)

// DefaultMaxPixels bounds the grid size a single request may ask for. The
// generator's cost grows with the square of the pixel count.
const DefaultMaxPixels = 256 * 256

// maxBodyBytes bounds the request body.
const maxBodyBytes = 1 << 20

// Server is the HTTP API.
type Server struct {
	runner    *pipeline.Runner
	logger    *log.Logger
	maxPixels int
	timeout   time.Duration
	router    chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxPixels sets the largest grid a request may ask for.
func WithMaxPixels(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxPixels = n
		}
	}
}

// WithTimeout bounds the time spent generating one mask. Zero disables the
// bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New creates a server backed by runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:    runner,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
		maxPixels: DefaultMaxPixels,
		timeout:   2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/masks", s.handleCreateMask)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound(r.URL.Path))
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully, waiting up to ten seconds for in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
