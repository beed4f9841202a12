// Package server exposes the form builder over HTTP: stateless REST
// endpoints for generation and review, and a websocket carrying one live
// builder session per connection.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/codegen"
	"github.com/goliatone/go-formbuilder/pkg/preference"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

// DefaultMaxBodyBytes bounds request bodies and websocket messages when the
// configuration leaves it unset.
const DefaultMaxBodyBytes = 1 << 20

// Config holds server configuration and collaborators.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// AllowedOrigins are websocket origin patterns accepted besides the
	// request host.
	AllowedOrigins []string
	MaxBodyBytes   int64

	// Preferences backs the library choice of websocket sessions; an
	// in-memory store when nil.
	Preferences preference.Store
	Generator   *codegen.Generator
	Table       *variants.Table
	Preview     render.PreviewOptions
	CatalogURL  string
	Logger      *log.Logger

	// DefaultTarget is used when a request names no target and no
	// preference is stored.
	DefaultTarget string
}

// Server routes API and websocket requests.
type Server struct {
	cfg       Config
	router    chi.Router
	generator *codegen.Generator
	table     *variants.Table
	logger    *log.Logger
}

// New builds a Server and its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Table == nil {
		cfg.Table = variants.Default()
	}
	if cfg.Preferences == nil {
		cfg.Preferences = preference.NewMemory()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Generator == nil {
		generator, err := codegen.New(codegen.WithVariantTable(cfg.Table), codegen.WithLogger(cfg.Logger))
		if err != nil {
			return nil, fmt.Errorf("server: create generator: %w", err)
		}
		cfg.Generator = generator
	}

	if _, err := cfg.Generator.Targets().Parse(cfg.DefaultTarget); err != nil {
		return nil, fmt.Errorf("server: default target: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		generator: cfg.Generator,
		table:     cfg.Table,
		logger:    cfg.Logger,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/variants", s.handleVariants)
		r.Get("/targets", s.handleTargets)
		r.Post("/review", s.handleReview)
		r.Post("/generate", s.handleGenerate)
		r.Post("/schema", s.handleSchema)
		r.Post("/validate", s.handleValidate)
		r.Post("/import/openapi", s.handleImportOpenAPI)
	})

	r.Get("/ws", s.handleWebsocket)
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("server: listening on %s", s.cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// newSession creates a builder session sharing the server's generator.
func (s *Server) newSession(ctx context.Context, notifier builder.Notifier) (*builder.Session, error) {
	return builder.New(ctx,
		builder.WithGenerator(s.generator),
		builder.WithTable(s.table),
		builder.WithDefaultLibrary(s.cfg.DefaultTarget),
		builder.WithPreferenceStore(s.cfg.Preferences),
		builder.WithNotifier(notifier),
		builder.WithPreviewOptions(s.cfg.Preview),
		builder.WithCatalogURL(s.cfg.CatalogURL),
		builder.WithLogger(s.logger),
	)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Printf("server: %s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Microsecond))
	})
}
