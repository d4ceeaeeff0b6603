package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/Jim-devENG/ispora-engine/internal/auth"
	"github.com/Jim-devENG/ispora-engine/internal/database"
	"github.com/Jim-devENG/ispora-engine/internal/metrics"
	"github.com/Jim-devENG/ispora-engine/internal/web/handlers"
	"github.com/Jim-devENG/ispora-engine/internal/web/middleware"
)

// Options configures the HTTP server.
type Options struct {
	Addr            string
	AllowedNet      *net.IPNet // nil allows every source
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Server represents the web server
type Server struct {
	opts     Options
	router   *chi.Mux
	handlers *handlers.Handlers
	metrics  *metrics.Metrics
}

// NewServer creates a new web server
func NewServer(db *database.DB, devKeys *auth.DevKeyService, m *metrics.Metrics, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}

	s := &Server{
		opts:     opts,
		router:   chi.NewRouter(),
		handlers: handlers.New(db, devKeys, m),
		metrics:  m,
	}
	s.setupRoutes()
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	r := s.router
	h := s.handlers

	r.Use(chimiddleware.RequestID)
	// AllowSubnet must come BEFORE RealIP so we check the actual connection source
	r.Use(middleware.AllowSubnet(s.opts.AllowedNet))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	if s.metrics != nil {
		r.Use(middleware.Metrics(s.metrics))
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", auth.DevKeyHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimiddleware.Timeout(s.opts.RequestTimeout))

	r.Get("/health", h.Health)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/cors-test", h.CORSTest)
		r.Get("/feed", h.Feed)

		r.Get("/projects", h.ListProjects)
		r.Post("/projects", h.CreateProject)

		r.Get("/sessions", h.ListSessions)
		r.Post("/sessions", h.CreateSession)

		r.Get("/tasks", h.ListTasks)
		r.Post("/tasks", h.CreateTask)

		r.Get("/notifications", h.Notifications)

		r.Get("/dev/verify", h.VerifyDevKey)
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.opts.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.opts.Addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
