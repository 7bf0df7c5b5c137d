// Package http exposes the course schedule over a small JSON REST API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/alem-hub/course-schedule/internal/application/command"
	"github.com/alem-hub/course-schedule/internal/application/query"
	"github.com/alem-hub/course-schedule/internal/interface/http/handlers"
	"github.com/alem-hub/course-schedule/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config controls the listener, timeouts and request limits.
type Config struct {
	Host string
	Port int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxHeaderBytes int
	MaxBodyBytes   int64

	// AllowedOrigins enables CORS when not empty.
	AllowedOrigins []string

	// Version is reported in response metadata.
	Version string
}

func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    time.Minute,
		MaxHeaderBytes: 1 << 20,
		MaxBodyBytes:   1 << 20,
		Version:        "v1",
	}
}

func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Dependencies are the application handlers behind the routes. Routes of a
// nil handler answer 501.
type Dependencies struct {
	GetSchedule        *query.GetScheduleHandler
	ListCourseTasks    *query.ListCourseTasksHandler
	GetUpdatedTasks    *query.GetUpdatedTasksHandler
	GetPendingDeadline *query.GetPendingDeadlineHandler
	GetCourseTask      *query.GetCourseTaskHandler
	GetTasksByOwner    *query.GetTasksByOwnerHandler

	CopySchedule         *command.CopyScheduleHandler
	SaveCourseTask       *command.SaveCourseTaskHandler
	DisableCourseTask    *command.DisableCourseTaskHandler
	GenerateCertificates *command.GenerateCertificatesHandler

	Logger        *logger.Logger
	HealthChecker handlers.HealthChecker
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

type Server struct {
	config  Config
	deps    Dependencies
	logger  *logger.Logger
	router  *http.ServeMux
	handler http.Handler
}

func NewServer(config Config, deps Dependencies) *Server {
	s := &Server{config: config, deps: deps, logger: deps.Logger, router: http.NewServeMux()}
	if s.logger == nil {
		s.logger = logger.Default()
	}
	if s.deps.HealthChecker == nil {
		s.deps.HealthChecker = handlers.NewChecker("")
	}
	s.setupRoutes()
	s.handler = s.wrap(s.router)
	return s
}

// Handler returns the router with every middleware applied.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is done, then drains in-flight requests for at most
// shutdownTimeout. A listener failure is returned immediately.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Address(), err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
		MaxHeaderBytes:    s.config.MaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()
	s.logger.Info("http server listening", logger.String("address", ln.Addr().String()))

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down", logger.Any("timeout", shutdownTimeout.String()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Health & Status Endpoints
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /healthz", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /live", s.handleLive)

	// ─────────────────────────────────────────────────────────────────────────
	// Schedule
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /api/v1/courses/{courseId}/schedule", s.handleGetSchedule)
	s.router.HandleFunc("POST /api/v1/courses/{courseId}/schedule/copy", s.handleCopySchedule)

	// ─────────────────────────────────────────────────────────────────────────
	// Course Tasks
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /api/v1/courses/{courseId}/tasks", s.handleListCourseTasks)
	s.router.HandleFunc("GET /api/v1/courses/{courseId}/tasks/updated", s.handleGetUpdatedTasks)
	s.router.HandleFunc("GET /api/v1/courses/{courseId}/tasks/pending-deadline", s.handleGetPendingDeadline)
	s.router.HandleFunc("POST /api/v1/courses/{courseId}/tasks", s.handleCreateCourseTask)
	s.router.HandleFunc("GET /api/v1/course-tasks/owner/{githubId}", s.handleGetTasksByOwner)
	s.router.HandleFunc("GET /api/v1/course-tasks/{id}", s.handleGetCourseTask)
	s.router.HandleFunc("PUT /api/v1/course-tasks/{id}", s.handleUpdateCourseTask)
	s.router.HandleFunc("DELETE /api/v1/course-tasks/{id}", s.handleDisableCourseTask)

	// ─────────────────────────────────────────────────────────────────────────
	// Certificates
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("POST /api/v1/courses/{courseId}/certificates", s.handleGenerateCertificates)
}
