package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"scriptdna/internal/export"
	"scriptdna/internal/generation"
	"scriptdna/internal/logging"
	"scriptdna/internal/notifications"
	"scriptdna/internal/pipeline"
	"scriptdna/internal/stages"
)

const maxTranscriptBytes = 8 << 20

// Options configures a Server.
type Options struct {
	Bind      string
	Generator generation.Generator
	// Provider names the generation backend in health responses.
	Provider string
	// Health performs a live provider check for /api/health?deep=1.
	Health   func(context.Context) error
	Exporter *export.Writer
	// Notifier, when set, is told about every file export.
	Notifier      notifications.Service
	DefaultScript stages.ScriptConfig
	MaxSessions   int
	Logger        *slog.Logger
}

// Server is the HTTP transport over in-memory pipeline sessions.
type Server struct {
	opts     Options
	logger   *slog.Logger
	sessions *registry
	echo     *echo.Echo

	listener net.Listener
	server   *http.Server
}

// NewServer builds the router. Call Start to listen on opts.Bind.
func NewServer(opts Options) *Server {
	if opts.DefaultScript.Parts == 0 && opts.DefaultScript.TargetWordCount == 0 {
		opts.DefaultScript = stages.DefaultScriptConfig()
	}
	s := &Server{
		opts:     opts,
		logger:   logging.NewComponentLogger(opts.Logger, "api"),
		sessions: newRegistry(opts.MaxSessions),
	}
	s.echo = s.routes()
	s.server = &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Script parts can take minutes with large thinking budgets.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleEchoError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("http request",
				logging.String("method", v.Method),
				logging.String("uri", v.URI),
				logging.Int("status", v.Status),
				logging.Duration("latency", v.Latency),
				logging.String(logging.FieldCorrelationID, v.RequestID),
			)
			return nil
		},
	}))

	api := e.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/sessions", s.handleCreateSession)

	session := api.Group("/sessions/:id")
	session.GET("", s.handleGetSession)
	session.DELETE("", s.handleDeleteSession)
	session.POST("/analyze", s.handleAnalyze)
	session.POST("/dna", s.handleDNA)
	session.POST("/strategies", s.handleStrategies)
	session.POST("/strategy", s.handleSelectStrategy)
	session.POST("/script/config", s.handleConfigure)
	session.POST("/script/next", s.handleNextPart)
	session.DELETE("/script", s.handleResetScript)
	session.GET("/export", s.handleExportText)
	session.POST("/export", s.handleExportFiles)
	return e
}

// Start listens on the configured bind address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.opts.Bind)
	if bind == "" {
		return errors.New("api listen: bind address is empty")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr reports the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting up to five seconds for open requests.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Warn("api shutdown incomplete", logging.Error(err))
	}
}

func (s *Server) newSession() *pipeline.Session {
	return pipeline.NewSession(s.opts.Generator, s.opts.Logger)
}
