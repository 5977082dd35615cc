// Package server exposes the agent over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sourcegraph/conc/pool"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
)

const shutdownTimeout = 10 * time.Second

// Config holds the HTTP server settings.
type Config struct {
	ListenAddr        string
	RequestTimeout    time.Duration
	MaxQuestionLength int
	SessionTTL        time.Duration
	// SharedSession routes every request without a session_id to one
	// process-wide session.
	SharedSession bool
}

// Server answers questions with an agent.
type Server struct {
	config   Config
	agent    *af.Agent
	sessions *SessionTable
	logger   *slog.Logger
	app      *fiber.App
}

// New creates a server for agent.
func New(config Config, agent *af.Agent, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	s := &Server{
		config: config,
		agent:  agent,
		logger: logger,
		app:    app,
	}
	s.sessions = NewSessionTable(config.SessionTTL, func() *af.Session { return agent.NewSession() }, logger)

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			logger.Error("panic recovered",
				"path", c.Path(),
				"panic", fmt.Sprint(e),
				"stack", string(debug.Stack()),
			)
		},
	}))
	app.Use(s.requestLogger)

	app.Get("/health", s.handleHealth)
	app.Post("/question", s.handleQuestion)
	app.Get("/sessions/:id/messages", s.handleSessionMessages)

	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Sessions returns the session table.
func (s *Server) Sessions() *SessionTable { return s.sessions }

// Run serves HTTP until ctx is done or the listener fails, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting server", "listen", s.config.ListenAddr, "shared_session", s.config.SharedSession)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		s.sessions.janitor(ctx)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	})
	p.Go(func(context.Context) error {
		return s.app.Listen(s.config.ListenAddr)
	})
	return p.Wait()
}

// requestLogger logs each request after the handler and error handler ran.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	level := slog.LevelInfo
	if c.Response().StatusCode() >= fiber.StatusInternalServerError {
		level = slog.LevelWarn
	}
	s.logger.Log(c.UserContext(), level, "http request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
		"session_id", string(c.Response().Header.Peek("X-Session-ID")),
	)
	return nil
}
