package server

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"agentic-rag/internal/config"
	"agentic-rag/internal/logging"
	"agentic-rag/internal/rag"
	"agentic-rag/internal/session"
)

// Pinger checks that the model endpoint is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes chat sessions over HTTP
type Server struct {
	app          *fiber.App
	cfg          *config.Config
	orchestrator *rag.Orchestrator
	sessions     *session.Store
	model        Pinger
	validate     *validator.Validate
}

func New(cfg *config.Config, orchestrator *rag.Orchestrator, sessions *session.Store, model Pinger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "agentic-rag",
		BodyLimit:             cfg.Server.BodyLimitMB * 1024 * 1024,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
		// session IDs from route params are kept as cache keys
		Immutable: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CorsOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	s := &Server{
		app:          app,
		cfg:          cfg,
		orchestrator: orchestrator,
		sessions:     sessions,
		model:        model,
		validate:     validator.New(),
	}
	s.registerRoutes(app.Group("/api/v1"))
	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Run blocks serving on the configured address
func (s *Server) Run() error {
	logging.Info("server listening on %s", s.cfg.Server.Addr)
	if err := s.app.Listen(s.cfg.Server.Addr); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes(r fiber.Router) {
	r.Get("/health", s.health)

	h := r.Group("/sessions")
	h.Post("", s.createSession)
	h.Get("/:id", s.showSession)
	h.Delete("/:id", s.deleteSession)
	h.Post("/:id/document", s.uploadDocument)
	h.Post("/:id/messages", s.submitMessage)
	h.Delete("/:id/messages", s.resetSession)
}
