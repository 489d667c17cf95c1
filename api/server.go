package api

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mahmoud-mohsen97/Chat-Agents/agenticrag"
	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/mahmoud-mohsen97/Chat-Agents/log"
	"github.com/mahmoud-mohsen97/Chat-Agents/rag"
	"github.com/mahmoud-mohsen97/Chat-Agents/session"
	"github.com/mahmoud-mohsen97/Chat-Agents/store"
)

const version = "2.0.0"

// RAGAgent answers questions over the indexed document.
type RAGAgent interface {
	Run(ctx context.Context, question string) (agenticrag.Result, error)
}

// Ingestor replaces the indexed document.
type Ingestor interface {
	Replace(ctx context.Context, name string, r io.ReaderAt, size int64) (rag.IngestResult, error)
}

// ReportService generates and serves research reports.
type ReportService interface {
	Generate(ctx context.Context, query string, save bool) (*store.Report, error)
	List(ctx context.Context) ([]*store.Report, error)
	Get(ctx context.Context, id string) (*store.Report, error)
	Delete(ctx context.Context, id string) error
}

// Deps are the collaborators the server routes to.
type Deps struct {
	RAG      RAGAgent
	Ingestor Ingestor
	Index    capability.VectorIndex
	Reports  ReportService
	Sessions *session.Store

	// ReportStore names the configured report backend in status output.
	ReportStore string
	CORSOrigins string
	BodyLimit   int
	Logger      log.Logger
}

// Server is the HTTP front end of both agents.
type Server struct {
	app  *fiber.App
	deps Deps
	log  log.Logger

	mu       sync.RWMutex
	document string
}

// New builds the fiber app and registers every route.
func New(deps Deps) *Server {
	if deps.Sessions == nil {
		deps.Sessions = session.NewStore(0)
	}
	if deps.CORSOrigins == "" {
		deps.CORSOrigins = "*"
	}
	if deps.BodyLimit <= 0 {
		deps.BodyLimit = 32 * 1024 * 1024
	}

	s := &Server{deps: deps, log: log.OrDefault(deps.Logger)}

	app := fiber.New(fiber.Config{
		AppName:      "Chat-Agents",
		BodyLimit:    deps.BodyLimit,
		ErrorHandler: s.handleError,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: deps.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	s.app = app
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/", s.root)
	s.app.Get("/health", s.health)

	r := s.app.Group("/api/agentic-rag")
	r.Post("/upload", s.upload)
	r.Post("/chat", s.chat)
	r.Get("/history/:session_id", s.history)
	r.Delete("/session/:session_id", s.clearSession)
	r.Get("/status", s.ragStatusHandler)

	res := s.app.Group("/api/researcher")
	res.Post("/generate-report", s.generateReport)
	res.Get("/reports", s.listReports)
	res.Get("/reports/:id", s.getReport)
	res.Get("/reports/:id/download", s.downloadReport)
	res.Delete("/reports/:id", s.deleteReport)
	res.Get("/status", s.researcherStatusHandler)
}

// App exposes the fiber app, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Info("Server is running on http://%s", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "AI Agents Backend is running!",
		"version": version,
		"agents": fiber.Map{
			"agentic_rag": "Routed document question answering with grading and web fallback",
			"researcher":  "Research report generation with concurrent web search",
		},
	})
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"message": "All services are operational",
		"services": fiber.Map{
			"agentic_rag": s.ragStatus(c.Context()),
			"researcher":  s.researcherStatus(c.Context()),
		},
	})
}

func (s *Server) currentDocument() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.document
}

func (s *Server) setDocument(name string) {
	s.mu.Lock()
	s.document = name
	s.mu.Unlock()
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("%s %s failed: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
