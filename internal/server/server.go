package server

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"idcard-extractor/internal/common"
	"idcard-extractor/internal/export"
	"idcard-extractor/internal/pipeline"
)

// Server wires the extraction pipeline to the HTTP surface. Everything here
// is plumbing: parsing, validation, and shaping responses.
type Server struct {
	coordinator *pipeline.Coordinator
	analyzer    *pipeline.Analyzer
	exporter    *export.Service
	logger      *slog.Logger
}

func NewServer(coord *pipeline.Coordinator, analyzer *pipeline.Analyzer, exporter *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{coordinator: coord, analyzer: analyzer, exporter: exporter, logger: logger}
}

// NewApp builds the fiber application with routes and middleware registered.
func NewApp(s *Server, cfg common.ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: cfg.BodyLimit,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendOrigin,
		AllowCredentials: true,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization",
	}))

	app.Get("/health", s.Health)

	api := app.Group("/api")
	api.Post("/batch/process", s.ProcessBatchPhotos)

	idcard := api.Group("/idcard")
	idcard.Post("/process", s.ProcessIDCards)
	idcard.Post("/export", s.ExportResults)
	idcard.Get("/recommended-models", s.RecommendedModels)

	return app
}

// Health reports liveness.
func (s *Server) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "OK",
		"message":   "ID card extraction service is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
