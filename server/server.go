// Package server exposes the equalization pipeline over HTTP: upload an
// RFP plus proposal documents, poll the run, download the consolidated
// report.
package server

import (
	"log/slog"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"equalprop/docs"
	"equalprop/internal/config"
	"equalprop/pipeline"
	"equalprop/store"
)

// Server wires the HTTP surface to the pipeline and the run store.
type Server struct {
	cfg    *config.Config
	store  *store.Store
	runner *pipeline.Runner
	logger *slog.Logger
	router *gin.Engine
}

func New(cfg *config.Config, st *store.Store, runner *pipeline.Runner) *Server {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggerMiddleware(logger),
		CORSMiddleware(),
	)

	s := &Server{
		cfg:    cfg,
		store:  st,
		runner: runner,
		logger: logger,
		router: router,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/runs", s.handleCreateRun)
		api.GET("/runs", s.handleListRuns)
		api.GET("/runs/:id", s.handleGetRun)
		api.GET("/runs/:id/report", s.handleDownloadReport)
	}

	docs.SwaggerInfo.Host = "localhost:" + s.cfg.Port
	docs.SwaggerInfo.BasePath = "/"
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run blocks serving HTTP on the configured port.
func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)
	return s.router.Run(":" + s.cfg.Port)
}

func slogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
