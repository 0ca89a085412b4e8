package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/NeiruBugz/play-later/internal/api/handlers"
	"github.com/NeiruBugz/play-later/internal/api/middleware"
	"github.com/NeiruBugz/play-later/internal/config"
	"github.com/NeiruBugz/play-later/internal/controllers"
	"github.com/NeiruBugz/play-later/internal/models"
)

// Server represents the HTTP server.
type Server struct {
	app    *fiber.App
	port   string
	logger zerolog.Logger
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Config, importCtrl *controllers.ImportController, libraryCtrl *controllers.LibraryController, logger zerolog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "play-later",
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		IdleTimeout:           60 * time.Second,
		ErrorHandler:          errorHandler(logger),
	})

	app.Use(middleware.Logging(logger))

	s := &Server{app: app, port: cfg.ServerPort, logger: logger}
	s.setupRoutes(importCtrl, libraryCtrl)
	return s
}

// setupRoutes configures all HTTP routes. Everything under /api
// requires a user identity from the fronting session layer.
func (s *Server) setupRoutes(importCtrl *controllers.ImportController, libraryCtrl *controllers.LibraryController) {
	healthHandler := handlers.NewHealthHandler(s.logger)
	s.app.Get("/health", healthHandler.Health)

	api := s.app.Group("/api", middleware.RequireUser())

	libraryHandler := handlers.NewLibraryHandler(libraryCtrl, s.logger)
	api.Get("/library", libraryHandler.List)
	api.Post("/library", libraryHandler.Add)
	api.Get("/library/backlog-time", libraryHandler.BacklogTime)
	api.Patch("/library/:id/status", libraryHandler.UpdateStatus)
	api.Delete("/library/:id", libraryHandler.Delete)

	importHandler := handlers.NewImportHandler(importCtrl, s.logger)
	api.Post("/import/steam/connect", importHandler.ConnectSteam)
	api.Post("/import/steam/plan", importHandler.Plan)
	api.Post("/import/steam/apply", importHandler.Apply)
	api.Post("/import/ignore", importHandler.Ignore)
}

// Start starts the HTTP server and blocks until ctx is cancelled or
// the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info().Str("port", s.port).Msg("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(":" + s.port); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(shutdownCtx)
}

// errorHandler maps domain errors onto HTTP statuses.
func errorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			validationErr *models.ValidationError
			upstreamErr   *models.UpstreamError
			fiberErr      *fiber.Error
		)

		status := fiber.StatusInternalServerError
		switch {
		case errors.As(err, &validationErr):
			status = fiber.StatusBadRequest
		case errors.Is(err, models.ErrNotFound):
			status = fiber.StatusNotFound
		case errors.Is(err, models.ErrDuplicate):
			status = fiber.StatusConflict
		case errors.As(err, &upstreamErr):
			status = fiber.StatusBadGateway
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
		}

		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
}
