// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the transcript export pipeline over HTTP.
// Exports run as asynchronous jobs: submit, poll, then download the
// finished PDF exactly once.
package server

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/tubeprint/internal/fetch"
	"github.com/pdiddy/tubeprint/pkg/types"
)

// Server is the HTTP front end over a job Manager.
type Server struct {
	app      *fiber.App
	mgr      *Manager
	log      *logrus.Logger
	validate *validator.Validate
	cfg      types.ServerConfig
}

// New builds the fiber app, job manager, and routes.
func New(cfg types.ServerConfig, export Exporter, log *logrus.Logger) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "tubeprint",
			DisableStartupMessage: true,
		}),
		mgr:      NewManager(cfg, export, log),
		log:      log,
		validate: validator.New(),
		cfg:      cfg,
	}

	s.app.Use(requestLogger(log))
	s.app.Get("/health", s.handleHealth)

	api := s.app.Group("/api/v1")
	api.Post("/exports", s.handleSubmit)
	api.Get("/exports/:id", s.handleStatus)
	api.Get("/exports/:id/download", s.handleDownload)

	return s
}

// App exposes the fiber app, mainly for tests via app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves until the listener fails or Shutdown is called.
func (s *Server) Listen() error {
	s.log.WithField("addr", s.cfg.Addr).Info("server listening")
	return s.app.Listen(s.cfg.Addr)
}

// Shutdown drains the HTTP server and stops the workers.
func (s *Server) Shutdown() error {
	err := s.app.Shutdown()
	s.mgr.Shutdown()
	return err
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleSubmit(c *fiber.Ctx) error {
	var req ExportRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return respondError(c, fiber.StatusBadRequest, err.Error())
	}

	// Reject unparseable video URLs at submit time instead of
	// burning a worker slot on them.
	if _, err := fetch.ParseVideoID(req.URL); err != nil {
		return respondError(c, fiber.StatusBadRequest, err.Error())
	}

	job := s.mgr.Submit(req)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id": job.ID,
		"status": job.Status,
	})
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	job := s.mgr.Get(c.Params("id"))
	if job == nil {
		return respondError(c, fiber.StatusNotFound, "unknown job")
	}

	resp := fiber.Map{
		"job_id":   job.ID,
		"status":   job.Status,
		"progress": job.Progress,
		"stage":    job.Stage,
	}
	if job.Status == StatusComplete {
		resp["filename"] = job.Filename
	}
	if job.Status == StatusFailed {
		resp["error"] = job.Error
	}
	return c.JSON(resp)
}

func (s *Server) handleDownload(c *fiber.Ctx) error {
	id := c.Params("id")
	job := s.mgr.Get(id)
	if job == nil {
		return respondError(c, fiber.StatusNotFound, "unknown job")
	}
	switch job.Status {
	case StatusComplete:
	case StatusFailed:
		return respondError(c, fiber.StatusGone, "job failed: "+job.Error)
	default:
		return respondError(c, fiber.StatusConflict, "job not finished")
	}

	// Read the whole PDF before forgetting the job so cleanup cannot
	// race the response body.
	data, err := os.ReadFile(job.outputPath)
	if err != nil {
		s.log.WithField("job_id", id).WithError(err).Error("reading finished export")
		return respondError(c, fiber.StatusInternalServerError, "export file unavailable")
	}
	s.mgr.Forget(id)

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filepath.Base(job.Filename)+`"`)
	return c.Send(data)
}

// respondError writes the uniform error envelope used by every route.
func respondError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// requestLogger logs one structured line per request.
func requestLogger(log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start).String(),
		}).Info("request")
		return err
	}
}
