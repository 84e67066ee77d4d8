package report

import (
	"errors"
	"time"

	"repo-reconciler/core/logger"
	"repo-reconciler/core/snapshot"
	"repo-reconciler/feature/analysis"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for reports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the report routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/api")
	group.Get("/analyses", h.HandleAnalyses)
	group.Get("/runs", h.HandleRuns)
	group.Get("/compare/:analysis", h.HandleCompare)
}

// HandleAnalyses lists the registered analyses.
func (h *Handler) HandleAnalyses(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"analyses": analysis.Names()})
}

// HandleRuns returns the most recent recorded runs.
func (h *Handler) HandleRuns(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	runs, err := h.service.Runs(c.Context(), c.QueryInt("limit", DefaultRunsLimit))
	if err != nil {
		l.Error("Failed to list runs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"runs": runs})
}

// HandleCompare runs (or serves from cache) one analysis.
func (h *Handler) HandleCompare(c *fiber.Ctx) error {
	name := c.Params("analysis")
	l := logger.WithRayID(h.service.logger, c).With(zap.String("analysis", name))

	cached, err := h.service.Compare(c.Context(), name, c.QueryBool("refresh", false))
	switch {
	case errors.Is(err, analysis.ErrUnknownAnalysis):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, snapshot.ErrNotFound):
		l.Warn("Snapshot missing", zap.Error(err))
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		l.Error("Comparison failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"analysis": cached.Result.Policy,
		"built_at": cached.Built.UTC().Format(time.RFC3339),
		"header":   cached.Result.Header,
		"counters": cached.Result.Counters,
		"rows":     cached.Result.Records(),
	})
}
