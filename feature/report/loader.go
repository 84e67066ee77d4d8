package report

import (
	"time"

	"repo-reconciler/core/history"
	"repo-reconciler/feature/analysis"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new report feature.
func NewFeature(runner *analysis.Runner, recorder history.Recorder, ttl time.Duration, logger *zap.Logger) *Feature {
	svc := NewService(runner, recorder, ttl, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "report"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
