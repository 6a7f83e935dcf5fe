package backup

import (
	"nebula/core/storage"
	"nebula/feature/inventory"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	client  storage.Client
	service *Service
	handler *Handler
}

// NewFeature creates the backup feature. It stays disabled while client is nil.
func NewFeature(client storage.Client, cfg storage.Config, store *inventory.Store, logger *zap.Logger) *Feature {
	svc := NewService(client, cfg, store, logger)
	return &Feature{client: client, service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "backup"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.client != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service returns the feature's service.
func (f *Feature) Service() *Service {
	return f.service
}
