package backup

import (
	"errors"

	"nebula/core/logger"
	"nebula/core/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for backups.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the backup routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/api/backups")
	group.Post("/", h.HandleCreate)
	group.Get("/", h.HandleList)
	group.Get("/:name", h.HandleGet)
}

// HandleCreate uploads a snapshot of the inventory.
// @Summary Create backup
// @Description Uploads a JSON snapshot of the whole inventory to object storage.
// @Tags backups
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/backups [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	info, err := h.service.Create(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Backup failed", zap.Error(err))
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"backup": info})
}

// HandleList lists the stored backups.
// @Summary List backups
// @Tags backups
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/backups [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	backups, err := h.service.List(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Failed to list backups", zap.Error(err))
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"backups": backups})
}

// HandleGet downloads one backup.
// @Summary Download backup
// @Tags backups
// @Produce json
// @Param name path string true "Backup name"
// @Success 200 {file} file
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/backups/{name} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	name := c.Params("name")
	data, err := h.service.Get(c.Context(), name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return response.Fail(c, fiber.StatusNotFound, err)
		}
		logger.WithRayID(h.service.logger, c).Error("Failed to read backup", zap.String("name", name), zap.Error(err))
		return response.Error(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(data)
}
