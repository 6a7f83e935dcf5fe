package network

import (
	"nebula/core/logger"
	"nebula/core/reconcile"
	"nebula/core/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for controller syncs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the network routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/api/unifi")
	group.Post("/pull", h.HandlePull)
}

// HandlePull syncs the network devices with a UniFi controller.
// @Summary Pull UniFi devices
// @Description Replaces every non-manual network device with the controller's listing.
// @Description Controller failures answer 200 with success=false. Pass dry_run=true to preview.
// @Tags network
// @Accept json
// @Produce json
// @Param request body PullRequest true "Controller credentials"
// @Param dry_run query bool false "Only compute the plan"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/unifi/pull [post]
func (h *Handler) HandlePull(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req PullRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadBody(c, err)
	}

	opts := reconcile.ReconcileOptions{
		DryRun:    c.QueryBool("dry_run", false),
		Confirmed: true,
	}

	result, err := h.service.Pull(c.Context(), req, opts)
	if err != nil {
		if IsDiscoveryError(err) {
			l.Warn("UniFi pull failed", zap.Error(err))
			return response.Fail(c, fiber.StatusOK, err)
		}
		l.Error("UniFi pull failed", zap.Error(err))
		return response.Error(c, err)
	}

	return response.OK(c, fiber.Map{
		"devices": result.Devices,
		"summary": result.Summary,
		"actions": result.Actions,
		"variant": result.Variant,
		"applied": result.Applied,
	})
}
