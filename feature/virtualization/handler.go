package virtualization

import (
	"nebula/core/logger"
	"nebula/core/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for cluster discovery.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the virtualization routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/api/proxmox/vms", h.HandleListVMs)
}

// HandleListVMs lists the VMs and containers of a Proxmox VE cluster.
// @Summary List Proxmox workloads
// @Description Read-only. Cluster failures answer 200 with success=false.
// @Tags virtualization
// @Accept json
// @Produce json
// @Param request body Request true "Cluster credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/proxmox/vms [post]
func (h *Handler) HandleListVMs(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req Request
	if err := c.BodyParser(&req); err != nil {
		return response.BadBody(c, err)
	}

	vms, err := h.service.Discover(c.Context(), req)
	if err != nil {
		if IsDiscoveryError(err) {
			return response.Fail(c, fiber.StatusOK, err)
		}
		l.Error("Proxmox listing failed", zap.Error(err))
		return response.Error(c, err)
	}

	return response.OK(c, fiber.Map{"vms": vms})
}
