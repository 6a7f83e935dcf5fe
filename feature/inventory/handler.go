package inventory

import (
	"bytes"

	"nebula/core/logger"
	"nebula/core/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the inventory.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the inventory routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	api := app.Group("/api")
	api.Get("/data", h.HandleGetData)

	api.Post("/racks", h.HandleCreateRack)
	api.Put("/racks/:id", h.HandleUpdateRack)
	api.Delete("/racks/:id", h.HandleDeleteRack)

	api.Post("/servers", h.HandleCreateServer)
	api.Delete("/servers", h.HandleReset)
	api.Put("/servers/:id", h.HandleUpdateServer)
	api.Delete("/servers/:id", h.HandleDeleteServer)

	api.Post("/services", h.HandleCreateService)
	api.Put("/services/:id", h.HandleUpdateService)
	api.Delete("/services/:id", h.HandleDeleteService)

	api.Post("/network-devices", h.HandleCreateNetworkDevice)
	api.Put("/network-devices/:id", h.HandleUpdateNetworkDevice)
	api.Delete("/network-devices/:id", h.HandleDeleteNetworkDevice)

	api.Post("/settings", h.HandlePutSettings)

	api.Get("/export/csv", h.HandleExportCSV)
	api.Get("/export/xlsx", h.HandleExportXLSX)
}

// fail logs err and writes the matching envelope.
func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return response.Error(c, err)
}

// HandleGetData returns the whole inventory.
// @Summary Get inventory
// @Description Racks, servers with nested services, settings and network devices.
// @Tags inventory
// @Produce json
// @Success 200 {object} models.Snapshot
// @Failure 500 {object} map[string]interface{}
// @Router /api/data [get]
func (h *Handler) HandleGetData(c *fiber.Ctx) error {
	snap, err := h.service.Snapshot(c.Context())
	if err != nil {
		return h.fail(c, "Snapshot failed", err)
	}
	return c.JSON(snap)
}

// HandleCreateRack creates a rack.
// @Summary Create rack
// @Tags racks
// @Accept json
// @Produce json
// @Param rack body RackInput true "Rack"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/racks [post]
func (h *Handler) HandleCreateRack(c *fiber.Ctx) error {
	var in RackInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadBody(c, err)
	}
	rack, err := h.service.CreateRack(c.Context(), in)
	if err != nil {
		return h.fail(c, "Create rack failed", err)
	}
	return response.OK(c, fiber.Map{"id": rack.ID})
}

// HandleUpdateRack replaces a rack's fields. Unknown ids succeed without effect.
// @Summary Update rack
// @Tags racks
// @Accept json
// @Produce json
// @Param id path string true "Rack ID"
// @Param rack body RackInput true "Rack"
// @Success 200 {object} map[string]interface{}
// @Router /api/racks/{id} [put]
func (h *Handler) HandleUpdateRack(c *fiber.Ctx) error {
	var in RackInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadBody(c, err)
	}
	if err := h.service.UpdateRack(c.Context(), c.Params("id"), in); err != nil {
		return h.fail(c, "Update rack failed", err)
	}
	return response.OK(c, nil)
}

// HandleDeleteRack deletes a rack with its servers and services.
// Pass cascade=false to detach the servers instead.
// @Summary Delete rack
// @Tags racks
// @Produce json
// @Param id path string true "Rack ID"
// @Param cascade query bool false "Delete servers and services in the rack" default(true)
// @Success 200 {object} map[string]interface{}
// @Router /api/racks/{id} [delete]
func (h *Handler) HandleDeleteRack(c *fiber.Ctx) error {
	cascade := c.QueryBool("cascade", true)
	if err := h.service.DeleteRack(c.Context(), c.Params("id"), cascade); err != nil {
		return h.fail(c, "Delete rack failed", err)
	}
	return response.OK(c, nil)
}

// HandleCreateServer creates a server.
// @Summary Create server
// @Tags servers
// @Accept json
// @Produce json
// @Param server body ServerInput true "Server"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/servers [post]
func (h *Handler) HandleCreateServer(c *fiber.Ctx) error {
	var in ServerInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadBody(c, err)
	}
	server, err := h.service.CreateServer(c.Context(), in)
	if err != nil {
		return h.fail(c, "Create server failed", err)
	}
	return response.OK(c, fiber.Map{"id": server.ID})
}

// HandleUpdateServer replaces a server's fields.
// @Summary Update server
// @Tags servers
// @Accept json
// @Produce json
// @Param id path string true "Server ID"
// @Param server body ServerInput true "Server"
// @Success 200 {object} map[string]interface{}
// @Router /api/servers/{id} [put]
func (h *Handler) HandleUpdateServer(c *fiber.Ctx) error {
	var in ServerInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadBody(c, err)
	}
	if err := h.service.UpdateServer(c.Context(), c.Params("id"), in); err != nil {
		return h.fail(c, "Update server failed", err)
	}
	return response.OK(c, nil)
}

// HandleDeleteServer deletes a server and its services.
// @Summary Delete server
// @Tags servers
// @Produce json
// @Param id path string true "Server ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/servers/{id} [delete]
func (h *Handler) HandleDeleteServer(c *fiber.Ctx) error {
	if err := h.service.DeleteServer(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, "Delete server failed", err)
	}
	return response.OK(c, nil)
}

// HandleReset wipes the inventory and reseeds the demo rows.
// @Summary Reset inventory
// @Tags servers
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/servers [delete]
func (h *Handler) HandleReset(c *fiber.Ctx) error {
	if err := h.service.Reset(c.Context()); err != nil {
		return h.fail(c, "Reset failed", err)
	}
	return response.OK(c, nil)
}

// HandleCreateService creates a service.
// @Summary Create service
// @Tags services
// @Accept json
// @Produce json
// @Param service body ServiceInput true "Service"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/services [post]
func (h *Handler) HandleCreateService(c *fiber.Ctx) error {
	var in ServiceInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadBody(c, err)
	}
	svc, err := h.service.CreateService(c.Context(), in)
	if err != nil {
		return h.fail(c, "Create service failed", err)
	}
	return response.OK(c, fiber.Map{"id": svc.ID})
}

// HandleUpdateService replaces a service's fields.
// @Summary Update service
// @Tags services
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param service body ServiceInput true "Service"
// @Success 200 {object} map[string]interface{}
// @Router /api/services/{id} [put]
func (h *Handler) HandleUpdateService(c *fiber.Ctx) error {
	var in ServiceInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadBody(c, err)
	}
	if err := h.service.UpdateService(c.Context(), c.Params("id"), in); err != nil {
		return h.fail(c, "Update service failed", err)
	}
	return response.OK(c, nil)
}

// HandleDeleteService deletes a service.
// @Summary Delete service
// @Tags services
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/services/{id} [delete]
func (h *Handler) HandleDeleteService(c *fiber.Ctx) error {
	if err := h.service.DeleteService(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, "Delete service failed", err)
	}
	return response.OK(c, nil)
}

// HandleCreateNetworkDevice creates a manual network device.
// @Summary Create network device
// @Tags network
// @Accept json
// @Produce json
// @Param device body NetworkDeviceInput true "Device"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/network-devices [post]
func (h *Handler) HandleCreateNetworkDevice(c *fiber.Ctx) error {
	var in NetworkDeviceInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadBody(c, err)
	}
	dev, err := h.service.CreateNetworkDevice(c.Context(), in)
	if err != nil {
		return h.fail(c, "Create network device failed", err)
	}
	return response.OK(c, fiber.Map{"id": dev.ID})
}

// HandleUpdateNetworkDevice replaces a device's fields.
// @Summary Update network device
// @Tags network
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Param device body NetworkDeviceInput true "Device"
// @Success 200 {object} map[string]interface{}
// @Router /api/network-devices/{id} [put]
func (h *Handler) HandleUpdateNetworkDevice(c *fiber.Ctx) error {
	var in NetworkDeviceInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadBody(c, err)
	}
	if err := h.service.UpdateNetworkDevice(c.Context(), c.Params("id"), in); err != nil {
		return h.fail(c, "Update network device failed", err)
	}
	return response.OK(c, nil)
}

// HandleDeleteNetworkDevice deletes a device.
// @Summary Delete network device
// @Tags network
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/network-devices/{id} [delete]
func (h *Handler) HandleDeleteNetworkDevice(c *fiber.Ctx) error {
	if err := h.service.DeleteNetworkDevice(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, "Delete network device failed", err)
	}
	return response.OK(c, nil)
}

// HandlePutSettings upserts settings.
// @Summary Save settings
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body map[string]interface{} true "Key/value pairs"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/settings [post]
func (h *Handler) HandlePutSettings(c *fiber.Ctx) error {
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return response.BadBody(c, err)
	}
	if err := h.service.PutSettings(c.Context(), body); err != nil {
		return h.fail(c, "Save settings failed", err)
	}
	return response.OK(c, nil)
}

// HandleExportCSV downloads the services joined with their servers as CSV.
// @Summary Export CSV
// @Tags export
// @Produce text/csv
// @Success 200 {string} string "CSV file"
// @Router /api/export/csv [get]
func (h *Handler) HandleExportCSV(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.ExportCSV(c.Context(), &buf); err != nil {
		return h.fail(c, "CSV export failed", err)
	}
	c.Set(fiber.HeaderContentType, CSVMime)
	c.Attachment(CSVFileName)
	return c.Send(buf.Bytes())
}

// HandleExportXLSX downloads the services joined with their servers as an Excel workbook.
// @Summary Export XLSX
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "XLSX file"
// @Router /api/export/xlsx [get]
func (h *Handler) HandleExportXLSX(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.ExportXLSX(c.Context(), &buf); err != nil {
		return h.fail(c, "XLSX export failed", err)
	}
	c.Attachment(XLSXFileName)
	c.Set(fiber.HeaderContentType, XLSXMime)
	return c.Send(buf.Bytes())
}
