package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/application/fulfillment"
)

// PickListHandler maneja el ciclo de la lista de picking.
type PickListHandler struct {
	uc  *fulfillment.PickListUseCase
	log zerolog.Logger
}

// NewPickListHandler construye el handler.
func NewPickListHandler(uc *fulfillment.PickListUseCase, log zerolog.Logger) *PickListHandler {
	return &PickListHandler{uc: uc, log: log}
}

// Generate godoc
// @Summary      Generar lista de picking del pedido
// @Description  Idempotente: si ya existe devuelve la misma con 200.
// @Tags         pick-lists
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Pedido"
// @Success      201  {object}  dto.PickListResponse
// @Success      200  {object}  dto.PickListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/pick-list [post]
func (h *PickListHandler) Generate(c *fiber.Ctx) error {
	pl, created, err := h.uc.Generate(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.NewPickListResponse(pl))
}

// Get godoc
// @Summary      Obtener lista de picking
// @Tags         pick-lists
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Lista de picking"
// @Success      200  {object}  dto.PickListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pick-lists/{id} [get]
func (h *PickListHandler) Get(c *fiber.Ctx) error {
	pl, err := h.uc.Get(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewPickListResponse(pl))
}

// AssignWarehouse godoc
// @Summary      Asignar bodega a un ítem
// @Tags         pick-lists
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                      true  "Lista de picking"
// @Param        itemId  path  string                      true  "Ítem"
// @Param        body    body  dto.AssignWarehouseRequest  true  "warehouse_id"
// @Success      200  {object}  dto.PickListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/pick-lists/{id}/items/{itemId}/warehouse [put]
func (h *PickListHandler) AssignWarehouse(c *fiber.Ctx) error {
	var in dto.AssignWarehouseRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	pl, err := h.uc.AssignWarehouse(c.Context(), GetActor(c), c.Params("id"), c.Params("itemId"), in.WarehouseID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewPickListResponse(pl))
}

// Freeze godoc
// @Summary      Congelar lista de picking (reserva stock)
// @Tags         pick-lists
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Lista de picking"
// @Success      200  {object}  dto.PickListResponse
// @Failure      409  {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK o INVALID_STATUS"
// @Failure      422  {object}  dto.ErrorResponse  "WAREHOUSE_REQUIRED"
// @Router       /api/pick-lists/{id}/freeze [post]
func (h *PickListHandler) Freeze(c *fiber.Ctx) error {
	pl, err := h.uc.Freeze(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewPickListResponse(pl))
}

// ReportIncident godoc
// @Summary      Reducir cantidad de un ítem con incidencia
// @Tags         pick-lists
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                     true  "Lista de picking"
// @Param        itemId  path  string                     true  "Ítem"
// @Param        body    body  dto.ReportIncidentRequest  true  "new_quantity, cause"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/pick-lists/{id}/items/{itemId}/incident [post]
func (h *PickListHandler) ReportIncident(c *fiber.Ctx) error {
	var in dto.ReportIncidentRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	pl, inc, err := h.uc.ReportIncident(c.Context(), GetActor(c), c.Params("id"), c.Params("itemId"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"incident_id": inc.ID,
		"pick_list":   dto.NewPickListResponse(pl),
	})
}

// Pack godoc
// @Summary      Marcar lista como empacada
// @Tags         pick-lists
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Lista de picking"
// @Success      200  {object}  dto.PickListResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/pick-lists/{id}/pack [post]
func (h *PickListHandler) Pack(c *fiber.Ctx) error {
	pl, err := h.uc.Pack(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewPickListResponse(pl))
}
