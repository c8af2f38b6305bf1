package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/application/fulfillment"
)

// OrderHandler maneja pedidos aprobados y plantillas de kit.
type OrderHandler struct {
	uc  *fulfillment.OrderUseCase
	log zerolog.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *fulfillment.OrderUseCase, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{uc: uc, log: log}
}

// CreateOrder godoc
// @Summary      Crear pedido aprobado
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "patient_id, episode_id opcional, items"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	o, err := h.uc.CreateOrder(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderResponse(o))
}

// AddItems godoc
// @Summary      Agregar ítems a un pedido
// @Description  Falla con ORDER_LOCKED si el pedido ya tiene lista de picking.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "Pedido"
// @Param        body  body  dto.AddItemsRequest  true  "items"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items [post]
func (h *OrderHandler) AddItems(c *fiber.Ctx) error {
	var in dto.AddItemsRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	o, err := h.uc.AddItems(c.Context(), GetActor(c), c.Params("id"), in.Items)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewOrderResponse(o))
}

// ApplyKit godoc
// @Summary      Expandir un kit en el pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "Pedido"
// @Param        body  body  dto.ApplyKitRequest  true  "kit_id, multiplier"
// @Success      200   {object}  dto.OrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/kits [post]
func (h *OrderHandler) ApplyKit(c *fiber.Ctx) error {
	var in dto.ApplyKitRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	o, err := h.uc.ApplyKit(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewOrderResponse(o))
}

// GetOrder godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	o, err := h.uc.GetOrder(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewOrderResponse(o))
}

// CreateKit godoc
// @Summary      Crear plantilla de kit
// @Tags         kits
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateKitRequest  true  "name, items"
// @Success      201   {object}  dto.KitResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/kits [post]
func (h *OrderHandler) CreateKit(c *fiber.Ctx) error {
	var in dto.CreateKitRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	k, err := h.uc.CreateKit(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewKitResponse(k))
}

// AddKitItems godoc
// @Summary      Agregar ítems a una plantilla de kit
// @Tags         kits
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "Kit"
// @Param        body  body  dto.AddItemsRequest  true  "items"
// @Success      200   {object}  dto.KitResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/kits/{id}/items [post]
func (h *OrderHandler) AddKitItems(c *fiber.Ctx) error {
	var in dto.AddItemsRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	k, err := h.uc.AddKitItems(c.Context(), GetActor(c), c.Params("id"), in.Items)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewKitResponse(k))
}
