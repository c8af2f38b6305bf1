package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/application/inventory"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

// InventoryHandler maneja movimientos, disponibilidad y kardex.
type InventoryHandler struct {
	uc  *inventory.StockUseCase
	log zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockUseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, log: log}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  IN, OUT o ADJUSTMENT. Un OUT no puede dejar el disponible negativo.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "warehouse_id, product_id, kind, quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	m, err := h.uc.RegisterMovement(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(m))
}

// GetAvailability godoc
// @Summary      Disponibilidad de un producto en una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true  "Bodega"
// @Param        product_id    query  string  true  "Producto"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/availability [get]
func (h *InventoryHandler) GetAvailability(c *fiber.Ctx) error {
	var q dto.AvailabilityQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, h.log, err)
	}
	a, err := h.uc.GetAvailability(c.Context(), GetTenantID(c), entity.StockKey{WarehouseID: q.WarehouseID, ProductID: q.ProductID})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewAvailabilityResponse(a))
}

// ListMovements godoc
// @Summary      Kardex de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        product_id    query  string  false  "Producto"
// @Param        from          query  string  false  "Desde (AAAA-MM-DD)"
// @Param        to            query  string  false  "Hasta inclusive (AAAA-MM-DD)"
// @Param        limit         query  int     false  "Máximo de filas"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	f := repository.MovementFilter{
		WarehouseID: c.Query("warehouse_id"),
		ProductID:   c.Query("product_id"),
	}
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(dto.DateLayout, s)
		if err != nil {
			return writeError(c, h.log, domain.ErrValidation.With("from inválido"))
		}
		f.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(dto.DateLayout, s)
		if err != nil {
			return writeError(c, h.log, domain.ErrValidation.With("to inválido"))
		}
		end := t.AddDate(0, 0, 1)
		f.To = &end
	}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return writeError(c, h.log, domain.ErrValidation.With("limit inválido"))
		}
		f.Limit = n
	}
	list, err := h.uc.ListMovements(c.Context(), GetTenantID(c), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.NewMovementResponse(&list[i]))
	}
	return c.JSON(fiber.Map{
		"total":     len(out),
		"movements": out,
	})
}
