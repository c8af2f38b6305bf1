package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// OUT con reference_type VISIT registra consumo en visita domiciliaria.
type RegisterMovementRequest struct {
	WarehouseID   string          `json:"warehouse_id" validate:"required"`
	ProductID     string          `json:"product_id" validate:"required"`
	BatchID       string          `json:"batch_id,omitempty"`
	Kind          string          `json:"kind" validate:"required,oneof=IN OUT ADJUSTMENT"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType string          `json:"reference_type,omitempty" validate:"omitempty,oneof=MANUAL VISIT"`
	ReferenceID   string          `json:"reference_id,omitempty"`
}

// AvailabilityQuery query de GET /api/inventory/availability.
type AvailabilityQuery struct {
	WarehouseID string `query:"warehouse_id" validate:"required"`
	ProductID   string `query:"product_id" validate:"required"`
}

// AvailabilityResponse saldo, reserva y disponible.
type AvailabilityResponse struct {
	WarehouseID string          `json:"warehouse_id"`
	ProductID   string          `json:"product_id"`
	OnHand      decimal.Decimal `json:"on_hand"`
	Reserved    decimal.Decimal `json:"reserved"`
	Available   decimal.Decimal `json:"available"`
}

// MovementResponse movimiento del kardex.
type MovementResponse struct {
	ID            string          `json:"id"`
	WarehouseID   string          `json:"warehouse_id"`
	ProductID     string          `json:"product_id"`
	BatchID       string          `json:"batch_id,omitempty"`
	Kind          string          `json:"kind"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewAvailabilityResponse mapea la disponibilidad.
func NewAvailabilityResponse(a entity.Availability) AvailabilityResponse {
	return AvailabilityResponse{
		WarehouseID: a.WarehouseID,
		ProductID:   a.ProductID,
		OnHand:      a.OnHand,
		Reserved:    a.Reserved,
		Available:   a.Available,
	}
}

// NewMovementResponse mapea un movimiento.
func NewMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		WarehouseID:   m.WarehouseID,
		ProductID:     m.ProductID,
		BatchID:       m.BatchID,
		Kind:          m.Kind,
		Quantity:      m.Quantity,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}
