package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del kardex.
const (
	MovementKindIn         = "IN"
	MovementKindOut        = "OUT"
	MovementKindAdjustment = "ADJUSTMENT"
)

// Tipos de referencia que originan un movimiento.
const (
	ReferenceDelivery = "DELIVERY"
	ReferenceVisit    = "VISIT"
	ReferenceManual   = "MANUAL"
)

// StockMovement es una línea inmutable del libro de stock.
// Quantity siempre es positiva; el signo lo da Kind (IN y ADJUSTMENT suman, OUT resta).
type StockMovement struct {
	ID            string
	TenantID      string
	WarehouseID   string
	ProductID     string
	BatchID       string // vacío si el producto no maneja lotes
	Kind          string
	Quantity      decimal.Decimal
	ReferenceType string
	ReferenceID   string
	CreatedBy     string
	CreatedAt     time.Time
}

// Signed devuelve la cantidad con el signo que aporta al saldo.
func (m StockMovement) Signed() decimal.Decimal {
	if m.Kind == MovementKindOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// IsValidMovementKind informa si k es un tipo de movimiento conocido.
func IsValidMovementKind(k string) bool {
	switch k {
	case MovementKindIn, MovementKindOut, MovementKindAdjustment:
		return true
	}
	return false
}
