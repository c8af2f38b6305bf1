package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockKey identifica el saldo de un producto en una bodega dentro de un tenant.
type StockKey struct {
	WarehouseID string
	ProductID   string
}

// Less ordena claves para bloquearlas siempre en el mismo orden.
func (k StockKey) Less(o StockKey) bool {
	if k.WarehouseID != o.WarehouseID {
		return k.WarehouseID < o.WarehouseID
	}
	return k.ProductID < o.ProductID
}

// StockLevel es la fila de bloqueo por bodega+producto. No guarda saldo: el on-hand
// es siempre el pliegue de movimientos.
type StockLevel struct {
	TenantID    string
	WarehouseID string
	ProductID   string
	CreatedAt   time.Time
}

// Availability resume on-hand, reservado y disponible de un producto en una bodega.
type Availability struct {
	WarehouseID string
	ProductID   string
	OnHand      decimal.Decimal
	Reserved    decimal.Decimal
	Available   decimal.Decimal
}
