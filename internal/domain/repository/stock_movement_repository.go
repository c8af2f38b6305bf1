package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// MovementFilter filtra el listado del kardex. Campos vacíos no filtran.
type MovementFilter struct {
	WarehouseID string
	ProductID   string
	From        *time.Time
	To          *time.Time
	Limit       int
}

// StockMovementRepository define el puerto del libro de movimientos (append-only).
type StockMovementRepository interface {
	// Create inserta el movimiento; el kardex es la única fuente del saldo.
	Create(ctx context.Context, m *entity.StockMovement) error
	// SumOnHand pliega los movimientos de la clave.
	SumOnHand(ctx context.Context, tenantID string, key entity.StockKey) (decimal.Decimal, error)
	List(ctx context.Context, tenantID string, f MovementFilter) ([]entity.StockMovement, error)
}
