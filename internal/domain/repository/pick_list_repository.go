package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// PickListRepository define el puerto de listas de picking e ítems.
type PickListRepository interface {
	// Create inserta la lista con sus ítems. Devuelve error si el pedido ya tiene lista.
	Create(ctx context.Context, pl *entity.PickList) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.PickList, error)
	GetByOrderID(ctx context.Context, tenantID, orderID string) (*entity.PickList, error)
	// GetForUpdate bloquea la cabecera y devuelve la lista con ítems.
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.PickList, error)
	// Update persiste estado y marcas de tiempo de la cabecera.
	Update(ctx context.Context, pl *entity.PickList) error
	UpdateItem(ctx context.Context, tenantID string, it *entity.PickListItem) error
	// ReservedQty suma PickedQty de listas FROZEN/PACKED sin stock comprometido, excluyendo una lista.
	ReservedQty(ctx context.Context, tenantID string, key entity.StockKey, excludePickListID string) (decimal.Decimal, error)
}

// IncidentRepository define el puerto de incidencias (inmutables).
type IncidentRepository interface {
	Create(ctx context.Context, inc *entity.Incident) error
}
