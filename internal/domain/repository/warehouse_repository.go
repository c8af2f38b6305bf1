package repository

import (
	"context"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// WarehouseRepository define el puerto de lectura de bodegas.
// GetByID devuelve (nil, nil) si no existe o pertenece a otro tenant.
type WarehouseRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*entity.Warehouse, error)
}
