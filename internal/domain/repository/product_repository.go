package repository

import (
	"context"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// ProductRepository define el puerto de lectura de productos.
type ProductRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error)
}
