package repository

import (
	"context"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// OrderRepository define el puerto de pedidos aprobados.
type OrderRepository interface {
	Create(ctx context.Context, o *entity.ApprovedOrder) error
	// GetByID devuelve el pedido con sus ítems, o (nil, nil).
	GetByID(ctx context.Context, tenantID, id string) (*entity.ApprovedOrder, error)
	// GetForUpdate bloquea la cabecera del pedido.
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.ApprovedOrder, error)
	AddItems(ctx context.Context, tenantID string, items []entity.ApprovedOrderItem) error
}

// KitRepository define el puerto de plantillas de kit.
type KitRepository interface {
	Create(ctx context.Context, k *entity.KitTemplate) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.KitTemplate, error)
	AddItems(ctx context.Context, tenantID string, items []entity.KitTemplateItem) error
}
