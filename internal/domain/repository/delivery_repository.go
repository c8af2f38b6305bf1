package repository

import (
	"context"
	"time"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// DeliveryRepository define el puerto de entregas y evidencias.
type DeliveryRepository interface {
	Create(ctx context.Context, d *entity.Delivery) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Delivery, error)
	GetByPickListID(ctx context.Context, tenantID, pickListID string) (*entity.Delivery, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Delivery, error)
	Update(ctx context.Context, d *entity.Delivery) error
	AddEvidence(ctx context.Context, e *entity.DeliveryEvidence) error
	CountEvidence(ctx context.Context, tenantID, deliveryID string) (int, error)
	ListEvidence(ctx context.Context, tenantID, deliveryID string) ([]entity.DeliveryEvidence, error)
	// ListDelivered devuelve entregas DELIVERED o CLOSED con DeliveredAt en [from, to).
	ListDelivered(ctx context.Context, tenantID string, from, to time.Time) ([]entity.Delivery, error)
}
