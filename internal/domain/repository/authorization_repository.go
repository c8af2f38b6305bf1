package repository

import (
	"context"
	"time"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// AuthorizationRepository define el puerto de autorizaciones y sus requisitos.
type AuthorizationRepository interface {
	Create(ctx context.Context, a *entity.Authorization) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Authorization, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Authorization, error)
	// Update persiste la cabecera (estado, notas, updated_at).
	Update(ctx context.Context, a *entity.Authorization) error
	UpdateRequirement(ctx context.Context, tenantID string, r *entity.AuthorizationRequirement) error
	ListByPayer(ctx context.Context, tenantID, payerID string) ([]entity.Authorization, error)
	// ListEndedBefore devuelve autorizaciones PENDING o ACTIVE con EndDate anterior al día dado.
	ListEndedBefore(ctx context.Context, tenantID string, day time.Time) ([]entity.Authorization, error)
}
