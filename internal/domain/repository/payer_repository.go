package repository

import (
	"context"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// PayerRepository define el puerto de lectura de financiadores, planes y su catálogo de requisitos.
type PayerRepository interface {
	GetPayer(ctx context.Context, tenantID, id string) (*entity.Payer, error)
	GetPlan(ctx context.Context, tenantID, id string) (*entity.Plan, error)
	ListRequirements(ctx context.Context, tenantID, payerID string) ([]entity.PayerRequirement, error)
}
