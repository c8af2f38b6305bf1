package repository

import (
	"context"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// BillingRuleRepository define el puerto de reglas de facturación.
type BillingRuleRepository interface {
	// Upsert crea o reemplaza la regla de (tenant, payer, plan, producto). Completa ID.
	Upsert(ctx context.Context, r *entity.BillingRule) error
	// ListCandidates devuelve todas las reglas del financiador para el producto (cualquier plan).
	ListCandidates(ctx context.Context, tenantID, payerID, productID string) ([]entity.BillingRule, error)
}
