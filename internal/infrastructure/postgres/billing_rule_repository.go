package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

var _ repository.BillingRuleRepository = (*BillingRuleRepo)(nil)

// BillingRuleRepo implementa BillingRuleRepository sobre PostgreSQL.
type BillingRuleRepo struct {
	q Querier
}

// NewBillingRuleRepository construye el repositorio.
func NewBillingRuleRepository(q Querier) *BillingRuleRepo {
	return &BillingRuleRepo{q: q}
}

// Upsert crea o reemplaza la regla del alcance (financiador, plan o general, producto).
// Si ya existía conserva su id y lo devuelve en rule.ID.
func (r *BillingRuleRepo) Upsert(ctx context.Context, rule *entity.BillingRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO billing_rules (id, tenant_id, payer_id, plan_id, product_id, unit_price, honorarium, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, payer_id, (COALESCE(plan_id::text, '')), product_id)
		DO UPDATE SET unit_price = EXCLUDED.unit_price, honorarium = EXCLUDED.honorarium, updated_at = EXCLUDED.updated_at
		RETURNING id`
	err := r.q.QueryRow(ctx, q,
		rule.ID, rule.TenantID, rule.PayerID, nullIfEmpty(rule.PlanID), rule.ProductID,
		rule.UnitPrice, rule.Honorarium, rule.UpdatedAt,
	).Scan(&rule.ID)
	if err != nil {
		return fmt.Errorf("upsert billing_rule: %w", err)
	}
	return nil
}

// ListCandidates devuelve las reglas del financiador para el producto, de cualquier plan.
func (r *BillingRuleRepo) ListCandidates(ctx context.Context, tenantID, payerID, productID string) ([]entity.BillingRule, error) {
	const q = `
		SELECT id, tenant_id, payer_id, plan_id, product_id, unit_price, honorarium, updated_at
		FROM billing_rules
		WHERE tenant_id = $1 AND payer_id = $2 AND product_id = $3`
	rows, err := r.q.Query(ctx, q, tenantID, payerID, productID)
	if err != nil {
		return nil, fmt.Errorf("list billing_rules: %w", err)
	}
	defer rows.Close()
	var list []entity.BillingRule
	for rows.Next() {
		var rule entity.BillingRule
		var planID *string
		if err := rows.Scan(&rule.ID, &rule.TenantID, &rule.PayerID, &planID, &rule.ProductID,
			&rule.UnitPrice, &rule.Honorarium, &rule.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan billing_rule: %w", err)
		}
		rule.PlanID = deref(planID)
		list = append(list, rule)
	}
	return list, rows.Err()
}
