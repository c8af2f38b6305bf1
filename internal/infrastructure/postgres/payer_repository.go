package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

var _ repository.PayerRepository = (*PayerRepo)(nil)

// PayerRepo lee financiadores, planes y el catálogo de requisitos.
type PayerRepo struct {
	q Querier
}

// NewPayerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPayerRepository(q Querier) *PayerRepo {
	return &PayerRepo{q: q}
}

// GetPayer obtiene un financiador del tenant.
func (r *PayerRepo) GetPayer(ctx context.Context, tenantID, id string) (*entity.Payer, error) {
	query := `SELECT id, tenant_id, name, tax_id FROM payers WHERE tenant_id = $1 AND id = $2`
	var p entity.Payer
	if err := r.q.QueryRow(ctx, query, tenantID, id).Scan(&p.ID, &p.TenantID, &p.Name, &p.TaxID); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payer: %w", err)
	}
	return &p, nil
}

// GetPlan obtiene un plan del tenant.
func (r *PayerRepo) GetPlan(ctx context.Context, tenantID, id string) (*entity.Plan, error) {
	query := `SELECT id, tenant_id, payer_id, name FROM plans WHERE tenant_id = $1 AND id = $2`
	var p entity.Plan
	if err := r.q.QueryRow(ctx, query, tenantID, id).Scan(&p.ID, &p.TenantID, &p.PayerID, &p.Name); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &p, nil
}

// ListRequirements devuelve el catálogo de requisitos del financiador.
func (r *PayerRepo) ListRequirements(ctx context.Context, tenantID, payerID string) ([]entity.PayerRequirement, error) {
	query := `
		SELECT id, tenant_id, payer_id, name, is_required
		FROM payer_requirements WHERE tenant_id = $1 AND payer_id = $2 ORDER BY name`
	rows, err := r.q.Query(ctx, query, tenantID, payerID)
	if err != nil {
		return nil, fmt.Errorf("list payer requirements: %w", err)
	}
	defer rows.Close()
	var list []entity.PayerRequirement
	for rows.Next() {
		var req entity.PayerRequirement
		if err := rows.Scan(&req.ID, &req.TenantID, &req.PayerID, &req.Name, &req.IsRequired); err != nil {
			return nil, fmt.Errorf("scan payer requirement: %w", err)
		}
		list = append(list, req)
	}
	return list, rows.Err()
}
