package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto del tenant.
func (r *ProductRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	query := `
		SELECT id, tenant_id, sku, name, unit_measure, created_at
		FROM products WHERE tenant_id = $1 AND id = $2`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, tenantID, id).Scan(
		&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.UnitMeasure, &p.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}
