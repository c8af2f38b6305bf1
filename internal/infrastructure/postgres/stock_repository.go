package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// GetForUpdate crea la fila en cero si falta y la bloquea (SELECT FOR UPDATE).
// Fuera de una tx el bloqueo se libera al terminar la sentencia.
func (r *StockRepo) GetForUpdate(ctx context.Context, tenantID string, key entity.StockKey) (*entity.StockLevel, error) {
	ensure := `
		INSERT INTO stock_levels (tenant_id, warehouse_id, product_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, warehouse_id, product_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, ensure, tenantID, key.WarehouseID, key.ProductID); err != nil {
		return nil, fmt.Errorf("ensure stock level: %w", err)
	}
	query := `
		SELECT tenant_id, warehouse_id, product_id, created_at
		FROM stock_levels WHERE tenant_id = $1 AND warehouse_id = $2 AND product_id = $3
		FOR UPDATE`
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, tenantID, key.WarehouseID, key.ProductID).Scan(
		&s.TenantID, &s.WarehouseID, &s.ProductID, &s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}
