package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// GetByID obtiene una bodega del tenant.
func (r *WarehouseRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Warehouse, error) {
	query := `
		SELECT id, tenant_id, name, address, active, created_at, updated_at
		FROM warehouses WHERE tenant_id = $1 AND id = $2`
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, query, tenantID, id).Scan(
		&w.ID, &w.TenantID, &w.Name, &w.Address, &w.Active, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}
