package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo implementación del puerto TenantRepository sobre PostgreSQL.
type TenantRepo struct {
	q Querier
}

// NewTenantRepository construye el adaptador de tenants.
func NewTenantRepository(q Querier) *TenantRepo {
	return &TenantRepo{q: q}
}

// GetByID obtiene un tenant por ID.
func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	query := `SELECT id, name, status, created_at FROM tenants WHERE id = $1`
	var t entity.Tenant
	if err := r.q.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.Status, &t.CreatedAt); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &t, nil
}

// GetModule devuelve la fila de tenant_modules; la decisión (activo, vencido) la toma el servicio de módulos.
// Consulta por clave primaria.
func (r *TenantRepo) GetModule(ctx context.Context, tenantID, moduleName string) (*entity.TenantModule, error) {
	const query = `
		SELECT tenant_id, module_name, is_active, activated_at, expires_at
		  FROM tenant_modules
		 WHERE tenant_id   = $1
		   AND module_name = $2`
	var m entity.TenantModule
	err := r.q.QueryRow(ctx, query, tenantID, moduleName).Scan(
		&m.TenantID, &m.ModuleName, &m.IsActive, &m.ActivatedAt, &m.ExpiresAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("check module %s: %w", moduleName, err)
	}
	return &m, nil
}

// ListActiveIDs devuelve los tenants no suspendidos.
func (r *TenantRepo) ListActiveIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM tenants WHERE status <> 'suspended' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
