package repository

import (
	"context"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// TenantRepository define el puerto de tenants y activación de módulos.
type TenantRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	// GetModule devuelve la fila de activación del módulo o nil si no está contratado.
	GetModule(ctx context.Context, tenantID, moduleName string) (*entity.TenantModule, error)
	// ListActiveIDs devuelve los tenants que no están suspendidos.
	ListActiveIDs(ctx context.Context) ([]string, error)
}
