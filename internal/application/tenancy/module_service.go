// Package tenancy resuelve qué módulos puede usar cada tenant.
package tenancy

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

// Motivos de rechazo.
const (
	ReasonTenantNotFound  = "tenant inexistente"
	ReasonTenantSuspended = "cuenta suspendida"
	ReasonTenantPastDue   = "cuenta con deuda vencida"
	ReasonModuleMissing   = "módulo no contratado"
	ReasonModuleInactive  = "módulo desactivado"
	ReasonModuleExpired   = "módulo vencido"
)

// ModuleService verifica qué módulos tiene activos un tenant.
// Es el único punto de la aplicación que conoce la lógica de activación de módulos.
type ModuleService struct {
	tenants repository.TenantRepository
	now     func() time.Time
}

// NewModuleService construye el servicio de módulos.
func NewModuleService(tenants repository.TenantRepository) *ModuleService {
	return &ModuleService{tenants: tenants, now: time.Now}
}

// Check informa si el tenant puede usar el módulo. Una cuenta con deuda vencida solo pierde facturación.
// Devuelve error solo ante fallos de infraestructura.
func (s *ModuleService) Check(ctx context.Context, tenantID, moduleName string) (entity.Entitlement, error) {
	if tenantID == "" || moduleName == "" {
		return entity.Entitlement{}, fmt.Errorf("module: tenantID y moduleName son obligatorios")
	}
	t, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return entity.Entitlement{}, fmt.Errorf("module: obtener tenant: %w", err)
	}
	if t == nil {
		return entity.Entitlement{Reason: ReasonTenantNotFound}, nil
	}
	switch t.Status {
	case entity.TenantStatusSuspended:
		return entity.Entitlement{Reason: ReasonTenantSuspended}, nil
	case entity.TenantStatusPastDue:
		if moduleName == entity.ModuleBilling {
			return entity.Entitlement{Reason: ReasonTenantPastDue}, nil
		}
	}
	m, err := s.tenants.GetModule(ctx, tenantID, moduleName)
	if err != nil {
		return entity.Entitlement{}, fmt.Errorf("module: obtener %s: %w", moduleName, err)
	}
	switch {
	case m == nil:
		return entity.Entitlement{Reason: ReasonModuleMissing}, nil
	case !m.IsActive:
		return entity.Entitlement{Reason: ReasonModuleInactive}, nil
	case m.ExpiresAt != nil && !m.ExpiresAt.After(s.now()):
		return entity.Entitlement{Reason: ReasonModuleExpired}, nil
	}
	return entity.Entitlement{Allowed: true}, nil
}
