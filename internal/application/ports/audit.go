package ports

import (
	"context"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// AuditSink recibe eventos de auditoría. Es fire-and-forget: nunca hace fallar la operación.
type AuditSink interface {
	Record(ctx context.Context, e entity.AuditEntry)
}

// EntitlementChecker resuelve si un tenant tiene habilitado un módulo.
type EntitlementChecker interface {
	Check(ctx context.Context, tenantID, moduleName string) (entity.Entitlement, error)
}
