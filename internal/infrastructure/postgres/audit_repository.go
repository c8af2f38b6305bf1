package postgres

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

var _ ports.AuditSink = (*AuditRepo)(nil)

// AuditRepo persiste eventos en audit_logs. Un fallo se registra en el log y no se propaga.
type AuditRepo struct {
	q   Querier
	log zerolog.Logger
}

// NewAuditRepository construye el sink sobre el pool.
func NewAuditRepository(q Querier, log zerolog.Logger) *AuditRepo {
	return &AuditRepo{q: q, log: log}
}

// Record inserta el evento con un timeout propio: el contexto del request puede estar cancelado.
func (r *AuditRepo) Record(ctx context.Context, e entity.AuditEntry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	meta := e.Meta
	if meta == nil {
		meta = map[string]string{}
	}
	const q = `
		INSERT INTO audit_logs (tenant_id, actor_id, action, entity_type, entity_id, meta, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.q.Exec(ctx, q, e.TenantID, e.ActorID, e.Action, e.EntityType, e.EntityID, meta, e.OccurredAt); err != nil {
		r.log.Warn().Err(err).
			Str("tenant_id", e.TenantID).
			Str("action", e.Action).
			Str("entity_id", e.EntityID).
			Msg("no se pudo registrar auditoría")
	}
}
