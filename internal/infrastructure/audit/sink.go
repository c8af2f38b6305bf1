// Package audit contiene sinks de auditoría que no dependen de la base.
package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

var (
	_ ports.AuditSink = (*LogSink)(nil)
	_ ports.AuditSink = Multi(nil)
)

// LogSink escribe cada evento como una línea de log estructurada.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink construye el sink sobre el logger dado.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

// Record emite el evento en nivel info.
func (s *LogSink) Record(_ context.Context, e entity.AuditEntry) {
	ev := s.log.Info().
		Str("tenant_id", e.TenantID).
		Str("actor_id", e.ActorID).
		Str("action", e.Action).
		Str("entity_type", e.EntityType).
		Str("entity_id", e.EntityID).
		Time("occurred_at", e.OccurredAt)
	if len(e.Meta) > 0 {
		d := zerolog.Dict()
		for k, v := range e.Meta {
			d = d.Str(k, v)
		}
		ev = ev.Dict("meta", d)
	}
	ev.Msg("audit")
}

// Multi reparte cada evento a varios sinks en orden.
type Multi []ports.AuditSink

// Record delega en cada sink.
func (m Multi) Record(ctx context.Context, e entity.AuditEntry) {
	for _, s := range m {
		s.Record(ctx, e)
	}
}

// Nop descarta los eventos.
type Nop struct{}

// Record no hace nada.
func (Nop) Record(context.Context, entity.AuditEntry) {}
