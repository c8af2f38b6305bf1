package entity

import "time"

// AuditEntry es un evento de auditoría de una mutación exitosa.
type AuditEntry struct {
	TenantID   string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Meta       map[string]string
	OccurredAt time.Time
}

// NewAuditEntry arma un evento para el actor con marca de tiempo actual.
func NewAuditEntry(actor Actor, action, entityType, entityID string, meta map[string]string) AuditEntry {
	return AuditEntry{
		TenantID:   actor.TenantID,
		ActorID:    actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Meta:       meta,
		OccurredAt: time.Now(),
	}
}
