package entity

import "time"

// Causas de incidencia.
const (
	IncidentOutOfStock        = "OUT_OF_STOCK"
	IncidentIndicationChanged = "INDICATION_CHANGED"
	IncidentHomeRefusal       = "HOME_REFUSAL"
	IncidentNonCompliance     = "NON_COMPLIANCE"
	IncidentDamaged           = "DAMAGED"
	IncidentOther             = "OTHER"
)

// Incident explica una reducción de cantidad o un fallo de entrega. Inmutable.
type Incident struct {
	ID          string
	TenantID    string
	Cause       string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
}

// IsValidIncidentCause informa si c es una causa conocida.
func IsValidIncidentCause(c string) bool {
	switch c {
	case IncidentOutOfStock, IncidentIndicationChanged, IncidentHomeRefusal,
		IncidentNonCompliance, IncidentDamaged, IncidentOther:
		return true
	}
	return false
}
