package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovedOrder es el pedido clínico aprobado para un paciente.
// Sus ítems solo se agregan mientras no exista lista de picking.
type ApprovedOrder struct {
	ID        string
	TenantID  string
	PatientID string
	EpisodeID string // opcional
	Notes     string
	CreatedBy string
	CreatedAt time.Time
	Items     []ApprovedOrderItem
}

// ApprovedOrderItem es una línea del pedido.
type ApprovedOrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  decimal.Decimal
	KitID     string // kit de origen, vacío si se cargó a mano
}
