package entity

import "time"

// Warehouse representa una bodega desde la que se despachan los kits.
type Warehouse struct {
	ID        string
	TenantID  string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
