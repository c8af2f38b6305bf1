package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// KitTemplate es una receta reutilizable de productos que se expande en ítems de un pedido.
type KitTemplate struct {
	ID          string
	TenantID    string
	Name        string
	Description string
	CreatedAt   time.Time
	Items       []KitTemplateItem
}

// KitTemplateItem es una línea del kit.
type KitTemplateItem struct {
	ID        string
	KitID     string
	ProductID string
	Quantity  decimal.Decimal
}
