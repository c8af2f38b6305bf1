package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingRule fija precio y honorario de un producto para un financiador.
// PlanID vacío = regla general del financiador.
type BillingRule struct {
	ID         string
	TenantID   string
	PayerID    string
	PlanID     string
	ProductID  string
	UnitPrice  decimal.Decimal
	Honorarium decimal.Decimal
	UpdatedAt  time.Time
}

// LineTotal es (precio + honorario) × cantidad.
func (r BillingRule) LineTotal(qty decimal.Decimal) decimal.Decimal {
	return r.UnitPrice.Add(r.Honorarium).Mul(qty)
}
