package billing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// Usage es lo ya facturado contra una autorización (ítems de facturas no anuladas).
type Usage struct {
	Units  decimal.Decimal
	Amount decimal.Decimal
}

// CheckLimits controla que lo existente más lo nuevo no supere los límites de la autorización.
// Un límite nulo no restringe.
func CheckLimits(a *entity.Authorization, used, adding Usage) error {
	if a.LimitUnits != nil && used.Units.Add(adding.Units).GreaterThan(*a.LimitUnits) {
		return domain.ErrAuthorizationLimitUnits.With(
			"usadas " + used.Units.String() + " + nuevas " + adding.Units.String() + " > límite " + a.LimitUnits.String())
	}
	if a.LimitAmount != nil && used.Amount.Add(adding.Amount).GreaterThan(*a.LimitAmount) {
		return domain.ErrAuthorizationLimitAmount.With(
			"facturado " + used.Amount.String() + " + nuevo " + adding.Amount.String() + " > límite " + a.LimitAmount.String())
	}
	return nil
}
