// Package billing reúne las reglas puras de facturación: resolución de precios,
// vigencia de autorizaciones, límites y conciliación.
package billing

import (
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// ResolveRule elige la regla del plan exacto y, si no hay, la general del financiador (PlanID vacío).
// candidates son las reglas del financiador para el producto.
func ResolveRule(candidates []entity.BillingRule, planID string) (entity.BillingRule, error) {
	var general *entity.BillingRule
	for i := range candidates {
		r := &candidates[i]
		if planID != "" && r.PlanID == planID {
			return *r, nil
		}
		if r.PlanID == "" && general == nil {
			general = r
		}
	}
	if general != nil {
		return *general, nil
	}
	return entity.BillingRule{}, domain.ErrBillingRuleMissing
}

// ValidateRule controla precio y honorario no negativos.
func ValidateRule(r entity.BillingRule) error {
	if r.UnitPrice.IsNegative() {
		return domain.ErrInvalidUnitPrice
	}
	if r.Honorarium.IsNegative() {
		return domain.ErrValidation.With("el honorario no puede ser negativo")
	}
	return nil
}
