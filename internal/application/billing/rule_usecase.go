// Package billing implementa reglas de facturación, emisión y conciliación de facturas y exportaciones.
package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	domainbilling "github.com/jhoicas/homecare-fulfillment/internal/domain/billing"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

// RuleUseCase mantiene las reglas de precio por financiador, plan y producto.
type RuleUseCase struct {
	tx    ports.TxRunner
	audit ports.AuditSink
	log   zerolog.Logger
}

// NewRuleUseCase construye el caso de uso.
func NewRuleUseCase(tx ports.TxRunner, audit ports.AuditSink, log zerolog.Logger) *RuleUseCase {
	return &RuleUseCase{tx: tx, audit: audit, log: log}
}

// Upsert crea o reemplaza la regla. plan_id vacío es la regla general del financiador.
func (uc *RuleUseCase) Upsert(ctx context.Context, actor entity.Actor, in dto.UpsertBillingRuleRequest) (*entity.BillingRule, error) {
	r := &entity.BillingRule{
		ID:         uuid.New().String(),
		TenantID:   actor.TenantID,
		PayerID:    in.PayerID,
		PlanID:     in.PlanID,
		ProductID:  in.ProductID,
		UnitPrice:  in.UnitPrice,
		Honorarium: in.Honorarium,
		UpdatedAt:  time.Now(),
	}
	if err := domainbilling.ValidateRule(*r); err != nil {
		return nil, err
	}
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		payer, err := s.Payers.GetPayer(ctx, actor.TenantID, r.PayerID)
		if err != nil {
			return err
		}
		if payer == nil {
			return domain.ErrPayerNotFound
		}
		if r.PlanID != "" {
			plan, err := s.Payers.GetPlan(ctx, actor.TenantID, r.PlanID)
			if err != nil {
				return err
			}
			if plan == nil {
				return domain.ErrPlanNotFound
			}
			if plan.PayerID != r.PayerID {
				return domain.ErrPlanPayerMismatch
			}
		}
		p, err := s.Products.GetByID(ctx, actor.TenantID, r.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProductNotFound
		}
		return s.BillingRules.Upsert(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "billing_rule.upserted", "billing_rule", r.ID, map[string]string{
		"payer_id": r.PayerID, "plan_id": r.PlanID, "product_id": r.ProductID,
		"unit_price": r.UnitPrice.String(), "honorarium": r.Honorarium.String(),
	}))
	return r, nil
}
