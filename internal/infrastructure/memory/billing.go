package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

type authorizationRepo struct{ t *txState }

func (r authorizationRepo) Create(_ context.Context, a *entity.Authorization) error {
	r.t.state.auths[a.ID] = cloneAuthorization(*a)
	return nil
}

func (r authorizationRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Authorization, error) {
	a, ok := r.t.state.auths[id]
	if !ok || a.TenantID != tenantID {
		return nil, nil
	}
	a = cloneAuthorization(a)
	return &a, nil
}

func (r authorizationRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Authorization, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r authorizationRepo) Update(_ context.Context, a *entity.Authorization) error {
	cur, ok := r.t.state.auths[a.ID]
	if !ok || cur.TenantID != a.TenantID {
		return errNotStored("autorización", a.ID)
	}
	cur = cloneAuthorization(cur)
	cur.Status = a.Status
	cur.Notes = a.Notes
	cur.UpdatedAt = a.UpdatedAt
	r.t.state.auths[a.ID] = cur
	return nil
}

func (r authorizationRepo) UpdateRequirement(_ context.Context, tenantID string, req *entity.AuthorizationRequirement) error {
	cur, ok := r.t.state.auths[req.AuthorizationID]
	if !ok || cur.TenantID != tenantID {
		return errNotStored("autorización", req.AuthorizationID)
	}
	cur = cloneAuthorization(cur)
	for i := range cur.Requirements {
		if cur.Requirements[i].ID == req.ID {
			cur.Requirements[i] = *req
			r.t.state.auths[cur.ID] = cur
			return nil
		}
	}
	return errNotStored("requisito", req.ID)
}

func (r authorizationRepo) ListByPayer(_ context.Context, tenantID, payerID string) ([]entity.Authorization, error) {
	var out []entity.Authorization
	for _, a := range r.t.state.auths {
		if a.TenantID == tenantID && a.PayerID == payerID {
			out = append(out, cloneAuthorization(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r authorizationRepo) ListEndedBefore(_ context.Context, tenantID string, day time.Time) ([]entity.Authorization, error) {
	var out []entity.Authorization
	for _, a := range r.t.state.auths {
		if a.TenantID != tenantID || a.EndDate == nil {
			continue
		}
		if a.Status != entity.AuthorizationPending && a.Status != entity.AuthorizationActive {
			continue
		}
		if entity.DateOf(*a.EndDate).Before(day) {
			out = append(out, cloneAuthorization(a))
		}
	}
	return out, nil
}

type billingRuleRepo struct{ t *txState }

func (r billingRuleRepo) Upsert(_ context.Context, rule *entity.BillingRule) error {
	k := ruleKey{rule.TenantID, rule.PayerID, rule.PlanID, rule.ProductID}
	if cur, ok := r.t.state.rules[k]; ok {
		rule.ID = cur.ID
	}
	r.t.state.rules[k] = *rule
	return nil
}

func (r billingRuleRepo) ListCandidates(_ context.Context, tenantID, payerID, productID string) ([]entity.BillingRule, error) {
	var out []entity.BillingRule
	for k, rule := range r.t.state.rules {
		if k.tenant == tenantID && k.payer == payerID && k.product == productID {
			out = append(out, rule)
		}
	}
	return out, nil
}

type invoiceRepo struct{ t *txState }

func (r invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	for _, other := range r.t.state.invoices {
		if other.TenantID == inv.TenantID && other.Number == inv.Number {
			return fmt.Errorf("memory: número de factura duplicado %s", inv.Number)
		}
	}
	r.t.state.invoices[inv.ID] = cloneInvoice(*inv)
	return nil
}

func (r invoiceRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Invoice, error) {
	inv, ok := r.t.state.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return nil, nil
	}
	inv = cloneInvoice(inv)
	return &inv, nil
}

func (r invoiceRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r invoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	cur, ok := r.t.state.invoices[inv.ID]
	if !ok || cur.TenantID != inv.TenantID {
		return errNotStored("factura", inv.ID)
	}
	cur = cloneInvoice(cur)
	cur.Status = inv.Status
	cur.TotalAmount = inv.TotalAmount
	cur.UpdatedAt = inv.UpdatedAt
	r.t.state.invoices[inv.ID] = cur
	return nil
}

func (r invoiceRepo) AddDebitNote(_ context.Context, dn *entity.DebitNote) error {
	cur, ok := r.t.state.invoices[dn.InvoiceID]
	if !ok || cur.TenantID != dn.TenantID {
		return errNotStored("factura", dn.InvoiceID)
	}
	cur = cloneInvoice(cur)
	cur.DebitNotes = append(cur.DebitNotes, *dn)
	r.t.state.invoices[cur.ID] = cur
	return nil
}

func (r invoiceRepo) AddPayment(_ context.Context, p *entity.Payment) error {
	cur, ok := r.t.state.invoices[p.InvoiceID]
	if !ok || cur.TenantID != p.TenantID {
		return errNotStored("factura", p.InvoiceID)
	}
	cur = cloneInvoice(cur)
	cur.Payments = append(cur.Payments, *p)
	r.t.state.invoices[cur.ID] = cur
	return nil
}

func (r invoiceRepo) DeliveryInvoiced(_ context.Context, tenantID, deliveryID string) (bool, error) {
	for _, inv := range r.t.state.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		for _, it := range inv.Items {
			if it.DeliveryID == deliveryID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r invoiceRepo) UsageByAuthorization(_ context.Context, tenantID, authorizationID string) (decimal.Decimal, decimal.Decimal, error) {
	units, amount := decimal.Zero, decimal.Zero
	for _, inv := range r.t.state.invoices {
		if inv.TenantID != tenantID || inv.AuthorizationID != authorizationID || inv.Status == entity.InvoiceCancelled {
			continue
		}
		for _, it := range inv.Items {
			units = units.Add(it.Quantity)
			amount = amount.Add(it.Total)
		}
	}
	return units, amount, nil
}

func (r invoiceRepo) List(_ context.Context, tenantID string, f repository.InvoiceFilter) ([]entity.Invoice, error) {
	var out []entity.Invoice
	for _, inv := range r.t.state.invoices {
		if inv.TenantID != tenantID || (f.PayerID != "" && inv.PayerID != f.PayerID) {
			continue
		}
		if (f.From != nil && inv.IssuedAt.Before(*f.From)) || (f.To != nil && !inv.IssuedAt.Before(*f.To)) {
			continue
		}
		out = append(out, cloneInvoice(inv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}
