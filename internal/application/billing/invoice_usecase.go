package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	domainbilling "github.com/jhoicas/homecare-fulfillment/internal/domain/billing"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/sequence"
)

// InvoiceConfig parámetros de emisión.
type InvoiceConfig struct {
	MinEvidence int
	Prefix      string
}

// InvoiceUseCase emite facturas contra autorizaciones y registra débitos y cobros.
type InvoiceUseCase struct {
	tx    ports.TxRunner
	seq   ports.Sequencer
	audit ports.AuditSink
	log   zerolog.Logger
	cfg   InvoiceConfig
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(tx ports.TxRunner, seq ports.Sequencer, audit ports.AuditSink, log zerolog.Logger, cfg InvoiceConfig) *InvoiceUseCase {
	if cfg.MinEvidence < 1 {
		cfg.MinEvidence = 1
	}
	if cfg.Prefix == "" {
		cfg.Prefix = entity.PrefixInvoice
	}
	return &InvoiceUseCase{tx: tx, seq: seq, audit: audit, log: log, cfg: cfg}
}

// Generate factura una entrega contra una autorización. Los controles se aplican en orden y el
// primero que falla corta sin escribir nada.
func (uc *InvoiceUseCase) Generate(ctx context.Context, actor entity.Actor, in dto.GenerateInvoiceRequest) (*entity.Invoice, domainbilling.Settlement, error) {
	var due *time.Time
	if in.DueDate != "" {
		t, err := time.Parse(dto.DateLayout, in.DueDate)
		if err != nil {
			return nil, domainbilling.Settlement{}, domain.ErrValidation.With("due_date inválida")
		}
		due = &t
	}

	var (
		inv *entity.Invoice
		st  domainbilling.Settlement
	)
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		tenantID := actor.TenantID

		// ── 1. Entrega entregada o cerrada ─────────────────────────────────────
		d, err := s.Deliveries.GetForUpdate(ctx, tenantID, in.DeliveryID)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrDeliveryNotFound
		}
		if !d.Billable() {
			return domain.ErrDeliveryNotReady
		}

		// ── 2. Evidencias ──────────────────────────────────────────────────────
		evidence, err := s.Deliveries.CountEvidence(ctx, tenantID, d.ID)
		if err != nil {
			return err
		}
		if evidence < uc.cfg.MinEvidence {
			return domain.ErrEvidenceRequired
		}

		// ── 3. No facturada antes ──────────────────────────────────────────────
		invoiced, err := s.Invoices.DeliveryInvoiced(ctx, tenantID, d.ID)
		if err != nil {
			return err
		}
		if invoiced {
			return domain.ErrDeliveryAlreadyInvoiced
		}

		// ── 4. Autorización del mismo paciente ─────────────────────────────────
		auth, err := s.Authorizations.GetForUpdate(ctx, tenantID, in.AuthorizationID)
		if err != nil {
			return err
		}
		if auth == nil {
			return domain.ErrAuthorizationNotFound
		}
		if auth.PatientID != d.PatientID {
			return domain.ErrAuthorizationMismatch
		}

		// ── 5. Vigencia a la fecha de entrega ──────────────────────────────────
		effective := time.Now()
		if d.DeliveredAt != nil {
			effective = *d.DeliveredAt
		}
		if err := domainbilling.CheckAuthorization(auth, effective); err != nil {
			return err
		}

		// ── 6. Ítems facturables ───────────────────────────────────────────────
		pl, err := s.PickLists.GetByID(ctx, tenantID, d.PickListID)
		if err != nil {
			return err
		}
		if pl == nil {
			return domain.ErrPickListNotFound
		}
		var billable []entity.PickListItem
		for _, it := range pl.Items {
			if it.PickedQty.IsPositive() {
				billable = append(billable, it)
			}
		}
		if len(billable) == 0 {
			return domain.ErrNoBillableItems
		}

		// ── 7-8. Regla por producto y totales de línea ─────────────────────────
		snapshot := entity.EvidenceSnapshot{DeliveryNumber: d.Number, EvidenceCount: evidence}
		if d.DeliveredAt != nil {
			snapshot.DeliveredAt = *d.DeliveredAt
		}
		if d.Receiver != nil {
			snapshot.ReceiverName, snapshot.ReceiverDNI = d.Receiver.Name, d.Receiver.DNI
		}
		inv = &entity.Invoice{
			ID:              uuid.New().String(),
			TenantID:        tenantID,
			PayerID:         auth.PayerID,
			PlanID:          auth.PlanID,
			PatientID:       d.PatientID,
			AuthorizationID: auth.ID,
			Status:          entity.InvoiceIssued,
			DueDate:         due,
			Notes:           in.Notes,
			CreatedBy:       actor.UserID,
		}
		adding := domainbilling.Usage{Units: decimal.Zero, Amount: decimal.Zero}
		for _, it := range billable {
			candidates, err := s.BillingRules.ListCandidates(ctx, tenantID, auth.PayerID, it.ProductID)
			if err != nil {
				return err
			}
			rule, err := domainbilling.ResolveRule(candidates, auth.PlanID)
			if err != nil {
				return domain.ErrBillingRuleMissing.With("producto " + it.ProductID)
			}
			desc := it.ProductID
			if p, err := s.Products.GetByID(ctx, tenantID, it.ProductID); err != nil {
				return err
			} else if p != nil {
				desc = p.Name
			}
			total := rule.LineTotal(it.PickedQty)
			inv.Items = append(inv.Items, entity.InvoiceItem{
				ID:          uuid.New().String(),
				InvoiceID:   inv.ID,
				DeliveryID:  d.ID,
				ProductID:   it.ProductID,
				Description: desc,
				Quantity:    it.PickedQty,
				UnitPrice:   rule.UnitPrice,
				Honorarium:  rule.Honorarium,
				Total:       total,
				Evidence:    snapshot,
			})
			adding.Units = adding.Units.Add(it.PickedQty)
			adding.Amount = adding.Amount.Add(total)
		}

		// ── 9. Límites de la autorización ──────────────────────────────────────
		units, amount, err := s.Invoices.UsageByAuthorization(ctx, tenantID, auth.ID)
		if err != nil {
			return err
		}
		if err := domainbilling.CheckLimits(auth, domainbilling.Usage{Units: units, Amount: amount}, adding); err != nil {
			return err
		}

		// ── 10. Número, alta y conciliación ────────────────────────────────────
		now := time.Now()
		period := sequence.Period(now)
		n, err := uc.seq.Next(ctx, tenantID, uc.cfg.Prefix, period)
		if err != nil {
			return fmt.Errorf("numerar factura: %w", err)
		}
		inv.Number = sequence.Format(uc.cfg.Prefix, period, n)
		inv.IssuedAt = now
		inv.UpdatedAt = now
		st = domainbilling.ReconcileInvoice(inv)
		return s.Invoices.Create(ctx, inv)
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("delivery_id", in.DeliveryID).Msg("factura rechazada")
		return nil, domainbilling.Settlement{}, err
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("number", inv.Number).Str("total", inv.TotalAmount.String()).Msg("factura emitida")
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "invoice.generated", "invoice", inv.ID, map[string]string{
		"number": inv.Number, "delivery_id": in.DeliveryID, "authorization_id": in.AuthorizationID, "total": inv.TotalAmount.String(),
	}))
	return inv, st, nil
}

// Get devuelve la factura completa con su conciliación.
func (uc *InvoiceUseCase) Get(ctx context.Context, tenantID, id string) (*entity.Invoice, domainbilling.Settlement, error) {
	var inv *entity.Invoice
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		var err error
		inv, err = s.Invoices.GetByID(ctx, tenantID, id)
		return err
	})
	if err != nil {
		return nil, domainbilling.Settlement{}, err
	}
	if inv == nil {
		return nil, domainbilling.Settlement{}, domain.ErrInvoiceNotFound
	}
	return inv, domainbilling.Reconcile(inv.Gross(), inv.DebitTotal(), inv.PaymentTotal()), nil
}

// AddDebitNote registra un débito del financiador y reconcilia.
func (uc *InvoiceUseCase) AddDebitNote(ctx context.Context, actor entity.Actor, id string, in dto.DebitNoteRequest) (*entity.Invoice, domainbilling.Settlement, error) {
	if !in.Amount.IsPositive() {
		return nil, domainbilling.Settlement{}, domain.ErrValidation.With("el monto debe ser mayor a cero")
	}
	dn := &entity.DebitNote{
		ID:        uuid.New().String(),
		TenantID:  actor.TenantID,
		InvoiceID: id,
		Amount:    in.Amount,
		Reason:    in.Reason,
		CreatedBy: actor.UserID,
		CreatedAt: time.Now(),
	}
	inv, st, err := uc.mutate(ctx, actor.TenantID, id, func(s repository.Stores, inv *entity.Invoice) error {
		if inv.Status == entity.InvoiceCancelled {
			return domain.ErrInvalidStatus
		}
		if err := s.Invoices.AddDebitNote(ctx, dn); err != nil {
			return err
		}
		inv.DebitNotes = append(inv.DebitNotes, *dn)
		return nil
	})
	if err != nil {
		return nil, st, err
	}
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "invoice.debit_note_added", "invoice", id,
		map[string]string{"amount": dn.Amount.String(), "status": inv.Status}))
	return inv, st, nil
}

// AddPayment registra un cobro y reconcilia.
func (uc *InvoiceUseCase) AddPayment(ctx context.Context, actor entity.Actor, id string, in dto.PaymentRequest) (*entity.Invoice, domainbilling.Settlement, error) {
	if !in.Amount.IsPositive() {
		return nil, domainbilling.Settlement{}, domain.ErrValidation.With("el monto debe ser mayor a cero")
	}
	now := time.Now()
	paidAt := now
	if in.PaidAt != "" {
		t, err := time.Parse(dto.DateLayout, in.PaidAt)
		if err != nil {
			return nil, domainbilling.Settlement{}, domain.ErrValidation.With("paid_at inválida")
		}
		paidAt = t
	}
	p := &entity.Payment{
		ID:        uuid.New().String(),
		TenantID:  actor.TenantID,
		InvoiceID: id,
		Amount:    in.Amount,
		Method:    in.Method,
		Reference: in.Reference,
		PaidAt:    paidAt,
		CreatedBy: actor.UserID,
		CreatedAt: now,
	}
	inv, st, err := uc.mutate(ctx, actor.TenantID, id, func(s repository.Stores, inv *entity.Invoice) error {
		if inv.Status == entity.InvoiceCancelled {
			return domain.ErrInvalidStatus
		}
		if err := s.Invoices.AddPayment(ctx, p); err != nil {
			return err
		}
		inv.Payments = append(inv.Payments, *p)
		return nil
	})
	if err != nil {
		return nil, st, err
	}
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "invoice.payment_added", "invoice", id,
		map[string]string{"amount": p.Amount.String(), "status": inv.Status}))
	return inv, st, nil
}

// Cancel anula una factura emitida sin cobros. Libera la capacidad de la autorización; la entrega sigue facturada.
func (uc *InvoiceUseCase) Cancel(ctx context.Context, actor entity.Actor, id string) (*entity.Invoice, error) {
	inv, _, err := uc.mutate(ctx, actor.TenantID, id, func(_ repository.Stores, inv *entity.Invoice) error {
		if inv.Status != entity.InvoiceIssued || len(inv.Payments) > 0 {
			return domain.ErrInvalidStatus
		}
		inv.Status = entity.InvoiceCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_id", id).Msg("factura anulada")
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "invoice.cancelled", "invoice", id, map[string]string{"number": inv.Number}))
	return inv, nil
}

// Reconcile recalcula total y estado. Aplicarlo dos veces no cambia nada.
func (uc *InvoiceUseCase) Reconcile(ctx context.Context, tenantID, id string) (*entity.Invoice, domainbilling.Settlement, error) {
	return uc.mutate(ctx, tenantID, id, func(repository.Stores, *entity.Invoice) error { return nil })
}

// mutate bloquea la factura, aplica fn, reconcilia y persiste la cabecera.
func (uc *InvoiceUseCase) mutate(ctx context.Context, tenantID, id string, fn func(s repository.Stores, inv *entity.Invoice) error) (*entity.Invoice, domainbilling.Settlement, error) {
	var (
		inv *entity.Invoice
		st  domainbilling.Settlement
	)
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		var err error
		inv, err = s.Invoices.GetForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrInvoiceNotFound
		}
		if err := fn(s, inv); err != nil {
			return err
		}
		st = domainbilling.ReconcileInvoice(inv)
		inv.UpdatedAt = time.Now()
		return s.Invoices.Update(ctx, inv)
	})
	if err != nil {
		return nil, domainbilling.Settlement{}, err
	}
	return inv, st, nil
}
