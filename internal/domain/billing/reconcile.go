package billing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// Settlement es el resultado de conciliar una factura.
type Settlement struct {
	Gross    decimal.Decimal
	Debits   decimal.Decimal
	Payments decimal.Decimal
	NetDue   decimal.Decimal
	Status   string
}

// Reconcile calcula neto y estado a partir de bruto, débitos y cobros.
// netDue = max(bruto − débitos, 0); PAID si netDue = 0 o cobros ≥ netDue, PARTIAL si hubo cobros, si no ISSUED.
func Reconcile(gross, debits, payments decimal.Decimal) Settlement {
	net := gross.Sub(debits)
	if net.IsNegative() {
		net = decimal.Zero
	}
	status := entity.InvoiceIssued
	switch {
	case net.IsZero() || payments.GreaterThanOrEqual(net):
		status = entity.InvoicePaid
	case payments.IsPositive():
		status = entity.InvoicePartial
	}
	return Settlement{Gross: gross, Debits: debits, Payments: payments, NetDue: net, Status: status}
}

// ReconcileInvoice aplica Reconcile sobre la factura. Una factura anulada conserva su estado.
func ReconcileInvoice(inv *entity.Invoice) Settlement {
	s := Reconcile(inv.Gross(), inv.DebitTotal(), inv.PaymentTotal())
	inv.TotalAmount = s.Gross
	if inv.Status != entity.InvoiceCancelled {
		inv.Status = s.Status
	}
	return s
}
