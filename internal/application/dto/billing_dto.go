package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// UpsertBillingRuleRequest body para PUT /api/billing-rules. plan_id vacío = regla general.
type UpsertBillingRuleRequest struct {
	PayerID    string          `json:"payer_id" validate:"required"`
	PlanID     string          `json:"plan_id,omitempty"`
	ProductID  string          `json:"product_id" validate:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Honorarium decimal.Decimal `json:"honorarium"`
}

// BillingRuleResponse regla de facturación.
type BillingRuleResponse struct {
	ID         string          `json:"id"`
	PayerID    string          `json:"payer_id"`
	PlanID     string          `json:"plan_id,omitempty"`
	ProductID  string          `json:"product_id"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Honorarium decimal.Decimal `json:"honorarium"`
}

// GenerateInvoiceRequest body para POST /api/invoices.
type GenerateInvoiceRequest struct {
	DeliveryID      string `json:"delivery_id" validate:"required"`
	AuthorizationID string `json:"authorization_id" validate:"required"`
	DueDate         string `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes           string `json:"notes,omitempty" validate:"max=500"`
}

// DebitNoteRequest body para POST /api/invoices/:id/debit-notes.
type DebitNoteRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason" validate:"required,max=500"`
}

// PaymentRequest body para POST /api/invoices/:id/payments.
type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method,omitempty" validate:"max=40"`
	Reference string          `json:"reference,omitempty" validate:"max=120"`
	PaidAt    string          `json:"paid_at,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// InvoiceItemResponse ítem facturado.
type InvoiceItemResponse struct {
	ID             string          `json:"id"`
	DeliveryID     string          `json:"delivery_id"`
	DeliveryNumber string          `json:"delivery_number"`
	ProductID      string          `json:"product_id"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Honorarium     decimal.Decimal `json:"honorarium"`
	Total          decimal.Decimal `json:"total"`
	EvidenceCount  int             `json:"evidence_count"`
}

// InvoiceResponse factura con totales de conciliación.
type InvoiceResponse struct {
	ID              string                `json:"id"`
	Number          string                `json:"number"`
	Status          string                `json:"status"`
	PayerID         string                `json:"payer_id"`
	PlanID          string                `json:"plan_id,omitempty"`
	PatientID       string                `json:"patient_id"`
	AuthorizationID string                `json:"authorization_id"`
	IssuedAt        time.Time             `json:"issued_at"`
	DueDate         string                `json:"due_date,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	DebitTotal      decimal.Decimal       `json:"debit_total"`
	PaymentTotal    decimal.Decimal       `json:"payment_total"`
	NetDue          decimal.Decimal       `json:"net_due"`
	Items           []InvoiceItemResponse `json:"items"`
}

// NewBillingRuleResponse mapea una regla.
func NewBillingRuleResponse(r *entity.BillingRule) BillingRuleResponse {
	return BillingRuleResponse{
		ID:         r.ID,
		PayerID:    r.PayerID,
		PlanID:     r.PlanID,
		ProductID:  r.ProductID,
		UnitPrice:  r.UnitPrice,
		Honorarium: r.Honorarium,
	}
}

// NewInvoiceResponse mapea una factura. netDue viene de la conciliación.
func NewInvoiceResponse(inv *entity.Invoice, netDue decimal.Decimal) InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, InvoiceItemResponse{
			ID:             it.ID,
			DeliveryID:     it.DeliveryID,
			DeliveryNumber: it.Evidence.DeliveryNumber,
			ProductID:      it.ProductID,
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			Honorarium:     it.Honorarium,
			Total:          it.Total,
			EvidenceCount:  it.Evidence.EvidenceCount,
		})
	}
	return InvoiceResponse{
		ID:              inv.ID,
		Number:          inv.Number,
		Status:          inv.Status,
		PayerID:         inv.PayerID,
		PlanID:          inv.PlanID,
		PatientID:       inv.PatientID,
		AuthorizationID: inv.AuthorizationID,
		IssuedAt:        inv.IssuedAt,
		DueDate:         formatDate(inv.DueDate),
		Notes:           inv.Notes,
		TotalAmount:     inv.TotalAmount,
		DebitTotal:      inv.DebitTotal(),
		PaymentTotal:    inv.PaymentTotal(),
		NetDue:          netDue,
		Items:           items,
	}
}
