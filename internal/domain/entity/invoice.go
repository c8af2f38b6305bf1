package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la factura al financiador.
const (
	InvoiceIssued    = "ISSUED"
	InvoicePartial   = "PARTIAL"
	InvoicePaid      = "PAID"
	InvoiceCancelled = "CANCELLED"
)

// Invoice es la cabecera de la factura emitida contra una autorización.
// TotalAmount guarda el bruto (suma de ítems), no el neto de débitos.
type Invoice struct {
	ID              string
	TenantID        string
	PayerID         string
	PlanID          string
	PatientID       string
	AuthorizationID string
	Number          string
	Status          string
	DueDate         *time.Time
	Notes           string
	TotalAmount     decimal.Decimal
	IssuedAt        time.Time
	CreatedBy       string
	UpdatedAt       time.Time
	Items           []InvoiceItem
	DebitNotes      []DebitNote
	Payments        []Payment
}

// EvidenceSnapshot congela en el ítem los datos de la entrega al momento de facturar.
type EvidenceSnapshot struct {
	DeliveryNumber string    `json:"delivery_number"`
	EvidenceCount  int       `json:"evidence_count"`
	DeliveredAt    time.Time `json:"delivered_at"`
	ReceiverName   string    `json:"receiver_name"`
	ReceiverDNI    string    `json:"receiver_dni"`
}

// InvoiceItem es una línea facturada; referencia la entrega que la respalda.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	DeliveryID  string
	ProductID   string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Honorarium  decimal.Decimal
	Total       decimal.Decimal
	Evidence    EvidenceSnapshot
}

// DebitNote es un débito (glosa) del financiador que reduce el neto a cobrar.
type DebitNote struct {
	ID        string
	TenantID  string
	InvoiceID string
	Amount    decimal.Decimal
	Reason    string
	CreatedBy string
	CreatedAt time.Time
}

// Payment es un cobro recibido.
type Payment struct {
	ID        string
	TenantID  string
	InvoiceID string
	Amount    decimal.Decimal
	Method    string
	Reference string
	PaidAt    time.Time
	CreatedBy string
	CreatedAt time.Time
}

// Gross suma los totales de los ítems.
func (inv *Invoice) Gross() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range inv.Items {
		sum = sum.Add(it.Total)
	}
	return sum
}

// DebitTotal suma los débitos.
func (inv *Invoice) DebitTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, d := range inv.DebitNotes {
		sum = sum.Add(d.Amount)
	}
	return sum
}

// PaymentTotal suma los cobros.
func (inv *Invoice) PaymentTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range inv.Payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}
