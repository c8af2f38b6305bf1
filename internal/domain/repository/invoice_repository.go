package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// InvoiceFilter filtra el listado de facturas por financiador y período de emisión.
type InvoiceFilter struct {
	PayerID string
	From    *time.Time
	To      *time.Time
}

// InvoiceRepository define el puerto de facturas, ítems, débitos y cobros.
type InvoiceRepository interface {
	// Create inserta cabecera e ítems.
	Create(ctx context.Context, inv *entity.Invoice) error
	// GetByID devuelve la factura completa (ítems, débitos, cobros).
	GetByID(ctx context.Context, tenantID, id string) (*entity.Invoice, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Invoice, error)
	// Update persiste estado y total de la cabecera.
	Update(ctx context.Context, inv *entity.Invoice) error
	AddDebitNote(ctx context.Context, dn *entity.DebitNote) error
	AddPayment(ctx context.Context, p *entity.Payment) error
	// DeliveryInvoiced informa si algún ítem de cualquier factura referencia la entrega.
	DeliveryInvoiced(ctx context.Context, tenantID, deliveryID string) (bool, error)
	// UsageByAuthorization suma cantidades y totales de ítems de facturas no anuladas.
	UsageByAuthorization(ctx context.Context, tenantID, authorizationID string) (units, amount decimal.Decimal, err error)
	List(ctx context.Context, tenantID string, f InvoiceFilter) ([]entity.Invoice, error)
}
