package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, tenant_id, payer_id, plan_id, patient_id, authorization_id, number, status,
	due_date, notes, total_amount, issued_at, created_by, updated_at`

// Create persiste la cabecera y sus ítems. El snapshot de evidencia va como JSONB.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.TenantID, inv.PayerID, nullIfEmpty(inv.PlanID), inv.PatientID, inv.AuthorizationID,
		inv.Number, inv.Status, inv.DueDate, inv.Notes, inv.TotalAmount, inv.IssuedAt, inv.CreatedBy, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	item := `
		INSERT INTO invoice_items (id, invoice_id, delivery_id, product_id, description, quantity, unit_price, honorarium, total, evidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i := range inv.Items {
		it := &inv.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.InvoiceID = inv.ID
		_, err := r.q.Exec(ctx, item,
			it.ID, it.InvoiceID, it.DeliveryID, it.ProductID, it.Description,
			it.Quantity, it.UnitPrice, it.Honorarium, it.Total, it.Evidence,
		)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	return nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var planID *string
	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.PayerID, &planID, &inv.PatientID, &inv.AuthorizationID, &inv.Number, &inv.Status,
		&inv.DueDate, &inv.Notes, &inv.TotalAmount, &inv.IssuedAt, &inv.CreatedBy, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.PlanID = deref(planID)
	return &inv, nil
}

// loadDetails completa ítems, débitos y cobros.
func (r *InvoiceRepo) loadDetails(ctx context.Context, inv *entity.Invoice) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, delivery_id, product_id, description, quantity, unit_price, honorarium, total, evidence
		FROM invoice_items WHERE invoice_id = $1 ORDER BY position`, inv.ID)
	if err != nil {
		return fmt.Errorf("list invoice items: %w", err)
	}
	inv.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.InvoiceItem, error) {
		var it entity.InvoiceItem
		err := row.Scan(&it.ID, &it.InvoiceID, &it.DeliveryID, &it.ProductID, &it.Description,
			&it.Quantity, &it.UnitPrice, &it.Honorarium, &it.Total, &it.Evidence)
		return it, err
	})
	if err != nil {
		return fmt.Errorf("scan invoice item: %w", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT id, tenant_id, invoice_id, amount, reason, created_by, created_at
		FROM debit_notes WHERE invoice_id = $1 ORDER BY created_at`, inv.ID)
	if err != nil {
		return fmt.Errorf("list debit notes: %w", err)
	}
	inv.DebitNotes, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.DebitNote, error) {
		var dn entity.DebitNote
		err := row.Scan(&dn.ID, &dn.TenantID, &dn.InvoiceID, &dn.Amount, &dn.Reason, &dn.CreatedBy, &dn.CreatedAt)
		return dn, err
	})
	if err != nil {
		return fmt.Errorf("scan debit note: %w", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT id, tenant_id, invoice_id, amount, method, reference, paid_at, created_by, created_at
		FROM payments WHERE invoice_id = $1 ORDER BY paid_at, created_at`, inv.ID)
	if err != nil {
		return fmt.Errorf("list payments: %w", err)
	}
	inv.Payments, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Payment, error) {
		var p entity.Payment
		err := row.Scan(&p.ID, &p.TenantID, &p.InvoiceID, &p.Amount, &p.Method, &p.Reference, &p.PaidAt, &p.CreatedBy, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return fmt.Errorf("scan payment: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) get(ctx context.Context, tenantID, id string, lock bool) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE tenant_id = $1 AND id = $2`
	if lock {
		query += " FOR UPDATE"
	}
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if err := r.loadDetails(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetByID devuelve la factura completa.
func (r *InvoiceRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Invoice, error) {
	return r.get(ctx, tenantID, id, false)
}

// GetForUpdate bloquea la cabecera y devuelve la factura completa.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Invoice, error) {
	return r.get(ctx, tenantID, id, true)
}

// Update persiste estado y total de la cabecera.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `UPDATE invoices SET status = $3, total_amount = $4, updated_at = $5 WHERE tenant_id = $1 AND id = $2`
	if _, err := r.q.Exec(ctx, query, inv.TenantID, inv.ID, inv.Status, inv.TotalAmount, inv.UpdatedAt); err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// AddDebitNote inserta un débito.
func (r *InvoiceRepo) AddDebitNote(ctx context.Context, dn *entity.DebitNote) error {
	if dn.ID == "" {
		dn.ID = uuid.New().String()
	}
	query := `
		INSERT INTO debit_notes (id, tenant_id, invoice_id, amount, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.q.Exec(ctx, query, dn.ID, dn.TenantID, dn.InvoiceID, dn.Amount, dn.Reason, dn.CreatedBy, dn.CreatedAt); err != nil {
		return fmt.Errorf("insert debit note: %w", err)
	}
	return nil
}

// AddPayment inserta un cobro.
func (r *InvoiceRepo) AddPayment(ctx context.Context, p *entity.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	query := `
		INSERT INTO payments (id, tenant_id, invoice_id, amount, method, reference, paid_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, p.ID, p.TenantID, p.InvoiceID, p.Amount, p.Method, p.Reference, p.PaidAt, p.CreatedBy, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// DeliveryInvoiced informa si algún ítem de cualquier factura (incluso anulada) referencia la entrega.
func (r *InvoiceRepo) DeliveryInvoiced(ctx context.Context, tenantID, deliveryID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM invoice_items ii
			  JOIN invoices i ON i.id = ii.invoice_id
			 WHERE i.tenant_id = $1 AND ii.delivery_id = $2
		)`
	var found bool
	if err := r.q.QueryRow(ctx, query, tenantID, deliveryID).Scan(&found); err != nil {
		return false, fmt.Errorf("check delivery invoiced: %w", err)
	}
	return found, nil
}

// UsageByAuthorization suma cantidades y totales de ítems de facturas no anuladas.
func (r *InvoiceRepo) UsageByAuthorization(ctx context.Context, tenantID, authorizationID string) (decimal.Decimal, decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(ii.quantity), 0), COALESCE(SUM(ii.total), 0)
		FROM invoice_items ii
		JOIN invoices i ON i.id = ii.invoice_id
		WHERE i.tenant_id = $1 AND i.authorization_id = $2 AND i.status <> 'CANCELLED'`
	var units, amount decimal.Decimal
	if err := r.q.QueryRow(ctx, query, tenantID, authorizationID).Scan(&units, &amount); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("authorization usage: %w", err)
	}
	return units, amount, nil
}

// List devuelve facturas completas filtradas por financiador e issued_at en [From, To).
func (r *InvoiceRepo) List(ctx context.Context, tenantID string, f repository.InvoiceFilter) ([]entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE tenant_id = $1`
	args := []any{tenantID}
	pos := 2
	if f.PayerID != "" {
		query += fmt.Sprintf(" AND payer_id = $%d", pos)
		args = append(args, f.PayerID)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND issued_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND issued_at < $%d", pos)
		args = append(args, *f.To)
	}
	query += " ORDER BY number"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Invoice, error) {
		inv, err := scanInvoice(row)
		if err != nil {
			return entity.Invoice{}, err
		}
		return *inv, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan invoice: %w", err)
	}
	for i := range list {
		if err := r.loadDetails(ctx, &list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}
