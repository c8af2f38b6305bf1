package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

var _ repository.DeliveryRepository = (*DeliveryRepo)(nil)

// DeliveryRepo implementación de DeliveryRepository (usable con pool o tx).
type DeliveryRepo struct {
	q Querier
}

// NewDeliveryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeliveryRepository(q Querier) *DeliveryRepo {
	return &DeliveryRepo{q: q}
}

const deliveryColumns = `id, tenant_id, pick_list_id, order_id, patient_id, number, status,
	carrier_name, carrier_dni, carrier_signed_at,
	receiver_name, receiver_dni, receiver_relation, receiver_signed_at,
	incident_id, delivered_at, closed_at, created_at`

// signatureArgs aplana las firmas a columnas nulas cuando no existen.
func signatureArgs(d *entity.Delivery) []any {
	var cName, cDNI *string
	var cAt *time.Time
	if c := d.Carrier; c != nil {
		cName, cDNI, cAt = &c.Name, &c.DNI, &c.SignedAt
	}
	var rName, rDNI, rRel *string
	var rAt *time.Time
	if rc := d.Receiver; rc != nil {
		rName, rDNI, rRel, rAt = &rc.Name, &rc.DNI, &rc.Relation, &rc.SignedAt
	}
	return []any{cName, cDNI, cAt, rName, rDNI, rRel, rAt}
}

// Create inserta la entrega. pick_list_id y (tenant, number) son únicos.
func (r *DeliveryRepo) Create(ctx context.Context, d *entity.Delivery) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	query := `
		INSERT INTO deliveries (` + deliveryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	args := []any{d.ID, d.TenantID, d.PickListID, d.OrderID, d.PatientID, d.Number, d.Status}
	args = append(args, signatureArgs(d)...)
	args = append(args, nullIfEmpty(d.IncidentID), d.DeliveredAt, d.ClosedAt, d.CreatedAt)
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("delivery already exists for pick list %s: %w", d.PickListID, err)
		}
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

func scanDelivery(row pgx.Row) (*entity.Delivery, error) {
	var d entity.Delivery
	var cName, cDNI, rName, rDNI, rRel, incidentID *string
	var cAt, rAt *time.Time
	err := row.Scan(
		&d.ID, &d.TenantID, &d.PickListID, &d.OrderID, &d.PatientID, &d.Number, &d.Status,
		&cName, &cDNI, &cAt,
		&rName, &rDNI, &rRel, &rAt,
		&incidentID, &d.DeliveredAt, &d.ClosedAt, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if cName != nil {
		d.Carrier = &entity.CarrierSignature{Name: *cName, DNI: deref(cDNI)}
		if cAt != nil {
			d.Carrier.SignedAt = *cAt
		}
	}
	if rName != nil {
		d.Receiver = &entity.ReceiverSignature{Name: *rName, DNI: deref(rDNI), Relation: deref(rRel)}
		if rAt != nil {
			d.Receiver.SignedAt = *rAt
		}
	}
	d.IncidentID = deref(incidentID)
	return &d, nil
}

func (r *DeliveryRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Delivery, error) {
	d, err := scanDelivery(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return d, nil
}

// GetByID obtiene una entrega del tenant.
func (r *DeliveryRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Delivery, error) {
	return r.getOne(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetByPickListID obtiene la entrega de una lista de picking.
func (r *DeliveryRepo) GetByPickListID(ctx context.Context, tenantID, pickListID string) (*entity.Delivery, error) {
	return r.getOne(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE tenant_id = $1 AND pick_list_id = $2`, tenantID, pickListID)
}

// GetForUpdate obtiene la entrega y bloquea la fila.
func (r *DeliveryRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Delivery, error) {
	return r.getOne(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

// Update persiste estado, firmas, incidencia y marcas de tiempo.
func (r *DeliveryRepo) Update(ctx context.Context, d *entity.Delivery) error {
	query := `
		UPDATE deliveries SET status = $3,
			carrier_name = $4, carrier_dni = $5, carrier_signed_at = $6,
			receiver_name = $7, receiver_dni = $8, receiver_relation = $9, receiver_signed_at = $10,
			incident_id = $11, delivered_at = $12, closed_at = $13
		WHERE tenant_id = $1 AND id = $2`
	args := []any{d.TenantID, d.ID, d.Status}
	args = append(args, signatureArgs(d)...)
	args = append(args, nullIfEmpty(d.IncidentID), d.DeliveredAt, d.ClosedAt)
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update delivery: %w", err)
	}
	return nil
}

// AddEvidence inserta una evidencia (append-only).
func (r *DeliveryRepo) AddEvidence(ctx context.Context, e *entity.DeliveryEvidence) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO delivery_evidence (id, tenant_id, delivery_id, file_key, file_name, mime_type, size, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.TenantID, e.DeliveryID, e.FileKey, e.FileName, e.MimeType, e.Size, e.UploadedBy, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert delivery evidence: %w", err)
	}
	return nil
}

// CountEvidence cuenta las evidencias de la entrega.
func (r *DeliveryRepo) CountEvidence(ctx context.Context, tenantID, deliveryID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM delivery_evidence WHERE tenant_id = $1 AND delivery_id = $2`,
		tenantID, deliveryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count delivery evidence: %w", err)
	}
	return n, nil
}

// ListEvidence devuelve las evidencias en orden de carga.
func (r *DeliveryRepo) ListEvidence(ctx context.Context, tenantID, deliveryID string) ([]entity.DeliveryEvidence, error) {
	query := `
		SELECT id, tenant_id, delivery_id, file_key, file_name, mime_type, size, uploaded_by, created_at
		FROM delivery_evidence WHERE tenant_id = $1 AND delivery_id = $2 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, tenantID, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("list delivery evidence: %w", err)
	}
	defer rows.Close()
	var list []entity.DeliveryEvidence
	for rows.Next() {
		var e entity.DeliveryEvidence
		if err := rows.Scan(&e.ID, &e.TenantID, &e.DeliveryID, &e.FileKey, &e.FileName,
			&e.MimeType, &e.Size, &e.UploadedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan delivery evidence: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// ListDelivered devuelve entregas DELIVERED o CLOSED con delivered_at en [from, to).
func (r *DeliveryRepo) ListDelivered(ctx context.Context, tenantID string, from, to time.Time) ([]entity.Delivery, error) {
	query := `
		SELECT ` + deliveryColumns + `
		FROM deliveries
		WHERE tenant_id = $1 AND status IN ('DELIVERED', 'CLOSED')
		  AND delivered_at >= $2 AND delivered_at < $3
		ORDER BY number`
	rows, err := r.q.Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list delivered: %w", err)
	}
	defer rows.Close()
	var list []entity.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		list = append(list, *d)
	}
	return list, rows.Err()
}
