package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

var (
	_ repository.OrderRepository = (*OrderRepo)(nil)
	_ repository.KitRepository   = (*KitRepo)(nil)
)

// OrderRepo implementación de OrderRepository (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste la cabecera y los ítems iniciales.
func (r *OrderRepo) Create(ctx context.Context, o *entity.ApprovedOrder) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	query := `
		INSERT INTO approved_orders (id, tenant_id, patient_id, episode_id, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.TenantID, o.PatientID, nullIfEmpty(o.EpisodeID), o.Notes, o.CreatedBy, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return r.AddItems(ctx, o.TenantID, o.Items)
}

func (r *OrderRepo) get(ctx context.Context, tenantID, id string, lock bool) (*entity.ApprovedOrder, error) {
	query := `
		SELECT id, tenant_id, patient_id, episode_id, notes, created_by, created_at
		FROM approved_orders WHERE tenant_id = $1 AND id = $2`
	if lock {
		query += " FOR UPDATE"
	}
	var o entity.ApprovedOrder
	var episodeID *string
	err := r.q.QueryRow(ctx, query, tenantID, id).Scan(
		&o.ID, &o.TenantID, &o.PatientID, &episodeID, &o.Notes, &o.CreatedBy, &o.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	o.EpisodeID = deref(episodeID)

	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, quantity, kit_id
		FROM approved_order_items WHERE order_id = $1 ORDER BY position`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.ApprovedOrderItem
		var kitID *string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &kitID); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		it.KitID = deref(kitID)
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

// GetByID devuelve el pedido con sus ítems.
func (r *OrderRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.ApprovedOrder, error) {
	return r.get(ctx, tenantID, id, false)
}

// GetForUpdate bloquea la cabecera del pedido.
func (r *OrderRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.ApprovedOrder, error) {
	return r.get(ctx, tenantID, id, true)
}

// AddItems agrega líneas a pedidos del tenant.
func (r *OrderRepo) AddItems(ctx context.Context, tenantID string, items []entity.ApprovedOrderItem) error {
	query := `
		INSERT INTO approved_order_items (id, order_id, product_id, quantity, kit_id)
		SELECT $1, o.id, $3, $4, $5 FROM approved_orders o WHERE o.tenant_id = $6 AND o.id = $2`
	for i := range items {
		it := &items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		tag, err := r.q.Exec(ctx, query, it.ID, it.OrderID, it.ProductID, it.Quantity, nullIfEmpty(it.KitID), tenantID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("insert order item: pedido %s no encontrado", it.OrderID)
		}
	}
	return nil
}

// KitRepo implementación de KitRepository (usable con pool o tx).
type KitRepo struct {
	q Querier
}

// NewKitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewKitRepository(q Querier) *KitRepo {
	return &KitRepo{q: q}
}

// Create persiste la plantilla y sus ítems.
func (r *KitRepo) Create(ctx context.Context, k *entity.KitTemplate) error {
	if k.ID == "" {
		k.ID = uuid.New().String()
	}
	query := `
		INSERT INTO kit_templates (id, tenant_id, name, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, k.ID, k.TenantID, k.Name, k.Description, k.CreatedAt); err != nil {
		return fmt.Errorf("insert kit: %w", err)
	}
	return r.AddItems(ctx, k.TenantID, k.Items)
}

// GetByID devuelve el kit con sus ítems.
func (r *KitRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.KitTemplate, error) {
	query := `
		SELECT id, tenant_id, name, description, created_at
		FROM kit_templates WHERE tenant_id = $1 AND id = $2`
	var k entity.KitTemplate
	err := r.q.QueryRow(ctx, query, tenantID, id).Scan(&k.ID, &k.TenantID, &k.Name, &k.Description, &k.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get kit: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, kit_id, product_id, quantity FROM kit_template_items WHERE kit_id = $1 ORDER BY position`, k.ID)
	if err != nil {
		return nil, fmt.Errorf("list kit items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.KitTemplateItem
		if err := rows.Scan(&it.ID, &it.KitID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan kit item: %w", err)
		}
		k.Items = append(k.Items, it)
	}
	return &k, rows.Err()
}

// AddItems agrega líneas a kits del tenant.
func (r *KitRepo) AddItems(ctx context.Context, tenantID string, items []entity.KitTemplateItem) error {
	query := `
		INSERT INTO kit_template_items (id, kit_id, product_id, quantity)
		SELECT $1, k.id, $3, $4 FROM kit_templates k WHERE k.tenant_id = $5 AND k.id = $2`
	for i := range items {
		it := &items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		tag, err := r.q.Exec(ctx, query, it.ID, it.KitID, it.ProductID, it.Quantity, tenantID)
		if err != nil {
			return fmt.Errorf("insert kit item: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("insert kit item: kit %s no encontrado", it.KitID)
		}
	}
	return nil
}
