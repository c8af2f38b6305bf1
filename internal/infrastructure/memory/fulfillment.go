package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/inventory"
)

func errNotStored(kind, id string) error {
	return fmt.Errorf("memory: %s %s no existe", kind, id)
}

type orderRepo struct{ t *txState }

func (r orderRepo) Create(_ context.Context, o *entity.ApprovedOrder) error {
	r.t.state.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r orderRepo) GetByID(_ context.Context, tenantID, id string) (*entity.ApprovedOrder, error) {
	o, ok := r.t.state.orders[id]
	if !ok || o.TenantID != tenantID {
		return nil, nil
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r orderRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.ApprovedOrder, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r orderRepo) AddItems(_ context.Context, tenantID string, items []entity.ApprovedOrderItem) error {
	for _, it := range items {
		o, ok := r.t.state.orders[it.OrderID]
		if !ok || o.TenantID != tenantID {
			return errNotStored("pedido", it.OrderID)
		}
		o = cloneOrder(o)
		o.Items = append(o.Items, it)
		r.t.state.orders[o.ID] = o
	}
	return nil
}

type kitRepo struct{ t *txState }

func (r kitRepo) Create(_ context.Context, k *entity.KitTemplate) error {
	r.t.state.kits[k.ID] = cloneKit(*k)
	return nil
}

func (r kitRepo) GetByID(_ context.Context, tenantID, id string) (*entity.KitTemplate, error) {
	k, ok := r.t.state.kits[id]
	if !ok || k.TenantID != tenantID {
		return nil, nil
	}
	k = cloneKit(k)
	return &k, nil
}

func (r kitRepo) AddItems(_ context.Context, tenantID string, items []entity.KitTemplateItem) error {
	for _, it := range items {
		k, ok := r.t.state.kits[it.KitID]
		if !ok || k.TenantID != tenantID {
			return errNotStored("kit", it.KitID)
		}
		k = cloneKit(k)
		k.Items = append(k.Items, it)
		r.t.state.kits[k.ID] = k
	}
	return nil
}

type pickListRepo struct{ t *txState }

func (r pickListRepo) Create(_ context.Context, pl *entity.PickList) error {
	for _, other := range r.t.state.pickLists {
		if other.TenantID == pl.TenantID && other.OrderID == pl.OrderID {
			return fmt.Errorf("memory: el pedido %s ya tiene lista de picking", pl.OrderID)
		}
	}
	r.t.state.pickLists[pl.ID] = clonePickList(*pl)
	return nil
}

func (r pickListRepo) GetByID(_ context.Context, tenantID, id string) (*entity.PickList, error) {
	pl, ok := r.t.state.pickLists[id]
	if !ok || pl.TenantID != tenantID {
		return nil, nil
	}
	pl = clonePickList(pl)
	return &pl, nil
}

func (r pickListRepo) GetByOrderID(_ context.Context, tenantID, orderID string) (*entity.PickList, error) {
	for _, pl := range r.t.state.pickLists {
		if pl.TenantID == tenantID && pl.OrderID == orderID {
			pl = clonePickList(pl)
			return &pl, nil
		}
	}
	return nil, nil
}

func (r pickListRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.PickList, error) {
	return r.GetByID(ctx, tenantID, id)
}

// Update persiste solo la cabecera; los ítems se guardan con UpdateItem.
func (r pickListRepo) Update(_ context.Context, pl *entity.PickList) error {
	cur, ok := r.t.state.pickLists[pl.ID]
	if !ok || cur.TenantID != pl.TenantID {
		return errNotStored("lista de picking", pl.ID)
	}
	cur = clonePickList(cur)
	cur.Status = pl.Status
	cur.FrozenAt = pl.FrozenAt
	cur.PackedAt = pl.PackedAt
	cur.StockCommittedAt = pl.StockCommittedAt
	r.t.state.pickLists[pl.ID] = cur
	return nil
}

func (r pickListRepo) UpdateItem(_ context.Context, tenantID string, it *entity.PickListItem) error {
	cur, ok := r.t.state.pickLists[it.PickListID]
	if !ok || cur.TenantID != tenantID {
		return errNotStored("lista de picking", it.PickListID)
	}
	cur = clonePickList(cur)
	for i := range cur.Items {
		if cur.Items[i].ID == it.ID {
			cur.Items[i] = *it
			r.t.state.pickLists[cur.ID] = cur
			return nil
		}
	}
	return errNotStored("ítem de picking", it.ID)
}

func (r pickListRepo) ReservedQty(_ context.Context, tenantID string, key entity.StockKey, excludePickListID string) (decimal.Decimal, error) {
	var lists []entity.PickList
	for _, pl := range r.t.state.pickLists {
		if pl.TenantID == tenantID {
			lists = append(lists, pl)
		}
	}
	return inventory.Reserved(lists, key, excludePickListID), nil
}

type incidentRepo struct{ t *txState }

func (r incidentRepo) Create(_ context.Context, inc *entity.Incident) error {
	r.t.state.incidents[inc.ID] = *inc
	return nil
}

type deliveryRepo struct{ t *txState }

func (r deliveryRepo) Create(_ context.Context, d *entity.Delivery) error {
	for _, other := range r.t.state.deliveries {
		if other.TenantID == d.TenantID && (other.PickListID == d.PickListID || other.Number == d.Number) {
			return fmt.Errorf("memory: entrega duplicada para la lista %s", d.PickListID)
		}
	}
	r.t.state.deliveries[d.ID] = *d
	return nil
}

func (r deliveryRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Delivery, error) {
	d, ok := r.t.state.deliveries[id]
	if !ok || d.TenantID != tenantID {
		return nil, nil
	}
	return &d, nil
}

func (r deliveryRepo) GetByPickListID(_ context.Context, tenantID, pickListID string) (*entity.Delivery, error) {
	for _, d := range r.t.state.deliveries {
		if d.TenantID == tenantID && d.PickListID == pickListID {
			return &d, nil
		}
	}
	return nil, nil
}

func (r deliveryRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Delivery, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r deliveryRepo) Update(_ context.Context, d *entity.Delivery) error {
	cur, ok := r.t.state.deliveries[d.ID]
	if !ok || cur.TenantID != d.TenantID {
		return errNotStored("entrega", d.ID)
	}
	r.t.state.deliveries[d.ID] = *d
	return nil
}

func (r deliveryRepo) AddEvidence(_ context.Context, e *entity.DeliveryEvidence) error {
	r.t.state.evidence = append(r.t.state.evidence, *e)
	return nil
}

func (r deliveryRepo) CountEvidence(ctx context.Context, tenantID, deliveryID string) (int, error) {
	list, err := r.ListEvidence(ctx, tenantID, deliveryID)
	return len(list), err
}

func (r deliveryRepo) ListEvidence(_ context.Context, tenantID, deliveryID string) ([]entity.DeliveryEvidence, error) {
	var out []entity.DeliveryEvidence
	for _, e := range r.t.state.evidence {
		if e.TenantID == tenantID && e.DeliveryID == deliveryID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r deliveryRepo) ListDelivered(_ context.Context, tenantID string, from, to time.Time) ([]entity.Delivery, error) {
	var out []entity.Delivery
	for _, d := range r.t.state.deliveries {
		if d.TenantID != tenantID || !d.Billable() || d.DeliveredAt == nil {
			continue
		}
		if d.DeliveredAt.Before(from) || !d.DeliveredAt.Before(to) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}
