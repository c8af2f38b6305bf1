package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain"
)

// Estados de la lista de picking.
const (
	PickListDraft  = "DRAFT"
	PickListFrozen = "FROZEN"
	PickListPacked = "PACKED"
)

// PickList materializa un pedido en ítems a preparar. Relación 1:1 con ApprovedOrder.
type PickList struct {
	ID               string
	TenantID         string
	OrderID          string
	Status           string
	FrozenAt         *time.Time
	PackedAt         *time.Time
	StockCommittedAt *time.Time
	CreatedAt        time.Time
	Items            []PickListItem
}

// PickListItem es una línea a preparar. RequestedQty no cambia después de creada.
type PickListItem struct {
	ID           string
	PickListID   string
	ProductID    string
	WarehouseID  string // vacío = sin asignar
	RequestedQty decimal.Decimal
	PickedQty    decimal.Decimal
	IncidentID   string
}

// Reserving indica si los ítems cuentan como reserva: congelada o empacada y sin stock comprometido.
func (p *PickList) Reserving() bool {
	return (p.Status == PickListFrozen || p.Status == PickListPacked) && p.StockCommittedAt == nil
}

// Item busca un ítem por id.
func (p *PickList) Item(itemID string) (*PickListItem, bool) {
	for i := range p.Items {
		if p.Items[i].ID == itemID {
			return &p.Items[i], true
		}
	}
	return nil, false
}

// AssignWarehouse asigna bodega a un ítem. Permitido en DRAFT, o en FROZEN si el ítem aún no tenía bodega.
func (p *PickList) AssignWarehouse(itemID, warehouseID string) (*PickListItem, error) {
	it, ok := p.Item(itemID)
	if !ok {
		return nil, domain.ErrPickListItemNotFound
	}
	switch {
	case p.Status == PickListDraft:
	case p.Status == PickListFrozen && it.WarehouseID == "":
	default:
		return nil, domain.ErrInvalidStatus
	}
	it.WarehouseID = warehouseID
	return it, nil
}

// Demand agrupa la cantidad solicitada por bodega+producto. Falla si algún ítem no tiene bodega.
func (p *PickList) Demand() (map[StockKey]decimal.Decimal, error) {
	out := make(map[StockKey]decimal.Decimal, len(p.Items))
	for _, it := range p.Items {
		if it.WarehouseID == "" {
			return nil, domain.ErrWarehouseRequired
		}
		k := StockKey{WarehouseID: it.WarehouseID, ProductID: it.ProductID}
		out[k] = out[k].Add(it.RequestedQty)
	}
	return out, nil
}

// Freeze pasa de DRAFT a FROZEN reservando la cantidad solicitada completa.
// La verificación de disponibilidad la hace el caso de uso antes de llamar.
func (p *PickList) Freeze(now time.Time) error {
	if p.Status != PickListDraft {
		return domain.ErrInvalidStatus
	}
	for _, it := range p.Items {
		if it.WarehouseID == "" {
			return domain.ErrWarehouseRequired
		}
	}
	for i := range p.Items {
		p.Items[i].PickedQty = p.Items[i].RequestedQty
	}
	p.Status = PickListFrozen
	p.FrozenAt = &now
	return nil
}

// ReduceItem baja la cantidad preparada de un ítem bajo una incidencia.
func (p *PickList) ReduceItem(itemID string, newQty decimal.Decimal, incidentID string) (*PickListItem, error) {
	if p.Status != PickListFrozen {
		return nil, domain.ErrPickListNotFrozen
	}
	it, ok := p.Item(itemID)
	if !ok {
		return nil, domain.ErrPickListItemNotFound
	}
	if newQty.IsNegative() {
		return nil, domain.ErrInvalidQuantity
	}
	// Solo baja respecto de lo ya preparado: una segunda incidencia no puede volver a subir la reserva.
	if !newQty.LessThan(it.PickedQty) {
		return nil, domain.ErrIncidentRequiredOnlyForReduction
	}
	it.PickedQty = newQty
	it.IncidentID = incidentID
	return it, nil
}

// Pack pasa de FROZEN a PACKED.
func (p *PickList) Pack(now time.Time) error {
	if p.Status != PickListFrozen {
		return domain.ErrPickListNotFrozen
	}
	p.Status = PickListPacked
	p.PackedAt = &now
	return nil
}

// CommitStock marca el stock como comprometido. Solo una vez.
func (p *PickList) CommitStock(now time.Time) bool {
	if p.StockCommittedAt != nil {
		return false
	}
	p.StockCommittedAt = &now
	return true
}
