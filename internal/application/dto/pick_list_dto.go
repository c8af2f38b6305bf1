package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// AssignWarehouseRequest body para PUT /api/pick-lists/:id/items/:itemId/warehouse.
type AssignWarehouseRequest struct {
	WarehouseID string `json:"warehouse_id" validate:"required"`
}

// ReportIncidentRequest body para POST /api/pick-lists/:id/items/:itemId/incident.
type ReportIncidentRequest struct {
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Cause       string          `json:"cause" validate:"required,oneof=OUT_OF_STOCK INDICATION_CHANGED HOME_REFUSAL NON_COMPLIANCE DAMAGED OTHER"`
	Description string          `json:"description,omitempty" validate:"max=500"`
}

// PickListItemResponse ítem de picking.
type PickListItemResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	WarehouseID  string          `json:"warehouse_id,omitempty"`
	RequestedQty decimal.Decimal `json:"requested_qty"`
	PickedQty    decimal.Decimal `json:"picked_qty"`
	IncidentID   string          `json:"incident_id,omitempty"`
}

// PickListResponse lista de picking.
type PickListResponse struct {
	ID               string                 `json:"id"`
	OrderID          string                 `json:"order_id"`
	Status           string                 `json:"status"`
	FrozenAt         *time.Time             `json:"frozen_at,omitempty"`
	PackedAt         *time.Time             `json:"packed_at,omitempty"`
	StockCommittedAt *time.Time             `json:"stock_committed_at,omitempty"`
	Items            []PickListItemResponse `json:"items"`
}

// NewPickListResponse mapea una lista de picking.
func NewPickListResponse(pl *entity.PickList) PickListResponse {
	items := make([]PickListItemResponse, 0, len(pl.Items))
	for _, it := range pl.Items {
		items = append(items, PickListItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			WarehouseID:  it.WarehouseID,
			RequestedQty: it.RequestedQty,
			PickedQty:    it.PickedQty,
			IncidentID:   it.IncidentID,
		})
	}
	return PickListResponse{
		ID:               pl.ID,
		OrderID:          pl.OrderID,
		Status:           pl.Status,
		FrozenAt:         pl.FrozenAt,
		PackedAt:         pl.PackedAt,
		StockCommittedAt: pl.StockCommittedAt,
		Items:            items,
	}
}
