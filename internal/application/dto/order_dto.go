package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// ItemRequest línea producto + cantidad.
type ItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	PatientID string        `json:"patient_id" validate:"required"`
	EpisodeID string        `json:"episode_id,omitempty"`
	Notes     string        `json:"notes,omitempty"`
	Items     []ItemRequest `json:"items" validate:"dive"`
}

// AddItemsRequest body para agregar ítems a un pedido o a un kit.
type AddItemsRequest struct {
	Items []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ApplyKitRequest body para POST /api/orders/:id/kits.
type ApplyKitRequest struct {
	KitID      string          `json:"kit_id" validate:"required"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// CreateKitRequest body para POST /api/kits.
type CreateKitRequest struct {
	Name        string        `json:"name" validate:"required,max=120"`
	Description string        `json:"description,omitempty"`
	Items       []ItemRequest `json:"items" validate:"dive"`
}

// OrderItemResponse ítem del pedido.
type OrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	KitID     string          `json:"kit_id,omitempty"`
}

// OrderResponse pedido aprobado.
type OrderResponse struct {
	ID        string              `json:"id"`
	PatientID string              `json:"patient_id"`
	EpisodeID string              `json:"episode_id,omitempty"`
	Notes     string              `json:"notes,omitempty"`
	CreatedBy string              `json:"created_by"`
	CreatedAt time.Time           `json:"created_at"`
	Items     []OrderItemResponse `json:"items"`
}

// KitResponse plantilla de kit.
type KitResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Items       []ItemRequest `json:"items"`
}

// NewOrderResponse mapea un pedido.
func NewOrderResponse(o *entity.ApprovedOrder) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity, KitID: it.KitID})
	}
	return OrderResponse{
		ID:        o.ID,
		PatientID: o.PatientID,
		EpisodeID: o.EpisodeID,
		Notes:     o.Notes,
		CreatedBy: o.CreatedBy,
		CreatedAt: o.CreatedAt,
		Items:     items,
	}
}

// NewKitResponse mapea un kit.
func NewKitResponse(k *entity.KitTemplate) KitResponse {
	items := make([]ItemRequest, 0, len(k.Items))
	for _, it := range k.Items {
		items = append(items, ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return KitResponse{ID: k.ID, Name: k.Name, Description: k.Description, Items: items}
}
