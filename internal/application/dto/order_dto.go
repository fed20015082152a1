package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	Type       string             `json:"type" validate:"required,oneof=PURCHASE SALE"`
	SupplierID *string            `json:"supplier_id"`
	Notes      string             `json:"notes" validate:"max=1000"`
	Items      []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderItemRequest línea de una orden nueva.
type OrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// UpdateOrderStatusRequest body para PUT /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING APPROVED PROCESSING COMPLETED CANCELLED"`
}

// OrderListRequest filtros de GET /api/orders.
type OrderListRequest struct {
	Type      string `query:"type" validate:"omitempty,oneof=PURCHASE SALE"`
	Status    string `query:"status" validate:"omitempty,oneof=PENDING APPROVED PROCESSING COMPLETED CANCELLED"`
	Search    string `query:"search"`
	ProductID string `query:"product_id"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=500"`
}

// OrderResponse salida de una orden.
type OrderResponse struct {
	ID          string              `json:"id"`
	OrderNumber string              `json:"order_number"`
	Type        string              `json:"type"`
	Status      string              `json:"status"`
	SupplierID  *string             `json:"supplier_id,omitempty"`
	UserID      string              `json:"user_id"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Notes       string              `json:"notes"`
	Items       []OrderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// OrderItemResponse salida de una línea.
type OrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}
