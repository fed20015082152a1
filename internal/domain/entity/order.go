package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType tipo de orden: compra (entra stock) o venta (sale stock).
type OrderType string

const (
	OrderTypePurchase OrderType = "PURCHASE"
	OrderTypeSale     OrderType = "SALE"
)

// Valid indica si el tipo es conocido.
func (t OrderType) Valid() bool {
	return t == OrderTypePurchase || t == OrderTypeSale
}

// MovementType devuelve el tipo de movimiento que genera la orden al completarse.
func (t OrderType) MovementType() MovementType {
	if t == OrderTypePurchase {
		return MovementTypeIN
	}
	return MovementTypeOUT
}

// OrderStatus estado del ciclo de vida de una orden.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusApproved   OrderStatus = "APPROVED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// orderTransitions tabla explícita de transiciones permitidas. COMPLETED y CANCELLED son terminales.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusApproved, OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusApproved:   {OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
}

// Valid indica si el estado es conocido.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo indica si el paso s -> next está en la tabla.
// COMPLETED -> COMPLETED no es una transición; se trata aparte como no-op idempotente.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order orden de compra o venta con sus líneas.
type Order struct {
	ID          string
	OrderNumber string // único, usado como referencia en el ledger
	Type        OrderType
	Status      OrderStatus
	SupplierID  *string
	UserID      string
	TotalAmount decimal.Decimal
	Notes       string
	Items       []OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderItem línea de una orden.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal cantidad por precio unitario.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
