package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
)

// OrderFilter criterios de listado de órdenes.
type OrderFilter struct {
	Type      entity.OrderType
	Status    entity.OrderStatus
	Search    string // coincidencia parcial en número de orden
	ProductID string // órdenes que contienen el producto
}

// OrderRepository define el puerto de persistencia para Order y sus líneas.
// Los métodos Get* devuelven (nil, nil) cuando la orden no existe.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate bloquea la fila de la orden hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus, updatedAt time.Time) error
	// Delete elimina la orden y sus líneas; los movimientos del ledger no se tocan.
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, filter OrderFilter, limit int) ([]*entity.Order, error)
}
