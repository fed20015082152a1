package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
)

// MovementFilter criterios de consulta del ledger.
type MovementFilter struct {
	ProductID string
	Type      entity.MovementType
	From      *time.Time
	To        *time.Time
}

// StockMovementRepository puerto del ledger. Solo inserta y lee: no hay update ni delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct devuelve todos los movimientos del producto en orden de creación.
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error)
	// List devuelve los más recientes primero.
	List(ctx context.Context, filter MovementFilter, limit int) ([]*entity.StockMovement, error)
}
