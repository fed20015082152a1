package memory

import (
	"context"

	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo ledger en memoria; solo append.
type MovementRepo struct {
	a access
}

// Create agrega el movimiento al final del ledger.
func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.a.do(func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

// ListByProduct movimientos del producto en orden de inserción.
func (r *MovementRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.a.do(func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID {
				m := m
				out = append(out, &m)
			}
		}
		return nil
	})
	return out, err
}

// List movimientos filtrados, más recientes primero.
func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter, limit int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.a.do(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.Type != "" && m.Type != f.Type {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			out = append(out, &m)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}
