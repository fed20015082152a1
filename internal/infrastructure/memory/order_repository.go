package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/stockmanager-api/internal/domain"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo órdenes en memoria; las líneas viven dentro de la orden.
type OrderRepo struct {
	a access
}

// Create inserta la orden; número repetido -> ErrDuplicate.
func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.a.do(func(st *state) error {
		for _, existing := range st.orders {
			if existing.OrderNumber == o.OrderNumber || existing.ID == o.ID {
				return domain.ErrDuplicate
			}
		}
		st.orders[o.ID] = copyOrder(*o)
		return nil
	})
}

// GetByID devuelve una copia de la orden o nil.
func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.a.do(func(st *state) error {
		if o, ok := st.orders[id]; ok {
			c := copyOrder(o)
			out = &c
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID dentro de la transacción.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

// UpdateStatus cambia el estado.
func (r *OrderRepo) UpdateStatus(_ context.Context, id string, status entity.OrderStatus, updatedAt time.Time) error {
	return r.a.do(func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		o.Status = status
		o.UpdatedAt = updatedAt
		st.orders[id] = o
		return nil
	})
}

// Delete elimina la orden con sus líneas.
func (r *OrderRepo) Delete(_ context.Context, id string) error {
	return r.a.do(func(st *state) error {
		if _, ok := st.orders[id]; !ok {
			return domain.ErrOrderNotFound
		}
		delete(st.orders, id)
		return nil
	})
}

// Count número de órdenes.
func (r *OrderRepo) Count(_ context.Context) (int, error) {
	n := 0
	err := r.a.do(func(st *state) error {
		n = len(st.orders)
		return nil
	})
	return n, err
}

// List órdenes filtradas, más recientes primero.
func (r *OrderRepo) List(_ context.Context, f repository.OrderFilter, limit int) ([]*entity.Order, error) {
	var out []*entity.Order
	err := r.a.do(func(st *state) error {
		for _, o := range st.orders {
			if f.Type != "" && o.Type != f.Type {
				continue
			}
			if f.Status != "" && o.Status != f.Status {
				continue
			}
			if f.Search != "" && !strings.Contains(strings.ToLower(o.OrderNumber), strings.ToLower(f.Search)) {
				continue
			}
			if f.ProductID != "" && !hasProduct(o, f.ProductID) {
				continue
			}
			c := copyOrder(o)
			out = append(out, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, 0), nil
}

func hasProduct(o entity.Order, productID string) bool {
	for _, it := range o.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

func copyOrder(o entity.Order) entity.Order {
	o.Items = append([]entity.OrderItem(nil), o.Items...)
	return o
}
