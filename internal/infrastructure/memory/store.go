// Package memory implementa los puertos de persistencia en memoria de proceso.
// Las transacciones se serializan con un único mutex y trabajan sobre una copia del estado
// que solo se publica al confirmar, así que un error deja el estado intacto.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stockmanager-api/internal/application/inventory"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	products   map[string]entity.Product
	movements  []entity.StockMovement
	orders     map[string]entity.Order
	categories map[string]entity.Category
	suppliers  map[string]entity.Supplier
	users      map[string]entity.User
}

func newState() *state {
	return &state{
		products:   map[string]entity.Product{},
		orders:     map[string]entity.Order{},
		categories: map[string]entity.Category{},
		suppliers:  map[string]entity.Supplier{},
		users:      map[string]entity.User{},
	}
}

func (s *state) clone() *state {
	c := &state{
		products:   make(map[string]entity.Product, len(s.products)),
		movements:  make([]entity.StockMovement, len(s.movements)),
		orders:     make(map[string]entity.Order, len(s.orders)),
		categories: make(map[string]entity.Category, len(s.categories)),
		suppliers:  make(map[string]entity.Supplier, len(s.suppliers)),
		users:      make(map[string]entity.User, len(s.users)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	copy(c.movements, s.movements)
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

// Store almacén en memoria; implementa inventory.TxRunner.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn con repos atados a una copia del estado. Commit = publicar la copia.
func (s *Store) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	a := access{store: s, tx: work}
	if err := fn(repository.TxRepos{
		Products:  &ProductRepo{a: a},
		Movements: &MovementRepo{a: a},
		Orders:    &OrderRepo{a: a},
	}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{a: access{store: s}} }

// Movements repositorio del ledger fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{a: access{store: s}} }

// Orders repositorio de órdenes fuera de transacción.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{a: access{store: s}} }

// Categories repositorio de categorías.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{a: access{store: s}} }

// Suppliers repositorio de proveedores.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{a: access{store: s}} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{a: access{store: s}} }

// access resuelve sobre qué estado opera un repo: la copia de la tx (ya bajo el mutex)
// o el estado publicado, tomando el mutex durante la llamada.
type access struct {
	store *Store
	tx    *state
}

func (a access) do(fn func(st *state) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	return fn(a.store.st)
}
