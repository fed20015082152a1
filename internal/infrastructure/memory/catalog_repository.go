package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stockmanager-api/internal/domain"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// CategoryRepo categorías en memoria.
type CategoryRepo struct {
	a access
}

// Create inserta la categoría; nombre repetido -> ErrDuplicate.
func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.a.do(func(st *state) error {
		for _, existing := range st.categories {
			if strings.EqualFold(existing.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		st.categories[c.ID] = *c
		return nil
	})
}

// GetByID devuelve la categoría o nil.
func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.a.do(func(st *state) error {
		if c, ok := st.categories[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

// List categorías por nombre.
func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.a.do(func(st *state) error {
		for _, c := range st.categories {
			c := c
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct {
	a access
}

// Create inserta el proveedor.
func (r *SupplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	return r.a.do(func(st *state) error {
		if _, ok := st.suppliers[s.ID]; ok {
			return domain.ErrDuplicate
		}
		st.suppliers[s.ID] = *s
		return nil
	})
}

// GetByID devuelve el proveedor o nil.
func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.a.do(func(st *state) error {
		if s, ok := st.suppliers[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

// List proveedores por nombre.
func (r *SupplierRepo) List(_ context.Context) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	err := r.a.do(func(st *state) error {
		for _, s := range st.suppliers {
			s := s
			out = append(out, &s)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

// UserRepo usuarios en memoria; el email es único.
type UserRepo struct {
	a access
}

// Create inserta el usuario; email repetido -> ErrDuplicate.
func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.a.do(func(st *state) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return domain.ErrDuplicate
			}
		}
		st.users[u.ID] = *u
		return nil
	})
}

// GetByID devuelve el usuario o nil.
func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.a.do(func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

// GetByEmail busca por email sin distinguir mayúsculas.
func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.a.do(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}
