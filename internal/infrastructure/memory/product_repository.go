package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/jhoicas/stockmanager-api/internal/domain"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria.
type ProductRepo struct {
	a access
}

// Create inserta el producto; SKU o código de barras repetido -> ErrDuplicate.
func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.a.do(func(st *state) error {
		for _, existing := range st.products {
			if existing.SKU == p.SKU || (p.Barcode != nil && existing.Barcode != nil && *existing.Barcode == *p.Barcode) {
				return domain.ErrDuplicate
			}
		}
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		st.products[p.ID] = *p
		return nil
	})
}

// GetByID devuelve una copia del producto o nil.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.do(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: la transacción ya tiene el almacén bloqueado.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// GetBySKU busca por SKU exacto.
func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	return r.find(func(p entity.Product) bool { return p.SKU == sku })
}

// GetByBarcode busca por código de barras exacto.
func (r *ProductRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	return r.find(func(p entity.Product) bool { return p.Barcode != nil && *p.Barcode == barcode })
}

func (r *ProductRepo) find(match func(entity.Product) bool) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.do(func(st *state) error {
		for _, p := range st.products {
			if match(p) {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

// Search coincidencia parcial sin distinguir mayúsculas en nombre o SKU (solo activos).
func (r *ProductRepo) Search(ctx context.Context, term string, limit int) ([]*entity.Product, error) {
	return r.List(ctx, repository.ProductFilter{Search: term}, limit, 0)
}

// List filtra y ordena por fecha de creación descendente.
func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter, limit, offset int) ([]*entity.Product, error) {
	folder := cases.Fold()
	term := folder.String(strings.TrimSpace(f.Search))
	var list []*entity.Product
	err := r.a.do(func(st *state) error {
		for _, p := range st.products {
			if !f.IncludeInactive && !p.IsActive {
				continue
			}
			if f.CategoryID != "" && p.CategoryID != f.CategoryID {
				continue
			}
			if f.SupplierID != "" && (p.SupplierID == nil || *p.SupplierID != f.SupplierID) {
				continue
			}
			if f.LowStock && !p.IsLowStock() {
				continue
			}
			if term != "" &&
				!strings.Contains(folder.String(p.Name), term) &&
				!strings.Contains(folder.String(p.SKU), term) {
				continue
			}
			p := p
			list = append(list, &p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].SKU < list[j].SKU
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return paginate(list, limit, offset), nil
}

// UpdateQuantity escribe la cantidad.
func (r *ProductRepo) UpdateQuantity(_ context.Context, id string, quantity int) error {
	return r.update(id, func(p *entity.Product) { p.Quantity = quantity })
}

// UpdateCategory asigna la categoría.
func (r *ProductRepo) UpdateCategory(_ context.Context, id, categoryID string) error {
	return r.update(id, func(p *entity.Product) { p.CategoryID = categoryID })
}

// UpdateSupplier asigna o quita el proveedor.
func (r *ProductRepo) UpdateSupplier(_ context.Context, id string, supplierID *string) error {
	return r.update(id, func(p *entity.Product) { p.SupplierID = supplierID })
}

// UpdatePrices escribe precio y costo.
func (r *ProductRepo) UpdatePrices(_ context.Context, id string, price, costPrice decimal.Decimal) error {
	return r.update(id, func(p *entity.Product) {
		p.Price = price
		p.CostPrice = costPrice
	})
}

// UpdateStatus activa o desactiva.
func (r *ProductRepo) UpdateStatus(_ context.Context, id string, isActive bool) error {
	return r.update(id, func(p *entity.Product) { p.IsActive = isActive })
}

func (r *ProductRepo) update(id string, mutate func(p *entity.Product)) error {
	return r.a.do(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		mutate(&p)
		st.products[id] = p
		return nil
	})
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}
