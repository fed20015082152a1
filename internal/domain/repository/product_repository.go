package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
)

// ProductFilter criterios de listado de productos.
type ProductFilter struct {
	Search          string // coincidencia parcial en nombre o SKU
	CategoryID      string
	SupplierID      string
	LowStock        bool // solo quantity <= min_stock
	IncludeInactive bool
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los métodos Get* devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	Search(ctx context.Context, term string, limit int) ([]*entity.Product, error)
	List(ctx context.Context, filter ProductFilter, limit, offset int) ([]*entity.Product, error)
	// UpdateQuantity solo debe llamarse junto con la inserción del movimiento correspondiente.
	UpdateQuantity(ctx context.Context, id string, quantity int) error

	// Operaciones masivas por producto; devuelven ErrProductNotFound si no existe.
	UpdateCategory(ctx context.Context, id, categoryID string) error
	UpdateSupplier(ctx context.Context, id string, supplierID *string) error
	UpdatePrices(ctx context.Context, id string, price, costPrice decimal.Decimal) error
	UpdateStatus(ctx context.Context, id string, isActive bool) error
}
