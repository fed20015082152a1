package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmanager-api/internal/domain"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, sku, barcode, name, description, category_id, supplier_id, quantity,
	min_stock, max_stock, price, cost_price, unit, is_active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Barcode, &p.Name, &p.Description, &p.CategoryID, &p.SupplierID, &p.Quantity,
		&p.MinStock, &p.MaxStock, &p.Price, &p.CostPrice, &p.Unit, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.Barcode, p.Name, p.Description, p.CategoryID, p.SupplierID, p.Quantity,
		p.MinStock, p.MaxStock, p.Price, p.CostPrice, p.Unit, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, "get product", id)
}

// GetForUpdate obtiene el producto bloqueando su fila (SELECT ... FOR UPDATE).
// Solo tiene efecto dentro de una transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, "lock product", id)
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, "get product by sku", sku)
}

// GetByBarcode obtiene un producto por código de barras.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1`, "get product by barcode", barcode)
}

func (r *ProductRepo) getOne(ctx context.Context, query, op string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Search coincidencia parcial (ILIKE) en nombre o SKU entre productos activos.
func (r *ProductRepo) Search(ctx context.Context, term string, limit int) ([]*entity.Product, error) {
	return r.List(ctx, repository.ProductFilter{Search: term}, limit, 0)
}

// List lista productos con filtros y paginación, más recientes primero.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter, limit, offset int) ([]*entity.Product, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if !f.IncludeInactive {
		where = append(where, "is_active = TRUE")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg("%" + escapeLike(s) + "%")
		where = append(where, "(name ILIKE "+p+" OR sku ILIKE "+p+")")
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = "+arg(f.CategoryID))
	}
	if f.SupplierID != "" {
		where = append(where, "supplier_id = "+arg(f.SupplierID))
	}
	if f.LowStock {
		where = append(where, "quantity <= min_stock")
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, sku"
	if limit > 0 {
		query += " LIMIT " + arg(limit)
	}
	if offset > 0 {
		query += " OFFSET " + arg(offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// UpdateQuantity escribe la nueva cantidad. Solo se llama junto con la inserción del movimiento.
func (r *ProductRepo) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	return r.exec(ctx, "update product quantity",
		`UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1`, id, quantity)
}

// UpdateCategory asigna la categoría.
func (r *ProductRepo) UpdateCategory(ctx context.Context, id, categoryID string) error {
	return r.exec(ctx, "update product category",
		`UPDATE products SET category_id = $2, updated_at = now() WHERE id = $1`, id, categoryID)
}

// UpdateSupplier asigna o quita (NULL) el proveedor.
func (r *ProductRepo) UpdateSupplier(ctx context.Context, id string, supplierID *string) error {
	return r.exec(ctx, "update product supplier",
		`UPDATE products SET supplier_id = $2, updated_at = now() WHERE id = $1`, id, supplierID)
}

// UpdatePrices escribe precio de venta y costo.
func (r *ProductRepo) UpdatePrices(ctx context.Context, id string, price, costPrice decimal.Decimal) error {
	return r.exec(ctx, "update product prices",
		`UPDATE products SET price = $2, cost_price = $3, updated_at = now() WHERE id = $1`, id, price, costPrice)
}

// UpdateStatus activa o desactiva el producto.
func (r *ProductRepo) UpdateStatus(ctx context.Context, id string, isActive bool) error {
	return r.exec(ctx, "update product status",
		`UPDATE products SET is_active = $2, updated_at = now() WHERE id = $1`, id, isActive)
}

func (r *ProductRepo) exec(ctx context.Context, op, query string, args ...any) error {
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		if isNoRows(err) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
