package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/jhoicas/stockmanager-api/internal/application/dto"
	"github.com/jhoicas/stockmanager-api/internal/domain"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/internal/domain/inventory"
	"github.com/jhoicas/stockmanager-api/internal/domain/repository"
	"github.com/jhoicas/stockmanager-api/pkg/logger"
	"github.com/jhoicas/stockmanager-api/pkg/metrics"
)

// Nombres de operación masiva (etiquetas de métricas y logs).
const (
	BulkOpStock    = "stock"
	BulkOpCategory = "category"
	BulkOpSupplier = "supplier"
	BulkOpPrices   = "prices"
	BulkOpStatus   = "status"
	BulkOpDelete   = "delete"
)

var hundred = decimal.NewFromInt(100)

// BulkItemResult resultado por producto.
type BulkItemResult struct {
	ProductID string
	Err       error
	Changed   bool // solo stock: hubo delta distinto de cero
	Previous  int
	New       int
}

// BulkResult resultado agregado. Err combina los errores por producto (multierr).
type BulkResult struct {
	Operation string
	Items     []BulkItemResult
	Succeeded int
	Err       error
}

// Failed número de productos que fallaron.
func (r *BulkResult) Failed() int {
	return len(r.Items) - r.Succeeded
}

// BulkCoordinator aplica operaciones sobre varios productos. Cada producto se procesa en su
// propia transacción: un fallo no revierte a los demás. Los errores de validación se
// detectan antes de escribir nada.
type BulkCoordinator struct {
	txRunner   TxRunner
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	actors     *ActorResolver
	log        *logger.Logger
	metrics    *metrics.LedgerMetrics
	now        func() time.Time
}

// NewBulkCoordinator construye el coordinador.
func NewBulkCoordinator(
	txRunner TxRunner,
	categories repository.CategoryRepository,
	suppliers repository.SupplierRepository,
	actors *ActorResolver,
	log *logger.Logger,
	m *metrics.LedgerMetrics,
) *BulkCoordinator {
	return &BulkCoordinator{
		txRunner:   txRunner,
		categories: categories,
		suppliers:  suppliers,
		actors:     actors,
		log:        log.WithComponent("bulk_coordinator"),
		metrics:    m,
		now:        time.Now,
	}
}

// AdjustStock suma, resta (recortando en cero) o fija la cantidad de cada producto.
// Por producto: una transacción, a lo sumo un movimiento IN u OUT por |delta| cuando delta != 0.
func (c *BulkCoordinator) AdjustStock(ctx context.Context, in dto.BulkStockRequest) (*BulkResult, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	adj := inventory.BulkAdjustment(in.AdjustmentType)
	if err := adj.Validate(in.Value); err != nil {
		return nil, fmt.Errorf("%w: value debe ser > 0 para add/subtract y >= 0 para set", err)
	}
	actorID, err := c.actors.Resolve(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolver actor: %w", err)
	}
	reason := fmt.Sprintf("Bulk adjustment: %s %d", adj, in.Value)

	return c.forEach(ctx, BulkOpStock, in.ProductIDs, func(repos repository.TxRepos, id string, item *BulkItemResult) error {
		p, err := repos.Products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProductNotFound
		}
		target := inventory.BulkTarget(p.Quantity, adj, in.Value)
		item.Previous, item.New = p.Quantity, target

		typ, magnitude, ok := inventory.DeltaMovement(target - p.Quantity)
		if !ok {
			return nil
		}
		item.Changed = true
		if err := repos.Products.UpdateQuantity(ctx, id, target); err != nil {
			return err
		}
		r := reason
		return repos.Movements.Create(ctx, &entity.StockMovement{
			ID:                uuid.New().String(),
			ProductID:         id,
			UserID:            actorID,
			Type:              typ,
			Quantity:          magnitude,
			PreviousQuantity:  p.Quantity,
			ResultingQuantity: target,
			Reason:            &r,
			CreatedAt:         c.now(),
		})
	})
}

// UpdateCategory asigna la categoría a cada producto. La categoría debe existir.
func (c *BulkCoordinator) UpdateCategory(ctx context.Context, in dto.BulkCategoryRequest) (*BulkResult, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	cat, err := c.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, domain.ErrCategoryNotFound
	}
	return c.forEach(ctx, BulkOpCategory, in.ProductIDs, func(repos repository.TxRepos, id string, _ *BulkItemResult) error {
		return repos.Products.UpdateCategory(ctx, id, in.CategoryID)
	})
}

// UpdateSupplier asigna el proveedor a cada producto; SupplierID nil lo quita.
func (c *BulkCoordinator) UpdateSupplier(ctx context.Context, in dto.BulkSupplierRequest) (*BulkResult, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	supplierID := in.SupplierID
	if supplierID != nil && *supplierID == "" {
		supplierID = nil
	}
	if supplierID != nil {
		s, err := c.suppliers.GetByID(ctx, *supplierID)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, domain.ErrSupplierNotFound
		}
	}
	return c.forEach(ctx, BulkOpSupplier, in.ProductIDs, func(repos repository.TxRepos, id string, _ *BulkItemResult) error {
		return repos.Products.UpdateSupplier(ctx, id, supplierID)
	})
}

// AdjustPrices aumenta o disminuye por porcentaje el precio, el costo o ambos, redondeando a 2 decimales.
func (c *BulkCoordinator) AdjustPrices(ctx context.Context, in dto.BulkPriceRequest) (*BulkResult, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if !in.Value.IsPositive() {
		return nil, fmt.Errorf("%w: value debe ser mayor que 0", domain.ErrInvalidInput)
	}
	pct := in.Value.Div(hundred)
	factor := decimal.NewFromInt(1).Add(pct)
	if in.AdjustmentType == "decrease" {
		if in.Value.GreaterThan(hundred) {
			return nil, fmt.Errorf("%w: una disminución no puede superar el 100%%", domain.ErrInvalidInput)
		}
		factor = decimal.NewFromInt(1).Sub(pct)
	}
	applyPrice := in.ApplyTo == "price" || in.ApplyTo == "both"
	applyCost := in.ApplyTo == "cost_price" || in.ApplyTo == "both"

	return c.forEach(ctx, BulkOpPrices, in.ProductIDs, func(repos repository.TxRepos, id string, _ *BulkItemResult) error {
		p, err := repos.Products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProductNotFound
		}
		price, cost := p.Price, p.CostPrice
		if applyPrice {
			price = ScalePrice(price, factor)
		}
		if applyCost {
			cost = ScalePrice(cost, factor)
		}
		return repos.Products.UpdatePrices(ctx, id, price, cost)
	})
}

// UpdateStatus activa o desactiva cada producto.
func (c *BulkCoordinator) UpdateStatus(ctx context.Context, in dto.BulkStatusRequest) (*BulkResult, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	active := *in.IsActive
	return c.forEach(ctx, BulkOpStatus, in.ProductIDs, func(repos repository.TxRepos, id string, _ *BulkItemResult) error {
		return repos.Products.UpdateStatus(ctx, id, active)
	})
}

// SoftDelete marca cada producto como inactivo. No borra filas ni toca el ledger.
func (c *BulkCoordinator) SoftDelete(ctx context.Context, in dto.BulkDeleteRequest) (*BulkResult, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	return c.forEach(ctx, BulkOpDelete, in.ProductIDs, func(repos repository.TxRepos, id string, _ *BulkItemResult) error {
		return repos.Products.UpdateStatus(ctx, id, false)
	})
}

// ScalePrice multiplica y redondea a 2 decimales.
func ScalePrice(v, factor decimal.Decimal) decimal.Decimal {
	return v.Mul(factor).Round(2)
}

// forEach ejecuta fn por producto en transacciones independientes y acumula los resultados.
// IDs repetidos se procesan una sola vez. Si el contexto se cancela a mitad del lote, los
// productos restantes quedan como fallidos con ctx.Err() y se devuelve el resultado parcial.
func (c *BulkCoordinator) forEach(
	ctx context.Context,
	op string,
	ids []string,
	fn func(repos repository.TxRepos, id string, item *BulkItemResult) error,
) (*BulkResult, error) {
	result := &BulkResult{Operation: op, Items: make([]BulkItemResult, 0, len(ids))}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		item := BulkItemResult{ProductID: id}
		err := ctx.Err()
		if err == nil {
			err = c.txRunner.Run(ctx, func(repos repository.TxRepos) error {
				return fn(repos, id, &item)
			})
		}
		if err != nil {
			item.Err = err
			item.Changed = false
			result.Err = multierr.Append(result.Err, fmt.Errorf("producto %s: %w", id, err))
			c.metrics.IncBulkItem(op, false)
			ev := c.log.Warn()
			if !errors.Is(err, domain.ErrNotFound) && ctx.Err() == nil {
				ev = c.log.Error()
			}
			ev.Err(err).Str("operation", op).Str("product_id", id).Msg("fallo en operación masiva")
		} else {
			result.Succeeded++
			c.metrics.IncBulkItem(op, true)
		}
		result.Items = append(result.Items, item)
	}
	c.log.Info().
		Str("operation", op).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed()).
		Msg("operación masiva finalizada")
	return result, nil
}

// Message resumen legible de la operación.
func (r *BulkResult) Message() string {
	switch r.Operation {
	case BulkOpStock:
		return fmt.Sprintf("Adjusted stock for %d products", r.Succeeded)
	case BulkOpPrices:
		return fmt.Sprintf("Adjusted prices for %d products", r.Succeeded)
	case BulkOpDelete:
		return fmt.Sprintf("Deleted %d products", r.Succeeded)
	default:
		return fmt.Sprintf("Updated %d products", r.Succeeded)
	}
}

// Errors lista los errores individuales acumulados.
func (r *BulkResult) Errors() []error {
	return multierr.Errors(r.Err)
}
