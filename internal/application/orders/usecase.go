package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmanager-api/internal/application/dto"
	"github.com/jhoicas/stockmanager-api/internal/application/inventory"
	"github.com/jhoicas/stockmanager-api/internal/domain"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/internal/domain/repository"
	"github.com/jhoicas/stockmanager-api/pkg/logger"
	"github.com/jhoicas/stockmanager-api/pkg/metrics"
)

const (
	defaultListLimit  = 100
	maxNumberAttempts = 3
)

// UseCase ciclo de vida de órdenes de compra y venta.
// Completar una orden registra un movimiento por línea (IN para compra, OUT para venta)
// dentro de una única transacción: o se aplican todas las líneas o ninguna.
type UseCase struct {
	txRunner  inventory.TxRunner
	orders    repository.OrderRepository
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	gateway   *inventory.MovementGateway
	actors    *inventory.ActorResolver
	log       *logger.Logger
	metrics   *metrics.LedgerMetrics
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner inventory.TxRunner,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	suppliers repository.SupplierRepository,
	gateway *inventory.MovementGateway,
	actors *inventory.ActorResolver,
	log *logger.Logger,
	m *metrics.LedgerMetrics,
) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		orders:    orders,
		products:  products,
		suppliers: suppliers,
		gateway:   gateway,
		actors:    actors,
		log:       log.WithComponent("orders"),
		metrics:   m,
		now:       time.Now,
	}
}

// Create valida las líneas, calcula el total y crea la orden en estado PENDING.
// El número tiene la forma ORD-<unix-millis>-<n>.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateOrderRequest, callerID string) (*entity.Order, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if in.SupplierID != nil && *in.SupplierID != "" {
		s, err := uc.suppliers.GetByID(ctx, *in.SupplierID)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, domain.ErrSupplierNotFound
		}
	} else {
		in.SupplierID = nil
	}

	actorID, err := uc.actors.Resolve(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("resolver actor: %w", err)
	}

	now := uc.now()
	order := &entity.Order{
		ID:          uuid.New().String(),
		Type:        entity.OrderType(in.Type),
		Status:      entity.OrderStatusPending,
		SupplierID:  in.SupplierID,
		UserID:      actorID,
		TotalAmount: decimal.Zero,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, it := range in.Items {
		if !it.UnitPrice.IsPositive() {
			return nil, fmt.Errorf("%w: unit_price debe ser mayor que 0", domain.ErrInvalidInput)
		}
		p, err := uc.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, it.ProductID)
		}
		item := entity.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
		order.Items = append(order.Items, item)
		order.TotalAmount = order.TotalAmount.Add(item.Subtotal())
	}

	// El número se deriva del conteo; si otra orden tomó el mismo número se reintenta
	// Cabecera y líneas se insertan en la misma transacción.
	for attempt := 1; ; attempt++ {
		err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
			count, err := repos.Orders.Count(ctx)
			if err != nil {
				return err
			}
			order.OrderNumber = fmt.Sprintf("ORD-%d-%d", uc.now().UnixMilli(), count+1)
			return repos.Orders.Create(ctx, order)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrDuplicate) || attempt >= maxNumberAttempts {
			return nil, err
		}
	}
	uc.log.Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("type", string(order.Type)).
		Int("items", len(order.Items)).
		Msg("orden creada")
	return order, nil
}

// Get obtiene una orden con sus líneas.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Order, error) {
	o, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// List lista órdenes filtradas (más recientes primero).
func (uc *UseCase) List(ctx context.Context, in dto.OrderListRequest) ([]*entity.Order, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	return uc.orders.List(ctx, repository.OrderFilter{
		Type:      entity.OrderType(in.Type),
		Status:    entity.OrderStatus(in.Status),
		Search:    in.Search,
		ProductID: in.ProductID,
	}, limit)
}

// TransitionStatus mueve la orden al nuevo estado según la tabla de transiciones.
// COMPLETED -> COMPLETED es un no-op idempotente (no registra movimientos).
// Al entrar en COMPLETED aplica cada línea vía el gateway en la misma transacción; si alguna
// falla (producto inexistente, stock insuficiente) se revierte todo y la orden no cambia.
func (uc *UseCase) TransitionStatus(ctx context.Context, orderID string, next entity.OrderStatus, callerID string) (*entity.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, next)
	}
	var actorID string
	if next == entity.OrderStatusCompleted {
		id, err := uc.actors.Resolve(ctx, callerID)
		if err != nil {
			return nil, fmt.Errorf("resolver actor: %w", err)
		}
		actorID = id
	}

	var result *entity.Order
	noop := false
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		// Bloquea la orden: dos finalizaciones concurrentes se serializan aquí
		order, err := repos.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if order.Status == entity.OrderStatusCompleted && next == entity.OrderStatusCompleted {
			result, noop = order, true
			return nil
		}
		if !order.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, next)
		}

		if next == entity.OrderStatusCompleted {
			if err := uc.postLines(ctx, repos, order, actorID); err != nil {
				return err
			}
		}

		now := uc.now()
		if err := repos.Orders.UpdateStatus(ctx, order.ID, next, now); err != nil {
			return err
		}
		order.Status = next
		order.UpdatedAt = now
		result = order
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("order_id", orderID).Str("status", string(next)).Msg("transición rechazada")
		return nil, err
	}
	if noop {
		uc.log.Debug().Str("order_id", orderID).Msg("orden ya completada, sin cambios")
		return result, nil
	}
	uc.metrics.IncOrderTransition(string(next))
	uc.log.Info().
		Str("order_id", result.ID).
		Str("order_number", result.OrderNumber).
		Str("status", string(next)).
		Msg("estado de orden actualizado")
	return result, nil
}

// postLines aplica las líneas en orden de ProductID: dos órdenes que comparten productos
// toman los bloqueos de fila en el mismo orden y no pueden entrar en deadlock.
func (uc *UseCase) postLines(ctx context.Context, repos repository.TxRepos, order *entity.Order, actorID string) error {
	movementType := order.Type.MovementType()
	reason := "Order " + order.OrderNumber
	reference := order.OrderNumber
	for _, item := range linesInLockOrder(order.Items) {
		_, _, err := uc.gateway.ApplyInTx(ctx, repos, inventory.MovementInput{
			ProductID: item.ProductID,
			Type:      movementType,
			Quantity:  item.Quantity,
			Reason:    &reason,
			Reference: &reference,
		}, actorID)
		if err != nil {
			return fmt.Errorf("línea %s: %w", item.ProductID, err)
		}
	}
	return nil
}

func linesInLockOrder(items []entity.OrderItem) []entity.OrderItem {
	sorted := make([]entity.OrderItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })
	return sorted
}

// Delete elimina una orden que no esté COMPLETED. Las líneas se eliminan en cascada;
// los movimientos del ledger quedan intactos.
func (uc *UseCase) Delete(ctx context.Context, orderID string) error {
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		order, err := repos.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if order.Status == entity.OrderStatusCompleted {
			return domain.ErrOrderCompleted
		}
		return repos.Orders.Delete(ctx, orderID)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("order_id", orderID).Msg("orden eliminada")
	return nil
}
