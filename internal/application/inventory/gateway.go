package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stockmanager-api/internal/application/dto"
	"github.com/jhoicas/stockmanager-api/internal/domain"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/internal/domain/inventory"
	"github.com/jhoicas/stockmanager-api/internal/domain/repository"
	"github.com/jhoicas/stockmanager-api/pkg/logger"
	"github.com/jhoicas/stockmanager-api/pkg/metrics"
)

const defaultMovementListLimit = 100

// MovementGateway es el único punto de entrada para cambiar la cantidad de un producto.
// Cada movimiento actualiza el producto e inserta el registro del ledger en la misma transacción,
// con la fila del producto bloqueada (SELECT FOR UPDATE).
type MovementGateway struct {
	txRunner  TxRunner
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	actors    *ActorResolver
	log       *logger.Logger
	metrics   *metrics.LedgerMetrics
	now       func() time.Time
}

// NewMovementGateway construye el gateway.
func NewMovementGateway(
	txRunner TxRunner,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	actors *ActorResolver,
	log *logger.Logger,
	m *metrics.LedgerMetrics,
) *MovementGateway {
	return &MovementGateway{
		txRunner:  txRunner,
		products:  products,
		movements: movements,
		actors:    actors,
		log:       log.WithComponent("movement_gateway"),
		metrics:   m,
		now:       time.Now,
	}
}

// MovementInput entrada para aplicar un movimiento.
// Quantity es una magnitud no negativa; en ADJUSTMENT es la cantidad absoluta deseada.
// CallerID vacío usa la identidad de sistema.
type MovementInput struct {
	ProductID string
	Type      entity.MovementType
	Quantity  int
	Reason    *string
	Reference *string
	CallerID  string
}

// FromRequest adapta el request HTTP a MovementInput.
func FromRequest(callerID string, in dto.CreateMovementRequest) MovementInput {
	return MovementInput{
		ProductID: in.ProductID,
		Type:      entity.MovementType(in.Type),
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		Reference: in.Reference,
		CallerID:  callerID,
	}
}

func (in MovementInput) validate() error {
	if in.ProductID == "" || !in.Type.Valid() || in.Quantity < 0 {
		return domain.ErrInvalidInput
	}
	if in.Quantity == 0 && in.Type != entity.MovementTypeADJUSTMENT {
		return domain.ErrInvalidInput
	}
	return nil
}

// ApplyMovement resuelve el actor, abre una transacción y aplica el movimiento.
// Errores: ErrInvalidInput, ErrProductNotFound, ErrInsufficientStock; cualquier otro es interno.
func (g *MovementGateway) ApplyMovement(ctx context.Context, in MovementInput) (*entity.Product, *entity.StockMovement, error) {
	if err := in.validate(); err != nil {
		g.metrics.IncRejection("invalid_input")
		return nil, nil, err
	}
	actorID, err := g.actors.Resolve(ctx, in.CallerID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolver actor: %w", err)
	}

	var product *entity.Product
	var movement *entity.StockMovement
	err = g.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var txErr error
		product, movement, txErr = g.ApplyInTx(ctx, repos, in, actorID)
		return txErr
	})
	if err != nil {
		g.reject(in, err)
		return nil, nil, err
	}
	g.metrics.IncMovement(string(movement.Type))
	g.log.Info().
		Str("product_id", product.ID).
		Str("type", string(movement.Type)).
		Int("quantity", movement.Quantity).
		Int("previous", movement.PreviousQuantity).
		Int("resulting", movement.ResultingQuantity).
		Msg("movimiento registrado")
	return product, movement, nil
}

// ApplyInTx aplica el movimiento usando los repositorios de la transacción del caller.
// Usado por la finalización de órdenes para registrar varias líneas en una sola transacción.
func (g *MovementGateway) ApplyInTx(
	ctx context.Context,
	repos repository.TxRepos,
	in MovementInput,
	actorID string,
) (*entity.Product, *entity.StockMovement, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}
	// Bloquea la fila del producto para serializar mutaciones concurrentes
	product, err := repos.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, nil, fmt.Errorf("bloquear producto: %w", err)
	}
	if product == nil {
		return nil, nil, domain.ErrProductNotFound
	}

	out, err := inventory.ApplyMovement(product.Quantity, in.Type, in.Quantity)
	if err != nil {
		return nil, nil, err
	}
	if product.ExceedsMax(out.Next) {
		g.log.Warn().
			Str("product_id", product.ID).
			Int("resulting", out.Next).
			Int("max_stock", *product.MaxStock).
			Msg("cantidad supera el stock máximo")
	}

	now := g.now()
	if err := repos.Products.UpdateQuantity(ctx, product.ID, out.Next); err != nil {
		return nil, nil, err
	}
	movement := &entity.StockMovement{
		ID:                uuid.New().String(),
		ProductID:         product.ID,
		UserID:            actorID,
		Type:              in.Type,
		Quantity:          out.Recorded,
		PreviousQuantity:  out.Previous,
		ResultingQuantity: out.Next,
		Reason:            in.Reason,
		Reference:         in.Reference,
		CreatedAt:         now,
	}
	if err := repos.Movements.Create(ctx, movement); err != nil {
		return nil, nil, err
	}
	product.Quantity = out.Next
	product.UpdatedAt = now
	return product, movement, nil
}

func (g *MovementGateway) reject(in MovementInput, err error) {
	reason := "internal"
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		reason = "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		reason = "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		reason = "invalid_input"
	}
	g.metrics.IncRejection(reason)
	ev := g.log.Warn()
	if reason == "internal" {
		ev = g.log.Error()
	}
	ev.Err(err).
		Str("product_id", in.ProductID).
		Str("type", string(in.Type)).
		Int("quantity", in.Quantity).
		Msg("movimiento rechazado")
}

// ListMovements consulta el ledger con filtros (más recientes primero).
func (g *MovementGateway) ListMovements(ctx context.Context, filter repository.MovementFilter, limit int) ([]*entity.StockMovement, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = defaultMovementListLimit
	}
	return g.movements.List(ctx, filter, limit)
}

// VerifyLedger reconstruye la cantidad del producto desde sus movimientos y la compara con la almacenada.
func (g *MovementGateway) VerifyLedger(ctx context.Context, productID string) (*dto.LedgerVerificationResponse, error) {
	product, err := g.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	movs, err := g.movements.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	replayed := inventory.Replay(movs)
	return &dto.LedgerVerificationResponse{
		ProductID:  productID,
		Quantity:   product.Quantity,
		Replayed:   replayed,
		Movements:  len(movs),
		Consistent: replayed == product.Quantity,
	}, nil
}
