package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmanager-api/internal/application/inventory"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/internal/infrastructure/memory"
	"github.com/jhoicas/stockmanager-api/pkg/logger"
)

const systemEmail = "bot@stockmanager.com"

type fixture struct {
	store    *memory.Store
	actors   *inventory.ActorResolver
	gateway  *inventory.MovementGateway
	bulk     *inventory.BulkCoordinator
	category *entity.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	actors := inventory.NewActorResolver(store.Users(), systemEmail, "Telegram Bot", logger.Nop())
	gw := inventory.NewMovementGateway(store, store.Products(), store.Movements(), actors, logger.Nop(), nil)
	bulk := inventory.NewBulkCoordinator(store, store.Categories(), store.Suppliers(), actors, logger.Nop(), nil)

	now := time.Now()
	cat := &entity.Category{ID: uuid.NewString(), Name: "General", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Categories().Create(context.Background(), cat))
	return &fixture{store: store, actors: actors, gateway: gw, bulk: bulk, category: cat}
}

// product crea un producto en 0 y, si qty > 0, registra la entrada inicial por el gateway.
func (f *fixture) product(t *testing.T, sku string, qty int) *entity.Product {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	p := &entity.Product{
		ID: uuid.NewString(), SKU: sku, Name: "Producto " + sku, CategoryID: f.category.ID,
		Price: decimal.RequireFromString("10.00"), CostPrice: decimal.RequireFromString("6.00"),
		Unit: "unit", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.store.Products().Create(ctx, p))
	if qty > 0 {
		_, _, err := f.gateway.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: qty})
		require.NoError(t, err)
	}
	p.Quantity = qty
	return p
}

func (f *fixture) quantity(t *testing.T, id string) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Quantity
}

func (f *fixture) movements(t *testing.T, id string) []*entity.StockMovement {
	t.Helper()
	movs, err := f.store.Movements().ListByProduct(context.Background(), id)
	require.NoError(t, err)
	return movs
}

func (f *fixture) user(t *testing.T, email string) *entity.User {
	t.Helper()
	now := time.Now()
	u := &entity.User{ID: uuid.NewString(), Email: email, PasswordHash: "x", Name: email, Role: entity.RoleStaff, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}
